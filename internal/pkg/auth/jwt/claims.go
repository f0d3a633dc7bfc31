package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims carried by a campus chat bearer credential.
// Tokens are minted by the external auth surface; this core only validates them
// and resolves the embedded user id.
type Payload struct {
	// StandardClaims embeds the standard JWT fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer), used for validity checks.
	jwt.StandardClaims

	// UserID is the identifier of the account the credential was issued for.
	UserID string `json:"userId"`
}
