/*
Package identity authorizes incoming connections and requests.

The Gate validates an opaque bearer credential and resolves it to an active user
record. Every connection passes through it exactly once, at handshake time; the
resolved identity is then trusted for the lifetime of the connection.
*/
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"campuschat/internal/app/store"
	"campuschat/internal/app/user"
	"campuschat/internal/pkg/auth/jwt"
	"campuschat/internal/pkg/errs"
	"campuschat/internal/pkg/logx"
)

// lookupTimeout bounds the account resolution call so a hung database cannot
// stall the connection handshake.
const lookupTimeout = 5 * time.Second

// UserFinder resolves a user id to an active account record.
type UserFinder interface {
	FindActive(ctx context.Context, id uuid.UUID) (user.User, error)
}

// Gate validates bearer credentials against the configured secret and the user store.
type Gate struct {
	secret string
	users  UserFinder
}

// NewGate constructs an identity gate.
func NewGate(secret string, users UserFinder) *Gate {
	return &Gate{secret: secret, users: users}
}

// Authenticate checks the credential and returns the active user it belongs to.
// Failures map onto the connection-time error taxonomy: missing credential,
// invalid signature/expiry, or unavailable account.
func (g *Gate) Authenticate(ctx context.Context, token string) (user.User, *errs.CustomError) {
	if token == "" {
		return user.User{}, errs.NewError(errs.ErrUnauthenticated)
	}

	payload, err := jwt.ParseToken(token, g.secret)
	if err != nil {
		return user.User{}, errs.NewError(errs.ErrInvalidCredential)
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return user.User{}, errs.NewError(errs.ErrInvalidCredential)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	u, err := g.users.FindActive(lookupCtx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return user.User{}, errs.NewError(errs.ErrAccountUnavailable)
		}

		logx.Error(err, "identity lookup failed", "user_id", userID.String())
		return user.User{}, errs.NewError(errs.ErrAccountUnavailable)
	}

	return u, nil
}
