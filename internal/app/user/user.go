/*
Package user contains the data structures describing a chat participant.

The core never mutates a user record except for the report-count side effect of
moderation; accounts are created and administered outside this service.
*/
package user

import "github.com/google/uuid"

// User is the full account record as resolved during connection authentication.
type User struct {
	// ID is the unique identifier for the user.
	ID uuid.UUID `json:"id"`

	// FullName is the display name shown alongside messages.
	FullName string `json:"fullName"`

	// Email is the verified campus address the account was registered with.
	Email string `json:"email"`

	// Faculty names the faculty room the user joins on connect.
	Faculty string `json:"faculty"`

	// Degree is the academic level (e.g. bachelor, master).
	Degree string `json:"degree"`

	// Course is the course year within the degree.
	Course int `json:"course"`

	// ProfilePicture is the avatar reference, empty when none was uploaded.
	ProfilePicture string `json:"profilePicture,omitempty"`

	// IsActive is false for deactivated accounts; they cannot connect.
	IsActive bool `json:"isActive"`
}

// Summary is the subset of user fields attached to outgoing messages.
type Summary struct {
	ID             uuid.UUID `json:"id"`
	FullName       string    `json:"fullName"`
	Faculty        string    `json:"faculty"`
	Degree         string    `json:"degree"`
	Course         int       `json:"course"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
}

// Summary projects the full record down to the wire shape.
func (u User) Summary() Summary {
	return Summary{
		ID:             u.ID,
		FullName:       u.FullName,
		Faculty:        u.Faculty,
		Degree:         u.Degree,
		Course:         u.Course,
		ProfilePicture: u.ProfilePicture,
	}
}
