package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. Sign-in is blocked until the email
// address has been confirmed via the token mailed at registration.
type User struct {
	ID           uuid.UUID  `json:"id"           db:"id"`
	Email        string     `json:"email"        db:"email"`
	DisplayName  string     `json:"display_name" db:"display_name"`
	PasswordHash string     `json:"-"            db:"password_hash"` // never serialised
	ConfirmToken *string    `json:"-"            db:"confirm_token"`
	ConfirmedAt  *time.Time `json:"confirmed_at" db:"confirmed_at"`
	CreatedAt    time.Time  `json:"created_at"   db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"   db:"updated_at"`
}

// Confirmed returns true once the user has verified their email address.
func (u *User) Confirmed() bool {
	return u.ConfirmedAt != nil
}

// PublicProfile is the user view safe to expose via the API.
type PublicProfile struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Confirmed   bool      `json:"confirmed"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToPublicProfile converts a User to its public-safe representation.
func (u *User) ToPublicProfile() PublicProfile {
	return PublicProfile{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Confirmed:   u.Confirmed(),
		CreatedAt:   u.CreatedAt,
	}
}
