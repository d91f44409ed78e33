// Package entity defines the domain entities for the auth feature.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account.
type User struct {
	// ID is an opaque identifier assigned at creation and never changed.
	ID string `gorm:"primaryKey;size:36" bson:"_id"`

	// Name is the display name given at registration.
	Name string `gorm:"size:255;not null" bson:"name"`

	// Email is the login identifier. The unique index is what guarantees
	// one account per email under concurrent registrations.
	Email string `gorm:"uniqueIndex;size:255;not null" bson:"email"`

	// Password holds the bcrypt hash, never the plaintext.
	Password string `gorm:"size:255;not null" bson:"password"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// PublicUser is the safe projection of a User returned to clients.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// NewUser builds a User with a freshly assigned ID.
func NewUser(name, email, passwordHash string) *User {
	return &User{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    email,
		Password: passwordHash,
	}
}

// Public strips secret fields.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Name: u.Name}
}
