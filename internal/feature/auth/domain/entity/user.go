// Package entity defines the domain entities for the auth feature.
package entity

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt cost used by SetPassword.
var HashCost = bcrypt.DefaultCost

// User is a registered identity. Appointments are owned by exactly one User.
type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Email is unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null" json:"email"`

	// PasswordHash holds the bcrypt hash. The plaintext is never stored.
	PasswordHash string `gorm:"column:password_hash;size:255;not null" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetPassword hashes plain and replaces the stored hash.
func (u *User) SetPassword(plain string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), HashCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashed)
	return nil
}

// VerifyPassword reports whether plain matches the stored hash.
func (u *User) VerifyPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}
