package domain

import (
	"errors"
	"time"
)

// User is the core account entity. The phone number doubles as the login
// username (portal accounts are phone-first).
type User struct {
	ID            string
	Phone         string // E.164-like local format; unique, acts as username
	PhoneVerified bool   // true once an OTP challenge for this phone succeeded
	FirstName     string
	LastName      string
	PasswordHash  string
	Role          Role
	PlayerID      string // bound roster player; empty until assigned
	Status        UserStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// Role controls access to the admin surface.
type Role string

const (
	RolePlayer Role = "player"
	RoleAdmin  Role = "admin"
)

// HasPlayerAssignment reports whether the account is bound to a roster player.
func (u *User) HasPlayerAssignment() bool {
	return u != nil && u.PlayerID != ""
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Phone == "" {
		return errors.New("phone is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if u.Role == "" {
		u.Role = RolePlayer
	}
	if u.Status == "" {
		u.Status = UserStatusActive
	}
	return nil
}
