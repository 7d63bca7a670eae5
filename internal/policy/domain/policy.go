package domain

import "time"

// Policy holds a Rego module that overrides onboarding defaults.
type Policy struct {
	ID        string
	Rego      string
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
