// Package domain defines the player entity from the club roster.
package domain

import "time"

// Player is a roster entry that a user account can be linked to.
type Player struct {
	ID           string
	FirstName    string
	LastName     string
	ClubName     string
	JerseyNumber int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName returns the display name used in search results.
func (p *Player) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
