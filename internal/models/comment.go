package models

import "time"

// Comment is attached to exactly one experience. Only the author (UserID)
// may delete it.
type Comment struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ExperienceID string    `json:"experience_id"`
	CreatedAt    time.Time `json:"created_at"`

	Text string `json:"text"`

	// Denormalized author info, attached at read time.
	Author *UserSummary `json:"user,omitempty"`
}
