package models

import "time"

// Coordinates is an optional map position for an experience location.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Location struct {
	City        string       `json:"city"`
	Country     string       `json:"country"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// DateRange is the visit window of an experience. Both ends are optional.
type DateRange struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

type Budget struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Experience is a user-authored travel post. Only the owner (UserID) may
// update or delete it. Likes holds user IDs with set semantics.
type Experience struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    Location  `json:"location"`
	Images      []string  `json:"images"`
	DateOfVisit DateRange `json:"date_of_visit"`
	Categories  []string  `json:"categories"`
	Tips        []string  `json:"tips"`
	Budget      Budget    `json:"budget"`
	Rating      int       `json:"rating"`
	Likes       []string  `json:"likes"`

	// Denormalized author info, attached at read time.
	Author *UserSummary `json:"user,omitempty"`
}

// ExperienceUpdate carries a partial update; nil fields are left unchanged.
type ExperienceUpdate struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Location    *Location  `json:"location,omitempty"`
	Images      *[]string  `json:"images,omitempty"`
	DateOfVisit *DateRange `json:"date_of_visit,omitempty"`
	Categories  *[]string  `json:"categories,omitempty"`
	Tips        *[]string  `json:"tips,omitempty"`
	Budget      *Budget    `json:"budget,omitempty"`
	Rating      *int       `json:"rating,omitempty"`
}

// HasLike reports whether userID is present in the likes set.
func (e *Experience) HasLike(userID string) bool {
	for _, id := range e.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
