// Package store defines the repository interfaces for Trailfeed's entities
// and provides swappable adapters: MongoDB (primary), PostgreSQL, and an
// in-memory implementation. Adapters do raw CRUD only; ownership checks and
// other business rules live in the services layer.
package store

import (
	"context"
	"errors"

	"github.com/trailfeed/trailfeed-backend/internal/models"
)

// ErrNotFound is returned by all adapters when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert collides with a uniqueness
// constraint, such as two registrations racing on the same email.
var ErrDuplicate = errors.New("record already exists")

// PageSize is the fixed page size for experience listings.
const PageSize = 10

// ExperienceFilter narrows an experience listing. Zero values mean "no filter".
type ExperienceFilter struct {
	Category string // membership test against the categories array
	Country  string // equality on location.country
	UserID   string // equality on the owner
	Keyword  string // case-insensitive substring over title, city, country
	Page     int    // 1-based; values < 1 are treated as 1
}

type UserStore interface {
	// Create persists a new user and assigns its ID. A colliding email
	// returns ErrDuplicate.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Update merges the non-nil fields and returns the updated user.
	Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}

type ExperienceStore interface {
	// Create persists a new experience and assigns its ID.
	Create(ctx context.Context, exp *models.Experience) error
	GetByID(ctx context.Context, id string) (*models.Experience, error)
	// Update merges the non-nil fields and returns the updated experience.
	Update(ctx context.Context, id string, upd models.ExperienceUpdate) (*models.Experience, error)
	Delete(ctx context.Context, id string) error
	// List returns a page of experiences, newest first, plus the total match count.
	List(ctx context.Context, filter ExperienceFilter) ([]*models.Experience, int64, error)
	// AddLike and RemoveLike are idempotent set operations on the likes array.
	AddLike(ctx context.Context, id string, userID string) error
	RemoveLike(ctx context.Context, id string, userID string) error
}

type CommentStore interface {
	// Create persists a new comment and assigns its ID.
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	// ListByExperience returns comments for an experience, newest first.
	ListByExperience(ctx context.Context, experienceID string) ([]*models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// Stores bundles the three repositories backed by one storage engine.
type Stores struct {
	Users       UserStore
	Experiences ExperienceStore
	Comments    CommentStore
}
