package services

import (
	"context"
	"strings"
	"time"

	"github.com/trailfeed/trailfeed-backend/internal/models"
	"github.com/trailfeed/trailfeed-backend/internal/store"
)

const (
	maxTitleLength       = 100
	maxDescriptionLength = 5000
)

// ExperienceService enforces the ownership and like-set rules on top of the
// raw experience store.
type ExperienceService struct {
	experiences store.ExperienceStore
	authors     authorResolver
}

func NewExperienceService(experiences store.ExperienceStore, users store.UserStore) *ExperienceService {
	return &ExperienceService{
		experiences: experiences,
		authors:     authorResolver{users: users},
	}
}

// ExperiencePage is one page of a listing, newest first.
type ExperiencePage struct {
	Experiences []*models.Experience `json:"experiences"`
	Page        int                  `json:"page"`
	Pages       int                  `json:"pages"`
	Total       int64                `json:"total"`
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return validationErrorf("please add a title")
	}
	if len(title) > maxTitleLength {
		return validationErrorf("title must be at most %d characters", maxTitleLength)
	}
	return nil
}

func validateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return validationErrorf("please add a description")
	}
	if len(description) > maxDescriptionLength {
		return validationErrorf("description must be at most %d characters", maxDescriptionLength)
	}
	return nil
}

func validateLocation(loc models.Location) error {
	if strings.TrimSpace(loc.City) == "" {
		return validationErrorf("please add a city")
	}
	if strings.TrimSpace(loc.Country) == "" {
		return validationErrorf("please add a country")
	}
	return nil
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return validationErrorf("rating must be between 1 and 5")
	}
	return nil
}

// Create stores a new experience for ownerID with an empty likes set and
// server-set timestamps.
func (s *ExperienceService) Create(ctx context.Context, ownerID string, exp *models.Experience) (*models.Experience, error) {
	if err := validateTitle(exp.Title); err != nil {
		return nil, err
	}
	if err := validateDescription(exp.Description); err != nil {
		return nil, err
	}
	if err := validateLocation(exp.Location); err != nil {
		return nil, err
	}
	if exp.Rating != 0 {
		if err := validateRating(exp.Rating); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	exp.UserID = ownerID
	exp.CreatedAt = now
	exp.UpdatedAt = now
	exp.Likes = []string{}
	if exp.Images == nil {
		exp.Images = []string{}
	}
	if exp.Categories == nil {
		exp.Categories = []string{}
	}
	if exp.Tips == nil {
		exp.Tips = []string{}
	}

	if err := s.experiences.Create(ctx, exp); err != nil {
		return nil, err
	}

	exp.Author = s.authors.resolve(ctx, ownerID, map[string]*models.UserSummary{})
	return exp, nil
}

// Get returns an experience with its author summary attached.
func (s *ExperienceService) Get(ctx context.Context, id string) (*models.Experience, error) {
	exp, err := s.experiences.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	exp.Author = s.authors.resolve(ctx, exp.UserID, map[string]*models.UserSummary{})
	return exp, nil
}

// Update merges fields into an experience. Only the owner may update.
func (s *ExperienceService) Update(ctx context.Context, id, actorID string, upd models.ExperienceUpdate) (*models.Experience, error) {
	existing, err := s.experiences.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.UserID != actorID {
		return nil, ErrUnauthorized
	}

	if upd.Title != nil {
		if err := validateTitle(*upd.Title); err != nil {
			return nil, err
		}
	}
	if upd.Description != nil {
		if err := validateDescription(*upd.Description); err != nil {
			return nil, err
		}
	}
	if upd.Location != nil {
		if err := validateLocation(*upd.Location); err != nil {
			return nil, err
		}
	}
	if upd.Rating != nil {
		if err := validateRating(*upd.Rating); err != nil {
			return nil, err
		}
	}

	updated, err := s.experiences.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	updated.Author = s.authors.resolve(ctx, updated.UserID, map[string]*models.UserSummary{})
	return updated, nil
}

// Delete removes an experience. Only the owner may delete.
func (s *ExperienceService) Delete(ctx context.Context, id, actorID string) error {
	existing, err := s.experiences.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserID != actorID {
		return ErrUnauthorized
	}
	return s.experiences.Delete(ctx, id)
}

// Like adds userID to the likes set. Liking an already-liked experience is a no-op.
func (s *ExperienceService) Like(ctx context.Context, id, userID string) error {
	exp, err := s.experiences.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if exp.HasLike(userID) {
		return nil
	}
	return s.experiences.AddLike(ctx, id, userID)
}

// Unlike removes userID from the likes set. Unliking an experience the user
// never liked is a no-op, not an error.
func (s *ExperienceService) Unlike(ctx context.Context, id, userID string) error {
	exp, err := s.experiences.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !exp.HasLike(userID) {
		return nil
	}
	return s.experiences.RemoveLike(ctx, id, userID)
}

// ToggleLike flips userID's like on an experience and returns the resulting
// likes set. Concurrent toggles on the same document are last-write-wins.
func (s *ExperienceService) ToggleLike(ctx context.Context, id, userID string) ([]string, bool, error) {
	exp, err := s.experiences.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	if exp.HasLike(userID) {
		if err := s.experiences.RemoveLike(ctx, id, userID); err != nil {
			return nil, false, err
		}
	} else {
		if err := s.experiences.AddLike(ctx, id, userID); err != nil {
			return nil, false, err
		}
	}

	updated, err := s.experiences.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return updated.Likes, updated.HasLike(userID), nil
}

// List returns one page of experiences matching the filter, newest first,
// with author summaries attached.
func (s *ExperienceService) List(ctx context.Context, filter store.ExperienceFilter) (*ExperiencePage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}

	experiences, total, err := s.experiences.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	seen := map[string]*models.UserSummary{}
	for _, exp := range experiences {
		exp.Author = s.authors.resolve(ctx, exp.UserID, seen)
	}

	pages := int((total + store.PageSize - 1) / store.PageSize)
	return &ExperiencePage{
		Experiences: experiences,
		Page:        filter.Page,
		Pages:       pages,
		Total:       total,
	}, nil
}
