package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trailfeed/trailfeed-backend/internal/models"
)

// memoryData is the shared state behind the in-memory adapter. It implements
// the same contract as the Mongo and Postgres adapters and backs the "memory"
// storage backend used in development and tests.
type memoryData struct {
	mu          sync.RWMutex
	users       map[string]*models.User
	experiences map[string]*models.Experience
	comments    map[string]*models.Comment
	seq         map[string]int // insertion order, tie-breaker for equal timestamps
	nextSeq     int
}

// NewMemoryStores returns the repository set backed by in-process maps.
func NewMemoryStores() Stores {
	data := &memoryData{
		users:       make(map[string]*models.User),
		experiences: make(map[string]*models.Experience),
		comments:    make(map[string]*models.Comment),
		seq:         make(map[string]int),
	}
	return Stores{
		Users:       &memoryUserStore{data: data},
		Experiences: &memoryExperienceStore{data: data},
		Comments:    &memoryCommentStore{data: data},
	}
}

func (d *memoryData) record(id string) {
	d.nextSeq++
	d.seq[id] = d.nextSeq
}

type memoryUserStore struct {
	data *memoryData
}

func copyUser(u *models.User) *models.User {
	cp := *u
	return &cp
}

func (s *memoryUserStore) Create(ctx context.Context, user *models.User) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	for _, existing := range s.data.users {
		if existing.Email == user.Email {
			return ErrDuplicate
		}
	}

	user.ID = uuid.New().String()
	s.data.users[user.ID] = copyUser(user)
	s.data.record(user.ID)
	return nil
}

func (s *memoryUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	user, ok := s.data.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(user), nil
}

func (s *memoryUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	for _, user := range s.data.users {
		if user.Email == email {
			return copyUser(user), nil
		}
	}
	return nil, ErrNotFound
}

func (s *memoryUserStore) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	user, ok := s.data.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.ProfilePicture != nil {
		user.ProfilePicture = *upd.ProfilePicture
	}
	if upd.Bio != nil {
		user.Bio = *upd.Bio
	}
	if upd.Location != nil {
		user.Location = *upd.Location
	}
	user.UpdatedAt = time.Now().UTC()
	return copyUser(user), nil
}

func (s *memoryUserStore) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	user, ok := s.data.users[id]
	if !ok {
		return ErrNotFound
	}
	user.Password = passwordHash
	user.UpdatedAt = time.Now().UTC()
	return nil
}

type memoryExperienceStore struct {
	data *memoryData
}

func copyExperience(e *models.Experience) *models.Experience {
	cp := *e
	cp.Images = append([]string{}, e.Images...)
	cp.Categories = append([]string{}, e.Categories...)
	cp.Tips = append([]string{}, e.Tips...)
	cp.Likes = append([]string{}, e.Likes...)
	if e.Location.Coordinates != nil {
		coords := *e.Location.Coordinates
		cp.Location.Coordinates = &coords
	}
	return &cp
}

func (s *memoryExperienceStore) Create(ctx context.Context, exp *models.Experience) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	exp.ID = uuid.New().String()
	if exp.Likes == nil {
		exp.Likes = []string{}
	}
	s.data.experiences[exp.ID] = copyExperience(exp)
	s.data.record(exp.ID)
	return nil
}

func (s *memoryExperienceStore) GetByID(ctx context.Context, id string) (*models.Experience, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	exp, ok := s.data.experiences[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyExperience(exp), nil
}

func (s *memoryExperienceStore) Update(ctx context.Context, id string, upd models.ExperienceUpdate) (*models.Experience, error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	exp, ok := s.data.experiences[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Title != nil {
		exp.Title = *upd.Title
	}
	if upd.Description != nil {
		exp.Description = *upd.Description
	}
	if upd.Location != nil {
		exp.Location = *upd.Location
	}
	if upd.Images != nil {
		exp.Images = append([]string{}, (*upd.Images)...)
	}
	if upd.DateOfVisit != nil {
		exp.DateOfVisit = *upd.DateOfVisit
	}
	if upd.Categories != nil {
		exp.Categories = append([]string{}, (*upd.Categories)...)
	}
	if upd.Tips != nil {
		exp.Tips = append([]string{}, (*upd.Tips)...)
	}
	if upd.Budget != nil {
		exp.Budget = *upd.Budget
	}
	if upd.Rating != nil {
		exp.Rating = *upd.Rating
	}
	exp.UpdatedAt = time.Now().UTC()
	return copyExperience(exp), nil
}

func (s *memoryExperienceStore) Delete(ctx context.Context, id string) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, ok := s.data.experiences[id]; !ok {
		return ErrNotFound
	}
	delete(s.data.experiences, id)
	return nil
}

func matchesFilter(exp *models.Experience, f ExperienceFilter) bool {
	if f.Category != "" {
		found := false
		for _, c := range exp.Categories {
			if c == f.Category {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Country != "" && exp.Location.Country != f.Country {
		return false
	}
	if f.UserID != "" && exp.UserID != f.UserID {
		return false
	}
	if f.Keyword != "" {
		kw := strings.ToLower(f.Keyword)
		if !strings.Contains(strings.ToLower(exp.Title), kw) &&
			!strings.Contains(strings.ToLower(exp.Location.City), kw) &&
			!strings.Contains(strings.ToLower(exp.Location.Country), kw) {
			return false
		}
	}
	return true
}

func (s *memoryExperienceStore) List(ctx context.Context, filter ExperienceFilter) ([]*models.Experience, int64, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	var matched []*models.Experience
	for _, exp := range s.data.experiences {
		if matchesFilter(exp, filter) {
			matched = append(matched, exp)
		}
	}

	// Newest first; fall back to insertion order for equal timestamps.
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return s.data.seq[matched[i].ID] > s.data.seq[matched[j].ID]
	})

	total := int64(len(matched))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * PageSize
	if start >= len(matched) {
		return []*models.Experience{}, total, nil
	}
	end := start + PageSize
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]*models.Experience, 0, end-start)
	for _, exp := range matched[start:end] {
		out = append(out, copyExperience(exp))
	}
	return out, total, nil
}

func (s *memoryExperienceStore) AddLike(ctx context.Context, id string, userID string) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	exp, ok := s.data.experiences[id]
	if !ok {
		return ErrNotFound
	}
	for _, existing := range exp.Likes {
		if existing == userID {
			return nil
		}
	}
	exp.Likes = append(exp.Likes, userID)
	return nil
}

func (s *memoryExperienceStore) RemoveLike(ctx context.Context, id string, userID string) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	exp, ok := s.data.experiences[id]
	if !ok {
		return ErrNotFound
	}
	filtered := exp.Likes[:0]
	for _, existing := range exp.Likes {
		if existing != userID {
			filtered = append(filtered, existing)
		}
	}
	exp.Likes = filtered
	return nil
}

type memoryCommentStore struct {
	data *memoryData
}

func copyComment(c *models.Comment) *models.Comment {
	cp := *c
	return &cp
}

func (s *memoryCommentStore) Create(ctx context.Context, comment *models.Comment) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	comment.ID = uuid.New().String()
	s.data.comments[comment.ID] = copyComment(comment)
	s.data.record(comment.ID)
	return nil
}

func (s *memoryCommentStore) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	comment, ok := s.data.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyComment(comment), nil
}

func (s *memoryCommentStore) ListByExperience(ctx context.Context, experienceID string) ([]*models.Comment, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	comments := []*models.Comment{}
	for _, comment := range s.data.comments {
		if comment.ExperienceID == experienceID {
			comments = append(comments, copyComment(comment))
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.After(comments[j].CreatedAt)
		}
		return s.data.seq[comments[i].ID] > s.data.seq[comments[j].ID]
	})
	return comments, nil
}

func (s *memoryCommentStore) Delete(ctx context.Context, id string) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, ok := s.data.comments[id]; !ok {
		return ErrNotFound
	}
	delete(s.data.comments, id)
	return nil
}
