package services

import (
	"context"
	"strings"
	"time"

	"github.com/trailfeed/trailfeed-backend/internal/models"
	"github.com/trailfeed/trailfeed-backend/internal/store"
)

const maxCommentLength = 1000

// CommentService handles comments on experiences. Events for new and deleted
// comments go out through the feed when one is attached.
type CommentService struct {
	comments    store.CommentStore
	experiences store.ExperienceStore
	authors     authorResolver
	feed        *CommentFeed
}

func NewCommentService(comments store.CommentStore, experiences store.ExperienceStore, users store.UserStore, feed *CommentFeed) *CommentService {
	return &CommentService{
		comments:    comments,
		experiences: experiences,
		authors:     authorResolver{users: users},
		feed:        feed,
	}
}

// Create adds a comment to an experience. The experience must exist; nothing
// is persisted when it does not.
func (s *CommentService) Create(ctx context.Context, authorID, experienceID, text string) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, validationErrorf("please add a comment")
	}
	if len(text) > maxCommentLength {
		return nil, validationErrorf("comment must be at most %d characters", maxCommentLength)
	}

	if _, err := s.experiences.GetByID(ctx, experienceID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		UserID:       authorID,
		ExperienceID: experienceID,
		CreatedAt:    time.Now().UTC(),
		Text:         text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	comment.Author = s.authors.resolve(ctx, authorID, map[string]*models.UserSummary{})

	s.feed.Publish(ctx, CommentEvent{
		Type:         EventCommentCreated,
		ExperienceID: experienceID,
		Comment:      comment,
	})
	return comment, nil
}

// ListByExperience returns an experience's comments, newest first, with
// author summaries attached.
func (s *CommentService) ListByExperience(ctx context.Context, experienceID string) ([]*models.Comment, error) {
	comments, err := s.comments.ListByExperience(ctx, experienceID)
	if err != nil {
		return nil, err
	}

	seen := map[string]*models.UserSummary{}
	for _, c := range comments {
		c.Author = s.authors.resolve(ctx, c.UserID, seen)
	}
	return comments, nil
}

// Delete removes a comment. Only its author may delete it.
func (s *CommentService) Delete(ctx context.Context, id, actorID string) error {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if comment.UserID != actorID {
		return ErrUnauthorized
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return err
	}

	s.feed.Publish(ctx, CommentEvent{
		Type:         EventCommentDeleted,
		ExperienceID: comment.ExperienceID,
		CommentID:    comment.ID,
	})
	return nil
}
