package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/trailfeed/trailfeed-backend/internal/models"
	"github.com/trailfeed/trailfeed-backend/internal/store"
)

type commentFixture struct {
	svc        *CommentService
	stores     store.Stores
	feed       *CommentFeed
	author     *models.User
	other      *models.User
	experience *models.Experience
}

func newCommentFixture(t *testing.T) *commentFixture {
	t.Helper()
	ctx := context.Background()
	stores := store.NewMemoryStores()
	userSvc := NewUserService(stores.Users, testJWTSecret)
	expSvc := NewExperienceService(stores.Experiences, stores.Users)

	author, err := userSvc.Register(ctx, "Alice", "alice-comments@example.com", "wanderlust")
	if err != nil {
		t.Fatalf("Register() returned an error: %v", err)
	}
	other, err := userSvc.Register(ctx, "Bob", "bob-comments@example.com", "wanderlust")
	if err != nil {
		t.Fatalf("Register() returned an error: %v", err)
	}
	exp, err := expSvc.Create(ctx, author.ID, validExperience())
	if err != nil {
		t.Fatalf("Create() returned an error: %v", err)
	}

	feed := NewCommentFeed()
	return &commentFixture{
		svc:        NewCommentService(stores.Comments, stores.Experiences, stores.Users, feed),
		stores:     stores,
		feed:       feed,
		author:     author,
		other:      other,
		experience: exp,
	}
}

func TestCommentCreate(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture(t)

	t.Run("Success", func(t *testing.T) {
		comment, err := f.svc.Create(ctx, f.author.ID, f.experience.ID, "Looks amazing!")
		if err != nil {
			t.Fatalf("Create() returned an error: %v", err)
		}
		if comment.ID == "" {
			t.Error("created comment has no ID")
		}
		if comment.Author == nil || comment.Author.Name != "Alice" {
			t.Errorf("got author %+v, want summary for Alice", comment.Author)
		}
	})

	t.Run("EmptyText", func(t *testing.T) {
		if _, err := f.svc.Create(ctx, f.author.ID, f.experience.ID, "   "); !errors.Is(err, ErrValidation) {
			t.Errorf("got %v, want ErrValidation", err)
		}
	})

	t.Run("MissingExperienceDoesNotPersist", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.author.ID, "no-such-experience", "hello?")
		if !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("got %v, want ErrNotFound", err)
		}
		orphans, err := f.stores.Comments.ListByExperience(ctx, "no-such-experience")
		if err != nil {
			t.Fatalf("ListByExperience() returned an error: %v", err)
		}
		if len(orphans) != 0 {
			t.Errorf("got %d orphan comments, want none", len(orphans))
		}
	})
}

func TestCommentListNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture(t)

	for _, text := range []string{"first", "second", "third"} {
		if _, err := f.svc.Create(ctx, f.author.ID, f.experience.ID, text); err != nil {
			t.Fatalf("Create() returned an error: %v", err)
		}
	}

	comments, err := f.svc.ListByExperience(ctx, f.experience.ID)
	if err != nil {
		t.Fatalf("ListByExperience() returned an error: %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("got %d comments, want 3", len(comments))
	}
	if comments[0].Text != "third" || comments[2].Text != "first" {
		t.Errorf("got order [%s %s %s], want newest first", comments[0].Text, comments[1].Text, comments[2].Text)
	}
	for _, c := range comments {
		if c.Author == nil || c.Author.Name != "Alice" {
			t.Fatalf("got author %+v, want summary for Alice", c.Author)
		}
	}
}

func TestCommentDelete(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture(t)

	comment, err := f.svc.Create(ctx, f.author.ID, f.experience.ID, "delete me")
	if err != nil {
		t.Fatalf("Create() returned an error: %v", err)
	}

	t.Run("ByOther", func(t *testing.T) {
		if err := f.svc.Delete(ctx, comment.ID, f.other.ID); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("got %v, want ErrUnauthorized", err)
		}
	})

	t.Run("ByAuthor", func(t *testing.T) {
		if err := f.svc.Delete(ctx, comment.ID, f.author.ID); err != nil {
			t.Fatalf("Delete() returned an error: %v", err)
		}
		if err := f.svc.Delete(ctx, comment.ID, f.author.ID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound on second delete", err)
		}
	})
}

func TestCommentFeedEvents(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture(t)

	events, unsubscribe := f.feed.Subscribe(f.experience.ID)
	defer unsubscribe()

	comment, err := f.svc.Create(ctx, f.author.ID, f.experience.ID, "live!")
	if err != nil {
		t.Fatalf("Create() returned an error: %v", err)
	}

	select {
	case evt := <-events:
		if evt.Type != EventCommentCreated {
			t.Errorf("got event type %q, want %q", evt.Type, EventCommentCreated)
		}
		if evt.Comment == nil || evt.Comment.ID != comment.ID {
			t.Errorf("got event comment %+v, want the created comment", evt.Comment)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received for a created comment")
	}

	if err := f.svc.Delete(ctx, comment.ID, f.author.ID); err != nil {
		t.Fatalf("Delete() returned an error: %v", err)
	}

	select {
	case evt := <-events:
		if evt.Type != EventCommentDeleted {
			t.Errorf("got event type %q, want %q", evt.Type, EventCommentDeleted)
		}
		if evt.CommentID != comment.ID {
			t.Errorf("got event comment ID %q, want %q", evt.CommentID, comment.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received for a deleted comment")
	}
}

func TestCommentFeedSubscriberIsolation(t *testing.T) {
	feed := NewCommentFeed()

	expA, unsubA := feed.Subscribe("exp-a")
	defer unsubA()
	expB, unsubB := feed.Subscribe("exp-b")
	defer unsubB()

	feed.Publish(context.Background(), CommentEvent{
		Type:         EventCommentCreated,
		ExperienceID: "exp-a",
	})

	select {
	case <-expA:
	case <-time.After(time.Second):
		t.Fatal("subscriber for exp-a got no event")
	}

	select {
	case evt := <-expB:
		t.Fatalf("subscriber for exp-b got an event for another experience: %+v", evt)
	default:
	}
}
