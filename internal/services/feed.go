package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/trailfeed/trailfeed-backend/internal/database"
	"github.com/trailfeed/trailfeed-backend/internal/models"
)

const (
	EventCommentCreated = "comment_created"
	EventCommentDeleted = "comment_deleted"

	commentChannelPrefix  = "comments:experience:"
	commentChannelPattern = "comments:experience:*"

	feedBufferSize = 16
)

// CommentEvent is the payload broadcast over Redis and WebSocket when a
// comment is created or deleted.
type CommentEvent struct {
	Type         string          `json:"type"`
	ExperienceID string          `json:"experience_id"`
	Comment      *models.Comment `json:"comment,omitempty"`
	CommentID    string          `json:"comment_id,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}

type feedSubscriber struct {
	experienceID string
	ch           chan CommentEvent
}

// CommentFeed fans comment events out to WebSocket subscribers. When Redis is
// available, events travel through pub/sub so every instance sees them;
// otherwise delivery is local to this process.
type CommentFeed struct {
	mu          sync.RWMutex
	subscribers map[*feedSubscriber]struct{}
	started     sync.Once
}

func NewCommentFeed() *CommentFeed {
	return &CommentFeed{subscribers: make(map[*feedSubscriber]struct{})}
}

// Subscribe registers interest in a single experience's comment events. The
// returned function must be called to release the subscription.
func (f *CommentFeed) Subscribe(experienceID string) (<-chan CommentEvent, func()) {
	sub := &feedSubscriber{
		experienceID: experienceID,
		ch:           make(chan CommentEvent, feedBufferSize),
	}

	f.mu.Lock()
	f.subscribers[sub] = struct{}{}
	f.mu.Unlock()

	unsubscribe := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[sub]; ok {
			delete(f.subscribers, sub)
			close(sub.ch)
		}
		f.mu.Unlock()
	}
	return sub.ch, unsubscribe
}

// Publish sends an event to every subscriber of the event's experience. With
// Redis connected the event goes through pub/sub; without it, straight to the
// local subscribers.
func (f *CommentFeed) Publish(ctx context.Context, event CommentEvent) {
	if f == nil || event.ExperienceID == "" {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if database.RedisClient != nil {
		data, err := json.Marshal(event)
		if err != nil {
			log.Printf("failed to marshal comment event: %v", err)
			return
		}
		channel := commentChannelPrefix + event.ExperienceID
		if err := database.RedisClient.Publish(ctx, channel, data).Err(); err != nil {
			log.Printf("failed to publish comment event: %v", err)
			f.fanOut(event)
		}
		return
	}

	f.fanOut(event)
}

func (f *CommentFeed) fanOut(event CommentEvent) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for sub := range f.subscribers {
		if sub.experienceID != event.ExperienceID {
			continue
		}
		// Non-blocking best-effort send; a slow reader drops events rather
		// than stalling the feed.
		select {
		case sub.ch <- event:
		default:
		}
	}
}

// Start launches the shared Redis listener for this instance. Safe to call
// more than once. Without Redis the feed still works within the process.
func (f *CommentFeed) Start(ctx context.Context) {
	f.started.Do(func() {
		go f.runRedisSubscriber(ctx)
	})
}

func (f *CommentFeed) runRedisSubscriber(ctx context.Context) {
	client := database.RedisClient
	if client == nil {
		log.Println("Redis client not initialized; comment feed running in local mode")
		return
	}

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := client.PSubscribe(ctx, commentChannelPattern)
			defer pubsub.Close()

			log.Printf("✅ Comment feed Redis subscriber started (pattern: %s)", commentChannelPattern)

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Printf("Redis subscriber error: %v", err)
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				var event CommentEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("failed to unmarshal comment event: %v", err)
					continue
				}

				f.fanOut(event)
			}
		}()
	}
}
