package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/trailfeed/trailfeed-backend/internal/services"
)

var commentsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS for WebSocket is handled at the HTTP layer already.
		return true
	},
}

// CommentFeedHandler streams live comment events over WebSocket.
type CommentFeedHandler struct {
	feed *services.CommentFeed
}

func NewCommentFeedHandler(feed *services.CommentFeed) *CommentFeedHandler {
	return &CommentFeedHandler{feed: feed}
}

// Stream handles GET /ws/comments?experience_id=<id>. Each connection follows
// one experience's comment activity; reading requires no authentication, like
// the REST listing.
func (h *CommentFeedHandler) Stream(w http.ResponseWriter, r *http.Request) {
	experienceID := r.URL.Query().Get("experience_id")
	if experienceID == "" {
		respondError(w, "experience_id is required", http.StatusBadRequest)
		return
	}

	conn, err := commentsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	eventsCh, unsubscribe := h.feed.Subscribe(experienceID)
	defer unsubscribe()

	// Writer goroutine: forward feed events to this connection.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for evt := range eventsCh {
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		}
	}()

	// Reader loop: the client sends nothing meaningful, but reading keeps the
	// connection's control frames flowing and detects disconnects.
	conn.SetReadLimit(4 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		select {
		case <-done:
			return
		default:
		}
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	}
}
