package services

import (
	"context"

	"github.com/trailfeed/trailfeed-backend/internal/models"
	"github.com/trailfeed/trailfeed-backend/internal/store"
)

// authorResolver attaches denormalized author summaries (name, profile
// picture) to experiences and comments, with a Redis-backed cache in front of
// the user store. Unknown users resolve to a placeholder rather than an error
// so a deleted account never breaks a listing.
type authorResolver struct {
	users store.UserStore
}

func (r authorResolver) resolve(ctx context.Context, userID string, seen map[string]*models.UserSummary) *models.UserSummary {
	if summary, ok := seen[userID]; ok {
		return summary
	}

	cacheKey := CacheKey("author", userID)
	var cached models.UserSummary
	if hit, _ := Cache.Get(cacheKey, &cached); hit {
		seen[userID] = &cached
		return &cached
	}

	summary := &models.UserSummary{ID: userID, Name: "Unknown User"}
	if user, err := r.users.GetByID(ctx, userID); err == nil {
		summary = user.Summary()
		_ = Cache.Set(cacheKey, summary)
	}
	seen[userID] = summary
	return summary
}

// invalidateAuthor drops the cached summary after a profile update.
func invalidateAuthor(userID string) {
	_ = Cache.Delete(CacheKey("author", userID))
}
