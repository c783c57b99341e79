package repositories

import (
	"context"
	"log"
	"time"

	"github.com/zekariasasaminew/campusEx/internal/cache"
)

const displayNameTTL = 5 * time.Minute

// CachedUserRepo decorates a UserRepository with a redis display-name cache.
// Cache failures degrade to the underlying repository.
type CachedUserRepo struct {
	inner UserRepository
	cache cache.Cache
}

// NewCachedUserRepo wraps inner with the given cache. A nil cache returns the
// inner repository unchanged.
func NewCachedUserRepo(inner UserRepository, c cache.Cache) UserRepository {
	if c == nil {
		return inner
	}
	return &CachedUserRepo{inner: inner, cache: c}
}

// BulkDisplayNames serves what it can from cache and batch-fetches the rest.
func (r *CachedUserRepo) BulkDisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(userIDs))
	missing := make([]string, 0, len(userIDs))

	for _, id := range userIDs {
		name, err := r.cache.Get(ctx, displayNameKey(id))
		if err == nil {
			names[id] = name
			continue
		}
		if err != cache.ErrMiss {
			log.Printf("display name cache get failed: %v", err)
		}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return names, nil
	}

	fetched, err := r.inner.BulkDisplayNames(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, name := range fetched {
		names[id] = name
		if err := r.cache.Set(ctx, displayNameKey(id), name, displayNameTTL); err != nil {
			log.Printf("display name cache set failed: %v", err)
		}
	}
	return names, nil
}

func displayNameKey(userID string) string {
	return "display_name:" + userID
}
