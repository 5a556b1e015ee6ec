package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/jonathan/resume-builder/internal/session"
)

// cacheKeyPrefix namespaces imported jobs inside the session store.
const cacheKeyPrefix = "import:"

// JobImporter imports a job description from a URL.
type JobImporter interface {
	Import(ctx context.Context, url string) (*ImportedJob, error)
}

// CachedImporter serves repeated imports of the same URL from a session store.
type CachedImporter struct {
	next  JobImporter
	cache session.Store
}

// NewCachedImporter wraps next with cache. A nil cache disables caching.
func NewCachedImporter(next JobImporter, cache session.Store) *CachedImporter {
	return &CachedImporter{next: next, cache: cache}
}

// Import returns a cached result when present, otherwise imports and caches.
// Cache failures are logged and never fail the import.
func (c *CachedImporter) Import(ctx context.Context, url string) (*ImportedJob, error) {
	if c.cache == nil {
		return c.next.Import(ctx, url)
	}

	key := cacheKeyPrefix + url
	if raw, err := c.cache.Get(ctx, key); err == nil {
		var job ImportedJob
		if err := json.Unmarshal([]byte(raw), &job); err == nil {
			return &job, nil
		}
		log.Printf("[fetch] discarding unreadable cache entry for %s", url)
	} else if !errors.Is(err, session.ErrNotFound) {
		log.Printf("[fetch] cache lookup failed for %s: %v", url, err)
	}

	job, err := c.next.Import(ctx, url)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(job)
	if err == nil {
		err = c.cache.Put(ctx, key, string(data))
	}
	if err != nil {
		log.Printf("[fetch] failed to cache import of %s: %v", url, err)
	}
	return job, nil
}
