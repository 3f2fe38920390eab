package assessmentcache

import (
	"context"
	"errors"
	"time"

	"github.com/clearmeat/assessment/internal/cache"
	"github.com/clearmeat/assessment/internal/models"
)

// assessmentCache composes the bounded memory accelerator with a durable
// tier. Memory is never authoritative: a memory miss always consults the
// durable tier, and expired entries found during a read are deleted from
// both tiers as a side effect.
type assessmentCache struct {
	memory  *cache.MemoryTier
	durable cache.DurableTier
	ttl     time.Duration
	now     func() time.Time
}

// New creates a two-tier assessment cache with the given TTL
func New(memory *cache.MemoryTier, durable cache.DurableTier, ttl time.Duration) Service {
	return newAssessmentCache(memory, durable, ttl)
}

// newAssessmentCache creates the concrete implementation
func newAssessmentCache(memory *cache.MemoryTier, durable cache.DurableTier, ttl time.Duration) *assessmentCache {
	return &assessmentCache{
		memory:  memory,
		durable: durable,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get checks the memory tier first, then the durable tier, promoting
// durable hits into memory. Expired entries are deleted on read.
func (c *assessmentCache) Get(ctx context.Context, key string) (*models.AssessmentResult, bool, error) {
	if entry := c.memory.Get(key); entry != nil {
		if c.fresh(entry) {
			result := entry.Payload
			return &result, true, nil
		}
		c.memory.Delete(key)
		// The durable copy is just as stale; remove it too
		_ = c.durable.DeleteEntry(ctx, key)
		return nil, false, nil
	}

	entry, err := c.durable.ReadEntry(ctx, key)
	if err != nil {
		if errors.Is(err, models.ErrCacheMiss) {
			return nil, false, nil
		}
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		// Unreadable durable state is a miss, never a caller error
		return nil, false, nil
	}

	if !c.fresh(entry) {
		_ = c.durable.DeleteEntry(ctx, key)
		return nil, false, nil
	}

	c.memory.Set(key, entry)
	result := entry.Payload
	return &result, true, nil
}

// Put writes the durable tier first, then updates the memory tier
func (c *assessmentCache) Put(ctx context.Context, key string, result *models.AssessmentResult) error {
	entry := &cache.Entry{
		Payload:    *result,
		CapturedAt: c.now().UTC(),
	}

	if err := c.durable.WriteEntry(ctx, key, entry); err != nil {
		return err
	}

	c.memory.Set(key, entry)
	return nil
}

// PurgeExpired enumerates persisted entries and deletes any past the TTL
func (c *assessmentCache) PurgeExpired(ctx context.Context) error {
	keys, err := c.durable.Keys(ctx)
	if err != nil {
		return err
	}

	for _, key := range keys {
		entry, err := c.durable.ReadEntry(ctx, key)
		if err != nil {
			// ReadEntry already removed anything unreadable
			c.memory.Delete(key)
			continue
		}
		if !c.fresh(entry) {
			if err := c.durable.DeleteEntry(ctx, key); err != nil {
				return err
			}
			c.memory.Delete(key)
		}
	}

	return nil
}

// ClearAll wipes both tiers
func (c *assessmentCache) ClearAll(ctx context.Context) error {
	if err := c.durable.Clear(ctx); err != nil {
		return err
	}
	c.memory.Flush()
	return nil
}

// Stats reports durable-tier counts; (0, 0) on enumeration failure
func (c *assessmentCache) Stats(ctx context.Context) models.CacheStats {
	stats, err := c.durable.Stats(ctx)
	if err != nil {
		return models.CacheStats{}
	}
	return stats
}

func (c *assessmentCache) fresh(entry *cache.Entry) bool {
	return c.now().Sub(entry.CapturedAt) < c.ttl
}
