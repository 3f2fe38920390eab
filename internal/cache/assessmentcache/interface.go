package assessmentcache

import (
	"context"

	"github.com/clearmeat/assessment/internal/models"
)

// Service defines the interface for the two-tier assessment cache
type Service interface {
	// Get returns the cached result for key and whether it came from the
	// cache. A miss, an expired entry, or any tier-level read failure
	// returns (nil, false, nil); read errors are never propagated.
	Get(ctx context.Context, key string) (*models.AssessmentResult, bool, error)

	// Put stores a result under key with the current timestamp, overwriting
	// any prior entry.
	Put(ctx context.Context, key string, result *models.AssessmentResult) error

	// PurgeExpired deletes every persisted entry older than the TTL and
	// evicts the matching memory entries. Maintenance only; Get already
	// self-heals on a stale read.
	PurgeExpired(ctx context.Context) error

	// ClearAll deletes every persisted entry and empties the memory tier.
	ClearAll(ctx context.Context) error

	// Stats reports entry count and total persisted bytes, (0, 0) on
	// enumeration failure.
	Stats(ctx context.Context) models.CacheStats
}
