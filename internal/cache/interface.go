package cache

import (
	"context"
	"time"

	"github.com/clearmeat/assessment/internal/models"
)

// Entry is a cached assessment together with its capture time. An entry is
// valid iff now - CapturedAt < TTL; validity is judged by the composing
// cache, not by the tier.
type Entry struct {
	Payload    models.AssessmentResult `json:"payload"`
	CapturedAt time.Time               `json:"timestamp"`
}

// DurableTier defines the interface for the authoritative cache tier.
// External packages should use this interface, not the concrete implementations.
// Implementations report a missing or unreadable entry as models.ErrCacheMiss.
type DurableTier interface {
	ReadEntry(ctx context.Context, key string) (*Entry, error)
	WriteEntry(ctx context.Context, key string, entry *Entry) error
	DeleteEntry(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (models.CacheStats, error)
	Clear(ctx context.Context) error
}
