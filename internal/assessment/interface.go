package assessment

import (
	"context"

	"github.com/clearmeat/assessment/internal/models"
)

// AccessService defines the caller-facing interface of the resilient
// remote-assessment access layer
// External packages should use this interface, not the concrete implementations
type AccessService interface {
	// FetchAssessment resolves a product identifier to its assessment:
	// cache first, then the network with bounded retry on timeouts.
	// Terminal failures are *models.FetchError values carrying one distinct
	// user-facing message each.
	FetchAssessment(ctx context.Context, productID string) (*models.AssessmentResult, error)

	// ClearAllCachedAssessments wipes both cache tiers
	ClearAllCachedAssessments(ctx context.Context) error

	// PurgeExpiredAssessments deletes cached entries past their TTL
	PurgeExpiredAssessments(ctx context.Context) error

	// CacheStatistics reports entry count and total persisted bytes
	CacheStatistics(ctx context.Context) models.CacheStats

	// IsAuthenticated reports whether a bearer credential is stored
	IsAuthenticated(ctx context.Context) bool

	// StoreCredential validates the token structurally and persists it
	StoreCredential(ctx context.Context, token string) error

	// ClearCredential deletes the stored credential
	ClearCredential(ctx context.Context) error
}
