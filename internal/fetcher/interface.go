package fetcher

import (
	"context"

	"github.com/clearmeat/assessment/internal/models"
)

// Service defines the interface for single-attempt assessment fetches.
// Retry policy lives above this layer.
// External packages should use this interface, not the concrete implementations
type Service interface {
	Fetch(ctx context.Context, productID string) (*models.AssessmentResult, error)
}

// TokenSource supplies the bearer credential for outbound requests.
// An empty token means the request proceeds unauthenticated.
type TokenSource interface {
	CurrentToken(ctx context.Context) (string, error)
}
