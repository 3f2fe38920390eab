package assessment

import (
	"context"
	"errors"
	"time"

	"github.com/clearmeat/assessment/internal/cache/assessmentcache"
	"github.com/clearmeat/assessment/internal/credstore"
	"github.com/clearmeat/assessment/internal/errclass"
	"github.com/clearmeat/assessment/internal/fetcher"
	"github.com/clearmeat/assessment/internal/logger"
	"github.com/clearmeat/assessment/internal/models"
)

// Service implements the AccessService interface
type Service struct {
	fetcher    fetcher.Service
	cache      assessmentcache.Service
	creds      credstore.Service
	logger     logger.Service
	maxRetries int
	baseDelay  time.Duration
}

// NewService creates a new assessment access service
func NewService(
	fetcher fetcher.Service,
	cache assessmentcache.Service,
	creds credstore.Service,
	logger logger.Service,
	maxRetries int,
	baseDelay time.Duration,
) AccessService {
	return &Service{
		fetcher:    fetcher,
		cache:      cache,
		creds:      creds,
		logger:     logger,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// FetchAssessment resolves a product identifier cache-first, falling back
// to the network with bounded retry on transport timeouts
func (s *Service) FetchAssessment(ctx context.Context, productID string) (*models.AssessmentResult, error) {
	if productID == "" {
		return nil, models.ErrInvalidProductID
	}

	start := time.Now()

	if cached, hit, err := s.cache.Get(ctx, productID); err == nil && hit {
		s.logger.LogSuccess(ctx, logger.OpCacheHit, productID, "Served assessment from cache", map[string]interface{}{
			"duration_ms": time.Since(start).Milliseconds(),
		})
		cached.Cached = true
		return cached, nil
	} else if err != nil {
		return nil, err
	}

	s.logger.LogInfo(ctx, logger.OpCacheMiss, "Cache miss, fetching from network", map[string]interface{}{
		"product_id": productID,
	})

	result, err := s.fetchWithRetry(ctx, productID)
	if err != nil {
		s.logger.LogError(ctx, logger.OpFetchAssessment, productID, "Assessment fetch failed", err, models.LogSeverityMedium, map[string]interface{}{
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil, err
	}

	result.Cached = false

	if err := s.cache.Put(ctx, productID, result); err != nil {
		// A failed cache write never fails the fetch
		s.logger.LogError(ctx, logger.OpFetchAssessment, productID, "Failed to cache assessment", err, models.LogSeverityLow, nil)
	}

	s.logger.LogSuccess(ctx, logger.OpFetchAssessment, productID, "Successfully fetched assessment", map[string]interface{}{
		"grade":       result.Grade,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return result, nil
}

// fetchWithRetry performs up to maxRetries+1 network attempts, retrying
// only classifier-confirmed timeouts
func (s *Service) fetchWithRetry(ctx context.Context, productID string) (*models.AssessmentResult, error) {
	var lastErr error

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		result, err := s.fetcher.Fetch(ctx, productID)
		if err == nil {
			return result, nil
		}
		lastErr = err

		// Caller cancellation is never retried
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		cls := errclass.Classify(err)
		switch cls.Kind {
		case errclass.KindHTTPStatus:
			return nil, s.terminalStatusError(cls.StatusCode, err)

		case errclass.KindTimeout:
			if attempt == s.maxRetries {
				return nil, models.NewFetchError(models.FetchErrTimeoutExhausted, lastErr)
			}
			retry := attempt + 1
			delay := backoffDelay(retry, s.baseDelay)
			s.logger.LogInfo(ctx, logger.OpNetworkAttempt, "Timed out, backing off before retry", map[string]interface{}{
				"product_id": productID,
				"attempt":    retry,
				"delay_ms":   delay.Milliseconds(),
			})
			if err := sleepBackoff(ctx, delay); err != nil {
				return nil, err
			}

		default:
			if errors.Is(err, models.ErrMalformedResponse) {
				return nil, models.NewFetchError(models.FetchErrDecodeFailure, err)
			}
			// Other transport errors surface as-is, never retried
			return nil, err
		}
	}

	return nil, models.NewFetchError(models.FetchErrTimeoutExhausted, lastErr)
}

// terminalStatusError maps a non-2xx status to its terminal fetch error
func (s *Service) terminalStatusError(code int, err error) error {
	switch {
	case code >= 500:
		return models.NewFetchError(models.FetchErrServiceUnavailable, err)
	case code == 404:
		return models.NewFetchError(models.FetchErrNotFound, err)
	default:
		return models.NewFetchError(models.FetchErrTemporarilyUnavailable, err)
	}
}

// backoffDelay computes the delay before the n-th retry (1-based):
// base for the first retry, then 4x base for the second
func backoffDelay(retry int, base time.Duration) time.Duration {
	return time.Duration(retry) * base << (retry - 1)
}

// sleepBackoff waits out the delay, returning early when ctx is cancelled
func sleepBackoff(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ClearAllCachedAssessments wipes both cache tiers
func (s *Service) ClearAllCachedAssessments(ctx context.Context) error {
	if err := s.cache.ClearAll(ctx); err != nil {
		s.logger.LogError(ctx, logger.OpCacheClear, "", "Failed to clear assessment cache", err, models.LogSeverityMedium, nil)
		return err
	}
	s.logger.LogSuccess(ctx, logger.OpCacheClear, "", "Cleared assessment cache", nil)
	return nil
}

// PurgeExpiredAssessments deletes cached entries past their TTL
func (s *Service) PurgeExpiredAssessments(ctx context.Context) error {
	if err := s.cache.PurgeExpired(ctx); err != nil {
		s.logger.LogError(ctx, logger.OpCachePurge, "", "Failed to purge expired assessments", err, models.LogSeverityLow, nil)
		return err
	}
	return nil
}

// CacheStatistics reports durable-tier entry count and total bytes
func (s *Service) CacheStatistics(ctx context.Context) models.CacheStats {
	return s.cache.Stats(ctx)
}

// IsAuthenticated reports whether a bearer credential is stored
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	token, err := s.creds.CurrentToken(ctx)
	return err == nil && token != ""
}

// StoreCredential validates the token structurally before persisting it
func (s *Service) StoreCredential(ctx context.Context, token string) error {
	if !s.creds.IsStructurallyValid(token) {
		return models.ErrInvalidCredential
	}
	if err := s.creds.Store(ctx, token); err != nil {
		s.logger.LogError(ctx, logger.OpCredentialSet, "", "Failed to store credential", err, models.LogSeverityHigh, nil)
		return err
	}
	s.logger.LogSuccess(ctx, logger.OpCredentialSet, "", "Stored bearer credential", nil)
	return nil
}

// ClearCredential deletes the stored credential
func (s *Service) ClearCredential(ctx context.Context) error {
	if err := s.creds.Clear(ctx); err != nil {
		s.logger.LogError(ctx, logger.OpCredentialClear, "", "Failed to clear credential", err, models.LogSeverityHigh, nil)
		return err
	}
	s.logger.LogSuccess(ctx, logger.OpCredentialClear, "", "Cleared bearer credential", nil)
	return nil
}
