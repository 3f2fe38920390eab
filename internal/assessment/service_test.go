package assessment

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/clearmeat/assessment/internal/mocks"
	"github.com/clearmeat/assessment/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testMaxRetries = 2
	testBaseDelay  = time.Millisecond
)

type serviceFixture struct {
	fetcher *mocks.MockFetcher
	cache   *mocks.MockAssessmentCache
	creds   *mocks.MockCredentialStore
	logger  *mocks.MockLogger
	service AccessService
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		fetcher: new(mocks.MockFetcher),
		cache:   new(mocks.MockAssessmentCache),
		creds:   new(mocks.MockCredentialStore),
		logger:  new(mocks.MockLogger),
	}
	f.logger.AllowAll()
	f.service = NewService(f.fetcher, f.cache, f.creds, f.logger, testMaxRetries, testBaseDelay)
	return f
}

func sampleResult(productID string) *models.AssessmentResult {
	return &models.AssessmentResult{
		ProductID: productID,
		Name:      "Smoked Ham",
		Grade:     "C",
		RiskScore: 0.42,
	}
}

func timeoutErr() error {
	return context.DeadlineExceeded
}

func TestFetchAssessment_CacheHit_SkipsNetwork(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	cached := sampleResult("123")
	f.cache.On("Get", ctx, "123").Return(cached, true, nil)

	result, err := f.service.FetchAssessment(ctx, "123")
	require.NoError(t, err)
	assert.True(t, result.Cached)
	assert.Equal(t, "Smoked Ham", result.Name)

	f.fetcher.AssertNotCalled(t, "Fetch")
	f.cache.AssertNotCalled(t, "Put")
}

func TestFetchAssessment_CacheMiss_FetchesAndCaches(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	fetched := sampleResult("123")
	f.cache.On("Get", ctx, "123").Return(nil, false, nil)
	f.fetcher.On("Fetch", ctx, "123").Return(fetched, nil).Once()
	f.cache.On("Put", ctx, "123", fetched).Return(nil).Once()

	result, err := f.service.FetchAssessment(ctx, "123")
	require.NoError(t, err)
	assert.False(t, result.Cached)

	f.fetcher.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestFetchAssessment_CacheWriteFailure_StillReturnsResult(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	fetched := sampleResult("123")
	f.cache.On("Get", ctx, "123").Return(nil, false, nil)
	f.fetcher.On("Fetch", ctx, "123").Return(fetched, nil)
	f.cache.On("Put", ctx, "123", fetched).Return(errors.New("disk full"))

	result, err := f.service.FetchAssessment(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, "123", result.ProductID)
}

func TestFetchAssessment_EmptyProductID(t *testing.T) {
	f := newServiceFixture()

	_, err := f.service.FetchAssessment(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrInvalidProductID)
}

func TestFetchAssessment_TimeoutsExhaustRetryBudget(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	f.cache.On("Get", ctx, "123").Return(nil, false, nil)
	f.fetcher.On("Fetch", ctx, "123").Return(nil, timeoutErr()).Times(testMaxRetries + 1)

	_, err := f.service.FetchAssessment(ctx, "123")

	var fetchErr *models.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, models.FetchErrTimeoutExhausted, fetchErr.Kind)

	// Exactly one initial attempt plus maxRetries retries, never more
	f.fetcher.AssertNumberOfCalls(t, "Fetch", testMaxRetries+1)
}

func TestFetchAssessment_TimeoutThenSuccess(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	fetched := sampleResult("123")
	f.cache.On("Get", ctx, "123").Return(nil, false, nil)
	f.fetcher.On("Fetch", ctx, "123").Return(nil, timeoutErr()).Once()
	f.fetcher.On("Fetch", ctx, "123").Return(fetched, nil).Once()
	f.cache.On("Put", ctx, "123", fetched).Return(nil)

	result, err := f.service.FetchAssessment(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, "123", result.ProductID)

	f.fetcher.AssertNumberOfCalls(t, "Fetch", 2)
}

func TestFetchAssessment_NotFound_NoRetry(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	f.cache.On("Get", ctx, "123").Return(nil, false, nil)
	f.fetcher.On("Fetch", ctx, "123").Return(nil, &models.HTTPStatusError{Code: http.StatusNotFound})

	_, err := f.service.FetchAssessment(ctx, "123")

	var fetchErr *models.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, models.FetchErrNotFound, fetchErr.Kind)

	f.fetcher.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestFetchAssessment_ServerError_NoRetry(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	f.cache.On("Get", ctx, "123").Return(nil, false, nil)
	f.fetcher.On("Fetch", ctx, "123").Return(nil, &models.HTTPStatusError{Code: http.StatusInternalServerError})

	_, err := f.service.FetchAssessment(ctx, "123")

	var fetchErr *models.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, models.FetchErrServiceUnavailable, fetchErr.Kind)

	f.fetcher.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestFetchAssessment_OtherClientError_TemporarilyUnavailable(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	f.cache.On("Get", ctx, "123").Return(nil, false, nil)
	f.fetcher.On("Fetch", ctx, "123").Return(nil, &models.HTTPStatusError{Code: http.StatusForbidden})

	_, err := f.service.FetchAssessment(ctx, "123")

	var fetchErr *models.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, models.FetchErrTemporarilyUnavailable, fetchErr.Kind)
}

func TestFetchAssessment_DecodeFailure(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	f.cache.On("Get", ctx, "123").Return(nil, false, nil)
	f.fetcher.On("Fetch", ctx, "123").Return(nil, models.ErrMalformedResponse)

	_, err := f.service.FetchAssessment(ctx, "123")

	var fetchErr *models.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, models.FetchErrDecodeFailure, fetchErr.Kind)

	f.fetcher.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestFetchAssessment_OtherTransportError_SurfacesAsIs(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	cause := errors.New("connection refused")
	f.cache.On("Get", ctx, "123").Return(nil, false, nil)
	f.fetcher.On("Fetch", ctx, "123").Return(nil, cause)

	_, err := f.service.FetchAssessment(ctx, "123")
	assert.ErrorIs(t, err, cause)

	var fetchErr *models.FetchError
	assert.False(t, errors.As(err, &fetchErr))
	f.fetcher.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestFetchAssessment_CancellationStopsRetry(t *testing.T) {
	f := newServiceFixture()

	ctx, cancel := context.WithCancel(context.Background())

	f.cache.On("Get", ctx, "123").Return(nil, false, nil)
	f.fetcher.On("Fetch", ctx, "123").Run(func(_ mock.Arguments) {
		cancel()
	}).Return(nil, timeoutErr())

	_, err := f.service.FetchAssessment(ctx, "123")
	assert.ErrorIs(t, err, context.Canceled)

	f.fetcher.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestBackoffDelay(t *testing.T) {
	base := 2 * time.Second

	assert.Equal(t, 2*time.Second, backoffDelay(1, base))
	assert.Equal(t, 8*time.Second, backoffDelay(2, base))
}

func TestSleepBackoff_CancelledPromptly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := sleepBackoff(ctx, time.Minute)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClearAllCachedAssessments(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	f.cache.On("ClearAll", ctx).Return(nil).Once()

	require.NoError(t, f.service.ClearAllCachedAssessments(ctx))
	f.cache.AssertExpectations(t)
}

func TestClearAllCachedAssessments_Failure(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	f.cache.On("ClearAll", ctx).Return(errors.New("redis down"))

	assert.Error(t, f.service.ClearAllCachedAssessments(ctx))
}

func TestPurgeExpiredAssessments(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	f.cache.On("PurgeExpired", ctx).Return(nil).Once()

	require.NoError(t, f.service.PurgeExpiredAssessments(ctx))
	f.cache.AssertExpectations(t)
}

func TestCacheStatistics(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	f.cache.On("Stats", ctx).Return(models.CacheStats{Count: 3, TotalBytes: 2048})

	stats := f.service.CacheStatistics(ctx)
	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, int64(2048), stats.TotalBytes)
}

func TestIsAuthenticated(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		err      error
		expected bool
	}{
		{"token present", "tok-123", nil, true},
		{"no token", "", nil, false},
		{"store failure", "", errors.New("keyring locked"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture()
			ctx := context.Background()

			f.creds.On("CurrentToken", ctx).Return(tt.token, tt.err)

			assert.Equal(t, tt.expected, f.service.IsAuthenticated(ctx))
		})
	}
}

func TestStoreCredential_Valid(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	f.creds.On("IsStructurallyValid", "tok-123").Return(true)
	f.creds.On("Store", ctx, "tok-123").Return(nil).Once()

	require.NoError(t, f.service.StoreCredential(ctx, "tok-123"))
	f.creds.AssertExpectations(t)
}

func TestStoreCredential_Invalid(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	f.creds.On("IsStructurallyValid", "garbage").Return(false)

	err := f.service.StoreCredential(ctx, "garbage")
	assert.ErrorIs(t, err, models.ErrInvalidCredential)

	f.creds.AssertNotCalled(t, "Store")
}

func TestClearCredential(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	f.creds.On("Clear", ctx).Return(nil).Once()

	require.NoError(t, f.service.ClearCredential(ctx))
	f.creds.AssertExpectations(t)
}
