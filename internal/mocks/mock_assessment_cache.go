package mocks

import (
	"context"

	"github.com/clearmeat/assessment/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockAssessmentCache is a mock implementation of assessmentcache.Service
type MockAssessmentCache struct {
	mock.Mock
}

// Get mocks the Get method of assessmentcache.Service
func (m *MockAssessmentCache) Get(ctx context.Context, key string) (*models.AssessmentResult, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.AssessmentResult), args.Bool(1), args.Error(2)
}

// Put mocks the Put method of assessmentcache.Service
func (m *MockAssessmentCache) Put(ctx context.Context, key string, result *models.AssessmentResult) error {
	args := m.Called(ctx, key, result)
	return args.Error(0)
}

// PurgeExpired mocks the PurgeExpired method of assessmentcache.Service
func (m *MockAssessmentCache) PurgeExpired(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ClearAll mocks the ClearAll method of assessmentcache.Service
func (m *MockAssessmentCache) ClearAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Stats mocks the Stats method of assessmentcache.Service
func (m *MockAssessmentCache) Stats(ctx context.Context) models.CacheStats {
	args := m.Called(ctx)
	return args.Get(0).(models.CacheStats)
}
