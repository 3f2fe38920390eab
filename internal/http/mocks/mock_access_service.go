package mocks

import (
	"context"

	"github.com/clearmeat/assessment/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockAccessService is a mock implementation of assessment.AccessService
type MockAccessService struct {
	mock.Mock
}

// FetchAssessment mocks the FetchAssessment method of assessment.AccessService
func (m *MockAccessService) FetchAssessment(ctx context.Context, productID string) (*models.AssessmentResult, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AssessmentResult), args.Error(1)
}

// ClearAllCachedAssessments mocks the ClearAllCachedAssessments method of assessment.AccessService
func (m *MockAccessService) ClearAllCachedAssessments(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// PurgeExpiredAssessments mocks the PurgeExpiredAssessments method of assessment.AccessService
func (m *MockAccessService) PurgeExpiredAssessments(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// CacheStatistics mocks the CacheStatistics method of assessment.AccessService
func (m *MockAccessService) CacheStatistics(ctx context.Context) models.CacheStats {
	args := m.Called(ctx)
	return args.Get(0).(models.CacheStats)
}

// IsAuthenticated mocks the IsAuthenticated method of assessment.AccessService
func (m *MockAccessService) IsAuthenticated(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

// StoreCredential mocks the StoreCredential method of assessment.AccessService
func (m *MockAccessService) StoreCredential(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// ClearCredential mocks the ClearCredential method of assessment.AccessService
func (m *MockAccessService) ClearCredential(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
