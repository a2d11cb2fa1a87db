package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"labvista/internal/domain"
)

// MockResultRepo is a mock implementation of port.ResultRepository.
type MockResultRepo struct {
	mock.Mock
}

func (m *MockResultRepo) CreateBatch(ctx context.Context, results []domain.LabResult) error {
	args := m.Called(ctx, results)
	return args.Error(0)
}

func (m *MockResultRepo) ListByReport(ctx context.Context, reportID uuid.UUID) ([]domain.LabResult, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LabResult), args.Error(1)
}

func (m *MockResultRepo) ListByTestKey(ctx context.Context, testKey string, limit int) ([]domain.LabResult, error) {
	args := m.Called(ctx, testKey, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LabResult), args.Error(1)
}

func (m *MockResultRepo) DeleteByReport(ctx context.Context, reportID uuid.UUID) error {
	args := m.Called(ctx, reportID)
	return args.Error(0)
}
