package port

import (
	"context"

	"github.com/google/uuid"

	"labvista/internal/domain"
)

// ReportRepository persists uploaded report metadata and analysis payloads.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error)
	List(ctx context.Context, offset, limit int) ([]domain.Report, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus) error
	UpdateAnalysis(ctx context.Context, report *domain.Report) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ResultRepository persists individual lab results and serves trend queries.
type ResultRepository interface {
	CreateBatch(ctx context.Context, results []domain.LabResult) error
	ListByReport(ctx context.Context, reportID uuid.UUID) ([]domain.LabResult, error)
	ListByTestKey(ctx context.Context, testKey string, limit int) ([]domain.LabResult, error)
	DeleteByReport(ctx context.Context, reportID uuid.UUID) error
}
