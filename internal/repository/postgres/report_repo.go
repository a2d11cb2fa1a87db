package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"labvista/internal/domain"
	"labvista/internal/port"
)

type reportRepo struct {
	db *sqlx.DB
}

// NewReportRepo creates a new PostgreSQL-backed ReportRepository.
func NewReportRepo(db *sqlx.DB) port.ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) Create(ctx context.Context, report *domain.Report) error {
	now := time.Now().UTC()
	report.CreatedAt = now
	report.UpdatedAt = now

	query := `INSERT INTO reports
		(id, file_name, original_name, file_type, file_size,
		 s3_bucket, s3_key, content_type, status, model_used,
		 patient_id, patient_name, test_date, analysis, process_error,
		 processed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err := r.db.ExecContext(ctx, query,
		report.ID, report.FileName, report.OriginalName, report.FileType, report.FileSize,
		report.S3Bucket, report.S3Key, report.ContentType, report.Status, report.ModelUsed,
		report.PatientID, report.PatientName, report.TestDate, report.Analysis, report.ProcessError,
		report.ProcessedAt, report.CreatedAt, report.UpdatedAt)
	if err != nil {
		return fmt.Errorf("reportRepo.Create: %w", err)
	}
	return nil
}

func (r *reportRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	var report domain.Report
	err := r.db.GetContext(ctx, &report,
		"SELECT * FROM reports WHERE id = $1 AND status != $2", id, domain.ReportStatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reportRepo.GetByID: %w", err)
	}
	return &report, nil
}

func (r *reportRepo) List(ctx context.Context, offset, limit int) ([]domain.Report, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM reports WHERE status != $1", domain.ReportStatusDeleted)
	if err != nil {
		return nil, 0, fmt.Errorf("reportRepo.List count: %w", err)
	}

	var reports []domain.Report
	err = r.db.SelectContext(ctx, &reports,
		`SELECT * FROM reports
		 WHERE status != $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		domain.ReportStatusDeleted, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("reportRepo.List: %w", err)
	}
	return reports, total, nil
}

func (r *reportRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE reports SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("reportRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *reportRepo) UpdateAnalysis(ctx context.Context, report *domain.Report) error {
	now := time.Now().UTC()
	report.UpdatedAt = now

	result, err := r.db.ExecContext(ctx,
		`UPDATE reports SET
			status = $1, model_used = $2, patient_id = $3, patient_name = $4,
			test_date = $5, analysis = $6, process_error = $7, processed_at = $8, updated_at = $9
		 WHERE id = $10`,
		report.Status, report.ModelUsed, report.PatientID, report.PatientName,
		report.TestDate, report.Analysis, report.ProcessError, report.ProcessedAt, report.UpdatedAt,
		report.ID)
	if err != nil {
		return fmt.Errorf("reportRepo.UpdateAnalysis: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *reportRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.UpdateStatus(ctx, id, domain.ReportStatusDeleted)
}
