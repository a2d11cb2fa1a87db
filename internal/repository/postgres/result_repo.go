package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"labvista/internal/domain"
	"labvista/internal/port"
)

type resultRepo struct {
	db *sqlx.DB
}

// NewResultRepo creates a new PostgreSQL-backed ResultRepository.
func NewResultRepo(db *sqlx.DB) port.ResultRepository {
	return &resultRepo{db: db}
}

func (r *resultRepo) CreateBatch(ctx context.Context, results []domain.LabResult) error {
	if len(results) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for i := range results {
		results[i].CreatedAt = now
	}

	query := `INSERT INTO lab_results
		(id, report_id, test_name, test_key, value, unit,
		 ref_min, ref_max, status, category, result_date, created_at)
		VALUES (:id, :report_id, :test_name, :test_key, :value, :unit,
		 :ref_min, :ref_max, :status, :category, :result_date, :created_at)`

	_, err := r.db.NamedExecContext(ctx, query, results)
	if err != nil {
		return fmt.Errorf("resultRepo.CreateBatch: %w", err)
	}
	return nil
}

func (r *resultRepo) ListByReport(ctx context.Context, reportID uuid.UUID) ([]domain.LabResult, error) {
	var results []domain.LabResult
	err := r.db.SelectContext(ctx, &results,
		`SELECT * FROM lab_results
		 WHERE report_id = $1
		 ORDER BY test_name ASC`, reportID)
	if err != nil {
		return nil, fmt.Errorf("resultRepo.ListByReport: %w", err)
	}
	return results, nil
}

func (r *resultRepo) ListByTestKey(ctx context.Context, testKey string, limit int) ([]domain.LabResult, error) {
	var results []domain.LabResult
	err := r.db.SelectContext(ctx, &results,
		`SELECT * FROM lab_results
		 WHERE test_key = $1
		 ORDER BY result_date DESC LIMIT $2`, testKey, limit)
	if err != nil {
		return nil, fmt.Errorf("resultRepo.ListByTestKey: %w", err)
	}
	return results, nil
}

func (r *resultRepo) DeleteByReport(ctx context.Context, reportID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM lab_results WHERE report_id = $1", reportID)
	if err != nil {
		return fmt.Errorf("resultRepo.DeleteByReport: %w", err)
	}
	return nil
}
