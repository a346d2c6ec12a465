package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/robwestz/mcp-blcwrtr/pkg/apperrors"
	"github.com/robwestz/mcp-blcwrtr/pkg/database"
	"github.com/robwestz/mcp-blcwrtr/pkg/models"
)

// ReportRepository provides data access for validation reports. Reports are
// append-only; each validation run stores a new row.
type ReportRepository interface {
	Save(ctx context.Context, orderRef string, report *models.ValidationReport) error
	LatestByOrderRef(ctx context.Context, orderRef string) (*models.ValidationReport, error)
}

type reportRepository struct {
	db *database.DB
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(db *database.DB) ReportRepository {
	return &reportRepository{db: db}
}

var _ ReportRepository = (*reportRepository)(nil)

func (r *reportRepository) Save(ctx context.Context, orderRef string, report *models.ValidationReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal validation report: %w", err)
	}

	query := `
		INSERT INTO validation_reports (order_ref, status, score, report)
		VALUES ($1, $2, $3, $4)`

	if _, err := r.db.Exec(ctx, query, orderRef, report.Status, report.Score, payload); err != nil {
		return fmt.Errorf("failed to save report for %s: %w", orderRef, err)
	}
	return nil
}

func (r *reportRepository) LatestByOrderRef(ctx context.Context, orderRef string) (*models.ValidationReport, error) {
	var payload []byte
	err := r.db.QueryRow(ctx, `
		SELECT report FROM validation_reports
		WHERE order_ref = $1
		ORDER BY created_at DESC
		LIMIT 1`, orderRef).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest report for %s: %w", orderRef, err)
	}

	report := &models.ValidationReport{}
	if err := json.Unmarshal(payload, report); err != nil {
		return nil, fmt.Errorf("unmarshal validation report: %w", err)
	}
	return report, nil
}
