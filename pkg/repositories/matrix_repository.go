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

// MatrixRepository provides data access for preflight matrices.
type MatrixRepository interface {
	Save(ctx context.Context, orderRef string, matrix *models.PreflightMatrix) error
	GetByOrderRef(ctx context.Context, orderRef string) (*models.PreflightMatrix, error)
}

type matrixRepository struct {
	db *database.DB
}

// NewMatrixRepository creates a new MatrixRepository.
func NewMatrixRepository(db *database.DB) MatrixRepository {
	return &matrixRepository{db: db}
}

var _ MatrixRepository = (*matrixRepository)(nil)

func (r *matrixRepository) Save(ctx context.Context, orderRef string, matrix *models.PreflightMatrix) error {
	payload, err := json.Marshal(matrix)
	if err != nil {
		return fmt.Errorf("marshal preflight matrix: %w", err)
	}

	// Rebuilding preflight replaces the stored matrix wholesale.
	query := `
		INSERT INTO preflight_matrices (order_ref, matrix)
		VALUES ($1, $2)
		ON CONFLICT (order_ref) DO UPDATE SET
			matrix = EXCLUDED.matrix,
			created_at = now()`

	if _, err := r.db.Exec(ctx, query, orderRef, payload); err != nil {
		return fmt.Errorf("failed to save matrix for %s: %w", orderRef, err)
	}
	return nil
}

func (r *matrixRepository) GetByOrderRef(ctx context.Context, orderRef string) (*models.PreflightMatrix, error) {
	var payload []byte
	err := r.db.QueryRow(ctx,
		`SELECT matrix FROM preflight_matrices WHERE order_ref = $1`, orderRef).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get matrix for %s: %w", orderRef, err)
	}

	matrix := &models.PreflightMatrix{}
	if err := json.Unmarshal(payload, matrix); err != nil {
		return nil, fmt.Errorf("unmarshal preflight matrix: %w", err)
	}
	return matrix, nil
}
