package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/robwestz/mcp-blcwrtr/pkg/database"
	"github.com/robwestz/mcp-blcwrtr/pkg/models"
)

// PortfolioRepository provides data access for anchor portfolios.
type PortfolioRepository interface {
	// GetByTargetDomain returns the portfolio for a target domain. A domain
	// with no placed anchors yet returns a zeroed portfolio, never an error.
	GetByTargetDomain(ctx context.Context, targetDomain string) (*models.AnchorPortfolio, error)
	Upsert(ctx context.Context, portfolio *models.AnchorPortfolio) error
}

type portfolioRepository struct {
	db *database.DB
}

// NewPortfolioRepository creates a new PortfolioRepository.
func NewPortfolioRepository(db *database.DB) PortfolioRepository {
	return &portfolioRepository{db: db}
}

var _ PortfolioRepository = (*portfolioRepository)(nil)

func (r *portfolioRepository) GetByTargetDomain(ctx context.Context, targetDomain string) (*models.AnchorPortfolio, error) {
	query := `
		SELECT target_domain, exact, partial, brand, generic, risk, last_calculated
		FROM anchor_portfolio
		WHERE target_domain = $1`

	p := &models.AnchorPortfolio{}
	err := r.db.QueryRow(ctx, query, targetDomain).Scan(
		&p.TargetDomain,
		&p.Exact,
		&p.Partial,
		&p.Brand,
		&p.Generic,
		&p.Risk,
		&p.LastCalculated,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return &models.AnchorPortfolio{TargetDomain: targetDomain}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio for %s: %w", targetDomain, err)
	}
	return p, nil
}

func (r *portfolioRepository) Upsert(ctx context.Context, portfolio *models.AnchorPortfolio) error {
	query := `
		INSERT INTO anchor_portfolio (target_domain, exact, partial, brand, generic, risk, last_calculated)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (target_domain) DO UPDATE SET
			exact = EXCLUDED.exact,
			partial = EXCLUDED.partial,
			brand = EXCLUDED.brand,
			generic = EXCLUDED.generic,
			risk = EXCLUDED.risk,
			last_calculated = now()`

	_, err := r.db.Exec(ctx, query,
		portfolio.TargetDomain,
		portfolio.Exact,
		portfolio.Partial,
		portfolio.Brand,
		portfolio.Generic,
		portfolio.Risk,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert portfolio for %s: %w", portfolio.TargetDomain, err)
	}
	return nil
}
