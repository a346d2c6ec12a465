package repositories

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/robwestz/mcp-blcwrtr/pkg/database"
	"github.com/robwestz/mcp-blcwrtr/pkg/models"
)

// TrustRegistryRepository provides read access to the trust registry.
type TrustRegistryRepository interface {
	// Snapshot returns the full registry with a content-derived version
	// string, so a matrix can pin the exact snapshot it was built against.
	Snapshot(ctx context.Context) (*models.TrustRegistry, error)
	Upsert(ctx context.Context, entry *models.TrustRegistryEntry) error
}

type trustRegistryRepository struct {
	db *database.DB
}

// NewTrustRegistryRepository creates a new TrustRegistryRepository.
func NewTrustRegistryRepository(db *database.DB) TrustRegistryRepository {
	return &trustRegistryRepository{db: db}
}

var _ TrustRegistryRepository = (*trustRegistryRepository)(nil)

func (r *trustRegistryRepository) Snapshot(ctx context.Context) (*models.TrustRegistry, error) {
	query := `
		SELECT domain, tier, COALESCE(competitor, false), COALESCE(category, ''), COALESCE(industry, '')
		FROM trust_registry
		ORDER BY domain`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot trust registry: %w", err)
	}
	defer rows.Close()

	registry := &models.TrustRegistry{}
	h := fnv.New64a()
	for rows.Next() {
		var e models.TrustRegistryEntry
		if err := rows.Scan(&e.Domain, &e.Tier, &e.Competitor, &e.Category, &e.Industry); err != nil {
			return nil, fmt.Errorf("failed to scan trust registry entry: %w", err)
		}
		fmt.Fprintf(h, "%s|%s|%t|%s|%s\n", e.Domain, e.Tier, e.Competitor, e.Category, e.Industry)
		registry.Entries = append(registry.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	registry.Version = fmt.Sprintf("%x", h.Sum64())
	return registry, nil
}

func (r *trustRegistryRepository) Upsert(ctx context.Context, entry *models.TrustRegistryEntry) error {
	query := `
		INSERT INTO trust_registry (domain, tier, competitor, category, industry)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (domain) DO UPDATE SET
			tier = EXCLUDED.tier,
			competitor = EXCLUDED.competitor,
			category = EXCLUDED.category,
			industry = EXCLUDED.industry`

	if _, err := r.db.Exec(ctx, query,
		entry.Domain, entry.Tier, entry.Competitor, entry.Category, entry.Industry); err != nil {
		return fmt.Errorf("failed to upsert trust registry entry %s: %w", entry.Domain, err)
	}
	return nil
}
