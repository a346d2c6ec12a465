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

// PublisherProfileRepository provides data access for publisher profiles.
type PublisherProfileRepository interface {
	// GetByDomain returns the profile for a publication domain, or
	// ErrNotFound. Callers treat a missing profile as a hard dependency
	// failure, not a default.
	GetByDomain(ctx context.Context, domain string) (*models.PublisherProfile, error)
	Upsert(ctx context.Context, profile *models.PublisherProfile) error
}

type publisherProfileRepository struct {
	db *database.DB
}

// NewPublisherProfileRepository creates a new PublisherProfileRepository.
func NewPublisherProfileRepository(db *database.DB) PublisherProfileRepository {
	return &publisherProfileRepository{db: db}
}

var _ PublisherProfileRepository = (*publisherProfileRepository)(nil)

func (r *publisherProfileRepository) GetByDomain(ctx context.Context, domain string) (*models.PublisherProfile, error) {
	query := `SELECT domain, voice, topics, examples FROM publisher_profiles WHERE domain = $1`

	profile := &models.PublisherProfile{}
	var voice, topics, examples []byte
	err := r.db.QueryRow(ctx, query, domain).Scan(&profile.Domain, &voice, &topics, &examples)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get publisher profile %s: %w", domain, err)
	}

	if err := json.Unmarshal(voice, &profile.Voice); err != nil {
		return nil, fmt.Errorf("unmarshal publisher voice: %w", err)
	}
	if err := json.Unmarshal(topics, &profile.Topics); err != nil {
		return nil, fmt.Errorf("unmarshal publisher topics: %w", err)
	}
	if err := json.Unmarshal(examples, &profile.Examples); err != nil {
		return nil, fmt.Errorf("unmarshal publisher examples: %w", err)
	}
	return profile, nil
}

func (r *publisherProfileRepository) Upsert(ctx context.Context, profile *models.PublisherProfile) error {
	voice, err := json.Marshal(profile.Voice)
	if err != nil {
		return fmt.Errorf("marshal publisher voice: %w", err)
	}
	topics, err := json.Marshal(profile.Topics)
	if err != nil {
		return fmt.Errorf("marshal publisher topics: %w", err)
	}
	examples, err := json.Marshal(profile.Examples)
	if err != nil {
		return fmt.Errorf("marshal publisher examples: %w", err)
	}

	query := `
		INSERT INTO publisher_profiles (domain, voice, topics, examples)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (domain) DO UPDATE SET
			voice = EXCLUDED.voice,
			topics = EXCLUDED.topics,
			examples = EXCLUDED.examples`

	if _, err := r.db.Exec(ctx, query, profile.Domain, voice, topics, examples); err != nil {
		return fmt.Errorf("failed to upsert publisher profile %s: %w", profile.Domain, err)
	}
	return nil
}
