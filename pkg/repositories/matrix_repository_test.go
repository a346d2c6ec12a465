//go:build integration

package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robwestz/mcp-blcwrtr/pkg/apperrors"
	"github.com/robwestz/mcp-blcwrtr/pkg/models"
	"github.com/robwestz/mcp-blcwrtr/pkg/testhelpers"
)

func TestMatrixRepositoryRoundTrip(t *testing.T) {
	tdb := testhelpers.GetTestDB(t)
	tdb.TruncateAll(t)
	orders := NewOrderRepository(tdb.DB)
	repo := NewMatrixRepository(tdb.DB)
	ctx := context.Background()

	seedOrder(t, orders, "ORD-IT-20")

	_, err := repo.GetByOrderRef(ctx, "ORD-IT-20")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	matrix := &models.PreflightMatrix{
		OrderRef:          "ORD-IT-20",
		PublicationDomain: "slaktforskarbloggen.se",
		TargetURL:         "https://slaktforskarna.se/dna",
		Locale:            "sv-SE",
		QueryCluster:      "släktforskning dna",
		Intents:           []string{"informational"},
		AnchorPlan: models.AnchorPlan{
			Type:      models.AnchorTypePartial,
			Primary:   "dna-test för släktforskning",
			Backup:    "mer om dna-test för släktforskning",
			Placement: models.AnchorPlacement{Section: models.PlacementSectionMidpoint, Paragraph: 2},
		},
		LSINearWindow: models.LSIWindow{
			Policy: models.LSIWindowPolicy{Min: 6, Max: 10, RadiusSentences: 2, MaxRepeat: 2},
			Terms:  []models.LSITerm{{Lemma: "forskning", Category: "process", Bridge: true}},
		},
		Trust: models.TrustPlan{
			RequiredSignals: 2,
			MinTier:         models.TierT2,
			Sources:         []models.TrustTarget{{Domain: "riksarkivet.se", Tier: models.TierT1}},
		},
		Guards:          models.Guards{NoAnchorInHeaders: true, CompetitorBlock: true, Compliance: []string{"gambling"}},
		WordCount:       models.WordCountRange{Min: 640, Target: 800, Max: 960},
		RegistryVersion: "cafebabe",
	}
	require.NoError(t, repo.Save(ctx, "ORD-IT-20", matrix))

	got, err := repo.GetByOrderRef(ctx, "ORD-IT-20")
	require.NoError(t, err)
	require.Equal(t, matrix, got)

	// Rebuild replaces wholesale.
	matrix.RegistryVersion = "deadbeef"
	matrix.AnchorPlan.Placement.Paragraph = 3
	require.NoError(t, repo.Save(ctx, "ORD-IT-20", matrix))

	got, err = repo.GetByOrderRef(ctx, "ORD-IT-20")
	require.NoError(t, err)
	require.Equal(t, "deadbeef", got.RegistryVersion)
	require.Equal(t, 3, got.AnchorPlan.Placement.Paragraph)
}

func TestMatrixRepositoryRequiresOrder(t *testing.T) {
	tdb := testhelpers.GetTestDB(t)
	tdb.TruncateAll(t)
	repo := NewMatrixRepository(tdb.DB)

	err := repo.Save(context.Background(), "ORD-ORPHAN", &models.PreflightMatrix{OrderRef: "ORD-ORPHAN"})
	require.Error(t, err)
}
