//go:build integration

package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robwestz/mcp-blcwrtr/pkg/models"
	"github.com/robwestz/mcp-blcwrtr/pkg/testhelpers"
)

func TestTrustRegistrySnapshotVersioning(t *testing.T) {
	tdb := testhelpers.GetTestDB(t)
	tdb.TruncateAll(t)
	repo := NewTrustRegistryRepository(tdb.DB)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.TrustRegistryEntry{
		Domain: "riksarkivet.se", Tier: models.TierT1, Category: "government",
	}))
	require.NoError(t, repo.Upsert(ctx, &models.TrustRegistryEntry{
		Domain: "spelkungen.se", Tier: models.TierT3, Competitor: true, Industry: "gaming",
	}))

	first, err := repo.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, first.Entries, 2)
	require.NotEmpty(t, first.Version)

	// Entries come back sorted, and typed correctly.
	require.Equal(t, "riksarkivet.se", first.Entries[0].Domain)
	require.Equal(t, models.TierT1, first.Entries[0].Tier)
	require.True(t, first.Entries[1].Competitor)

	// The version is derived from content: unchanged data, unchanged version.
	again, err := repo.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, first.Version, again.Version)

	// Any content change moves the version.
	require.NoError(t, repo.Upsert(ctx, &models.TrustRegistryEntry{
		Domain: "scb.se", Tier: models.TierT1, Category: "government",
	}))
	changed, err := repo.Snapshot(ctx)
	require.NoError(t, err)
	require.NotEqual(t, first.Version, changed.Version)

	// So does flipping a field on an existing entry.
	require.NoError(t, repo.Upsert(ctx, &models.TrustRegistryEntry{
		Domain: "riksarkivet.se", Tier: models.TierT2, Category: "government",
	}))
	retiered, err := repo.Snapshot(ctx)
	require.NoError(t, err)
	require.NotEqual(t, changed.Version, retiered.Version)
}

func TestTrustRegistryEmptySnapshot(t *testing.T) {
	tdb := testhelpers.GetTestDB(t)
	tdb.TruncateAll(t)
	repo := NewTrustRegistryRepository(tdb.DB)

	reg, err := repo.Snapshot(context.Background())
	require.NoError(t, err)
	require.Empty(t, reg.Entries)
	require.NotEmpty(t, reg.Version)
}
