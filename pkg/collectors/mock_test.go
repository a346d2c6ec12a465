package collectors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSerpSnapshotIsDeterministic(t *testing.T) {
	c := NewMockCollector(zap.NewNop())
	ctx := context.Background()

	first, err := c.SerpSnapshot(ctx, "släktforskning dna", "sv-SE")
	require.NoError(t, err)
	second, err := c.SerpSnapshot(ctx, "släktforskning dna", "sv-SE")
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestSerpSnapshotVariesByLocale(t *testing.T) {
	c := NewMockCollector(zap.NewNop())
	ctx := context.Background()

	sv, err := c.SerpSnapshot(ctx, "släktforskning dna", "sv-SE")
	require.NoError(t, err)
	en, err := c.SerpSnapshot(ctx, "släktforskning dna", "en-US")
	require.NoError(t, err)

	require.NotEqual(t, sv.TopURLs, en.TopURLs)
	require.Equal(t, "sv-SE", sv.Locale)
	require.Equal(t, "en-US", en.Locale)
}

func TestSerpSnapshotShape(t *testing.T) {
	c := NewMockCollector(zap.NewNop())

	signal, err := c.SerpSnapshot(context.Background(), "budget sparande guide", "sv-SE")
	require.NoError(t, err)

	require.Equal(t, "budget sparande guide", signal.Query)
	require.NotEmpty(t, signal.LSITerms)
	require.LessOrEqual(t, len(signal.LSITerms), 10)

	seen := map[string]bool{}
	for _, term := range signal.LSITerms {
		require.False(t, seen[term], "duplicate term %s", term)
		seen[term] = true
	}

	require.Len(t, signal.TopURLs, 10)
	for i, r := range signal.TopURLs {
		require.Equal(t, i+1, r.Position)
		require.Contains(t, r.URL, "https://")
		require.Contains(t, r.URL, "budget-sparande-guide")
		require.NotEmpty(t, r.Domain)
	}
}

func TestDetectIntents(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"hur fungerar dna-test", []string{"informational"}},
		{"köp dna-test billigt", []string{"transactional"}},
		{"bästa dna-testet recension", []string{"commercial"}},
		{"köp bästa dna-testet", []string{"transactional", "commercial"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			require.Equal(t, tt.want, detectIntents(tt.query))
		})
	}
}
