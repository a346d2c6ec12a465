package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robwestz/mcp-blcwrtr/pkg/models"
)

func TestExtractURLs(t *testing.T) {
	text := `Se https://riksarkivet.se/kyrkobocker för underlag.
Statistik (https://scb.se/befolkning) kompletterar bilden, liksom http://wikipedia.org/wiki/DNA.
En rad utan länk.`

	urls := ExtractURLs(text)
	require.Equal(t, []string{
		"https://riksarkivet.se/kyrkobocker",
		"https://scb.se/befolkning",
		"http://wikipedia.org/wiki/DNA",
	}, urls)

	require.Empty(t, ExtractURLs("bara text, riksarkivet.se utan schema"))
}

func TestClassifyLinks(t *testing.T) {
	registry := testRegistry()

	classified := ClassifyLinks([]string{
		"https://riksarkivet.se/kyrkobocker",
		"https://www.scb.se/befolkning",
		"https://sv.wikipedia.org/wiki/DNA",
		"https://spelkungen.se/bonus",
		"https://example.org/page",
	}, registry)

	require.Len(t, classified, 5)
	require.Equal(t, "riksarkivet.se", classified[0].Domain)
	require.Equal(t, models.TierT1, classified[0].Tier)

	// www. is stripped before lookup.
	require.Equal(t, "scb.se", classified[1].Domain)
	require.Equal(t, models.TierT1, classified[1].Tier)

	// Subdomains inherit the registry entry of their parent.
	require.Equal(t, "sv.wikipedia.org", classified[2].Domain)
	require.Equal(t, models.TierT2, classified[2].Tier)

	require.True(t, classified[3].Competitor)
	require.Equal(t, models.TierUnknown, classified[4].Tier)
}

func TestCountQualifyingTrustSignals(t *testing.T) {
	registry := testRegistry()
	classified := ClassifyLinks([]string{
		"https://riksarkivet.se/a",
		"https://wikipedia.org/b",
		"https://spelkungen.se/c",
		"https://okandsajt.se/d",
	}, registry)

	require.Equal(t, 2, CountQualifyingTrustSignals(classified, models.TierT2))
	require.Equal(t, 1, CountQualifyingTrustSignals(classified, models.TierT1))
	require.Equal(t, 2, CountQualifyingTrustSignals(classified, models.TierT3))
}

func TestMentionedDomains(t *testing.T) {
	text := "Enligt riksarkivet.se finns kyrkoböcker digitaliserade. Spelkungen.se nämns också."

	mentions := MentionedDomains(text, testRegistry())
	require.Len(t, mentions, 1)
	require.Equal(t, "riksarkivet.se", mentions[0].Domain)
}

func TestFindCompetitorHits(t *testing.T) {
	registry := testRegistry()

	t.Run("full domain", func(t *testing.T) {
		hits := FindCompetitorHits("Jämför med https://spelkungen.se/bonus innan du väljer.", registry)
		require.Equal(t, []string{"spelkungen.se"}, hits)
	})

	t.Run("bare brand mention", func(t *testing.T) {
		hits := FindCompetitorHits("Hos Spelkungen finns liknande erbjudanden.", registry)
		require.Equal(t, []string{"spelkungen.se"}, hits)
	})

	t.Run("brand label inside a longer word is not a hit", func(t *testing.T) {
		hits := FindCompetitorHits("Spelkungens... nej, ordet spelkungenliknande räknas inte.", registry)
		require.Empty(t, hits)
	})

	t.Run("clean text", func(t *testing.T) {
		require.Empty(t, FindCompetitorHits("Enligt riksarkivet.se finns underlag.", registry))
	})
}

func TestCheckCompliance(t *testing.T) {
	t.Run("phrase variants satisfy the tag", func(t *testing.T) {
		require.Empty(t, CheckCompliance("Spela ansvarsfullt och sätt gränser.", []string{"gambling"}))
		require.Empty(t, CheckCompliance("Åldersgräns 18+ gäller.", []string{"gambling"}))
		require.Empty(t, CheckCompliance("Detta är inte finansiell rådgivning.", []string{"finance"}))
	})

	t.Run("missing tags are sorted", func(t *testing.T) {
		missing := CheckCompliance("En text utan friskrivningar.", []string{"health", "gambling"})
		require.Equal(t, []string{"gambling", "health"}, missing)
	})

	t.Run("unknown tag counts as missing", func(t *testing.T) {
		missing := CheckCompliance("Spela ansvarsfullt.", []string{"gambling", "crypto"})
		require.Equal(t, []string{"crypto"}, missing)
	})
}

func TestCanonicalDisclaimer(t *testing.T) {
	text, ok := CanonicalDisclaimer("gambling")
	require.True(t, ok)
	require.Contains(t, text, "Spela ansvarsfullt")

	// The canonical text must satisfy its own tag.
	require.Empty(t, CheckCompliance(text, []string{"gambling"}))

	_, ok = CanonicalDisclaimer("crypto")
	require.False(t, ok)

	require.Equal(t, []string{"finance", "gambling", "health"}, KnownComplianceTags())
}
