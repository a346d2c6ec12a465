package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robwestz/mcp-blcwrtr/pkg/lexical"
	"github.com/robwestz/mcp-blcwrtr/pkg/models"
)

func testRegistry() *models.TrustRegistry {
	return &models.TrustRegistry{
		Version: "reg-test-1",
		Entries: []models.TrustRegistryEntry{
			{Domain: "riksarkivet.se", Tier: models.TierT1, Category: "government"},
			{Domain: "scb.se", Tier: models.TierT1, Category: "government"},
			{Domain: "wikipedia.org", Tier: models.TierT2, Category: "encyclopedia"},
			{Domain: "spelkungen.se", Tier: models.TierT3, Competitor: true},
		},
	}
}

func testMatrix() *models.PreflightMatrix {
	return &models.PreflightMatrix{
		OrderRef:          "ORD-1001",
		PublicationDomain: "slaktforskarbloggen.se",
		TargetURL:         "https://slaktforskarna.se/dna",
		Locale:            "sv-SE",
		AnchorPlan: models.AnchorPlan{
			Type:         models.AnchorTypePartial,
			Primary:      "dna-test för släktforskning",
			Backup:       "mer om dna-test för släktforskning",
			AllowedTypes: models.ValidAnchorTypes,
			Placement:    models.AnchorPlacement{Section: models.PlacementSectionMidpoint, Paragraph: 2},
		},
		Voice: models.PublisherVoice{Tone: "informativ", Perspective: "du"},
		LSINearWindow: models.LSIWindow{
			Policy: models.LSIWindowPolicy{Min: 6, Max: 10, RadiusSentences: 2, MaxRepeat: 2},
			Terms: []models.LSITerm{
				{Lemma: "forskning", Category: "process"},
				{Lemma: "metod", Category: "process"},
				{Lemma: "dokumentation", Category: "process"},
				{Lemma: "källa", Category: "tool"},
				{Lemma: "arkiv", Category: "tool"},
				{Lemma: "register", Category: "tool"},
				{Lemma: "noggrannhet", Category: "measurement"},
				{Lemma: "generation", Category: "temporal"},
			},
		},
		Trust: models.TrustPlan{
			RequiredSignals: 2,
			MinTier:         models.TierT2,
			Sources: []models.TrustTarget{
				{Domain: "riksarkivet.se", Tier: models.TierT1},
				{Domain: "scb.se", Tier: models.TierT1},
			},
		},
		Guards:    models.Guards{NoAnchorInHeaders: true, CompetitorBlock: true},
		WordCount: models.WordCountRange{Min: 60, Target: 80, Max: 100},
	}
}

// approvedArticle satisfies every category: anchor linked in the middle
// section, eight planned lemmas inside the window, two T1 citations.
const approvedArticle = `## Inledning
Släktforskning börjar ofta vid köksbordet. Du samlar namn och datum från äldre släktingar innan du söker vidare.

## Metoder och källor
Att välja rätt metod kräver noggrannhet och god dokumentation av varje källa. Ett [[dna-test för släktforskning]] kompletterar traditionell forskning när spåren tar slut. Jämför sedan mot ett arkiv eller ett register innan du går vidare till nästa generation.
Enligt https://riksarkivet.se/kyrkobocker finns digitaliserade kyrkoböcker. Mer underlag finns hos https://scb.se/befolkning.

## Sammanfattning
Den som arbetar metodiskt kommer längre. Ta god tid på dig och spara alla anteckningar.
`

// withMeasuredTarget pins the word count target to the draft itself so the
// draft category is exercised only where a test wants it to be.
func withMeasuredTarget(m *models.PreflightMatrix, article string) *models.PreflightMatrix {
	wc := lexical.ParseArticle(article).WordCount
	m.WordCount = models.WordCountRange{Min: wc * 8 / 10, Target: wc, Max: wc * 12 / 10}
	return m
}

func TestEvaluateApprovedDraft(t *testing.T) {
	matrix := withMeasuredTarget(testMatrix(), approvedArticle)

	report, err := Evaluate(approvedArticle, matrix, testRegistry())
	require.NoError(t, err)

	require.Equal(t, models.StatusApproved, report.Status)
	require.False(t, report.HumanSignoffRequired)
	require.GreaterOrEqual(t, report.Score, 85.0)
	require.Equal(t, 2, report.QualifyingTrustCount)

	for _, score := range []float64{
		report.Breakdown.Preflight,
		report.Breakdown.Draft,
		report.Breakdown.Anchor,
		report.Breakdown.Trust,
		report.Breakdown.LSI,
		report.Breakdown.Fit,
		report.Breakdown.Compliance,
	} {
		require.GreaterOrEqual(t, score, 90.0)
	}
	require.Empty(t, report.Recommendations)
	require.Equal(t, []string{"Proceed to delivery"}, report.NextActions)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	matrix := withMeasuredTarget(testMatrix(), approvedArticle)
	registry := testRegistry()

	first, err := Evaluate(approvedArticle, matrix, registry)
	require.NoError(t, err)
	second, err := Evaluate(approvedArticle, matrix, registry)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestEvaluateAnchorAbsent(t *testing.T) {
	article := `## Inledning
Släktforskning börjar vid köksbordet och du samlar namn i lugn takt.

## Metoder
Att välja metod kräver noggrannhet. Enligt https://riksarkivet.se/start finns mycket att hämta.

## Sammanfattning
Spara dina anteckningar.
`
	matrix := withMeasuredTarget(testMatrix(), article)

	report, err := Evaluate(article, matrix, testRegistry())
	require.NoError(t, err)

	require.Equal(t, models.StatusBlocked, report.Status)
	require.Equal(t, 0.0, report.Breakdown.Anchor)
	require.Equal(t, 0.0, report.Breakdown.LSI)
	require.True(t, report.HasCode(models.CodeAnchorNotFound))
	require.True(t, report.HasCode(models.CodeAnchorNotFoundForLSI))
	require.True(t, report.HasCode(models.CodeMissingPrimaryAnchor))
	require.True(t, report.HumanSignoffRequired)
	require.Contains(t, report.NextActions, "Add target anchor link to article")
}

func TestEvaluateAnchorInHeaderAlwaysBlocks(t *testing.T) {
	article := `## Inledning
Du samlar namn och datum i lugn takt.

## Mer om dna-test för släktforskning
Att välja rätt metod kräver noggrannhet och god dokumentation av varje källa. Ett [[dna-test för släktforskning]] kompletterar traditionell forskning. Jämför mot ett arkiv eller ett register innan du går vidare till nästa generation.
Enligt https://riksarkivet.se/kyrkobocker finns mer. Underlag finns även hos https://scb.se/befolkning.

## Sammanfattning
Spara alla anteckningar.
`
	matrix := withMeasuredTarget(testMatrix(), article)

	report, err := Evaluate(article, matrix, testRegistry())
	require.NoError(t, err)

	require.Equal(t, models.StatusBlocked, report.Status)
	require.Equal(t, 0.0, report.Breakdown.Anchor)
	require.True(t, report.HasCode(models.CodeAnchorInHeader))
	require.True(t, report.HumanSignoffRequired)
}

func TestEvaluateCompetitorMentionBlocks(t *testing.T) {
	article := approvedArticle + "\nFler tips finns hos https://spelkungen.se/guide.\n"
	matrix := withMeasuredTarget(testMatrix(), article)

	report, err := Evaluate(article, matrix, testRegistry())
	require.NoError(t, err)

	require.Equal(t, models.StatusBlocked, report.Status)
	require.Equal(t, 0.0, report.Breakdown.Trust)
	require.True(t, report.HasCode(models.CodeTrustCompetitor))
	require.True(t, report.HumanSignoffRequired)
}

func TestEvaluateLightEditsDraft(t *testing.T) {
	// Anchor in the first of five sections (midpoint expects the middle),
	// one trust signal of three required, and a word count 10-20% off.
	article := `## Inledning
Att välja rätt metod kräver noggrannhet och god dokumentation av varje källa. Ett [[dna-test för släktforskning]] kompletterar traditionell forskning när spåren tar slut. Jämför sedan mot ett arkiv eller ett register innan du går vidare till nästa generation.

## Bakgrund
Intresset för släkthistoria har vuxit stadigt de senaste åren.

## Historik
Kyrkan förde länge de enda löpande personregistren i landet.

## Praktiska tips
En bra startpunkt är https://riksarkivet.se/start med fritt sökbara volymer.

## Sammanfattning
Arbeta lugnt och spara alla anteckningar längs vägen.
`
	matrix := testMatrix()
	matrix.LSINearWindow.Policy.Max = 7
	matrix.Trust.RequiredSignals = 3
	wc := lexical.ParseArticle(article).WordCount
	matrix.WordCount = models.WordCountRange{Target: wc * 100 / 115}

	report, err := Evaluate(article, matrix, testRegistry())
	require.NoError(t, err)

	require.Equal(t, models.StatusLightEdits, report.Status)
	require.GreaterOrEqual(t, report.Score, 70.0)
	require.Less(t, report.Score, 85.0)
	require.False(t, report.HasHardBlock())
	require.False(t, report.HumanSignoffRequired)
	require.True(t, report.HasCode(models.CodeAnchorPlacementWrong))
	for _, issue := range report.Issues {
		require.Equal(t, models.SeverityWarning, issue.Severity)
	}
	require.NotEmpty(t, report.Recommendations)
	require.Equal(t, []string{"Apply recommended edits", "Re-run QC validation"}, report.NextActions)
}

func TestEvaluateLSIBoundaries(t *testing.T) {
	terms := []string{
		"forskning", "metod", "källa", "arkiv", "register",
		"generation", "dokumentation", "noggrannhet", "belägg", "lucka",
	}

	cases := []struct {
		name     string
		distinct int
	}{
		{"exactly min", 6},
		{"exactly max", 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			matrix := testMatrix()
			matrix.AnchorPlan.Primary = "testlänk"
			matrix.AnchorPlan.Backup = ""
			matrix.AnchorPlan.Placement = models.AnchorPlacement{}
			matrix.LSINearWindow.Terms = nil
			for _, lemma := range terms {
				matrix.LSINearWindow.Terms = append(matrix.LSINearWindow.Terms,
					models.LSITerm{Lemma: lemma, Category: "process"})
			}

			sentence := "Ett [[testlänk]] i en text om"
			for _, lemma := range terms[:tc.distinct] {
				sentence += " " + lemma + " och"
			}
			article := "## Rubrik\n" + sentence + " annat.\n"
			matrix = withMeasuredTarget(matrix, article)

			report, err := Evaluate(article, matrix, testRegistry())
			require.NoError(t, err)

			require.Equal(t, 100.0, report.Breakdown.LSI)
			require.False(t, report.HasCode(models.CodeInsufficientLSITerms))
			require.False(t, report.HasCode(models.CodeExcessiveLSITerms))
		})
	}
}

func TestEvaluateLSIOveruse(t *testing.T) {
	matrix := testMatrix()
	matrix.AnchorPlan.Primary = "testlänk"
	matrix.AnchorPlan.Backup = ""
	matrix.AnchorPlan.Placement = models.AnchorPlacement{}
	matrix.LSINearWindow.Policy = models.LSIWindowPolicy{Min: 1, Max: 10, RadiusSentences: 2, MaxRepeat: 2}

	article := "## Rubrik\n" +
		"Ett [[testlänk]] om metod, metod, metod och åter metod med viss noggrannhet och en källa i ett arkiv nära ett register kring forskning om en generation med dokumentation.\n"
	matrix = withMeasuredTarget(matrix, article)

	report, err := Evaluate(article, matrix, testRegistry())
	require.NoError(t, err)

	require.True(t, report.HasCode(models.CodeLSIOveruse))
	require.Less(t, report.Breakdown.LSI, 100.0)
}

func TestEvaluateWordCountDeviation(t *testing.T) {
	article := approvedArticle
	wc := lexical.ParseArticle(article).WordCount

	t.Run("beyond 20 percent is a hard block", func(t *testing.T) {
		matrix := testMatrix()
		matrix.WordCount = models.WordCountRange{Target: wc * 2}

		report, err := Evaluate(article, matrix, testRegistry())
		require.NoError(t, err)

		require.True(t, report.HasCode(models.CodeWordCountMismatch))
		require.True(t, report.HasHardBlock())
		require.Equal(t, models.StatusBlocked, report.Status)
	})

	t.Run("within 10 to 20 percent only penalizes", func(t *testing.T) {
		matrix := testMatrix()
		matrix.WordCount = models.WordCountRange{Target: wc * 100 / 115}

		report, err := Evaluate(article, matrix, testRegistry())
		require.NoError(t, err)

		require.True(t, report.HasCode(models.CodeWordCountMismatch))
		require.False(t, report.HasHardBlock())
	})
}

func TestEvaluateMissingRegulatedDisclaimer(t *testing.T) {
	matrix := withMeasuredTarget(testMatrix(), approvedArticle)
	matrix.Guards.Compliance = []string{"gambling"}

	report, err := Evaluate(approvedArticle, matrix, testRegistry())
	require.NoError(t, err)

	require.Equal(t, models.StatusBlocked, report.Status)
	require.Equal(t, 0.0, report.Breakdown.Compliance)
	require.True(t, report.HasCode(models.CodeCompliance))
	require.True(t, report.HasCode(models.DisclaimerIssueCode("gambling")))
	require.True(t, report.HumanSignoffRequired)
}

func TestRecommendationsRankedAndCapped(t *testing.T) {
	issues := []models.ValidationIssue{
		{Severity: models.SeverityWarning, Category: models.CategoryContent, Code: models.CodeToneMismatch},
		{Severity: models.SeverityWarning, Category: models.CategoryLSI, Code: models.CodeLSIOveruse},
		{Severity: models.SeverityError, Category: models.CategoryAnchor, Code: models.CodeAnchorNotFound},
		{Severity: models.SeverityWarning, Category: models.CategoryAnchor, Code: models.CodeAnchorTooDeep},
		{Severity: models.SeverityWarning, Category: models.CategoryTrust, Code: models.CodeInsufficientTrust},
		{Severity: models.SeverityWarning, Category: models.CategoryStructure, Code: models.CodeEmptySection},
	}

	recs := buildRecommendations(issues)

	require.Len(t, recs, 4)
	// The hard block leads regardless of category weight.
	require.Equal(t, recommendationText[models.CodeAnchorNotFound], recs[0])
	// Anchor outweighs the 0.15 categories.
	require.Equal(t, recommendationText[models.CodeAnchorTooDeep], recs[1])
}

func TestRankIssuesTieBreaksByCode(t *testing.T) {
	issues := []models.ValidationIssue{
		{Severity: models.SeverityWarning, Category: models.CategoryLSI, Code: models.CodeLSIOveruse},
		{Severity: models.SeverityWarning, Category: models.CategoryLSI, Code: models.CodeExcessiveLSITerms},
	}

	ranked := rankIssues(issues)

	require.Equal(t, models.CodeExcessiveLSITerms, ranked[0].Code)
	require.Equal(t, models.CodeLSIOveruse, ranked[1].Code)
}
