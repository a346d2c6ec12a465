package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robwestz/mcp-blcwrtr/pkg/models"
)

func TestValidateArticleAddsMissingGamblingDisclaimer(t *testing.T) {
	matrix := withMeasuredTarget(testMatrix(), approvedArticle)
	matrix.Guards.Compliance = []string{"gambling"}
	registry := testRegistry()

	report, fixedText, err := ValidateArticle(approvedArticle, matrix, registry, true)
	require.NoError(t, err)

	require.Len(t, report.AutoFixes, 1)
	require.Equal(t, 1, report.AutoFixAttempts)
	require.Equal(t, models.FixAddDisclaimer, report.AutoFixes[0].Type)
	require.True(t, report.AutoFixes[0].Applied)

	require.Contains(t, strings.ToLower(fixedText), "spela ansvarsfullt")
	require.Equal(t, 100.0, report.Breakdown.Compliance)
	require.False(t, report.HasCode(models.CodeCompliance))
	require.Equal(t, models.StatusApproved, report.Status)
}

func TestValidateArticleSecondPassChangesNothing(t *testing.T) {
	matrix := withMeasuredTarget(testMatrix(), approvedArticle)
	matrix.Guards.Compliance = []string{"gambling"}
	registry := testRegistry()

	_, fixedText, err := ValidateArticle(approvedArticle, matrix, registry, true)
	require.NoError(t, err)

	second, secondText, err := ValidateArticle(fixedText, matrix, registry, true)
	require.NoError(t, err)

	require.Equal(t, fixedText, secondText)
	require.Empty(t, second.AutoFixes)
	require.Equal(t, 0, second.AutoFixAttempts)
}

func TestMaybeFixNeverFixesTwice(t *testing.T) {
	matrix := withMeasuredTarget(testMatrix(), approvedArticle)
	matrix.Guards.Compliance = []string{"gambling"}
	registry := testRegistry()

	report, err := Evaluate(approvedArticle, matrix, registry)
	require.NoError(t, err)

	fixedText, record := MaybeFix(approvedArticle, report, matrix)
	require.NotNil(t, record)
	require.True(t, record.Applied)
	require.NotEqual(t, approvedArticle, fixedText)

	reFixed, err := Evaluate(fixedText, matrix, registry)
	require.NoError(t, err)

	again, record2 := MaybeFix(fixedText, reFixed, matrix)
	require.Nil(t, record2)
	require.Equal(t, fixedText, again)
}

func TestValidateArticleWithoutAutoFixLeavesTextAlone(t *testing.T) {
	matrix := withMeasuredTarget(testMatrix(), approvedArticle)
	matrix.Guards.Compliance = []string{"gambling"}

	report, text, err := ValidateArticle(approvedArticle, matrix, testRegistry(), false)
	require.NoError(t, err)

	require.Equal(t, approvedArticle, text)
	require.Empty(t, report.AutoFixes)
	require.Equal(t, 0, report.AutoFixAttempts)
	require.Equal(t, models.StatusBlocked, report.Status)
}

func TestMaybeFixRecordsFailedAttempt(t *testing.T) {
	// A compliance tag with no registered phrase set cannot be auto-fixed,
	// but the attempt is still recorded against the budget.
	matrix := withMeasuredTarget(testMatrix(), approvedArticle)
	matrix.Guards.Compliance = []string{"crypto"}
	registry := testRegistry()

	report, err := Evaluate(approvedArticle, matrix, registry)
	require.NoError(t, err)
	require.True(t, report.HasCode(models.DisclaimerIssueCode("crypto")))

	final, text, err := ValidateArticle(approvedArticle, matrix, registry, true)
	require.NoError(t, err)

	require.Equal(t, approvedArticle, text)
	require.Len(t, final.AutoFixes, 1)
	require.False(t, final.AutoFixes[0].Applied)
	require.Equal(t, 1, final.AutoFixAttempts)
}

func TestMaybeFixDeclinesAfterRecordedAttempt(t *testing.T) {
	// Feeding a validation cycle's own report back into MaybeFix must not
	// buy a second attempt, even while a fixable issue remains open.
	matrix := withMeasuredTarget(testMatrix(), approvedArticle)
	matrix.Guards.Compliance = []string{"crypto"}
	registry := testRegistry()

	final, text, err := ValidateArticle(approvedArticle, matrix, registry, true)
	require.NoError(t, err)
	require.Equal(t, 1, final.AutoFixAttempts)
	require.True(t, final.HasCode(models.DisclaimerIssueCode("crypto")))

	again, record := MaybeFix(text, final, matrix)
	require.Nil(t, record)
	require.Equal(t, text, again)
}

func TestMaybeFixMovesLinkToMiddleSection(t *testing.T) {
	article := `## Inledning
Ett [[dna-test för släktforskning]] nämns alldeles för tidigt här. Du får ett sammanhang först senare.

## Bakgrund
Intresset för släkthistoria har vuxit stadigt.

## Historik
Kyrkan förde länge de enda löpande personlängderna.

## Praktiska tips
Det finns gott om sökbara volymer på nätet.

## Sammanfattning
Arbeta lugnt och spara anteckningar.
`
	matrix := withMeasuredTarget(testMatrix(), article)

	report, err := Evaluate(article, matrix, testRegistry())
	require.NoError(t, err)
	require.True(t, report.HasCode(models.CodeAnchorPlacementWrong))

	fixedText, record := MaybeFix(article, report, matrix)
	require.NotNil(t, record)
	require.Equal(t, models.FixMoveLink, record.Type)
	require.True(t, record.Applied)

	// The marker now sits in the middle section and nowhere else.
	require.Equal(t, 1, strings.Count(fixedText, "[[dna-test för släktforskning]]"))
	refixed, err := Evaluate(fixedText, matrix, testRegistry())
	require.NoError(t, err)
	require.False(t, refixed.HasCode(models.CodeAnchorPlacementWrong))
}
