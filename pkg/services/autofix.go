package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/robwestz/mcp-blcwrtr/pkg/lexical"
	"github.com/robwestz/mcp-blcwrtr/pkg/models"
)

// ValidateArticle is the full validation cycle: evaluate, optionally apply
// at most one automated fix, and re-evaluate exactly once when a fix was
// applied. The second report is final regardless of remaining issues.
// Returns the final report and the possibly-modified article text.
func ValidateArticle(articleText string, matrix *models.PreflightMatrix, registry *models.TrustRegistry, autoFix bool) (*models.ValidationReport, string, error) {
	report, err := Evaluate(articleText, matrix, registry)
	if err != nil {
		return nil, "", err
	}
	if !autoFix {
		return report, articleText, nil
	}

	fixedText, record := MaybeFix(articleText, report, matrix)
	if record == nil {
		return report, articleText, nil
	}

	final := report
	if record.Applied && fixedText != articleText {
		final, err = Evaluate(fixedText, matrix, registry)
		if err != nil {
			return nil, "", err
		}
	} else {
		fixedText = articleText
	}
	final.AutoFixes = []models.FixRecord{*record}
	final.AutoFixAttempts = 1
	return final, fixedText, nil
}

// MaybeFix applies at most one automated repair for the highest-ranked
// fixable issue. The returned record is non-nil whenever an attempt was
// made, applied or not; nil means no issue was eligible. A report that
// already carries a fix attempt is never fixed again: the one-attempt
// budget holds even when callers feed a cycle's output back in.
func MaybeFix(articleText string, report *models.ValidationReport, matrix *models.PreflightMatrix) (string, *models.FixRecord) {
	if report.AutoFixAttempts >= 1 {
		return articleText, nil
	}
	for _, issue := range rankIssues(report.Issues) {
		fixType, ok := models.FixTypeForCode(issue.Code)
		if !ok {
			continue
		}
		switch fixType {
		case models.FixAddDisclaimer:
			return applyAddDisclaimer(articleText, issue.Code)
		case models.FixMoveLink:
			return applyMoveLink(articleText, matrix)
		case models.FixInjectLSI:
			return applyInjectLSI(articleText, matrix)
		case models.FixAddTrust:
			return applyAddTrust(articleText, matrix)
		}
	}
	return articleText, nil
}

func applyAddDisclaimer(text, code string) (string, *models.FixRecord) {
	tag := strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(code, "MISSING_"), "_DISCLAIMER"))
	disclaimer, ok := CanonicalDisclaimer(tag)
	if !ok {
		return text, &models.FixRecord{
			Type:        models.FixAddDisclaimer,
			Description: fmt.Sprintf("no canonical disclaimer registered for tag %q", tag),
			Applied:     false,
		}
	}
	return text + "\n\n" + disclaimer, &models.FixRecord{
		Type:        models.FixAddDisclaimer,
		Description: fmt.Sprintf("appended canonical %s disclaimer", tag),
		Applied:     true,
	}
}

// applyMoveLink unlinks the anchor at its current position and re-links it
// in the first paragraph of the middle section.
func applyMoveLink(text string, matrix *models.PreflightMatrix) (string, *models.FixRecord) {
	anchor, marker := presentAnchorMarker(text, matrix.AnchorPlan)
	if marker == "" {
		return text, &models.FixRecord{
			Type:        models.FixMoveLink,
			Description: "anchor link not found, nothing to move",
			Applied:     false,
		}
	}

	unlinked := strings.Replace(text, marker, anchor, 1)
	lines := strings.Split(unlinked, "\n")

	article := lexical.ParseArticle(unlinked)
	if len(article.Sections) == 0 {
		return text, &models.FixRecord{
			Type:        models.FixMoveLink,
			Description: "article has no sections to move the link into",
			Applied:     false,
		}
	}
	middle := article.Sections[len(article.Sections)/2]
	if len(middle.Paragraphs) == 0 {
		return text, &models.FixRecord{
			Type:        models.FixMoveLink,
			Description: fmt.Sprintf("middle section %q is empty", middle.Title),
			Applied:     false,
		}
	}

	line := middle.Paragraphs[0].LineNumber
	lines[line] = strings.TrimRight(lines[line], " ") +
		" I det sammanhanget är " + marker + " ett naturligt nästa steg."
	return strings.Join(lines, "\n"), &models.FixRecord{
		Type:        models.FixMoveLink,
		Description: fmt.Sprintf("moved anchor link into section %q", middle.Title),
		Applied:     true,
	}
}

// applyInjectLSI appends a sentence with missing planned terms to the
// paragraph holding the anchor.
func applyInjectLSI(text string, matrix *models.PreflightMatrix) (string, *models.FixRecord) {
	_, marker := presentAnchorMarker(text, matrix.AnchorPlan)
	if marker == "" {
		return text, &models.FixRecord{
			Type:        models.FixInjectLSI,
			Description: "anchor link not found, cannot place terms near it",
			Applied:     false,
		}
	}

	missing := missingWindowTerms(text, matrix)
	if len(missing) == 0 {
		return text, &models.FixRecord{
			Type:        models.FixInjectLSI,
			Description: "all planned terms already present in the window",
			Applied:     false,
		}
	}
	if len(missing) > 3 {
		missing = missing[:3]
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.Contains(line, marker) {
			lines[i] = strings.TrimRight(line, " ") +
				" Begrepp som " + joinSwedish(missing) + " hör naturligt hemma i det här sammanhanget."
			return strings.Join(lines, "\n"), &models.FixRecord{
				Type:        models.FixInjectLSI,
				Description: fmt.Sprintf("injected planned terms near anchor: %s", strings.Join(missing, ", ")),
				Applied:     true,
			}
		}
	}
	return text, &models.FixRecord{
		Type:        models.FixInjectLSI,
		Description: "anchor line not found in article body",
		Applied:     false,
	}
}

// applyAddTrust appends a citation of the first planned trust source.
func applyAddTrust(text string, matrix *models.PreflightMatrix) (string, *models.FixRecord) {
	if len(matrix.Trust.Sources) == 0 {
		return text, &models.FixRecord{
			Type:        models.FixAddTrust,
			Description: "no planned trust sources to cite",
			Applied:     false,
		}
	}
	src := matrix.Trust.Sources[0]
	return text + fmt.Sprintf("\n\nEnligt https://%s finns utförlig dokumentation inom området.", src.Domain),
		&models.FixRecord{
			Type:        models.FixAddTrust,
			Description: fmt.Sprintf("added citation of planned source %s", src.Domain),
			Applied:     true,
		}
}

// presentAnchorMarker returns the anchor text and [[marker]] actually
// present in the article, preferring the primary over the backup.
func presentAnchorMarker(text string, plan models.AnchorPlan) (anchor, marker string) {
	for _, cand := range []string{plan.Primary, plan.Backup} {
		if cand == "" {
			continue
		}
		m := "[[" + cand + "]]"
		if strings.Contains(text, m) {
			return cand, m
		}
	}
	return "", ""
}

// missingWindowTerms recomputes the anchor window and returns the planned
// lemmas not yet found there, sorted.
func missingWindowTerms(text string, matrix *models.PreflightMatrix) []string {
	lem, err := lexical.ForLocale(matrix.Locale)
	if err != nil {
		return nil
	}
	article := lexical.ParseArticle(text)
	anchor, _ := presentAnchorMarker(text, matrix.AnchorPlan)
	sentences := article.Sentences()
	pos, ok := lexical.LocateSentence(sentences, anchor)
	if !ok {
		return nil
	}
	window := lexical.Window(sentences, pos, matrix.LSINearWindow.Policy.RadiusSentences)

	lemmas := make([]string, 0, len(matrix.LSINearWindow.Terms))
	for _, t := range matrix.LSINearWindow.Terms {
		lemmas = append(lemmas, t.Lemma)
	}
	found := lexical.MatchTerms(window, lemmas, lem)

	var missing []string
	for _, lemma := range lemmas {
		if _, ok := found[lemma]; !ok {
			missing = append(missing, lemma)
		}
	}
	sort.Strings(missing)
	return missing
}

func joinSwedish(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " och " + items[len(items)-1]
	}
}
