package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/robwestz/mcp-blcwrtr/pkg/apperrors"
	"github.com/robwestz/mcp-blcwrtr/pkg/lexical"
	"github.com/robwestz/mcp-blcwrtr/pkg/models"
	"github.com/robwestz/mcp-blcwrtr/pkg/repositories"
)

// Aggregate score thresholds for status derivation.
const (
	approvedMin   = 85.0
	lightEditsMin = 70.0
)

// ============================================================================
// Pure Evaluation
// ============================================================================

// evalContext carries the parsed article and everything the category
// evaluators share, so each category stays a pure function of it.
type evalContext struct {
	article    *lexical.Article
	matrix     *models.PreflightMatrix
	registry   *models.TrustRegistry
	lemmatizer lexical.Lemmatizer
	anchor     anchorLocation
	trustCount int
}

// anchorLocation is where the planned anchor actually landed in the draft.
type anchorLocation struct {
	found       bool
	inHeader    bool
	headerTitle string
	sectionIdx  int
	section     string
	paragraph   int // 1-based within its section
	usedText    string
}

type categoryResult struct {
	score  float64
	issues []models.ValidationIssue
}

// scoringTable enumerates the seven weighted categories. Order is fixed so
// issue lists and breakdowns come out identical on every run.
var scoringTable = []struct {
	name   string
	weight float64
	eval   func(*evalContext) categoryResult
	assign func(*models.CategoryBreakdown, float64)
}{
	{"preflight", 0.25, evalPreflight, func(b *models.CategoryBreakdown, v float64) { b.Preflight = v }},
	{"draft", 0.15, evalDraft, func(b *models.CategoryBreakdown, v float64) { b.Draft = v }},
	{"anchor", 0.20, evalAnchor, func(b *models.CategoryBreakdown, v float64) { b.Anchor = v }},
	{"trust", 0.15, evalTrust, func(b *models.CategoryBreakdown, v float64) { b.Trust = v }},
	{"lsi", 0.15, evalLSI, func(b *models.CategoryBreakdown, v float64) { b.LSI = v }},
	{"fit", 0.05, evalFit, func(b *models.CategoryBreakdown, v float64) { b.Fit = v }},
	{"compliance", 0.05, evalCompliance, func(b *models.CategoryBreakdown, v float64) { b.Compliance = v }},
}

// Evaluate scores a draft against its matrix and a trust registry snapshot.
// Pure and deterministic: identical inputs yield bit-identical reports.
func Evaluate(articleText string, matrix *models.PreflightMatrix, registry *models.TrustRegistry) (*models.ValidationReport, error) {
	lem, err := lexical.ForLocale(matrix.Locale)
	if err != nil {
		return nil, fmt.Errorf("load lemmatizer for %q: %w", matrix.Locale, err)
	}

	article := lexical.ParseArticle(articleText)
	ctx := &evalContext{
		article:    article,
		matrix:     matrix,
		registry:   registry,
		lemmatizer: lem,
		anchor:     locateAnchor(article, matrix.AnchorPlan),
	}

	report := &models.ValidationReport{OrderRef: matrix.OrderRef}
	total := 0.0
	for _, cat := range scoringTable {
		res := cat.eval(ctx)
		cat.assign(&report.Breakdown, res.score)
		report.Issues = append(report.Issues, res.issues...)
		total += res.score * cat.weight
	}
	report.Score = round1(total)
	report.QualifyingTrustCount = ctx.trustCount

	hard := report.HasHardBlock()
	switch {
	case hard || report.Score < lightEditsMin:
		report.Status = models.StatusBlocked
	case report.Score >= approvedMin:
		report.Status = models.StatusApproved
	default:
		report.Status = models.StatusLightEdits
	}

	report.HumanSignoffRequired = report.HasCode(models.CodeAnchorInHeader) ||
		report.HasCode(models.CodeTrustCompetitor) ||
		report.HasCode(models.CodeCompliance) ||
		report.Breakdown.Min() < 50 ||
		ctx.trustCount == 0

	report.Recommendations = buildRecommendations(report.Issues)
	report.NextActions = buildNextActions(report)
	return report, nil
}

// locateAnchor finds the planned anchor (primary, falling back to backup)
// in headers and paragraphs.
func locateAnchor(article *lexical.Article, plan models.AnchorPlan) anchorLocation {
	candidates := []string{plan.Primary}
	if plan.Backup != "" {
		candidates = append(candidates, plan.Backup)
	}

	loc := anchorLocation{}
	for _, sec := range article.Sections {
		for _, cand := range candidates {
			if containsFold(sec.Title, cand) {
				loc.inHeader = true
				loc.headerTitle = sec.Title
				break
			}
		}
		if loc.inHeader {
			break
		}
	}

	for si, sec := range article.Sections {
		for pi, para := range sec.Paragraphs {
			if !para.HasLink {
				continue
			}
			for _, cand := range candidates {
				if containsFold(para.Text, "[["+cand+"]]") {
					loc.found = true
					loc.sectionIdx = si
					loc.section = sec.Title
					loc.paragraph = pi + 1
					loc.usedText = cand
					return loc
				}
			}
		}
	}
	return loc
}

// ============================================================================
// Category Evaluators
// ============================================================================

func evalPreflight(ctx *evalContext) categoryResult {
	res := categoryResult{score: 100}
	plan := ctx.matrix.AnchorPlan

	if !ctx.article.HasLinkText(plan.Primary) {
		res.score -= 30
		res.issues = append(res.issues, models.ValidationIssue{
			Severity: models.SeverityError,
			Category: models.CategoryAnchor,
			Code:     models.CodeMissingPrimaryAnchor,
			Message:  fmt.Sprintf("primary anchor %q not found as a link", plan.Primary),
		})
	}

	if ctx.anchor.found {
		used := DetectAnchorType(ctx.anchor.usedText, hostOf(ctx.matrix.TargetURL))
		if !plan.Allows(used) {
			res.score -= 20
			res.issues = append(res.issues, models.ValidationIssue{
				Severity: models.SeverityWarning,
				Category: models.CategoryAnchor,
				Code:     models.CodeAnchorTypeForbidden,
				Message:  fmt.Sprintf("anchor type %q is outside the allowed set for this portfolio", used),
			})
		}
	}
	res.score = clampScore(res.score)
	return res
}

func evalDraft(ctx *evalContext) categoryResult {
	res := categoryResult{score: 100}

	if len(ctx.article.Sections) < 3 {
		res.score -= 20
		res.issues = append(res.issues, models.ValidationIssue{
			Severity: models.SeverityWarning,
			Category: models.CategoryStructure,
			Code:     models.CodeInsufficientSections,
			Message:  fmt.Sprintf("article has %d sections, at least 3 required", len(ctx.article.Sections)),
		})
	}

	for _, sec := range ctx.article.Sections {
		if len(sec.Paragraphs) == 0 {
			res.score -= 10
			res.issues = append(res.issues, models.ValidationIssue{
				Severity: models.SeverityWarning,
				Category: models.CategoryStructure,
				Code:     models.CodeEmptySection,
				Message:  fmt.Sprintf("section %q has no content", sec.Title),
				Location: &models.IssueLocation{Section: sec.Title},
			})
		}
	}

	target := ctx.matrix.WordCount.Target
	if target > 0 {
		dev := ctx.article.WordCount - target
		if dev < 0 {
			dev = -dev
		}
		switch {
		case float64(dev) > float64(target)*0.2:
			res.score -= 30
			res.issues = append(res.issues, models.ValidationIssue{
				Severity: models.SeverityError,
				Category: models.CategoryContent,
				Code:     models.CodeWordCountMismatch,
				Message:  fmt.Sprintf("word count %d deviates more than 20%% from target %d", ctx.article.WordCount, target),
			})
		case float64(dev) > float64(target)*0.1:
			res.score -= 10
			res.issues = append(res.issues, models.ValidationIssue{
				Severity: models.SeverityWarning,
				Category: models.CategoryContent,
				Code:     models.CodeWordCountMismatch,
				Message:  fmt.Sprintf("word count %d differs from target %d", ctx.article.WordCount, target),
			})
		}
	}
	res.score = clampScore(res.score)
	return res
}

func evalAnchor(ctx *evalContext) categoryResult {
	if ctx.anchor.inHeader {
		return categoryResult{score: 0, issues: []models.ValidationIssue{{
			Severity: models.SeverityError,
			Category: models.CategoryAnchor,
			Code:     models.CodeAnchorInHeader,
			Message:  "anchor text found in a header",
			Location: &models.IssueLocation{Section: ctx.anchor.headerTitle},
		}}}
	}
	if !ctx.anchor.found {
		return categoryResult{score: 0, issues: []models.ValidationIssue{{
			Severity: models.SeverityError,
			Category: models.CategoryAnchor,
			Code:     models.CodeAnchorNotFound,
			Message:  fmt.Sprintf("anchor %q not found in article", ctx.matrix.AnchorPlan.Primary),
		}}}
	}

	res := categoryResult{score: 100}
	loc := &models.IssueLocation{Section: ctx.anchor.section, Paragraph: ctx.anchor.paragraph}

	if ctx.matrix.AnchorPlan.Placement.Section == models.PlacementSectionMidpoint {
		middle := len(ctx.article.Sections) / 2
		diff := ctx.anchor.sectionIdx - middle
		if diff < 0 {
			diff = -diff
		}
		if diff > 1 {
			res.score -= 30
			res.issues = append(res.issues, models.ValidationIssue{
				Severity: models.SeverityWarning,
				Category: models.CategoryAnchor,
				Code:     models.CodeAnchorPlacementWrong,
				Message:  fmt.Sprintf("anchor should sit in the middle section, found in %q", ctx.anchor.section),
				Location: loc,
			})
		}
	}

	if ctx.anchor.paragraph > 5 {
		res.score -= 15
		res.issues = append(res.issues, models.ValidationIssue{
			Severity: models.SeverityWarning,
			Category: models.CategoryAnchor,
			Code:     models.CodeAnchorTooDeep,
			Message:  fmt.Sprintf("anchor in paragraph %d of its section, expected within the first paragraphs", ctx.anchor.paragraph),
			Location: loc,
		})
	}
	res.score = clampScore(res.score)
	return res
}

func evalTrust(ctx *evalContext) categoryResult {
	res := categoryResult{score: 100}

	classified := ClassifyLinks(ExtractURLs(ctx.article.FullText), ctx.registry)
	ctx.trustCount = CountQualifyingTrustSignals(classified, ctx.matrix.Trust.MinTier)

	if hits := FindCompetitorHits(ctx.article.FullText, ctx.registry); len(hits) > 0 {
		return categoryResult{score: 0, issues: []models.ValidationIssue{{
			Severity: models.SeverityError,
			Category: models.CategoryTrust,
			Code:     models.CodeTrustCompetitor,
			Message:  fmt.Sprintf("competitor mentions found: %s", strings.Join(hits, ", ")),
		}}}
	}

	required := ctx.matrix.Trust.RequiredSignals
	switch {
	case ctx.trustCount == 0:
		res.score = 0
		res.issues = append(res.issues, models.ValidationIssue{
			Severity: models.SeverityError,
			Category: models.CategoryTrust,
			Code:     models.CodeMissingTrustSignals,
			Message:  "no qualifying trust signals found",
		})
	case ctx.trustCount < required:
		res.score -= 20 * float64(required-ctx.trustCount)
		res.issues = append(res.issues, models.ValidationIssue{
			Severity: models.SeverityWarning,
			Category: models.CategoryTrust,
			Code:     models.CodeInsufficientTrust,
			Message:  fmt.Sprintf("only %d of %d required trust signals found", ctx.trustCount, required),
		})
	}
	res.score = clampScore(res.score)
	return res
}

func evalLSI(ctx *evalContext) categoryResult {
	if !ctx.anchor.found {
		return categoryResult{score: 0, issues: []models.ValidationIssue{{
			Severity: models.SeverityError,
			Category: models.CategoryLSI,
			Code:     models.CodeAnchorNotFoundForLSI,
			Message:  "cannot evaluate the lemma window, anchor not found",
		}}}
	}

	policy := ctx.matrix.LSINearWindow.Policy
	sentences := ctx.article.Sentences()
	pos, ok := lexical.LocateSentence(sentences, ctx.anchor.usedText)
	if !ok {
		return categoryResult{score: 0, issues: []models.ValidationIssue{{
			Severity: models.SeverityError,
			Category: models.CategoryLSI,
			Code:     models.CodeAnchorNotFoundForLSI,
			Message:  "cannot evaluate the lemma window, anchor sentence not found",
		}}}
	}
	window := lexical.Window(sentences, pos, policy.RadiusSentences)

	lemmas := make([]string, 0, len(ctx.matrix.LSINearWindow.Terms))
	for _, t := range ctx.matrix.LSINearWindow.Terms {
		lemmas = append(lemmas, t.Lemma)
	}
	counts := lexical.MatchTerms(window, lemmas, ctx.lemmatizer)
	distinct := len(counts)

	res := categoryResult{score: 100}
	switch {
	case distinct < policy.Min:
		res.score = float64(distinct) / float64(policy.Min) * 100
		res.issues = append(res.issues, models.ValidationIssue{
			Severity: models.SeverityError,
			Category: models.CategoryLSI,
			Code:     models.CodeInsufficientLSITerms,
			Message:  fmt.Sprintf("only %d planned terms near the anchor, minimum %d required", distinct, policy.Min),
		})
	case distinct > policy.Max:
		res.score -= 15
		res.issues = append(res.issues, models.ValidationIssue{
			Severity: models.SeverityWarning,
			Category: models.CategoryLSI,
			Code:     models.CodeExcessiveLSITerms,
			Message:  fmt.Sprintf("%d planned terms near the anchor, maximum %d recommended", distinct, policy.Max),
		})
	}

	var overused []string
	for term, c := range counts {
		if c > policy.MaxRepeat {
			overused = append(overused, term)
		}
	}
	if len(overused) > 0 {
		sort.Strings(overused)
		res.score -= 10 * float64(len(overused))
		res.issues = append(res.issues, models.ValidationIssue{
			Severity: models.SeverityWarning,
			Category: models.CategoryLSI,
			Code:     models.CodeLSIOveruse,
			Message:  fmt.Sprintf("terms repeated more than %d times near the anchor: %s", policy.MaxRepeat, strings.Join(overused, ", ")),
		})
	}
	res.score = clampScore(res.score)
	return res
}

// promoPhrases flag overtly selling language in an editorial draft.
var promoPhrases = []string{"fantastisk", "otrolig", "missa inte", "unikt erbjudande", "garanterad vinst"}

// informalMarkers clash with a declared formal voice.
var informalMarkers = []string{"kolla", "grym", "najs", "superbra"}

func evalFit(ctx *evalContext) categoryResult {
	res := categoryResult{score: 90}
	text := strings.ToLower(ctx.article.FullText)

	promo := 0
	for _, phrase := range promoPhrases {
		if strings.Contains(text, phrase) {
			promo++
		}
	}
	if promo > 3 {
		res.score -= 20
		res.issues = append(res.issues, models.ValidationIssue{
			Severity: models.SeverityWarning,
			Category: models.CategoryContent,
			Code:     models.CodeOverlyPromotional,
			Message:  "content reads as overly promotional",
		})
	}

	voice := ctx.matrix.Voice
	switch {
	case voice.Tone == "formell" || voice.Tone == "formal":
		for _, marker := range informalMarkers {
			if containsWord(text, marker) {
				res.score -= 15
				res.issues = append(res.issues, models.ValidationIssue{
					Severity: models.SeverityWarning,
					Category: models.CategoryContent,
					Code:     models.CodeToneMismatch,
					Message:  fmt.Sprintf("informal phrasing %q clashes with the declared formal voice", marker),
				})
				break
			}
		}
	case voice.Perspective == "du":
		if !containsWord(text, "du") && !containsWord(text, "din") {
			res.score -= 10
			res.issues = append(res.issues, models.ValidationIssue{
				Severity: models.SeverityWarning,
				Category: models.CategoryContent,
				Code:     models.CodeToneMismatch,
				Message:  "publisher voice expects direct address, none found",
			})
		}
	}
	res.score = clampScore(res.score)
	return res
}

func evalCompliance(ctx *evalContext) categoryResult {
	required := ctx.matrix.Guards.Compliance
	if len(required) == 0 {
		return categoryResult{score: 100}
	}

	missing := CheckCompliance(ctx.article.FullText, required)
	if len(missing) == 0 {
		return categoryResult{score: 100}
	}

	regulated := map[string]bool{}
	for _, tag := range KnownComplianceTags() {
		regulated[tag] = true
	}

	res := categoryResult{}
	anyRegulated := false
	for _, tag := range missing {
		severity := models.SeverityWarning
		if regulated[tag] {
			severity = models.SeverityError
			anyRegulated = true
		}
		res.issues = append(res.issues, models.ValidationIssue{
			Severity: severity,
			Category: models.CategoryCompliance,
			Code:     models.DisclaimerIssueCode(tag),
			Message:  fmt.Sprintf("required %s disclaimer not found", tag),
		})
	}

	if anyRegulated {
		res.score = 0
		res.issues = append(res.issues, models.ValidationIssue{
			Severity: models.SeverityError,
			Category: models.CategoryCompliance,
			Code:     models.CodeCompliance,
			Message:  "regulated-industry disclaimer requirements not met",
		})
	} else {
		satisfied := len(required) - len(missing)
		res.score = float64(satisfied) / float64(len(required)) * 100
	}
	return res
}

// ============================================================================
// Recommendations & Next Actions
// ============================================================================

var recommendationText = map[string]string{
	models.CodeAnchorNotFound:       "Lägg in länken med den planerade ankartexten i artikeln",
	models.CodeAnchorNotFoundForLSI: "Lägg in länken så att termfönstret kan utvärderas",
	models.CodeMissingPrimaryAnchor: "Använd den primära ankartexten från planen",
	models.CodeAnchorInHeader:       "Flytta ankartexten ut ur rubriken till brödtext",
	models.CodeAnchorPlacementWrong: "Flytta länken till artikelns mittsektion",
	models.CodeAnchorTooDeep:        "Flytta länken högre upp i sektionen",
	models.CodeAnchorTypeForbidden:  "Byt till en ankartyp som portföljpolicyn tillåter",
	models.CodeInsufficientLSITerms: "Inkludera fler planerade termer inom två meningar från länken",
	models.CodeExcessiveLSITerms:    "Minska antalet planerade termer nära länken",
	models.CodeLSIOveruse:           "Variera språket, upprepa inte samma term mer än två gånger",
	models.CodeMissingTrustSignals:  "Lägg till minst en referens till en trovärdig källa",
	models.CodeInsufficientTrust:    "Lägg till fler referenser till trovärdiga källor",
	models.CodeTrustCompetitor:      "Ta bort alla omnämnanden av konkurrenter",
	models.CodeCompliance:           "Lägg till nödvändiga ansvarstexter för branschen",
	models.CodeInsufficientSections: "Utöka artikeln till minst tre sektioner",
	models.CodeEmptySection:         "Fyll tomma sektioner med innehåll eller ta bort dem",
	models.CodeWordCountMismatch:    "Justera artikelns längd mot målet",
	models.CodeOverlyPromotional:    "Tona ner det säljande språket",
	models.CodeToneMismatch:         "Anpassa tonen till publicistens röst",
}

// issueCategoryWeight maps issue categories onto the rubric weight of the
// category their penalties land in, for recommendation ranking.
var issueCategoryWeight = map[models.IssueCategory]float64{
	models.CategoryAnchor:     0.20,
	models.CategoryTrust:      0.15,
	models.CategoryLSI:        0.15,
	models.CategoryStructure:  0.15,
	models.CategoryContent:    0.15,
	models.CategoryCompliance: 0.05,
}

var severityRank = map[models.IssueSeverity]int{
	models.SeverityError:   0,
	models.SeverityWarning: 1,
	models.SeverityInfo:    2,
}

// rankIssues orders issues hard blocks first, then by category weight,
// severity, and issue code as the stable tie-break.
func rankIssues(issues []models.ValidationIssue) []models.ValidationIssue {
	ranked := make([]models.ValidationIssue, len(issues))
	copy(ranked, issues)
	sort.SliceStable(ranked, func(i, j int) bool {
		hi, hj := ranked[i].HardBlock(), ranked[j].HardBlock()
		if hi != hj {
			return hi
		}
		wi, wj := issueCategoryWeight[ranked[i].Category], issueCategoryWeight[ranked[j].Category]
		if wi != wj {
			return wi > wj
		}
		if severityRank[ranked[i].Severity] != severityRank[ranked[j].Severity] {
			return severityRank[ranked[i].Severity] < severityRank[ranked[j].Severity]
		}
		return ranked[i].Code < ranked[j].Code
	})
	return ranked
}

// buildRecommendations phrases the top four ranked issues as imperative
// actions.
func buildRecommendations(issues []models.ValidationIssue) []string {
	ranked := rankIssues(issues)

	seen := map[string]bool{}
	var out []string
	for _, issue := range ranked {
		if len(out) == 4 {
			break
		}
		text, ok := recommendationText[issue.Code]
		if !ok && models.IsDisclaimerCode(issue.Code) {
			text = "Lägg till den obligatoriska ansvarstexten"
		}
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, text)
	}
	return out
}

func buildNextActions(report *models.ValidationReport) []string {
	switch report.Status {
	case models.StatusApproved:
		return []string{"Proceed to delivery"}
	case models.StatusLightEdits:
		return []string{"Apply recommended edits", "Re-run QC validation"}
	}

	actions := []string{"Address critical issues"}
	if report.HasCode(models.CodeAnchorNotFound) {
		actions = append(actions, "Add target anchor link to article")
	}
	if report.HasCode(models.CodeMissingTrustSignals) {
		actions = append(actions, "Add references to credible sources")
	}
	if report.HasCode(models.CodeInsufficientLSITerms) {
		actions = append(actions, "Add planned terms near anchor link")
	}
	if report.HumanSignoffRequired {
		actions = append(actions, "Request human review")
	}
	return actions
}

// ============================================================================
// QC Service
// ============================================================================

// QCService runs validation for an order's draft, including the single
// permitted auto-fix pass, and persists the resulting report.
type QCService interface {
	// Validate evaluates the draft against the order's stored matrix.
	// Returns the final report and the (possibly auto-fixed) article text.
	Validate(ctx context.Context, orderRef, articleText string, autoFix bool) (*models.ValidationReport, string, error)
}

type qcService struct {
	matrices repositories.MatrixRepository
	registry repositories.TrustRegistryRepository
	reports  repositories.ReportRepository
	audit    repositories.AuditRepository
	logger   *zap.Logger
}

// NewQCService creates a new QCService.
func NewQCService(
	matrices repositories.MatrixRepository,
	registry repositories.TrustRegistryRepository,
	reports repositories.ReportRepository,
	audit repositories.AuditRepository,
	logger *zap.Logger,
) QCService {
	return &qcService{
		matrices: matrices,
		registry: registry,
		reports:  reports,
		audit:    audit,
		logger:   logger.Named("qc"),
	}
}

var _ QCService = (*qcService)(nil)

func (s *qcService) Validate(ctx context.Context, orderRef, articleText string, autoFix bool) (*models.ValidationReport, string, error) {
	matrix, err := s.matrices.GetByOrderRef(ctx, orderRef)
	if err != nil {
		return nil, "", err
	}

	registry, err := s.registry.Snapshot(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("trust registry snapshot: %w", apperrors.ErrDependencyUnavailable)
	}
	if matrix.RegistryVersion != "" && matrix.RegistryVersion != registry.Version {
		return nil, "", fmt.Errorf("matrix pinned registry %s, current is %s: %w",
			matrix.RegistryVersion, registry.Version, apperrors.ErrStaleMatrix)
	}

	report, finalText, err := ValidateArticle(articleText, matrix, registry, autoFix)
	if err != nil {
		return nil, "", err
	}

	if err := s.reports.Save(ctx, orderRef, report); err != nil {
		return nil, "", err
	}
	if err := s.audit.Append(ctx, &repositories.AuditEntry{
		OrderRef: orderRef,
		Step:     "qc",
		Status:   strings.ToLower(string(report.Status)),
		Payload: map[string]any{
			"score":             report.Score,
			"issues":            len(report.Issues),
			"auto_fix_attempts": report.AutoFixAttempts,
		},
	}); err != nil {
		s.logger.Warn("audit append failed", zap.String("order_ref", orderRef), zap.Error(err))
	}

	s.logger.Info("draft validated",
		zap.String("order_ref", orderRef),
		zap.String("status", string(report.Status)),
		zap.Float64("score", report.Score),
		zap.Int("issues", len(report.Issues)))
	return report, finalText, nil
}

// ============================================================================
// Helpers
// ============================================================================

func containsFold(s, sub string) bool {
	return sub != "" && strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
