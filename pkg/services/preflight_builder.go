package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/robwestz/mcp-blcwrtr/pkg/apperrors"
	"github.com/robwestz/mcp-blcwrtr/pkg/collectors"
	"github.com/robwestz/mcp-blcwrtr/pkg/models"
	"github.com/robwestz/mcp-blcwrtr/pkg/prompts"
	"github.com/robwestz/mcp-blcwrtr/pkg/repositories"
)

// PreflightResult is the builder output: the stored matrix plus the
// rendered writer brief.
type PreflightResult struct {
	Matrix      *models.PreflightMatrix `json:"preflight_matrix"`
	WriterBrief string                  `json:"writer_brief"`
	Warnings    []string                `json:"warnings,omitempty"`
}

// PreflightService builds the content plan for an order. Building is
// deterministic: unchanged inputs (order, profile, portfolio, registry
// snapshot, collector signal) produce a bit-identical matrix.
type PreflightService interface {
	Build(ctx context.Context, orderRef string) (*PreflightResult, error)
}

type preflightService struct {
	orders     repositories.OrderRepository
	profiles   repositories.PublisherProfileRepository
	portfolios repositories.PortfolioRepository
	registry   repositories.TrustRegistryRepository
	matrices   repositories.MatrixRepository
	audit      repositories.AuditRepository
	collector  collectors.Collector
	logger     *zap.Logger
}

// NewPreflightService creates a new PreflightService.
func NewPreflightService(
	orders repositories.OrderRepository,
	profiles repositories.PublisherProfileRepository,
	portfolios repositories.PortfolioRepository,
	registry repositories.TrustRegistryRepository,
	matrices repositories.MatrixRepository,
	audit repositories.AuditRepository,
	collector collectors.Collector,
	logger *zap.Logger,
) PreflightService {
	return &preflightService{
		orders:     orders,
		profiles:   profiles,
		portfolios: portfolios,
		registry:   registry,
		matrices:   matrices,
		audit:      audit,
		collector:  collector,
		logger:     logger.Named("preflight"),
	}
}

var _ PreflightService = (*preflightService)(nil)

func (s *preflightService) Build(ctx context.Context, orderRef string) (*PreflightResult, error) {
	order, err := s.orders.GetByRef(ctx, orderRef)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetByDomain(ctx, order.PublicationDomain)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("publisher profile for %s: %w",
			order.PublicationDomain, apperrors.ErrDependencyUnavailable)
	}
	if err != nil {
		return nil, err
	}

	targetDomain := hostOf(order.TargetURL)
	portfolio, err := s.portfolios.GetByTargetDomain(ctx, targetDomain)
	if err != nil {
		return nil, fmt.Errorf("anchor portfolio for %s: %w", targetDomain, apperrors.ErrDependencyUnavailable)
	}

	registry, err := s.registry.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("trust registry snapshot: %w", apperrors.ErrDependencyUnavailable)
	}

	locale := order.Locale
	if locale == "" {
		locale = "sv-SE"
	}
	query := extractQueryCluster(order.Topic)
	signal, err := s.collector.SerpSnapshot(ctx, query, locale)
	if err != nil {
		return nil, fmt.Errorf("serp snapshot for %q: %w", query, apperrors.ErrDependencyUnavailable)
	}

	targetIndustry := DetectIndustry(order.TargetURL, order.AnchorText)
	pubIndustry := DetectIndustry(order.PublicationDomain, order.Topic)

	targetEntities := extractEntities(targetDomain, order.AnchorText, targetIndustry)
	pubEntities := extractEntities(order.PublicationDomain, order.Topic, pubIndustry)

	candidates := midpointCandidates(pubEntities, targetEntities)
	chosen := candidates[0]

	var warnings []string
	plan, planWarnings := buildAnchorPlan(order, targetDomain, portfolio)
	warnings = append(warnings, planWarnings...)

	terms := selectLSITerms(targetIndustry, pubIndustry, signal.LSITerms)

	trustPlan := buildTrustPlan(registry, targetIndustry, pubIndustry)
	if len(trustPlan.Sources) < trustPlan.RequiredSignals {
		warnings = append(warnings, fmt.Sprintf(
			"trust registry offers only %d qualifying sources, plan requires %d",
			len(trustPlan.Sources), trustPlan.RequiredSignals))
	}

	target := order.TargetWordCount()
	voice := profile.Voice
	if order.Constraints.Tone != "" {
		voice.Tone = order.Constraints.Tone
	}

	matrix := &models.PreflightMatrix{
		OrderRef:            order.OrderRef,
		CustomerID:          order.CustomerID,
		PublicationDomain:   order.PublicationDomain,
		TargetURL:           order.TargetURL,
		Locale:              locale,
		QueryCluster:        query,
		Intents:             mergeIntents(detectBuilderIntents(order.Topic, order.TargetURL), signal.Intents),
		TargetEntities:      targetEntities,
		PublicationEntities: pubEntities,
		CandidateMidpoints:  candidates,
		ChosenMidpoint:      candidates[0],
		AnchorPlan:          plan,
		Voice:               voice,
		LSINearWindow: models.LSIWindow{
			Policy: models.LSIWindowPolicy{Min: 6, Max: 10, RadiusSentences: 2, MaxRepeat: 2},
			Terms:  terms,
		},
		Trust: trustPlan,
		Guards: models.Guards{
			NoAnchorInHeaders: true,
			CompetitorBlock:   true,
			Compliance:        complianceTags(order.Constraints.Compliance, targetIndustry),
		},
		WordCount: models.WordCountRange{
			Min:    target * 8 / 10,
			Target: target,
			Max:    target * 12 / 10,
		},
		RegistryVersion: registry.Version,
	}

	if err := s.matrices.Save(ctx, order.OrderRef, matrix); err != nil {
		return nil, err
	}

	brief, err := prompts.RenderWriterBrief(matrix, order.Topic)
	if err != nil {
		return nil, err
	}

	if err := s.audit.Append(ctx, &repositories.AuditEntry{
		OrderRef: order.OrderRef,
		Step:     "preflight",
		Status:   "ok",
		Payload: map[string]any{
			"registry_version": registry.Version,
			"midpoint":         chosen.Label,
			"lsi_terms":        len(terms),
		},
	}); err != nil {
		s.logger.Warn("audit append failed", zap.String("order_ref", order.OrderRef), zap.Error(err))
	}

	s.logger.Info("preflight matrix built",
		zap.String("order_ref", order.OrderRef),
		zap.String("midpoint", chosen.Label),
		zap.String("anchor_type", string(plan.Type)),
		zap.Int("lsi_terms", len(terms)))

	return &PreflightResult{Matrix: matrix, WriterBrief: brief, Warnings: warnings}, nil
}

// ============================================================================
// Query & Intents
// ============================================================================

var queryStopwords = map[string]bool{
	"så": true, "du": true, "din": true, "att": true, "för": true,
	"med": true, "om": true, "i": true, "på": true, "av": true,
	"en": true, "ett": true, "och": true, "hur": true,
}

// extractQueryCluster reduces a topic to a 2-4 word search query.
func extractQueryCluster(topic string) string {
	words := strings.Fields(strings.ToLower(topic))
	var filtered []string
	for _, w := range words {
		if !queryStopwords[w] && len([]rune(w)) > 2 {
			filtered = append(filtered, w)
		}
	}
	if len(filtered) >= 2 {
		if len(filtered) > 4 {
			filtered = filtered[:4]
		}
		return strings.Join(filtered, " ")
	}
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, " ")
}

func detectBuilderIntents(topic, targetURL string) []string {
	var intents []string
	t := strings.ToLower(topic)
	for _, kw := range []string{"guide", "tips", "hur", "vad", "varför", "undvik"} {
		if strings.Contains(t, kw) {
			intents = append(intents, "informational")
			break
		}
	}
	u := strings.ToLower(targetURL)
	if strings.Contains(u, "casino") || strings.Contains(u, "betting") || strings.Contains(u, "bonus") {
		intents = append(intents, "commercial")
	}
	if len(intents) == 0 {
		intents = append(intents, "informational")
	}
	return intents
}

func mergeIntents(groups ...[]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, g := range groups {
		for _, intent := range g {
			if !seen[intent] {
				seen[intent] = true
				out = append(out, intent)
			}
		}
	}
	return out
}

// ============================================================================
// Entities & Midpoints
// ============================================================================

// extractEntities derives up to five entities from a domain name, its
// surrounding context and the detected industry's keyword pool.
func extractEntities(domain, context, industry string) []string {
	seen := map[string]bool{}
	var entities []string
	add := func(e string) {
		if len([]rune(e)) > 3 && !seen[e] && len(entities) < 5 {
			seen[e] = true
			entities = append(entities, e)
		}
	}

	cleaned := strings.NewReplacer(".", " ", "-", " ").Replace(strings.ToLower(domain))
	for _, part := range strings.Fields(cleaned) {
		add(part)
	}

	joined := strings.ToLower(domain + " " + context)
	for _, kw := range lexicon.Detection[industry] {
		if strings.Contains(joined, kw) {
			add(kw)
		}
	}
	return entities
}

// midpointConcepts is the static bridge vocabulary the builder scores
// entity pairs against.
var midpointConcepts = []struct {
	Label     string
	Bridges   []string
	Score     float64
	Rationale string
}{
	{"pausunderhållning", []string{"forskning", "casino"}, 0.85,
		"Naturlig brygga mellan intensivt arbete och avkoppling"},
	{"koncentrationsövning", []string{"studie", "spel"}, 0.75,
		"Gemensam nämnare i fokus och strategi"},
	{"digitala verktyg", []string{"online", "internet", "digital"}, 0.70,
		"Modern teknik som förenar olika aktiviteter"},
	{"tidshantering", []string{"planering", "fritid", "balans"}, 0.65,
		"Balans mellan arbete och vila"},
}

// midpointCandidates scores the bridge concepts against both entity sets
// and returns up to three, best first. Never empty: a generic fallback
// covers entity sets no concept bridges.
func midpointCandidates(pubEntities, targetEntities []string) []models.Midpoint {
	pubJoined := strings.ToLower(strings.Join(pubEntities, " "))
	targetJoined := strings.ToLower(strings.Join(targetEntities, " "))

	var out []models.Midpoint
	for _, c := range midpointConcepts {
		pubMatch, targetMatch := false, false
		for _, bridge := range c.Bridges {
			if strings.Contains(pubJoined, bridge) {
				pubMatch = true
			}
			if strings.Contains(targetJoined, bridge) {
				targetMatch = true
			}
		}
		if !pubMatch && !targetMatch {
			continue
		}
		score := c.Score
		if pubMatch && targetMatch {
			score = min(1.0, score*1.2)
		}
		out = append(out, models.Midpoint{Label: c.Label, Score: round3(score), Rationale: c.Rationale})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Label < out[j].Label
	})
	if len(out) > 3 {
		out = out[:3]
	}
	if len(out) == 0 {
		out = append(out, models.Midpoint{
			Label:     "avkoppling",
			Score:     0.5,
			Rationale: "Generell brygga mellan olika aktiviteter",
		})
	}
	return out
}

// ============================================================================
// Anchor Plan
// ============================================================================

// buildAnchorPlan combines anchor type detection with the portfolio risk
// policy. The paragraph slot is derived from the order ref so rebuilds
// land on the same plan.
func buildAnchorPlan(order *models.Order, targetDomain string, portfolio *models.AnchorPortfolio) (models.AnchorPlan, []string) {
	anchorType := DetectAnchorType(order.AnchorText, targetDomain)
	rec := RecommendAnchorTypes(portfolio.Risk)

	var warnings []string
	allowed := false
	for _, t := range rec.AllowedTypes {
		if t == anchorType {
			allowed = true
			break
		}
	}
	if !allowed {
		warnings = append(warnings, fmt.Sprintf(
			"anchor type %q exceeds portfolio risk policy (%s risk), writer should prefer the backup",
			anchorType, rec.RiskLevel))
	}

	h := fnv.New64a()
	h.Write([]byte(order.OrderRef))
	paragraph := int(h.Sum64()%3) + 1

	return models.AnchorPlan{
		Type:          anchorType,
		Primary:       order.AnchorText,
		Backup:        backupAnchor(order.AnchorText, anchorType),
		AllowedTypes:  rec.AllowedTypes,
		ExactShareCap: rec.ExactShareCap,
		Placement: models.AnchorPlacement{
			Section:   models.PlacementSectionMidpoint,
			Paragraph: paragraph,
		},
	}, warnings
}

func backupAnchor(anchor string, anchorType models.AnchorType) string {
	switch anchorType {
	case models.AnchorTypeExact:
		return anchor + " online"
	case models.AnchorTypeBrand:
		return "besök " + anchor
	default:
		return "mer om " + anchor
	}
}

// ============================================================================
// LSI Selection
// ============================================================================

// selectLSITerms merges the industry lexicons with the SERP-mined terms and
// picks a balanced set. Bridge terms (present in more than one pool) win
// ties; selection round-robins the five categories so no single category
// dominates. Targets eight terms within the 6..10 policy bound.
func selectLSITerms(targetIndustry, pubIndustry string, serpTerms []string) []models.LSITerm {
	type candidate struct {
		models.LSITerm
		pools int
	}
	byLemma := map[string]*candidate{}
	addPool := func(terms []models.LSITerm) {
		seen := map[string]bool{}
		for _, t := range terms {
			lemma := strings.ToLower(t.Lemma)
			if seen[lemma] {
				continue
			}
			seen[lemma] = true
			if c, ok := byLemma[lemma]; ok {
				c.pools++
			} else {
				byLemma[lemma] = &candidate{
					LSITerm: models.LSITerm{Lemma: lemma, Category: t.Category},
					pools:   1,
				}
			}
		}
	}

	addPool(IndustryTerms(targetIndustry))
	if pubIndustry != targetIndustry {
		addPool(IndustryTerms(pubIndustry))
	}

	var serp []models.LSITerm
	for _, raw := range serpTerms {
		serp = append(serp, models.LSITerm{Lemma: strings.ToLower(raw), Category: categoryOf(raw)})
	}
	addPool(serp)
	addPool(IndustryTerms(IndustryGeneral))

	byCategory := map[string][]models.LSITerm{}
	for _, c := range byLemma {
		c.Bridge = c.pools > 1
		byCategory[c.Category] = append(byCategory[c.Category], c.LSITerm)
	}
	for _, terms := range byCategory {
		sort.Slice(terms, func(i, j int) bool {
			if terms[i].Bridge != terms[j].Bridge {
				return terms[i].Bridge
			}
			return terms[i].Lemma < terms[j].Lemma
		})
	}

	const want = 8
	var out []models.LSITerm
	for len(out) < want {
		progressed := false
		for _, cat := range models.ValidLSICategories {
			pool := byCategory[cat]
			if len(pool) == 0 || len(out) >= want {
				continue
			}
			out = append(out, pool[0])
			byCategory[cat] = pool[1:]
			progressed = true
		}
		if !progressed {
			break
		}
	}
	return out
}

// categoryOf classifies a SERP-mined term via the lexicons, defaulting to
// process for terms the lexicons do not know.
func categoryOf(term string) string {
	lemma := strings.ToLower(term)
	for _, pool := range lexicon.Industries {
		for _, t := range pool {
			if strings.ToLower(t.Lemma) == lemma {
				return t.Category
			}
		}
	}
	return models.LSICategoryProcess
}

// ============================================================================
// Trust Plan & Compliance
// ============================================================================

var trustRationales = map[string]string{
	"government":   "Officiell myndighet med hög trovärdighet",
	"news":         "Etablerad nyhetskälla med redaktionell granskning",
	"encyclopedia": "Omfattande kunskapskälla med många bidragsgivare",
	"academic":     "Akademisk källa med vetenskaplig grund",
}

var planTierRank = map[models.TrustTier]int{
	models.TierT1: 1,
	models.TierT2: 2,
}

// buildTrustPlan picks up to two T1/T2 non-competitor sources, preferring
// registry entries registered for either relevant industry.
func buildTrustPlan(registry *models.TrustRegistry, targetIndustry, pubIndustry string) models.TrustPlan {
	type scored struct {
		entry         models.TrustRegistryEntry
		industryMatch bool
	}
	var pool []scored
	for _, e := range registry.Entries {
		if _, qualifies := planTierRank[e.Tier]; !qualifies || e.Competitor {
			continue
		}
		pool = append(pool, scored{
			entry:         e,
			industryMatch: e.Industry == targetIndustry || e.Industry == pubIndustry,
		})
	}
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].industryMatch != pool[j].industryMatch {
			return pool[i].industryMatch
		}
		if pool[i].entry.Tier != pool[j].entry.Tier {
			return planTierRank[pool[i].entry.Tier] < planTierRank[pool[j].entry.Tier]
		}
		return pool[i].entry.Domain < pool[j].entry.Domain
	})

	plan := models.TrustPlan{RequiredSignals: 2, MinTier: models.TierT2}
	for _, s := range pool {
		if len(plan.Sources) == 2 {
			break
		}
		rationale, ok := trustRationales[s.entry.Category]
		if !ok {
			rationale = "Erkänd källa inom området"
		}
		plan.Sources = append(plan.Sources, models.TrustTarget{
			Domain:    s.entry.Domain,
			Tier:      s.entry.Tier,
			Rationale: rationale,
		})
	}
	return plan
}

// complianceTags unions the order-declared tags with the tag the target
// industry implies. Sorted for stable matrix output.
func complianceTags(declared []string, targetIndustry string) []string {
	seen := map[string]bool{}
	var out []string
	for _, tag := range declared {
		tag = strings.ToLower(tag)
		if !seen[tag] {
			seen[tag] = true
			out = append(out, tag)
		}
	}
	if tag, ok := ImpliedComplianceTag(targetIndustry); ok && !seen[tag] {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
