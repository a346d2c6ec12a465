package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/robwestz/mcp-blcwrtr/pkg/models"
	"github.com/robwestz/mcp-blcwrtr/pkg/repositories"
)

// ============================================================================
// Risk Model (pure)
// ============================================================================

// PortfolioDiversity returns the normalized Shannon entropy of the four
// anchor-type proportions: 1.0 when all four are equal, 0 when the
// portfolio is concentrated in a single category or empty.
func PortfolioDiversity(counts map[models.AnchorType]int) float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0
	}

	entropy := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		entropy -= p * math.Log(p)
	}
	return entropy / math.Log(4)
}

// PortfolioRisk computes the anchor over-optimization risk in [0,1]:
//
//	risk = 0.7*exactRatio + 0.3*(1 - diversity)*(1 - exactRatio)
//
// The diversity penalty is damped by the non-exact share so a fully-exact
// portfolio scores exactly 0.7 (the exact-ratio ceiling) and a perfectly
// balanced one scores 0.175. An empty portfolio carries no risk. Pure
// function; mutation of the stored portfolio happens only in the
// recalculation path after a link is actually placed.
func PortfolioRisk(counts map[models.AnchorType]int) float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0
	}

	exactRatio := float64(counts[models.AnchorTypeExact]) / float64(total)
	return 0.7*exactRatio + 0.3*(1-PortfolioDiversity(counts))*(1-exactRatio)
}

// AnchorRecommendation is the planner-facing output of the risk policy.
type AnchorRecommendation struct {
	AllowedTypes  []models.AnchorType `json:"allowed_types"`
	Preferred     models.AnchorType   `json:"preferred"`
	ExactShareCap float64             `json:"exact_share_cap"`
	RiskLevel     string              `json:"risk_level"`
}

// RecommendAnchorTypes applies the three-band policy to a risk score:
// above 0.6 only brand/generic anchors are allowed; between 0.3 and 0.6
// exact anchors are capped at 1-in-10 with partial preferred; at or below
// 0.3 exact is allowed up to 20% of new allocation.
func RecommendAnchorTypes(risk float64) AnchorRecommendation {
	switch {
	case risk > 0.6:
		return AnchorRecommendation{
			AllowedTypes:  []models.AnchorType{models.AnchorTypeBrand, models.AnchorTypeGeneric},
			Preferred:     models.AnchorTypeBrand,
			ExactShareCap: 0,
			RiskLevel:     "high",
		}
	case risk > 0.3:
		return AnchorRecommendation{
			AllowedTypes: []models.AnchorType{
				models.AnchorTypeExact, models.AnchorTypePartial,
				models.AnchorTypeBrand, models.AnchorTypeGeneric,
			},
			Preferred:     models.AnchorTypePartial,
			ExactShareCap: 0.1,
			RiskLevel:     "medium",
		}
	default:
		return AnchorRecommendation{
			AllowedTypes: []models.AnchorType{
				models.AnchorTypeExact, models.AnchorTypePartial,
				models.AnchorTypeBrand, models.AnchorTypeGeneric,
			},
			Preferred:     models.AnchorTypePartial,
			ExactShareCap: 0.2,
			RiskLevel:     "low",
		}
	}
}

// DetectAnchorType classifies an anchor text against its target domain.
func DetectAnchorType(anchorText, targetDomain string) models.AnchorType {
	anchor := strings.ToLower(strings.TrimSpace(anchorText))

	label := targetDomain
	if i := strings.IndexByte(label, '.'); i > 0 {
		label = label[:i]
	}
	brandTerms := strings.FieldsFunc(strings.ToLower(label), func(r rune) bool {
		return r == '-' || r == '_'
	})

	for _, bt := range brandTerms {
		if anchor == bt {
			return models.AnchorTypeBrand
		}
	}
	for _, bt := range brandTerms {
		if len(bt) > 2 && strings.Contains(anchor, bt) {
			return models.AnchorTypePartial
		}
	}
	if isMoneyKeyword(anchor) {
		return models.AnchorTypeExact
	}
	return models.AnchorTypeGeneric
}

// moneyKeywords are the commercial head terms whose use as anchor text
// counts as an exact-match anchor.
var moneyKeywords = map[string]bool{
	"casino": true, "casino online": true, "online casino": true,
	"casino utan svensk licens": true,
	"spel": true, "betting": true, "odds": true, "bonus": true,
	"lån": true, "snabblån": true, "kredit": true,
}

func isMoneyKeyword(anchor string) bool {
	return moneyKeywords[anchor]
}

// ============================================================================
// Portfolio Service
// ============================================================================

// optimalRatios are the healthy per-type share bands used by the delta
// analysis recommendations.
var optimalRatios = map[models.AnchorType][2]float64{
	models.AnchorTypeExact:   {0.05, 0.15},
	models.AnchorTypePartial: {0.20, 0.40},
	models.AnchorTypeBrand:   {0.25, 0.45},
	models.AnchorTypeGeneric: {0.15, 0.30},
}

// MixChange records one per-type count change in a delta analysis.
type MixChange struct {
	From   int `json:"from"`
	To     int `json:"to"`
	Change int `json:"change"`
}

// PortfolioRecommendation is one rebalancing suggestion.
type PortfolioRecommendation struct {
	Action     string            `json:"action"` // "increase", "decrease", "diversify"
	AnchorType models.AnchorType `json:"anchor_type"`
	Rationale  string            `json:"rationale"`
	Priority   string            `json:"priority"` // "high", "medium", "low"
}

// PortfolioAnalysis compares a portfolio before and after a placement.
type PortfolioAnalysis struct {
	TargetDomain    string                    `json:"target_domain"`
	OldMix          map[models.AnchorType]int `json:"old_mix"`
	NewMix          map[models.AnchorType]int `json:"new_mix"`
	OldRisk         float64                   `json:"old_risk"`
	NewRisk         float64                   `json:"new_risk"`
	RiskLevel       string                    `json:"risk_level"`
	RiskDirection   string                    `json:"risk_direction"` // "improved", "worsened", "unchanged"
	MixChanges      map[models.AnchorType]MixChange `json:"mix_changes,omitempty"`
	Recommendations []PortfolioRecommendation `json:"recommendations,omitempty"`
}

// PortfolioService analyzes anchor portfolios and runs the recalculation
// job after placed links.
type PortfolioService interface {
	// Analyze compares old and new mixes and returns risk delta plus up to
	// four prioritized rebalancing recommendations.
	Analyze(targetDomain string, oldMix, newMix map[models.AnchorType]int) *PortfolioAnalysis

	// RecordPlacement increments the stored portfolio for the placed anchor
	// type and persists the recomputed risk.
	RecordPlacement(ctx context.Context, targetDomain string, anchorType models.AnchorType) (*models.AnchorPortfolio, error)
}

type portfolioService struct {
	repo   repositories.PortfolioRepository
	logger *zap.Logger
}

// NewPortfolioService creates a new PortfolioService.
func NewPortfolioService(repo repositories.PortfolioRepository, logger *zap.Logger) PortfolioService {
	return &portfolioService{
		repo:   repo,
		logger: logger.Named("portfolio-service"),
	}
}

var _ PortfolioService = (*portfolioService)(nil)

func (s *portfolioService) Analyze(targetDomain string, oldMix, newMix map[models.AnchorType]int) *PortfolioAnalysis {
	oldRisk := PortfolioRisk(oldMix)
	newRisk := PortfolioRisk(newMix)

	direction := "unchanged"
	if diff := newRisk - oldRisk; diff < -0.01 {
		direction = "improved"
	} else if diff > 0.01 {
		direction = "worsened"
	}

	changes := make(map[models.AnchorType]MixChange)
	for _, t := range models.ValidAnchorTypes {
		if oldMix[t] != newMix[t] {
			changes[t] = MixChange{From: oldMix[t], To: newMix[t], Change: newMix[t] - oldMix[t]}
		}
	}

	rec := RecommendAnchorTypes(newRisk)

	return &PortfolioAnalysis{
		TargetDomain:    targetDomain,
		OldMix:          oldMix,
		NewMix:          newMix,
		OldRisk:         round3(oldRisk),
		NewRisk:         round3(newRisk),
		RiskLevel:       rec.RiskLevel,
		RiskDirection:   direction,
		MixChanges:      changes,
		Recommendations: rebalanceRecommendations(newMix, rec.RiskLevel),
	}
}

func (s *portfolioService) RecordPlacement(ctx context.Context, targetDomain string, anchorType models.AnchorType) (*models.AnchorPortfolio, error) {
	portfolio, err := s.repo.GetByTargetDomain(ctx, targetDomain)
	if err != nil {
		return nil, fmt.Errorf("load portfolio for %s: %w", targetDomain, err)
	}

	switch anchorType {
	case models.AnchorTypeExact:
		portfolio.Exact++
	case models.AnchorTypePartial:
		portfolio.Partial++
	case models.AnchorTypeBrand:
		portfolio.Brand++
	case models.AnchorTypeGeneric:
		portfolio.Generic++
	default:
		return nil, fmt.Errorf("unknown anchor type %q", anchorType)
	}

	portfolio.Risk = round3(PortfolioRisk(portfolio.Counts()))
	now := time.Now().UTC()
	portfolio.LastCalculated = &now

	if err := s.repo.Upsert(ctx, portfolio); err != nil {
		return nil, fmt.Errorf("save portfolio for %s: %w", targetDomain, err)
	}

	s.logger.Info("portfolio recalculated",
		zap.String("target_domain", targetDomain),
		zap.String("anchor_type", string(anchorType)),
		zap.Float64("risk", portfolio.Risk))

	return portfolio, nil
}

func rebalanceRecommendations(mix map[models.AnchorType]int, riskLevel string) []PortfolioRecommendation {
	total := 0
	for _, c := range mix {
		total += c
	}

	if total == 0 {
		return []PortfolioRecommendation{{
			Action:     "increase",
			AnchorType: models.AnchorTypeBrand,
			Rationale:  "Start building the portfolio with brand anchors",
			Priority:   "high",
		}}
	}

	var recs []PortfolioRecommendation
	ratio := func(t models.AnchorType) float64 { return float64(mix[t]) / float64(total) }

	if r := ratio(models.AnchorTypeExact); r > optimalRatios[models.AnchorTypeExact][1] {
		recs = append(recs, PortfolioRecommendation{
			Action:     "decrease",
			AnchorType: models.AnchorTypeExact,
			Rationale:  fmt.Sprintf("Exact match ratio (%.0f%%) exceeds the safe threshold (%.0f%%)", r*100, optimalRatios[models.AnchorTypeExact][1]*100),
			Priority:   "high",
		})
	} else if r < optimalRatios[models.AnchorTypeExact][0] && riskLevel == "low" {
		recs = append(recs, PortfolioRecommendation{
			Action:     "increase",
			AnchorType: models.AnchorTypeExact,
			Rationale:  "Room for more exact matches to strengthen relevance signals",
			Priority:   "low",
		})
	}

	if ratio(models.AnchorTypePartial) < optimalRatios[models.AnchorTypePartial][0] {
		priority := "medium"
		if riskLevel == "high" {
			priority = "high"
		}
		recs = append(recs, PortfolioRecommendation{
			Action:     "increase",
			AnchorType: models.AnchorTypePartial,
			Rationale:  "Partial matches balance relevance and safety",
			Priority:   priority,
		})
	}

	if ratio(models.AnchorTypeBrand) < optimalRatios[models.AnchorTypeBrand][0] {
		priority := "medium"
		if riskLevel == "high" {
			priority = "high"
		}
		recs = append(recs, PortfolioRecommendation{
			Action:     "increase",
			AnchorType: models.AnchorTypeBrand,
			Rationale:  "Brand anchors are the safest and build recognition",
			Priority:   priority,
		})
	}

	if ratio(models.AnchorTypeGeneric) < optimalRatios[models.AnchorTypeGeneric][0] {
		recs = append(recs, PortfolioRecommendation{
			Action:     "increase",
			AnchorType: models.AnchorTypeGeneric,
			Rationale:  "Generic anchors add natural diversity",
			Priority:   "medium",
		})
	}

	counts := make(map[models.AnchorType]int, len(mix))
	for t, c := range mix {
		counts[t] = c
	}
	if PortfolioDiversity(counts) < 0.7 && len(recs) < 3 {
		recs = append(recs, PortfolioRecommendation{
			Action:     "diversify",
			AnchorType: models.AnchorTypeGeneric,
			Rationale:  "Improve anchor diversity for a more natural link profile",
			Priority:   "medium",
		})
	}

	priorityOrder := map[string]int{"high": 0, "medium": 1, "low": 2}
	sort.SliceStable(recs, func(i, j int) bool {
		return priorityOrder[recs[i].Priority] < priorityOrder[recs[j].Priority]
	})

	if len(recs) > 4 {
		recs = recs[:4]
	}
	return recs
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
