package models

import "time"

// ============================================================================
// Anchor Types
// ============================================================================

// AnchorType classifies an anchor text relative to its target domain.
type AnchorType string

const (
	AnchorTypeExact   AnchorType = "exact"   // money keyword, highest over-optimization risk
	AnchorTypePartial AnchorType = "partial" // keyword plus brand or modifier
	AnchorTypeBrand   AnchorType = "brand"   // bare brand name
	AnchorTypeGeneric AnchorType = "generic" // "read more", "this guide", etc.
)

// ValidAnchorTypes contains all valid anchor type values.
var ValidAnchorTypes = []AnchorType{
	AnchorTypeExact,
	AnchorTypePartial,
	AnchorTypeBrand,
	AnchorTypeGeneric,
}

// ============================================================================
// Anchor Portfolio
// ============================================================================

// AnchorPortfolio aggregates the anchors historically placed toward one
// target domain. Counts are non-negative; Risk is a pure deterministic
// function of them, recomputed by the recalculation job after each placed
// link. The planner only ever reads this.
type AnchorPortfolio struct {
	TargetDomain   string     `json:"target_domain"`
	Exact          int        `json:"exact"`
	Partial        int        `json:"partial"`
	Brand          int        `json:"brand"`
	Generic        int        `json:"generic"`
	Risk           float64    `json:"risk"` // [0,1]
	LastCalculated *time.Time `json:"last_calculated,omitempty"`
}

// Total returns the number of anchors across all four categories.
func (p *AnchorPortfolio) Total() int {
	return p.Exact + p.Partial + p.Brand + p.Generic
}

// Counts returns the portfolio as a per-type map, in the shape the risk
// model consumes.
func (p *AnchorPortfolio) Counts() map[AnchorType]int {
	return map[AnchorType]int{
		AnchorTypeExact:   p.Exact,
		AnchorTypePartial: p.Partial,
		AnchorTypeBrand:   p.Brand,
		AnchorTypeGeneric: p.Generic,
	}
}

// RiskLevel buckets the risk score into low / medium / high.
func (p *AnchorPortfolio) RiskLevel() string {
	switch {
	case p.Risk <= 0.3:
		return "low"
	case p.Risk <= 0.6:
		return "medium"
	default:
		return "high"
	}
}
