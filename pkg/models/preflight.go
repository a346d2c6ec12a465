package models

// ============================================================================
// LSI Terms
// ============================================================================

// LSI semantic category constants. The builder balances the term set across
// these five when the merged candidate pool allows it.
const (
	LSICategoryProcess     = "process"
	LSICategoryMeasurement = "measurement"
	LSICategoryFailureMode = "failure_mode"
	LSICategoryTool        = "tool"
	LSICategoryTemporal    = "temporal"
)

// ValidLSICategories contains all valid LSI category values.
var ValidLSICategories = []string{
	LSICategoryProcess,
	LSICategoryMeasurement,
	LSICategoryFailureMode,
	LSICategoryTool,
	LSICategoryTemporal,
}

// LSITerm is one planned lemma expected near the anchor.
type LSITerm struct {
	Lemma    string `json:"lemma"`
	Category string `json:"category"`
	// Bridge marks terms shared between the publisher topic and the target
	// topic. Bridge terms win selection ties over single-domain terms.
	Bridge bool `json:"bridge,omitempty"`
}

// LSIWindowPolicy bounds the lemma counting around the anchor.
type LSIWindowPolicy struct {
	Min             int `json:"min"`
	Max             int `json:"max"`
	RadiusSentences int `json:"radius_sentences"`
	MaxRepeat       int `json:"max_repeat"`
}

// LSIWindow couples the policy with the planned term set.
type LSIWindow struct {
	Policy LSIWindowPolicy `json:"policy"`
	Terms  []LSITerm       `json:"terms"`
}

// ============================================================================
// Anchor Plan
// ============================================================================

// AnchorPlacement declares where the anchor belongs in the article:
// the midpoint section, within the first paragraphs.
type AnchorPlacement struct {
	Section   string `json:"section"` // "midpoint" is the only planned value
	Paragraph int    `json:"paragraph"`
}

// PlacementSectionMidpoint is the declared anchor placement target.
const PlacementSectionMidpoint = "midpoint"

// AnchorPlan is the anchor strategy portion of the matrix.
type AnchorPlan struct {
	Type    AnchorType `json:"type"`
	Primary string     `json:"primary"`
	Backup  string     `json:"backup,omitempty"`
	// AllowedTypes and ExactShareCap come from the portfolio risk policy:
	// high risk forbids exact anchors outright, medium caps them at 1-in-10,
	// low allows exact up to 20% of new allocation.
	AllowedTypes  []AnchorType    `json:"allowed_types"`
	ExactShareCap float64         `json:"exact_share_cap"`
	Placement     AnchorPlacement `json:"placement"`
}

// Allows reports whether the plan permits the given anchor type.
func (p *AnchorPlan) Allows(t AnchorType) bool {
	for _, a := range p.AllowedTypes {
		if a == t {
			return true
		}
	}
	return false
}

// ============================================================================
// Midpoint
// ============================================================================

// Midpoint is a declared semantic bridge between the publisher topic and
// the target topic. QC later verifies the anchor sits near this bridge
// rather than in the introduction or conclusion.
type Midpoint struct {
	Label     string  `json:"label"`
	Score     float64 `json:"score,omitempty"`
	Rationale string  `json:"rationale,omitempty"`
}

// ============================================================================
// Trust & Guards
// ============================================================================

// TrustTarget is one planned trust citation.
type TrustTarget struct {
	Domain    string    `json:"domain"`
	Tier      TrustTier `json:"tier"`
	Rationale string    `json:"rationale,omitempty"`
}

// TrustPlan declares how many qualifying trust signals the article needs
// and which sources the writer should prefer.
type TrustPlan struct {
	RequiredSignals int           `json:"required_signals"`
	MinTier         TrustTier     `json:"min_tier"`
	Sources         []TrustTarget `json:"sources"`
}

// Guards carries the hard rules the QC engine enforces unconditionally.
type Guards struct {
	NoAnchorInHeaders bool     `json:"no_anchor_in_headers"`
	CompetitorBlock   bool     `json:"competitor_block"`
	Compliance        []string `json:"compliance,omitempty"`
}

// WordCountRange is the tolerated word count band around the target.
type WordCountRange struct {
	Min    int `json:"min"`
	Target int `json:"target"`
	Max    int `json:"max"`
}

// ============================================================================
// Preflight Matrix
// ============================================================================

// PreflightMatrix is the derived, immutable content plan for one order.
// Built once per order and never mutated: a new draft against a stale
// matrix triggers a rebuild, not a patch. The struct deliberately carries
// no timestamp so recomputation from unchanged inputs is bit-identical.
type PreflightMatrix struct {
	OrderRef            string      `json:"order_ref"`
	CustomerID          string      `json:"customer_id"`
	PublicationDomain   string      `json:"publication_domain"`
	TargetURL           string      `json:"target_url"`
	Locale              string      `json:"locale"`
	QueryCluster        string      `json:"query_or_cluster"`
	Intents             []string    `json:"intents"`
	TargetEntities      []string    `json:"target_entities"`
	PublicationEntities []string    `json:"publication_entities"`
	CandidateMidpoints  []Midpoint  `json:"candidate_midpoints"`
	ChosenMidpoint      Midpoint    `json:"chosen_midpoint"`
	AnchorPlan          AnchorPlan  `json:"anchor_plan"`
	// Voice is copied from the publisher profile at build time so the QC
	// fit scoring needs no profile lookup of its own.
	Voice               PublisherVoice `json:"voice"`
	LSINearWindow       LSIWindow   `json:"lsi_near_window"`
	Trust               TrustPlan   `json:"trust"`
	Guards              Guards      `json:"guards"`
	WordCount           WordCountRange `json:"word_count"`
	// RegistryVersion pins the trust registry snapshot the plan was built
	// against, for deterministic replay.
	RegistryVersion string `json:"registry_version,omitempty"`
}
