package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Issue Severity & Category
// ============================================================================

// IssueSeverity grades a validation issue.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
	SeverityInfo    IssueSeverity = "info"
)

// IssueCategory names the rubric category an issue belongs to.
type IssueCategory string

const (
	CategoryAnchor     IssueCategory = "anchor"
	CategoryTrust      IssueCategory = "trust"
	CategoryLSI        IssueCategory = "lsi"
	CategoryCompliance IssueCategory = "compliance"
	CategoryStructure  IssueCategory = "structure"
	CategoryContent    IssueCategory = "content"
)

// ============================================================================
// Issue Codes
// ============================================================================

// Machine-readable issue codes. MISSING_<TAG>_DISCLAIMER codes are built
// with DisclaimerIssueCode and matched with IsDisclaimerCode.
const (
	CodeAnchorNotFound         = "ANCHOR_NOT_FOUND"
	CodeAnchorNotFoundForLSI   = "ANCHOR_NOT_FOUND_FOR_LSI"
	CodeAnchorInHeader         = "ANCHOR_IN_HEADER"
	CodeAnchorPlacementWrong   = "ANCHOR_PLACEMENT_WRONG"
	CodeAnchorTooDeep          = "ANCHOR_TOO_DEEP"
	CodeAnchorTypeForbidden    = "ANCHOR_TYPE_FORBIDDEN"
	CodeMissingPrimaryAnchor   = "MISSING_PRIMARY_ANCHOR"
	CodeInsufficientLSITerms   = "INSUFFICIENT_LSI_TERMS"
	CodeExcessiveLSITerms      = "EXCESSIVE_LSI_TERMS"
	CodeLSIOveruse             = "LSI_OVERUSE"
	CodeMissingTrustSignals    = "MISSING_TRUST_SIGNALS"
	CodeInsufficientTrust      = "INSUFFICIENT_TRUST_SIGNALS"
	CodeTrustCompetitor        = "ERR_TRUST_COMPETITOR"
	CodeCompliance             = "ERR_COMPLIANCE"
	CodeInsufficientSections   = "INSUFFICIENT_SECTIONS"
	CodeEmptySection           = "EMPTY_SECTION"
	CodeWordCountMismatch      = "WORD_COUNT_MISMATCH"
	CodeOverlyPromotional      = "OVERLY_PROMOTIONAL"
	CodeToneMismatch           = "TONE_MISMATCH"
)

// DisclaimerIssueCode builds the per-tag missing disclaimer code,
// e.g. "gambling" -> MISSING_GAMBLING_DISCLAIMER.
func DisclaimerIssueCode(tag string) string {
	return "MISSING_" + upper(tag) + "_DISCLAIMER"
}

// IsDisclaimerCode reports whether code is a MISSING_*_DISCLAIMER code.
func IsDisclaimerCode(code string) bool {
	return len(code) > len("MISSING__DISCLAIMER") &&
		code[:8] == "MISSING_" && code[len(code)-11:] == "_DISCLAIMER"
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

// hardBlockCodes are always surfaced, never silently fixed, and force
// BLOCKED status regardless of the aggregate score.
var hardBlockCodes = map[string]bool{
	CodeAnchorNotFound:  true,
	CodeAnchorInHeader:  true,
	CodeTrustCompetitor: true,
	CodeCompliance:      true,
}

// IsHardBlock reports whether the code is a hard-block condition.
// Missing disclaimers hard-block only in regulated industries; the QC
// engine flags those with CodeCompliance alongside the per-tag code.
func IsHardBlock(code string) bool {
	return hardBlockCodes[code]
}

// humanOnlyCodes can never be auto-fixed; remediation requires a human.
var humanOnlyCodes = map[string]bool{
	CodeAnchorInHeader:  true,
	CodeTrustCompetitor: true,
	CodeCompliance:      true,
}

// ============================================================================
// Fix Records
// ============================================================================

// FixType names an automated repair kind.
type FixType string

const (
	FixAddDisclaimer FixType = "add_disclaimer"
	FixMoveLink      FixType = "move_link"
	FixInjectLSI     FixType = "inject_lsi"
	FixAddTrust      FixType = "add_trust"
)

// FixTypeForCode maps an issue code to its eligible fix kind. Eligibility
// is determined by code, not category; human-only codes return false even
// when their category has an eligible kind.
func FixTypeForCode(code string) (FixType, bool) {
	if humanOnlyCodes[code] {
		return "", false
	}
	switch {
	case IsDisclaimerCode(code):
		return FixAddDisclaimer, true
	case code == CodeAnchorPlacementWrong:
		return FixMoveLink, true
	case code == CodeInsufficientLSITerms:
		return FixInjectLSI, true
	case code == CodeInsufficientTrust:
		return FixAddTrust, true
	default:
		return "", false
	}
}

// FixRecord documents one auto-fix attempt. Recorded even when the
// attempt fails, so the AUTO_FIX_ONCE budget is always visible.
type FixRecord struct {
	Type        FixType `json:"type"`
	Description string  `json:"description"`
	Applied     bool    `json:"applied"`
}

// ============================================================================
// Validation Issues & Report
// ============================================================================

// IssueLocation optionally pins an issue to a place in the article.
type IssueLocation struct {
	Section   string `json:"section,omitempty"`
	Paragraph int    `json:"paragraph,omitempty"`
	Sentence  int    `json:"sentence,omitempty"`
}

// ValidationIssue is one finding from a QC pass. Issue lists are generated
// fresh on every pass and never mutated afterwards.
type ValidationIssue struct {
	Severity IssueSeverity  `json:"severity"`
	Category IssueCategory  `json:"category"`
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	Location *IssueLocation `json:"location,omitempty"`
}

// HardBlock reports whether this issue forces BLOCKED status regardless
// of the aggregate score. Word count mismatch blocks only at error
// severity (deviation beyond 20%); at warning severity it just penalizes.
func (i ValidationIssue) HardBlock() bool {
	if hardBlockCodes[i.Code] {
		return true
	}
	return i.Code == CodeWordCountMismatch && i.Severity == SeverityError
}

// ValidationStatus is the shipping decision for a draft.
type ValidationStatus string

const (
	StatusApproved   ValidationStatus = "APPROVED"
	StatusLightEdits ValidationStatus = "LIGHT_EDITS"
	StatusBlocked    ValidationStatus = "BLOCKED"
)

// CategoryBreakdown holds the seven per-category scores (0-100 each).
type CategoryBreakdown struct {
	Preflight  float64 `json:"preflight"`
	Draft      float64 `json:"draft"`
	Anchor     float64 `json:"anchor"`
	Trust      float64 `json:"trust"`
	LSI        float64 `json:"lsi"`
	Fit        float64 `json:"fit"`
	Compliance float64 `json:"compliance"`
}

// Min returns the lowest category score.
func (b CategoryBreakdown) Min() float64 {
	min := b.Preflight
	for _, v := range []float64{b.Draft, b.Anchor, b.Trust, b.LSI, b.Fit, b.Compliance} {
		if v < min {
			min = v
		}
	}
	return min
}

// ValidationReport is the outcome of one QC attempt. One report per
// attempt; the order retains only the latest.
type ValidationReport struct {
	ID                    uuid.UUID         `json:"id,omitempty"`
	OrderRef              string            `json:"order_ref,omitempty"`
	Status                ValidationStatus  `json:"status"`
	Score                 float64           `json:"score"` // weighted aggregate, 0-100
	Breakdown             CategoryBreakdown `json:"breakdown"`
	Issues                []ValidationIssue `json:"issues"`
	AutoFixes             []FixRecord       `json:"auto_fixes,omitempty"`
	AutoFixAttempts       int               `json:"auto_fix_attempts"` // 0 or 1
	HumanSignoffRequired  bool              `json:"human_signoff_required"`
	Recommendations       []string          `json:"recommendations,omitempty"` // ranked, capped at 4
	NextActions           []string          `json:"next_actions,omitempty"`
	QualifyingTrustCount  int               `json:"qualifying_trust_count"`
	CreatedAt             time.Time         `json:"created_at,omitempty"`
}

// HasHardBlock reports whether any hard-block issue is present.
func (r *ValidationReport) HasHardBlock() bool {
	for _, is := range r.Issues {
		if is.HardBlock() {
			return true
		}
	}
	return false
}

// HasCode reports whether any issue carries the given code.
func (r *ValidationReport) HasCode(code string) bool {
	for _, is := range r.Issues {
		if is.Code == code {
			return true
		}
	}
	return false
}
