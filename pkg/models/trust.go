package models

// ============================================================================
// Trust Tiers
// ============================================================================

// TrustTier classifies the authority of a cited domain. T1 is highest
// (government sources), T4 lowest. TierUnknown marks a domain absent from
// the registry snapshot.
type TrustTier string

const (
	TierT1      TrustTier = "T1"
	TierT2      TrustTier = "T2"
	TierT3      TrustTier = "T3"
	TierT4      TrustTier = "T4"
	TierUnknown TrustTier = "UNKNOWN"
)

// tierRank orders tiers for qualification checks; lower rank is better.
var tierRank = map[TrustTier]int{
	TierT1:      1,
	TierT2:      2,
	TierT3:      3,
	TierT4:      4,
	TierUnknown: 5,
}

// AtLeast reports whether the tier is as authoritative as min.
func (t TrustTier) AtLeast(min TrustTier) bool {
	r, ok := tierRank[t]
	if !ok {
		return false
	}
	return r <= tierRank[min]
}

// ============================================================================
// Trust Registry
// ============================================================================

// TrustRegistryEntry is one row of the versioned trust registry.
// Read-only reference data: every evaluation receives its registry snapshot
// as a parameter so replays are deterministic and tests can use synthetic
// registries.
type TrustRegistryEntry struct {
	Domain     string    `json:"domain"`
	Tier       TrustTier `json:"tier"`
	Competitor bool      `json:"competitor"`
	Category   string    `json:"category,omitempty"` // "government", "news", "academic", ...
	Industry   string    `json:"industry,omitempty"` // registered industry, implies compliance tags
}

// TrustRegistry is a snapshot of the registry at evaluation time.
type TrustRegistry struct {
	Version string               `json:"version"`
	Entries []TrustRegistryEntry `json:"entries"`
}

// Lookup finds the entry for a domain, nil if unregistered.
func (r *TrustRegistry) Lookup(domain string) *TrustRegistryEntry {
	for i := range r.Entries {
		if r.Entries[i].Domain == domain {
			return &r.Entries[i]
		}
	}
	return nil
}

// Competitors returns the competitor-flagged entries of the snapshot.
func (r *TrustRegistry) Competitors() []TrustRegistryEntry {
	var out []TrustRegistryEntry
	for _, e := range r.Entries {
		if e.Competitor {
			out = append(out, e)
		}
	}
	return out
}

// ============================================================================
// Publisher Profile
// ============================================================================

// PublisherVoice describes the publisher's declared editorial voice.
type PublisherVoice struct {
	Tone        string `json:"tone"`        // "informativ", "formal", "casual", ...
	Perspective string `json:"perspective"` // "du", "ni", "third_person"
}

// PublisherProfile is the per-publisher editorial profile the fit scoring
// compares drafts against. Fetched from the profile store; a missing
// profile is a DEPENDENCY_UNAVAILABLE condition, never a silent default.
type PublisherProfile struct {
	Domain   string         `json:"domain"`
	Voice    PublisherVoice `json:"voice"`
	Topics   []string       `json:"topics,omitempty"`
	Examples []string       `json:"examples,omitempty"`
}
