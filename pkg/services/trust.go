package services

import (
	"embed"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/robwestz/mcp-blcwrtr/pkg/models"
)

//go:embed data/disclaimers.yaml data/lsi_lexicon.yaml
var refDataFS embed.FS

// ============================================================================
// Disclaimer reference data
// ============================================================================

type disclaimerSet struct {
	Phrases   []string `yaml:"phrases"`
	Canonical string   `yaml:"canonical"`
}

var disclaimers map[string]disclaimerSet

func init() {
	raw, err := refDataFS.ReadFile("data/disclaimers.yaml")
	if err != nil {
		panic(fmt.Sprintf("embedded disclaimers.yaml missing: %v", err))
	}
	if err := yaml.Unmarshal(raw, &disclaimers); err != nil {
		panic(fmt.Sprintf("embedded disclaimers.yaml invalid: %v", err))
	}
}

// CanonicalDisclaimer returns the auto-fix text for a compliance tag.
func CanonicalDisclaimer(tag string) (string, bool) {
	set, ok := disclaimers[strings.ToLower(tag)]
	return set.Canonical, ok
}

// KnownComplianceTags returns the tags with a registered phrase set,
// sorted for stable iteration.
func KnownComplianceTags() []string {
	tags := make([]string, 0, len(disclaimers))
	for tag := range disclaimers {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// ============================================================================
// Trust & Compliance Checker
// ============================================================================

// ClassifiedLink is the registry verdict for one cited URL.
type ClassifiedLink struct {
	URL        string           `json:"url"`
	Domain     string           `json:"domain"`
	Tier       models.TrustTier `json:"tier"`
	Competitor bool             `json:"competitor"`
}

var urlRe = regexp.MustCompile(`https?://[^\s\)\]>"']+`)

// ExtractURLs finds all http(s) URLs in article text. Sentence-final
// punctuation after a URL belongs to the prose, not the address.
func ExtractURLs(text string) []string {
	matches := urlRe.FindAllString(text, -1)
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		urls = append(urls, strings.TrimRight(m, ".,;:"))
	}
	return urls
}

// ClassifyLinks matches cited URLs against a registry snapshot. Unknown
// domains come back as TierUnknown; the registry snapshot is always passed
// in so evaluation replays deterministically.
func ClassifyLinks(links []string, registry *models.TrustRegistry) []ClassifiedLink {
	out := make([]ClassifiedLink, 0, len(links))
	for _, raw := range links {
		domain := hostOf(raw)
		cl := ClassifiedLink{URL: raw, Domain: domain, Tier: models.TierUnknown}
		if entry := lookupDomain(registry, domain); entry != nil {
			cl.Tier = entry.Tier
			cl.Competitor = entry.Competitor
		}
		out = append(out, cl)
	}
	return out
}

// CountQualifyingTrustSignals counts non-competitor links at or above
// minTier. Domain mentions without a URL are counted by MentionedDomains.
func CountQualifyingTrustSignals(classified []ClassifiedLink, minTier models.TrustTier) int {
	count := 0
	for _, cl := range classified {
		if cl.Competitor {
			continue
		}
		if cl.Tier.AtLeast(minTier) {
			count++
		}
	}
	return count
}

// MentionedDomains returns the registry domains cited bare in the text
// (e.g. "enligt riksarkivet.se"), excluding competitors.
func MentionedDomains(text string, registry *models.TrustRegistry) []models.TrustRegistryEntry {
	lower := strings.ToLower(text)
	var out []models.TrustRegistryEntry
	for _, e := range registry.Entries {
		if e.Competitor {
			continue
		}
		if strings.Contains(lower, strings.ToLower(e.Domain)) {
			out = append(out, e)
		}
	}
	return out
}

// FindCompetitorHits scans the whole article, links and bare mentions
// alike, against the competitor entries of the registry. Any hit is the
// ERR_TRUST_COMPETITOR hard block; there is no auto-fix for it.
func FindCompetitorHits(text string, registry *models.TrustRegistry) []string {
	lower := strings.ToLower(text)
	var hits []string
	for _, e := range registry.Competitors() {
		if strings.Contains(lower, strings.ToLower(e.Domain)) {
			hits = append(hits, e.Domain)
			continue
		}
		// Bare brand mention: the domain label without its TLD.
		if label := domainLabel(e.Domain); label != "" && containsWord(lower, label) {
			hits = append(hits, e.Domain)
		}
	}
	sort.Strings(hits)
	return hits
}

// CheckCompliance verifies the required disclaimer tags against the
// per-tag canonical phrase sets. Returns the missing tags, sorted.
// A required tag with no registered phrase set counts as missing: better
// to block than to wave through an unknown regulated topic.
func CheckCompliance(text string, requiredTags []string) []string {
	lower := strings.ToLower(text)
	var missing []string
	for _, tag := range requiredTags {
		set, ok := disclaimers[strings.ToLower(tag)]
		if !ok {
			missing = append(missing, tag)
			continue
		}
		found := false
		for _, phrase := range set.Phrases {
			if strings.Contains(lower, strings.ToLower(phrase)) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, tag)
		}
	}
	sort.Strings(missing)
	return missing
}

// ============================================================================
// helpers
// ============================================================================

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(raw)
	}
	return strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
}

func lookupDomain(registry *models.TrustRegistry, domain string) *models.TrustRegistryEntry {
	for i := range registry.Entries {
		entryDomain := strings.ToLower(registry.Entries[i].Domain)
		if domain == entryDomain || strings.HasSuffix(domain, "."+entryDomain) {
			return &registry.Entries[i]
		}
	}
	return nil
}

func domainLabel(domain string) string {
	if i := strings.IndexByte(domain, '.'); i > 0 {
		return strings.ToLower(domain[:i])
	}
	return strings.ToLower(domain)
}

func containsWord(lower, word string) bool {
	re, err := regexp.Compile(`(^|[^\p{L}])` + regexp.QuoteMeta(word) + `($|[^\p{L}])`)
	if err != nil {
		return strings.Contains(lower, word)
	}
	return re.MatchString(lower)
}
