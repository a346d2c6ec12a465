package collectors

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/robwestz/mcp-blcwrtr/pkg/models"
)

// baseLSITerms seeds the mock term pool alongside query-derived variants.
var baseLSITerms = []string{
	"guide", "tips", "metod", "verktyg", "process", "analys",
	"exempel", "strategi", "teknik", "resultat", "forskning", "studie",
}

// mockDomains ranks a fixed pool of plausible result domains.
var mockDomains = []string{
	"wikipedia.org", "example.se", "guide.se", "tips.se",
	"blogg.se", "forum.se", "nyheter.se", "akademi.se",
}

// MockCollector generates synthetic SERP signals without network access.
// Output is a pure function of (query, locale): every choice is driven by
// an FNV hash of the inputs, so repeated calls and replays produce the
// same signal byte for byte.
type MockCollector struct {
	logger *zap.Logger
}

// NewMockCollector creates a deterministic mock collector.
func NewMockCollector(logger *zap.Logger) *MockCollector {
	return &MockCollector{logger: logger.Named("mock_collector")}
}

var _ Collector = (*MockCollector)(nil)

func (c *MockCollector) SerpSnapshot(_ context.Context, query, locale string) (*models.SerpSignal, error) {
	seed := hashSeed(query, locale)

	terms := c.lsiTerms(query, seed)
	urls := c.topURLs(query, seed)

	signal := &models.SerpSignal{
		Query:    query,
		Locale:   locale,
		LSITerms: terms,
		Intents:  detectIntents(query),
		TopURLs:  urls,
	}

	c.logger.Debug("generated mock SERP snapshot",
		zap.String("query", query),
		zap.String("locale", locale),
		zap.Int("lsi_terms", len(terms)))
	return signal, nil
}

func (c *MockCollector) lsiTerms(query string, seed uint64) []string {
	seen := map[string]bool{}
	var terms []string
	add := func(t string) {
		if t != "" && !seen[t] {
			seen[t] = true
			terms = append(terms, t)
		}
	}

	for _, word := range strings.Fields(strings.ToLower(query)) {
		if len([]rune(word)) <= 3 {
			continue
		}
		add(word + "guide")
		add(word + "tips")
		add("bästa " + word)
	}

	// Fill from the base pool, rotating on the seed so different queries
	// surface different subsets.
	offset := int(seed % uint64(len(baseLSITerms)))
	for i := 0; i < len(baseLSITerms) && len(terms) < 10; i++ {
		add(baseLSITerms[(offset+i)%len(baseLSITerms)])
	}
	if len(terms) > 10 {
		terms = terms[:10]
	}
	sort.Strings(terms)
	return terms
}

func (c *MockCollector) topURLs(query string, seed uint64) []models.SerpResult {
	slug := strings.Join(strings.Fields(strings.ToLower(query)), "-")
	results := make([]models.SerpResult, 0, 10)
	for i := 0; i < 10; i++ {
		domain := mockDomains[(seed+uint64(i))%uint64(len(mockDomains))]
		kind := "Tips"
		if i < 3 {
			kind = "Guide"
		}
		results = append(results, models.SerpResult{
			URL:      fmt.Sprintf("https://%s/%s-%d", domain, slug, i+1),
			Title:    fmt.Sprintf("%s - %s #%d", query, kind, i+1),
			Position: i + 1,
			Domain:   domain,
			Snippet:  fmt.Sprintf("Läs vår kompletta guide om %s. Experttips och råd för bästa resultat.", query),
		})
	}
	return results
}

// detectIntents maps query phrasing to coarse search intents.
func detectIntents(query string) []string {
	q := strings.ToLower(query)
	var intents []string
	if hasKeyword(q, "köp", "pris", "billig", "erbjudande") {
		intents = append(intents, "transactional")
	}
	if hasKeyword(q, "bästa", "jämför", "recension", "test") {
		intents = append(intents, "commercial")
	}
	if len(intents) == 0 {
		intents = append(intents, "informational")
	}
	return intents
}

// hasKeyword matches whole query tokens. Compounds like "dna-test" are a
// single token and never trip a bare keyword.
func hasKeyword(q string, words ...string) bool {
	for _, tok := range strings.Fields(q) {
		tok = strings.Trim(tok, ".,!?")
		for _, w := range words {
			if tok == w {
				return true
			}
		}
	}
	return false
}

func hashSeed(query, locale string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(query)))
	h.Write([]byte("|"))
	h.Write([]byte(locale))
	return h.Sum64()
}
