package services

import (
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/robwestz/mcp-blcwrtr/pkg/models"
)

// lexiconFile mirrors data/lsi_lexicon.yaml: per-industry term pools with
// semantic categories, detection keywords, and implied compliance tags.
type lexiconFile struct {
	Industries map[string][]models.LSITerm `yaml:"industries"`
	Detection  map[string][]string         `yaml:"detection"`
	Compliance map[string]string           `yaml:"compliance"`
}

var lexicon lexiconFile

func init() {
	raw, err := refDataFS.ReadFile("data/lsi_lexicon.yaml")
	if err != nil {
		panic("services: missing embedded lsi_lexicon.yaml: " + err.Error())
	}
	if err := yaml.Unmarshal(raw, &lexicon); err != nil {
		panic("services: malformed lsi_lexicon.yaml: " + err.Error())
	}
}

// IndustryGeneral is the fallback pool when no detection keyword matches.
const IndustryGeneral = "general"

// DetectIndustry maps free text (domains, topics, URLs) onto a lexicon
// industry. The industry with the most keyword hits wins; ties break on
// industry name so the result is stable.
func DetectIndustry(texts ...string) string {
	joined := strings.ToLower(strings.Join(texts, " "))

	names := make([]string, 0, len(lexicon.Detection))
	for name := range lexicon.Detection {
		names = append(names, name)
	}
	sort.Strings(names)

	best, bestHits := IndustryGeneral, 0
	for _, name := range names {
		hits := 0
		for _, kw := range lexicon.Detection[name] {
			if strings.Contains(joined, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = name, hits
		}
	}
	return best
}

// IndustryTerms returns the lexicon pool for an industry, nil if unknown.
func IndustryTerms(industry string) []models.LSITerm {
	return lexicon.Industries[industry]
}

// ImpliedComplianceTag returns the compliance tag a target industry brings
// with it regardless of what the order declares.
func ImpliedComplianceTag(industry string) (string, bool) {
	tag, ok := lexicon.Compliance[industry]
	return tag, ok
}
