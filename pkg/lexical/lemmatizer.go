package lexical

import (
	"embed"
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"
	"gopkg.in/yaml.v3"
)

// Lemmatizer reduces an inflected word to its canonical lemma. The rule
// tables are language-specific static data, so the window analyzer takes
// the strategy as a parameter instead of hardwiring one morphology.
type Lemmatizer interface {
	// Language returns the BCP 47 primary tag of the rule table.
	Language() string

	// Lemma returns the canonical form of a lowercase word. The mapping is
	// deterministic: identical input always yields the identical lemma.
	Lemma(word string) string
}

//go:embed data/sv.yaml data/en.yaml
var ruleFS embed.FS

// suffixRule strips one inflectional suffix when the remaining stem is
// long enough. Rules are applied in table order, first match wins.
type suffixRule struct {
	Strip   string `yaml:"strip"`
	MinStem int    `yaml:"min_stem"`
	Append  string `yaml:"append,omitempty"`
}

type ruleTable struct {
	Language   string            `yaml:"language"`
	Exceptions map[string]string `yaml:"exceptions"`
	Suffixes   []suffixRule      `yaml:"suffixes"`
}

// RuleLemmatizer is a deterministic suffix-stripping lemmatizer driven by
// an embedded rule table: exception lookup first, then ordered suffix
// stripping, identity otherwise.
type RuleLemmatizer struct {
	table ruleTable
	// singularize runs before suffix stripping; wired for English where
	// plural morphology is irregular enough to deserve a dedicated pass.
	singularize bool
}

var _ Lemmatizer = (*RuleLemmatizer)(nil)

func newRuleLemmatizer(file string, singularize bool) (*RuleLemmatizer, error) {
	raw, err := ruleFS.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read lemma rule table %s: %w", file, err)
	}
	var table ruleTable
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("failed to parse lemma rule table %s: %w", file, err)
	}
	return &RuleLemmatizer{table: table, singularize: singularize}, nil
}

// Swedish returns the Swedish rule lemmatizer.
func Swedish() (*RuleLemmatizer, error) {
	return newRuleLemmatizer("data/sv.yaml", false)
}

// English returns the English rule lemmatizer.
func English() (*RuleLemmatizer, error) {
	return newRuleLemmatizer("data/en.yaml", true)
}

// ForLocale picks the lemmatizer for a locale tag like "sv-SE" or "en-GB".
// Defaults to Swedish, the corpus language of the publisher network.
func ForLocale(locale string) (*RuleLemmatizer, error) {
	if strings.HasPrefix(strings.ToLower(locale), "en") {
		return English()
	}
	return Swedish()
}

// Language returns the table's language tag.
func (l *RuleLemmatizer) Language() string {
	return l.table.Language
}

// Lemma implements Lemmatizer.
func (l *RuleLemmatizer) Lemma(word string) string {
	w := strings.ToLower(word)

	if lemma, ok := l.table.Exceptions[w]; ok {
		return lemma
	}

	if l.singularize {
		w = inflection.Singular(w)
		if lemma, ok := l.table.Exceptions[w]; ok {
			return lemma
		}
	}

	for _, rule := range l.table.Suffixes {
		if !strings.HasSuffix(w, rule.Strip) {
			continue
		}
		stem := w[:len(w)-len(rule.Strip)]
		if len([]rune(stem)) < rule.MinStem {
			continue
		}
		return stem + rule.Append
	}
	return w
}
