package lexical

import (
	"regexp"
	"strings"
)

// ============================================================================
// Article structure
// ============================================================================

// Link is one [[anchor]] style link occurrence in the article body.
type Link struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Paragraph is one non-empty line of body prose inside a section.
type Paragraph struct {
	Text       string   `json:"text"`
	LineNumber int      `json:"line_number"`
	HasLink    bool     `json:"has_link"`
	Sentences  []string `json:"sentences"`
}

// Section is one ##-headed block of the article.
type Section struct {
	Level      int         `json:"level"`
	Title      string      `json:"title"`
	Paragraphs []Paragraph `json:"paragraphs"`
	LineNumber int         `json:"line_number"`
}

// Article is the parsed structural view of a markdown draft.
type Article struct {
	Sections  []Section `json:"sections"`
	Links     []Link    `json:"links"`
	WordCount int       `json:"word_count"`
	FullText  string    `json:"full_text"`
}

var (
	headerRe = regexp.MustCompile(`^#+`)
	linkRe   = regexp.MustCompile(`\[\[(.*?)\]\]`)
)

// ParseArticle parses a markdown draft into sections, paragraphs and links.
// Drafts use ## headings and [[anchor text]] link markers; prose before the
// first heading is ignored for structure but still counts toward words and
// link extraction.
func ParseArticle(text string) *Article {
	lines := strings.Split(text, "\n")

	var sections []Section
	var current *Section

	for i, line := range lines {
		if strings.HasPrefix(line, "##") {
			if current != nil {
				sections = append(sections, *current)
			}
			level := len(headerRe.FindString(line))
			title := strings.TrimSpace(strings.TrimLeft(line, "#"))
			current = &Section{
				Level:      level,
				Title:      title,
				LineNumber: i,
			}
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || current == nil {
			continue
		}
		current.Paragraphs = append(current.Paragraphs, Paragraph{
			Text:       trimmed,
			LineNumber: i,
			HasLink:    linkRe.MatchString(trimmed),
			Sentences:  SplitSentences(trimmed),
		})
	}
	if current != nil {
		sections = append(sections, *current)
	}

	return &Article{
		Sections:  sections,
		Links:     extractLinks(text),
		WordCount: CountWords(stripLinkMarkers(text)),
		FullText:  text,
	}
}

func extractLinks(text string) []Link {
	var links []Link
	for _, m := range linkRe.FindAllStringSubmatchIndex(text, -1) {
		links = append(links, Link{
			Text:  text[m[2]:m[3]],
			Start: m[0],
			End:   m[1],
		})
	}
	return links
}

func stripLinkMarkers(text string) string {
	return strings.NewReplacer("[[", "", "]]", "").Replace(text)
}

// Sentences flattens all paragraph sentences in document order.
func (a *Article) Sentences() []string {
	var out []string
	for _, sec := range a.Sections {
		for _, p := range sec.Paragraphs {
			out = append(out, p.Sentences...)
		}
	}
	return out
}

// HasLinkText reports whether any [[...]] link carries exactly text,
// case-insensitively.
func (a *Article) HasLinkText(text string) bool {
	for _, l := range a.Links {
		if strings.EqualFold(l.Text, text) {
			return true
		}
	}
	return false
}
