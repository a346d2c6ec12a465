package lexical

import (
	"reflect"
	"testing"
)

const sampleDraft = `## Inledning

Släktforskning har blivit en populär hobby. Allt fler använder digitala verktyg.

## Metoder och källor

Forskning kräver bra källor och en tydlig metod. Många hittar sin avkoppling i [[casino utan svensk licens]] mellan långa pass i arkiven. En paus ger bättre fokus och resultat.

## Sammanfattning

Planera din tid och använd rätt verktyg.
`

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "basic punctuation",
			text: "Första meningen. Andra meningen! Tredje?",
			want: []string{"Första meningen", "Andra meningen", "Tredje"},
		},
		{
			name: "empty text",
			text: "",
			want: []string{},
		},
		{
			name: "trailing whitespace",
			text: "En mening.   ",
			want: []string{"En mening"},
		},
		{
			name: "urls stay inside their sentence",
			text: "Enligt https://riksarkivet.se/a och https://scb.se/b ökar intresset. Nästa mening.",
			want: []string{"Enligt https://riksarkivet.se/a och https://scb.se/b ökar intresset", "Nästa mening"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSentences() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWindowSpansTrustCitations(t *testing.T) {
	text := "Du börjar med arkiven. " +
		"Enligt https://riksarkivet.se/a och https://scb.se/b finns källorna digitalt. " +
		"Många väljer dna-test för släktforskning som nästa steg. " +
		"Forskning och metod ger resultat. " +
		"Varje generation lämnar dokumentation."

	sentences := SplitSentences(text)
	if len(sentences) != 5 {
		t.Fatalf("SplitSentences() returned %d sentences, want 5: %v", len(sentences), sentences)
	}

	pos, ok := LocateSentence(sentences, "dna-test för släktforskning")
	if !ok || pos != 2 {
		t.Fatalf("LocateSentence() = (%d, %v), want (2, true)", pos, ok)
	}

	window := Window(sentences, pos, 2)
	if len(window) != 5 {
		t.Errorf("Window() covers %d sentences, want all 5: %v", len(window), window)
	}
}

func TestParseArticle(t *testing.T) {
	article := ParseArticle(sampleDraft)

	if len(article.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(article.Sections))
	}
	if article.Sections[1].Title != "Metoder och källor" {
		t.Errorf("unexpected section title: %q", article.Sections[1].Title)
	}
	if len(article.Links) != 1 || article.Links[0].Text != "casino utan svensk licens" {
		t.Errorf("unexpected links: %+v", article.Links)
	}
	if !article.Sections[1].Paragraphs[0].HasLink {
		t.Error("paragraph containing [[...]] should be marked HasLink")
	}
	if article.WordCount == 0 {
		t.Error("word count should be non-zero")
	}
	if !article.HasLinkText("Casino Utan Svensk Licens") {
		t.Error("HasLinkText should match case-insensitively")
	}
}

func TestLocate(t *testing.T) {
	if _, ok := Locate(sampleDraft, "casino utan svensk licens"); !ok {
		t.Error("anchor should be located")
	}
	if _, ok := Locate(sampleDraft, "CASINO UTAN SVENSK LICENS"); !ok {
		t.Error("locate should be case-insensitive")
	}
	if _, ok := Locate(sampleDraft, "saknad ankartext"); ok {
		t.Error("missing anchor should signal not found, not panic or guess")
	}
}

func TestWindow(t *testing.T) {
	sentences := []string{"s0", "s1", "s2", "s3", "s4", "s5"}

	tests := []struct {
		name   string
		pos    int
		radius int
		want   []string
	}{
		{name: "middle", pos: 3, radius: 2, want: []string{"s1", "s2", "s3", "s4", "s5"}},
		{name: "clamped start", pos: 0, radius: 2, want: []string{"s0", "s1", "s2"}},
		{name: "clamped end", pos: 5, radius: 2, want: []string{"s3", "s4", "s5"}},
		{name: "zero radius", pos: 2, radius: 0, want: []string{"s2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Window(sentences, tt.pos, tt.radius)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Window(%d, %d) = %v, want %v", tt.pos, tt.radius, got, tt.want)
			}
		})
	}
}

func TestSwedishLemmatizer(t *testing.T) {
	lem, err := Swedish()
	if err != nil {
		t.Fatalf("Swedish() failed: %v", err)
	}

	tests := []struct {
		word string
		want string
	}{
		{"metoder", "metod"},
		{"metoderna", "metod"},
		{"källor", "källa"},
		{"verktygen", "verktyg"},
		{"guider", "guide"},
		{"bästa", "bra"},
		{"arkiv", "arkiv"}, // already canonical
	}

	for _, tt := range tests {
		if got := lem.Lemma(tt.word); got != tt.want {
			t.Errorf("Lemma(%q) = %q, want %q", tt.word, got, tt.want)
		}
	}

	// Determinism: same input, same output, every time.
	for i := 0; i < 3; i++ {
		if lem.Lemma("metoderna") != "metod" {
			t.Fatal("lemmatization must be deterministic")
		}
	}
}

func TestEnglishLemmatizer(t *testing.T) {
	lem, err := English()
	if err != nil {
		t.Fatalf("English() failed: %v", err)
	}

	tests := []struct {
		word string
		want string
	}{
		{"methods", "method"},
		{"strategies", "strategy"},
		{"researching", "research"},
		{"best", "good"},
	}

	for _, tt := range tests {
		if got := lem.Lemma(tt.word); got != tt.want {
			t.Errorf("Lemma(%q) = %q, want %q", tt.word, got, tt.want)
		}
	}
}

func TestExtractLemmas_ProperNouns(t *testing.T) {
	lem, err := Swedish()
	if err != nil {
		t.Fatalf("Swedish() failed: %v", err)
	}

	// "Betsson" mid-sentence is a proper noun and must keep its surface
	// form instead of losing its suffix to the rule table.
	counts := ExtractLemmas([]string{"Spelare besöker Betsson varje dag"}, lem)
	if counts["betsson"] != 1 {
		t.Errorf("proper noun should survive verbatim, got %v", counts)
	}
}

func TestMatchTerms(t *testing.T) {
	lem, err := Swedish()
	if err != nil {
		t.Fatalf("Swedish() failed: %v", err)
	}

	window := []string{
		"Forskning kräver bra källor och en tydlig metod",
		"Många använder digitala verktyg i sina studier",
		"En paus ger bättre fokus",
	}

	found := MatchTerms(window, []string{"metod", "källa", "verktyg", "studie", "paus", "casino"}, lem)

	for _, term := range []string{"metod", "källa", "verktyg", "studie", "paus"} {
		if found[term] == 0 {
			t.Errorf("term %q should be found in window, got %v", term, found)
		}
	}
	if _, ok := found["casino"]; ok {
		t.Error("casino is not in the window and must not be matched")
	}
}
