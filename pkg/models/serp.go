package models

// SerpResult is one ranked result in a SERP snapshot.
type SerpResult struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Position int    `json:"position"`
	Domain   string `json:"domain"`
	Snippet  string `json:"snippet,omitempty"`
}

// SerpSignal is the collector output for one query+locale: the related
// terms mined from the results plus the ranked URLs themselves. The
// contract only requires the term list and locale tag; the rest is
// advisory context for the builder.
type SerpSignal struct {
	Query    string       `json:"query"`
	Locale   string       `json:"locale"`
	LSITerms []string     `json:"lsi_terms"`
	Intents  []string     `json:"intents,omitempty"`
	TopURLs  []SerpResult `json:"top_urls,omitempty"`
}
