package collect

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"newsbrief/internal/config"
)

// Candidate is one discovered article candidate: enough to dedup, fetch,
// and fall back on the snippet when fetching fails.
type Candidate struct {
	Title   string
	URL     string
	Snippet string
	Source  string
}

// Source discovers a bounded list of article candidates. One Source per
// configured feed or search topic, so a failing source can be skipped
// without touching the others.
type Source interface {
	Name() string
	Discover(ctx context.Context) ([]Candidate, error)
}

// FromConfig builds the source list in configured order: feeds first,
// then one search source per topic when the search API is enabled.
func FromConfig(cfg *config.Config) []Source {
	limit := cfg.Sources.MaxPerSource
	if limit <= 0 {
		limit = 3
	}

	var sources []Source
	for _, f := range cfg.Sources.Feeds {
		sources = append(sources, NewFeedSource(f.URL, f.Name, limit))
	}

	if cfg.Sources.Search.Enabled {
		client := newSearchClient(cfg.Sources.Search.APIKeyEnv)
		if client.IsConfigured() {
			for _, topic := range cfg.Sources.Search.Topics {
				sources = append(sources, NewSearchSource(client, topic, limit))
			}
		}
	}

	return sources
}

// stripHTML reduces feed markup to plain text with normalized whitespace.
func stripHTML(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
