package collect

import (
	"context"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
)

// FeedSource discovers candidates from a single RSS/Atom feed.
type FeedSource struct {
	url    string
	name   string
	limit  int
	parser *gofeed.Parser
}

// NewFeedSource creates a feed source. An empty name is derived from
// the feed URL's host.
func NewFeedSource(feedURL, name string, limit int) *FeedSource {
	if name == "" {
		name = sourceNameFromURL(feedURL)
	}
	return &FeedSource{
		url:    feedURL,
		name:   name,
		limit:  limit,
		parser: gofeed.NewParser(),
	}
}

// Name returns the feed's display name.
func (s *FeedSource) Name() string {
	return s.name
}

// Discover returns up to the configured number of entries, in feed order.
func (s *FeedSource) Discover(ctx context.Context) ([]Candidate, error) {
	feed, err := s.parser.ParseURLWithContext(s.url, ctx)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, item := range feed.Items {
		if len(candidates) >= s.limit {
			break
		}
		c := candidateFromItem(item, s.name)
		if c == nil {
			continue
		}
		candidates = append(candidates, *c)
	}
	return candidates, nil
}

func candidateFromItem(item *gofeed.Item, source string) *Candidate {
	link := item.Link
	if link == "" {
		link = item.GUID
	}
	if link == "" {
		return nil
	}

	title := strings.TrimSpace(item.Title)
	if title == "" {
		return nil
	}

	var snippet string
	if item.Content != "" {
		snippet = stripHTML(item.Content)
	} else if item.Description != "" {
		snippet = stripHTML(item.Description)
	}

	return &Candidate{
		Title:   title,
		URL:     link,
		Snippet: snippet,
		Source:  source,
	}
}

func sourceNameFromURL(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil {
		return feedURL
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return feedURL
	}

	for _, prefix := range []string{"www.", "blog.", "rss.", "feeds."} {
		host = strings.TrimPrefix(host, prefix)
	}

	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		name := parts[len(parts)-2]
		return strings.ToUpper(name[:1]) + name[1:]
	}
	return strings.ToUpper(host[:1]) + host[1:]
}
