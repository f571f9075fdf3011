package collect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mmcdole/gofeed"

	"newsbrief/internal/config"
)

func TestStripHTML(t *testing.T) {
	got := stripHTML(`<p>Rates <b>rise</b> again.</p>  <p>Markets react.</p>`)
	if got != "Rates rise again. Markets react." {
		t.Errorf("unexpected strip result: %q", got)
	}
}

func TestStripHTMLPlainText(t *testing.T) {
	got := stripHTML("  already plain  ")
	if got != "already plain" {
		t.Errorf("unexpected strip result: %q", got)
	}
}

func TestCandidateFromItem(t *testing.T) {
	item := &gofeed.Item{
		Title:       "  Rates rise  ",
		Link:        "https://example.com/rates",
		Description: "<p>A snippet about <em>rates</em>.</p>",
	}
	c := candidateFromItem(item, "BBC")
	if c == nil {
		t.Fatal("expected candidate")
	}
	if c.Title != "Rates rise" {
		t.Errorf("unexpected title: %q", c.Title)
	}
	if c.Snippet != "A snippet about rates." {
		t.Errorf("unexpected snippet: %q", c.Snippet)
	}
	if c.Source != "BBC" {
		t.Errorf("unexpected source: %q", c.Source)
	}
}

func TestCandidateFromItemRejectsIncomplete(t *testing.T) {
	if c := candidateFromItem(&gofeed.Item{Title: "No link"}, "X"); c != nil {
		t.Error("expected nil for item without link")
	}
	if c := candidateFromItem(&gofeed.Item{Link: "https://a.com"}, "X"); c != nil {
		t.Error("expected nil for item without title")
	}
}

func TestSourceNameFromURL(t *testing.T) {
	cases := map[string]string{
		"https://rss.nytimes.com/services/xml/rss/nyt/World.xml": "Nytimes",
		"https://techcrunch.com/feed/":                           "Techcrunch",
		"https://www.theverge.com/rss/index.xml":                 "Theverge",
	}
	for in, want := range cases {
		if got := sourceNameFromURL(in); got != want {
			t.Errorf("sourceNameFromURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFeedSourceDiscover(t *testing.T) {
	rss := `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Test Feed</title>
<item><title>First</title><link>https://example.com/1</link><description>one</description></item>
<item><title>Second</title><link>https://example.com/2</link><description>two</description></item>
<item><title>Third</title><link>https://example.com/3</link><description>three</description></item>
<item><title>Fourth</title><link>https://example.com/4</link><description>four</description></item>
</channel></rss>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rss))
	}))
	defer srv.Close()

	s := NewFeedSource(srv.URL, "Test", 3)
	candidates, err := s.Discover(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates (bounded), got %d", len(candidates))
	}
	if candidates[0].Title != "First" {
		t.Errorf("expected feed order preserved, got %q first", candidates[0].Title)
	}
}

func TestFeedSourceDiscoverError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	s := NewFeedSource(srv.URL, "Test", 3)
	if _, err := s.Discover(context.Background()); err == nil {
		t.Error("expected error from failing feed")
	}
}

func TestSearchSourceDiscover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Api-Key"); got != "test-key" {
			t.Errorf("expected api key header, got %q", got)
		}
		if got := r.URL.Query().Get("q"); got != "housing" {
			t.Errorf("expected topic query, got %q", got)
		}
		w.Write([]byte(`{"status":"ok","articles":[
			{"url":"https://example.com/a","title":"A","content":"content a"},
			{"url":"https://example.com/b","title":"B","description":"desc b"},
			{"url":"","title":"missing url"},
			{"url":"https://removed.com","title":"[Removed]"}
		]}`))
	}))
	defer srv.Close()

	client := &searchClient{apiKey: "test-key", baseURL: srv.URL, client: srv.Client()}
	s := NewSearchSource(client, "housing", 5)

	candidates, err := s.Discover(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Snippet != "content a" {
		t.Errorf("expected content as snippet, got %q", candidates[0].Snippet)
	}
	if candidates[1].Snippet != "desc b" {
		t.Errorf("expected description fallback snippet, got %q", candidates[1].Snippet)
	}
	if candidates[0].Source != "search:housing" {
		t.Errorf("unexpected source name: %q", candidates[0].Source)
	}
}

func TestSearchSourceDiscoverAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := &searchClient{apiKey: "test-key", baseURL: srv.URL, client: srv.Client()}
	s := NewSearchSource(client, "housing", 5)
	if _, err := s.Discover(context.Background()); err == nil {
		t.Error("expected error from failing search API")
	}
}

func TestFromConfigSkipsUnconfiguredSearch(t *testing.T) {
	cfg := &config.Config{
		Sources: config.Sources{
			Feeds: []config.Feed{{URL: "https://example.com/feed", Name: "Example"}},
			Search: config.SearchConfig{
				Enabled:   true,
				APIKeyEnv: "NEWSBRIEF_TEST_MISSING_KEY",
				Topics:    []string{"tech"},
			},
		},
	}

	sources := FromConfig(cfg)
	if len(sources) != 1 {
		t.Fatalf("expected only the feed source without an API key, got %d", len(sources))
	}
	if sources[0].Name() != "Example" {
		t.Errorf("unexpected source name: %q", sources[0].Name())
	}
}
