package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const searchAPIBaseURL = "https://newsapi.org/v2/everything"

// searchClient is the shared HTTP client behind all search sources.
type searchClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func newSearchClient(apiKeyEnv string) *searchClient {
	return &searchClient{
		apiKey:  os.Getenv(apiKeyEnv),
		baseURL: searchAPIBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// IsConfigured returns whether the API key is available.
func (c *searchClient) IsConfigured() bool {
	return c.apiKey != ""
}

// SearchSource discovers candidates for a single search topic.
type SearchSource struct {
	client *searchClient
	topic  string
	limit  int
}

// NewSearchSource creates a search source for one topic.
func NewSearchSource(client *searchClient, topic string, limit int) *SearchSource {
	return &SearchSource{client: client, topic: topic, limit: limit}
}

// Name returns a display name for the topic query.
func (s *SearchSource) Name() string {
	return "search:" + s.topic
}

// Discover queries the search API for the topic and returns up to the
// configured number of results in relevance order.
func (s *SearchSource) Discover(ctx context.Context) ([]Candidate, error) {
	params := url.Values{
		"q":        {s.topic},
		"language": {"en"},
		"pageSize": {fmt.Sprintf("%d", s.limit)},
		"sortBy":   {"relevancy"},
	}

	req, err := http.NewRequestWithContext(ctx, "GET", s.client.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", s.client.apiKey)

	resp, err := s.client.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned %d", resp.StatusCode)
	}

	var result struct {
		Status   string `json:"status"`
		Articles []struct {
			URL         string `json:"url"`
			Title       string `json:"title"`
			Content     string `json:"content"`
			Description string `json:"description"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}
	if result.Status != "ok" {
		return nil, fmt.Errorf("search API status %q", result.Status)
	}

	var candidates []Candidate
	for _, a := range result.Articles {
		if len(candidates) >= s.limit {
			break
		}
		if a.URL == "" || a.Title == "" {
			continue
		}
		if a.Title == "[Removed]" {
			continue
		}

		snippet := a.Content
		if snippet == "" {
			snippet = a.Description
		}

		candidates = append(candidates, Candidate{
			Title:   strings.TrimSpace(a.Title),
			URL:     a.URL,
			Snippet: strings.TrimSpace(snippet),
			Source:  s.Name(),
		})
	}
	return candidates, nil
}
