package fetch

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// Fetcher resolves a candidate URL to article plain text through an
// ordered waterfall: extraction proxy, then local readability
// extraction, then the caller-supplied fallback. Every tier swallows
// its own errors and falls through, so Fetch always returns a string.
type Fetcher struct {
	proxyBase   string
	minChars    int
	proxyClient *http.Client
	pageClient  *http.Client
}

// New creates a fetcher. proxyHost is the text-extraction proxy; a bare
// host is addressed over HTTPS. minChars is the length a tier must
// produce to be accepted.
func New(proxyHost string, minChars int) *Fetcher {
	proxyBase := proxyHost
	if proxyBase != "" && !strings.Contains(proxyBase, "://") {
		proxyBase = "https://" + proxyBase
	}
	return &Fetcher{
		proxyBase:   strings.TrimRight(proxyBase, "/"),
		minChars:    minChars,
		proxyClient: &http.Client{Timeout: 10 * time.Second},
		pageClient: &http.Client{
			Timeout: 15 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Fetch returns article text for the URL, or fallback when no tier
// produces enough. The result may still be shorter than minChars;
// callers enforce their own usable minimum before spending model calls.
func (f *Fetcher) Fetch(ctx context.Context, articleURL, fallback string) string {
	if text := f.fetchViaProxy(ctx, articleURL); text != "" {
		return text
	}
	if text := f.fetchReadable(ctx, articleURL); text != "" {
		return text
	}
	return fallback
}

// fetchViaProxy asks the extraction proxy for the article text.
// Accepted only on HTTP 200 with a body longer than minChars.
func (f *Fetcher) fetchViaProxy(ctx context.Context, articleURL string) string {
	if f.proxyBase == "" {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, "GET", f.proxyBase+"/"+articleURL, nil)
	if err != nil {
		return ""
	}

	resp, err := f.proxyClient.Do(req)
	if err != nil {
		log.Printf("extraction proxy unreachable for %s: %v", articleURL, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("extraction proxy returned %d for %s", resp.StatusCode, articleURL)
		return ""
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}

	text := strings.TrimSpace(string(body))
	if len(text) > f.minChars {
		return text
	}
	return ""
}

// fetchReadable downloads the raw page and strips boilerplate locally.
func (f *Fetcher) fetchReadable(ctx context.Context, articleURL string) string {
	req, err := http.NewRequestWithContext(ctx, "GET", articleURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", "newsbrief/1.0 (news aggregator)")

	resp, err := f.pageClient.Do(req)
	if err != nil {
		log.Printf("page fetch failed for %s: %v", articleURL, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Printf("page fetch returned %d for %s", resp.StatusCode, articleURL)
		return ""
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}

	parsedURL, _ := url.Parse(articleURL)
	article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		return ""
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) >= f.minChars {
		return text
	}
	return ""
}
