package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func longText(n int) string {
	return strings.Repeat("Interest rates shape household budgets in visible ways. ", n/56+1)
}

func articleHTML(paragraphs int) string {
	var b strings.Builder
	b.WriteString("<html><head><title>Rates</title></head><body><article>")
	for i := 0; i < paragraphs; i++ {
		fmt.Fprintf(&b, "<p>Paragraph %d: %s</p>", i, longText(300))
	}
	b.WriteString("</article></body></html>")
	return b.String()
}

func TestFetchProxyTier(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(longText(600)))
	}))
	defer proxy.Close()

	f := New(proxy.URL, 500)
	got := f.Fetch(context.Background(), "https://example.com/article", "fallback")
	if len(got) <= 500 {
		t.Errorf("expected long proxy text, got %d chars", len(got))
	}
	if got == "fallback" {
		t.Error("expected proxy tier to win, got fallback")
	}
}

func TestFetchProxyShortBodyRejected(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("short"))
	}))
	defer proxy.Close()

	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(articleHTML(4)))
	}))
	defer page.Close()

	f := New(proxy.URL, 500)
	got := f.Fetch(context.Background(), page.URL+"/article", "fallback")
	if got == "fallback" {
		t.Error("expected readability tier to produce text, got fallback")
	}
	if len(got) < 500 {
		t.Errorf("expected readable text >= 500 chars, got %d", len(got))
	}
}

func TestFetchFallsBackOnFailure(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer proxy.Close()

	// Local extraction yields well under the threshold.
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>fifty characters of content, give or take</p></body></html>"))
	}))
	defer page.Close()

	f := New(proxy.URL, 500)
	fallback := "snippet text from the search result"
	got := f.Fetch(context.Background(), page.URL+"/article", fallback)
	if got != fallback {
		t.Errorf("expected fallback unchanged, got %q", got)
	}
}

func TestFetchFallsBackWhenEverythingUnreachable(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	proxy.Close()
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	page.Close()

	f := New(proxy.URL, 500)
	got := f.Fetch(context.Background(), page.URL+"/article", "fallback")
	if got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestFetchNoProxyConfigured(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(articleHTML(4)))
	}))
	defer page.Close()

	f := New("", 500)
	got := f.Fetch(context.Background(), page.URL+"/article", "fallback")
	if got == "fallback" {
		t.Error("expected readability tier to run without a proxy")
	}
}
