package notify

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"newsbrief/internal/config"
	"newsbrief/internal/database"
)

const pushoverEndpoint = "https://api.pushover.net/1/messages.json"

// Notifier pushes a per-run summary to Pushover. It only reads the
// store; when nothing was ingested today the push is suppressed.
type Notifier struct {
	db       *database.DB
	cfg      config.Pushover
	personas []string
	endpoint string
	client   *http.Client
}

// New creates a notifier for the configured personas.
func New(db *database.DB, cfg *config.Config) *Notifier {
	return &Notifier{
		db:       db,
		cfg:      cfg.Pushover,
		personas: cfg.PersonaNames(),
		endpoint: pushoverEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Send pushes today's summary. No articles today means no notification.
func (n *Notifier) Send(ctx context.Context) error {
	stats, err := n.db.GetDailyStats(database.Today(), n.personas)
	if err != nil {
		return fmt.Errorf("reading daily stats: %w", err)
	}

	if stats.TotalArticles == 0 {
		log.Println("no articles ingested today, skipping notification")
		return nil
	}

	token := os.Getenv(n.cfg.TokenEnv)
	user := os.Getenv(n.cfg.UserEnv)
	if token == "" || user == "" {
		return fmt.Errorf("pushover credentials not set (%s, %s)", n.cfg.TokenEnv, n.cfg.UserEnv)
	}

	title, priority := titleFor(stats)
	form := url.Values{
		"token":     {token},
		"user":      {user},
		"title":     {title},
		"message":   {messageFor(stats)},
		"url":       {n.cfg.DashboardURL},
		"url_title": {"Open Dashboard"},
		"priority":  {fmt.Sprintf("%d", priority)},
	}

	req, err := http.NewRequestWithContext(ctx, "POST", n.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("pushover returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	log.Printf("notification sent: %s", title)
	return nil
}

func titleFor(stats *database.DailyStats) (string, int) {
	if stats.TotalCritical > 0 {
		return fmt.Sprintf("%d Critical Updates", stats.TotalCritical), 1
	}
	return "Morning Briefing", 0
}

func messageFor(stats *database.DailyStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Morning briefing ready.\n%d new articles\n\n", stats.TotalArticles)
	for _, p := range stats.Personas {
		if p.Critical > 0 {
			fmt.Fprintf(&b, "%s: %d critical\n", p.Persona, p.Critical)
		} else {
			fmt.Fprintf(&b, "%s: all clear\n", p.Persona)
		}
	}
	return b.String()
}
