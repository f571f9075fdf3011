package pipeline

import (
	"context"
	"fmt"
	"log"

	"newsbrief/internal/collect"
	"newsbrief/internal/config"
	"newsbrief/internal/database"
	"newsbrief/internal/fetch"
	"newsbrief/internal/impact"
	"newsbrief/internal/llm"
)

const extractSystemPrompt = `You are a personal intelligence officer.
1. Analyze the text and extract the most critical facts, figures, and quotes.
2. Generate a "Key Intelligence" summary of 4-6 detailed bullet points.
   Each bullet must be substantive and self-contained, with specific
   numbers, dates, names, and locations.
3. Identify 3-5 relevant topics or tags (for example Technology, Real Estate, Geopolitics).

Respond with plain text only, no markdown decoration, in exactly this form:
SUMMARY:
- <detail 1>
- <detail 2>
TOPICS: <topic 1>, <topic 2>, <topic 3>`

// maxArticleChars bounds the article text embedded in the extraction
// prompt.
const maxArticleChars = 4000

// ContentFetcher is the fetch waterfall as the pipeline sees it.
type ContentFetcher interface {
	Fetch(ctx context.Context, url, fallback string) string
}

// Result holds the counters of one ingestion run.
type Result struct {
	Discovered     int
	NewArticles    int
	Duplicates     int
	SkippedShort   int
	SkippedModel   int
	ImpactsWritten int
	Sources        map[string]int
}

// Pipeline drives one ingestion run: discover candidates, dedup against
// the store, fetch and extract new articles, and backfill missing
// persona impacts. It is the sole writer of both tables.
type Pipeline struct {
	cfg     *config.Config
	db      *database.DB
	sources []collect.Source
	fetcher ContentFetcher
	model   llm.Querier
	engine  *impact.Engine
}

// New creates a pipeline wired to the real sources, fetcher, and model
// endpoint from config.
func New(cfg *config.Config, db *database.DB) *Pipeline {
	model := llm.NewClient(cfg.Model.URL, cfg.Model.Name, cfg.Model.Temperature, cfg.Model.NumPredict)
	return &Pipeline{
		cfg:     cfg,
		db:      db,
		sources: collect.FromConfig(cfg),
		fetcher: fetch.New(cfg.Fetch.ProxyHost, cfg.Fetch.MinArticleChars),
		model:   model,
		engine:  impact.NewEngine(model),
	}
}

// Run executes one sequential ingestion pass. Source and candidate
// failures are logged and skipped; only store failures abort the run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	today := database.Today()
	r := &Result{Sources: make(map[string]int)}

	log.Printf("starting ingestion for %s (%d sources, %d personas)",
		today, len(p.sources), len(p.cfg.Personas))

	for _, src := range p.sources {
		candidates, err := src.Discover(ctx)
		if err != nil {
			log.Printf("source %s failed, skipping: %v", src.Name(), err)
			continue
		}
		log.Printf("source %s: %d candidates", src.Name(), len(candidates))
		r.Discovered += len(candidates)

		for _, c := range candidates {
			if err := p.processCandidate(ctx, c, today, r); err != nil {
				return r, fmt.Errorf("processing %s: %w", c.URL, err)
			}
		}
	}

	log.Printf("ingestion complete: %d discovered, %d new, %d duplicates, %d too short, %d impacts written",
		r.Discovered, r.NewArticles, r.Duplicates, r.SkippedShort, r.ImpactsWritten)
	return r, nil
}

// processCandidate moves one candidate through the state machine. A
// returned error is a store failure and aborts the run; everything else
// degrades to a logged skip.
func (p *Pipeline) processCandidate(ctx context.Context, c collect.Candidate, today string, r *Result) error {
	exists, err := p.db.HasArticle(c.URL)
	if err != nil {
		return err
	}

	var summary string
	if exists {
		// Already stored, possibly from a partial earlier run. The
		// stored summary feeds any persona backfill below.
		r.Duplicates++
		a, err := p.db.GetArticle(c.URL)
		if err != nil {
			return err
		}
		summary = a.Summary
	} else {
		text := p.fetcher.Fetch(ctx, c.URL, c.Snippet)
		if len(text) < p.cfg.Fetch.MinUsableChars {
			log.Printf("skipping %s: content too short (%d chars)", c.URL, len(text))
			r.SkippedShort++
			return nil
		}
		if len(text) > maxArticleChars {
			text = text[:maxArticleChars]
		}

		raw := p.model.Query(ctx, extractSystemPrompt, "News Text:\n"+text)
		if raw == "" {
			// Model unavailable: skip before anything is written so a
			// later run retries this candidate from scratch.
			log.Printf("skipping %s: no model output for extraction", c.URL)
			r.SkippedModel++
			return nil
		}

		ext := llm.ParseExtraction(raw)
		id, err := p.db.InsertArticle(c.Title, c.URL, ext.Summary, ext.Topics, today)
		if err != nil {
			return err
		}
		if id > 0 {
			log.Printf("new article: %s", c.Title)
			r.NewArticles++
			r.Sources[c.Source]++
		}
		summary = ext.Summary
	}

	missing, err := p.db.MissingPersonas(c.URL, p.cfg.PersonaNames())
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		return nil
	}

	log.Printf("scoring %s for personas %v", c.URL, missing)
	assessments := p.engine.Evaluate(ctx, summary, p.personasNamed(missing))

	// Commit per impact row: a crash mid-loop loses at most the write
	// in flight, and the next run backfills only what is still missing.
	for _, name := range missing {
		a, ok := assessments[name]
		if !ok {
			continue
		}
		id, err := p.db.InsertImpact(c.URL, name, a.Score, a.Reason)
		if err != nil {
			return err
		}
		if id > 0 {
			r.ImpactsWritten++
		}
	}
	return nil
}

// Cleanup removes articles past the retention window, impacts included.
// Safe to run on every invocation.
func (p *Pipeline) Cleanup() (int64, error) {
	cutoff := database.CutoffDate(p.cfg.Retention.Days)
	deleted, err := p.db.DeleteArticlesBefore(cutoff)
	if err != nil {
		return 0, fmt.Errorf("retention sweep: %w", err)
	}
	if deleted > 0 {
		log.Printf("retention sweep removed %d articles older than %s", deleted, cutoff)
	}
	return deleted, nil
}

// personasNamed returns the configured personas with the given names,
// keeping config order.
func (p *Pipeline) personasNamed(names []string) []config.Persona {
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}
	var personas []config.Persona
	for _, persona := range p.cfg.Personas {
		if _, ok := want[persona.Name]; ok {
			personas = append(personas, persona)
		}
	}
	return personas
}
