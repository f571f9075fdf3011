package impact

import (
	"context"
	"fmt"
	"log"

	"newsbrief/internal/config"
	"newsbrief/internal/llm"
)

const systemPrompt = `You are a personal intelligence officer analyzing how a news story affects one specific reader.

Write a brief, conversational explanation of how this news matters to the reader personally.
- Keep it natural and direct. Avoid corporate jargon and formulaic phrases like "As a [title]...".
- Focus on practical impact: what changes, what risks emerge, what opportunities appear.
- Rate the impact from 0 to 10 (0 = irrelevant, 10 = critically important).

Respond with plain text only, no markdown, in exactly this form:
SCORE: <0-10>
SENTIMENT: <Positive, Negative, or Neutral>
REASON: <1-2 sentence explanation>`

// maxProfileChars bounds the persona profile prefix embedded in each
// prompt.
const maxProfileChars = 1500

// materialScore is the logging threshold separating material results
// from ignorable ones. Everything is persisted either way.
const materialScore = 1

// Assessment is one persona's scored view of an article.
type Assessment struct {
	Score  int
	Reason string
}

// Engine evaluates article impact against reader personas, one model
// call per persona.
type Engine struct {
	model llm.Querier
}

// NewEngine creates a persona impact engine.
func NewEngine(model llm.Querier) *Engine {
	return &Engine{model: model}
}

// Evaluate scores the article summary for every given persona, in list
// order. A persona whose model call returns nothing gets the parser's
// defaults; it never stops the remaining personas.
func (e *Engine) Evaluate(ctx context.Context, summary string, personas []config.Persona) map[string]Assessment {
	results := make(map[string]Assessment, len(personas))

	for _, p := range personas {
		raw := e.model.Query(ctx, systemPrompt, userPrompt(p.Profile, summary))
		if raw == "" {
			log.Printf("no model output for persona %s, using defaults", p.Name)
		}

		score, reason := llm.ParseImpact(raw)
		if score > materialScore {
			log.Printf("material impact for %s: %d", p.Name, score)
		}
		results[p.Name] = Assessment{Score: score, Reason: reason}
	}

	return results
}

func userPrompt(profile, summary string) string {
	if len(profile) > maxProfileChars {
		profile = profile[:maxProfileChars]
	}
	return fmt.Sprintf("READER PROFILE:\n%s\n\nNEWS SUMMARY:\n%s", profile, summary)
}
