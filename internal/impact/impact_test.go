package impact

import (
	"context"
	"strings"
	"testing"

	"newsbrief/internal/config"
)

// scriptedModel returns canned output keyed by a substring of the user
// prompt, empty otherwise.
type scriptedModel struct {
	responses map[string]string
	calls     int
}

func (m *scriptedModel) Query(ctx context.Context, system, user string) string {
	m.calls++
	for key, resp := range m.responses {
		if strings.Contains(user, key) {
			return resp
		}
	}
	return ""
}

func TestEvaluateScoresEveryPersona(t *testing.T) {
	model := &scriptedModel{responses: map[string]string{
		"landlord": "SCORE: 8\nSENTIMENT: Negative\nREASON: rents may fall",
		"retiree":  "SCORE: 2\nSENTIMENT: Positive\nREASON: bonds look better",
	}}
	e := NewEngine(model)

	personas := []config.Persona{
		{Name: "Alex", Profile: "I am a landlord."},
		{Name: "Jordan", Profile: "I am a retiree."},
	}
	results := e.Evaluate(context.Background(), "Rates rise.", personas)

	if len(results) != 2 {
		t.Fatalf("expected 2 assessments, got %d", len(results))
	}
	if model.calls != 2 {
		t.Errorf("expected one model call per persona, got %d", model.calls)
	}
	if results["Alex"].Score != 8 || results["Alex"].Reason != "(Negative) rents may fall" {
		t.Errorf("unexpected Alex assessment: %+v", results["Alex"])
	}
	if results["Jordan"].Score != 2 {
		t.Errorf("unexpected Jordan score: %d", results["Jordan"].Score)
	}
}

func TestEvaluatePartialFailure(t *testing.T) {
	// Only Alex's call produces output; Jordan's returns empty.
	model := &scriptedModel{responses: map[string]string{
		"landlord": "SCORE: 5\nSENTIMENT: Neutral\nREASON: fine",
	}}
	e := NewEngine(model)

	personas := []config.Persona{
		{Name: "Alex", Profile: "I am a landlord."},
		{Name: "Jordan", Profile: "I am a retiree."},
	}
	results := e.Evaluate(context.Background(), "Rates rise.", personas)

	if len(results) != 2 {
		t.Fatalf("expected assessments for both personas, got %d", len(results))
	}
	if results["Jordan"].Score != 0 {
		t.Errorf("expected default score 0 for failed persona, got %d", results["Jordan"].Score)
	}
	if results["Jordan"].Reason != "(Neutral) Analysis failed." {
		t.Errorf("expected default reason, got %q", results["Jordan"].Reason)
	}
	if results["Alex"].Score != 5 {
		t.Errorf("expected Alex unaffected by Jordan's failure, got %d", results["Alex"].Score)
	}
}

func TestUserPromptTruncatesProfile(t *testing.T) {
	long := strings.Repeat("x", maxProfileChars+500)
	prompt := userPrompt(long, "summary")
	if strings.Contains(prompt, strings.Repeat("x", maxProfileChars+1)) {
		t.Error("expected profile truncated to bounded prefix")
	}
	if !strings.Contains(prompt, "summary") {
		t.Error("expected summary embedded in prompt")
	}
}
