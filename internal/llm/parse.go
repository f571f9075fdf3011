package llm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// The model is prompted for labeled plain text, not JSON. These parsers
// are total over all string inputs: missing structure degrades to
// defaults, never to an error.

// Extraction is the parsed result of the summary/topics call.
type Extraction struct {
	Summary string
	Topics  []string
}

// ParseExtraction splits raw model output at the TOPICS: marker.
// Everything before it, minus a leading SUMMARY: marker, is the
// summary; everything after is a comma-separated topic list. Without a
// TOPICS: marker the whole output becomes the summary and the topic
// list stays empty.
func ParseExtraction(raw string) Extraction {
	head, tail, found := strings.Cut(raw, "TOPICS:")

	summary := strings.TrimSpace(head)
	summary = strings.TrimSpace(strings.TrimPrefix(summary, "SUMMARY:"))

	var topics []string
	if found {
		for _, t := range strings.Split(tail, ",") {
			t = strings.TrimSpace(t)
			if t != "" {
				topics = append(topics, t)
			}
		}
	}

	return Extraction{Summary: summary, Topics: topics}
}

var (
	scoreRe     = regexp.MustCompile(`SCORE:\s*(\d+)`)
	sentimentRe = regexp.MustCompile(`SENTIMENT:\s*([^\n]+)`)
	reasonRe    = regexp.MustCompile(`(?s)REASON:\s*(.+)`)

	emphasis = strings.NewReplacer("*", "", "_", "")
)

// ParseImpact extracts a 0-10 score and a reason string from raw model
// output. Each label is searched independently; a missing SCORE: yields
// 0, a missing SENTIMENT: defaults to Neutral, a missing REASON: yields
// a fixed fallback. The reason comes back as "(Sentiment) Reason" with
// newlines collapsed and emphasis markers stripped.
func ParseImpact(raw string) (int, string) {
	score := 0
	if m := scoreRe.FindStringSubmatch(raw); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			score = n
		}
		if score > 10 {
			score = 10
		}
	}

	sentiment := "Neutral"
	if m := sentimentRe.FindStringSubmatch(raw); m != nil {
		if s := cleanField(m[1]); s != "" {
			sentiment = s
		}
	}

	reason := "Analysis failed."
	if m := reasonRe.FindStringSubmatch(raw); m != nil {
		if r := cleanField(m[1]); r != "" {
			reason = r
		}
	}

	return score, fmt.Sprintf("(%s) %s", sentiment, reason)
}

// cleanField collapses internal whitespace (including newlines) to
// single spaces and strips residual emphasis markers.
func cleanField(s string) string {
	s = emphasis.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
