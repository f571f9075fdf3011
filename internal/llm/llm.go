package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Querier is the model boundary as the pipeline sees it: a single
// prompt in, raw generated text out, empty string meaning "no result".
type Querier interface {
	Query(ctx context.Context, system, user string) string
}

// Client talks to an Ollama-compatible generate endpoint. It is the
// single point of contact with the language model.
type Client struct {
	baseURL     string
	model       string
	temperature float64
	numPredict  int
	client      *http.Client
}

// NewClient creates a model client for the given endpoint and model.
// numPredict bounds the response length; 0 leaves it to the server.
func NewClient(baseURL, model string, temperature float64, numPredict int) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		temperature: temperature,
		numPredict:  numPredict,
		client:      &http.Client{Timeout: 60 * time.Second},
	}
}

// Query combines the instruction blocks into one prompt and returns the
// raw generated text. Any transport or decode failure is logged and
// yields an empty string; callers treat empty as "no result". One
// attempt per call, no retries.
func (c *Client) Query(ctx context.Context, system, user string) string {
	prompt := strings.TrimSpace(system) + "\n\n" + strings.TrimSpace(user)

	options := map[string]any{
		"temperature": c.temperature,
	}
	if c.numPredict > 0 {
		options["num_predict"] = c.numPredict
	}
	body := map[string]any{
		"model":   c.model,
		"prompt":  prompt,
		"stream":  false,
		"options": options,
	}

	data, err := json.Marshal(body)
	if err != nil {
		log.Printf("model request marshal failed: %v", err)
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/generate", bytes.NewReader(data))
	if err != nil {
		log.Printf("model request failed: %v", err)
		return ""
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("model endpoint unreachable: %v", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("model endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		return ""
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("decoding model response: %v", err)
		return ""
	}

	return result.Response
}
