// Package anthropic implements the Reviewer port against the Anthropic
// messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/griffinwalsh/hookbill/internal/domain/model"
	"github.com/griffinwalsh/hookbill/internal/domain/port/driven"
)

const (
	apiVersion       = "2023-06-01"
	maxReviewTokens  = 1024
	messagesEndpoint = "/v1/messages"
)

// Compile-time interface satisfaction check.
var _ driven.Reviewer = (*Client)(nil)

// Client talks to the Anthropic messages API. Each Review call makes exactly
// one attempt; a redelivered webhook is the only retry mechanism.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewClient creates an Anthropic API client. timeout bounds each Review call
// end to end.
func NewClient(apiKey, baseURL, model string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []contentBlock `json:"content"`
	Usage   usage          `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Review sends one review prompt and returns the narrative text, concatenated
// from the response's text blocks.
func (c *Client) Review(ctx context.Context, prompt string) (string, error) {
	body := messageRequest{
		Model:     c.model,
		MaxTokens: maxReviewTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesEndpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: sending review request: %w", model.ErrTransientFetch, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading review response: %w", model.ErrTransientFetch, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("%w: anthropic API (status 429)", model.ErrRateLimited)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("%w: anthropic API (status %d): %s", model.ErrAuthentication, resp.StatusCode, respBody)
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("%w: anthropic API (status %d): %s", model.ErrTransientFetch, resp.StatusCode, respBody)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, respBody)
	}

	var result messageResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("parsing review response: %w", err)
	}

	var content strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	if content.Len() == 0 {
		return "", fmt.Errorf("anthropic API returned no text content")
	}

	slog.Debug("anthropic review call",
		"model", c.model,
		"input_tokens", result.Usage.InputTokens,
		"output_tokens", result.Usage.OutputTokens,
	)

	return content.String(), nil
}
