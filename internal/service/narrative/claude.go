package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"SilverFetch/internal/domain/models"
	"SilverFetch/pkg/config"
	phttp "SilverFetch/pkg/http"
	"SilverFetch/pkg/logger"
)

const (
	anthropicVersion = "2023-06-01"

	systemPrompt = "You are a meticulous commodities strategist. " +
		"Summaries must stay factual, reference price levels explicitly, " +
		"and highlight support/resistance confluence and actionable trade plans."
)

// Client talks to the Anthropic Messages API. Without an API key it degrades
// to a static placeholder so the rest of the pipeline keeps refreshing.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	client      *phttp.Client
	log         *logger.Logger
}

func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	baseURL := strings.TrimRight(cfg.Narrative.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	return &Client{
		apiKey:      cfg.Narrative.APIKey,
		baseURL:     baseURL,
		model:       cfg.Narrative.Model,
		maxTokens:   cfg.Narrative.MaxTokens,
		temperature: cfg.Narrative.Temperature,
		client:      phttp.NewClient(phttp.WithTimeout(cfg.Narrative.Timeout)),
		log:         log,
	}
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *Client) Summarize(ctx context.Context, req models.NarrativeRequest) (models.Narrative, error) {
	if c.apiKey == "" {
		return models.Narrative{
			Status:   "placeholder",
			Headline: "AI summary unavailable",
			Body: "Set CLAUDE_API_KEY to unlock real-time AI commentary. " +
				"The rest of the dashboard continues to refresh normally.",
		}, nil
	}

	prompt, err := buildPrompt(req)
	if err != nil {
		return models.Narrative{}, fmt.Errorf("build prompt: %w", err)
	}

	var resp messagesResponse
	err = c.client.SendAndParse(ctx, &phttp.RequestOptions{
		Method: phttp.MethodPost,
		URL:    c.baseURL + "/v1/messages",
		Headers: map[string]string{
			"x-api-key":         c.apiKey,
			"anthropic-version": anthropicVersion,
			"Content-Type":      "application/json",
		},
		Body: messagesRequest{
			Model:       c.model,
			MaxTokens:   c.maxTokens,
			Temperature: c.temperature,
			System:      systemPrompt,
			Messages:    []message{{Role: "user", Content: prompt}},
		},
	}, &resp)
	if err != nil {
		return models.Narrative{}, fmt.Errorf("messages api: %w", err)
	}
	if len(resp.Content) == 0 || strings.TrimSpace(resp.Content[0].Text) == "" {
		return models.Narrative{}, fmt.Errorf("messages api: empty response")
	}

	return models.Narrative{
		Status:   "ok",
		Headline: "Market Summary",
		Body:     trimToSentences(resp.Content[0].Text, 3),
	}, nil
}

func buildPrompt(req models.NarrativeRequest) (string, error) {
	compact, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	return "Using the JSON snapshot below, write a brief 2-3 sentence summary about the silver market.\n" +
		"First sentence: Current price and short-term trend.\n" +
		"Second sentence: Key support/resistance levels and what they mean.\n" +
		"Third sentence (optional): One actionable insight or risk to watch.\n" +
		"Keep it concise and factual. No fluff.\n" +
		"Snapshot:\n" + string(compact), nil
}

// trimToSentences keeps at most n sentences of the model output.
func trimToSentences(text string, n int) string {
	sentences := strings.Split(strings.TrimSpace(text), ". ")
	if len(sentences) <= n {
		return strings.TrimSpace(text)
	}
	out := strings.Join(sentences[:n], ". ")
	if !strings.HasSuffix(out, ".") {
		out += "."
	}
	return out
}
