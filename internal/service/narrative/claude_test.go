package narrative

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"SilverFetch/internal/domain/models"
	"SilverFetch/pkg/config"
	"SilverFetch/pkg/logger"
)

func testConfig(apiKey, baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Narrative.APIKey = apiKey
	cfg.Narrative.BaseURL = baseURL
	cfg.Narrative.Model = "claude-3-5-haiku-latest"
	cfg.Narrative.MaxTokens = 512
	cfg.Narrative.Temperature = 0.4
	cfg.Narrative.Timeout = 5 * time.Second
	return cfg
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func TestSummarizePlaceholderWithoutKey(t *testing.T) {
	c := NewClient(testConfig("", "https://api.anthropic.com"), testLogger(t))
	got, err := c.Summarize(context.Background(), models.NarrativeRequest{Price: 48.24})
	if err != nil {
		t.Fatalf("expected placeholder, got error %v", err)
	}
	if got.Status != "placeholder" {
		t.Fatalf("status = %q, want placeholder", got.Status)
	}
	if got.Body == "" {
		t.Fatalf("placeholder body is empty")
	}
}

func TestSummarizeParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "sk-test" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing version header")
		}
		var req messagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("unexpected messages payload")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{
				{"type": "text", "text": "Silver trades at $48.24 with a firm bid. Support sits at $47.10 and resistance at $49.30. Watch the $49.30 break. Extra sentence that should be trimmed."},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(testConfig("sk-test", srv.URL), testLogger(t))
	got, err := c.Summarize(context.Background(), models.NarrativeRequest{Price: 48.24})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if got.Status != "ok" {
		t.Fatalf("status = %q, want ok", got.Status)
	}
	want := "Silver trades at $48.24 with a firm bid. Support sits at $47.10 and resistance at $49.30. Watch the $49.30 break."
	if got.Body != want {
		t.Fatalf("body = %q, want %q", got.Body, want)
	}
}

func TestSummarizeErrorOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(testConfig("sk-test", srv.URL), testLogger(t))
	if _, err := c.Summarize(context.Background(), models.NarrativeRequest{}); err == nil {
		t.Fatalf("expected error on 503")
	}
}

func TestTrimToSentences(t *testing.T) {
	if got := trimToSentences("One. Two. Three. Four. Five.", 3); got != "One. Two. Three." {
		t.Fatalf("got %q", got)
	}
	if got := trimToSentences("Short answer.", 3); got != "Short answer." {
		t.Fatalf("got %q", got)
	}
}
