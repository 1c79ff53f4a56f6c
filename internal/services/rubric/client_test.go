package rubric_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Leewodls/ko-analysis/internal/config"
	"github.com/Leewodls/ko-analysis/internal/services/rubric"
)

func completionBody(content string) string {
	payload := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	encoded, _ := json.Marshal(payload)
	return string(encoded)
}

func newTestClient(t *testing.T, baseURL string, opts ...rubric.Option) *rubric.Client {
	t.Helper()
	cfg := config.LLM{APIKey: "test-key", BaseURL: baseURL, Model: "test-model"}
	opts = append([]rubric.Option{rubric.WithSleeper(func(time.Duration) {})}, opts...)
	return rubric.NewClient(cfg, opts...)
}

func TestCompleteJSONSendsJSONOnlyRequest(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(completionBody(`{"score": 85}`)))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	content, err := client.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("CompleteJSON returned error: %v", err)
	}
	if content != `{"score": 85}` {
		t.Fatalf("content = %q", content)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotBody["model"] != "test-model" {
		t.Fatalf("model = %v", gotBody["model"])
	}
	if gotBody["temperature"] != float64(0) {
		t.Fatalf("temperature = %v", gotBody["temperature"])
	}
	format, ok := gotBody["response_format"].(map[string]any)
	if !ok || format["type"] != "json_object" {
		t.Fatalf("response_format = %v", gotBody["response_format"])
	}
}

func TestCompleteJSONRetriesOnTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(completionBody(`{"ok": true}`)))
	}))
	defer server.Close()

	var slept time.Duration
	client := newTestClient(t, server.URL, rubric.WithSleeper(func(d time.Duration) { slept = d }))
	if _, err := client.CompleteJSON(context.Background(), "system", "user"); err != nil {
		t.Fatalf("CompleteJSON returned error: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
	if slept != time.Second {
		t.Fatalf("slept = %v, want Retry-After honored", slept)
	}
}

func TestCompleteJSONDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if _, err := client.CompleteJSON(context.Background(), "system", "user"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestCompleteJSONRequiresAPIKey(t *testing.T) {
	client := rubric.NewClient(config.LLM{})
	if _, err := client.CompleteJSON(context.Background(), "system", "user"); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody(`{"ok": true}`)))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestDecodeJSONToleratesCodeFences(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "plain", payload: `{"score": 70}`},
		{name: "fenced", payload: "```json\n{\"score\": 70}\n```"},
		{name: "prose wrapped", payload: "평가 결과입니다: {\"score\": 70} 감사합니다."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var parsed struct {
				Score float64 `json:"score"`
			}
			if err := rubric.DecodeJSON(tc.payload, &parsed); err != nil {
				t.Fatalf("DecodeJSON returned error: %v", err)
			}
			if parsed.Score != 70 {
				t.Fatalf("score = %v", parsed.Score)
			}
		})
	}

	if err := rubric.DecodeJSON("no json here", &struct{}{}); err == nil {
		t.Fatal("expected error for non-JSON payload")
	}
}
