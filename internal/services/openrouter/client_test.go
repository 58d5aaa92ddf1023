package openrouter_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"autodiag/internal/services/openrouter"
)

func TestConfigured(t *testing.T) {
	if openrouter.NewClient(openrouter.Config{}).Configured() {
		t.Fatal("client without api key must not report configured")
	}
	if !openrouter.NewClient(openrouter.Config{APIKey: "sk-test"}).Configured() {
		t.Fatal("client with api key must report configured")
	}
}

func TestDiagnoseSendsExpectedRequest(t *testing.T) {
	var captured struct {
		auth    string
		referer string
		title   string
		body    map[string]any
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.auth = r.Header.Get("Authorization")
		captured.referer = r.Header.Get("HTTP-Referer")
		captured.title = r.Header.Get("X-Title")
		if err := json.NewDecoder(r.Body).Decode(&captured.body); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "  Failing water pump bearing.  "}},
			},
		})
	}))
	defer server.Close()

	client := openrouter.NewClient(openrouter.Config{
		APIKey:  "sk-test",
		BaseURL: server.URL,
		Model:   "openai/gpt-4o",
		Referer: "https://example.test",
		Title:   "Example",
	})

	got, err := client.Diagnose(context.Background(), "system prompt", "diagnostic context")
	if err != nil {
		t.Fatalf("Diagnose returned error: %v", err)
	}
	if got != "Failing water pump bearing." {
		t.Fatalf("content not trimmed: %q", got)
	}

	if captured.auth != "Bearer sk-test" {
		t.Fatalf("authorization header: %q", captured.auth)
	}
	if captured.referer != "https://example.test" {
		t.Fatalf("referer header: %q", captured.referer)
	}
	if captured.title != "Example" {
		t.Fatalf("title header: %q", captured.title)
	}
	if captured.body["model"] != "openai/gpt-4o" {
		t.Fatalf("model: %v", captured.body["model"])
	}
	if captured.body["temperature"] != 0.3 {
		t.Fatalf("temperature: %v", captured.body["temperature"])
	}
	if captured.body["max_tokens"] != float64(150) {
		t.Fatalf("max_tokens: %v", captured.body["max_tokens"])
	}
	messages, ok := captured.body["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("messages: %v", captured.body["messages"])
	}
	first := messages[0].(map[string]any)
	if first["role"] != "system" || first["content"] != "system prompt" {
		t.Fatalf("system message: %v", first)
	}
	second := messages[1].(map[string]any)
	if second["role"] != "user" || second["content"] != "diagnostic context" {
		t.Fatalf("user message: %v", second)
	}
}

func TestDiagnoseErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload any
	}{
		{name: "http error", status: http.StatusBadGateway, payload: map[string]string{"detail": "boom"}},
		{name: "api error", status: http.StatusOK, payload: map[string]any{"error": map[string]string{"message": "rate limited"}}},
		{name: "empty choices", status: http.StatusOK, payload: map[string]any{"choices": []any{}}},
		{name: "empty content", status: http.StatusOK, payload: map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": "   "}}},
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_ = json.NewEncoder(w).Encode(tc.payload)
			}))
			defer server.Close()

			client := openrouter.NewClient(openrouter.Config{APIKey: "sk-test", BaseURL: server.URL})
			if _, err := client.Diagnose(context.Background(), "system", "context"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestDiagnoseRejectsEmptyInputs(t *testing.T) {
	client := openrouter.NewClient(openrouter.Config{APIKey: "sk-test"})
	if _, err := client.Diagnose(context.Background(), "", "context"); err == nil {
		t.Fatal("expected error for empty system prompt")
	}
	if _, err := client.Diagnose(context.Background(), "system", "   "); err == nil {
		t.Fatal("expected error for empty context")
	}
	unconfigured := openrouter.NewClient(openrouter.Config{})
	if _, err := unconfigured.Diagnose(context.Background(), "system", "context"); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
