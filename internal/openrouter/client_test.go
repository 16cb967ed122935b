package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"thirdspace/internal/failure"
	"thirdspace/internal/prompt"
)

var testPrompt = prompt.Encoded{System: "system text", User: "Hola mundo"}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return New(Config{BaseURL: server.URL, Timeout: 2 * time.Second}, nil), &hits
}

func TestSendSuccess(t *testing.T) {
	var got map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"<<<TRANSLATION>>>Hello world<<<END_TRANSLATION>>>"}}]}`))
	})

	raw, err := client.Send(context.Background(), testPrompt, "google/gemini-3-flash-preview", "sk-test", true)
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if raw != "<<<TRANSLATION>>>Hello world<<<END_TRANSLATION>>>" {
		t.Fatalf("unexpected raw response: %q", raw)
	}

	if got["model"] != "google/gemini-3-flash-preview" {
		t.Fatalf("unexpected model: %v", got["model"])
	}
	messages, ok := got["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("expected two messages, got %v", got["messages"])
	}
	first := messages[0].(map[string]any)
	second := messages[1].(map[string]any)
	if first["role"] != "system" || first["content"] != "system text" {
		t.Fatalf("unexpected system message: %v", first)
	}
	if second["role"] != "user" || second["content"] != "Hola mundo" {
		t.Fatalf("unexpected user message: %v", second)
	}
	r, ok := got["reasoning"].(map[string]any)
	if !ok || r["enabled"] != true {
		t.Fatalf("expected reasoning enabled, got %v", got["reasoning"])
	}
}

func TestSendOmitsReasoningWhenDisabled(t *testing.T) {
	var got map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	})

	if _, err := client.Send(context.Background(), testPrompt, "m", "sk-test", false); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if _, present := got["reasoning"]; present {
		t.Fatalf("reasoning must be omitted when disabled: %v", got)
	}
}

func TestSendMissingAPIKeyMakesNoRequest(t *testing.T) {
	client, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.Send(context.Background(), testPrompt, "m", "  ", false)
	if failure.KindOf(err) != failure.MissingAPIKey {
		t.Fatalf("expected MissingAPIKey, got %v", err)
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Fatalf("expected no network call, got %d", *hits)
	}
}

func TestSendClassifiesFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   failure.Kind
		wantStatus int
		wantMsg    string
	}{
		{name: "api error with message", status: 401, body: `{"error":{"message":"No auth credentials found","code":401}}`, wantKind: failure.APIError, wantStatus: 401, wantMsg: "No auth credentials found"},
		{name: "api error plain body", status: 502, body: `bad gateway`, wantKind: failure.APIError, wantStatus: 502},
		{name: "invalid json", status: 200, body: `<html>`, wantKind: failure.MalformedResponse},
		{name: "no choices", status: 200, body: `{"choices":[]}`, wantKind: failure.MalformedResponse},
		{name: "null content", status: 200, body: `{"choices":[{"message":{"content":null}}]}`, wantKind: failure.MalformedResponse},
		{name: "missing content", status: 200, body: `{"choices":[{"message":{}}]}`, wantKind: failure.MalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Send(context.Background(), testPrompt, "m", "sk-test", false)
			fe, ok := failure.As(err)
			if !ok {
				t.Fatalf("expected classified failure, got %v", err)
			}
			if fe.Kind != tt.wantKind {
				t.Fatalf("kind = %s, want %s", fe.Kind, tt.wantKind)
			}
			if fe.Status != tt.wantStatus {
				t.Fatalf("status = %d, want %d", fe.Status, tt.wantStatus)
			}
			if tt.wantMsg != "" && fe.Message != tt.wantMsg {
				t.Fatalf("message = %q, want %q", fe.Message, tt.wantMsg)
			}
			if atomic.LoadInt32(hits) != 1 {
				t.Fatalf("expected exactly one attempt, got %d", *hits)
			}
		})
	}
}

func TestSendEmptyContentIsReturned(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":""}}]}`))
	})

	raw, err := client.Send(context.Background(), testPrompt, "m", "sk-test", false)
	if err != nil || raw != "" {
		t.Fatalf("Send() = %q, %v", raw, err)
	}
}

func TestSendTimeoutIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, Timeout: 50 * time.Millisecond}, nil)
	_, err := client.Send(context.Background(), testPrompt, "m", "sk-test", false)
	if failure.KindOf(err) != failure.NetworkError {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestSendConnectionRefusedIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := New(Config{BaseURL: url}, nil)
	_, err := client.Send(context.Background(), testPrompt, "m", "sk-test", false)
	if !errors.Is(err, &failure.Error{Kind: failure.NetworkError}) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestListModels(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/models" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"openai/gpt-4o","name":"GPT-4o"},{"id":"google/gemini-3-flash-preview","name":"Gemini 3 Flash"}]}`))
	})

	models, err := client.ListModels(context.Background(), "sk-test")
	if err != nil {
		t.Fatalf("ListModels() error: %v", err)
	}
	if len(models) != 2 || models[0].ID != "openai/gpt-4o" || models[1].Name != "Gemini 3 Flash" {
		t.Fatalf("unexpected models: %+v", models)
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	c := New(Config{}, nil)
	if c.baseURL != DefaultBaseURL {
		t.Fatalf("baseURL = %q", c.baseURL)
	}
	if c.httpClient.Timeout != DefaultTimeout {
		t.Fatalf("timeout = %v", c.httpClient.Timeout)
	}
}
