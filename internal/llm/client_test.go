package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestClient(url string) *HTTPClient {
	return NewHTTPClient(Options{
		BaseURL:        url,
		APIKey:         "test-key",
		Model:          "gpt-4o-mini",
		Temperature:    0.3,
		MaxTokens:      200,
		JSONMode:       true,
		MaxElapsed:     2 * time.Second,
		InitialBackoff: 5 * time.Millisecond,
	}, zap.NewNop())
}

func TestHTTPClientGenerate_SendsChatRequest(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"label\":\"no\"}"}}]}`))
	}))
	defer srv.Close()

	out, err := newTestClient(srv.URL+"/").Generate(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != `{"label":"no"}` {
		t.Fatalf("unexpected content %q", out)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "user" {
		t.Fatalf("unexpected messages %+v", got.Messages)
	}
	if got.ResponseFormat == nil || got.ResponseFormat.Type != "json_object" {
		t.Fatalf("expected json response format")
	}
	if got.Temperature != 0.3 || got.MaxTokens != 200 {
		t.Fatalf("unexpected sampling params %+v", got)
	}
}

func TestHTTPClientGenerate_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	out, err := newTestClient(srv.URL).Generate(context.Background(), "", "ping")
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if out != "ok" || atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("expected 3 calls and ok, got %d and %q", calls, out)
	}
}

func TestHTTPClientGenerate_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Generate(context.Background(), "", "ping")
	if err == nil || !strings.Contains(err.Error(), "status=401") {
		t.Fatalf("expected 401 error, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestHTTPClientGenerate_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Generate(context.Background(), "", "ping")
	if err == nil || !strings.Contains(err.Error(), "empty response") {
		t.Fatalf("expected empty response error, got %v", err)
	}
}

func TestHTTPClientGenerate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"message":"model not found"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Generate(context.Background(), "", "ping")
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestHTTPClientGenerate_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestClient(srv.URL).Generate(ctx, "", "ping"); err == nil {
		t.Fatalf("expected error on canceled context")
	}
}
