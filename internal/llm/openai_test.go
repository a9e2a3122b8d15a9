package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chadiek/pitchcoach/internal/session"
)

func history() []session.Turn {
	return []session.Turn{
		{Role: session.RoleSystem, Content: "You are a donor."},
		{Role: session.RoleUser, Content: "Tell me about your funding ask"},
	}
}

func serve(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIClient("test-key", "gpt-4o-mini", 256, srv.URL+"/v1")
}

func TestComplete_UsesAPIUsage(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices":[{"message":{"role":"assistant","content":"  What impact can you show?  "}}],
			"usage":{"prompt_tokens":120,"completion_tokens":14,"total_tokens":134}
		}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	reply, tokens, err := c.Complete(ctx, history())
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if reply != "What impact can you show?" {
		t.Fatalf("reply: got %q", reply)
	}
	if tokens != 134 {
		t.Fatalf("tokens: got %d want 134", tokens)
	}
}

func TestComplete_EstimatesWhenUsageMissing(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Three words here"}}]}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, tokens, err := c.Complete(ctx, history())
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	// user text has 6 words, reply has 3; both scaled by 1.3 and truncated.
	want := EstimateTokens("Tell me about your funding ask") + EstimateTokens("Three words here")
	if tokens != want {
		t.Fatalf("tokens: got %d want %d", tokens, want)
	}
	if tokens <= 0 {
		t.Fatalf("expected positive estimate, got %d", tokens)
	}
}

func TestComplete_Failures(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status_non_2xx", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(500)
			_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
		}},
		{"empty_choices", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}},
		{"empty_content", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"   "}}]}`))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := serve(t, tc.handler)
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if _, _, err := c.Complete(ctx, history()); err == nil {
				t.Fatalf("expected error; got nil")
			}
		})
	}
}

func TestComplete_EmptyHistory(t *testing.T) {
	c := NewOpenAIClient("key", "gpt-4o-mini", 256, "")
	if _, _, err := c.Complete(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty history")
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Fatalf("empty text: got %d want 0", got)
	}
	// 10 words * 1.3 = 13
	if got := EstimateTokens("a b c d e f g h i j"); got != 13 {
		t.Fatalf("ten words: got %d want 13", got)
	}
}
