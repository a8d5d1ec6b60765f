package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/errexplain/internal/domain/ai"
)

func TestCompleteSendsPromptAndOptions(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Role: "assistant", Content: `{"explanation":"x"}`}}},
		})
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL+"/v1", "")
	out, err := c.Complete(context.Background(), "explain this", ai.CompletionOptions{Temperature: 0.7, MaxOutputTokens: 2000})
	if err != nil {
		t.Fatal(err)
	}
	if out != `{"explanation":"x"}` {
		t.Fatalf("out = %q", out)
	}
	if got.Model != DefaultModel || got.MaxTokens != 2000 || got.Temperature != 0.7 {
		t.Fatalf("request = %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[1].Content != "explain this" {
		t.Fatalf("messages = %+v", got.Messages)
	}
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"rate_limit"}}`, ai.ErrQuotaExceeded},
		{"no choices", http.StatusOK, `{"choices":[]}`, ai.ErrEmptyCompletion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient("k", srv.URL, "gpt-4o-mini").Complete(context.Background(), "p", ai.CompletionOptions{MaxOutputTokens: 10})
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}
