package extraction

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bryanwahyu/errexplain/internal/domain/ai"
	"github.com/bryanwahyu/errexplain/internal/domain/apperr"
)

type stubCompleter struct {
	out    string
	err    error
	calls  int
	prompt string
	opts   ai.CompletionOptions
	wait   bool
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string, opts ai.CompletionOptions) (string, error) {
	s.calls++
	s.prompt = prompt
	s.opts = opts
	if s.wait {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.out, s.err
}

func TestExtractParsed(t *testing.T) {
	c := &stubCompleter{out: validJSON}
	e := NewEngine(c, ai.CompletionOptions{}, 0)

	r, err := e.Extract(context.Background(), "ReferenceError: x is not defined", "JavaScript")
	if err != nil {
		t.Fatal(err)
	}
	if r.Degraded() {
		t.Fatalf("unexpected fallback: %s", r.Reason)
	}
	if c.calls != 1 {
		t.Fatalf("calls = %d", c.calls)
	}
	if !strings.Contains(c.prompt, "ReferenceError: x is not defined") {
		t.Fatal("prompt must embed the error message")
	}
	if c.opts.Temperature != DefaultTemperature || c.opts.MaxOutputTokens != DefaultMaxOutputTokens {
		t.Fatalf("opts = %+v", c.opts)
	}
}

func TestExtractTransportErrorIsUpstream(t *testing.T) {
	c := &stubCompleter{err: errors.New("dial tcp: connection refused")}
	e := NewEngine(c, ai.CompletionOptions{}, 0)

	_, err := e.Extract(context.Background(), "boom", "Go")
	if !errors.Is(err, apperr.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if c.calls != 1 {
		t.Fatalf("no retry expected, calls = %d", c.calls)
	}
}

func TestExtractEmptyCompletionDegrades(t *testing.T) {
	for _, c := range []*stubCompleter{{out: ""}, {err: ai.ErrEmptyCompletion}} {
		r, err := NewEngine(c, ai.CompletionOptions{}, 0).Extract(context.Background(), "boom", "Go")
		if err != nil {
			t.Fatal(err)
		}
		if !r.Degraded() || r.Fields.Explanation != genericExplanation {
			t.Fatalf("got %+v", r)
		}
	}
}

func TestExtractHonoursTimeout(t *testing.T) {
	c := &stubCompleter{wait: true}
	e := NewEngine(c, ai.CompletionOptions{}, 10*time.Millisecond)

	_, err := e.Extract(context.Background(), "boom", "Go")
	if !errors.Is(err, apperr.ErrUpstreamUnavailable) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected upstream deadline error, got %v", err)
	}
}
