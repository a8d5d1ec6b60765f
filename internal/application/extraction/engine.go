// Package extraction drives the completion service and turns its untrusted
// output into a bounded analysis.
package extraction

import (
	"context"
	"errors"
	"time"

	"github.com/bryanwahyu/errexplain/internal/domain/ai"
	"github.com/bryanwahyu/errexplain/internal/domain/apperr"
	"github.com/bryanwahyu/errexplain/internal/infra/ai/prompt"
)

// Default completion settings.
const (
	DefaultTemperature     float32 = 0.7
	DefaultMaxOutputTokens         = 2000
)

// Engine calls the completer once per extraction, without retry.
type Engine struct {
	Completer ai.Completer
	Options   ai.CompletionOptions
	// Timeout bounds the completion call on top of the caller's context.
	Timeout time.Duration
}

func NewEngine(c ai.Completer, opts ai.CompletionOptions, timeout time.Duration) *Engine {
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = DefaultMaxOutputTokens
	}
	return &Engine{Completer: c, Options: opts, Timeout: timeout}
}

// Extract returns an error only when the completion service could not be
// reached; malformed output is absorbed into a fallback Result.
func (e *Engine) Extract(ctx context.Context, errorMessage, language string) (Result, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	raw, err := e.Completer.Complete(ctx, prompt.BuildAnalysisPrompt(errorMessage, language), e.Options)
	switch {
	case errors.Is(err, ai.ErrEmptyCompletion):
		raw = ""
	case err != nil:
		return Result{}, apperr.Upstream("completion", err)
	}
	return ParseCompletion(raw), nil
}
