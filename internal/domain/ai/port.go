package ai

import "context"

// CompletionOptions tune a single completion call.
type CompletionOptions struct {
	Temperature     float32
	MaxOutputTokens int
}

// Completer is a single-shot, non-streaming text completion service.
// Its output is untrusted and may not be valid JSON.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}

// TranscriptStore keeps raw completions for later inspection.
type TranscriptStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}
