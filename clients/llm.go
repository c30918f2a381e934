package clients

import (
	"context"
	"fmt"
	"strings"
)

type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float32
}

type Completion struct {
	Content      string
	FinishReason string
}

// Empty reports a reply with no usable text. Callers treat it as an empty result,
// not a failure.
func (c Completion) Empty() bool { return strings.TrimSpace(c.Content) == "" }

// Completer is a single-shot chat completion backend.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}

type LLMOptions struct {
	Provider string // openai | gemini | anthropic
	APIKey   string
	BaseURL  string
	Model    string
}

// NewCompleter picks a backend by provider name. The returned close func releases
// any client resources and is never nil.
func NewCompleter(ctx context.Context, opts LLMOptions) (Completer, func() error, error) {
	noop := func() error { return nil }
	if opts.APIKey == "" {
		return nil, noop, fmt.Errorf("%s: api key is empty", opts.Provider)
	}
	switch strings.ToLower(opts.Provider) {
	case "", "openai", "gpt":
		return NewOpenAI(opts.APIKey, opts.BaseURL, opts.Model), noop, nil
	case "gemini":
		g, err := NewGemini(ctx, opts.APIKey, opts.Model)
		if err != nil {
			return nil, noop, err
		}
		return g, g.Close, nil
	case "anthropic", "claude":
		return NewAnthropic(opts.APIKey, opts.BaseURL, opts.Model), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown llm provider %q; use openai, gemini or anthropic", opts.Provider)
	}
}
