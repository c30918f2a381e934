package orchestrator

import (
	"context"

	"github.com/maastricht-university/lesson-assessor/clients"
	cfg "github.com/maastricht-university/lesson-assessor/config"
	"github.com/sirupsen/logrus"
)

// NewCompleter builds the configured OpenAI or Gemini backend behind the retry,
// timeout and rate-limit guard. The returned close func is never nil.
func NewCompleter(ctx context.Context, c *cfg.Root, log logrus.FieldLogger) (clients.Completer, func() error, error) {
	llm := c.Services.LLM
	completer, closeLLM, err := clients.NewCompleter(ctx, clients.LLMOptions{
		Provider: llm.Provider,
		APIKey:   llm.Key(),
		BaseURL:  llm.BaseURL,
		Model:    llm.Model,
	})
	if err != nil {
		return nil, closeLLM, wrap(KindService, "llm client", err)
	}
	guarded := clients.NewGuarded(completer, clients.Policy{
		Timeout:         llm.Timeout,
		MaxRetries:      llm.MaxRetries,
		InitialInterval: llm.RetryInterval,
		RatePerSecond:   llm.RatePerSecond,
	}, log.WithField("provider", llm.Provider))
	return guarded, closeLLM, nil
}

func NewTranscriber(c *cfg.Root, log logrus.FieldLogger) clients.Transcriber {
	tr := c.Services.Transcription
	return clients.NewAssemblyAI(clients.NewHTTP(tr.Timeout), clients.AssemblyAIOptions{
		BaseURL:          tr.URL,
		APIKey:           tr.APIKey,
		SpeakersExpected: tr.SpeakersExpected,
		PollInterval:     tr.PollInterval,
	}, log.WithField("service", "assemblyai"))
}
