package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultGeminiModel = "gemini-1.5-pro"

type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	cl, err := genai.NewClient(ctx, option.WithAPIKey(strings.TrimSpace(apiKey)))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{client: cl, model: model}, nil
}

func (g *Gemini) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	m := g.client.GenerativeModel(g.model)
	m.SetTemperature(req.Temperature)
	if req.System != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return Completion{}, fmt.Errorf("gemini completion: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return Completion{}, nil
	}
	cand := resp.Candidates[0]
	var b strings.Builder
	if cand.Content != nil {
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
	}
	return Completion{Content: b.String(), FinishReason: fmt.Sprint(cand.FinishReason)}, nil
}

func (g *Gemini) Close() error { return g.client.Close() }
