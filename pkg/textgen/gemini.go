package textgen

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const geminiDefaultModel = "gemini-2.0-flash"

// Gemini implements [Completer] using the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

var _ Completer = (*Gemini)(nil)

// NewGemini creates a Gemini completer.
func NewGemini(ctx context.Context, apiKey string, opts ...Option) (*Gemini, error) {
	cfg := config{model: geminiDefaultModel}
	for _, o := range opts {
		o(&cfg)
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.httpClient != nil {
		cc.HTTPClient = cfg.httpClient
	}
	if cfg.baseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.baseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Gemini{client: client, model: cfg.model}, nil
}

// Model returns the Gemini model identifier.
func (g *Gemini) Model() string {
	return g.model
}

// Complete returns the model's reply for a single-turn request.
func (g *Gemini) Complete(ctx context.Context, req Request) (string, error) {
	if req.User == "" {
		return "", ErrEmptyPrompt
	}

	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(req.System)},
		}
	}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(req.Temperature)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(req.User, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", ErrNoCompletion
	}

	cand := resp.Candidates[0]
	if cand.FinishReason != genai.FinishReasonStop && cand.FinishReason != genai.FinishReasonMaxTokens {
		return "", fmt.Errorf("textgen: generation stopped: %s", cand.FinishReason)
	}
	if cand.Content == nil {
		return "", ErrNoCompletion
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrNoCompletion
	}
	return sb.String(), nil
}
