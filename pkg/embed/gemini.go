package embed

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Gemini embedding models.
const (
	// ModelGeminiEmbedding is the current Gemini embedding model
	// (3072 dims native, truncatable to 1536 or 768).
	ModelGeminiEmbedding = "gemini-embedding-001"
)

const (
	geminiMaxBatch     = 100
	geminiDefaultDim   = 768
	geminiDefaultModel = ModelGeminiEmbedding
)

// Gemini implements [Embedder] using the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	dim    int
}

var _ Embedder = (*Gemini)(nil)

// NewGemini creates a Gemini embedder.
func NewGemini(ctx context.Context, apiKey string, opts ...Option) (*Gemini, error) {
	cfg := config{
		model: geminiDefaultModel,
		dim:   geminiDefaultDim,
	}
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

	return &Gemini{
		client: client,
		model:  cfg.model,
		dim:    cfg.dim,
	}, nil
}

// Embed returns the embedding for a single text.
func (g *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}
	vecs, err := g.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch returns embeddings for multiple texts.
// Batches larger than 100 are automatically split into multiple API calls.
func (g *Gemini) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	result := make([][]float32, len(texts))
	for i := 0; i < len(texts); i += geminiMaxBatch {
		end := min(i+geminiMaxBatch, len(texts))
		batch := texts[i:end]

		vecs, err := g.callAPI(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("embed batch [%d:%d]: %w", i, end, err)
		}
		copy(result[i:], vecs)
	}
	return result, nil
}

// Dimension returns the configured vector dimensionality.
func (g *Gemini) Dimension() int {
	return g.dim
}

// Model returns the Gemini model identifier.
func (g *Gemini) Model() string {
	return g.model
}

func (g *Gemini) callAPI(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	resp, err := g.client.Models.EmbedContent(ctx, g.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: genai.Ptr(int32(g.dim)),
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	vecs := make([][]float32, len(texts))
	for i, e := range resp.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, fmt.Errorf("missing embedding for index %d", i)
		}
		vecs[i] = e.Values
	}
	return vecs, nil
}
