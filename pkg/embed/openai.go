package embed

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultOpenAIModel = "text-embedding-3-small"
	defaultOpenAIDim   = 1536

	// The embeddings endpoint accepts at most 2048 inputs per request.
	openAIBatchLimit = 2048
)

// OpenAI embeds text through the OpenAI embeddings API. Any
// OpenAI-compatible endpoint works via [WithBaseURL].
type OpenAI struct {
	client openai.Client
	model  string
	dim    int
}

var _ Embedder = (*OpenAI)(nil)

// NewOpenAI creates an OpenAI embedder. The default model is
// text-embedding-3-small at 1536 dimensions.
func NewOpenAI(apiKey string, opts ...Option) *OpenAI {
	cfg := config{
		model:      defaultOpenAIModel,
		dim:        defaultOpenAIDim,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(&cfg)
	}

	ro := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(cfg.httpClient),
	}
	if cfg.baseURL != "" {
		ro = append(ro, option.WithBaseURL(cfg.baseURL))
	}

	return &OpenAI{
		client: openai.NewClient(ro...),
		model:  cfg.model,
		dim:    cfg.dim,
	}
}

// Embed returns the embedding of one text.
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}
	vecs, err := o.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch returns one embedding per input text, in input order.
// Inputs beyond the per-request limit are split across requests.
func (o *OpenAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += openAIBatchLimit {
		chunk := texts[start:min(start+openAIBatchLimit, len(texts))]
		vecs, err := o.request(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("embed texts %d..%d: %w", start, start+len(chunk), err)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// Dimension returns the configured vector dimensionality.
func (o *OpenAI) Dimension() int {
	return o.dim
}

func (o *OpenAI) request(ctx context.Context, chunk []string) ([][]float32, error) {
	resp, err := o.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model:          o.model,
		Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: chunk},
		Dimensions:     openai.Int(int64(o.dim)),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(chunk) {
		return nil, fmt.Errorf("got %d embeddings for %d inputs", len(resp.Data), len(chunk))
	}

	// The API reports an index per item; order by it rather than
	// trusting response order.
	vecs := make([][]float32, len(chunk))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= int64(len(chunk)) {
			return nil, fmt.Errorf("embedding index %d out of range", item.Index)
		}
		vecs[item.Index] = float64sToFloat32s(item.Embedding)
	}
	for i, v := range vecs {
		if v == nil {
			return nil, fmt.Errorf("no embedding returned for input %d", i)
		}
	}
	return vecs, nil
}
