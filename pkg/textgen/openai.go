package textgen

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
)

const openAIDefaultModel = "gpt-4o-mini"

// OpenAI implements [Completer] using the OpenAI chat completions API.
//
// It also works with any OpenAI-compatible provider by setting WithBaseURL.
type OpenAI struct {
	client *openai.Client
	model  string
}

var _ Completer = (*OpenAI)(nil)

// NewOpenAI creates an OpenAI completer.
func NewOpenAI(apiKey string, opts ...Option) *OpenAI {
	cfg := config{
		model:      openAIDefaultModel,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(&cfg)
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(cfg.httpClient),
	}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}
	client := openai.NewClient(clientOpts...)

	return &OpenAI{client: &client, model: cfg.model}
}

// Model returns the OpenAI model identifier.
func (o *OpenAI) Model() string {
	return o.model
}

// Complete returns the model's reply for a single-turn request.
func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	if req.User == "" {
		return "", ErrEmptyPrompt
	}

	var msgs []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	msgs = append(msgs, openai.UserMessage(req.User))

	params := openai.ChatCompletionNewParams{
		Model:    o.model,
		Messages: msgs,
	}
	if req.Temperature > 0 {
		params.Temperature = param.NewOpt(float64(req.Temperature))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoCompletion
	}

	text := resp.Choices[0].Message.Content
	if text == "" {
		return "", ErrNoCompletion
	}
	return text, nil
}
