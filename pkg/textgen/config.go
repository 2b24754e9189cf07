package textgen

import "net/http"

// config holds shared configuration for completer implementations.
type config struct {
	model      string
	baseURL    string
	httpClient *http.Client
}

// Option configures a completer.
type Option func(*config)

// WithModel sets the chat model name.
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) { c.httpClient = client }
}
