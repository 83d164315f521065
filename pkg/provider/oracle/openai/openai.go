// Package openai provides a ranking oracle backed by the OpenAI API.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/smarathe/yojanasetu/pkg/provider/oracle"
)

// rankMaxTokens caps the completion: a scheme id is a handful of tokens.
const rankMaxTokens = 32

// Oracle implements oracle.Provider using the OpenAI chat completions API.
type Oracle struct {
	client oai.Client
	model  string
}

// Compile-time interface check.
var _ oracle.Provider = (*Oracle)(nil)

// config holds optional configuration for the oracle.
type config struct {
	baseURL string
	timeout time.Duration
}

// Option is a functional option for [Oracle].
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL. Use this to target
// OpenAI-compatible endpoints.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// New constructs a new OpenAI-backed ranking oracle.
func New(apiKey, model string, opts ...Option) (*Oracle, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("openai: model must not be empty")
	}

	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	return &Oracle{client: oai.NewClient(reqOpts...), model: model}, nil
}

// Rank implements oracle.Provider. It sends the query and candidate set to
// the model with temperature 0 and returns the model's answer verbatim
// (trimmed). Validation against the candidate set is the caller's job.
func (o *Oracle) Rank(ctx context.Context, query string, candidates []oracle.Candidate) (string, error) {
	prompt, err := oracle.BuildPrompt(query, candidates)
	if err != nil {
		return "", err
	}

	resp, err := o.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: shared.ChatModel(o.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(oracle.SystemPrompt),
			oai.UserMessage(prompt),
		},
		Temperature:         param.NewOpt(0.0),
		MaxCompletionTokens: param.NewOpt(int64(rankMaxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty choices in response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
