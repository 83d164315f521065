// Package anyllm provides a ranking oracle backed by
// github.com/mozilla-ai/any-llm-go, a unified multi-provider interface that
// supports OpenAI, Anthropic, Gemini, Ollama, Groq, and more.
//
// Usage:
//
//	o, err := anyllm.New("groq", "llama-3.1-8b-instant", anyllmlib.WithAPIKey("gsk_..."))
//	id, err := o.Rank(ctx, query, candidates)
package anyllm

import (
	"context"
	"fmt"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/groq"
	"github.com/mozilla-ai/any-llm-go/providers/mistral"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/smarathe/yojanasetu/pkg/provider/oracle"
)

// rankMaxTokens caps the completion: a scheme id is a handful of tokens.
const rankMaxTokens = 32

// Oracle implements oracle.Provider by wrapping github.com/mozilla-ai/any-llm-go.
type Oracle struct {
	backend anyllmlib.Provider
	model   string
}

// Compile-time interface check.
var _ oracle.Provider = (*Oracle)(nil)

// New creates an Oracle backed by the given LLM provider name.
//
// providerName is one of: "openai", "anthropic", "gemini", "ollama", "groq",
// "mistral". model is the specific model to use (e.g. "llama-3.1-8b-instant").
// opts are any-llm-go configuration options; without an API key option the
// provider falls back to the relevant environment variable (GROQ_API_KEY,
// OPENAI_API_KEY, …).
func New(providerName, model string, opts ...anyllmlib.Option) (*Oracle, error) {
	if providerName == "" {
		return nil, fmt.Errorf("anyllm: providerName must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("anyllm: model must not be empty")
	}

	backend, err := createBackend(providerName, opts...)
	if err != nil {
		return nil, fmt.Errorf("anyllm: create %q backend: %w", providerName, err)
	}
	return &Oracle{backend: backend, model: model}, nil
}

// createBackend creates the underlying any-llm-go provider for providerName.
func createBackend(providerName string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch strings.ToLower(providerName) {
	case "openai":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "gemini":
		return gemini.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	case "groq":
		return groq.New(opts...)
	case "mistral":
		return mistral.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q; supported: openai, anthropic, gemini, ollama, groq, mistral", providerName)
	}
}

// Rank implements oracle.Provider. It sends the query and candidate set to
// the model with temperature 0 and returns the model's answer verbatim
// (trimmed). Validation against the candidate set is the caller's job.
func (o *Oracle) Rank(ctx context.Context, query string, candidates []oracle.Candidate) (string, error) {
	prompt, err := oracle.BuildPrompt(query, candidates)
	if err != nil {
		return "", err
	}

	temp := 0.0
	maxTokens := rankMaxTokens
	resp, err := o.backend.Completion(ctx, anyllmlib.CompletionParams{
		Model: o.model,
		Messages: []anyllmlib.Message{
			{Role: anyllmlib.RoleSystem, Content: oracle.SystemPrompt},
			{Role: anyllmlib.RoleUser, Content: prompt},
		},
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("anyllm: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("anyllm: empty choices in response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.ContentString()), nil
}
