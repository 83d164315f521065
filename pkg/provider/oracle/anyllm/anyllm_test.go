package anyllm

import (
	"testing"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
)

// TestNewEmptyProviderName checks that an empty provider name returns an error.
func TestNewEmptyProviderName(t *testing.T) {
	_, err := New("", "llama-3.1-8b-instant")
	if err == nil {
		t.Fatal("expected error for empty providerName")
	}
}

// TestNewEmptyModel checks that an empty model name returns an error.
func TestNewEmptyModel(t *testing.T) {
	_, err := New("groq", "")
	if err == nil {
		t.Fatal("expected error for empty model")
	}
}

// TestNewUnsupportedProvider checks that an unknown provider name is rejected.
func TestNewUnsupportedProvider(t *testing.T) {
	_, err := New("fakecloud", "some-model", anyllmlib.WithAPIKey("dummy"))
	if err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

// TestNewGroqWithAPIKey checks that the groq backend constructs with a key.
func TestNewGroqWithAPIKey(t *testing.T) {
	o, err := New("groq", "llama-3.1-8b-instant", anyllmlib.WithAPIKey("gsk-test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o == nil {
		t.Fatal("expected non-nil oracle")
	}
	if o.model != "llama-3.1-8b-instant" {
		t.Errorf("expected model llama-3.1-8b-instant, got %q", o.model)
	}
}

// TestNewOllamaNoAPIKey checks that Ollama works without an API key.
func TestNewOllamaNoAPIKey(t *testing.T) {
	o, err := New("ollama", "llama3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o == nil {
		t.Fatal("expected non-nil oracle")
	}
}

// TestNewCaseInsensitiveProviderName checks provider names are normalized.
func TestNewCaseInsensitiveProviderName(t *testing.T) {
	_, err := New("Groq", "llama-3.1-8b-instant", anyllmlib.WithAPIKey("gsk-test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
