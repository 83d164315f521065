package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smarathe/yojanasetu/pkg/provider/oracle"
)

func TestNewRequiresAPIKey(t *testing.T) {
	t.Parallel()

	if _, err := New("", "gpt-4o-mini"); err == nil {
		t.Fatal("New with empty apiKey should fail")
	}
}

func TestNewRequiresModel(t *testing.T) {
	t.Parallel()

	if _, err := New("sk-test", ""); err == nil {
		t.Fatal("New with empty model should fail")
	}
}

func TestRankReturnsTrimmedAnswer(t *testing.T) {
	t.Parallel()

	var gotBody struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [
				{"index": 0, "message": {"role": "assistant", "content": "  pm_kisan\n"}, "finish_reason": "stop"}
			]
		}`))
	}))
	defer ts.Close()

	o, err := New("sk-test", "gpt-4o-mini", WithBaseURL(ts.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	answer, err := o.Rank(context.Background(), "शेतकरी मदत", []oracle.Candidate{
		{SchemeID: "pm_kisan", Name: "पीएम किसान"},
		{SchemeID: "pmjay", Name: "आयुष्मान भारत"},
	})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if answer != "pm_kisan" {
		t.Errorf("answer = %q, want %q", answer, "pm_kisan")
	}

	if gotBody.Model != "gpt-4o-mini" {
		t.Errorf("request model = %q, want %q", gotBody.Model, "gpt-4o-mini")
	}
	if len(gotBody.Messages) != 2 {
		t.Fatalf("request carried %d messages, want 2", len(gotBody.Messages))
	}
	if gotBody.Messages[0].Role != "system" || gotBody.Messages[0].Content != oracle.SystemPrompt {
		t.Errorf("first message should be the system prompt, got role=%q", gotBody.Messages[0].Role)
	}
	if gotBody.Messages[1].Role != "user" {
		t.Errorf("second message role = %q, want user", gotBody.Messages[1].Role)
	}
}

func TestRankEmptyChoices(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "chatcmpl-2", "object": "chat.completion", "choices": []}`))
	}))
	defer ts.Close()

	o, err := New("sk-test", "gpt-4o-mini", WithBaseURL(ts.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := o.Rank(context.Background(), "query", []oracle.Candidate{{SchemeID: "a"}}); err == nil {
		t.Fatal("Rank with empty choices should fail")
	}
}
