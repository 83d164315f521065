package oracle

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SystemPrompt instructs the model to answer with a bare scheme id and
// nothing else. Shared by all LLM-backed oracle implementations.
const SystemPrompt = "You select the best scheme_id for the user query. Output only the scheme_id."

// BuildPrompt renders the user message sent to LLM-backed oracles: the raw
// query plus the candidate set as JSON, truncated to [MaxCandidates]. All
// implementations speak this identical protocol.
func BuildPrompt(query string, candidates []Candidate) (string, error) {
	if len(candidates) > MaxCandidates {
		candidates = candidates[:MaxCandidates]
	}
	payload, err := json.Marshal(candidates)
	if err != nil {
		return "", fmt.Errorf("oracle: marshal candidates: %w", err)
	}

	var b strings.Builder
	b.WriteString("User query (Marathi): ")
	b.WriteString(query)
	b.WriteString("\nCandidates JSON:\n")
	b.Write(payload)
	b.WriteString("\nReturn ONLY the best matching scheme_id from the candidates.")
	return b.String(), nil
}
