package dialogue

import "github.com/smarathe/yojanasetu/internal/eligibility"

// UIIntent tells the client how to render an assistant message.
type UIIntent string

const (
	// UIIntentChat renders a plain assistant reply, optionally with scheme
	// cards and an eligibility verdict.
	UIIntentChat UIIntent = "chat"
	// UIIntentQuestion highlights that the assistant is waiting for a
	// specific answer.
	UIIntentQuestion UIIntent = "question"
	// UIIntentError marks replies asking the citizen to retry.
	UIIntentError UIIntent = "error"
)

// Card is one scheme summary shown alongside an assistant message.
type Card struct {
	SchemeID string `json:"scheme_id"`
	Title    string `json:"title"`
	Benefits string `json:"benefits"`
}

// UI is the render payload that accompanies every assistant message.
type UI struct {
	Intent      UIIntent             `json:"ui_intent"`
	Questions   []string             `json:"questions_mr"`
	Cards       []Card               `json:"cards"`
	Eligibility *eligibility.Verdict `json:"eligibility,omitempty"`
}

// Plan is the engine's decision record for one turn, emitted to the client
// as a trace event so the UI can show what the agent is doing.
type Plan struct {
	NextState        string   `json:"next_state"`
	AssistantMessage string   `json:"assistant_message_mr"`
	Questions        []string `json:"questions_mr"`
	UIIntent         UIIntent `json:"ui_intent"`
	SchemeID         string   `json:"scheme_id,omitempty"`
}

// Plan next_state values.
const (
	planRespond    = "RESPOND"
	planAskMissing = "ASK_MISSING"
)

// TraceKind discriminates trace events.
type TraceKind string

const (
	TraceToolCall   TraceKind = "tool_call"
	TraceToolResult TraceKind = "tool_result"
	TracePlan       TraceKind = "plan"
)

// TraceEvent is one step of the engine's visible reasoning: a tool
// invocation, its result, or the final plan. Payload is JSON-marshalable.
type TraceEvent struct {
	Kind    TraceKind `json:"type"`
	Tool    string    `json:"tool,omitempty"`
	Payload any       `json:"payload,omitempty"`
}

// Tool names used in trace events.
const (
	toolSchemeRetrieval   = "scheme_retrieval"
	toolEligibilityCheck  = "eligibility_check"
	toolSubmitApplication = "submit_application"
)
