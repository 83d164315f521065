package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/smarathe/yojanasetu/internal/apply"
	"github.com/smarathe/yojanasetu/internal/eligibility"
	"github.com/smarathe/yojanasetu/internal/extract"
	"github.com/smarathe/yojanasetu/internal/profile"
	"github.com/smarathe/yojanasetu/internal/rank"
	"github.com/smarathe/yojanasetu/internal/scheme"
)

// defaultConfidenceFloor is the STT confidence below which the engine asks
// the citizen to repeat instead of acting on the transcript.
const defaultConfidenceFloor = 0.35

// defaultRetrieveK is how many schemes retrieval returns in normal mode.
const defaultRetrieveK = 5

// Fixed Marathi replies.
const (
	lowConfidenceReply = "आवाज स्पष्ट नाही. कृपया पुन्हा हळू आणि स्पष्ट बोला."
	noSchemeReply      = "क्षमस्व, मला योग्य योजना सापडली नाही. कृपया तुमची गरज थोडी अधिक स्पष्ट सांगा."
	verdictErrorReply  = "पात्रता तपासतांना अडचण आली."
)

// SchemeStore persists the scheme a session locked onto so slot-filling can
// re-load it turns (or restarts) later. internal/sessionstore implementations
// satisfy it.
type SchemeStore interface {
	SaveScheme(ctx context.Context, s *scheme.Scheme) error
	GetScheme(ctx context.Context, id string) (*scheme.Scheme, bool, error)
}

// TurnInput is one transcribed utterance plus the session state it acts on.
// Profile is mutated in place; the caller persists it afterwards.
type TurnInput struct {
	SessionID  string
	Utterance  string
	Confidence float64
	Profile    profile.Profile
	State      State
}

// TurnResult is the engine's decision for one turn.
type TurnResult struct {
	Message string
	UI      UI
	Trace   []TraceEvent
	State   State
}

// Engine is the turn decision engine. Safe for concurrent use across
// sessions; a single session's turns must be processed sequentially.
type Engine struct {
	extractor *extract.Extractor
	ranker    *rank.Ranker
	corpus    *scheme.Corpus
	schemes   SchemeStore
	applier   *apply.Service

	confidenceFloor float64
	retrieveK       int
	log             *slog.Logger
}

// Option customizes an [Engine].
type Option func(*Engine)

// WithExtractor replaces the default fact extractor.
func WithExtractor(e *extract.Extractor) Option {
	return func(en *Engine) {
		if e != nil {
			en.extractor = e
		}
	}
}

// WithSchemeStore sets the store used to persist and re-load the scheme a
// session locked onto. Without it the engine falls back to corpus lookups.
func WithSchemeStore(s SchemeStore) Option {
	return func(en *Engine) {
		en.schemes = s
	}
}

// WithApplyService replaces the default application submission service.
func WithApplyService(a *apply.Service) Option {
	return func(en *Engine) {
		if a != nil {
			en.applier = a
		}
	}
}

// WithConfidenceFloor overrides the STT confidence floor. Defaults to 0.35.
func WithConfidenceFloor(floor float64) Option {
	return func(en *Engine) {
		en.confidenceFloor = floor
	}
}

// WithRetrieveK overrides how many schemes retrieval considers. Defaults to 5.
func WithRetrieveK(k int) Option {
	return func(en *Engine) {
		if k > 0 {
			en.retrieveK = k
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(log *slog.Logger) Option {
	return func(en *Engine) {
		if log != nil {
			en.log = log
		}
	}
}

// New builds a turn engine over the given corpus and ranker.
func New(corpus *scheme.Corpus, ranker *rank.Ranker, opts ...Option) *Engine {
	e := &Engine{
		extractor:       extract.New(),
		ranker:          ranker,
		corpus:          corpus,
		applier:         apply.New(nil),
		confidenceFloor: defaultConfidenceFloor,
		retrieveK:       defaultRetrieveK,
		log:             slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Turn processes one utterance and returns the assistant's reply, render
// payload, trace, and the advanced dialogue state. It never returns an
// error: every failure mode has a Marathi reply so the voice loop stays
// alive.
func (e *Engine) Turn(ctx context.Context, in TurnInput) TurnResult {
	if in.Confidence < e.confidenceFloor {
		e.log.Info("turn rejected on low confidence",
			"session_id", in.SessionID, "confidence", in.Confidence)
		return respond(in.State, lowConfidenceReply, UIIntentError, Plan{
			NextState:        planRespond,
			AssistantMessage: lowConfidenceReply,
			Questions:        []string{},
			UIIntent:         UIIntentError,
		}, nil, nil)
	}

	if in.State.InSlotFilling() {
		return e.slotTurn(ctx, in)
	}

	if offered := in.State.Offered; offered != "" {
		// The offer stands for exactly one turn either way.
		in.State.Offered = ""
		if isAffirmative(in.Utterance) {
			return e.applyTurn(ctx, in, offered)
		}
	}
	return e.retrievalTurn(ctx, in)
}

// applyTurn submits an application for the scheme the previous turn offered.
func (e *Engine) applyTurn(ctx context.Context, in TurnInput, schemeID string) TurnResult {
	st := in.State
	s := e.lookupScheme(ctx, schemeID)
	if s == nil {
		e.log.Warn("offered scheme vanished", "session_id", in.SessionID, "scheme_id", schemeID)
		return respond(st, verdictErrorReply, UIIntentError, Plan{
			NextState:        planRespond,
			AssistantMessage: verdictErrorReply,
			Questions:        []string{},
			UIIntent:         UIIntentError,
			SchemeID:         schemeID,
		}, nil, nil)
	}

	trace := []TraceEvent{{
		Kind:    TraceToolCall,
		Tool:    toolSubmitApplication,
		Payload: map[string]any{"scheme_id": schemeID},
	}}
	receipt := e.applier.Submit(in.Profile, s)
	trace = append(trace, TraceEvent{
		Kind:    TraceToolResult,
		Tool:    toolSubmitApplication,
		Payload: receipt,
	})

	msg := "✅ अर्ज सादर झाला!\n" + bulleted(receipt.NextSteps)
	plan := Plan{
		NextState:        planRespond,
		AssistantMessage: msg,
		Questions:        []string{},
		UIIntent:         UIIntentChat,
		SchemeID:         schemeID,
	}
	trace = append(trace, TraceEvent{Kind: TracePlan, Payload: plan})
	return TurnResult{
		Message: msg,
		UI: UI{
			Intent:    UIIntentChat,
			Questions: []string{},
			Cards:     []Card{{SchemeID: s.ID, Title: s.Name, Benefits: s.Benefits}},
		},
		Trace: trace,
		State: st,
	}
}

// slotTurn handles an answer to the question the previous turn asked.
func (e *Engine) slotTurn(ctx context.Context, in TurnInput) TurnResult {
	st := in.State
	slot := st.Slot
	awaiting := slot.Awaiting

	val, ok := e.extractor.ParseField(awaiting, in.Utterance)
	if !ok {
		// Could not parse the answer: repeat the same question.
		q := QuestionFor(awaiting)
		return respond(st, q, UIIntentQuestion, Plan{
			NextState:        planAskMissing,
			AssistantMessage: q,
			Questions:        []string{q},
			UIIntent:         UIIntentQuestion,
			SchemeID:         slot.SchemeID,
		}, []string{q}, nil)
	}

	in.Profile.Set(awaiting, val)

	missing := make([]profile.Field, 0, len(slot.Missing))
	for _, f := range slot.Missing {
		if f != awaiting {
			missing = append(missing, f)
		}
	}

	if len(missing) > 0 {
		st.Slot = &SlotTask{SchemeID: slot.SchemeID, Missing: missing, Awaiting: missing[0]}
		q := QuestionFor(missing[0])
		return respond(st, q, UIIntentQuestion, Plan{
			NextState:        planAskMissing,
			AssistantMessage: q,
			Questions:        []string{q},
			UIIntent:         UIIntentQuestion,
			SchemeID:         slot.SchemeID,
		}, []string{q}, nil)
	}

	// All questions answered: re-check eligibility against the locked scheme.
	st.Slot = nil
	s := e.lookupScheme(ctx, slot.SchemeID)
	if s == nil {
		e.log.Warn("locked scheme vanished", "session_id", in.SessionID, "scheme_id", slot.SchemeID)
		return respond(st, verdictErrorReply, UIIntentChat, Plan{
			NextState:        planRespond,
			AssistantMessage: verdictErrorReply,
			Questions:        []string{},
			UIIntent:         UIIntentChat,
			SchemeID:         slot.SchemeID,
		}, nil, nil)
	}

	verdict := eligibility.Evaluate(in.Profile, s)

	var msg string
	switch verdict.Status {
	case eligibility.StatusEligible:
		msg = fmt.Sprintf("✅ तुम्ही या योजनेसाठी पात्र आहात! लाभ: %s\nअर्ज करायचा आहे का?", s.Benefits)
		st.Offered = slot.SchemeID
	case eligibility.StatusNotEligible:
		msg = "❌ तुम्ही या योजनेसाठी पात्र नाही.\n" + bulleted(verdict.Reasons)
	default:
		msg = verdictErrorReply
	}

	res := respond(st, msg, UIIntentChat, Plan{
		NextState:        planRespond,
		AssistantMessage: msg,
		Questions:        []string{},
		UIIntent:         UIIntentChat,
		SchemeID:         slot.SchemeID,
	}, nil, &verdict)
	return res
}

// retrievalTurn handles a fresh query: retrieve, select, check, and either
// answer or enter slot-filling mode.
func (e *Engine) retrievalTurn(ctx context.Context, in TurnInput) TurnResult {
	trace := []TraceEvent{{
		Kind: TraceToolCall,
		Tool: toolSchemeRetrieval,
		Payload: map[string]any{
			"query_mr": in.Utterance,
			"k":        e.retrieveK,
		},
	}}

	results := e.ranker.Retrieve(in.Utterance, e.retrieveK)
	trace = append(trace, TraceEvent{
		Kind:    TraceToolResult,
		Tool:    toolSchemeRetrieval,
		Payload: map[string]any{"count": len(results)},
	})

	st := in.State
	if len(results) == 0 {
		plan := Plan{
			NextState:        planRespond,
			AssistantMessage: noSchemeReply,
			Questions:        []string{},
			UIIntent:         UIIntentError,
		}
		trace = append(trace, TraceEvent{Kind: TracePlan, Payload: plan})
		return TurnResult{
			Message: noSchemeReply,
			UI:      UI{Intent: UIIntentError, Questions: []string{}, Cards: []Card{}},
			Trace:   trace,
			State:   st,
		}
	}

	s := e.ranker.SelectBest(ctx, in.Utterance, results)
	if e.schemes != nil {
		if err := e.schemes.SaveScheme(ctx, s); err != nil {
			e.log.Warn("persist selected scheme", "scheme_id", s.ID, "error", err)
		}
	}

	trace = append(trace, TraceEvent{
		Kind:    TraceToolCall,
		Tool:    toolEligibilityCheck,
		Payload: map[string]any{"scheme_id": s.ID},
	})
	verdict := eligibility.Evaluate(in.Profile, s)
	trace = append(trace, TraceEvent{
		Kind:    TraceToolResult,
		Tool:    toolEligibilityCheck,
		Payload: verdict,
	})

	card := Card{SchemeID: s.ID, Title: s.Name, Benefits: s.Benefits}

	if verdict.Status == eligibility.StatusNeedsInfo && len(verdict.MissingFields) > 0 {
		st.Slot = &SlotTask{
			SchemeID: s.ID,
			Missing:  verdict.MissingFields,
			Awaiting: verdict.MissingFields[0],
		}
		q := QuestionFor(verdict.MissingFields[0])
		msg := fmt.Sprintf("%s साठी पात्रता तपासण्यासाठी:\n%s", s.Name, q)
		plan := Plan{
			NextState:        planAskMissing,
			AssistantMessage: msg,
			Questions:        []string{q},
			UIIntent:         UIIntentQuestion,
			SchemeID:         s.ID,
		}
		trace = append(trace, TraceEvent{Kind: TracePlan, Payload: plan})
		return TurnResult{
			Message: msg,
			UI: UI{
				Intent:      UIIntentQuestion,
				Questions:   []string{q},
				Cards:       []Card{card},
				Eligibility: &verdict,
			},
			Trace: trace,
			State: st,
		}
	}

	var msg string
	if verdict.Status == eligibility.StatusEligible {
		msg = fmt.Sprintf("✅ %s साठी तुम्ही पात्र आहात! लाभ: %s\nअर्ज करायचा आहे का?", s.Name, s.Benefits)
		st.Offered = s.ID
	} else {
		msg = "❌ तुम्ही पात्र नाही.\n" + bulleted(verdict.Reasons)
	}
	plan := Plan{
		NextState:        planRespond,
		AssistantMessage: msg,
		Questions:        []string{},
		UIIntent:         UIIntentChat,
		SchemeID:         s.ID,
	}
	trace = append(trace, TraceEvent{Kind: TracePlan, Payload: plan})
	return TurnResult{
		Message: msg,
		UI: UI{
			Intent:      UIIntentChat,
			Questions:   []string{},
			Cards:       []Card{card},
			Eligibility: &verdict,
		},
		Trace: trace,
		State: st,
	}
}

// lookupScheme loads a scheme by id, preferring the store (which holds what
// the session actually locked onto) over the static corpus.
func (e *Engine) lookupScheme(ctx context.Context, id string) *scheme.Scheme {
	if e.schemes != nil {
		s, ok, err := e.schemes.GetScheme(ctx, id)
		if err != nil {
			e.log.Warn("load scheme from store", "scheme_id", id, "error", err)
		} else if ok {
			return s
		}
	}
	if s, ok := e.corpus.Get(id); ok {
		return s
	}
	return nil
}

// respond assembles a single-plan TurnResult with no tool trace.
func respond(st State, msg string, intent UIIntent, plan Plan, uiQuestions []string, verdict *eligibility.Verdict) TurnResult {
	if uiQuestions == nil {
		uiQuestions = []string{}
	}
	return TurnResult{
		Message: msg,
		UI: UI{
			Intent:      intent,
			Questions:   uiQuestions,
			Cards:       []Card{},
			Eligibility: verdict,
		},
		Trace: []TraceEvent{{Kind: TracePlan, Payload: plan}},
		State: st,
	}
}

// affirmations are the tokens accepted as "yes, apply".
var affirmations = map[string]bool{
	"हो": true, "होय": true, "हा": true, "हं": true,
	"yes": true, "ho": true, "हवी": true, "हवा": true, "हवं": true,
}

// isAffirmative reports whether the utterance accepts the pending
// application offer. Matching is token-based so words that merely contain
// "हो" (e.g. "होते") do not count.
func isAffirmative(utterance string) bool {
	lower := strings.ToLower(utterance)
	if strings.Contains(lower, "अर्ज कर") {
		return true
	}
	for _, tok := range strings.Fields(lower) {
		if affirmations[strings.Trim(tok, ".,!?।")] {
			return true
		}
	}
	return false
}

// bulleted renders reasons as a Marathi bullet list.
func bulleted(reasons []string) string {
	items := make([]string, len(reasons))
	for i, r := range reasons {
		items[i] = "• " + r
	}
	return strings.Join(items, "\n")
}
