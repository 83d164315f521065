// Package dialogue implements the turn decision engine: given one
// transcribed utterance and the session's current state it decides what the
// assistant says next, which tools run, and how the state advances.
//
// The engine has two modes. In slot-filling mode the session is locked onto
// one scheme and asks for missing profile fields one question at a time. In
// normal mode each utterance triggers scheme retrieval, best-scheme
// selection, and an eligibility check that either answers directly or enters
// slot-filling mode.
package dialogue

import (
	"github.com/smarathe/yojanasetu/internal/profile"
)

// SlotTask is the persisted slot-filling position: which scheme the session
// is locked onto, which fields are still missing, and which one the last
// question asked for. It survives store round-trips as JSON.
type SlotTask struct {
	SchemeID string          `json:"scheme_id"`
	Missing  []profile.Field `json:"missing"`
	Awaiting profile.Field   `json:"awaiting"`
}

// State is the dialogue state carried between turns. The zero value is the
// idle state: no slot task in progress and no application offer pending.
type State struct {
	Slot *SlotTask `json:"slot,omitempty"`
	// Offered is the scheme id of an eligible verdict whose reply asked
	// whether the citizen wants to apply. A confirming next utterance
	// submits an application for it; anything else withdraws the offer.
	Offered string `json:"offered_scheme,omitempty"`
}

// InSlotFilling reports whether the session is currently locked onto a
// scheme and collecting missing fields.
func (s State) InSlotFilling() bool {
	return s.Slot != nil && s.Slot.Awaiting != ""
}

// questions maps each profile field to the Marathi question the assistant
// asks for it.
var questions = map[profile.Field]string{
	profile.FieldAge:    "तुमचे वय किती आहे? फक्त नंबर सांगा.",
	profile.FieldIncome: "तुमचे वार्षिक उत्पन्न किती आहे? फक्त आकडा सांगा (उदा. 200000 किंवा 2 लाख).",
	profile.FieldGender: "तुमचे लिंग काय आहे? (महिला/पुरुष)",
	profile.FieldState:  "तुमचे राज्य कोणते? (उदा. महाराष्ट्र)",
}

// fallbackQuestion is asked for fields without a dedicated question.
const fallbackQuestion = "कृपया माहिती सांगा."

// QuestionFor returns the Marathi question asking for field.
func QuestionFor(field profile.Field) string {
	if q, ok := questions[field]; ok {
		return q
	}
	return fallbackQuestion
}
