// Package eligibility implements the deterministic rule evaluator that turns
// a citizen profile and a scheme's rule set into a verdict: which required
// fields are still missing, or whether the citizen qualifies and why not.
//
// Evaluate is pure — no side effects, no stored state — so repeated calls
// with unchanged inputs return identical verdicts with identically ordered
// reasons.
package eligibility

import (
	"fmt"
	"strings"

	"github.com/smarathe/yojanasetu/internal/profile"
	"github.com/smarathe/yojanasetu/internal/scheme"
)

// Status is the outcome category of an eligibility evaluation.
type Status string

const (
	// StatusNeedsInfo means one or more required fields are unset; the
	// dialogue must collect them before a verdict is possible.
	StatusNeedsInfo Status = "needs_more_info"

	// StatusEligible means every rule passed.
	StatusEligible Status = "eligible"

	// StatusNotEligible means at least one rule failed.
	StatusNotEligible Status = "not_eligible"
)

// Verdict is the result of one evaluation. It is a computed value, never
// persisted across turns: any profile mutation invalidates it.
type Verdict struct {
	Status Status `json:"status"`

	// MissingFields lists every required-but-unset field in evaluation order.
	// Only populated for StatusNeedsInfo.
	MissingFields []profile.Field `json:"missing_fields"`

	// Reasons holds human-readable Marathi explanations: every accumulated
	// rule failure for StatusNotEligible, a single combined prompt for
	// StatusNeedsInfo, and one affirmative line for StatusEligible.
	Reasons []string `json:"reasons"`
}

// fieldLabels maps field names to the Marathi nouns used in the combined
// needs-more-info reason.
var fieldLabels = map[profile.Field]string{
	profile.FieldIncome:     "वार्षिक उत्पन्न",
	profile.FieldAge:        "वय",
	profile.FieldGender:     "लिंग",
	profile.FieldOccupation: "व्यवसाय",
	profile.FieldState:      "राज्य",
}

// Evaluate computes the verdict for p against s.
//
// Required fields derive solely from which rule keys are present on the
// scheme. Any required field that is unset (or blank) short-circuits to
// StatusNeedsInfo listing every such field — no rule runs until the profile
// is complete. With all fields present, every rule is evaluated in the fixed
// order income → gender → state → occupation → age and all failures are
// accumulated, never just the first.
func Evaluate(p profile.Profile, s *scheme.Scheme) Verdict {
	required := s.Rules.RequiredFields()

	var missing []profile.Field
	for _, f := range required {
		if !p.Has(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		labels := make([]string, len(missing))
		for i, f := range missing {
			label, ok := fieldLabels[f]
			if !ok {
				label = string(f)
			}
			labels[i] = label
		}
		return Verdict{
			Status:        StatusNeedsInfo,
			MissingFields: missing,
			Reasons: []string{
				fmt.Sprintf("पात्रता तपासण्यासाठी ही माहिती हवी आहे: %s", strings.Join(labels, ", ")),
			},
		}
	}

	var reasons []string
	for _, rule := range s.Rules.Rules() {
		reasons = append(reasons, rule.Check(p)...)
	}

	if len(reasons) > 0 {
		return Verdict{Status: StatusNotEligible, Reasons: reasons}
	}
	return Verdict{
		Status:  StatusEligible,
		Reasons: []string{"तुम्ही या योजनेसाठी पात्र आहात!"},
	}
}
