package scheme

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/smarathe/yojanasetu/internal/extract"
	"github.com/smarathe/yojanasetu/internal/profile"
)

// Rule is one eligibility predicate. Each concrete rule declares which profile
// field it needs and evaluates a complete profile to zero or more failure
// reasons. Adding a predicate means adding a type here — a compile-time
// checked extension rather than a dictionary convention.
type Rule interface {
	// Field is the profile field this rule requires.
	Field() profile.Field

	// Check evaluates the rule against p and returns the failure reasons, in
	// Marathi, or an empty slice when the rule passes. Check must only be
	// called once p carries a value for Field.
	Check(p profile.Profile) []string
}

// RuleSet is the declarative rule block attached to a scheme. A nil/absent
// key means that predicate does not apply and its field is not required.
type RuleSet struct {
	MaxIncomeAnnual *int64   `yaml:"max_income_annual,omitempty" json:"max_income_annual,omitempty"`
	GenderEq        string   `yaml:"gender_eq,omitempty" json:"gender_eq,omitempty"`
	StateEq         string   `yaml:"state_eq,omitempty" json:"state_eq,omitempty"`
	OccupationIn    []string `yaml:"occupation_in,omitempty" json:"occupation_in,omitempty"`
	AgeMin          *int64   `yaml:"age_min,omitempty" json:"age_min,omitempty"`
	AgeMax          *int64   `yaml:"age_max,omitempty" json:"age_max,omitempty"`
}

// Rules compiles the rule set into its predicate list. The order is fixed —
// income, gender, state, occupation, age — so evaluation output is fully
// reproducible for a given profile/scheme pair.
func (rs RuleSet) Rules() []Rule {
	var rules []Rule
	if rs.MaxIncomeAnnual != nil {
		rules = append(rules, MaxIncomeRule{Limit: *rs.MaxIncomeAnnual})
	}
	if rs.GenderEq != "" {
		rules = append(rules, GenderRule{Want: rs.GenderEq})
	}
	if rs.StateEq != "" {
		rules = append(rules, StateRule{Want: rs.StateEq})
	}
	if len(rs.OccupationIn) > 0 {
		rules = append(rules, OccupationRule{Allowed: rs.OccupationIn})
	}
	if rs.AgeMin != nil || rs.AgeMax != nil {
		rules = append(rules, AgeRangeRule{Min: rs.AgeMin, Max: rs.AgeMax})
	}
	return rules
}

// RequiredFields lists the profile fields the rule set needs, in evaluation
// order, without duplicates.
func (rs RuleSet) RequiredFields() []profile.Field {
	var fields []profile.Field
	seen := make(map[profile.Field]struct{})
	for _, r := range rs.Rules() {
		f := r.Field()
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		fields = append(fields, f)
	}
	return fields
}

// ── Concrete predicates ──────────────────────────────────────────────────────

// MaxIncomeRule fails when the profile's annual income exceeds Limit.
type MaxIncomeRule struct {
	Limit int64
}

func (r MaxIncomeRule) Field() profile.Field { return profile.FieldIncome }

func (r MaxIncomeRule) Check(p profile.Profile) []string {
	v, _ := p.Get(profile.FieldIncome)
	income, ok := asInt(v)
	if !ok {
		return nil
	}
	if income > r.Limit {
		return []string{fmt.Sprintf("तुमचे उत्पन्न मर्यादेपेक्षा जास्त आहे (Max: ₹%d).", r.Limit)}
	}
	return nil
}

// GenderRule fails when the profile's gender differs from Want after both
// sides are canonicalized. A Want of "all" always passes.
type GenderRule struct {
	Want string
}

func (r GenderRule) Field() profile.Field { return profile.FieldGender }

func (r GenderRule) Check(p profile.Profile) []string {
	want := extract.CanonicalGender(r.Want)
	if want == "" || want == "all" {
		return nil
	}
	v, _ := p.Get(profile.FieldGender)
	got := extract.CanonicalGender(asString(v))
	if got != want {
		return []string{"ही योजना फक्त विशिष्ट लिंगासाठी आहे."}
	}
	return nil
}

// StateRule fails when the profile's state does not match Want. The match
// accepts canonical equality or either side containing the other, which
// tolerates partially transcribed state names.
type StateRule struct {
	Want string
}

func (r StateRule) Field() profile.Field { return profile.FieldState }

func (r StateRule) Check(p profile.Profile) []string {
	want := strings.ToLower(extract.CanonicalState(r.Want))
	if want == "" {
		return nil
	}
	v, _ := p.Get(profile.FieldState)
	got := strings.ToLower(extract.CanonicalState(asString(v)))
	if got == want || strings.Contains(got, want) || strings.Contains(want, got) {
		return nil
	}
	return []string{"ही योजना विशिष्ट राज्यासाठी आहे."}
}

// OccupationRule fails when the profile's occupation, after synonym folding,
// neither equals, contains, nor is contained in any allowed token.
type OccupationRule struct {
	Allowed []string
}

func (r OccupationRule) Field() profile.Field { return profile.FieldOccupation }

func (r OccupationRule) Check(p profile.Profile) []string {
	v, _ := p.Get(profile.FieldOccupation)
	got := extract.CanonicalOccupation(asString(v))
	for _, a := range r.Allowed {
		allowed := extract.CanonicalOccupation(a)
		if got == allowed || strings.Contains(got, allowed) || strings.Contains(allowed, got) {
			return nil
		}
	}
	return []string{"तुमचा व्यवसाय या योजनेसाठी पात्र नाही."}
}

// AgeRangeRule fails independently on each violated bound, producing one
// reason per bound so the citizen hears the concrete threshold.
type AgeRangeRule struct {
	Min *int64
	Max *int64
}

func (r AgeRangeRule) Field() profile.Field { return profile.FieldAge }

func (r AgeRangeRule) Check(p profile.Profile) []string {
	v, _ := p.Get(profile.FieldAge)
	age, ok := asInt(v)
	if !ok {
		return nil
	}
	var reasons []string
	if r.Min != nil && age < *r.Min {
		reasons = append(reasons, fmt.Sprintf("वय कमी आहे (किमान %d वर्षे).", *r.Min))
	}
	if r.Max != nil && age > *r.Max {
		reasons = append(reasons, fmt.Sprintf("वय जास्त आहे (कमाल %d वर्षे).", *r.Max))
	}
	return reasons
}

// ── value coercion ───────────────────────────────────────────────────────────

// asInt coerces store-roundtripped values (int64, float64 from JSON, numeric
// strings) to int64.
func asInt(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		return int64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
