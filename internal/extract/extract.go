// Package extract parses typed profile facts out of noisy, transcribed
// Marathi speech. It offers two entry points: ParseField interprets an entire
// utterance as the answer to a single known field (slot-filling mode), and
// FreeForm scans a full sentence for any facts it can attribute safely.
//
// Numeric parsing always normalizes Devanagari digits first and falls back to
// a closed vocabulary of spoken number words. State resolution layers exact
// alias lookup, curated misspellings, and Jaro-Winkler fuzzy matching.
package extract

import (
	"log/slog"
	"strings"

	"github.com/smarathe/yojanasetu/internal/profile"
)

const (
	// defaultIncomeFloor is the smallest bare number accepted as an annual
	// income when no scale word is present. Anything lower is more likely a
	// monthly figure and is rejected so the question gets re-asked.
	defaultIncomeFloor = 10_000

	// defaultFuzzyCutoff is the Jaro-Winkler similarity floor for fuzzy state
	// matching.
	defaultFuzzyCutoff = 0.84

	// defaultFuzzyMaxLen gates fuzzy state matching to short inputs (runes
	// after normalization). Long sentences would otherwise false-positive.
	defaultFuzzyMaxLen = 18

	minAge = 1
	maxAge = 120
)

// Option configures an [Extractor].
type Option func(*Extractor)

// WithIncomeFloor overrides the plausibility floor for bare income numbers.
func WithIncomeFloor(floor int64) Option {
	return func(e *Extractor) {
		e.incomeFloor = floor
	}
}

// WithFuzzyCutoff overrides the Jaro-Winkler similarity floor for state
// matching. Values outside (0, 1] are ignored.
func WithFuzzyCutoff(cutoff float64) Option {
	return func(e *Extractor) {
		if cutoff > 0 && cutoff <= 1 {
			e.fuzzyCutoff = cutoff
		}
	}
}

// WithFuzzyMaxLen overrides the maximum normalized input length (in runes)
// eligible for fuzzy state matching.
func WithFuzzyMaxLen(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.fuzzyMaxLen = n
		}
	}
}

// Extractor parses profile facts from utterances. It is read-only after
// construction and safe for concurrent use.
type Extractor struct {
	incomeFloor int64
	fuzzyCutoff float64
	fuzzyMaxLen int
}

// New returns an [Extractor] with the supplied options applied.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		incomeFloor: defaultIncomeFloor,
		fuzzyCutoff: defaultFuzzyCutoff,
		fuzzyMaxLen: defaultFuzzyMaxLen,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// ParseField interprets utterance as the answer to field. Returns
// (value, true) on success and (nil, false) when the answer cannot be parsed
// reliably — the caller must re-ask rather than guess.
func (e *Extractor) ParseField(field profile.Field, utterance string) (any, bool) {
	switch field {
	case profile.FieldAge:
		return e.parseAgeAny(utterance)
	case profile.FieldGender:
		return e.parseGenderAny(utterance)
	case profile.FieldState:
		return e.parseStateAny(utterance)
	case profile.FieldIncome:
		return e.parseIncomeAny(utterance)
	case profile.FieldOccupation:
		return e.parseOccupationAny(utterance)
	default:
		return nil, false
	}
}

// FreeForm scans a full sentence and returns every fact that can be safely
// attributed. Numeric fields require an anchor keyword (a word for age or
// income) before a number is attributed, so stray digits in unrelated
// sentences are not misread. Gender, state, and occupation vocabularies are
// distinctive enough to match without anchors.
func (e *Extractor) FreeForm(utterance string) map[profile.Field]any {
	t := strings.TrimSpace(utterance)
	if t == "" {
		return nil
	}

	updates := make(map[profile.Field]any)
	lower := strings.ToLower(t)

	if g, ok := e.parseGender(t); ok {
		updates[profile.FieldGender] = g
	}
	if s, ok := e.parseState(t); ok {
		updates[profile.FieldState] = s
	}

	if containsAny(t, "वय", "वर्ष") || strings.Contains(lower, "age") {
		if a, ok := e.parseAge(t); ok {
			updates[profile.FieldAge] = a
		}
	}
	if containsAny(t, "उत्पन्न", "वार्षिक") || strings.Contains(lower, "income") {
		if inc, ok := e.parseIncome(t); ok {
			updates[profile.FieldIncome] = inc
		}
	}
	if occ, ok := e.parseOccupation(t); ok {
		updates[profile.FieldOccupation] = occ
	}

	if len(updates) > 0 {
		slog.Debug("free-form facts extracted", "count", len(updates))
	}
	return updates
}

// parseAge extracts an age from utterance. Digits win over number words;
// values outside [1, 120] are rejected outright.
func (e *Extractor) parseAge(utterance string) (int64, bool) {
	n, ok := firstNumber(utterance)
	if !ok {
		w, wOK := wordNumber(utterance)
		if !wOK {
			return 0, false
		}
		n = float64(w)
	}
	age := int64(n)
	if age < minAge || age > maxAge {
		return 0, false
	}
	return age, true
}

// genderKeywords maps canonical gender values to the multi-script synonyms
// that select them. Female is checked first: "महिला" answers must not be
// swallowed by looser male patterns like the "mail" mistranscription.
var genderKeywords = []struct {
	value    string
	keywords []string
}{
	{"female", []string{"महिला", "स्त्री", "बाई", "female", "woman", "girl"}},
	{"male", []string{"पुरुष", "male", "man", "boy", "mail", "मेल"}},
	{"all", []string{"सर्व", "कोणतेही"}},
}

func (e *Extractor) parseGender(utterance string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(utterance))
	for _, g := range genderKeywords {
		for _, kw := range g.keywords {
			if strings.Contains(t, kw) {
				return g.value, true
			}
		}
	}
	return "", false
}

// parseIncome extracts an annual income in rupees. Scale words multiply the
// number ("लाख"/"lakh" ×100000, "हजार"/"thousand" ×1000). A bare number below
// the income floor is treated as unreliable — probably a monthly figure —
// and rejected rather than guessed at.
func (e *Extractor) parseIncome(utterance string) (int64, bool) {
	t := strings.ToLower(toASCIIDigits(strings.TrimSpace(utterance)))

	num, numOK := firstNumber(t)

	scale := int64(0)
	switch {
	case containsAny(t, "लाख", "lakh"):
		scale = 100_000
	case containsAny(t, "हजार", "thousand"):
		scale = 1_000
	}

	if scale > 0 {
		if !numOK {
			w, wOK := wordNumber(utterance)
			if !wOK {
				return 0, false
			}
			num = float64(w)
		}
		return int64(num * float64(scale)), true
	}

	if !numOK {
		return 0, false
	}
	val := int64(num)
	if val < e.incomeFloor {
		return 0, false
	}
	return val, true
}

// occupationKeywords maps spoken occupation hints to a canonical token.
var occupationKeywords = []struct {
	value    string
	keywords []string
}{
	{"farmer", []string{"शेतकरी", "शेती", "किसान", "farmer", "farming"}},
	{"trader", []string{"व्यापारी", "दुकानदार", "trader", "shopkeeper", "business"}},
}

// parseOccupation scans the whole keyword table; when hints for several
// occupations appear in one utterance the last table entry wins.
func (e *Extractor) parseOccupation(utterance string) (string, bool) {
	t := strings.ToLower(utterance)
	value, found := "", false
	for _, o := range occupationKeywords {
		for _, kw := range o.keywords {
			if strings.Contains(t, kw) {
				value, found = o.value, true
				break
			}
		}
	}
	return value, found
}

// any-typed wrappers so ParseField has a uniform signature.

func (e *Extractor) parseAgeAny(u string) (any, bool) {
	v, ok := e.parseAge(u)
	if !ok {
		return nil, false
	}
	return v, true
}

func (e *Extractor) parseGenderAny(u string) (any, bool) {
	v, ok := e.parseGender(u)
	if !ok {
		return nil, false
	}
	return v, true
}

func (e *Extractor) parseStateAny(u string) (any, bool) {
	v, ok := e.parseState(u)
	if !ok {
		return nil, false
	}
	return v, true
}

func (e *Extractor) parseIncomeAny(u string) (any, bool) {
	v, ok := e.parseIncome(u)
	if !ok {
		return nil, false
	}
	return v, true
}

func (e *Extractor) parseOccupationAny(u string) (any, bool) {
	v, ok := e.parseOccupation(u)
	if !ok {
		return nil, false
	}
	return v, true
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
