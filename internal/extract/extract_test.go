package extract

import (
	"testing"

	"github.com/smarathe/yojanasetu/internal/profile"
)

func TestParseFieldAge(t *testing.T) {
	t.Parallel()
	e := New()
	cases := []struct {
		utterance string
		want      int64
		ok        bool
	}{
		{"40", 40, true},
		{"माझे वय 40 आहे", 40, true},
		{"४०", 40, true},
		{"चाळीस", 40, true},
		{"पंचवीस", 25, true},
		{"125", 0, false},
		{"0", 0, false},
		{"काय म्हणालात?", 0, false},
	}
	for _, tc := range cases {
		v, ok := e.ParseField(profile.FieldAge, tc.utterance)
		if ok != tc.ok {
			t.Errorf("ParseField(age, %q) ok = %v, want %v", tc.utterance, ok, tc.ok)
			continue
		}
		if ok && v != tc.want {
			t.Errorf("ParseField(age, %q) = %v, want %d", tc.utterance, v, tc.want)
		}
	}
}

func TestParseFieldIncome(t *testing.T) {
	t.Parallel()
	e := New()
	cases := []struct {
		utterance string
		want      int64
		ok        bool
	}{
		{"2 लाख", 200_000, true},
		{"दोन लाख", 200_000, true},
		{"२ लाख", 200_000, true},
		{"50 हजार", 50_000, true},
		{"200000", 200_000, true},
		{"2,50,000", 250_000, true},
		// Bare numbers below the floor are likely monthly figures.
		{"500", 0, false},
		{"उत्पन्न नाही सांगता येत", 0, false},
	}
	for _, tc := range cases {
		v, ok := e.ParseField(profile.FieldIncome, tc.utterance)
		if ok != tc.ok {
			t.Errorf("ParseField(income, %q) ok = %v, want %v", tc.utterance, ok, tc.ok)
			continue
		}
		if ok && v != tc.want {
			t.Errorf("ParseField(income, %q) = %v, want %d", tc.utterance, v, tc.want)
		}
	}
}

func TestParseFieldIncomeFloorOverride(t *testing.T) {
	t.Parallel()
	e := New(WithIncomeFloor(100))
	v, ok := e.ParseField(profile.FieldIncome, "500")
	if !ok || v != int64(500) {
		t.Errorf("ParseField(income, 500) = %v, %v; want 500 with lowered floor", v, ok)
	}
}

func TestParseFieldGender(t *testing.T) {
	t.Parallel()
	e := New()
	cases := []struct {
		utterance string
		want      string
	}{
		{"महिला", "female"},
		{"मी स्त्री आहे", "female"},
		{"पुरुष", "male"},
		// "mail" is a common mistranscription of "male".
		{"mail", "male"},
	}
	for _, tc := range cases {
		v, ok := e.ParseField(profile.FieldGender, tc.utterance)
		if !ok || v != tc.want {
			t.Errorf("ParseField(gender, %q) = %v, %v; want %q", tc.utterance, v, ok, tc.want)
		}
	}
	if _, ok := e.ParseField(profile.FieldGender, "काही नाही"); ok {
		t.Error("unrecognized gender answer must not parse")
	}
}

func TestParseFieldState(t *testing.T) {
	t.Parallel()
	e := New()
	cases := []struct {
		utterance string
		want      string
	}{
		{"महाराष्ट्र", "Maharashtra"},
		{"मी महाराष्ट्रातून आहे", "Maharashtra"},
		{"महारास्ट्र", "Maharashtra"},
		{"karnataka", "Karnataka"},
		// Fuzzy: one dropped letter still resolves.
		{"maharashtr", "Maharashtra"},
	}
	for _, tc := range cases {
		v, ok := e.ParseField(profile.FieldState, tc.utterance)
		if !ok || v != tc.want {
			t.Errorf("ParseField(state, %q) = %v, %v; want %q", tc.utterance, v, ok, tc.want)
		}
	}
}

func TestParseFieldOccupation(t *testing.T) {
	t.Parallel()
	e := New()
	cases := []struct {
		utterance string
		want      string
	}{
		{"मी शेतकरी आहे", "farmer"},
		{"किसान", "farmer"},
		{"दुकानदार आहे", "trader"},
		// Both hinted in one utterance: the trader hint takes precedence.
		{"मी शेतकरी होतो, आता दुकानदार आहे", "trader"},
	}
	for _, tc := range cases {
		v, ok := e.ParseField(profile.FieldOccupation, tc.utterance)
		if !ok || v != tc.want {
			t.Errorf("ParseField(occupation, %q) = %v, %v; want %q", tc.utterance, v, ok, tc.want)
		}
	}
}

func TestFreeFormAnchoredNumbers(t *testing.T) {
	t.Parallel()
	e := New()

	got := e.FreeForm("माझे वय चाळीस आहे")
	if got[profile.FieldAge] != int64(40) {
		t.Errorf("age = %v, want 40", got[profile.FieldAge])
	}

	got = e.FreeForm("माझे वार्षिक उत्पन्न 2 लाख आहे")
	if got[profile.FieldIncome] != int64(200_000) {
		t.Errorf("income = %v, want 200000", got[profile.FieldIncome])
	}

	// A stray number without an anchor word must not be attributed.
	got = e.FreeForm("मला 500 रुपये मिळाले")
	if _, ok := got[profile.FieldAge]; ok {
		t.Error("unanchored number attributed to age")
	}
	if _, ok := got[profile.FieldIncome]; ok {
		t.Error("unanchored number attributed to income")
	}
}

func TestFreeFormMultipleFacts(t *testing.T) {
	t.Parallel()
	e := New()

	got := e.FreeForm("मी महिला आहे, महाराष्ट्रातून, शेती करते")
	if got[profile.FieldGender] != "female" {
		t.Errorf("gender = %v, want female", got[profile.FieldGender])
	}
	if got[profile.FieldState] != "Maharashtra" {
		t.Errorf("state = %v, want Maharashtra", got[profile.FieldState])
	}
	if got[profile.FieldOccupation] != "farmer" {
		t.Errorf("occupation = %v, want farmer", got[profile.FieldOccupation])
	}
}

func TestFreeFormEmpty(t *testing.T) {
	t.Parallel()
	e := New()
	if got := e.FreeForm("   "); got != nil {
		t.Errorf("FreeForm(blank) = %v, want nil", got)
	}
}

func TestCanonicalGender(t *testing.T) {
	t.Parallel()
	cases := []struct{ in, want string }{
		{"महिला", "female"},
		{"Female", "female"},
		{"पुरुष", "male"},
		{"all", "all"},
		{" Unknown ", "unknown"},
	}
	for _, tc := range cases {
		if got := CanonicalGender(tc.in); got != tc.want {
			t.Errorf("CanonicalGender(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalState(t *testing.T) {
	t.Parallel()
	cases := []struct{ in, want string }{
		{"महाराष्ट्र", "Maharashtra"},
		{"MAHARASHTRA", "Maharashtra"},
		{"दिल्ली", "Delhi"},
		{"Atlantis", "Atlantis"},
	}
	for _, tc := range cases {
		if got := CanonicalState(tc.in); got != tc.want {
			t.Errorf("CanonicalState(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestToASCIIDigits(t *testing.T) {
	t.Parallel()
	if got := toASCIIDigits("४० वर्ष"); got != "40 वर्ष" {
		t.Errorf("toASCIIDigits = %q, want ASCII digits", got)
	}
	if got := toASCIIDigits("plain"); got != "plain" {
		t.Errorf("toASCIIDigits must pass through text without Devanagari digits, got %q", got)
	}
}

func TestWordNumberPrefersLongestMatch(t *testing.T) {
	t.Parallel()
	// "पंचवीस" contains "वीस"; the compound must win.
	n, ok := wordNumber("पंचवीस")
	if !ok || n != 25 {
		t.Errorf("wordNumber(पंचवीस) = %d, %v; want 25", n, ok)
	}
}
