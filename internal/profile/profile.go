// Package profile holds the citizen profile model and the merge logic that
// applies newly extracted facts into it, detecting contradictions on fields
// whose value was already established in an earlier turn.
package profile

// Field identifies a single profile attribute (e.g. "age", "income_annual").
type Field string

// Canonical profile fields known to the turn engine.
const (
	FieldAge        Field = "age"
	FieldIncome     Field = "income_annual"
	FieldGender     Field = "gender"
	FieldState      Field = "state"
	FieldDistrict   Field = "district"
	FieldCategory   Field = "category"
	FieldOccupation Field = "occupation"
	FieldLand       Field = "land_holding_acres"
)

// fieldOrder fixes the order in which [Merge] walks a batch of updates, so
// the conflict surfaced to the citizen never depends on map iteration order.
var fieldOrder = []Field{
	FieldAge,
	FieldIncome,
	FieldGender,
	FieldState,
	FieldDistrict,
	FieldCategory,
	FieldOccupation,
	FieldLand,
}

// criticalFields are the fields for which a changed value across turns is
// treated as a contradiction requiring explicit confirmation by the citizen.
var criticalFields = map[Field]struct{}{
	FieldIncome:     {},
	FieldAge:        {},
	FieldGender:     {},
	FieldState:      {},
	FieldDistrict:   {},
	FieldCategory:   {},
	FieldOccupation: {},
	FieldLand:       {},
}

// IsCritical reports whether a contradiction on f must be confirmed before
// the new value is applied.
func IsCritical(f Field) bool {
	_, ok := criticalFields[f]
	return ok
}

// Profile is the per-session mapping of field name to scalar value. Values are
// int64 for numeric fields and string for the rest; a missing key means the
// field was never supplied. Profiles are created empty and only ever grow
// within a session.
type Profile map[Field]any

// New returns an empty profile.
func New() Profile {
	return Profile{}
}

// Get returns the value stored for f, or (nil, false) when unset.
func (p Profile) Get(f Field) (any, bool) {
	v, ok := p[f]
	return v, ok
}

// Set stores v under f. Callers should route multi-field updates through
// [Merge] instead so contradiction detection applies.
func (p Profile) Set(f Field, v any) {
	p[f] = v
}

// Has reports whether f carries a usable value: present, non-nil, and — for
// strings — non-blank after trimming.
func (p Profile) Has(f Field) bool {
	v, ok := p[f]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr {
		return trimmed(s) != ""
	}
	return true
}

// Clone returns a shallow copy of p. Scalar values make this a full copy.
func (p Profile) Clone() Profile {
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
