package profile

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// PendingConfirmation records the single outstanding contradiction for a
// session. At most one exists at a time; a second conflicting field detected
// in the same turn is deferred until this one is resolved.
type PendingConfirmation struct {
	Field    Field `json:"field"`
	OldValue any   `json:"old_value"`
	NewValue any   `json:"new_value"`
}

// Conflict describes a contradiction surfaced by [Merge] during one turn.
// The new value has NOT been applied to the profile; it is held in the
// returned pending confirmation instead.
type Conflict struct {
	Field    Field
	OldValue any
	NewValue any
}

// Merge applies updates into p and returns the resulting pending confirmation
// plus the conflict raised this turn, if any.
//
// Semantics:
//
//   - If pending is set and updates re-supply the same field, the new value is
//     accepted unconditionally and pending is cleared. Repeating a field after
//     being asked "which is right?" counts as confirmation.
//   - For every other update: a critical field whose existing value differs
//     from the new one raises a conflict. Updates are walked in declared
//     field order, and only the first conflict is reported; its field is left
//     untouched. All non-conflicting updates in the same batch are applied
//     immediately.
//   - Nil update values are skipped.
//
// p is mutated in place. Merge never removes fields.
func Merge(p Profile, pending *PendingConfirmation, updates map[Field]any) (*PendingConfirmation, *Conflict) {
	if p == nil {
		return pending, nil
	}

	if pending != nil {
		if v, ok := updates[pending.Field]; ok && v != nil {
			p[pending.Field] = v
			pending = nil
		}
	}

	var conflict *Conflict
	for _, f := range orderedFields(updates) {
		v := updates[f]
		if v == nil {
			continue
		}

		old, exists := p[f]
		if exists && old != nil && IsCritical(f) && valuesDiffer(old, v) {
			if conflict == nil {
				conflict = &Conflict{Field: f, OldValue: old, NewValue: v}
				pending = &PendingConfirmation{Field: f, OldValue: old, NewValue: v}
			}
			// Hold the conflicting value; a second simultaneous conflict is
			// silently deferred until the first is resolved.
			continue
		}

		p[f] = v
	}

	if conflict != nil {
		slog.Info("profile conflict",
			"field", conflict.Field,
			"old", conflict.OldValue,
			"new", conflict.NewValue,
		)
	}
	return pending, conflict
}

// orderedFields returns the update keys in declared field order, with any
// fields outside the canonical set appended in lexical order.
func orderedFields(updates map[Field]any) []Field {
	fields := make([]Field, 0, len(updates))
	for _, f := range fieldOrder {
		if _, ok := updates[f]; ok {
			fields = append(fields, f)
		}
	}
	if len(fields) < len(updates) {
		var extra []Field
		for f := range updates {
			if !slices.Contains(fieldOrder, f) {
				extra = append(extra, f)
			}
		}
		slices.Sort(extra)
		fields = append(fields, extra...)
	}
	return fields
}

// valuesDiffer reports whether old and next are semantically different.
// Typographically distinct but equal values (42 vs "42", "Male" vs "male ")
// must not be flagged as contradictions.
func valuesDiffer(old, next any) bool {
	if old == next {
		return false
	}
	if strings.EqualFold(trimmed(stringify(old)), trimmed(stringify(next))) {
		return false
	}
	of, oOK := toFloat(old)
	nf, nOK := toFloat(next)
	if oOK && nOK && of == nf {
		return false
	}
	return true
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	default:
		return fmt.Sprintf("%v", v)
	}
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
