package extract

import "strings"

// CanonicalGender maps a multi-script gender spelling to its canonical value
// ("male", "female", "all"). Unrecognized inputs come back lowercased and
// trimmed so equality checks remain well-defined.
func CanonicalGender(s string) string {
	t := strings.ToLower(strings.TrimSpace(s))
	for _, g := range genderKeywords {
		if t == g.value {
			return g.value
		}
		for _, kw := range g.keywords {
			if strings.Contains(t, kw) {
				return g.value
			}
		}
	}
	return t
}

// CanonicalState resolves a state spelling through the alias table. When the
// alias table has no answer the trimmed input is returned unchanged, which
// lets callers fall back to substring comparison.
func CanonicalState(s string) string {
	nt := normalizeLetters(s)
	if canonical, ok := normalizedStateAliases[nt]; ok {
		return canonical
	}
	for nk, canonical := range normalizedStateAliases {
		if nt != "" && strings.Contains(nt, nk) {
			return canonical
		}
	}
	return strings.TrimSpace(s)
}

// CanonicalOccupation folds common occupation synonyms (including
// farmer-family terms in two scripts) to a normalized token. Unrecognized
// inputs come back lowercased and trimmed.
func CanonicalOccupation(s string) string {
	t := strings.ToLower(strings.TrimSpace(s))
	for _, o := range occupationKeywords {
		if t == o.value {
			return o.value
		}
		for _, kw := range o.keywords {
			if strings.Contains(t, kw) {
				return o.value
			}
		}
	}
	return t
}
