package extract

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// stateAliases maps multi-script state names and spellings to their canonical
// English form. Keys are matched after normalizeLetters, so casing and
// punctuation in the alias spelling are irrelevant.
var stateAliases = map[string]string{
	"महाराष्ट्र":     "Maharashtra",
	"maharashtra":    "Maharashtra",
	"कर्नाटक":        "Karnataka",
	"karnataka":      "Karnataka",
	"मध्यप्रदेश":     "Madhya Pradesh",
	"madhya pradesh": "Madhya Pradesh",
	"गुजरात":         "Gujarat",
	"gujarat":        "Gujarat",
	"तेलंगणा":        "Telangana",
	"telangana":      "Telangana",
	"तामिळनाडू":      "Tamil Nadu",
	"tamil nadu":     "Tamil Nadu",
	"दिल्ली":         "Delhi",
	"delhi":          "Delhi",
}

// maharashtraMisspellings lists transcription errors observed for the dominant
// state in production transcripts. Each maps directly to "Maharashtra" before
// any fuzzy matching runs.
var maharashtraMisspellings = []string{
	"महाराष्ट्र", "महारास्ट्र", "महारष्ट्र", "महराष्ट्र", "माराष्ट्र", "मारास्ट्र",
	"maharashtra", "maharastra",
}

// normalizedStateAliases is stateAliases rekeyed by normalizeLetters, built once.
var normalizedStateAliases = func() map[string]string {
	m := make(map[string]string, len(stateAliases))
	for k, v := range stateAliases {
		if nk := normalizeLetters(k); nk != "" {
			m[nk] = v
		}
	}
	return m
}()

// parseState resolves a noisy utterance to a canonical state name. Stages:
//
//  1. Normalized substring match against the alias table.
//  2. Curated misspelling list for Maharashtra.
//  3. Jaro-Winkler fuzzy match against alias keys, gated on short inputs so
//     long sentences cannot false-positive.
//  4. Last-resort fragment heuristic.
//
// Returns ("", false) when every stage fails.
func (e *Extractor) parseState(utterance string) (string, bool) {
	nt := normalizeLetters(utterance)
	if nt == "" {
		return "", false
	}

	for nk, canonical := range normalizedStateAliases {
		if strings.Contains(nt, nk) {
			return canonical, true
		}
	}

	for _, h := range maharashtraMisspellings {
		if nh := normalizeLetters(h); nh != "" && strings.Contains(nt, nh) {
			return "Maharashtra", true
		}
	}

	if len([]rune(nt)) <= e.fuzzyMaxLen {
		bestScore := 0.0
		bestState := ""
		for nk, canonical := range normalizedStateAliases {
			if s := matchr.JaroWinkler(nt, nk, false); s > bestScore {
				bestScore = s
				bestState = canonical
			}
		}
		if bestScore >= e.fuzzyCutoff {
			return bestState, true
		}
	}

	if strings.Contains(nt, "महा") && strings.Contains(nt, "राष्ट्र") {
		return "Maharashtra", true
	}

	return "", false
}
