package rank

import (
	"strings"
	"unicode"
)

// stopwords are Marathi/Hinglish filler and generic domain words that dilute
// relevance: politeness, pronouns, and words like "scheme" that appear in
// every query and every document.
var stopwords = map[string]struct{}{
	"मला": {}, "मी": {}, "माझा": {}, "माझी": {}, "माझं": {},
	"हवी": {}, "हव्या": {}, "आहे": {}, "आहेत": {}, "हवं": {}, "हवे": {},
	"साठी": {}, "करिता": {}, "कृपया": {}, "प्लीज": {}, "माहिती": {}, "बद्दल": {},
	"योजना": {}, "सरकारी": {}, "govt": {}, "apply": {}, "अर्ज": {},
	"करा": {}, "करायचा": {}, "करणे": {}, "हवीये": {},
	"chahiye": {}, "chaiye": {}, "please": {},
	"scheme": {}, "yojana": {}, "info": {}, "details": {},
}

// tokenize lowercases text, strips punctuation while keeping multi-script
// word characters, and drops tokens shorter than two runes plus stop words.
func tokenize(text string) []string {
	t := strings.ToLower(text)
	fields := strings.FieldsFunc(t, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < 2 {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
