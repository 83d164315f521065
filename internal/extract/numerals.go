package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// devanagariDigits maps Devanagari numerals to their ASCII equivalents.
// Marathi speech transcripts frequently mix both scripts within one utterance.
var devanagariDigits = strings.NewReplacer(
	"०", "0", "१", "1", "२", "2", "३", "3", "४", "4",
	"५", "5", "६", "6", "७", "7", "८", "8", "९", "9",
)

// numberWords is the closed vocabulary of spoken Marathi number words the
// extractor understands, covering 0–40 densely and round values up to 100.
// Matched as a fallback only when the utterance contains no digit run.
var numberWords = map[string]int{
	"शून्य": 0,
	"एक":    1, "एका": 1,
	"दोन": 2, "तीन": 3, "चार": 4, "पाच": 5,
	"सहा": 6, "सात": 7, "आठ": 8, "नऊ": 9, "दहा": 10,
	"अकरा": 11, "बारा": 12, "तेरा": 13, "चौदा": 14, "पंधरा": 15,
	"सोळा": 16, "सतरा": 17, "अठरा": 18, "एकोणीस": 19,
	"वीस": 20, "एकवीस": 21, "बावीस": 22, "तेवीस": 23, "चोवीस": 24,
	"पंचवीस": 25, "सव्वीस": 26, "सत्तावीस": 27, "अठ्ठावीस": 28, "एकोणतीस": 29,
	"तीस": 30, "एकतीस": 31, "बत्तीस": 32, "तेहतीस": 33, "चौतीस": 34,
	"पस्तीस": 35, "छत्तीस": 36, "सदतीस": 37, "अडतीस": 38, "एकोणचाळीस": 39,
	"चाळीस": 40, "पन्नास": 50, "साठ": 60, "सत्तर": 70,
	"ऐंशी": 80, "नव्वद": 90, "शंभर": 100,
}

var (
	numberPattern      = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	nonLetterPattern   = regexp.MustCompile(`[^a-z\x{0900}-\x{097F}]+`)
	devanagariDigitSet = "०१२३४५६७८९"
)

// toASCIIDigits rewrites any Devanagari numerals in text to ASCII digits.
// All numeric parsing must go through this first.
func toASCIIDigits(text string) string {
	if !strings.ContainsAny(text, devanagariDigitSet) {
		return text
	}
	return devanagariDigits.Replace(text)
}

// firstNumber extracts the first digit run from text, returning ok=false when
// the text contains no parseable number.
func firstNumber(text string) (float64, bool) {
	t := strings.ReplaceAll(toASCIIDigits(text), ",", "")
	m := numberPattern.FindString(t)
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// wordNumber scans text for a spoken Marathi number word. Longer words are
// checked first so compounds like "पंचवीस" win over their substring "वीस".
func wordNumber(text string) (int, bool) {
	best := ""
	val := 0
	for w, n := range numberWords {
		if strings.Contains(text, w) && len(w) > len(best) {
			best = w
			val = n
		}
	}
	return val, best != ""
}

// normalizeLetters lowercases text and strips everything except Latin and
// Devanagari letters. Used to line up noisy transcripts against canonical keys.
func normalizeLetters(text string) string {
	t := strings.ToLower(toASCIIDigits(text))
	return nonLetterPattern.ReplaceAllString(t, "")
}
