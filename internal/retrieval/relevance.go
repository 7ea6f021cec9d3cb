package retrieval

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinNormalizedScore is the relevance threshold a passage must clear after
// score normalization.
const MinNormalizedScore = 0.35

// stopwords are Spanish function words excluded from question terms.
var stopwords = map[string]struct{}{
	"el": {}, "la": {}, "los": {}, "las": {}, "un": {}, "una": {},
	"unos": {}, "unas": {}, "de": {}, "del": {}, "y": {}, "o": {},
	"u": {}, "a": {}, "en": {}, "por": {}, "para": {}, "con": {},
	"se": {}, "que": {}, "cual": {}, "cuales": {}, "como": {},
	"cuando": {}, "donde": {}, "porque": {}, "sobre": {}, "sin": {},
	"al": {}, "su": {}, "sus": {}, "mi": {}, "mis": {}, "tu": {},
	"tus": {}, "es": {}, "son": {}, "ser": {}, "esta": {}, "este": {},
	"estos": {}, "estas": {}, "lo": {}, "ya": {}, "si": {}, "no": {},
}

// stripMarks removes diacritics: decompose, drop combining marks, recompose.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FilterRelevant returns the subsequence of passages plausibly relevant to the
// question. A passage survives only when its normalized score clears
// MinNormalizedScore and, when question terms exist, at least one term appears
// as a token in the passage text. Input order is preserved; this is a filter,
// not a re-ranker.
func FilterRelevant(question string, passages []Passage) []Passage {
	terms := ExtractTerms(question)

	kept := make([]Passage, 0, len(passages))
	for _, p := range passages {
		if NormalizeScore(p.Score) < MinNormalizedScore {
			continue
		}
		if !hasOverlap(terms, p.Text) {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// NormalizeScore maps a raw backend score into [0,1]. Values already in [0,1]
// pass through, negatives clamp to 0, and values above 1 are read as distances
// and mapped via 1/(1+v). A missing or non-finite score normalizes to 0.
func NormalizeScore(score *float64) float64 {
	if score == nil {
		return 0
	}
	v := *score
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v >= 0 && v <= 1 {
		return v
	}
	if v < 0 {
		return 0
	}
	return 1 / (1 + v)
}

// ExtractTerms tokenizes a question into de-duplicated lookup terms: diacritics
// stripped, lower-cased, split on non-alphanumeric runs, tokens shorter than
// three characters and Spanish stop-words dropped.
func ExtractTerms(question string) []string {
	words := tokenize(question)
	seen := make(map[string]struct{}, len(words))
	terms := make([]string, 0, len(words))
	for _, word := range words {
		if _, stop := stopwords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		terms = append(terms, word)
	}
	return terms
}

// hasOverlap reports whether any term occurs as a token in the text. An empty
// term set vacuously matches every passage.
func hasOverlap(terms []string, text string) bool {
	if len(terms) == 0 {
		return true
	}
	tokens := make(map[string]struct{})
	for _, word := range tokenize(text) {
		tokens[word] = struct{}{}
	}
	for _, term := range terms {
		if _, ok := tokens[term]; ok {
			return true
		}
	}
	return false
}

// tokenize normalizes text and splits it into tokens of three or more
// lower-case alphanumeric characters.
func tokenize(text string) []string {
	plain := normalizePlain(text)
	fields := strings.FieldsFunc(plain, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= 3 {
			words = append(words, f)
		}
	}
	return words
}

func normalizePlain(text string) string {
	stripped, _, err := transform.String(stripMarks, text)
	if err != nil {
		stripped = text
	}
	return strings.ToLower(stripped)
}
