// Package normtext canonicalises titles and names for comparison. Tag
// titles, scraped track listings, and catalog results frequently disagree
// on width (ＡＢＣ vs ABC), case, punctuation, and spacing, so everything
// is folded down before any matching happens.
package normtext

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns s folded for comparison: NFKC compatibility
// normalisation (full-width and half-width variants compare equal),
// lowercased, punctuation stripped, whitespace runs collapsed to a single
// space, and trimmed. Idempotent, and "" in means "" out.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Similarity computes a character-bag similarity between a and b in [0, 1].
// It's the mean of the Jaccard index over unique runes and the ratio of the
// two lengths. Rune order is deliberately ignored, titles that went through
// romanisation or translation often come back with words reordered.
//
// Callers are expected to pass already [Normalize]d strings. Either input
// being empty scores 0.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	aset, bset := runeSet(a), runeSet(b)
	var intersection, union int
	for r := range aset {
		if _, ok := bset[r]; ok {
			intersection++
		}
		union++
	}
	for r := range bset {
		if _, ok := aset[r]; !ok {
			union++
		}
	}
	jaccard := float64(intersection) / float64(union)

	alen, blen := len([]rune(a)), len([]rune(b))
	lengthRatio := float64(min(alen, blen)) / float64(max(alen, blen))

	return (jaccard + lengthRatio) / 2
}

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}
