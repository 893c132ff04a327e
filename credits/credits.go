// Package credits matches scraped per-track credit listings against local
// track titles and formats them for writing back into tags.
package credits

import (
	"strings"

	"liner/normtext"
)

// SimilarityThreshold is the minimum [normtext.Similarity] for the
// similarity tier of [FindMatch]. Carried over from long use against real
// listings, not derived from anything.
const SimilarityThreshold = 0.8

// Record is one track row scraped from a product detail page. Roles maps
// the page's own label text (eg "作詞", "作曲", free text, no fixed set) to
// a comma-joined string of names. Field order and presence follow whatever
// the page had.
type Record struct {
	TrackNumber string
	Title       string
	Length      string
	Roles       map[string]string
}

// Role returns the names credited under label, or "" when the page didn't
// list that role.
func (r Record) Role(label string) string {
	return r.Roles[label]
}

// FindMatch finds the credit record for targetTitle. Tiers are tried in
// order, each over the full candidate list, first hit wins:
//
//  1. exact normalized title equality
//  2. similarity >= [SimilarityThreshold]
//  3. normalized title substring, either direction
//  4. a leading digit run of the raw targetTitle equal to the raw
//     TrackNumber field
//
// Records without a title are skipped in tiers 1-3 but still count for
// tier 4. No match is a normal outcome, ok == false.
func FindMatch(targetTitle string, records []Record) (Record, bool) {
	if targetTitle == "" || len(records) == 0 {
		return Record{}, false
	}

	target := normtext.Normalize(targetTitle)

	for _, rec := range records {
		if rec.Title == "" {
			continue
		}
		if normtext.Normalize(rec.Title) == target {
			return rec, true
		}
	}

	for _, rec := range records {
		title := normtext.Normalize(rec.Title)
		if title == "" {
			continue
		}
		if normtext.Similarity(target, title) >= SimilarityThreshold {
			return rec, true
		}
	}

	for _, rec := range records {
		title := normtext.Normalize(rec.Title)
		if title == "" {
			continue
		}
		if strings.Contains(title, target) || strings.Contains(target, title) {
			return rec, true
		}
	}

	if num := leadingDigits(targetTitle); num != "" {
		for _, rec := range records {
			if rec.TrackNumber == num {
				return rec, true
			}
		}
	}

	return Record{}, false
}

func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}
