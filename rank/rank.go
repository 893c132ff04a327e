// Package rank picks the best of a list of candidates by an integer score.
package rank

// Select scores every item and returns the one with the highest score.
// Selection is stable, when several items tie for the maximum the earliest
// in input order wins. An empty input returns ok == false; scores are only
// meaningful relative to each other within a single call.
func Select[T any](items []T, score func(T) int) (best T, ok bool) {
	if len(items) == 0 {
		return best, false
	}
	best, bestScore := items[0], score(items[0])
	for _, item := range items[1:] {
		if s := score(item); s > bestScore {
			best, bestScore = item, s
		}
	}
	return best, true
}
