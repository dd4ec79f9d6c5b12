// internal/game/selector.go
//
// Word selection for the computer opponent.
// Pure: (list, used set, last word, difficulty, rng) → candidate or none.
// Display pacing and any artificial "thinking" delay belong to the caller.

package game

import (
	"math/rand"
	"strings"
	"unicode/utf8"
)

// SelectWord picks the computer's next word from list, or reports that no
// legal candidate exists.
//
// Candidates are list entries whose canonical form is unused and whose
// first letter continues the chain (any word when lastWord is empty).
//
// Policy by difficulty:
//   - easy:   first candidate in the list's natural order.
//   - hard:   longest candidate; on equal length the earlier one wins
//     (stable left-to-right scan, the list is never re-sorted).
//   - medium: uniformly random among candidates.
//
// lastWord must be in canonical (case-folded) form. rng may be nil for
// medium, in which case the shared global source is used.
func SelectWord(list []string, used map[string]struct{}, lastWord string, d Difficulty, rng *rand.Rand) (string, bool) {
	var chain rune
	if lastWord != "" {
		chain = lastRune(lastWord)
	}

	var candidates []string
	for _, w := range list {
		canon := Canonical(w)
		if _, seen := used[canon]; seen {
			continue
		}
		if chain != 0 && firstRune(canon) != chain {
			continue
		}
		candidates = append(candidates, w)
	}
	if len(candidates) == 0 {
		return "", false
	}

	switch d {
	case DifficultyEasy:
		return candidates[0], true
	case DifficultyHard:
		best := candidates[0]
		bestLen := utf8.RuneCountInString(best)
		for _, w := range candidates[1:] {
			if n := utf8.RuneCountInString(w); n > bestLen {
				best, bestLen = w, n
			}
		}
		return best, true
	default: // medium
		if rng != nil {
			return candidates[rng.Intn(len(candidates))], true
		}
		return candidates[rand.Intn(len(candidates))], true
	}
}

// Canonical returns the case-folded comparison form of a word.
func Canonical(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}
