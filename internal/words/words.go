// internal/words/words.go
//
// Word list management for the chain game.
//
// Responsibilities:
//   - Load per-category word lists from an environment-provided directory
//     or fall back to embedded defaults.
//   - Maintain per-category slices (natural order preserved — the computer
//     opponent's "easy" and "hard" policies depend on it).
//   - Supply lookups: List, Categories, IsCategory, Stats.
//
// Categories:
//   - "cities", "animals", "plants" — a closed set; a directory override
//     replaces the words of a known category, it cannot invent new ones.
//
// Initialization behavior (Init):
//   1. If WORDS_DIR is set, load <category>.txt from it for every category
//      that has such a file; categories without a file keep the embedded
//      defaults.
//   2. Otherwise use the embedded defaults for everything.
//
// Constraints:
//   • Words must be at least 2 letters after trimming.
//   • Original casing is preserved; case folding happens in the game core.
//   • Initialization is run once (sync.Once).

package words

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/avolkhin/wordchain/assets"
)

// CategoryNames is the closed set of playable categories, in menu order.
var CategoryNames = []string{"cities", "animals", "plants"}

const minEntryLength = 2

var (
	initOnce   sync.Once
	lists      map[string][]string // category → words in natural order
	initialErr error
)

// Init loads word lists exactly once.
// Returns an error if any category ends up empty.
func Init() error {
	initOnce.Do(func() {
		lists = make(map[string][]string, len(CategoryNames))
		dir := os.Getenv("WORDS_DIR")

		for _, cat := range CategoryNames {
			if dir != "" {
				path := filepath.Join(dir, cat+".txt")
				if list, err := readWordFile(path); err == nil && len(list) > 0 {
					lists[cat] = list
					continue
				}
			}
			list, err := assets.CategoryList(cat)
			if err != nil {
				initialErr = err
				return
			}
			lists[cat] = filterEntries(list)
		}

		for _, cat := range CategoryNames {
			if len(lists[cat]) == 0 {
				initialErr = errors.New("words: category " + cat + " is empty")
				return
			}
		}
	})
	return initialErr
}

// readWordFile loads one word per line from a file, trims whitespace,
// and keeps only entries of at least two letters.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.TrimSpace(sc.Text())
		if keepEntry(w) {
			out = append(out, w)
		}
	}
	return out, sc.Err()
}

// filterEntries drops entries that are too short to ever be a legal move.
func filterEntries(list []string) []string {
	out := make([]string, 0, len(list))
	for _, w := range list {
		if keepEntry(w) {
			out = append(out, w)
		}
	}
	return out
}

func keepEntry(w string) bool {
	return w != "" && !strings.HasPrefix(w, "#") && utf8.RuneCountInString(w) >= minEntryLength
}

// List returns the word list for a category in natural order.
// The returned slice must be treated as read-only.
func List(category string) ([]string, bool) {
	l, ok := lists[category]
	return l, ok
}

// IsCategory reports whether the given name is a playable category.
func IsCategory(name string) bool {
	_, ok := lists[name]
	return ok
}

// Categories returns the playable category names in menu order.
func Categories() []string {
	return append([]string(nil), CategoryNames...)
}

// Stats returns the number of words loaded per category.
func Stats() map[string]int {
	out := make(map[string]int, len(lists))
	for cat, l := range lists {
		out[cat] = len(l)
	}
	return out
}
