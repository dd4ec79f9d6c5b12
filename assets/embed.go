package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed cities.txt animals.txt plants.txt
var FS embed.FS

// readLines returns the non-empty, non-comment lines of an embedded file.
// Original casing is preserved; the game folds case only for comparison.
func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// CategoryList returns the embedded default word list for a category.
func CategoryList(category string) ([]string, error) {
	return readLines(category + ".txt")
}
