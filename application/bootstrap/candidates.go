package bootstrap

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ExpandCandidates resolves the configured candidates against fsys. Plain
// paths are kept as they are, whether or not they exist, so the menu matches
// the configuration. Patterns are replaced by their sorted matches; a pattern
// matching nothing contributes nothing. Duplicates keep their first position.
// Absolute candidates and candidates escaping fsys with ".." resolve against
// the process working directory instead.
func ExpandCandidates(fsys fs.FS, candidates []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, c := range candidates {
		if !isPattern(c) {
			add(c)
			continue
		}

		pattern := path.Clean(filepath.ToSlash(c))
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid candidate pattern %q", c)
		}
		var matches []string
		var err error
		if fs.ValidPath(pattern) {
			matches, err = doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		} else {
			matches, err = doublestar.FilepathGlob(filepath.Clean(c), doublestar.WithFilesOnly())
		}
		if err != nil {
			return nil, fmt.Errorf("failed to expand %q: %w", c, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(m)
		}
	}
	return out, nil
}

// readModule reads a candidate from fsys, or from the operating system when
// the candidate is not a path fsys can name.
func readModule(fsys fs.FS, candidate string) ([]byte, error) {
	if name := path.Clean(filepath.ToSlash(candidate)); fs.ValidPath(name) {
		return fs.ReadFile(fsys, name)
	}
	return os.ReadFile(candidate)
}

func isPattern(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}
