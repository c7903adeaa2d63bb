package assets

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExcludes skips the page script, which the bundler handles.
var DefaultExcludes = []string{"**/script.js"}

// Excluded reports whether relPath matches any of the glob patterns.
// Patterns are tried against the whole slash-separated path and against
// the file name alone, so "script.js" skips it at any depth.
func Excluded(relPath string, patterns []string) bool {
	normalized := filepath.ToSlash(relPath)
	base := filepath.Base(normalized)

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if matched, err := doublestar.PathMatch(pattern, normalized); err == nil && matched {
			return true
		}
		if matched, err := doublestar.PathMatch(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}
