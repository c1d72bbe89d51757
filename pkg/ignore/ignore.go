// Package ignore provides gitignore-style filtering of spec files using go-git
package ignore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// FileName is the project-level ignore file consulted next to .gitignore.
const FileName = ".rgdignore"

// Matcher filters paths relative to a project root
type Matcher struct {
	root    string
	matcher gitignore.Matcher
}

// NewMatcher creates a matcher with layered ignore files:
// 1. built-in defaults (.git, editor swap files)
// 2. .gitignore files found under root
// 3. root/.rgdignore
func NewMatcher(root string) (*Matcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve ignore root: %w", err)
	}

	var patterns []gitignore.Pattern
	for _, p := range []string{".git/**", "*.swp", "*~"} {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}

	if gitPatterns, err := gitignore.ReadPatterns(osfs.New(abs), nil); err == nil {
		patterns = append(patterns, gitPatterns...)
	}

	if rgdPatterns, err := readIgnoreFile(filepath.Join(abs, FileName)); err == nil {
		for _, p := range rgdPatterns {
			patterns = append(patterns, gitignore.ParsePattern(p, nil))
		}
	}

	return &Matcher{root: abs, matcher: gitignore.NewMatcher(patterns)}, nil
}

// readIgnoreFile reads patterns from a text file (like .rgdignore)
func readIgnoreFile(path string) ([]string, error) {
	cleaned := filepath.Clean(path)
	if filepath.Base(cleaned) != FileName {
		return nil, fmt.Errorf("disallowed ignore file path: %s", cleaned)
	}
	content, err := os.ReadFile(cleaned) // #nosec G304 -- path cleaned and allowlisted
	if err != nil {
		return nil, err
	}

	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, nil
}

// IsIgnored reports whether path (absolute or relative to the matcher root)
// is excluded.
func (m *Matcher) IsIgnored(path string, isDir bool) bool {
	if m == nil {
		return false
	}
	parts := m.split(path)
	if len(parts) == 0 {
		return false
	}
	return m.matcher.Match(parts, isDir)
}

func (m *Matcher) split(path string) []string {
	rel := path
	if filepath.IsAbs(path) {
		r, err := filepath.Rel(m.root, path)
		if err != nil {
			return nil
		}
		rel = r
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == "" || strings.HasPrefix(rel, "../") {
		return nil
	}

	var out []string
	for _, part := range strings.Split(strings.TrimPrefix(rel, "/"), "/") {
		if part != "" && part != "." {
			out = append(out, part)
		}
	}
	return out
}
