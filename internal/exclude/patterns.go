package exclude

import (
	"fmt"
	"path"
	"strings"
)

// Matcher decides which local paths stay out of an upload. A nil Matcher
// excludes nothing.
type Matcher struct {
	patterns []string
}

// New compiles patterns. Blank entries are ignored; malformed globs are
// rejected up front rather than silently never matching.
func New(patterns []string) (*Matcher, error) {
	var cleaned []string
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		p = strings.TrimPrefix(p, "./")
		if strings.ContainsAny(p, "*?[]") {
			if _, err := path.Match(strings.TrimSuffix(p, "/"), ""); err != nil {
				return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
			}
		}
		cleaned = append(cleaned, p)
	}
	if len(cleaned) == 0 {
		return nil, nil
	}
	return &Matcher{patterns: cleaned}, nil
}

// Patterns returns the active patterns
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.patterns...)
}

// IsExcluded reports whether relPath (forward slashes, relative to the
// input root) matches any pattern.
//
//	dir/      the directory and everything below it
//	*.map     glob against the full path or the base name
//	name      exact path, path prefix, or file base name
func (m *Matcher) IsExcluded(relPath string, isDir bool) bool {
	if m == nil {
		return false
	}
	relPath = strings.TrimPrefix(relPath, "./")
	base := path.Base(relPath)

	for _, p := range m.patterns {
		if strings.HasSuffix(p, "/") {
			dirPattern := strings.TrimSuffix(p, "/")
			if matchDir(dirPattern, relPath, isDir) {
				return true
			}
			continue
		}
		if strings.ContainsAny(p, "*?[]") {
			if ok, _ := path.Match(p, relPath); ok {
				return true
			}
			if ok, _ := path.Match(p, base); ok {
				return true
			}
			continue
		}
		if relPath == p || strings.HasPrefix(relPath, p+"/") {
			return true
		}
		if !isDir && base == p {
			return true
		}
	}
	return false
}

// matchDir matches a directory pattern against relPath or any of its
// parent directories
func matchDir(pattern, relPath string, isDir bool) bool {
	if relPath == pattern || strings.HasPrefix(relPath, pattern+"/") {
		return true
	}
	if !strings.ContainsAny(pattern, "*?[]") {
		return false
	}
	segments := strings.Split(relPath, "/")
	last := len(segments)
	if !isDir {
		last--
	}
	for i := 1; i <= last; i++ {
		if ok, _ := path.Match(pattern, strings.Join(segments[:i], "/")); ok {
			return true
		}
		if ok, _ := path.Match(pattern, segments[i-1]); ok {
			return true
		}
	}
	return false
}
