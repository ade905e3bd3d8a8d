package discovery

import (
	"path/filepath"
	"strings"
)

// Filter narrows a descriptor list down by file name
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName keeps the descriptors whose file name matches pattern.
// Supports patterns like "*Regression*.ilproj" or "GitHub_*"; a pattern
// without wildcards is a substring match.
func (f *Filter) FilterByName(paths []string, pattern string) []string {
	if pattern == "" {
		return paths
	}

	var filtered []string
	for _, path := range paths {
		name := filepath.Base(path)
		if matchName(name, pattern) {
			filtered = append(filtered, path)
		}
	}
	return filtered
}

func matchName(name, pattern string) bool {
	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(name, pattern)
	}
	if !strings.Contains(pattern, "*") {
		return false
	}

	// Loose match for patterns like "*Payment*": every literal part, in order
	rest := name
	nonEmpty := false
	for _, part := range strings.Split(pattern, "*") {
		if part == "" {
			continue
		}
		nonEmpty = true
		i := strings.Index(rest, part)
		if i < 0 {
			return false
		}
		rest = rest[i+len(part):]
	}
	return nonEmpty
}
