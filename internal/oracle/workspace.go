// Package oracle answers the filesystem questions the classifiers need:
// is a path inside the workspace, and is it tracked by git.
package oracle

import (
	"path/filepath"
	"strings"
)

// Workspace is a fixed set of workspace roots. Membership is lexical.
type Workspace struct {
	roots []string
}

// NewWorkspace cleans roots and drops empty or relative entries.
func NewWorkspace(roots ...string) *Workspace {
	w := &Workspace{}
	seen := map[string]bool{}
	for _, r := range roots {
		r = strings.TrimSpace(r)
		if r == "" || !filepath.IsAbs(r) {
			continue
		}
		r = filepath.Clean(r)
		if !seen[r] {
			seen[r] = true
			w.roots = append(w.roots, r)
		}
	}
	return w
}

// Roots returns a copy of the workspace roots.
func (w *Workspace) Roots() []string {
	out := make([]string, len(w.roots))
	copy(out, w.roots)
	return out
}

// IsPathWithinWorkspace reports whether path is a root or nested under one.
func (w *Workspace) IsPathWithinWorkspace(path string) bool {
	if path == "" || !filepath.IsAbs(path) {
		return false
	}
	path = filepath.Clean(path)
	for _, r := range w.roots {
		if path == r {
			return true
		}
		prefix := r
		if !strings.HasSuffix(prefix, string(filepath.Separator)) {
			prefix += string(filepath.Separator)
		}
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
