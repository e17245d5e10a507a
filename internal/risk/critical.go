package risk

import (
	"path/filepath"
	"strings"

	"github.com/ppiankov/ladder/internal/model"
)

// defaultCriticalPaths are never editable without a PIN. Entries starting
// with ~ are expanded against the user's home directory.
var defaultCriticalPaths = []string{
	"/",
	"/etc",
	"/usr",
	"/bin",
	"/sbin",
	"/var",
	"/boot",
	"~/.ssh",
	"~/.aws",
	"~/.gnupg",
	"~/.config",
}

// DefaultCriticalPaths returns the built-in list, unexpanded.
func DefaultCriticalPaths() []string {
	out := make([]string, len(defaultCriticalPaths))
	copy(out, defaultCriticalPaths)
	return out
}

// CriticalPaths returns the built-in list plus extra, with ~ expanded.
// Home-relative entries are dropped when home is unknown.
func CriticalPaths(home string, extra []string) []string {
	all := append(DefaultCriticalPaths(), extra...)
	out := make([]string, 0, len(all))
	seen := make(map[string]bool, len(all))
	for _, p := range all {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if p == "~" || strings.HasPrefix(p, "~/") {
			if home == "" {
				continue
			}
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// IsCriticalPath reports whether path equals or is nested under a critical path.
// The root entry "/" matches only itself.
func IsCriticalPath(path string, critical []string) bool {
	_, ok := matchCritical(path, critical)
	return ok
}

func matchCritical(path string, critical []string) (string, bool) {
	if path == "" {
		return "", false
	}
	path = filepath.Clean(path)
	for _, c := range critical {
		if path == c {
			return c, true
		}
		if c != "/" && strings.HasPrefix(path, c+"/") {
			return c, true
		}
	}
	return "", false
}

// CheckCriticalPaths returns RiskPin when any touched path is critical.
// The second value names the matching critical path for the reason text.
func CheckCriticalPaths(paths []string, home string, extra []string) (model.RiskScore, string, bool) {
	critical := CriticalPaths(home, extra)
	for _, p := range paths {
		if c, ok := matchCritical(p, critical); ok {
			return model.RiskPin, c, true
		}
	}
	return model.RiskPass, "", false
}
