package actionprofile

import (
	"path/filepath"
	"strings"
)

// resolver turns raw path arguments into absolute, cleaned paths.
type resolver struct {
	cwd   string
	home  string
	roots []string
}

// resolve returns the absolute form of raw and whether it could be anchored.
// A relative path with no known working directory cannot be anchored.
func (r resolver) resolve(raw string) (string, bool) {
	p := strings.TrimSpace(raw)
	if p == "" {
		return "", false
	}
	p = expandHome(p, r.home)
	if filepath.IsAbs(p) {
		return filepath.Clean(p), true
	}
	if r.cwd == "" {
		return filepath.Clean(p), false
	}
	return filepath.Clean(filepath.Join(r.cwd, p)), true
}

// expandHome replaces a leading ~ or $HOME with home.
func expandHome(p, home string) string {
	if home == "" {
		return p
	}
	switch {
	case p == "~" || p == "$HOME" || p == "${HOME}":
		return home
	case strings.HasPrefix(p, "~/"):
		return filepath.Join(home, p[2:])
	case strings.HasPrefix(p, "$HOME/"):
		return filepath.Join(home, p[len("$HOME/"):])
	case strings.HasPrefix(p, "${HOME}/"):
		return filepath.Join(home, p[len("${HOME}/"):])
	}
	return p
}

// unboundedRawTargets are argument spellings with no effective boundary.
var unboundedRawTargets = map[string]bool{
	"/":       true,
	"/*":      true,
	"/.*":     true,
	"~":       true,
	"~/":      true,
	"~/*":     true,
	"$HOME":   true,
	"$HOME/":  true,
	"$HOME/*": true,
	"${HOME}": true,
	"*":       true,
	".*":      true,
	"./*":     true,
}

// isUnboundedTarget reports whether a recursive or destructive operation on
// raw (resolved to abs) has no effective boundary: filesystem root, home,
// a workspace root itself, a wildcard at one of those, or a target rooted at
// an unexpanded variable.
func (r resolver) isUnboundedTarget(raw, abs string) bool {
	raw = strings.TrimSpace(raw)
	if unboundedRawTargets[raw] {
		return true
	}
	if strings.HasPrefix(raw, "$") && !strings.HasPrefix(raw, "$HOME/") && !strings.HasPrefix(raw, "${HOME}/") {
		return true
	}
	base := abs
	if strings.HasSuffix(base, "/*") {
		base = strings.TrimSuffix(base, "/*")
		if base == "" {
			base = "/"
		}
	} else if base == "*" || strings.HasSuffix(base, "/.*") {
		base = filepath.Dir(base)
	}
	if base == "/" {
		return true
	}
	if r.home != "" && filepath.Clean(base) == filepath.Clean(r.home) {
		return true
	}
	for _, root := range r.roots {
		if root != "" && filepath.Clean(base) == filepath.Clean(root) {
			return true
		}
	}
	return false
}

// isDevicePath reports whether p names a block or raw device.
func isDevicePath(p string) bool {
	if !strings.HasPrefix(p, "/dev/") {
		return false
	}
	switch p {
	case "/dev/null", "/dev/stdout", "/dev/stderr", "/dev/stdin", "/dev/tty", "/dev/zero", "/dev/random", "/dev/urandom":
		return false
	}
	return true
}

// isPseudoPath reports redirect targets that touch nothing on disk.
func isPseudoPath(p string) bool {
	switch p {
	case "/dev/null", "/dev/stdout", "/dev/stderr", "/dev/tty":
		return true
	}
	return false
}
