package oracle

import (
	"context"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
)

// DefaultGitTimeout bounds one git ls-files call.
const DefaultGitTimeout = 2 * time.Second

// GitRunner checks whether path is tracked in the repository containing dir.
// A nil error means tracked.
type GitRunner func(ctx context.Context, dir, path string) error

// GitTracker answers "is this path tracked by git", caching answers.
// Any failure (no git, not a repo, timeout) counts as not tracked.
type GitTracker struct {
	Timeout time.Duration
	Run     GitRunner

	mu    sync.Mutex
	cache map[string]bool
}

// NewGitTracker returns a tracker that shells out to git.
func NewGitTracker() *GitTracker {
	return &GitTracker{
		Timeout: DefaultGitTimeout,
		Run:     lsFiles,
		cache:   make(map[string]bool),
	}
}

func lsFiles(ctx context.Context, dir, path string) error {
	cmd := exec.CommandContext(ctx, "git", "-C", dir, "ls-files", "--error-unmatch", "--", path)
	return cmd.Run()
}

// IsTracked reports whether path is tracked. Paths that do not exist are
// checked from their nearest existing parent directory by git itself.
func (g *GitTracker) IsTracked(ctx context.Context, path string) bool {
	if path == "" || !filepath.IsAbs(path) {
		return false
	}
	path = filepath.Clean(path)

	g.mu.Lock()
	if g.cache == nil {
		g.cache = make(map[string]bool)
	}
	if v, ok := g.cache[path]; ok {
		g.mu.Unlock()
		return v
	}
	g.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return false
	}
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultGitTimeout
	}
	run := g.Run
	if run == nil {
		run = lsFiles
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	tracked := run(cctx, filepath.Dir(path), path) == nil

	// Context failures are not cached; the next caller may have more time.
	if ctx.Err() == nil {
		g.mu.Lock()
		g.cache[path] = tracked
		g.mu.Unlock()
	}
	return tracked
}

// Forget drops cached answers, for example after a commit.
func (g *GitTracker) Forget() {
	g.mu.Lock()
	g.cache = make(map[string]bool)
	g.mu.Unlock()
}
