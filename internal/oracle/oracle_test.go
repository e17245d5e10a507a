package oracle

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestWorkspaceMembership(t *testing.T) {
	w := NewWorkspace("/workspace", "/srv/app/", "", "relative/dir")
	tests := []struct {
		path string
		want bool
	}{
		{"/workspace", true},
		{"/workspace/src/main.go", true},
		{"/workspace/../etc/passwd", false},
		{"/workspace2/x", false},
		{"/srv/app", true},
		{"/srv/app/config.yaml", true},
		{"/srv", false},
		{"relative/dir/x", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := w.IsPathWithinWorkspace(tt.path); got != tt.want {
			t.Errorf("IsPathWithinWorkspace(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
	if got := w.Roots(); len(got) != 2 {
		t.Errorf("Roots() = %v, want 2 entries", got)
	}
}

func TestGitTrackerCaches(t *testing.T) {
	var calls int32
	g := NewGitTracker()
	g.Run = func(_ context.Context, dir, path string) error {
		atomic.AddInt32(&calls, 1)
		if dir != "/repo/src" {
			t.Errorf("dir = %q, want /repo/src", dir)
		}
		if path == "/repo/src/tracked.go" {
			return nil
		}
		return errors.New("exit status 1")
	}

	ctx := context.Background()
	if !g.IsTracked(ctx, "/repo/src/tracked.go") {
		t.Error("expected tracked")
	}
	if g.IsTracked(ctx, "/repo/src/new.go") {
		t.Error("expected untracked")
	}
	g.IsTracked(ctx, "/repo/src/tracked.go")
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("runner called %d times, want 2", n)
	}

	g.Forget()
	g.IsTracked(ctx, "/repo/src/tracked.go")
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("runner called %d times after Forget, want 3", n)
	}
}

func TestGitTrackerFailsClosed(t *testing.T) {
	g := &GitTracker{Run: func(context.Context, string, string) error { return errors.New("git: not found") }}
	if g.IsTracked(context.Background(), "/repo/a.go") {
		t.Error("runner error must mean not tracked")
	}
	if g.IsTracked(context.Background(), "relative.go") {
		t.Error("relative paths are never tracked")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g.Run = func(context.Context, string, string) error { return nil }
	if g.IsTracked(ctx, "/repo/b.go") {
		t.Error("cancelled context must mean not tracked")
	}
	if !g.IsTracked(context.Background(), "/repo/b.go") {
		t.Error("cancelled lookups must not be cached")
	}
}
