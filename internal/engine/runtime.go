package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/ladder/internal/alert"
	"github.com/ppiankov/ladder/internal/approval"
	"github.com/ppiankov/ladder/internal/audit"
	"github.com/ppiankov/ladder/internal/classify"
	"github.com/ppiankov/ladder/internal/config"
	"github.com/ppiankov/ladder/internal/oracle"
	"github.com/ppiankov/ladder/internal/profile"
)

// RuntimeOptions configures Open.
type RuntimeOptions struct {
	// ConfigPath is the config file; empty means ~/.ladder/config.yaml.
	ConfigPath string
	// ProfileName overrides the profile named in the config file.
	ProfileName string
	// ApprovalDir overrides ~/.ladder/pending.
	ApprovalDir string
	// AuditLogPath adds a JSONL sink on top of the configured ones.
	AuditLogPath string
	Git          GitOracle
	Logger       *zap.Logger
}

// Runtime is an Evaluator wired to the config file, the approval store and
// the audit sinks, as used by the CLI and the MCP server.
type Runtime struct {
	Evaluator *Evaluator
	Current   *config.Current
	Approvals *approval.Store

	path    string
	profile string
	sink    audit.Sink
	logger  *zap.Logger
}

// Open loads the config, applies the named profile and opens the sinks.
func Open(opts RuntimeOptions) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}

	r := &Runtime{path: path, profile: opts.ProfileName, logger: logger}

	cfg, hash, err := config.LoadConfigWithHash(path)
	if err != nil {
		return nil, err
	}
	cfg, err = r.transform(cfg)
	if err != nil {
		return nil, err
	}
	r.Current = config.NewCurrent(cfg, hash)

	goals := classify.DefaultGoals
	if cfg.Profile != "" {
		p, err := profile.Load(cfg.Profile)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile %q: %w", cfg.Profile, err)
		}
		if goals, err = profile.Goals(p); err != nil {
			return nil, fmt.Errorf("profile %q: %w", cfg.Profile, err)
		}
	}

	sink, err := openSinks(cfg, opts.AuditLogPath, logger)
	if err != nil {
		return nil, err
	}
	r.sink = sink

	dir := opts.ApprovalDir
	if dir == "" {
		dir = approval.DefaultDir()
	}
	r.Approvals, err = approval.NewStore(dir, r.pin)
	if err != nil {
		r.Close()
		return nil, err
	}

	git := opts.Git
	if git == nil {
		git = oracle.NewGitTracker()
	}

	r.Evaluator = New(Options{
		Config:    r.Current,
		Intention: classify.Heuristic{Goals: goals},
		Git:       git,
		Sink:      sink,
		Logger:    logger,
	})
	return r, nil
}

// transform applies the profile override and then the named profile.
func (r *Runtime) transform(cfg *config.Config) (*config.Config, error) {
	if r.profile != "" {
		cfg.Profile = r.profile
	}
	return profile.ApplyNamed(cfg)
}

// pin reads the PIN from the live config so a reload takes effect.
func (r *Runtime) pin() string {
	cfg, _ := r.Current.Load()
	return cfg.ApprovalPIN
}

// Watch reloads the config file on change until ctx is cancelled.
func (r *Runtime) Watch(ctx context.Context) error {
	reloader, err := config.NewReloader(r.path, r.Current, r.logger)
	if err != nil {
		return err
	}
	reloader.Transform = r.transform
	return reloader.Run(ctx)
}

// Close closes the audit sinks.
func (r *Runtime) Close() error {
	if r.sink == nil {
		return nil
	}
	return r.sink.Close()
}

// openSinks opens the configured JSONL and SQLite sinks plus the alert
// webhooks. Returns nil when nothing is configured.
func openSinks(cfg *config.Config, extraJSONL string, logger *zap.Logger) (audit.Sink, error) {
	var sinks []audit.Sink
	closeAll := func() {
		for _, s := range sinks {
			s.Close()
		}
	}

	paths := []string{cfg.Audit.JSONLPath}
	if extraJSONL != cfg.Audit.JSONLPath {
		paths = append(paths, extraJSONL)
	}
	for _, path := range paths {
		if path == "" {
			continue
		}
		log, err := audit.Open(path)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
		sinks = append(sinks, log)
	}
	if cfg.Audit.SQLitePath != "" {
		store, err := audit.OpenSQLite(cfg.Audit.SQLitePath)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("failed to open audit database: %w", err)
		}
		sinks = append(sinks, store)
	}
	if n := alert.NewNotifier(cfg.Alerts, logger); n != nil {
		sinks = append(sinks, n)
	}

	if len(sinks) == 0 {
		return nil, nil
	}
	return audit.Multi(sinks...), nil
}
