// Package engine runs the approval ladder for one tool call: it builds the
// action profile, gathers the filesystem oracles, runs the classifiers and
// produces a Decision carrying both the risk score and the review level.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/ladder/internal/actionprofile"
	"github.com/ppiankov/ladder/internal/audit"
	"github.com/ppiankov/ladder/internal/classify"
	"github.com/ppiankov/ladder/internal/config"
	"github.com/ppiankov/ladder/internal/model"
	"github.com/ppiankov/ladder/internal/review"
	"github.com/ppiankov/ladder/internal/risk"
)

// GitOracle reports whether a path is tracked by git. Implementations
// return false when they cannot tell.
type GitOracle interface {
	IsTracked(ctx context.Context, path string) bool
}

// Options configures an Evaluator. Only Config is required.
type Options struct {
	Config    *config.Current
	Intention classify.IntentionClassifier
	Git       GitOracle
	Sink      audit.Sink
	Logger    *zap.Logger

	// Now and NewID are replaced in tests.
	Now   func() time.Time
	NewID func() string
}

// Evaluator is safe for concurrent use.
type Evaluator struct {
	current   *config.Current
	intention classify.IntentionClassifier
	git       GitOracle
	sink      audit.Sink
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// New returns an Evaluator. A nil intention classifier uses the lexical
// heuristic; a nil git oracle treats every path as untracked.
func New(opts Options) *Evaluator {
	e := &Evaluator{
		current:   opts.Config,
		intention: opts.Intention,
		git:       opts.Git,
		sink:      opts.Sink,
		logger:    opts.Logger,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if e.current == nil {
		e.current = config.NewCurrent(config.DefaultConfig(), "")
	}
	if e.intention == nil {
		e.intention = classify.Heuristic{}
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	return e
}

// Request is one tool call to evaluate. Args wins over RawArgs when set.
type Request struct {
	Tool       string
	Args       map[string]any
	RawArgs    string
	History    []model.Turn
	Provenance []model.Provenance
}

// Evaluate decides the friction for call given the conversation so far.
func (e *Evaluator) Evaluate(ctx context.Context, call model.ToolCall, history []model.Turn) (*model.Decision, error) {
	return e.EvaluateRequest(ctx, Request{Tool: call.Name, Args: call.Args, History: history})
}

// EvaluateRaw is Evaluate for arguments that arrive as a JSON string.
// Malformed JSON is repaired where possible and lowers parse confidence.
func (e *Evaluator) EvaluateRaw(ctx context.Context, tool, raw string, history []model.Turn) (*model.Decision, error) {
	return e.EvaluateRequest(ctx, Request{Tool: tool, RawArgs: raw, History: history})
}

// EvaluateRequest runs the full pipeline. The only error is a context that
// is already done; classification itself never fails.
func (e *Evaluator) EvaluateRequest(ctx context.Context, req Request) (*model.Decision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, hash := e.current.Load()
	caps := cfg.Capabilities()

	call, p := e.profile(req, caps)
	if len(req.Provenance) > 0 {
		p.Provenance = append([]model.Provenance(nil), req.Provenance...)
	}

	assessment := e.assess(ctx, &p, call, req.History, caps)
	rev := review.ComputeMinimumReviewLevel(&p, cfg.ReviewConfig())

	d := &model.Decision{
		ID:         e.newID(),
		Timestamp:  e.now().UTC().Format(audit.TimestampFormat),
		Action:     p,
		Risk:       assessment,
		Review:     rev,
		ConfigHash: hash,
	}
	e.log(d)

	if e.sink != nil {
		if err := e.sink.Record(audit.FromDecision(d)); err != nil {
			e.logger.Warn("audit record failed", zap.String("id", d.ID), zap.Error(err))
		}
	}
	return d, nil
}

// Review computes only the review level for a call.
func (e *Evaluator) Review(call model.ToolCall) model.DeterministicReviewResult {
	cfg, _ := e.current.Load()
	p := actionprofile.Build(call, cfg.Capabilities())
	return review.ComputeMinimumReviewLevel(&p, cfg.ReviewConfig())
}

// UIConfirmation returns the dialog details for a UI automation call.
func (e *Evaluator) UIConfirmation(call model.ToolCall) (review.UIConfirmationDetails, error) {
	cfg, _ := e.current.Load()
	p := actionprofile.Build(call, cfg.Capabilities())
	return review.BuildUIConfirmationDetails(&p, call.Args, cfg.ReviewConfig())
}

// Config returns the config evaluations currently run against.
func (e *Evaluator) Config() (*config.Config, string) {
	return e.current.Load()
}

func (e *Evaluator) profile(req Request, caps model.Capabilities) (model.ToolCall, model.ActionProfile) {
	if req.Args != nil || req.RawArgs == "" {
		call := model.ToolCall{Name: req.Tool, Args: req.Args}
		return call, actionprofile.Build(call, caps)
	}
	// Intention still needs the argument values when the JSON needed repair.
	args, _, _ := actionprofile.DecodeArgs(req.RawArgs)
	return model.ToolCall{Name: req.Tool, Args: args}, actionprofile.BuildFromRaw(req.Tool, req.RawArgs, caps)
}

// assess gathers the oracles, classifies and routes to a risk score, then
// applies the critical-path and low-confidence floors.
func (e *Evaluator) assess(ctx context.Context, p *model.ActionProfile, call model.ToolCall, history []model.Turn, caps model.Capabilities) model.RiskAssessment {
	tracked := e.trackedOracle(ctx, p.TouchedPaths)
	var inWorkspace classify.PathOracle
	if ws := caps.Workspace(); ws != nil {
		inWorkspace = ws.IsPathWithinWorkspace
	}

	outcome := classify.ClassifyOutcome(p, tracked, inWorkspace)
	domain := classify.ClassifyDomain(p, caps)
	intention := e.intention.ClassifyIntention(call, history)

	a := risk.Assess(outcome, intention, domain, caps.SecurityProfile(), p.HasUnboundedScopeSignals)

	if score, path, hit := risk.CheckCriticalPaths(p.TouchedPaths, caps.HomeDir(), caps.CriticalPaths()); hit {
		a.Score = model.MaxRisk(a.Score, score)
		a.Reasons = append(a.Reasons, "critical path: "+path)
	}
	if !confident(p.ParseConfidence) && a.Score < model.RiskConfirm {
		a.Score = model.RiskConfirm
		a.Reasons = append(a.Reasons, "low parse confidence")
	}
	return a
}

// trackedOracle asks git about every touched path up front so the
// classifier stays pure.
func (e *Evaluator) trackedOracle(ctx context.Context, paths []string) classify.PathOracle {
	if e.git == nil || len(paths) == 0 {
		return nil
	}
	answers := make(map[string]bool, len(paths))
	for _, path := range paths {
		answers[path] = e.git.IsTracked(ctx, path)
	}
	return func(path string) bool { return answers[path] }
}

func confident(c model.ParseConfidence) bool {
	return c == model.ConfidenceHigh || c == model.ConfidenceMedium
}

func (e *Evaluator) log(d *model.Decision) {
	fields := []zap.Field{
		zap.String("id", d.ID),
		zap.String("tool", d.Action.ToolName),
		zap.String("outcome", string(d.Risk.Outcome)),
		zap.String("intention", string(d.Risk.Intention)),
		zap.String("domain", string(d.Risk.Domain)),
		zap.Stringer("risk", d.Risk.Score),
		zap.String("review_level", string(d.Review.Level)),
	}
	if d.NeedsPIN() {
		e.logger.Info("escalated to pin", fields...)
		return
	}
	e.logger.Debug("evaluated", fields...)
}
