// Package review computes the minimum human review level for an action.
//
// This path is independent of the risk score: it decides whether the UI
// shows nothing (A), a click-to-approve dialog (B), or a click plus PIN
// entry (C).
package review

import (
	"fmt"
	"strings"

	"github.com/ppiankov/ladder/internal/actionprofile"
	"github.com/ppiankov/ladder/internal/model"
	"github.com/ppiankov/ladder/internal/risk"
)

// result accumulates a level and the reasons behind it. Reasons are only
// ever appended.
type result struct {
	level   model.ReviewLevel
	reasons []string
}

func (r *result) raise(level model.ReviewLevel, format string, args ...any) {
	r.level = model.MaxReviewLevel(r.level, level)
	r.reasons = append(r.reasons, fmt.Sprintf("%s: ", level)+fmt.Sprintf(format, args...))
}

// ComputeMinimumReviewLevel returns the review level the action needs.
func ComputeMinimumReviewLevel(p *model.ActionProfile, cfg Config) model.DeterministicReviewResult {
	r := &result{level: model.ReviewA}

	for _, op := range p.Operations {
		switch op {
		case model.OpWrite:
			r.raise(model.ReviewB, "modifies files")
		case model.OpDelete:
			r.raise(model.ReviewB, "deletes files")
		case model.OpNetwork:
			r.raise(model.ReviewB, "accesses the network")
		case model.OpProcess:
			r.raise(model.ReviewB, "starts or signals processes")
		case model.OpUnknown:
			r.raise(model.ReviewB, "unrecognised operation")
		case model.OpPrivileged:
			r.raise(model.ReviewC, "runs with elevated privileges")
		case model.OpDevice:
			r.raise(model.ReviewC, "touches a device or machine state")
		}
	}
	if p.UsesPrivilege && !p.HasOperation(model.OpPrivileged) {
		r.raise(model.ReviewC, "runs with elevated privileges")
	}

	if p.OutsideWorkspace {
		if p.HasOperation(model.OpDelete) {
			r.raise(model.ReviewC, "deletes outside the workspace")
		} else {
			r.raise(model.ReviewB, "touches paths outside the workspace")
		}
	}

	critical := risk.CriticalPaths(cfg.HomeDir, cfg.CriticalPaths)
	for _, path := range p.TouchedPaths {
		if risk.IsCriticalPath(path, critical) {
			r.raise(model.ReviewC, "touches critical path %s", path)
		}
	}

	if p.ParseConfidence != model.ConfidenceHigh && p.ParseConfidence != model.ConfidenceMedium {
		r.raise(model.ReviewC, "low parse confidence")
	}
	if p.HasUnboundedScopeSignals {
		r.raise(model.ReviewC, "unbounded scope")
	}
	if model.IsSelfTargeting(p) {
		r.raise(model.ReviewC, "targets ladder's own configuration or binary")
	}

	if p.HasOperation(model.OpUI) || actionprofile.IsUITool(p.ToolName) {
		action, ok := actionprofile.UIActionFor(p.ToolName)
		if !ok {
			r.raise(model.ReviewB, "unrecognised UI action %s", strings.ToLower(p.ToolName))
		} else if floor := cfg.floorFor(action); floor.Rank() > model.ReviewA.Rank() {
			r.raise(floor, "UI %s floor", action)
		}
	}

	return model.DeterministicReviewResult{
		Level:         r.level,
		Reasons:       r.reasons,
		RequiresClick: r.level != model.ReviewA,
		RequiresPin:   r.level == model.ReviewC,
	}
}

// Explain renders the result as one line for the confirmation dialog.
func Explain(res model.DeterministicReviewResult) string {
	if len(res.Reasons) == 0 {
		return fmt.Sprintf("Minimum review level %s", res.Level)
	}
	return fmt.Sprintf("Minimum review level %s (%s)", res.Level, strings.Join(res.Reasons, "; "))
}
