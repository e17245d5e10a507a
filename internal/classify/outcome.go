// Package classify derives the Outcome, Intention and Domain of an action.
//
// The classifiers are pure. Anything that needs the filesystem or git is
// passed in as an oracle, gathered by the caller beforehand.
package classify

import (
	"github.com/ppiankov/ladder/internal/actionprofile"
	"github.com/ppiankov/ladder/internal/model"
)

// PathOracle answers a yes/no question about one resolved path.
// An oracle that cannot answer must return false.
type PathOracle func(path string) bool

func (o PathOracle) ask(path string) bool {
	if o == nil {
		return false
	}
	return o(path)
}

// all reports whether every path satisfies o. Empty input never qualifies.
func (o PathOracle) all(paths []string) bool {
	if len(paths) == 0 {
		return false
	}
	for _, p := range paths {
		if !o.ask(p) {
			return false
		}
	}
	return true
}

func (o PathOracle) some(paths []string, want bool) bool {
	for _, p := range paths {
		if o.ask(p) == want {
			return true
		}
	}
	return false
}

// ClassifyOutcome decides how recoverable the action's effects are.
// The first matching rule wins; ambiguity resolves toward irreversible.
func ClassifyOutcome(p *model.ActionProfile, isGitTracked, isInWorkspace PathOracle) model.Outcome {
	switch {
	case p.HasUnboundedScopeSignals:
		return model.Irreversible
	case isCommit(p):
		return model.Reversible
	case p.HasOperation(model.OpDevice):
		return model.Irreversible
	case usesPrivilege(p):
		return model.SoftIrreversible
	case p.HasOperation(model.OpWrite):
		switch {
		case isInWorkspace.some(p.TouchedPaths, false):
			return model.Irreversible
		case isGitTracked.all(p.TouchedPaths):
			return model.Reversible
		}
		return model.SoftIrreversible
	case p.HasOperation(model.OpNetwork):
		return model.SoftIrreversible
	case p.HasOperation(model.OpUI) || actionprofile.IsUITool(p.ToolName):
		return model.SoftIrreversible
	case p.HasOperation(model.OpDelete):
		if isInWorkspace.all(p.TouchedPaths) || isGitTracked.all(p.TouchedPaths) {
			return model.SoftIrreversible
		}
		return model.Irreversible
	}
	return model.Reversible
}

// isCommit matches a git commit that does nothing else.
func isCommit(p *model.ActionProfile) bool {
	return p.HasRootSequence("git", "commit") && p.OnlyOperations(model.OpRead, model.OpWrite)
}

func usesPrivilege(p *model.ActionProfile) bool {
	return p.UsesPrivilege || p.HasRoot("sudo") || p.HasRoot("su") || p.HasRoot("doas")
}
