package risk

import "github.com/ppiankov/ladder/internal/model"

// ComputeStrictRisk: irreversible needs a PIN unless the user explicitly
// named a workspace target; anything unrecoverable, untrusted or
// agent-initiated needs a click.
func ComputeStrictRisk(outcome model.Outcome, intention model.Intention, domain model.Domain) model.RiskScore {
	switch {
	case outcome == model.Irreversible:
		if intention == model.Explicit && domain == model.DomainWorkspace {
			return model.RiskConfirm
		}
		return model.RiskPin
	case outcome == model.SoftIrreversible,
		domain == model.DomainUntrusted,
		intention == model.Autonomous && outcome != model.Reversible:
		return model.RiskConfirm
	case domain == model.DomainTrusted, domain == model.DomainLocalhost:
		return model.RiskLog
	}
	return model.RiskPass
}

// ComputeBalancedRisk: autonomous irreversible workspace actions drop to confirm,
// soft-irreversible always confirms, reversible untrusted is logged.
func ComputeBalancedRisk(outcome model.Outcome, intention model.Intention, domain model.Domain) model.RiskScore {
	switch outcome {
	case model.Irreversible:
		if intention == model.Autonomous && domain == model.DomainWorkspace {
			return model.RiskConfirm
		}
		return model.RiskPin
	case model.SoftIrreversible:
		return model.RiskConfirm
	case model.Reversible:
		switch domain {
		case model.DomainWorkspace, model.DomainTrusted, model.DomainLocalhost:
			return model.RiskPass
		case model.DomainUntrusted:
			return model.RiskLog
		}
	}
	return model.RiskConfirm
}

// ComputeMinimalRisk only gates irreversible system changes and
// irreversible autonomous actions.
func ComputeMinimalRisk(outcome model.Outcome, intention model.Intention, domain model.Domain) model.RiskScore {
	switch {
	case outcome == model.Irreversible && domain == model.DomainSystem:
		return model.RiskPin
	case outcome == model.Irreversible && intention == model.Autonomous:
		return model.RiskConfirm
	}
	return model.RiskPass
}

// profileFunc returns the risk function for profile, or false for an
// unrecognised profile.
func profileFunc(profile model.SecurityProfile) (func(model.Outcome, model.Intention, model.Domain) model.RiskScore, bool) {
	switch profile {
	case model.ProfileStrict:
		return ComputeStrictRisk, true
	case model.ProfileBalanced:
		return ComputeBalancedRisk, true
	case model.ProfileMinimal:
		return ComputeMinimalRisk, true
	}
	return nil, false
}
