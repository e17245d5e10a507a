package risk

import "github.com/ppiankov/ladder/internal/model"

// CheckSafetyInvariants applies the floor rules that no security profile may
// relax. ok is false when no invariant fires and the profile decides.
//
// Order:
//  1. irreversible + system domain + unbounded scope → pin
//  2. unbounded scope → pin
//  3. irreversible + autonomous outside the workspace domain → pin
//  4. system domain → pin if irreversible, otherwise confirm
func CheckSafetyInvariants(outcome model.Outcome, intention model.Intention, domain model.Domain, unbounded bool) (score model.RiskScore, reason string, ok bool) {
	switch {
	case outcome == model.Irreversible && domain == model.DomainSystem && unbounded:
		return model.RiskPin, "irreversible unbounded action on system domain", true
	case unbounded:
		return model.RiskPin, "unbounded scope", true
	case outcome == model.Irreversible && intention == model.Autonomous && domain != model.DomainWorkspace:
		return model.RiskPin, "irreversible action initiated autonomously", true
	case domain == model.DomainSystem && outcome == model.Irreversible:
		return model.RiskPin, "irreversible action on system domain", true
	case domain == model.DomainSystem:
		return model.RiskConfirm, "system domain", true
	}
	return model.RiskPass, "", false
}
