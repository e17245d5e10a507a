// Package risk maps classified actions to a RiskScore.
//
// Safety invariants are evaluated first and cannot be relaxed by any
// security profile. Everything here is pure and safe for concurrent use.
package risk

import (
	"fmt"

	"github.com/ppiankov/ladder/internal/model"
)

// ComputeRisk applies the safety invariants, then the configured profile.
// Unknown profiles and unknown classification values fail closed to confirm.
func ComputeRisk(outcome model.Outcome, intention model.Intention, domain model.Domain, profile model.SecurityProfile, unbounded bool) model.RiskScore {
	score, _ := route(outcome, intention, domain, profile, unbounded)
	return score
}

// Assess is ComputeRisk with the classifications and the reason attached.
func Assess(outcome model.Outcome, intention model.Intention, domain model.Domain, profile model.SecurityProfile, unbounded bool) model.RiskAssessment {
	score, reason := route(outcome, intention, domain, profile, unbounded)
	return model.RiskAssessment{
		Outcome:   outcome,
		Intention: intention,
		Domain:    domain,
		Profile:   profile,
		Score:     score,
		Reasons:   []string{reason},
	}
}

func route(outcome model.Outcome, intention model.Intention, domain model.Domain, profile model.SecurityProfile, unbounded bool) (model.RiskScore, string) {
	if !outcome.Valid() || !intention.Valid() || !domain.Valid() {
		return model.RiskConfirm, fmt.Sprintf("unrecognised classification (%s/%s/%s)", outcome, intention, domain)
	}
	if score, reason, ok := CheckSafetyInvariants(outcome, intention, domain, unbounded); ok {
		return score, "invariant: " + reason
	}
	fn, ok := profileFunc(profile)
	if !ok {
		return model.RiskConfirm, fmt.Sprintf("unknown security profile %q", profile)
	}
	score := fn(outcome, intention, domain)
	return score, fmt.Sprintf("%s profile: %s %s action on %s domain", profile, intention, outcome, domain)
}
