package model

import (
	"fmt"
	"strings"
)

// Outcome classifies how recoverable the effects of an action are.
type Outcome string

const (
	Reversible       Outcome = "reversible"
	SoftIrreversible Outcome = "soft-irreversible"
	Irreversible     Outcome = "irreversible"
)

// AllOutcomes lists every Outcome variant in ascending severity.
func AllOutcomes() []Outcome {
	return []Outcome{Reversible, SoftIrreversible, Irreversible}
}

// Valid reports whether o is a known Outcome.
func (o Outcome) Valid() bool {
	switch o {
	case Reversible, SoftIrreversible, Irreversible:
		return true
	}
	return false
}

// Intention classifies why the agent is taking an action.
type Intention string

const (
	Explicit    Intention = "explicit"
	TaskDerived Intention = "task-derived"
	Autonomous  Intention = "autonomous"
)

// AllIntentions lists every Intention variant.
func AllIntentions() []Intention {
	return []Intention{Explicit, TaskDerived, Autonomous}
}

// Valid reports whether i is a known Intention.
func (i Intention) Valid() bool {
	switch i {
	case Explicit, TaskDerived, Autonomous:
		return true
	}
	return false
}

// Domain classifies the trust level of an action's target.
type Domain string

const (
	DomainWorkspace Domain = "workspace"
	DomainSystem    Domain = "system"
	DomainTrusted   Domain = "trusted"
	DomainLocalhost Domain = "localhost"
	DomainUntrusted Domain = "untrusted"
)

// AllDomains lists every Domain variant.
func AllDomains() []Domain {
	return []Domain{DomainWorkspace, DomainSystem, DomainTrusted, DomainLocalhost, DomainUntrusted}
}

// Valid reports whether d is a known Domain.
func (d Domain) Valid() bool {
	switch d {
	case DomainWorkspace, DomainSystem, DomainTrusted, DomainLocalhost, DomainUntrusted:
		return true
	}
	return false
}

// SecurityProfile is the configured risk tolerance preset.
type SecurityProfile string

const (
	ProfileStrict   SecurityProfile = "strict"
	ProfileBalanced SecurityProfile = "balanced"
	ProfileMinimal  SecurityProfile = "minimal"
)

// AllSecurityProfiles lists every SecurityProfile variant.
func AllSecurityProfiles() []SecurityProfile {
	return []SecurityProfile{ProfileStrict, ProfileBalanced, ProfileMinimal}
}

// Valid reports whether p is a known SecurityProfile.
func (p SecurityProfile) Valid() bool {
	switch p {
	case ProfileStrict, ProfileBalanced, ProfileMinimal:
		return true
	}
	return false
}

// ParseSecurityProfile parses a profile name case-insensitively.
func ParseSecurityProfile(s string) (SecurityProfile, error) {
	p := SecurityProfile(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return p, fmt.Errorf("unknown security profile %q (want strict, balanced or minimal)", s)
	}
	return p, nil
}

// RiskScore is the terminal friction tier of the risk path.
// Ordered: Pass < Log < Confirm < Pin.
type RiskScore int

const (
	RiskPass    RiskScore = 0
	RiskLog     RiskScore = 1
	RiskConfirm RiskScore = 2
	RiskPin     RiskScore = 3
)

// AllRiskScores lists every RiskScore in ascending order.
func AllRiskScores() []RiskScore {
	return []RiskScore{RiskPass, RiskLog, RiskConfirm, RiskPin}
}

func (r RiskScore) String() string {
	switch r {
	case RiskPass:
		return "pass"
	case RiskLog:
		return "log"
	case RiskConfirm:
		return "confirm"
	case RiskPin:
		return "pin"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// MarshalText encodes the score by name.
func (r RiskScore) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a score name. Unknown names fail.
func (r *RiskScore) UnmarshalText(text []byte) error {
	parsed, err := ParseRiskScore(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRiskScore parses a risk score name.
func ParseRiskScore(s string) (RiskScore, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pass":
		return RiskPass, nil
	case "log":
		return RiskLog, nil
	case "confirm":
		return RiskConfirm, nil
	case "pin":
		return RiskPin, nil
	}
	return RiskPin, fmt.Errorf("unknown risk score %q", s)
}

// MaxRisk returns the higher of two scores.
func MaxRisk(a, b RiskScore) RiskScore {
	if b > a {
		return b
	}
	return a
}

// ReviewLevel is the UI-facing approval tier: A=none, B=click, C=click+PIN.
type ReviewLevel string

const (
	ReviewA ReviewLevel = "A"
	ReviewB ReviewLevel = "B"
	ReviewC ReviewLevel = "C"
)

// Rank maps a review level to a comparable integer. Unknown levels rank as C.
func (l ReviewLevel) Rank() int {
	switch l {
	case ReviewA:
		return 0
	case ReviewB:
		return 1
	default:
		return 2
	}
}

// Valid reports whether l is a known ReviewLevel.
func (l ReviewLevel) Valid() bool {
	return l == ReviewA || l == ReviewB || l == ReviewC
}

// ParseReviewLevel parses "A", "B" or "C" case-insensitively.
func ParseReviewLevel(s string) (ReviewLevel, error) {
	l := ReviewLevel(strings.ToUpper(strings.TrimSpace(s)))
	if !l.Valid() {
		return ReviewC, fmt.Errorf("unknown review level %q (want A, B or C)", s)
	}
	return l, nil
}

// MaxReviewLevel returns the stricter of two levels.
func MaxReviewLevel(a, b ReviewLevel) ReviewLevel {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}
