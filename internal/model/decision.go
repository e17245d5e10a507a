package model

// DeterministicReviewResult is the output of the review-level path.
// Reasons only ever grow while it is being computed.
type DeterministicReviewResult struct {
	Level         ReviewLevel `json:"level"`
	Reasons       []string    `json:"reasons"`
	RequiresClick bool        `json:"requires_click"`
	RequiresPin   bool        `json:"requires_pin"`
}

// RiskAssessment is the output of the risk path together with the
// classifications that produced it.
type RiskAssessment struct {
	Outcome   Outcome         `json:"outcome"`
	Intention Intention       `json:"intention"`
	Domain    Domain          `json:"domain"`
	Profile   SecurityProfile `json:"security_profile"`
	Score     RiskScore       `json:"risk"`
	Reasons   []string        `json:"reasons"`
}

// Decision is everything the confirmation and audit layers need for one
// tool call. RiskAssessment and Review are computed independently.
type Decision struct {
	ID         string                    `json:"id"`
	Timestamp  string                    `json:"ts"`
	Action     ActionProfile             `json:"action"`
	Risk       RiskAssessment            `json:"risk"`
	Review     DeterministicReviewResult `json:"review"`
	ConfigHash string                    `json:"config_hash,omitempty"`
}

// NeedsHuman reports whether execution must wait for a click or PIN.
func (d *Decision) NeedsHuman() bool {
	return d.Risk.Score >= RiskConfirm || d.Review.RequiresClick
}

// NeedsPIN reports whether either path demands PIN entry.
func (d *Decision) NeedsPIN() bool {
	return d.Risk.Score == RiskPin || d.Review.RequiresPin
}
