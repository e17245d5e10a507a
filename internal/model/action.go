package model

import "sort"

// OperationClass is one kind of effect a tool call may have.
type OperationClass string

const (
	OpRead       OperationClass = "read"
	OpWrite      OperationClass = "write"
	OpDelete     OperationClass = "delete"
	OpPrivileged OperationClass = "privileged"
	OpNetwork    OperationClass = "network"
	OpProcess    OperationClass = "process"
	OpDevice     OperationClass = "device"
	OpUI         OperationClass = "ui"
	OpUnknown    OperationClass = "unknown"
)

// Provenance tags where the content driving a tool call came from.
type Provenance string

const (
	ProvLocalUser      Provenance = "local_user"
	ProvWebRemoteUser  Provenance = "web_remote_user"
	ProvModelSuggested Provenance = "model_suggestion"
	ProvWorkspaceFile  Provenance = "workspace_file"
	ProvWebContent     Provenance = "web_content"
	ProvToolOutput     Provenance = "tool_output"
	ProvUnknown        Provenance = "unknown"
)

// ParseConfidence is how far the structural parse of a tool call can be trusted.
type ParseConfidence string

const (
	ConfidenceHigh   ParseConfidence = "high"
	ConfidenceMedium ParseConfidence = "medium"
	ConfidenceLow    ParseConfidence = "low"
)

// confidenceRank orders confidences so that merging can only lower trust.
var confidenceRank = map[ParseConfidence]int{
	ConfidenceLow:    0,
	ConfidenceMedium: 1,
	ConfidenceHigh:   2,
}

// MinConfidence returns the less trusted of two confidences.
// Unknown values are treated as low.
func MinConfidence(a, b ParseConfidence) ParseConfidence {
	ra, ok := confidenceRank[a]
	if !ok {
		return ConfidenceLow
	}
	rb, ok := confidenceRank[b]
	if !ok {
		return ConfidenceLow
	}
	if rb < ra {
		return b
	}
	return a
}

// ToolCall is one tool invocation requested by the agent.
type ToolCall struct {
	Name string         `json:"name" yaml:"name"`
	Args map[string]any `json:"args" yaml:"args"`
}

// Role identifies the speaker of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of the conversation history, oldest first.
type Turn struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// ActionProfile is the safety-relevant shape of one tool call.
// Built once per call and never mutated afterwards.
type ActionProfile struct {
	ToolName                 string           `json:"tool_name"`
	Operations               []OperationClass `json:"operations"`
	Roots                    []string         `json:"roots"`
	TouchedPaths             []string         `json:"touched_paths"`
	URLs                     []string         `json:"urls,omitempty"`
	OutsideWorkspace         bool             `json:"outside_workspace"`
	UsesPrivilege            bool             `json:"uses_privilege"`
	HasUnboundedScopeSignals bool             `json:"has_unbounded_scope_signals"`
	ParseConfidence          ParseConfidence  `json:"parse_confidence"`
	Provenance               []Provenance     `json:"provenance"`
	RawSummary               string           `json:"raw_summary"`
}

// HasOperation reports whether op is among the profile's operations.
func (p *ActionProfile) HasOperation(op OperationClass) bool {
	for _, o := range p.Operations {
		if o == op {
			return true
		}
	}
	return false
}

// OnlyOperations reports whether every operation is in allowed.
// An empty operation set never qualifies.
func (p *ActionProfile) OnlyOperations(allowed ...OperationClass) bool {
	if len(p.Operations) == 0 {
		return false
	}
	for _, o := range p.Operations {
		found := false
		for _, a := range allowed {
			if o == a {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// HasRoot reports whether name appears among the command roots.
func (p *ActionProfile) HasRoot(name string) bool {
	for _, r := range p.Roots {
		if r == name {
			return true
		}
	}
	return false
}

// HasRootSequence reports whether seq appears contiguously in Roots.
func (p *ActionProfile) HasRootSequence(seq ...string) bool {
	if len(seq) == 0 || len(seq) > len(p.Roots) {
		return false
	}
	for i := 0; i+len(seq) <= len(p.Roots); i++ {
		match := true
		for j, s := range seq {
			if p.Roots[i+j] != s {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// OperationSet collects operation classes without duplicates.
type OperationSet map[OperationClass]bool

// Add inserts ops into the set.
func (s OperationSet) Add(ops ...OperationClass) {
	for _, op := range ops {
		s[op] = true
	}
}

// Sorted returns the set as a deterministic slice.
func (s OperationSet) Sorted() []OperationClass {
	out := make([]OperationClass, 0, len(s))
	for op := range s {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
