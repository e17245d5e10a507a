// Package audit records every ladder decision to an append-only JSONL file
// and, optionally, a SQLite table for querying.
package audit

import (
	"errors"
	"time"

	"github.com/ppiankov/ladder/internal/model"
	"github.com/ppiankov/ladder/internal/redact"
)

// TimestampFormat is the layout used in record timestamps.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// Record is one audited decision. All fields are flat so the JSONL line and
// the SQLite row carry the same information.
type Record struct {
	Timestamp    string                `json:"ts"`
	DecisionID   string                `json:"decision_id"`
	Tool         string                `json:"tool"`
	Summary      string                `json:"summary"`
	Operations   []string              `json:"operations"`
	TouchedPaths []string              `json:"touched_paths,omitempty"`
	Confidence   model.ParseConfidence `json:"parse_confidence"`
	Outcome      model.Outcome         `json:"outcome"`
	Intention    model.Intention       `json:"intention"`
	Domain       model.Domain          `json:"domain"`
	Profile      model.SecurityProfile `json:"security_profile"`
	Risk         model.RiskScore       `json:"risk"`
	ReviewLevel  model.ReviewLevel     `json:"review_level"`
	RequiresPin  bool                  `json:"requires_pin"`
	Reasons      []string              `json:"reasons,omitempty"`
	ConfigHash   string                `json:"config_hash,omitempty"`
}

// FromDecision flattens a decision into a record. Credentials in the
// summary and reasons are masked.
func FromDecision(d *model.Decision) Record {
	ops := make([]string, 0, len(d.Action.Operations))
	for _, op := range d.Action.Operations {
		ops = append(ops, string(op))
	}
	reasons := make([]string, 0, len(d.Risk.Reasons)+len(d.Review.Reasons))
	reasons = append(reasons, d.Risk.Reasons...)
	reasons = append(reasons, d.Review.Reasons...)

	return Record{
		Timestamp:    d.Timestamp,
		DecisionID:   d.ID,
		Tool:         d.Action.ToolName,
		Summary:      redact.Secrets(d.Action.RawSummary),
		Operations:   ops,
		TouchedPaths: append([]string(nil), d.Action.TouchedPaths...),
		Confidence:   d.Action.ParseConfidence,
		Outcome:      d.Risk.Outcome,
		Intention:    d.Risk.Intention,
		Domain:       d.Risk.Domain,
		Profile:      d.Risk.Profile,
		Risk:         d.Risk.Score,
		ReviewLevel:  d.Review.Level,
		RequiresPin:  d.NeedsPIN(),
		Reasons:      redact.Strings(reasons),
		ConfigHash:   d.ConfigHash,
	}
}

// Sink receives audit records.
type Sink interface {
	Record(r Record) error
	Close() error
}

// Filter selects records when reading back.
type Filter struct {
	Tool     string
	MinRisk  model.RiskScore
	MinLevel model.ReviewLevel
	From     time.Time // zero value = no lower bound
	To       time.Time // zero value = no upper bound
	Limit    int       // most recent N; 0 = all
}

func (f Filter) match(r Record) bool {
	if f.Tool != "" && r.Tool != f.Tool {
		return false
	}
	if r.Risk < f.MinRisk {
		return false
	}
	if f.MinLevel != "" && r.ReviewLevel.Rank() < f.MinLevel.Rank() {
		return false
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		ts, err := time.Parse(TimestampFormat, r.Timestamp)
		if err != nil {
			return false
		}
		if !f.From.IsZero() && ts.Before(f.From) {
			return false
		}
		if !f.To.IsZero() && ts.After(f.To) {
			return false
		}
	}
	return true
}

// multi fans a record out to several sinks.
type multi []Sink

// Multi returns a sink that writes to every non-nil sink in order. All
// sinks are attempted; errors are joined.
func Multi(sinks ...Sink) Sink {
	var m multi
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

func (m multi) Record(r Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Record(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
