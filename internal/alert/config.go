// Package alert posts high-risk decisions to webhooks. A Notifier is an
// audit sink, so it sees exactly what the audit trail sees.
package alert

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ppiankov/ladder/internal/audit"
	"github.com/ppiankov/ladder/internal/model"
)

// Webhook defines an alert destination.
type Webhook struct {
	URL     string            `yaml:"url"     json:"url"`
	Format  string            `yaml:"format"  json:"format"` // "generic", "slack", "pagerduty"
	Risks   []string          `yaml:"risks"   json:"risks"`  // risk tiers that fire; empty means pin
	Headers map[string]string `yaml:"headers" json:"headers"`
}

// Validate checks the URL, the format and the risk names.
func (w Webhook) Validate() error {
	u, err := url.Parse(w.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("alert url %q must be an http(s) URL", w.URL)
	}
	switch w.Format {
	case "", "generic", "slack", "pagerduty":
	default:
		return fmt.Errorf("alert format %q: want generic, slack or pagerduty", w.Format)
	}
	for _, r := range w.Risks {
		if _, err := model.ParseRiskScore(r); err != nil {
			return fmt.Errorf("alert risks: %w", err)
		}
	}
	return nil
}

// Event is the payload sent to webhook endpoints.
type Event struct {
	Timestamp   string `json:"ts"`
	DecisionID  string `json:"decision_id"`
	Tool        string `json:"tool"`
	Summary     string `json:"summary"`
	Risk        string `json:"risk"`
	ReviewLevel string `json:"review_level"`
	Outcome     string `json:"outcome"`
	Domain      string `json:"domain"`
	Reason      string `json:"reason"`
	ConfigHash  string `json:"config_hash,omitempty"`
}

// EventFromRecord builds the payload from an audit record.
func EventFromRecord(r audit.Record) Event {
	return Event{
		Timestamp:   r.Timestamp,
		DecisionID:  r.DecisionID,
		Tool:        r.Tool,
		Summary:     r.Summary,
		Risk:        r.Risk.String(),
		ReviewLevel: string(r.ReviewLevel),
		Outcome:     string(r.Outcome),
		Domain:      string(r.Domain),
		Reason:      strings.Join(r.Reasons, "; "),
		ConfigHash:  r.ConfigHash,
	}
}
