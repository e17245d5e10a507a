package audit

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/ladder/internal/model"
)

const separator = "──────────────────────────────────────────────────────────────────"

// Summary counts records per risk tier and review level.
type Summary struct {
	Total          int                       `json:"total"`
	ByRisk         map[model.RiskScore]int   `json:"by_risk"`
	ByLevel        map[model.ReviewLevel]int `json:"by_level"`
	PinRequired    int                       `json:"pin_required"`
	FirstTimestamp string                    `json:"first_timestamp,omitempty"`
	LastTimestamp  string                    `json:"last_timestamp,omitempty"`
}

// Summarize counts records. Records are expected oldest first.
func Summarize(records []Record) Summary {
	s := Summary{
		ByRisk:  make(map[model.RiskScore]int),
		ByLevel: make(map[model.ReviewLevel]int),
	}
	for _, r := range records {
		s.Total++
		s.ByRisk[r.Risk]++
		s.ByLevel[r.ReviewLevel]++
		if r.RequiresPin {
			s.PinRequired++
		}
		if s.FirstTimestamp == "" {
			s.FirstTimestamp = r.Timestamp
		}
		s.LastTimestamp = r.Timestamp
	}
	return s
}

// FormatTable renders records as a human-readable timeline.
func FormatTable(records []Record) string {
	if len(records) == 0 {
		return "No decisions recorded.\n"
	}

	var b strings.Builder
	for _, r := range records {
		tag := ""
		if r.RequiresPin {
			tag = "  [pin]"
		}
		b.WriteString(fmt.Sprintf("%-10s %-8s %-2s %-10s %-16s %-40s%s\n",
			formatTimeOnly(r.Timestamp),
			strings.ToUpper(r.Risk.String()),
			r.ReviewLevel,
			r.Outcome,
			truncate(r.Tool, 16),
			truncate(r.Summary, 40),
			tag))
	}
	b.WriteString(separator + "\n")
	b.WriteString(formatSummary(Summarize(records)))
	return b.String()
}

// FormatJSON renders records as indented JSON.
func FormatJSON(records []Record) (string, error) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal records: %w", err)
	}
	return string(data), nil
}

func formatTimeOnly(ts string) string {
	t, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Format("15:04:05")
}

func formatSummary(s Summary) string {
	var parts []string
	for _, r := range model.AllRiskScores() {
		if n := s.ByRisk[r]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, r))
		}
	}
	var levels []string
	for _, l := range []model.ReviewLevel{model.ReviewA, model.ReviewB, model.ReviewC} {
		if n := s.ByLevel[l]; n > 0 {
			levels = append(levels, fmt.Sprintf("%s=%d", l, n))
		}
	}
	return fmt.Sprintf("Summary: %d decisions | %s | levels %s | %d need PIN\n",
		s.Total, strings.Join(parts, ", "), strings.Join(levels, " "), s.PinRequired)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
