package profile

import (
	"fmt"
	"regexp"

	"github.com/ppiankov/ladder/internal/classify"
	"github.com/ppiankov/ladder/internal/config"
	"github.com/ppiankov/ladder/internal/model"
)

// Apply merges p into cfg and returns a new config; cfg is not mutated.
// The profile's security profile and review floors replace the config's
// when set; trusted domains and critical paths are added.
func Apply(p *Profile, cfg *config.Config) *config.Config {
	merged := *cfg
	if p.SecurityProfile != "" {
		merged.SecurityProfile = p.SecurityProfile
	}
	merged.TrustedDomains = union(cfg.TrustedDomains, p.TrustedDomains)
	merged.CriticalPaths = union(cfg.CriticalPaths, p.CriticalPaths)
	merged.WorkspaceRoots = append([]string(nil), cfg.WorkspaceRoots...)

	set := func(dst *model.ReviewLevel, v model.ReviewLevel) {
		if v != "" {
			*dst = v
		}
	}
	set(&merged.Review.ClickMinReviewLevel, p.Review.ClickMinReviewLevel)
	set(&merged.Review.TypeMinReviewLevel, p.Review.TypeMinReviewLevel)
	set(&merged.Review.KeyMinReviewLevel, p.Review.KeyMinReviewLevel)
	set(&merged.Review.ScrollMinReviewLevel, p.Review.ScrollMinReviewLevel)
	return &merged
}

// ApplyNamed applies the profile named in cfg.Profile, if any.
func ApplyNamed(cfg *config.Config) (*config.Config, error) {
	if cfg.Profile == "" {
		return cfg, nil
	}
	p, err := Load(cfg.Profile)
	if err != nil {
		return nil, err
	}
	return Apply(p, cfg), nil
}

// Goals compiles the profile's intention goals, placed after the defaults.
// Fail-closed: an invalid pattern is an error, not a skipped goal.
func Goals(p *Profile) ([]classify.GoalRule, error) {
	rules := append([]classify.GoalRule(nil), classify.DefaultGoals...)
	for i, g := range p.IntentionGoals {
		re, err := regexp.Compile("(?i)" + g.Pattern)
		if err != nil {
			return nil, fmt.Errorf("intention_goals[%d]: %w", i, err)
		}
		rules = append(rules, classify.GoalRule{Goal: re, Keywords: g.Keywords})
	}
	return rules, nil
}

func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, s := range append(append([]string(nil), a...), b...) {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
