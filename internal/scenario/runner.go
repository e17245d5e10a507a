package scenario

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/ladder/internal/classify"
	"github.com/ppiankov/ladder/internal/config"
	"github.com/ppiankov/ladder/internal/engine"
	"github.com/ppiankov/ladder/internal/model"
	"github.com/ppiankov/ladder/internal/profile"
)

// trackedSet answers git queries from the scenario's tracked list so runs
// do not depend on the repository they happen to execute in.
type trackedSet map[string]bool

func (t trackedSet) IsTracked(_ context.Context, path string) bool { return t[filepath.Clean(path)] }

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := Validate(&s); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks that every case names a tool and carries at least one
// well-formed expectation.
func Validate(s *Scenario) error {
	if s.SecurityProfile != "" && !s.SecurityProfile.Valid() {
		return fmt.Errorf("invalid security_profile %q", s.SecurityProfile)
	}
	for i, c := range s.Cases {
		if c.Tool == "" {
			return fmt.Errorf("case %d: tool is required", i+1)
		}
		if c.ExpectRisk == "" && c.ExpectLevel == "" {
			return fmt.Errorf("case %d: expect_risk or expect_level is required", i+1)
		}
		if c.ExpectRisk != "" {
			if _, err := model.ParseRiskScore(c.ExpectRisk); err != nil {
				return fmt.Errorf("case %d: %w", i+1, err)
			}
		}
		if c.ExpectLevel != "" {
			if _, err := model.ParseReviewLevel(c.ExpectLevel); err != nil {
				return fmt.Errorf("case %d: %w", i+1, err)
			}
		}
	}
	return nil
}

// Run evaluates all cases in a scenario against base. The scenario's
// profile, security profile and workspace are layered on a copy of base.
// Cases are independent: no decision feeds into the next.
func Run(ctx context.Context, s *Scenario, base *config.Config) (*RunResult, error) {
	if base == nil {
		base = config.DefaultConfig()
	}
	cfg := base
	goals := classify.DefaultGoals

	if s.Profile != "" {
		p, err := profile.Load(s.Profile)
		if err != nil {
			return nil, fmt.Errorf("load profile: %w", err)
		}
		cfg = profile.Apply(p, cfg)
		if goals, err = profile.Goals(p); err != nil {
			return nil, fmt.Errorf("profile %s: %w", p.Name, err)
		}
	} else {
		copied := *cfg
		cfg = &copied
	}
	if s.SecurityProfile != "" {
		cfg.SecurityProfile = s.SecurityProfile
	}
	if s.Workspace != "" {
		cfg.TargetDir = s.Workspace
	}

	tracked := make(trackedSet, len(s.Tracked))
	for _, p := range s.Tracked {
		tracked[filepath.Clean(p)] = true
	}

	eval := engine.New(engine.Options{
		Config:    config.NewCurrent(cfg, ""),
		Intention: classify.Heuristic{Goals: goals},
		Git:       tracked,
	})

	result := &RunResult{
		Name:  s.Name,
		Total: len(s.Cases),
	}

	for i, c := range s.Cases {
		cr := runCase(ctx, eval, c)
		cr.Index = i + 1
		if cr.Passed {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Cases = append(result.Cases, cr)
	}

	return result, nil
}

func runCase(ctx context.Context, eval *engine.Evaluator, c Case) CaseResult {
	cr := CaseResult{
		Tool:     c.Tool,
		Expected: expectation(c),
	}

	d, err := eval.EvaluateRequest(ctx, engine.Request{
		Tool:    c.Tool,
		Args:    c.Args,
		RawArgs: c.RawArgs,
		History: c.history(),
	})
	if err != nil {
		cr.Error = err.Error()
		return cr
	}

	cr.Summary = d.Action.RawSummary
	cr.Actual = fmt.Sprintf("risk=%s level=%s", d.Risk.Score, d.Review.Level)
	cr.Reasons = append(append([]string(nil), d.Risk.Reasons...), d.Review.Reasons...)
	cr.Passed = true

	if c.ExpectRisk != "" {
		want, _ := model.ParseRiskScore(c.ExpectRisk)
		if want != d.Risk.Score {
			cr.Passed = false
		}
	}
	if c.ExpectLevel != "" {
		want, _ := model.ParseReviewLevel(c.ExpectLevel)
		if want != d.Review.Level {
			cr.Passed = false
		}
	}
	return cr
}

func expectation(c Case) string {
	var parts []string
	if c.ExpectRisk != "" {
		parts = append(parts, "risk="+strings.ToLower(strings.TrimSpace(c.ExpectRisk)))
	}
	if c.ExpectLevel != "" {
		parts = append(parts, "level="+strings.ToUpper(strings.TrimSpace(c.ExpectLevel)))
	}
	return strings.Join(parts, " ")
}

// LoadAndRun loads a scenario file and the config at configPath, then runs.
// An empty configPath uses the defaults.
func LoadAndRun(ctx context.Context, path, configPath string) (*RunResult, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	if configPath != "" {
		if cfg, err = config.LoadConfig(configPath); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if cfg, err = profile.ApplyNamed(cfg); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	result, err := Run(ctx, s, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	result.File = path
	return result, nil
}

// RunGlob runs every scenario file matching pattern, in lexical order.
func RunGlob(ctx context.Context, pattern, configPath string) ([]*RunResult, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no scenario files match pattern: %s", pattern)
	}

	results := make([]*RunResult, 0, len(matches))
	for _, path := range matches {
		r, err := LoadAndRun(ctx, path, configPath)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// AllPassed reports whether every case in results passed.
func AllPassed(results []*RunResult) bool {
	for _, r := range results {
		if r.Failed > 0 {
			return false
		}
	}
	return true
}
