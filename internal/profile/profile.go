// Package profile provides named presets that adjust the ladder
// configuration: the security profile, trusted hosts, critical paths,
// review floors and extra intention goals.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/ladder/internal/config"
	"github.com/ppiankov/ladder/internal/model"
	"github.com/ppiankov/ladder/internal/review"
)

// Goal is a user-message pattern and the argument keywords that serve it.
type Goal struct {
	Pattern  string   `yaml:"goal"`
	Keywords []string `yaml:"keywords"`
}

// Profile is a named, reusable bundle of configuration overrides.
type Profile struct {
	Name            string                `yaml:"name"`
	Description     string                `yaml:"description"`
	SecurityProfile model.SecurityProfile `yaml:"security_profile,omitempty"`
	TrustedDomains  []string              `yaml:"trusted_domains,omitempty"`
	CriticalPaths   []string              `yaml:"critical_paths,omitempty"`
	Review          review.Config         `yaml:"review,omitempty"`
	IntentionGoals  []Goal                `yaml:"intention_goals,omitempty"`
}

// Load loads a profile by name. Checks built-in profiles first,
// then falls back to ~/.ladder/profiles/<name>.yaml.
func Load(name string) (*Profile, error) {
	if data, ok := builtinProfiles[name]; ok {
		var p Profile
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to parse built-in profile %q: %w", name, err)
		}
		return &p, nil
	}

	dir := userDir()
	if dir == "" {
		return nil, fmt.Errorf("profile %q not found (no built-in, cannot determine home dir)", name)
	}

	data, err := os.ReadFile(filepath.Join(dir, name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("profile %q not found", name)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %q: %w", name, err)
	}
	if err := Validate(&p); err != nil {
		return nil, fmt.Errorf("profile %q: %w", name, err)
	}
	return &p, nil
}

// IsBuiltin reports whether name is shipped with the binary.
func IsBuiltin(name string) bool {
	_, ok := builtinProfiles[name]
	return ok
}

// Raw returns the YAML source of a profile.
func Raw(name string) ([]byte, error) {
	if data, ok := builtinProfiles[name]; ok {
		return data, nil
	}
	dir := userDir()
	if dir == "" {
		return nil, fmt.Errorf("profile %q not found", name)
	}
	data, err := os.ReadFile(filepath.Join(dir, name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("profile %q not found", name)
	}
	return data, nil
}

// List returns sorted names of all available profiles (built-in + user).
func List() []string {
	seen := make(map[string]bool)
	for name := range builtinProfiles {
		seen[name] = true
	}

	if dir := userDir(); dir != "" {
		entries, err := os.ReadDir(dir)
		if err == nil {
			for _, e := range entries {
				if e.IsDir() {
					continue
				}
				name := e.Name()
				if ext := filepath.Ext(name); ext == ".yaml" || ext == ".yml" {
					seen[name[:len(name)-len(ext)]] = true
				}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UserDir returns ~/.ladder/profiles.
func UserDir() string { return userDir() }

func userDir() string {
	dir := config.Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "profiles")
}

// Validate checks that a profile is well-formed.
func Validate(p *Profile) error {
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if p.SecurityProfile != "" && !p.SecurityProfile.Valid() {
		return fmt.Errorf("unknown security_profile %q", p.SecurityProfile)
	}
	for i, g := range p.IntentionGoals {
		if _, err := regexp.Compile("(?i)" + g.Pattern); err != nil {
			return fmt.Errorf("intention_goals[%d]: invalid regex %q: %w", i, g.Pattern, err)
		}
		if len(g.Keywords) == 0 {
			return fmt.Errorf("intention_goals[%d]: keywords are required", i)
		}
	}
	return nil
}
