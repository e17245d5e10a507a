package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/ladder/internal/model"
	"github.com/ppiankov/ladder/internal/oracle"
)

// snapshot is an immutable model.Capabilities built from a Config.
type snapshot struct {
	targetDir string
	homeDir   string
	profile   model.SecurityProfile
	pin       string
	trusted   []string
	critical  []string
	workspace *oracle.Workspace
}

var _ model.Capabilities = (*snapshot)(nil)

func (s *snapshot) TargetDir() string { return s.targetDir }
func (s *snapshot) HomeDir() string { return s.homeDir }
func (s *snapshot) SecurityProfile() model.SecurityProfile { return s.profile }
func (s *snapshot) ApprovalPIN() string { return s.pin }
func (s *snapshot) TrustedDomains() []string { return append([]string(nil), s.trusted...) }
func (s *snapshot) CriticalPaths() []string { return append([]string(nil), s.critical...) }
func (s *snapshot) Workspace() model.WorkspaceContext { return s.workspace }

// Capabilities resolves the config into the read-only view the classifiers
// query. An empty target_dir means the current working directory; the
// target directory is always a workspace root.
func (c *Config) Capabilities() model.Capabilities {
	home := homeDir()

	target := expand(c.TargetDir, home)
	if target == "" {
		if wd, err := os.Getwd(); err == nil {
			target = wd
		}
	}
	if target != "" && !filepath.IsAbs(target) {
		if abs, err := filepath.Abs(target); err == nil {
			target = abs
		}
	}
	if target != "" {
		target = filepath.Clean(target)
	}

	roots := []string{target}
	for _, r := range c.WorkspaceRoots {
		roots = append(roots, expand(r, home))
	}

	trusted := make([]string, 0, len(c.TrustedDomains))
	for _, d := range c.TrustedDomains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			trusted = append(trusted, d)
		}
	}

	profile := c.SecurityProfile
	if profile == "" {
		profile = model.ProfileBalanced
	}

	return &snapshot{
		targetDir: target,
		homeDir:   home,
		profile:   profile,
		pin:       c.ApprovalPIN,
		trusted:   trusted,
		critical:  append([]string(nil), c.CriticalPaths...),
		workspace: oracle.NewWorkspace(roots...),
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

func expand(p, home string) string {
	p = strings.TrimSpace(p)
	switch {
	case p == "~" && home != "":
		return home
	case strings.HasPrefix(p, "~/") && home != "":
		return filepath.Join(home, p[2:])
	}
	return p
}
