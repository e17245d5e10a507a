package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ladder/internal/config"
)

// testCmd returns a bare command whose output lands in buf.
func testCmd(buf *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	return cmd
}

// isolate points HOME at a temp dir and clears LADDER_* overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(config.EnvSecurityProfile, "")
	t.Setenv(config.EnvApprovalPIN, "")
	t.Setenv(config.EnvTargetDir, "")
	configPath = ""
	interactiveStdin = func() bool { return false }
	return home
}

func TestRunInit_UserMode(t *testing.T) {
	home := isolate(t)
	initProfile = ""
	initForce = false

	var buf bytes.Buffer
	if err := runInit(testCmd(&buf), nil); err != nil {
		t.Fatalf("runInit failed: %v", err)
	}

	configDir := filepath.Join(home, ".ladder")
	if _, err := os.Stat(filepath.Join(configDir, "profiles")); err != nil {
		t.Error("profiles directory not created")
	}

	cfgPath := filepath.Join(configDir, "config.yaml")
	info, err := os.Stat(cfgPath)
	if err != nil {
		t.Fatalf("config.yaml not created: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config.yaml mode %v, want 0600", info.Mode().Perm())
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if cfg.SecurityProfile != "balanced" {
		t.Errorf("security profile %q", cfg.SecurityProfile)
	}
	if !strings.Contains(buf.String(), "Created:") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestRunInit_NoOverwriteWithoutForce(t *testing.T) {
	home := isolate(t)
	configDir := filepath.Join(home, ".ladder")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		t.Fatal(err)
	}

	sentinel := "# sentinel content\n"
	cfgPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(sentinel), 0o600); err != nil {
		t.Fatal(err)
	}

	initProfile = ""
	initForce = false

	var buf bytes.Buffer
	if err := runInit(testCmd(&buf), nil); err != nil {
		t.Fatalf("runInit failed: %v", err)
	}

	data, _ := os.ReadFile(cfgPath)
	if string(data) != sentinel {
		t.Error("config.yaml was overwritten without --force")
	}
	if !strings.Contains(buf.String(), "already exist") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestRunInit_ForceOverwrites(t *testing.T) {
	home := isolate(t)
	configDir := filepath.Join(home, ".ladder")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		t.Fatal(err)
	}

	sentinel := "# sentinel content\n"
	cfgPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(sentinel), 0o600); err != nil {
		t.Fatal(err)
	}

	initProfile = ""
	initForce = true
	defer func() { initForce = false }()

	var buf bytes.Buffer
	if err := runInit(testCmd(&buf), nil); err != nil {
		t.Fatalf("runInit failed: %v", err)
	}

	data, _ := os.ReadFile(cfgPath)
	if string(data) == sentinel {
		t.Error("config.yaml was NOT overwritten with --force")
	}
}

func TestRunInit_Profiles(t *testing.T) {
	tests := []struct {
		name         string
		profile      string
		wantTemplate bool
	}{
		{"built-in", "coding-agent", false},
		{"custom", "my-team", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := isolate(t)
			initProfile = tt.profile
			initForce = false
			defer func() { initProfile = "" }()

			var buf bytes.Buffer
			if err := runInit(testCmd(&buf), nil); err != nil {
				t.Fatalf("runInit failed: %v", err)
			}

			tmpl := filepath.Join(home, ".ladder", "profiles", tt.profile+".yaml")
			_, err := os.Stat(tmpl)
			if tt.wantTemplate && err != nil {
				t.Errorf("expected template at %s", tmpl)
			}
			if !tt.wantTemplate && err == nil {
				t.Errorf("built-in profile should not get a template")
			}

			cfg, err := config.LoadConfig(filepath.Join(home, ".ladder", "config.yaml"))
			if err != nil {
				t.Fatalf("generated config does not load: %v", err)
			}
			if cfg.Profile != tt.profile {
				t.Errorf("profile %q, want %q", cfg.Profile, tt.profile)
			}
		})
	}
}
