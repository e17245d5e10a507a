package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ladder/internal/config"
	"github.com/ppiankov/ladder/internal/profile"
)

var (
	initProfile string
	initForce   bool
)

func init() {
	initCmd.Flags().StringVar(&initProfile, "profile", "", "Profile to select; unknown names get a starter template in ~/.ladder/profiles")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Bootstrap ladder configuration",
	Long: `Creates ~/.ladder/ with a commented config.yaml and a profiles directory.

With --profile NAME, the config selects that profile. Built-in profiles are used
as shipped; any other name gets a starter template at ~/.ladder/profiles/NAME.yaml.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	configDir := config.Dir()
	if configDir == "" {
		return fmt.Errorf("cannot determine home directory")
	}
	out := cmd.OutOrStdout()

	var created []string

	profilesDir := profile.UserDir()
	if err := os.MkdirAll(profilesDir, 0o700); err != nil {
		return fmt.Errorf("create profiles directory: %w", err)
	}

	if initProfile != "" && !profile.IsBuiltin(initProfile) {
		profPath := filepath.Join(profilesDir, initProfile+".yaml")
		if wrote, err := writeIfMissing(profPath, profile.InitProfile(initProfile)); err != nil {
			return err
		} else if wrote {
			created = append(created, profPath)
		}
	}

	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	if wrote, err := writeIfMissing(cfgPath, defaultConfigYAML(initProfile)); err != nil {
		return err
	} else if wrote {
		created = append(created, cfgPath)
	}

	fmt.Fprintln(out, "ladder init complete.")
	fmt.Fprintln(out)
	if len(created) > 0 {
		fmt.Fprintln(out, "Created:")
		for _, path := range created {
			fmt.Fprintf(out, "  %s\n", path)
		}
	} else {
		fmt.Fprintln(out, "All files already exist (use --force to overwrite).")
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Try it:")
	fmt.Fprintln(out, `  ladder evaluate --tool run_shell_command --args '{"command":"rm -rf build"}'`)
	fmt.Fprintln(out, "Serve it to an agent:")
	fmt.Fprintln(out, "  ladder mcp")
	return nil
}

// writeIfMissing writes content to path if it doesn't exist or --force is set.
// Returns true if the file was written.
func writeIfMissing(path, content string) (bool, error) {
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return false, fmt.Errorf("create directory %s: %w", dir, err)
	}

	// The config may hold the approval PIN.
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

func defaultConfigYAML(profileName string) string {
	profileLine := "# profile: coding-agent"
	if profileName != "" {
		profileLine = "profile: " + profileName
	}
	return `# ladder configuration.
# Environment overrides: ` + config.EnvSecurityProfile + `, ` + config.EnvApprovalPIN + `, ` + config.EnvTargetDir + `.

# strict, balanced or minimal.
security_profile: balanced

# Named profile applied on top of this file (see: ladder profile list).
` + profileLine + `

# Workspace root. Empty means the working directory.
target_dir: ""

# Extra directories treated as workspace.
workspace_roots: []

# Six digits. Required to approve level C and pin decisions.
# approval_pin: "123456"

# Network hosts treated as trusted. "*.example.com" also matches example.com.
trusted_domains: []

# Paths that always require a PIN, on top of the built-in list.
critical_paths: []

# Review floors for UI automation (A, B or C).
review:
  click_min_review_level: B
  type_min_review_level: B
  key_min_review_level: B
  scroll_min_review_level: A

# Where decisions are recorded. Empty disables the sink.
audit:
  jsonl_path: ""
  sqlite_path: ""

# Webhooks notified of risky decisions (format: generic, slack or pagerduty).
# alerts:
#   - url: https://hooks.slack.com/services/...
#     format: slack
#     risks: [pin]
`
}
