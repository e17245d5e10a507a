package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ladder/internal/config"
	"github.com/ppiankov/ladder/internal/profile"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check readiness and diagnose configuration issues",
	RunE:  runDoctor,
}

type checkResult struct {
	label  string
	ok     bool
	detail string
	fix    string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	checks := doctorChecks(configPath)
	out := cmd.OutOrStdout()
	if printChecks(out, checks) {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Some checks failed. Run the suggested commands to fix.")
		return fmt.Errorf("doctor found issues")
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "All checks passed.")
	return nil
}

func doctorChecks(path string) []checkResult {
	var checks []checkResult

	if path == "" {
		path = config.DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		checks = append(checks, checkResult{label: "config file", ok: true, detail: path})
	} else {
		checks = append(checks, checkResult{
			label:  "config file",
			ok:     false,
			detail: "missing (defaults in use)",
			fix:    "ladder init-config",
		})
	}

	cfg, hash, err := config.LoadConfigWithHash(path)
	if err != nil {
		return append(checks, checkResult{label: "config", ok: false, detail: err.Error(), fix: "fix " + path})
	}
	checks = append(checks, checkResult{
		label:  "config",
		ok:     true,
		detail: fmt.Sprintf("%s profile, %s", cfg.SecurityProfile, hash),
	})

	if cfg.Profile != "" {
		if p, err := profile.Load(cfg.Profile); err != nil {
			checks = append(checks, checkResult{label: "profile", ok: false, detail: err.Error(), fix: "ladder profile list"})
		} else if err := profile.Validate(p); err != nil {
			checks = append(checks, checkResult{label: "profile", ok: false, detail: err.Error()})
		} else {
			checks = append(checks, checkResult{label: "profile", ok: true, detail: cfg.Profile})
		}
	}

	if cfg.ApprovalPIN != "" {
		checks = append(checks, checkResult{label: "approval PIN", ok: true, detail: "configured"})
	} else {
		checks = append(checks, checkResult{
			label:  "approval PIN",
			ok:     false,
			detail: "not set; level C requests cannot be approved",
			fix:    "set approval_pin or " + config.EnvApprovalPIN,
		})
	}

	if git, err := exec.LookPath("git"); err == nil {
		checks = append(checks, checkResult{label: "git", ok: true, detail: git})
	} else {
		checks = append(checks, checkResult{
			label:  "git",
			ok:     false,
			detail: "not found; every path counts as untracked",
			fix:    "install git",
		})
	}

	if cfg.Audit.JSONLPath == "" && cfg.Audit.SQLitePath == "" {
		checks = append(checks, checkResult{
			label:  "audit",
			ok:     false,
			detail: "no sink configured",
			fix:    "set audit.jsonl_path or audit.sqlite_path",
		})
	} else {
		checks = append(checks, checkResult{label: "audit", ok: true, detail: "configured"})
	}
	if n := len(cfg.Alerts); n > 0 {
		checks = append(checks, checkResult{label: "alerts", ok: true, detail: fmt.Sprintf("%d webhook(s)", n)})
	}

	return checks
}

// printChecks prints one line per check and reports whether any failed.
func printChecks(w io.Writer, checks []checkResult) bool {
	hasFailures := false
	for _, c := range checks {
		mark := "\u2713" // ✓
		if !c.ok {
			mark = "\u2717" // ✗
			hasFailures = true
		}
		line := fmt.Sprintf("%s %-20s %s", mark, c.label+":", c.detail)
		if !c.ok && c.fix != "" {
			line += fmt.Sprintf("  ->  %s", c.fix)
		}
		fmt.Fprintln(w, line)
	}
	return hasFailures
}
