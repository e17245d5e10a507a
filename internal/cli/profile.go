package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ladder/internal/profile"
)

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileCheckCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage ladder profiles",
	Long:  "List, show, and check profiles: named presets of security profile, trusted domains,\ncritical paths, review floors, and intention goals.",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available profiles",
	RunE:  runProfileList,
}

var profileShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a profile's YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileShow,
}

var profileCheckCmd = &cobra.Command{
	Use:   "check <name>",
	Short: "Validate a profile loads cleanly",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileCheck,
}

func runProfileList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	names := profile.List()
	if len(names) == 0 {
		fmt.Fprintln(out, "No profiles available.")
		return nil
	}

	fmt.Fprintln(out, "Available profiles:")
	for _, name := range names {
		p, err := profile.Load(name)
		if err != nil {
			fmt.Fprintf(out, "  %-15s (error loading: %v)\n", name, err)
			continue
		}
		source := "user"
		if profile.IsBuiltin(name) {
			source = "built-in"
		}
		fmt.Fprintf(out, "  %-15s %-9s %-9s %s\n", name, source, p.SecurityProfile, p.Description)
	}
	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	data, err := profile.Raw(args[0])
	if err != nil {
		return fmt.Errorf("failed to load profile %q: %w", args[0], err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runProfileCheck(cmd *cobra.Command, args []string) error {
	name := args[0]
	p, err := profile.Load(name)
	if err != nil {
		return fmt.Errorf("failed to load profile %q: %w", name, err)
	}
	if err := profile.Validate(p); err != nil {
		return fmt.Errorf("profile %q is invalid: %w", name, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Profile %q is valid.\n", p.Name)
	fmt.Fprintf(out, "  Security profile:  %s\n", p.SecurityProfile)
	fmt.Fprintf(out, "  Trusted domains:   %d\n", len(p.TrustedDomains))
	fmt.Fprintf(out, "  Critical paths:    %d\n", len(p.CriticalPaths))
	fmt.Fprintf(out, "  Intention goals:   %d\n", len(p.IntentionGoals))
	return nil
}
