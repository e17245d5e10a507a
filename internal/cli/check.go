package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ladder/internal/scenario"
)

var (
	checkScenario string
	checkFormat   string
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkScenario, "scenario", "", "Glob pattern for scenario YAML files (required)")
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "Output format (text|json)")
	checkCmd.MarkFlagRequired("scenario")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Assert risk scores and review levels from scenario files",
	Long: "Evaluates every case in the scenario files matching --scenario against the\n" +
		"current config (or the scenario's own profile) and compares the risk score\n" +
		"and review level with the expected ones. Git tracking comes from each\n" +
		"scenario's tracked list, so results do not depend on the working tree.\n\n" +
		"Exits 1 when any case fails.",
	Example: "  ladder check --scenario 'scenarios/*.yaml'",
	RunE:    runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	results, err := scenario.RunGlob(cmdContext(cmd), checkScenario, configPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch checkFormat {
	case "json":
		if err := writeJSON(out, results, colorStdout(out)); err != nil {
			return err
		}
	case "text":
		fmt.Fprint(out, scenario.FormatText(results))
	default:
		return fmt.Errorf("unknown format %q", checkFormat)
	}

	if !scenario.AllPassed(results) {
		logger.Debug("scenario check failed")
		os.Exit(1)
	}
	return nil
}
