package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ladder/internal/actionprofile"
	"github.com/ppiankov/ladder/internal/engine"
	"github.com/ppiankov/ladder/internal/model"
	"github.com/ppiankov/ladder/internal/review"
)

var (
	reviewTool    string
	reviewArgs    string
	reviewProfile string
	reviewFormat  string
)

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.Flags().StringVar(&reviewTool, "tool", "", "Tool name (required)")
	reviewCmd.Flags().StringVar(&reviewArgs, "args", "", "Tool arguments as JSON")
	reviewCmd.Flags().StringVar(&reviewProfile, "profile", "", "Profile to apply")
	reviewCmd.Flags().StringVarP(&reviewFormat, "format", "f", "text", "Output format (text|json)")
	reviewCmd.MarkFlagRequired("tool")
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Show the minimum review level for a tool call",
	Long: "Computes only the deterministic review level (A|B|C). For UI automation\n" +
		"tools (click, type, key, scroll) it also prints the confirmation dialog details.",
	RunE: runReview,
}

func runReview(cmd *cobra.Command, args []string) error {
	callArgs := map[string]any{}
	if reviewArgs != "" {
		decoded, _, err := actionprofile.DecodeArgs(reviewArgs)
		if err != nil {
			return fmt.Errorf("invalid --args: %w", err)
		}
		callArgs = decoded
	}

	rt, err := engine.Open(engine.RuntimeOptions{
		ConfigPath:  configPath,
		ProfileName: reviewProfile,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	call := model.ToolCall{Name: reviewTool, Args: callArgs}
	out := cmd.OutOrStdout()

	if _, ok := actionprofile.UIActionFor(reviewTool); ok {
		details, err := rt.Evaluator.UIConfirmation(call)
		if err != nil {
			return err
		}
		if reviewFormat == "json" {
			return writeJSON(out, details, colorStdout(out))
		}
		fmt.Fprintf(out, "%s %s\n", levelBadge(details.Level), styleBold.Render(details.Title))
		fmt.Fprintln(out, details.Explanation)
		if details.NeedsPinSetup {
			fmt.Fprintln(out, styleDim.Render("No approval PIN configured: set approval_pin or LADDER_APPROVAL_PIN."))
		}
		return nil
	}

	res := rt.Evaluator.Review(call)
	if reviewFormat == "json" {
		return writeJSON(out, res, colorStdout(out))
	}
	fmt.Fprintf(out, "%s %s\n", levelBadge(res.Level), review.Explain(res))
	return nil
}
