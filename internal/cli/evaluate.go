package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ladder/internal/engine"
	"github.com/ppiankov/ladder/internal/model"
)

var (
	evalTool        string
	evalArgs        string
	evalMessage     string
	evalProfile     string
	evalFormat      string
	evalAuditLog    string
	evalInteractive bool
)

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringVar(&evalTool, "tool", "", "Tool name the agent wants to call (required)")
	evaluateCmd.Flags().StringVar(&evalArgs, "args", "", "Tool arguments as JSON")
	evaluateCmd.Flags().StringVar(&evalMessage, "user-message", "", "Latest user message, for intention")
	evaluateCmd.Flags().StringVar(&evalProfile, "profile", "", "Profile to apply (e.g., coding-agent)")
	evaluateCmd.Flags().StringVarP(&evalFormat, "format", "f", "text", "Output format (text|json)")
	evaluateCmd.Flags().StringVar(&evalAuditLog, "audit-log", "", "Append the decision to this JSONL file")
	evaluateCmd.Flags().BoolVarP(&evalInteractive, "interactive", "i", false, "Prompt to allow or deny when a human is needed")
	evaluateCmd.MarkFlagRequired("tool")
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score one tool call",
	Long: "Runs a tool call through the approval ladder and prints the risk score\n" +
		"(pass|log|confirm|pin) and the review level (A|B|C).\n\n" +
		"With --interactive, calls that need a human are confirmed in the terminal,\n" +
		"asking for the approval PIN at level C.",
	Example: `  ladder evaluate --tool run_shell_command --args '{"command":"rm -rf node_modules"}' --user-message "clean up project"`,
	RunE:    runEvaluate,
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	rt, err := engine.Open(engine.RuntimeOptions{
		ConfigPath:   configPath,
		ProfileName:  evalProfile,
		AuditLogPath: evalAuditLog,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	var history []model.Turn
	if evalMessage != "" {
		history = []model.Turn{{Role: model.RoleUser, Content: evalMessage}}
	}

	d, err := rt.Evaluator.EvaluateRequest(cmdContext(cmd), engine.Request{
		Tool:    evalTool,
		RawArgs: evalArgs,
		History: history,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := printDecision(out, d, evalFormat); err != nil {
		return err
	}

	if !evalInteractive || !d.NeedsHuman() {
		return nil
	}
	if !interactiveStdin() {
		return fmt.Errorf("--interactive needs a terminal on stdin")
	}
	return confirmInTerminal(out, rt, d)
}

func printDecision(w io.Writer, d *model.Decision, format string) error {
	switch format {
	case "json":
		return writeJSON(w, d, colorStdout(w))
	case "text", "":
		renderDecision(w, d)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}
}

func confirmInTerminal(w io.Writer, rt *engine.Runtime, d *model.Decision) error {
	if err := rt.Approvals.Request(d); err != nil {
		return err
	}

	allowed, pin, err := promptApproval(d)
	if err != nil {
		return err
	}
	if !allowed {
		if err := rt.Approvals.Deny(d.ID); err != nil {
			return err
		}
		fmt.Fprintln(w, "Denied.")
		return nil
	}
	if err := rt.Approvals.Approve(d.ID, pin); err != nil {
		return err
	}
	fmt.Fprintln(w, "Approved.")
	return nil
}
