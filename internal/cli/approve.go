package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	approveDuration time.Duration
	approvePIN      string
	approveDeny     bool
)

func init() {
	rootCmd.AddCommand(approveCmd)
	approveCmd.Flags().DurationVar(&approveDuration, "duration", 0, "Validity period (e.g., 5m, 1h). Default: one-time use")
	approveCmd.Flags().StringVar(&approvePIN, "pin", "", "Approval PIN for level C requests (prompted when omitted on a terminal)")
	approveCmd.Flags().BoolVar(&approveDeny, "deny", false, "Deny the request instead")
}

var approveCmd = &cobra.Command{
	Use:   "approve <key>",
	Short: "Approve or deny a pending confirmation",
	Long: "Approves a pending confirmation request. Without --duration, approval is one-time\n" +
		"(consumed on first use). With --duration, approval is valid for the specified period.\n" +
		"Requests at review level C or risk pin need the approval PIN.",
	Args: cobra.ExactArgs(1),
	RunE: runApprove,
}

func runApprove(cmd *cobra.Command, args []string) error {
	key := args[0]
	out := cmd.OutOrStdout()

	store, err := openApprovals()
	if err != nil {
		return err
	}

	if approveDeny {
		if err := store.Deny(key); err != nil {
			return err
		}
		fmt.Fprintf(out, "Denied %q\n", key)
		return nil
	}

	a, err := store.Get(key)
	if err != nil {
		return err
	}
	pin := approvePIN
	if a.RequiresPin && pin == "" && interactiveStdin() {
		if err := pinForm(&pin).Run(); err != nil {
			return err
		}
	}

	if err := store.ApproveFor(key, pin, approveDuration); err != nil {
		return err
	}

	if approveDuration > 0 {
		fmt.Fprintf(out, "Approved %q for %s\n", key, approveDuration)
	} else {
		fmt.Fprintf(out, "Approved %q (one-time use)\n", key)
	}
	return nil
}
