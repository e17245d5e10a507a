package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ladder/internal/approval"
	"github.com/ppiankov/ladder/internal/config"
)

var pendingAll bool

func init() {
	rootCmd.AddCommand(pendingCmd)
	pendingCmd.Flags().BoolVarP(&pendingAll, "all", "a", false, "Include resolved requests")
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List pending confirmation requests",
	Long:  "Shows confirmation requests with their risk, review level, and timestamps.",
	RunE:  runPending,
}

func openApprovals() (*approval.Store, error) {
	store, err := approval.NewStore(approval.DefaultDir(), func() string {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return ""
		}
		return cfg.ApprovalPIN
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open approval store: %w", err)
	}
	return store, nil
}

func runPending(cmd *cobra.Command, args []string) error {
	store, err := openApprovals()
	if err != nil {
		return err
	}

	list, err := store.Pending()
	if pendingAll {
		list, err = store.List()
	}
	if err != nil {
		return fmt.Errorf("failed to list approvals: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintln(out, "No pending approvals.")
		return nil
	}

	fmt.Fprintf(out, "%-38s %-10s %-8s %-5s %-40s %s\n", "KEY", "STATUS", "RISK", "LEVEL", "ACTION", "CREATED")
	for _, a := range list {
		fmt.Fprintf(out, "%-38s %-10s %-8s %-5s %-40s %s\n",
			a.Key,
			a.Status,
			a.Risk,
			a.Level,
			truncate(a.Summary, 40),
			a.CreatedAt.Local().Format("15:04:05"),
		)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
