package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	laddermcp "github.com/ppiankov/ladder/internal/mcp"
)

var (
	mcpProfile  string
	mcpAuditLog string
	mcpWatch    bool
)

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpProfile, "profile", "", "Profile to apply (e.g., coding-agent)")
	mcpCmd.Flags().StringVar(&mcpAuditLog, "audit-log", "", "Append decisions to this JSONL file")
	mcpCmd.Flags().BoolVar(&mcpWatch, "watch", true, "Reload the config file when it changes")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long: "Runs ladder as an MCP (Model Context Protocol) server over stdio.\n" +
		"Exposes tools: ladder_evaluate, ladder_review, ladder_ui_confirmation, ladder_approve, ladder_pending.",
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	srv, err := laddermcp.New(laddermcp.Config{
		ConfigPath:   configPath,
		ProfileName:  mcpProfile,
		AuditLogPath: mcpAuditLog,
		Watch:        mcpWatch,
		Version:      version,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down MCP server...")
		cancel()
	}()

	fmt.Fprintln(os.Stderr, "ladder MCP server running on stdio")
	if mcpProfile != "" {
		fmt.Fprintf(os.Stderr, "Profile: %s\n", mcpProfile)
	}
	fmt.Fprintln(os.Stderr)

	return srv.Run(ctx)
}
