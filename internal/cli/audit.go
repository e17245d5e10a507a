package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ladder/internal/audit"
	"github.com/ppiankov/ladder/internal/config"
	"github.com/ppiankov/ladder/internal/model"
)

var (
	auditLogPath  string
	auditDBPath   string
	auditTool     string
	auditMinRisk  string
	auditMinLevel string
	auditSince    time.Duration
	auditLimit    int
	auditFormat   string
)

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditListCmd)
	f := auditListCmd.Flags()
	f.StringVar(&auditLogPath, "log", "", "JSONL audit log (default: audit.jsonl_path from config)")
	f.StringVar(&auditDBPath, "db", "", "SQLite audit database (default: audit.sqlite_path from config)")
	f.StringVar(&auditTool, "tool", "", "Only decisions for this tool")
	f.StringVar(&auditMinRisk, "min-risk", "", "Only decisions at or above this risk (pass|log|confirm|pin)")
	f.StringVar(&auditMinLevel, "min-level", "", "Only decisions at or above this review level (A|B|C)")
	f.DurationVar(&auditSince, "since", 0, "Only decisions newer than this (e.g., 1h)")
	f.IntVarP(&auditLimit, "lines", "n", 50, "Maximum number of decisions to show")
	f.StringVarP(&auditFormat, "format", "f", "text", "Output format (text|json)")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit log operations",
	Long:  "Commands for inspecting recorded ladder decisions.",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded decisions",
	Long: "Reads decisions from the SQLite database when one is configured or given,\n" +
		"otherwise from the JSONL log, and prints them with a summary line.",
	RunE: runAuditList,
}

func auditFilter() (audit.Filter, error) {
	f := audit.Filter{Tool: auditTool, Limit: auditLimit}
	if auditMinRisk != "" {
		r, err := model.ParseRiskScore(auditMinRisk)
		if err != nil {
			return f, err
		}
		f.MinRisk = r
	}
	if auditMinLevel != "" {
		l, err := model.ParseReviewLevel(auditMinLevel)
		if err != nil {
			return f, err
		}
		f.MinLevel = l
	}
	if auditSince > 0 {
		f.From = time.Now().Add(-auditSince)
	}
	return f, nil
}

func runAuditList(cmd *cobra.Command, args []string) error {
	filter, err := auditFilter()
	if err != nil {
		return err
	}

	logPath, dbPath := auditLogPath, auditDBPath
	if logPath == "" && dbPath == "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		logPath, dbPath = cfg.Audit.JSONLPath, cfg.Audit.SQLitePath
	}

	var records []audit.Record
	switch {
	case dbPath != "":
		store, err := audit.OpenSQLite(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		records, err = store.Query(filter)
		if err != nil {
			return err
		}
		// Query returns newest first; the table reads oldest first.
		for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
			records[i], records[j] = records[j], records[i]
		}
	case logPath != "":
		records, err = audit.ReadLog(logPath, filter)
		if err != nil {
			return fmt.Errorf("read audit log: %w", err)
		}
	default:
		return fmt.Errorf("no audit sink configured: pass --log or --db, or set audit.jsonl_path or audit.sqlite_path")
	}

	out := cmd.OutOrStdout()
	if auditFormat == "json" {
		s, err := audit.FormatJSON(records)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, s)
		return nil
	}
	fmt.Fprint(out, audit.FormatTable(records))
	return nil
}
