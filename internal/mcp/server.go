package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/ppiankov/ladder/internal/engine"
)

// Config holds MCP server configuration.
type Config struct {
	ConfigPath   string
	ProfileName  string
	ApprovalDir  string
	AuditLogPath string
	// Watch reloads the config file while the server runs.
	Watch   bool
	Version string
	Logger  *zap.Logger

	// Git replaces the git oracle in tests.
	Git engine.GitOracle
}

// Server exposes the approval ladder as MCP tools.
type Server struct {
	mcpServer *mcpsdk.Server
	runtime   *engine.Runtime
	logger    *zap.Logger
	watch     bool
}

// New creates an MCP server with the loaded config, approval store and tools.
func New(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	rt, err := engine.Open(engine.RuntimeOptions{
		ConfigPath:   cfg.ConfigPath,
		ProfileName:  cfg.ProfileName,
		ApprovalDir:  cfg.ApprovalDir,
		AuditLogPath: cfg.AuditLogPath,
		Git:          cfg.Git,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}
	// Approvals from a previous session never carry over.
	if err := rt.Approvals.Cleanup(); err != nil {
		logger.Warn("approval cleanup failed", zap.Error(err))
	}

	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		runtime: rt,
		logger:  logger,
		watch:   cfg.Watch,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "ladder",
			Version: version,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if s.watch {
		go func() {
			if err := s.runtime.Watch(ctx); err != nil {
				s.logger.Warn("config watch disabled", zap.Error(err))
			}
		}()
	}
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close closes the audit sinks.
func (s *Server) Close() error {
	return s.runtime.Close()
}

// registerTools adds all ladder tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "ladder_evaluate",
		Description: "Score a proposed tool call before running it. Returns the risk score (pass/log/confirm/pin), the review level (A/B/C) and an approval_key when a human must confirm.",
	}, s.handleEvaluate)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "ladder_review",
		Description: "Compute only the minimum review level (A/B/C) for a tool call.",
	}, s.handleReview)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "ladder_ui_confirmation",
		Description: "Build the confirmation dialog details for a UI automation call (click, type, key, scroll).",
	}, s.handleUIConfirmation)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "ladder_approve",
		Description: "Deny a pending confirmation, or approve a level C request with the approval PIN. Click-level requests are approved by the user with `ladder approve`.",
	}, s.handleApprove)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "ladder_pending",
		Description: "List all pending confirmation requests.",
	}, s.handlePending)
}
