package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/ladder/internal/approval"
	"github.com/ppiankov/ladder/internal/config"
)

type fakeGit map[string]bool

func (g fakeGit) IsTracked(_ context.Context, path string) bool { return g[path] }

const testConfig = `target_dir: /workspace
approval_pin: "424242"
review:
  click_min_review_level: C
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv(config.EnvSecurityProfile, "")
	t.Setenv(config.EnvApprovalPIN, "")
	t.Setenv(config.EnvTargetDir, "")

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(testConfig), 0600); err != nil {
		t.Fatal(err)
	}
	s, err := New(Config{
		ConfigPath:  cfgPath,
		ApprovalDir: filepath.Join(dir, "pending"),
		Git:         fakeGit{"/workspace/src/file.txt": true},
	})
	if err != nil {
		t.Fatalf("failed to create MCP server: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func evaluateShell(t *testing.T, s *Server, cmd string) EvaluateOutput {
	t.Helper()
	_, out, err := s.handleEvaluate(context.Background(), &mcpsdk.CallToolRequest{}, EvaluateInput{
		Tool: "run_shell_command",
		Args: map[string]any{"command": cmd},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return out
}

func TestEvaluatePinCreatesApproval(t *testing.T) {
	s := newTestServer(t)

	out := evaluateShell(t, s, "sudo rm -rf /var/log/app")
	if out.Verdict != VerdictPIN {
		t.Fatalf("expected verdict pin, got %q", out.Verdict)
	}
	if out.Risk != "pin" || out.ReviewLevel != "C" {
		t.Fatalf("expected pin/C, got %s/%s", out.Risk, out.ReviewLevel)
	}
	if !out.RequiresPin || !out.RequiresClick {
		t.Fatal("expected click and PIN to be required")
	}
	if out.ApprovalKey != out.ID {
		t.Fatalf("expected approval key %q, got %q", out.ID, out.ApprovalKey)
	}
	if len(out.Reasons) == 0 {
		t.Fatal("expected reasons")
	}
}

func TestEvaluateTrackedEdit(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.handleEvaluate(context.Background(), &mcpsdk.CallToolRequest{}, EvaluateInput{
		Tool:        "edit_file",
		Args:        map[string]any{"file_path": "/workspace/src/file.txt", "content": "x"},
		UserMessage: "update /workspace/src/file.txt please",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Risk != "pass" {
		t.Fatalf("expected pass, got %q", out.Risk)
	}
	if out.Outcome != "reversible" || out.Intention != "explicit" || out.Domain != "workspace" {
		t.Fatalf("unexpected classification %s/%s/%s", out.Outcome, out.Intention, out.Domain)
	}
	if out.Verdict != VerdictConfirm {
		t.Fatalf("writes need a click, got verdict %q", out.Verdict)
	}
	if out.RequiresPin {
		t.Fatal("expected no PIN")
	}
}

func TestEvaluateConversation(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.handleEvaluate(context.Background(), &mcpsdk.CallToolRequest{}, EvaluateInput{
		Tool: "run_shell_command",
		Args: map[string]any{"command": "rm -rf node_modules"},
		Conversation: []Turn{
			{Role: "user", Content: "clean up project"},
			{Role: "assistant", Content: "I will remove the dependency folder."},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Intention != "task-derived" {
		t.Fatalf("expected task-derived, got %q", out.Intention)
	}
}

func TestEvaluateRawArgs(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.handleEvaluate(context.Background(), &mcpsdk.CallToolRequest{}, EvaluateInput{
		Tool:    "read_file",
		RawArgs: `{"path": "/workspace/README.md",}`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Confidence != "medium" {
		t.Fatalf("expected repaired arguments to lower confidence, got %q", out.Confidence)
	}
	if len(out.TouchedPaths) != 1 || out.TouchedPaths[0] != "/workspace/README.md" {
		t.Fatalf("unexpected paths %v", out.TouchedPaths)
	}
}

func TestEvaluateRequiresTool(t *testing.T) {
	s := newTestServer(t)
	if _, _, err := s.handleEvaluate(context.Background(), &mcpsdk.CallToolRequest{}, EvaluateInput{}); err == nil {
		t.Fatal("expected error for missing tool")
	}
}

func TestReview(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.handleReview(context.Background(), &mcpsdk.CallToolRequest{}, CallInput{
		Tool: "file_operations",
		Args: map[string]any{"operation": "delete", "path": "/workspace", "recursive": true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Level != "C" || !out.RequiresPin {
		t.Fatalf("expected level C with PIN, got %+v", out)
	}
}

func TestUIConfirmation(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, out, err := s.handleUIConfirmation(ctx, &mcpsdk.CallToolRequest{}, CallInput{
		Tool: "ui_click",
		Args: map[string]any{"selector": "button#submit"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.RequiresPin {
		t.Fatal("expected requires_pin with click floor C")
	}
	if out.NeedsPinSetup {
		t.Fatal("a PIN is configured")
	}
	if !strings.Contains(out.Explanation, "Minimum review level C") {
		t.Fatalf("unexpected explanation %q", out.Explanation)
	}

	_, _, err = s.handleUIConfirmation(ctx, &mcpsdk.CallToolRequest{}, CallInput{
		Tool: "ui_click",
		Args: map[string]any{"selector": "div["},
	})
	if err == nil || !strings.Contains(err.Error(), "div[") {
		t.Fatalf("expected error quoting the selector, got %v", err)
	}
}

func TestApproveNeedsPIN(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	key := evaluateShell(t, s, "sudo rm -rf /var/log/app").ApprovalKey

	_, _, err := s.handleApprove(ctx, &mcpsdk.CallToolRequest{}, ApproveInput{Key: key})
	if !errors.Is(err, approval.ErrPINRequired) {
		t.Fatalf("expected ErrPINRequired, got %v", err)
	}
	_, _, err = s.handleApprove(ctx, &mcpsdk.CallToolRequest{}, ApproveInput{Key: key, PIN: "000000"})
	if !errors.Is(err, approval.ErrPINMismatch) {
		t.Fatalf("expected ErrPINMismatch, got %v", err)
	}

	_, out, err := s.handleApprove(ctx, &mcpsdk.CallToolRequest{}, ApproveInput{Key: key, PIN: "424242"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != "approved" {
		t.Fatalf("expected approved, got %q", out.Status)
	}
}

func TestApproveClickLevelNeedsHuman(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	key := evaluateShell(t, s, "rm -rf node_modules").ApprovalKey
	if key == "" {
		t.Fatal("expected an approval key")
	}

	_, _, err := s.handleApprove(ctx, &mcpsdk.CallToolRequest{}, ApproveInput{Key: key})
	if !errors.Is(err, ErrHumanApproval) {
		t.Fatalf("expected ErrHumanApproval, got %v", err)
	}
	if !strings.Contains(err.Error(), "ladder approve "+key) {
		t.Fatalf("expected CLI hint in %q", err)
	}

	st, err := s.runtime.Approvals.Check(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st != approval.StatusPending {
		t.Fatalf("expected request to stay pending, got %q", st)
	}
}

func TestApproveWithDuration(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	key := evaluateShell(t, s, "sudo rm -rf /var/log/app").ApprovalKey
	if key == "" {
		t.Fatal("expected an approval key")
	}

	_, out, err := s.handleApprove(ctx, &mcpsdk.CallToolRequest{}, ApproveInput{
		Key:      key,
		PIN:      "424242",
		Duration: "5m",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Duration != "5m0s" {
		t.Fatalf("expected 5m0s duration, got %q", out.Duration)
	}

	if _, _, err := s.handleApprove(ctx, &mcpsdk.CallToolRequest{}, ApproveInput{Key: key, PIN: "424242", Duration: "soon"}); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestDeny(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	key := evaluateShell(t, s, "rm -rf node_modules").ApprovalKey

	_, out, err := s.handleApprove(ctx, &mcpsdk.CallToolRequest{}, ApproveInput{Key: key, Deny: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != "denied" {
		t.Fatalf("expected denied, got %q", out.Status)
	}
}

func TestPendingList(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	first := evaluateShell(t, s, "sudo rm -rf /var/log/app")
	evaluateShell(t, s, "rm -rf node_modules")

	_, out, err := s.handlePending(ctx, &mcpsdk.CallToolRequest{}, PendingInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Approvals) != 2 {
		t.Fatalf("expected 2 approvals, got %d", len(out.Approvals))
	}

	if _, _, err := s.handleApprove(ctx, &mcpsdk.CallToolRequest{}, ApproveInput{Key: first.ApprovalKey, Deny: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, out, err = s.handlePending(ctx, &mcpsdk.CallToolRequest{}, PendingInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Approvals) != 1 {
		t.Fatalf("expected 1 approval after deny, got %d", len(out.Approvals))
	}
}

func TestStaleApprovalsCleared(t *testing.T) {
	t.Setenv(config.EnvSecurityProfile, "")
	t.Setenv(config.EnvApprovalPIN, "")
	t.Setenv(config.EnvTargetDir, "")
	dir := t.TempDir()
	pending := filepath.Join(dir, "pending")
	if err := os.MkdirAll(pending, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pending, "old.json"), []byte(`{"key":"old","status":"approved"}`), 0600); err != nil {
		t.Fatal(err)
	}

	s, err := New(Config{ConfigPath: filepath.Join(dir, "missing.yaml"), ApprovalDir: pending})
	if err != nil {
		t.Fatalf("failed to create MCP server: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Join(pending, "old.json")); !os.IsNotExist(err) {
		t.Fatal("expected stale approval to be removed")
	}
}

func TestToolRegistration(t *testing.T) {
	s := newTestServer(t)
	if s.mcpServer == nil {
		t.Fatal("expected MCP server to be initialized")
	}
}
