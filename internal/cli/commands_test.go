package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/ladder/internal/approval"
	"github.com/ppiankov/ladder/internal/audit"
	"github.com/ppiankov/ladder/internal/model"
)

func writeConfig(t *testing.T, home, content string) string {
	t.Helper()
	path := filepath.Join(home, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func resetEvaluateFlags() {
	evalTool, evalArgs, evalMessage, evalProfile, evalAuditLog = "", "", "", "", ""
	evalFormat = "text"
	evalInteractive = false
}

func TestEvaluateJSON(t *testing.T) {
	home := isolate(t)
	configPath = writeConfig(t, home, "target_dir: /workspace\n")
	defer func() { configPath = "" }()
	resetEvaluateFlags()
	evalTool = "run_shell_command"
	evalArgs = `{"command": "sudo rm -rf /var/log/app"}`
	evalFormat = "json"
	evalAuditLog = filepath.Join(home, "audit.jsonl")

	var buf bytes.Buffer
	if err := runEvaluate(testCmd(&buf), nil); err != nil {
		t.Fatalf("runEvaluate failed: %v", err)
	}

	var d model.Decision
	if err := json.Unmarshal(buf.Bytes(), &d); err != nil {
		t.Fatalf("output is not a decision: %v\n%s", err, buf.String())
	}
	if d.Risk.Score != model.RiskPin || d.Review.Level != model.ReviewC {
		t.Errorf("expected pin/C, got %s/%s", d.Risk.Score, d.Review.Level)
	}

	records, err := audit.ReadLog(evalAuditLog, audit.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].DecisionID != d.ID {
		t.Errorf("expected the decision in the audit log, got %+v", records)
	}
}

func TestEvaluateText(t *testing.T) {
	home := isolate(t)
	configPath = writeConfig(t, home, "target_dir: /workspace\n")
	defer func() { configPath = "" }()
	resetEvaluateFlags()
	evalTool = "run_shell_command"
	evalArgs = `{"command": "rm -rf node_modules"}`
	evalMessage = "clean up project"

	var buf bytes.Buffer
	if err := runEvaluate(testCmd(&buf), nil); err != nil {
		t.Fatalf("runEvaluate failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"CONFIRM", "[B]", "task-derived", "rm -rf node_modules"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestEvaluateUnknownFormat(t *testing.T) {
	home := isolate(t)
	configPath = writeConfig(t, home, "target_dir: /workspace\n")
	defer func() { configPath = "" }()
	resetEvaluateFlags()
	evalTool = "read_file"
	evalArgs = `{"path": "/workspace/a.txt"}`
	evalFormat = "xml"

	var buf bytes.Buffer
	if err := runEvaluate(testCmd(&buf), nil); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestReviewUI(t *testing.T) {
	home := isolate(t)
	configPath = writeConfig(t, home, "review:\n  click_min_review_level: C\n")
	defer func() { configPath = "" }()
	reviewTool = "ui_click"
	reviewArgs = `{"selector": "button#submit"}`
	reviewProfile = ""
	reviewFormat = "text"

	var buf bytes.Buffer
	if err := runReview(testCmd(&buf), nil); err != nil {
		t.Fatalf("runReview failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Minimum review level C") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "No approval PIN configured") {
		t.Errorf("expected PIN setup hint:\n%s", out)
	}

	reviewArgs = `{"selector": "div["}`
	if err := runReview(testCmd(&buf), nil); err == nil || !strings.Contains(err.Error(), "div[") {
		t.Errorf("expected selector error, got %v", err)
	}
}

func TestReviewNonUI(t *testing.T) {
	home := isolate(t)
	configPath = writeConfig(t, home, "target_dir: /workspace\n")
	defer func() { configPath = "" }()
	reviewTool = "file_operations"
	reviewArgs = `{"operation": "delete", "path": "/workspace", "recursive": true}`
	reviewProfile = ""
	reviewFormat = "json"

	var buf bytes.Buffer
	if err := runReview(testCmd(&buf), nil); err != nil {
		t.Fatalf("runReview failed: %v", err)
	}
	var res model.DeterministicReviewResult
	if err := json.Unmarshal(buf.Bytes(), &res); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if res.Level != model.ReviewC || !res.RequiresPin {
		t.Errorf("expected level C with PIN, got %+v", res)
	}
}

func pinDecision(id string) *model.Decision {
	return &model.Decision{
		ID:     id,
		Action: model.ActionProfile{ToolName: "run_shell_command", RawSummary: "run_shell_command: sudo rm -rf /var/log/app"},
		Risk:   model.RiskAssessment{Score: model.RiskPin},
		Review: model.DeterministicReviewResult{Level: model.ReviewC, RequiresClick: true, RequiresPin: true},
	}
}

func TestPendingAndApprove(t *testing.T) {
	home := isolate(t)
	configPath = writeConfig(t, home, "approval_pin: \"135790\"\n")
	defer func() { configPath = "" }()
	pendingAll = false
	approveDuration, approvePIN, approveDeny = 0, "", false

	var buf bytes.Buffer
	if err := runPending(testCmd(&buf), nil); err != nil {
		t.Fatalf("runPending failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No pending approvals.") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	store, err := approval.NewStore(approval.DefaultDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Request(pinDecision("req-1")); err != nil {
		t.Fatal(err)
	}

	buf.Reset()
	if err := runPending(testCmd(&buf), nil); err != nil {
		t.Fatalf("runPending failed: %v", err)
	}
	if !strings.Contains(buf.String(), "req-1") || !strings.Contains(buf.String(), "pin") {
		t.Errorf("expected the request in the listing:\n%s", buf.String())
	}

	if err := runApprove(testCmd(&buf), []string{"req-1"}); err == nil {
		t.Fatal("expected error without PIN")
	}

	approvePIN = "135790"
	approveDuration = 5 * time.Minute
	defer func() { approvePIN, approveDuration = "", 0 }()
	buf.Reset()
	if err := runApprove(testCmd(&buf), []string{"req-1"}); err != nil {
		t.Fatalf("runApprove failed: %v", err)
	}
	if !strings.Contains(buf.String(), `Approved "req-1" for 5m0s`) {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	status, err := store.Check("req-1")
	if err != nil {
		t.Fatal(err)
	}
	if status != approval.StatusApproved {
		t.Errorf("status %q", status)
	}
}

func TestApproveDeny(t *testing.T) {
	isolate(t)
	approveDuration, approvePIN, approveDeny = 0, "", true
	defer func() { approveDeny = false }()

	store, err := approval.NewStore(approval.DefaultDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Request(pinDecision("req-2")); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := runApprove(testCmd(&buf), []string{"req-2"}); err != nil {
		t.Fatalf("runApprove failed: %v", err)
	}
	a, err := store.Get("req-2")
	if err != nil {
		t.Fatal(err)
	}
	if a.Status != approval.StatusDenied {
		t.Errorf("status %q", a.Status)
	}
}

func TestAuditList(t *testing.T) {
	home := isolate(t)
	logPath := filepath.Join(home, "audit.jsonl")
	log, err := audit.Open(logPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range []audit.Record{
		{DecisionID: "a", Tool: "read_file", Risk: model.RiskPass, ReviewLevel: model.ReviewA},
		{DecisionID: "b", Tool: "run_shell_command", Risk: model.RiskPin, ReviewLevel: model.ReviewC, RequiresPin: true},
	} {
		if err := log.Record(r); err != nil {
			t.Fatal(err)
		}
	}
	log.Close()

	auditLogPath, auditDBPath = logPath, ""
	auditTool, auditMinLevel = "", ""
	auditMinRisk = "confirm"
	auditSince, auditLimit, auditFormat = 0, 50, "json"
	defer func() { auditLogPath, auditMinRisk, auditFormat = "", "", "text" }()

	var buf bytes.Buffer
	if err := runAuditList(testCmd(&buf), nil); err != nil {
		t.Fatalf("runAuditList failed: %v", err)
	}
	var records []audit.Record
	if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if len(records) != 1 || records[0].DecisionID != "b" {
		t.Errorf("expected only the pin decision, got %+v", records)
	}

	auditMinRisk = "severe"
	if err := runAuditList(testCmd(&buf), nil); err == nil {
		t.Error("expected error for unknown risk")
	}
}

func TestAuditListNoSink(t *testing.T) {
	isolate(t)
	auditLogPath, auditDBPath, auditMinRisk, auditMinLevel = "", "", "", ""
	var buf bytes.Buffer
	if err := runAuditList(testCmd(&buf), nil); err == nil {
		t.Error("expected error without an audit sink")
	}
}

func TestDoctorChecks(t *testing.T) {
	home := isolate(t)
	path := writeConfig(t, home, "approval_pin: \"135790\"\naudit:\n  jsonl_path: /tmp/ladder.jsonl\n")

	checks := doctorChecks(path)
	byLabel := map[string]checkResult{}
	for _, c := range checks {
		byLabel[c.label] = c
	}
	for _, label := range []string{"config file", "config", "approval PIN", "audit"} {
		if !byLabel[label].ok {
			t.Errorf("check %q failed: %+v", label, byLabel[label])
		}
	}

	checks = doctorChecks(filepath.Join(home, "missing.yaml"))
	var buf bytes.Buffer
	if !printChecks(&buf, checks) {
		t.Error("missing config and PIN should fail")
	}
	if !strings.Contains(buf.String(), "ladder init-config") {
		t.Errorf("expected fix hint:\n%s", buf.String())
	}
}

func TestProfileCommands(t *testing.T) {
	isolate(t)
	var buf bytes.Buffer
	if err := runProfileList(testCmd(&buf), nil); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"strict", "balanced", "minimal", "coding-agent", "ui-automation"} {
		if !strings.Contains(buf.String(), name) {
			t.Errorf("list missing %q:\n%s", name, buf.String())
		}
	}

	buf.Reset()
	if err := runProfileShow(testCmd(&buf), []string{"coding-agent"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "trusted_domains") {
		t.Errorf("unexpected show output:\n%s", buf.String())
	}

	buf.Reset()
	if err := runProfileCheck(testCmd(&buf), []string{"ui-automation"}); err != nil {
		t.Fatal(err)
	}
	if err := runProfileCheck(testCmd(&buf), []string{"nope"}); err == nil {
		t.Error("expected error for unknown profile")
	}
}
