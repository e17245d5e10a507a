package approval

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/ladder/internal/model"
)

func newTestStore(t *testing.T, pin string) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), func() string { return pin })
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func decision(id string, risk model.RiskScore, level model.ReviewLevel) *model.Decision {
	return &model.Decision{
		ID: id,
		Action: model.ActionProfile{
			ToolName:   "run_shell_command",
			RawSummary: "run_shell_command: rm -rf build",
		},
		Risk: model.RiskAssessment{Score: risk, Reasons: []string{"balanced profile: irreversible"}},
		Review: model.DeterministicReviewResult{
			Level:         level,
			Reasons:       []string{"B: deletes files"},
			RequiresClick: level != model.ReviewA,
			RequiresPin:   level == model.ReviewC,
		},
	}
}

func TestRequestCreatesFile(t *testing.T) {
	s := newTestStore(t, "")
	if err := s.Request(decision("d1", model.RiskConfirm, model.ReviewB)); err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	a, err := s.read("d1")
	if err != nil {
		t.Fatalf("failed to read: %v", err)
	}
	if a.Status != StatusPending {
		t.Errorf("expected status=pending, got %s", a.Status)
	}
	if a.Tool != "run_shell_command" {
		t.Errorf("expected tool=run_shell_command, got %s", a.Tool)
	}
	if a.Risk != model.RiskConfirm || a.Level != model.ReviewB {
		t.Errorf("expected confirm/B, got %s/%s", a.Risk, a.Level)
	}
	if a.RequiresPin {
		t.Error("confirm at level B should not require a PIN")
	}
	if len(a.Reasons) != 2 {
		t.Errorf("expected risk and review reasons, got %v", a.Reasons)
	}
}

func TestRequestPinFromEitherPath(t *testing.T) {
	s := newTestStore(t, "123456")
	s.Request(decision("risk-pin", model.RiskPin, model.ReviewB))
	s.Request(decision("level-c", model.RiskLog, model.ReviewC))

	for _, key := range []string{"risk-pin", "level-c"} {
		a, _ := s.read(key)
		if !a.RequiresPin {
			t.Errorf("%s: expected requires_pin", key)
		}
	}
}

func TestRequestIdempotent(t *testing.T) {
	s := newTestStore(t, "")
	s.Request(decision("k1", model.RiskConfirm, model.ReviewB))
	s.Request(decision("k1", model.RiskPin, model.ReviewC)) // should not overwrite

	a, _ := s.read("k1")
	if a.Risk != model.RiskConfirm {
		t.Errorf("expected original risk, got %s", a.Risk)
	}
}

func TestRequestRejectsBadKey(t *testing.T) {
	s := newTestStore(t, "")
	for _, key := range []string{"", "../etc", "a/b", "a b"} {
		if err := s.Request(decision(key, model.RiskConfirm, model.ReviewB)); err == nil {
			t.Errorf("expected error for key %q", key)
		}
	}
}

func TestApproveClickOnly(t *testing.T) {
	s := newTestStore(t, "")
	s.Request(decision("k1", model.RiskConfirm, model.ReviewB))

	if err := s.Approve("k1", ""); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	status, _ := s.Check("k1")
	if status != StatusApproved {
		t.Errorf("expected approved, got %s", status)
	}

	a, _ := s.read("k1")
	if a.ExpiresAt != nil {
		t.Error("expected no expiration for one-time approval")
	}
	if a.ResolvedAt == nil {
		t.Error("expected resolved_at to be set")
	}
}

func TestApprovePIN(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		supplied   string
		want       error
	}{
		{"correct", "123456", "123456", nil},
		{"missing", "123456", "", ErrPINRequired},
		{"wrong", "123456", "654321", ErrPINMismatch},
		{"prefix", "123456", "12345", ErrPINMismatch},
		{"none configured", "", "123456", ErrNoPINConfigured},
	}
	for _, tt := range tests {
		s := newTestStore(t, tt.configured)
		s.Request(decision("k1", model.RiskPin, model.ReviewC))

		err := s.Approve("k1", tt.supplied)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: Approve = %v, want %v", tt.name, err, tt.want)
		}

		status, _ := s.Check("k1")
		wantStatus := StatusPending
		if tt.want == nil {
			wantStatus = StatusApproved
		}
		if status != wantStatus {
			t.Errorf("%s: status = %s, want %s", tt.name, status, wantStatus)
		}
	}
}

func TestApproveNilPINSource(t *testing.T) {
	s, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	s.Request(decision("k1", model.RiskPin, model.ReviewC))
	if err := s.Approve("k1", "123456"); !errors.Is(err, ErrNoPINConfigured) {
		t.Errorf("expected ErrNoPINConfigured, got %v", err)
	}
}

func TestApproveTimeLimited(t *testing.T) {
	s := newTestStore(t, "")
	s.Request(decision("k1", model.RiskConfirm, model.ReviewB))

	if err := s.ApproveFor("k1", "", 5*time.Minute); err != nil {
		t.Fatalf("ApproveFor failed: %v", err)
	}
	a, _ := s.read("k1")
	if a.ExpiresAt == nil {
		t.Fatal("expected expiration to be set")
	}
	if a.ExpiresAt.Before(time.Now()) {
		t.Error("expiration should be in the future")
	}
}

func TestCheckExpired(t *testing.T) {
	s := newTestStore(t, "")
	s.Request(decision("k1", model.RiskConfirm, model.ReviewB))
	s.ApproveFor("k1", "", time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	status, err := s.Check("k1")
	if err != nil {
		t.Fatal(err)
	}
	if status != StatusExpired {
		t.Errorf("expected expired, got %s", status)
	}
}

func TestResolveTwiceFails(t *testing.T) {
	s := newTestStore(t, "")
	s.Request(decision("k1", model.RiskConfirm, model.ReviewB))
	if err := s.Deny("k1"); err != nil {
		t.Fatalf("Deny failed: %v", err)
	}
	if err := s.Approve("k1", ""); !errors.Is(err, ErrNotPending) {
		t.Errorf("approve after deny: got %v, want ErrNotPending", err)
	}
	if err := s.Deny("k1"); !errors.Is(err, ErrNotPending) {
		t.Errorf("deny twice: got %v, want ErrNotPending", err)
	}
	status, _ := s.Check("k1")
	if status != StatusDenied {
		t.Errorf("expected denied, got %s", status)
	}
}

func TestCheckNotFound(t *testing.T) {
	s := newTestStore(t, "")
	if _, err := s.Check("missing"); err == nil {
		t.Error("expected error for missing key")
	}
}

func TestConsume(t *testing.T) {
	s := newTestStore(t, "")
	s.Request(decision("k1", model.RiskConfirm, model.ReviewB))

	if err := s.Consume("k1"); err == nil {
		t.Error("pending requests cannot be consumed")
	}

	s.Approve("k1", "")
	if err := s.Consume("k1"); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	status, _ := s.Check("k1")
	if status != StatusConsumed {
		t.Errorf("expected consumed, got %s", status)
	}
	if err := s.Consume("k1"); err == nil {
		t.Error("expected error on double consume")
	}
}

func TestListAndPending(t *testing.T) {
	s := newTestStore(t, "")
	s.Request(decision("a", model.RiskConfirm, model.ReviewB))
	s.Request(decision("b", model.RiskConfirm, model.ReviewB))
	s.Request(decision("c", model.RiskConfirm, model.ReviewB))
	s.Deny("b")

	all, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 approvals, got %d", len(all))
	}

	pending, err := s.Pending()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Errorf("expected 2 pending, got %d", len(pending))
	}
}

func TestCleanup(t *testing.T) {
	s := newTestStore(t, "")
	s.Request(decision("a", model.RiskConfirm, model.ReviewB))
	s.Request(decision("b", model.RiskConfirm, model.ReviewB))

	if err := s.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	all, _ := s.List()
	if len(all) != 0 {
		t.Errorf("expected 0 approvals after cleanup, got %d", len(all))
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := newTestStore(t, "123456")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", n)
			s.Request(decision(key, model.RiskPin, model.ReviewC))
			s.Approve(key, "123456")
			s.Check(key)
		}(i)
	}
	wg.Wait()

	all, _ := s.List()
	if len(all) != 20 {
		t.Errorf("expected 20 approvals, got %d", len(all))
	}
	for _, a := range all {
		if a.Status != StatusApproved {
			t.Errorf("%s: expected approved, got %s", a.Key, a.Status)
		}
	}
}

func TestApproveNonexistent(t *testing.T) {
	s := newTestStore(t, "")
	if err := s.Approve("nope", ""); err == nil {
		t.Error("expected error approving nonexistent key")
	}
	if err := s.Deny("nope"); err == nil {
		t.Error("expected error denying nonexistent key")
	}
}
