package model

import (
	"encoding/json"
	"testing"
)

func TestRiskScoreOrdering(t *testing.T) {
	scores := AllRiskScores()
	for i := 1; i < len(scores); i++ {
		if scores[i-1] >= scores[i] {
			t.Errorf("%s should be below %s", scores[i-1], scores[i])
		}
	}
}

func TestRiskScoreJSONRoundTripByName(t *testing.T) {
	data, err := json.Marshal(struct {
		Risk RiskScore `json:"risk"`
	}{RiskConfirm})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"risk":"confirm"}` {
		t.Errorf("got %s, want {\"risk\":\"confirm\"}", data)
	}

	var out struct {
		Risk RiskScore `json:"risk"`
	}
	if err := json.Unmarshal([]byte(`{"risk":"pin"}`), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Risk != RiskPin {
		t.Errorf("got %s, want pin", out.Risk)
	}
	if err := json.Unmarshal([]byte(`{"risk":"maybe"}`), &out); err == nil {
		t.Error("expected error for unknown risk name")
	}
}

func TestParseSecurityProfile(t *testing.T) {
	tests := []struct {
		in      string
		want    SecurityProfile
		wantErr bool
	}{
		{"strict", ProfileStrict, false},
		{" Balanced ", ProfileBalanced, false},
		{"MINIMAL", ProfileMinimal, false},
		{"yolo", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSecurityProfile(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseSecurityProfile(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseSecurityProfile(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestReviewLevelRankAndMax(t *testing.T) {
	if MaxReviewLevel(ReviewA, ReviewB) != ReviewB {
		t.Error("max(A,B) should be B")
	}
	if MaxReviewLevel(ReviewC, ReviewB) != ReviewC {
		t.Error("max(C,B) should be C")
	}
	if ReviewLevel("Z").Rank() != ReviewC.Rank() {
		t.Error("unknown level should rank as C")
	}
	if l, err := ParseReviewLevel("b"); err != nil || l != ReviewB {
		t.Errorf("ParseReviewLevel(b) = %q, %v", l, err)
	}
	if l, err := ParseReviewLevel("D"); err == nil || l != ReviewC {
		t.Errorf("ParseReviewLevel(D) = %q, %v, want C with error", l, err)
	}
}

func TestMinConfidenceOnlyLowers(t *testing.T) {
	tests := []struct {
		a, b, want ParseConfidence
	}{
		{ConfidenceHigh, ConfidenceHigh, ConfidenceHigh},
		{ConfidenceHigh, ConfidenceMedium, ConfidenceMedium},
		{ConfidenceMedium, ConfidenceLow, ConfidenceLow},
		{ConfidenceLow, ConfidenceHigh, ConfidenceLow},
		{ConfidenceHigh, "bogus", ConfidenceLow},
	}
	for _, tt := range tests {
		if got := MinConfidence(tt.a, tt.b); got != tt.want {
			t.Errorf("MinConfidence(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestHasRootSequence(t *testing.T) {
	p := &ActionProfile{Roots: []string{"git", "add", "git", "commit"}}
	if !p.HasRootSequence("git", "commit") {
		t.Error("expected git commit sequence")
	}
	if p.HasRootSequence("add", "commit") {
		t.Error("add commit is not contiguous")
	}
	if p.HasRootSequence() {
		t.Error("empty sequence should not match")
	}
}

func TestOnlyOperations(t *testing.T) {
	p := &ActionProfile{Operations: []OperationClass{OpRead, OpWrite}}
	if !p.OnlyOperations(OpRead, OpWrite, OpDelete) {
		t.Error("read+write should be within read/write/delete")
	}
	if p.OnlyOperations(OpRead) {
		t.Error("write is not read")
	}
	empty := &ActionProfile{}
	if empty.OnlyOperations(OpRead) {
		t.Error("empty operation set never qualifies")
	}
}

func TestSelfTargeting(t *testing.T) {
	tests := []struct {
		paths   []string
		summary string
		want    bool
	}{
		{[]string{"/home/u/.ladder/config.yaml"}, "", true},
		{[]string{"/home/u/.ladder"}, "", true},
		{[]string{"/work/ladder.yaml"}, "", true},
		{nil, "rm /usr/local/bin/ladder", true},
		{[]string{"/work/src/ladders.go"}, "edit file", false},
		{nil, "ls /tmp", false},
	}
	for _, tt := range tests {
		p := &ActionProfile{TouchedPaths: tt.paths, RawSummary: tt.summary}
		if got := IsSelfTargeting(p); got != tt.want {
			t.Errorf("IsSelfTargeting(%v, %q) = %v, want %v", tt.paths, tt.summary, got, tt.want)
		}
	}
}

func TestDecisionNeedsHuman(t *testing.T) {
	d := &Decision{Risk: RiskAssessment{Score: RiskLog}, Review: DeterministicReviewResult{Level: ReviewA}}
	if d.NeedsHuman() {
		t.Error("log + A should not need a human")
	}
	d.Review.RequiresClick = true
	if !d.NeedsHuman() {
		t.Error("click requirement needs a human")
	}
	d = &Decision{Risk: RiskAssessment{Score: RiskPin}}
	if !d.NeedsPIN() {
		t.Error("pin risk needs PIN")
	}
}
