package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/ppiankov/ladder/internal/approval"
	"github.com/ppiankov/ladder/internal/engine"
	"github.com/ppiankov/ladder/internal/model"
	"github.com/ppiankov/ladder/internal/review"
)

// --- Input/Output types ---

// Turn is one conversation message.
type Turn struct {
	Role    string `json:"role" jsonschema:"user or assistant"`
	Content string `json:"content" jsonschema:"message text"`
}

// EvaluateInput defines parameters for the ladder_evaluate tool.
type EvaluateInput struct {
	Tool         string         `json:"tool" jsonschema:"name of the tool the agent wants to call"`
	Args         map[string]any `json:"args,omitempty" jsonschema:"tool arguments as an object"`
	RawArgs      string         `json:"raw_args,omitempty" jsonschema:"tool arguments as a JSON string, used when args is omitted"`
	Conversation []Turn         `json:"conversation,omitempty" jsonschema:"conversation so far, oldest first"`
	UserMessage  string         `json:"user_message,omitempty" jsonschema:"latest user message, appended to the conversation"`
}

// EvaluateOutput contains the decision.
type EvaluateOutput struct {
	ID            string   `json:"id"`
	Verdict       string   `json:"verdict"`
	Risk          string   `json:"risk"`
	ReviewLevel   string   `json:"review_level"`
	RequiresClick bool     `json:"requires_click"`
	RequiresPin   bool     `json:"requires_pin"`
	Outcome       string   `json:"outcome"`
	Intention     string   `json:"intention"`
	Domain        string   `json:"domain"`
	Confidence    string   `json:"parse_confidence"`
	Summary       string   `json:"summary"`
	Operations    []string `json:"operations"`
	TouchedPaths  []string `json:"touched_paths,omitempty"`
	Reasons       []string `json:"reasons"`
	ApprovalKey   string   `json:"approval_key,omitempty"`
	ConfigHash    string   `json:"config_hash,omitempty"`
}

// Verdicts reported by ladder_evaluate.
const (
	VerdictProceed = "proceed"
	VerdictConfirm = "confirm"
	VerdictPIN     = "pin"
)

// CallInput names a tool call for the review-only tools.
type CallInput struct {
	Tool string         `json:"tool" jsonschema:"tool name"`
	Args map[string]any `json:"args,omitempty" jsonschema:"tool arguments"`
}

// ReviewOutput contains the deterministic review result.
type ReviewOutput struct {
	Level         string   `json:"level"`
	Reasons       []string `json:"reasons"`
	RequiresClick bool     `json:"requires_click"`
	RequiresPin   bool     `json:"requires_pin"`
}

// ApproveInput defines parameters for the ladder_approve tool.
type ApproveInput struct {
	Key      string `json:"key" jsonschema:"approval key returned by ladder_evaluate"`
	PIN      string `json:"pin,omitempty" jsonschema:"six digit approval PIN, required for level C"`
	Duration string `json:"duration,omitempty" jsonschema:"approval duration (e.g. 5m), omit for one-time approval"`
	Deny     bool   `json:"deny,omitempty" jsonschema:"deny instead of approve"`
}

// ApproveOutput confirms the resolution.
type ApproveOutput struct {
	Key      string `json:"key"`
	Status   string `json:"status"`
	Duration string `json:"duration,omitempty"`
}

// PendingInput is empty: no parameters needed.
type PendingInput struct{}

// PendingOutput lists all pending approvals.
type PendingOutput struct {
	Approvals []PendingItem `json:"approvals"`
}

// PendingItem describes a single approval request.
type PendingItem struct {
	Key         string `json:"key"`
	Status      string `json:"status"`
	Tool        string `json:"tool"`
	Summary     string `json:"summary"`
	Risk        string `json:"risk"`
	ReviewLevel string `json:"review_level"`
	RequiresPin bool   `json:"requires_pin"`
	CreatedAt   string `json:"created_at"`
}

// --- Handlers ---

func (s *Server) handleEvaluate(ctx context.Context, req *mcpsdk.CallToolRequest, input EvaluateInput) (*mcpsdk.CallToolResult, EvaluateOutput, error) {
	if input.Tool == "" {
		return nil, EvaluateOutput{}, fmt.Errorf("tool is required")
	}

	d, err := s.runtime.Evaluator.EvaluateRequest(ctx, engine.Request{
		Tool:    input.Tool,
		Args:    input.Args,
		RawArgs: input.RawArgs,
		History: history(input.Conversation, input.UserMessage),
	})
	if err != nil {
		return nil, EvaluateOutput{}, err
	}

	out := decisionOutput(d)
	if d.NeedsHuman() {
		if err := s.runtime.Approvals.Request(d); err != nil {
			s.logger.Warn("approval request failed", zap.String("id", d.ID), zap.Error(err))
		} else {
			out.ApprovalKey = d.ID
		}
	}
	return nil, out, nil
}

func (s *Server) handleReview(ctx context.Context, req *mcpsdk.CallToolRequest, input CallInput) (*mcpsdk.CallToolResult, ReviewOutput, error) {
	res := s.runtime.Evaluator.Review(model.ToolCall{Name: input.Tool, Args: input.Args})
	return nil, ReviewOutput{
		Level:         string(res.Level),
		Reasons:       res.Reasons,
		RequiresClick: res.RequiresClick,
		RequiresPin:   res.RequiresPin,
	}, nil
}

func (s *Server) handleUIConfirmation(ctx context.Context, req *mcpsdk.CallToolRequest, input CallInput) (*mcpsdk.CallToolResult, review.UIConfirmationDetails, error) {
	details, err := s.runtime.Evaluator.UIConfirmation(model.ToolCall{Name: input.Tool, Args: input.Args})
	if err != nil {
		return nil, review.UIConfirmationDetails{}, err
	}
	return nil, details, nil
}

// ErrHumanApproval is returned when the agent tries to approve a request
// that only needs a click. Those are approved by the user through the CLI.
var ErrHumanApproval = errors.New("approval needs a human")

func (s *Server) handleApprove(ctx context.Context, req *mcpsdk.CallToolRequest, input ApproveInput) (*mcpsdk.CallToolResult, ApproveOutput, error) {
	if input.Deny {
		if err := s.runtime.Approvals.Deny(input.Key); err != nil {
			return nil, ApproveOutput{}, err
		}
		return nil, ApproveOutput{Key: input.Key, Status: string(approval.StatusDenied)}, nil
	}

	pending, err := s.runtime.Approvals.Get(input.Key)
	if err != nil {
		return nil, ApproveOutput{}, err
	}
	if !pending.RequiresPin {
		return nil, ApproveOutput{}, fmt.Errorf("%w: ask the user to run `ladder approve %s`", ErrHumanApproval, input.Key)
	}

	var duration time.Duration
	if input.Duration != "" {
		var err error
		duration, err = time.ParseDuration(input.Duration)
		if err != nil {
			return nil, ApproveOutput{}, fmt.Errorf("invalid duration %q: %w", input.Duration, err)
		}
	}

	if err := s.runtime.Approvals.ApproveFor(input.Key, input.PIN, duration); err != nil {
		return nil, ApproveOutput{}, err
	}

	out := ApproveOutput{
		Key:    input.Key,
		Status: string(approval.StatusApproved),
	}
	if duration > 0 {
		out.Duration = duration.String()
	}
	return nil, out, nil
}

func (s *Server) handlePending(ctx context.Context, req *mcpsdk.CallToolRequest, input PendingInput) (*mcpsdk.CallToolResult, PendingOutput, error) {
	list, err := s.runtime.Approvals.Pending()
	if err != nil {
		return nil, PendingOutput{}, err
	}

	items := make([]PendingItem, len(list))
	for i, a := range list {
		items[i] = PendingItem{
			Key:         a.Key,
			Status:      string(a.Status),
			Tool:        a.Tool,
			Summary:     a.Summary,
			Risk:        a.Risk.String(),
			ReviewLevel: string(a.Level),
			RequiresPin: a.RequiresPin,
			CreatedAt:   a.CreatedAt.Format(time.RFC3339),
		}
	}

	return nil, PendingOutput{Approvals: items}, nil
}

// --- Helpers ---

func history(turns []Turn, userMessage string) []model.Turn {
	out := make([]model.Turn, 0, len(turns)+1)
	for _, t := range turns {
		out = append(out, model.Turn{Role: model.Role(t.Role), Content: t.Content})
	}
	if userMessage != "" {
		out = append(out, model.Turn{Role: model.RoleUser, Content: userMessage})
	}
	return out
}

func decisionOutput(d *model.Decision) EvaluateOutput {
	ops := make([]string, len(d.Action.Operations))
	for i, op := range d.Action.Operations {
		ops[i] = string(op)
	}
	reasons := append(append([]string(nil), d.Risk.Reasons...), d.Review.Reasons...)

	verdict := VerdictProceed
	switch {
	case d.NeedsPIN():
		verdict = VerdictPIN
	case d.NeedsHuman():
		verdict = VerdictConfirm
	}

	return EvaluateOutput{
		ID:            d.ID,
		Verdict:       verdict,
		Risk:          d.Risk.Score.String(),
		ReviewLevel:   string(d.Review.Level),
		RequiresClick: d.Review.RequiresClick || d.Risk.Score >= model.RiskConfirm,
		RequiresPin:   d.NeedsPIN(),
		Outcome:       string(d.Risk.Outcome),
		Intention:     string(d.Risk.Intention),
		Domain:        string(d.Risk.Domain),
		Confidence:    string(d.Action.ParseConfidence),
		Summary:       d.Action.RawSummary,
		Operations:    ops,
		TouchedPaths:  d.Action.TouchedPaths,
		Reasons:       reasons,
		ConfigHash:    d.ConfigHash,
	}
}
