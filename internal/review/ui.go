package review

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"

	"github.com/ppiankov/ladder/internal/actionprofile"
	"github.com/ppiankov/ladder/internal/model"
)

// SelectorError reports a UI target that could not be parsed.
type SelectorError struct {
	Selector string
	Err      error
}

func (e *SelectorError) Error() string {
	return fmt.Sprintf("invalid selector %q: %v", e.Selector, e.Err)
}

func (e *SelectorError) Unwrap() error { return e.Err }

// UIConfirmationDetails is what the confirmation dialog shows for a UI
// automation step.
type UIConfirmationDetails struct {
	Title         string            `json:"title"`
	Action        string            `json:"action"`
	Selector      string            `json:"selector,omitempty"`
	Text          string            `json:"text,omitempty"`
	Level         model.ReviewLevel `json:"level"`
	Reasons       []string          `json:"reasons"`
	RequiresClick bool              `json:"requires_click"`
	RequiresPin   bool              `json:"requires_pin"`
	NeedsPinSetup bool              `json:"needs_pin_setup"`
	Explanation   string            `json:"explanation"`
}

// non-CSS selector engines accepted as-is when they carry a value.
var selectorEngines = []string{"xpath=", "text=", "role=", "id=", "ref=", "aria=", "label=", "placeholder=", "testid="}

// ValidateSelector accepts CSS selectors (optionally prefixed "css="),
// XPath expressions and engine-prefixed selectors such as "text=Submit".
func ValidateSelector(sel string) error {
	s := strings.TrimSpace(sel)
	if s == "" {
		return &SelectorError{Selector: sel, Err: fmt.Errorf("empty selector")}
	}
	if strings.HasPrefix(s, "//") || strings.HasPrefix(s, "(//") {
		return nil
	}
	for _, engine := range selectorEngines {
		if strings.HasPrefix(s, engine) {
			if strings.TrimSpace(strings.TrimPrefix(s, engine)) == "" {
				return &SelectorError{Selector: sel, Err: fmt.Errorf("%s has no value", strings.TrimSuffix(engine, "="))}
			}
			return nil
		}
	}
	s = strings.TrimPrefix(s, "css=")
	if _, err := cascadia.ParseGroup(s); err != nil {
		return &SelectorError{Selector: sel, Err: err}
	}
	return nil
}

// BuildUIConfirmationDetails computes the review level for a UI tool call
// and the text the dialog shows. A selector that does not parse is
// returned as a *SelectorError.
func BuildUIConfirmationDetails(p *model.ActionProfile, args map[string]any, cfg Config) (UIConfirmationDetails, error) {
	sel := firstString(args, "selector", "target", "element")
	if sel != "" {
		if err := ValidateSelector(sel); err != nil {
			return UIConfirmationDetails{}, err
		}
	}

	res := ComputeMinimumReviewLevel(p, cfg)
	action := strings.ToLower(p.ToolName)
	if a, ok := actionprofile.UIActionFor(p.ToolName); ok {
		action = string(a)
	}

	title := "Allow UI " + action
	if sel != "" {
		title += " on " + sel
	}

	return UIConfirmationDetails{
		Title:         title,
		Action:        action,
		Selector:      sel,
		Text:          firstString(args, "text", "value", "key", "keys"),
		Level:         res.Level,
		Reasons:       res.Reasons,
		RequiresClick: res.RequiresClick,
		RequiresPin:   res.RequiresPin,
		NeedsPinSetup: res.RequiresPin && !cfg.HasApprovalPIN,
		Explanation:   Explain(res),
	}, nil
}

func firstString(args map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := args[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
