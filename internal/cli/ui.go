package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/ppiankov/ladder/internal/config"
	"github.com/ppiankov/ladder/internal/model"
	"github.com/ppiankov/ladder/internal/review"
)

var (
	colorGreen  = lipgloss.Color("#8ec07c")
	colorYellow = lipgloss.Color("#fabd2f")
	colorOrange = lipgloss.Color("#fe8019")
	colorRed    = lipgloss.Color("#fb4934")
	colorDim    = lipgloss.Color("#928374")
	colorDark   = lipgloss.Color("#282828")

	styleDim   = lipgloss.NewStyle().Foreground(colorDim)
	styleLabel = lipgloss.NewStyle().Foreground(colorDim).Width(8)
	styleBold  = lipgloss.NewStyle().Bold(true)
)

func riskColor(r model.RiskScore) lipgloss.Color {
	switch r {
	case model.RiskPass:
		return colorGreen
	case model.RiskLog:
		return colorYellow
	case model.RiskConfirm:
		return colorOrange
	default:
		return colorRed
	}
}

func levelColor(l model.ReviewLevel) lipgloss.Color {
	switch l {
	case model.ReviewA:
		return colorGreen
	case model.ReviewB:
		return colorOrange
	default:
		return colorRed
	}
}

func riskBadge(r model.RiskScore) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(colorDark).
		Background(riskColor(r)).
		Padding(0, 1).
		Render(strings.ToUpper(r.String()))
}

func levelBadge(l model.ReviewLevel) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(levelColor(l)).
		Render("[" + string(l) + "]")
}

// renderDecision prints a decision for a human.
func renderDecision(w io.Writer, d *model.Decision) {
	friction := "no review"
	switch {
	case d.NeedsPIN():
		friction = "click + PIN"
	case d.NeedsHuman():
		friction = "click"
	}

	fmt.Fprintf(w, "%s %s %s\n", riskBadge(d.Risk.Score), levelBadge(d.Review.Level), styleBold.Render(friction))
	row(w, "action", d.Action.RawSummary)
	row(w, "class", fmt.Sprintf("%s / %s / %s", d.Risk.Outcome, d.Risk.Intention, d.Risk.Domain))
	row(w, "profile", string(d.Risk.Profile))
	row(w, "parse", string(d.Action.ParseConfidence))
	if len(d.Action.TouchedPaths) > 0 {
		row(w, "paths", strings.Join(d.Action.TouchedPaths, ", "))
	}
	reasons := append(append([]string(nil), d.Risk.Reasons...), d.Review.Reasons...)
	for i, r := range reasons {
		label := ""
		if i == 0 {
			label = "why"
		}
		row(w, label, "- "+r)
	}
	fmt.Fprintln(w, styleDim.Render("id "+d.ID))
}

func row(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%s %s\n", styleLabel.Render(label), value)
}

// writeJSON pretty-prints v, colorized when color is set.
func writeJSON(w io.Writer, v any, color bool) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	out := pretty.Pretty(data)
	if color {
		out = pretty.Color(out, nil)
	}
	_, err = w.Write(out)
	return err
}

// interactiveStdin reports whether prompts can be shown; tests replace it.
var interactiveStdin = func() bool { return isTerminal(os.Stdin) }

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// colorStdout reports whether w is a terminal worth colorizing.
func colorStdout(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

// promptApproval asks the user to allow or deny d, and for the PIN when
// d needs one. A user abort counts as deny.
func promptApproval(d *model.Decision) (allowed bool, pin string, err error) {
	confirm := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Allow " + d.Action.RawSummary + "?").
				Description(review.Explain(d.Review)).
				Affirmative("Allow").
				Negative("Deny").
				Value(&allowed),
		),
	).WithShowHelp(false)
	if err := confirm.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, "", nil
		}
		return false, "", err
	}
	if !allowed || !d.NeedsPIN() {
		return allowed, "", nil
	}

	if err := pinForm(&pin).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, "", nil
		}
		return false, "", err
	}
	return true, pin, nil
}

func pinForm(pin *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Approval PIN").
				EchoMode(huh.EchoModePassword).
				Value(pin).
				Validate(requirePIN),
		),
	).WithShowHelp(false)
}

func requirePIN(s string) error {
	if s == "" {
		return errors.New("PIN is required")
	}
	return config.ValidatePIN(s)
}

func cmdContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
