package scenario

import (
	"fmt"
	"strings"
)

// FormatText renders one line per scenario, the failing cases under it and
// a closing total.
func FormatText(results []*RunResult) string {
	var b strings.Builder
	var cases, passed, failed int

	for _, r := range results {
		cases += r.Total
		passed += r.Passed
		status := "ok"
		if r.Failed > 0 {
			status = "FAIL"
			failed++
		}
		fmt.Fprintf(&b, "%-4s %s (%d/%d)\n", status, r.Name, r.Passed, r.Total)
		for _, c := range r.Cases {
			if !c.Passed {
				writeFailure(&b, c)
			}
		}
	}

	fmt.Fprintf(&b, "\n%d/%d cases passed", passed, cases)
	if failed > 0 {
		fmt.Fprintf(&b, ", %d/%d scenarios failed", failed, len(results))
	}
	b.WriteString("\n")
	return b.String()
}

func writeFailure(b *strings.Builder, c CaseResult) {
	label := c.Summary
	if label == "" {
		label = c.Tool
	}
	if len(label) > 60 {
		label = label[:57] + "..."
	}
	fmt.Fprintf(b, "     case %d  %s\n", c.Index, label)
	if c.Error != "" {
		fmt.Fprintf(b, "       error: %s\n", c.Error)
		return
	}
	fmt.Fprintf(b, "       want %s\n", c.Expected)
	fmt.Fprintf(b, "       got  %s\n", c.Actual)
}
