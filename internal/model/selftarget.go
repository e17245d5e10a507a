package model

import "strings"

// selfTargetPatterns are path or command substrings that indicate an action
// targets ladder itself (its binary, config or approval state).
var selfTargetPatterns = []string{
	"/.ladder/",
	".ladder.yaml",
	"ladder.yaml",
	"/bin/ladder",
}

// IsSelfTargeting returns true if the action touches ladder's own files.
// Matching is broad on purpose: a false positive only adds friction.
func IsSelfTargeting(p *ActionProfile) bool {
	for _, path := range p.TouchedPaths {
		lower := strings.ToLower(path)
		if strings.HasSuffix(lower, "/.ladder") {
			return true
		}
		for _, pat := range selfTargetPatterns {
			if strings.Contains(lower, pat) {
				return true
			}
		}
	}
	summary := strings.ToLower(p.RawSummary)
	for _, pat := range selfTargetPatterns {
		if strings.Contains(summary, pat) {
			return true
		}
	}
	return false
}
