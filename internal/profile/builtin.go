package profile

import _ "embed"

//go:embed profiles/strict.yaml
var strictYAML []byte

//go:embed profiles/balanced.yaml
var balancedYAML []byte

//go:embed profiles/minimal.yaml
var minimalYAML []byte

//go:embed profiles/coding-agent.yaml
var codingAgentYAML []byte

//go:embed profiles/ui-automation.yaml
var uiAutomationYAML []byte

// builtinProfiles maps profile names to their embedded YAML content.
var builtinProfiles = map[string][]byte{
	"strict":        strictYAML,
	"balanced":      balancedYAML,
	"minimal":       minimalYAML,
	"coding-agent":  codingAgentYAML,
	"ui-automation": uiAutomationYAML,
}
