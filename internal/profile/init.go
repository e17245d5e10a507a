package profile

import "fmt"

// InitProfile returns a commented YAML starter template for a new profile.
func InitProfile(name string) string {
	return fmt.Sprintf(`name: %s
description: Custom ladder profile

# strict, balanced or minimal.
security_profile: balanced

# Network hosts treated as trusted. "*.example.com" also matches example.com.
trusted_domains:
  # - github.com

# Extra paths that always require a PIN, on top of the built-in list.
critical_paths:
  # - ~/.kube/config

# Review floors for UI automation (A, B or C). Unset floors keep the config value.
review:
  # click_min_review_level: B
  # type_min_review_level: B
  # key_min_review_level: B
  # scroll_min_review_level: A

# Extra goals for the intention classifier. When the user's message matches
# goal (a case-insensitive regex) and any keyword appears in the tool call,
# the call is task-derived.
intention_goals:
  # - goal: "deploy|release"
  #   keywords: [kubectl, helm]
`, name)
}
