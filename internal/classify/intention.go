package classify

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ppiankov/ladder/internal/actionprofile"
	"github.com/ppiankov/ladder/internal/model"
)

// IntentionClassifier decides why a tool call is being made.
type IntentionClassifier interface {
	ClassifyIntention(call model.ToolCall, history []model.Turn) model.Intention
}

// GoalRule maps a stated goal to the argument keywords it implies.
type GoalRule struct {
	Goal     *regexp.Regexp
	Keywords []string
}

// DefaultGoals is the goal table used by a zero Heuristic.
var DefaultGoals = []GoalRule{
	{
		Goal:     regexp.MustCompile(`(?i)clean\s*up|tidy|clear\s+out|free\s+(up\s+)?(disk\s+)?space|purge`),
		Keywords: []string{"node_modules", "cache", ".cache", "temp", "tmp", "dist", "build", ".log", "coverage", "__pycache__", "target"},
	},
	{
		Goal:     regexp.MustCompile(`(?i)build|compile|bundle`),
		Keywords: []string{"make", "build", "go", "npm", "cargo", "dist", "tsc", "gradle", "mvn", "webpack", "vite"},
	},
	{
		Goal:     regexp.MustCompile(`(?i)\btests?\b|testing|test\s+suite`),
		Keywords: []string{"test", "jest", "pytest", "vitest", "mocha", "spec"},
	},
	{
		Goal:     regexp.MustCompile(`(?i)install|set\s*up|dependenc`),
		Keywords: []string{"install", "npm", "pip", "brew", "apt", "apt-get", "yarn", "pnpm", "cargo", "requirements"},
	},
	{
		Goal:     regexp.MustCompile(`(?i)commit|push|check\s*in`),
		Keywords: []string{"git", "commit", "push"},
	},
	{
		Goal:     regexp.MustCompile(`(?i)format|lint|prettif`),
		Keywords: []string{"fmt", "gofmt", "prettier", "eslint", "lint", "black", "ruff", "rustfmt"},
	},
}

// Heuristic is the lexical IntentionClassifier.
// A nil Goals slice uses DefaultGoals.
type Heuristic struct {
	Goals []GoalRule
}

var _ IntentionClassifier = Heuristic{}

// minExplicitToken is the shortest argument token that can prove the user
// named a target.
const minExplicitToken = 4

// ClassifyIntention returns explicit when an argument token appears in the
// latest user message, task-derived when the message states a goal whose
// keywords appear in the arguments, and autonomous otherwise.
func (h Heuristic) ClassifyIntention(call model.ToolCall, history []model.Turn) model.Intention {
	msg, ok := lastUserMessage(history)
	if !ok {
		return model.Autonomous
	}
	msg = strings.ToLower(msg)
	argText := strings.ToLower(actionprofile.ArgValueText(call.Args))
	tokens := argTokens(argText)

	for _, tok := range tokens {
		if len(tok) >= minExplicitToken && strings.Contains(msg, tok) {
			return model.Explicit
		}
	}

	goals := h.Goals
	if goals == nil {
		goals = DefaultGoals
	}
	for _, g := range goals {
		if g.Goal == nil || !g.Goal.MatchString(msg) {
			continue
		}
		for _, kw := range g.Keywords {
			if keywordMatches(kw, tokens) {
				return model.TaskDerived
			}
		}
	}
	return model.Autonomous
}

// ClassifyIntention runs the default heuristic.
func ClassifyIntention(call model.ToolCall, history []model.Turn) model.Intention {
	return Heuristic{}.ClassifyIntention(call, history)
}

func lastUserMessage(history []model.Turn) (string, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == model.RoleUser {
			return history[i].Content, true
		}
	}
	return "", false
}

// argTokens splits flattened argument text on whitespace and JSON punctuation.
func argTokens(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		if unicode.IsSpace(r) {
			return true
		}
		switch r {
		case '{', '}', '[', ']', '"', '\'', ',', ':', ';', '(', ')', '=', '|', '&', '<', '>', '`':
			return true
		}
		return false
	})
}

func keywordMatches(kw string, tokens []string) bool {
	for _, tok := range tokens {
		if tok == kw {
			return true
		}
		base := tok
		if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
			base = base[idx+1:]
		}
		if base == kw {
			return true
		}
		if len(kw) >= minExplicitToken && strings.Contains(tok, kw) {
			return true
		}
	}
	return false
}
