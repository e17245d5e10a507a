package scenario

import "github.com/ppiankov/ladder/internal/model"

// Case is one tool call and the friction it is expected to get.
type Case struct {
	Tool         string         `yaml:"tool"`
	Args         map[string]any `yaml:"args,omitempty"`
	RawArgs      string         `yaml:"raw_args,omitempty"`
	Message      string         `yaml:"message,omitempty"`
	Conversation []model.Turn   `yaml:"conversation,omitempty"`
	ExpectRisk   string         `yaml:"expect_risk,omitempty"`
	ExpectLevel  string         `yaml:"expect_level,omitempty"`
}

// history returns the conversation with Message appended as the latest
// user turn.
func (c Case) history() []model.Turn {
	turns := append([]model.Turn(nil), c.Conversation...)
	if c.Message != "" {
		turns = append(turns, model.Turn{Role: model.RoleUser, Content: c.Message})
	}
	return turns
}

// Scenario is a named collection of ladder test cases.
type Scenario struct {
	Name            string                `yaml:"name"`
	Profile         string                `yaml:"profile,omitempty"`
	SecurityProfile model.SecurityProfile `yaml:"security_profile,omitempty"`
	Workspace       string                `yaml:"workspace,omitempty"`
	// Tracked lists the paths the scenario treats as committed to git.
	Tracked []string `yaml:"tracked,omitempty"`
	Cases   []Case   `yaml:"cases"`
}

// CaseResult is the outcome of evaluating one test case.
type CaseResult struct {
	Index    int      `json:"index"`
	Passed   bool     `json:"passed"`
	Tool     string   `json:"tool"`
	Summary  string   `json:"summary"`
	Expected string   `json:"expected"`
	Actual   string   `json:"actual"`
	Reasons  []string `json:"reasons,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// RunResult is the outcome of running all cases in one scenario file.
type RunResult struct {
	File   string       `json:"file"`
	Name   string       `json:"name"`
	Total  int          `json:"total"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Cases  []CaseResult `json:"cases"`
}
