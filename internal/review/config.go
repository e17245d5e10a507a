package review

import (
	"github.com/ppiankov/ladder/internal/actionprofile"
	"github.com/ppiankov/ladder/internal/model"
)

// Config holds the review floors. It is passed by value into every
// computation; there is no process-wide copy.
type Config struct {
	ClickMinReviewLevel  model.ReviewLevel `yaml:"click_min_review_level" json:"click_min_review_level"`
	TypeMinReviewLevel   model.ReviewLevel `yaml:"type_min_review_level" json:"type_min_review_level"`
	KeyMinReviewLevel    model.ReviewLevel `yaml:"key_min_review_level" json:"key_min_review_level"`
	ScrollMinReviewLevel model.ReviewLevel `yaml:"scroll_min_review_level" json:"scroll_min_review_level"`

	// Set by the caller from its own configuration.
	HomeDir        string   `yaml:"-" json:"-"`
	CriticalPaths  []string `yaml:"-" json:"-"`
	HasApprovalPIN bool     `yaml:"-" json:"-"`
}

// DefaultConfig returns click, type and key floored at B, scroll at A.
func DefaultConfig() Config {
	return Config{
		ClickMinReviewLevel:  model.ReviewB,
		TypeMinReviewLevel:   model.ReviewB,
		KeyMinReviewLevel:    model.ReviewB,
		ScrollMinReviewLevel: model.ReviewA,
	}
}

// floorFor returns the configured floor for a UI action. Unset floors use
// the default; unparseable floors fail closed to C.
func (c Config) floorFor(action actionprofile.UIAction) model.ReviewLevel {
	def := DefaultConfig()
	var configured, fallback model.ReviewLevel
	switch action {
	case actionprofile.UIClick:
		configured, fallback = c.ClickMinReviewLevel, def.ClickMinReviewLevel
	case actionprofile.UIType:
		configured, fallback = c.TypeMinReviewLevel, def.TypeMinReviewLevel
	case actionprofile.UIKey:
		configured, fallback = c.KeyMinReviewLevel, def.KeyMinReviewLevel
	case actionprofile.UIScroll:
		configured, fallback = c.ScrollMinReviewLevel, def.ScrollMinReviewLevel
	case actionprofile.UIQuery:
		return model.ReviewA
	default:
		return model.ReviewB
	}
	if configured == "" {
		return fallback
	}
	level, err := model.ParseReviewLevel(string(configured))
	if err != nil {
		return model.ReviewC
	}
	return level
}
