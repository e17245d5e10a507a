package alert

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/ladder/internal/audit"
	"github.com/ppiankov/ladder/internal/model"
)

// sendTimeout bounds one delivery including retries.
const sendTimeout = 20 * time.Second

// Notifier fans out decisions to matching webhooks. It implements
// audit.Sink.
type Notifier struct {
	hooks  []Webhook
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewNotifier returns nil if hooks is empty (callers should nil-check).
func NewNotifier(hooks []Webhook, logger *zap.Logger) *Notifier {
	if len(hooks) == 0 {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{hooks: hooks, logger: logger}
}

// Record sends the decision to every webhook whose risk list matches.
// Sends run in the background; delivery failures are logged, not returned.
func (n *Notifier) Record(r audit.Record) error {
	event := EventFromRecord(r)
	for _, hook := range n.hooks {
		if !matches(hook.Risks, r.Risk) {
			continue
		}
		n.wg.Add(1)
		go func(hook Webhook) {
			defer n.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			defer cancel()
			if err := Send(ctx, hook, event); err != nil {
				n.logger.Warn("alert webhook failed",
					zap.String("decision_id", event.DecisionID),
					zap.String("format", hook.Format),
					zap.Error(err))
			}
		}(hook)
	}
	return nil
}

// Close waits for in-flight sends.
func (n *Notifier) Close() error {
	n.wg.Wait()
	return nil
}

func matches(risks []string, risk model.RiskScore) bool {
	if len(risks) == 0 {
		return risk == model.RiskPin
	}
	for _, r := range risks {
		if strings.EqualFold(strings.TrimSpace(r), risk.String()) {
			return true
		}
	}
	return false
}
