package alert

import (
	"encoding/json"
	"fmt"
)

// FormatPayload builds the webhook body for the given format.
func FormatPayload(format string, event Event) ([]byte, error) {
	switch format {
	case "slack":
		return formatSlack(event)
	case "pagerduty":
		return formatPagerDuty(event)
	default:
		return json.Marshal(event)
	}
}

func formatSlack(event Event) ([]byte, error) {
	payload := map[string]any{
		"blocks": []any{
			map[string]any{
				"type": "header",
				"text": map[string]any{
					"type": "plain_text",
					"text": fmt.Sprintf("ladder: %s", event.Risk),
				},
			},
			map[string]any{
				"type": "section",
				"fields": []any{
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Tool:* %s", event.Tool)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Call:* %s", event.Summary)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Review:* level %s", event.ReviewLevel)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Reason:* %s", event.Reason)},
				},
			},
		},
	}
	return json.Marshal(payload)
}

func formatPagerDuty(event Event) ([]byte, error) {
	payload := map[string]any{
		"event_action": "trigger",
		"payload": map[string]any{
			"summary":  fmt.Sprintf("ladder %s: %s", event.Risk, event.Summary),
			"severity": severityFor(event.Risk),
			"source":   "ladder",
			"custom_details": map[string]any{
				"tool":         event.Tool,
				"review_level": event.ReviewLevel,
				"outcome":      event.Outcome,
				"domain":       event.Domain,
				"reason":       event.Reason,
				"decision_id":  event.DecisionID,
			},
		},
	}
	return json.Marshal(payload)
}

func severityFor(risk string) string {
	switch risk {
	case "pin":
		return "critical"
	case "confirm":
		return "warning"
	default:
		return "info"
	}
}
