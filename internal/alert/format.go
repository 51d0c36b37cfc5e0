package alert

import (
	"encoding/json"
	"fmt"
)

// FormatPayload builds the webhook body for format. Unknown formats fall
// back to the generic JSON event.
func FormatPayload(format string, event AlertEvent) ([]byte, error) {
	switch format {
	case FormatSlack:
		return formatSlack(event)
	case FormatPagerDuty:
		return formatPagerDuty(event)
	default:
		return json.Marshal(event)
	}
}

func formatSlack(event AlertEvent) ([]byte, error) {
	model := event.ModelName
	if model == "" {
		model = "(unknown)"
	}
	payload := map[string]any{
		"blocks": []any{
			map[string]any{
				"type": "header",
				"text": map[string]any{
					"type": "plain_text",
					"text": fmt.Sprintf("mtm: manifest %s", event.Decision),
				},
			},
			map[string]any{
				"type": "section",
				"fields": []any{
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Model:* %s", model)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Source:* %s", event.Source)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Kind:* %s", event.Kind)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Reason:* %s", event.Reason)},
				},
			},
		},
	}
	return json.Marshal(payload)
}

// severityFor maps a failure kind to a PagerDuty severity.
func severityFor(kind string) string {
	switch kind {
	case "enforcement":
		return "warning"
	case "parse", "schema":
		return "error"
	default:
		return "critical"
	}
}

func formatPagerDuty(event AlertEvent) ([]byte, error) {
	payload := map[string]any{
		"event_action": "trigger",
		"dedup_key":    event.ID,
		"payload": map[string]any{
			"summary":  fmt.Sprintf("mtm %s: %s (%s)", event.Decision, event.Source, event.Reason),
			"severity": severityFor(event.Kind),
			"source":   "mtm",
			"custom_details": map[string]any{
				"model_name":  event.ModelName,
				"fingerprint": event.Fingerprint,
				"kind":        event.Kind,
				"reason":      event.Reason,
			},
		},
	}
	return json.Marshal(payload)
}
