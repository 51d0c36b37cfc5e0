package alert

// Formats understood by FormatPayload.
const (
	FormatGeneric   = "generic"
	FormatSlack     = "slack"
	FormatPagerDuty = "pagerduty"
)

// AlertConfig is one webhook destination.
type AlertConfig struct {
	URL     string            `yaml:"url"     json:"url"`
	Format  string            `yaml:"format"  json:"format"` // generic, slack, pagerduty
	Events  []string          `yaml:"events"  json:"events"` // reject, parse, schema, enforcement
	Headers map[string]string `yaml:"headers" json:"headers"`
}

// AlertEvent is the payload describing a rejected manifest.
type AlertEvent struct {
	Timestamp   string `json:"timestamp"`
	ID          string `json:"id"`
	Source      string `json:"source"`
	ModelName   string `json:"model_name,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Decision    string `json:"decision"`
	Kind        string `json:"kind"`
	Reason      string `json:"reason"`
}
