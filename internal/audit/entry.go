package audit

// Decisions recorded for a manifest check.
const (
	DecisionAccept = "accept"
	DecisionReject = "reject"
)

// Entry is one line in the hash-chained JSONL decision log.
// Only fixed struct fields so json.Marshal output, and therefore the
// chain hash, is reproducible.
type Entry struct {
	Timestamp   string `json:"ts"`
	ID          string `json:"id"`
	Source      string `json:"source"`
	ModelName   string `json:"model_name,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Decision    string `json:"decision"`
	Kind        string `json:"kind,omitempty"`
	Reason      string `json:"reason,omitempty"`
	ConfigHash  string `json:"config_hash,omitempty"`
	PrevHash    string `json:"prev_hash"`
}
