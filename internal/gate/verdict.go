package gate

import (
	"time"

	"github.com/ppiankov/mtm/internal/audit"
	"github.com/ppiankov/mtm/internal/manifest"
)

// Verdict is the outcome of one gate check.
type Verdict struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	ModelName   string    `json:"model_name,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Accepted    bool      `json:"accepted"`
	Kind        string    `json:"kind,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	Constraint  string    `json:"constraint,omitempty"`
	CheckedAt   time.Time `json:"checked_at"`

	// Manifest is set only when Accepted.
	Manifest *manifest.Manifest `json:"-"`
}

// Decision returns "accept" or "reject".
func (v *Verdict) Decision() string {
	if v.Accepted {
		return audit.DecisionAccept
	}
	return audit.DecisionReject
}
