// Package enforce applies the deployment constraints a manifest declares.
// The policy is fail-closed: the enforcer cannot itself guarantee any
// constraint holds, so any constraint declared true halts loading.
//
// An absent deployment_constraints key declares nothing. A present but null
// value (deployment_constraints: ~) is not a mapping and is rejected.
package enforce

import (
	"github.com/ppiankov/mtm/internal/manifest"
)

// Recognized constraint names, in enforcement order.
const (
	OfflineOnly         = "offline_only"
	NoUserFacingOutput  = "no_user_facing_output"
	RequiresHumanReview = "requires_human_review"
)

// order fixes which constraint is reported when several are true.
var order = []string{OfflineOnly, NoUserFacingOutput, RequiresHumanReview}

// Constraints holds the declared flags. A flag that was not declared is false.
type Constraints struct {
	OfflineOnly         bool `json:"offline_only"`
	NoUserFacingOutput  bool `json:"no_user_facing_output"`
	RequiresHumanReview bool `json:"requires_human_review"`
}

func (c Constraints) value(name string) bool {
	switch name {
	case OfflineOnly:
		return c.OfflineOnly
	case NoUserFacingOutput:
		return c.NoUserFacingOutput
	case RequiresHumanReview:
		return c.RequiresHumanReview
	}
	return false
}

// Active returns the names of constraints declared true, in enforcement order.
func (c Constraints) Active() []string {
	var active []string
	for _, name := range order {
		if c.value(name) {
			active = append(active, name)
		}
	}
	return active
}

// Names returns the recognized constraints in enforcement order.
func Names() []string {
	return append([]string(nil), order...)
}

// IsKnown returns true if name is a recognized constraint.
func IsKnown(name string) bool {
	for _, n := range order {
		if n == name {
			return true
		}
	}
	return false
}

// Declared checks the deployment_constraints block of m and returns its
// flags. An absent block yields all-false constraints. A block that is not
// a mapping, holds an unknown key, or holds a non-boolean value is a
// schema error; keys are checked in document order.
func Declared(m *manifest.Manifest) (Constraints, error) {
	var c Constraints

	raw, ok := m.Constraints()
	if !ok {
		return c, nil
	}

	block, ok := raw.(*manifest.Document)
	if !ok {
		return c, manifest.NewSchemaError("deployment_constraints must be a mapping")
	}

	for _, key := range block.Keys() {
		if !IsKnown(key) {
			return c, manifest.NewSchemaError("unknown constraint: " + key)
		}
		v, _ := block.Get(key)
		b, ok := v.(bool)
		if !ok {
			return c, manifest.NewSchemaError("constraint value must be boolean: " + key)
		}
		switch key {
		case OfflineOnly:
			c.OfflineOnly = b
		case NoUserFacingOutput:
			c.NoUserFacingOutput = b
		case RequiresHumanReview:
			c.RequiresHumanReview = b
		}
	}
	return c, nil
}

// Enforce refuses to proceed if any recognized constraint is true. The
// error for the first true constraint in fixed order is returned.
func Enforce(m *manifest.Manifest) error {
	c, err := Declared(m)
	if err != nil {
		return err
	}
	if active := c.Active(); len(active) > 0 {
		return manifest.NewEnforcementError(active[0])
	}
	return nil
}
