// Package manifest defines the Model Trust Manifest (MTM) schema and the
// closed-world validator that runs before a model is loaded. A manifest is
// either fully valid or rejected with the first violated rule.
package manifest

import "time"

// Version is the only accepted mtm_version. Any other value, including
// later versions, is rejected.
const Version = "mtm-v0.1"

// Top-level field names.
const (
	FieldVersion          = "mtm_version"
	FieldModelName        = "model_name"
	FieldModelDescription = "model_description"
	FieldFingerprint      = "aathman_fingerprint"
	FieldIntendedUse      = "intended_use"
	FieldAllowedDomains   = "allowed_domains"
	FieldProhibitedUses   = "prohibited_uses"
	FieldOwner            = "owner"
	FieldContact          = "contact"
	FieldCreatedAt        = "created_at"
	FieldUpdatedAt        = "updated_at"

	// FieldConstraints is the single optional top-level field.
	FieldConstraints = "deployment_constraints"
)

type fieldType int

const (
	typeString fieldType = iota
	typeStringList
)

type fieldSpec struct {
	name string
	typ  fieldType
}

// requiredFields is checked in this order, so the first violation reported
// is stable across runs.
var requiredFields = []fieldSpec{
	{FieldVersion, typeString},
	{FieldModelName, typeString},
	{FieldModelDescription, typeString},
	{FieldFingerprint, typeString},
	{FieldIntendedUse, typeString},
	{FieldAllowedDomains, typeStringList},
	{FieldProhibitedUses, typeStringList},
	{FieldOwner, typeString},
	{FieldContact, typeString},
	{FieldCreatedAt, typeString},
	{FieldUpdatedAt, typeString},
}

// allowedFields is the closed set of top-level keys.
var allowedFields = func() map[string]bool {
	m := make(map[string]bool, len(requiredFields)+1)
	for _, f := range requiredFields {
		m[f.name] = true
	}
	m[FieldConstraints] = true
	return m
}()

// RequiredFields returns the required top-level field names in check order.
func RequiredFields() []string {
	names := make([]string, len(requiredFields))
	for i, f := range requiredFields {
		names[i] = f.name
	}
	return names
}

// IsKnownField returns true if name is a required field or deployment_constraints.
func IsKnownField(name string) bool {
	return allowedFields[name]
}

// Manifest is the typed view of a validated document. It is built fresh by
// every Validate call and never mutated afterwards.
type Manifest struct {
	Version          string
	ModelName        string
	ModelDescription string
	Fingerprint      string
	IntendedUse      string
	AllowedDomains   []string
	ProhibitedUses   []string
	Owner            string
	Contact          string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	doc *Document
}

// Document returns the parsed document the manifest was validated from.
func (m *Manifest) Document() *Document {
	return m.doc
}

// Constraints returns the raw deployment_constraints value and whether the
// key is present. The value is not checked here; see package enforce.
func (m *Manifest) Constraints() (any, bool) {
	return m.doc.Get(FieldConstraints)
}
