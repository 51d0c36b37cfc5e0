package manifest

import "time"

// Validate checks doc against the closed MTM schema and returns the typed
// manifest. Checks run in a fixed order and the first violation is
// returned as a schema error:
//
//  1. every required field is present
//  2. every required field has its declared type
//  3. mtm_version is exactly Version
//  4. allowed_domains and prohibited_uses hold only strings
//  5. no top-level key outside the required set and deployment_constraints
//  6. created_at and updated_at parse as ISO-8601
//  7. updated_at is not before created_at
//
// deployment_constraints is left to the enforcer.
func Validate(doc *Document) (*Manifest, error) {
	if doc == nil {
		return nil, NewParseError("manifest must be a YAML mapping", nil)
	}

	for _, f := range requiredFields {
		if _, ok := doc.Get(f.name); !ok {
			return nil, NewSchemaError("missing field: " + f.name)
		}
	}

	for _, f := range requiredFields {
		v, _ := doc.Get(f.name)
		if !hasType(v, f.typ) {
			return nil, NewSchemaError("wrong type: " + f.name)
		}
	}

	if v, _ := doc.String(FieldVersion); v != Version {
		return nil, NewSchemaError("unsupported version")
	}

	allowed, ok := stringList(doc, FieldAllowedDomains)
	if !ok {
		return nil, NewSchemaError("non-string element")
	}
	prohibited, ok := stringList(doc, FieldProhibitedUses)
	if !ok {
		return nil, NewSchemaError("non-string element")
	}

	for _, k := range doc.keys {
		if !allowedFields[k] {
			return nil, NewSchemaError("unknown field: " + k)
		}
	}

	created, err := timestampField(doc, FieldCreatedAt)
	if err != nil {
		return nil, err
	}
	updated, err := timestampField(doc, FieldUpdatedAt)
	if err != nil {
		return nil, err
	}
	if updated.Before(created) {
		return nil, NewSchemaError("updated_at before created_at")
	}

	m := &Manifest{
		AllowedDomains: allowed,
		ProhibitedUses: prohibited,
		CreatedAt:      created,
		UpdatedAt:      updated,
		doc:            doc,
	}
	m.Version, _ = doc.String(FieldVersion)
	m.ModelName, _ = doc.String(FieldModelName)
	m.ModelDescription, _ = doc.String(FieldModelDescription)
	m.Fingerprint, _ = doc.String(FieldFingerprint)
	m.IntendedUse, _ = doc.String(FieldIntendedUse)
	m.Owner, _ = doc.String(FieldOwner)
	m.Contact, _ = doc.String(FieldContact)
	return m, nil
}

func hasType(v any, typ fieldType) bool {
	switch typ {
	case typeString:
		_, ok := v.(string)
		return ok
	case typeStringList:
		_, ok := v.([]any)
		return ok
	}
	return false
}

func stringList(doc *Document, key string) ([]string, bool) {
	v, _ := doc.Get(key)
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func timestampField(doc *Document, key string) (time.Time, error) {
	s, _ := doc.String(key)
	t, err := ParseTimestamp(s)
	if err != nil {
		return time.Time{}, NewSchemaError("invalid timestamp: " + key)
	}
	return t, nil
}

// Load parses the manifest at path and validates it.
func Load(path string) (*Manifest, error) {
	doc, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return Validate(doc)
}

// LoadMap validates an already-parsed mapping.
func LoadMap(m map[string]any) (*Manifest, error) {
	return Validate(FromMap(m))
}
