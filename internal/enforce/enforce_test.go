package enforce

import (
	"errors"
	"testing"

	"github.com/ppiankov/mtm/internal/manifest"
)

func baseManifest() map[string]any {
	return map[string]any{
		"mtm_version":         manifest.Version,
		"model_name":          "example",
		"model_description":   "a test model",
		"aathman_fingerprint": "abc123",
		"intended_use":        "classification",
		"allowed_domains":     []any{"finance"},
		"prohibited_uses":     []any{"weapons"},
		"owner":               "alice",
		"contact":             "alice@example.com",
		"created_at":          "2024-01-01T00:00:00Z",
		"updated_at":          "2024-01-02T00:00:00Z",
	}
}

func withConstraints(t *testing.T, constraints any) *manifest.Manifest {
	t.Helper()
	m := baseManifest()
	if constraints != nil {
		m["deployment_constraints"] = constraints
	}
	out, err := manifest.LoadMap(m)
	if err != nil {
		t.Fatalf("schema validation failed: %v", err)
	}
	return out
}

func parseManifest(t *testing.T, yamlDoc string) *manifest.Manifest {
	t.Helper()
	doc, err := manifest.ParseBytes([]byte(yamlDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	m, err := manifest.Validate(doc)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	return m
}

const header = `mtm_version: mtm-v0.1
model_name: example
model_description: a test model
aathman_fingerprint: abc123
intended_use: classification
allowed_domains: [finance]
prohibited_uses: [weapons]
owner: alice
contact: alice@example.com
created_at: "2024-01-01T00:00:00Z"
updated_at: "2024-01-02T00:00:00Z"
`

func TestEnforceNoConstraints(t *testing.T) {
	if err := Enforce(withConstraints(t, nil)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestEnforceAllFalse(t *testing.T) {
	m := withConstraints(t, map[string]any{
		"requires_human_review": false,
		"offline_only":          false,
	})
	if err := Enforce(m); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestEnforceEmptyMapping(t *testing.T) {
	if err := Enforce(withConstraints(t, map[string]any{})); err != nil {
		t.Fatalf("expected no error for empty constraints, got %v", err)
	}
}

func TestEnforceOfflineOnly(t *testing.T) {
	err := Enforce(withConstraints(t, map[string]any{"offline_only": true}))
	if err == nil {
		t.Fatal("expected enforcement error")
	}
	var me *manifest.Error
	if !errors.As(err, &me) {
		t.Fatalf("expected *manifest.Error, got %T", err)
	}
	if me.Kind != manifest.KindEnforcement {
		t.Errorf("expected enforcement kind, got %s", me.Kind)
	}
	if me.Constraint != OfflineOnly {
		t.Errorf("expected constraint offline_only, got %q", me.Constraint)
	}
}

func TestEnforceEachConstraint(t *testing.T) {
	for _, name := range []string{OfflineOnly, NoUserFacingOutput, RequiresHumanReview} {
		err := Enforce(withConstraints(t, map[string]any{name: true}))
		var me *manifest.Error
		if !errors.As(err, &me) || me.Constraint != name {
			t.Errorf("%s: expected enforcement error naming it, got %v", name, err)
		}
	}
}

func TestEnforceFixedOrder(t *testing.T) {
	m := parseManifest(t, header+`deployment_constraints:
  requires_human_review: true
  no_user_facing_output: true
`)
	err := Enforce(m)
	var me *manifest.Error
	if !errors.As(err, &me) {
		t.Fatalf("expected enforcement error, got %v", err)
	}
	if me.Constraint != NoUserFacingOutput {
		t.Errorf("expected no_user_facing_output first, got %q", me.Constraint)
	}

	m = parseManifest(t, header+`deployment_constraints:
  requires_human_review: true
  no_user_facing_output: true
  offline_only: true
`)
	if err := Enforce(m); !errors.As(err, &me) || me.Constraint != OfflineOnly {
		t.Errorf("expected offline_only first, got %v", err)
	}
}

func TestEnforceNotMapping(t *testing.T) {
	for _, v := range []any{true, "offline_only", []any{"offline_only"}, 1} {
		err := Enforce(withConstraints(t, v))
		if !manifest.IsSchema(err) {
			t.Fatalf("%#v: expected schema error, got %v", v, err)
		}
		if err.(*manifest.Error).Reason != "deployment_constraints must be a mapping" {
			t.Errorf("%#v: unexpected reason: %v", v, err)
		}
	}
}

func TestEnforceNullConstraints(t *testing.T) {
	for _, value := range []string{"", " ~", " null"} {
		m := parseManifest(t, header+"deployment_constraints:"+value+"\n")
		if err := Enforce(m); !manifest.IsSchema(err) {
			t.Errorf("deployment_constraints:%s: expected schema error, got %v", value, err)
		}
	}
}

func TestEnforceUnknownConstraint(t *testing.T) {
	err := Enforce(withConstraints(t, map[string]any{"gpu_only": false}))
	if !manifest.IsSchema(err) {
		t.Fatalf("expected schema error, got %v", err)
	}
	if err.(*manifest.Error).Reason != "unknown constraint: gpu_only" {
		t.Errorf("unexpected reason: %v", err)
	}
}

func TestEnforceUnknownBeforeTrue(t *testing.T) {
	m := parseManifest(t, header+`deployment_constraints:
  offline_only: true
  air_gapped: true
`)
	err := Enforce(m)
	if !manifest.IsSchema(err) {
		t.Fatalf("expected schema error before enforcement, got %v", err)
	}
}

func TestEnforceNonBooleanValue(t *testing.T) {
	for _, v := range []any{"true", 1, nil, []any{true}} {
		err := Enforce(withConstraints(t, map[string]any{"requires_human_review": v}))
		if !manifest.IsSchema(err) {
			t.Fatalf("%#v: expected schema error, got %v", v, err)
		}
		if err.(*manifest.Error).Reason != "constraint value must be boolean: requires_human_review" {
			t.Errorf("%#v: unexpected reason: %v", v, err)
		}
	}
}

func TestEnforceStringYesIsNotBoolean(t *testing.T) {
	m := parseManifest(t, header+"deployment_constraints:\n  offline_only: \"yes\"\n")
	if err := Enforce(m); !manifest.IsSchema(err) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestDeclared(t *testing.T) {
	c, err := Declared(withConstraints(t, map[string]any{
		"no_user_facing_output": true,
		"requires_human_review": true,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if c.OfflineOnly || !c.NoUserFacingOutput || !c.RequiresHumanReview {
		t.Errorf("unexpected constraints: %+v", c)
	}
	active := c.Active()
	if len(active) != 2 || active[0] != NoUserFacingOutput || active[1] != RequiresHumanReview {
		t.Errorf("active = %v", active)
	}
}

func TestEnforceDeterministic(t *testing.T) {
	m := withConstraints(t, map[string]any{
		"requires_human_review": true,
		"no_user_facing_output": true,
		"offline_only":          true,
	})
	for i := 0; i < 20; i++ {
		err := Enforce(m)
		if err == nil || err.(*manifest.Error).Constraint != OfflineOnly {
			t.Fatalf("run %d: expected offline_only, got %v", i, err)
		}
	}
}

func TestNamesIsACopy(t *testing.T) {
	names := Names()
	if len(names) != 3 || names[0] != OfflineOnly || names[2] != RequiresHumanReview {
		t.Fatalf("Names() = %v", names)
	}
	names[0] = "mutated"
	if Names()[0] != OfflineOnly {
		t.Error("Names() exposed internal order")
	}
}
