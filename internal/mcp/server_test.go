package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/mtm/internal/audit"
	"github.com/ppiankov/mtm/internal/gate"
)

const validYAML = `mtm_version: mtm-v0.1
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

func newTestServer(t *testing.T, cfg gate.Config) *Server {
	t.Helper()
	g, err := gate.New(cfg, nil)
	if err != nil {
		t.Fatalf("failed to create gate: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return New(g, "test", nil)
}

func TestValidateInlineAccepted(t *testing.T) {
	s := newTestServer(t, gate.Config{})

	result, out, err := s.handleValidate(context.Background(), &mcpsdk.CallToolRequest{}, ValidateInput{
		Document: validYAML,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil && result.IsError {
		t.Fatal("expected success, got error result")
	}
	if !out.Valid || out.ModelName != "example" || out.Fingerprint != "abc123" {
		t.Fatalf("unexpected output: %+v", out)
	}
	if out.ID == "" {
		t.Error("expected verdict id")
	}
}

func TestValidatePathRejected(t *testing.T) {
	s := newTestServer(t, gate.Config{})
	path := filepath.Join(t.TempDir(), "mtm.yaml")
	os.WriteFile(path, []byte(validYAML+"deployment_constraints:\n  requires_human_review: true\n"), 0644)

	result, out, err := s.handleValidate(context.Background(), &mcpsdk.CallToolRequest{}, ValidateInput{Path: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || !result.IsError {
		t.Fatal("expected IsError result for rejected manifest")
	}
	if out.Valid || out.Kind != "enforcement" || out.Constraint != "requires_human_review" {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestValidateInlineSchemaError(t *testing.T) {
	s := newTestServer(t, gate.Config{})

	result, out, _ := s.handleValidate(context.Background(), &mcpsdk.CallToolRequest{}, ValidateInput{
		Document: validYAML + "extra_field: 1\n",
	})
	if result == nil || !result.IsError {
		t.Fatal("expected IsError result")
	}
	if out.Kind != "schema" || out.Reason != "unknown field: extra_field" {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestValidateInlineParseError(t *testing.T) {
	s := newTestServer(t, gate.Config{})

	result, out, _ := s.handleValidate(context.Background(), &mcpsdk.CallToolRequest{}, ValidateInput{
		Document: "key: [unclosed\n",
	})
	if result == nil || !result.IsError {
		t.Fatal("expected IsError result")
	}
	if out.Kind != "parse" {
		t.Fatalf("expected parse kind, got %+v", out)
	}
}

func TestValidateMissingFile(t *testing.T) {
	s := newTestServer(t, gate.Config{})

	result, out, _ := s.handleValidate(context.Background(), &mcpsdk.CallToolRequest{}, ValidateInput{
		Path: filepath.Join(t.TempDir(), "absent.yaml"),
	})
	if result == nil || !result.IsError || out.Kind != "parse" {
		t.Fatalf("expected parse rejection, got %+v", out)
	}
}

func TestValidateRequiresOneInput(t *testing.T) {
	s := newTestServer(t, gate.Config{})
	ctx := context.Background()

	if _, _, err := s.handleValidate(ctx, &mcpsdk.CallToolRequest{}, ValidateInput{}); err == nil {
		t.Error("expected error with no input")
	}
	if _, _, err := s.handleValidate(ctx, &mcpsdk.CallToolRequest{}, ValidateInput{Path: "a", Document: "b"}); err == nil {
		t.Error("expected error with both inputs")
	}
}

func TestValidateRecordsAudit(t *testing.T) {
	auditPath := filepath.Join(t.TempDir(), "decisions.jsonl")
	g, err := gate.New(gate.Config{AuditLogPath: auditPath}, nil)
	if err != nil {
		t.Fatal(err)
	}
	s := New(g, "test", nil)

	s.handleValidate(context.Background(), &mcpsdk.CallToolRequest{}, ValidateInput{Document: validYAML})
	s.handleValidate(context.Background(), &mcpsdk.CallToolRequest{}, ValidateInput{Document: "[]"})
	g.Close()

	r := audit.Verify(auditPath)
	if !r.Valid || r.Accepted != 1 || r.Rejected != 1 {
		t.Fatalf("unexpected audit result: %+v", r)
	}
}

func TestSchemaTool(t *testing.T) {
	s := newTestServer(t, gate.Config{})

	_, out, err := s.handleSchema(context.Background(), &mcpsdk.CallToolRequest{}, SchemaInput{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Version != "mtm-v0.1" {
		t.Errorf("version = %q", out.Version)
	}
	if len(out.RequiredFields) != 11 || out.RequiredFields[0] != "mtm_version" || out.RequiredFields[10] != "updated_at" {
		t.Errorf("required fields = %v", out.RequiredFields)
	}
	if len(out.Constraints) != 3 || out.Constraints[0] != "offline_only" {
		t.Errorf("constraints = %v", out.Constraints)
	}
}
