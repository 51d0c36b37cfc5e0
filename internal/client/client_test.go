package client

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/mtm/internal/server"
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

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

// startTestServer creates a server + returns its address.
func startTestServer(t *testing.T) (string, func()) {
	t.Helper()

	srv, err := server.New(server.Config{
		ConfigPath: filepath.Join(t.TempDir(), "config.yaml"),
	}, nil)
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	go srv.ServeOn(lis)

	cleanup := func() {
		srv.GracefulStop()
		srv.Close()
	}
	return lis.Addr().String(), cleanup
}

func newClient(t *testing.T, addr string) *Client {
	t.Helper()
	c, err := New(addr)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClientValidateFileAccepted(t *testing.T) {
	addr, cleanup := startTestServer(t)
	defer cleanup()

	c := newClient(t, addr)
	res, err := c.ValidateFile(context.Background(), writeTempFile(t, "mtm.yaml", validYAML))
	if err != nil {
		t.Fatalf("ValidateFile: %v", err)
	}
	if !res.Valid {
		t.Fatalf("expected valid, got %+v", res)
	}
	if res.ModelName != "example" || res.ID == "" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestClientValidateFileConstraint(t *testing.T) {
	addr, cleanup := startTestServer(t)
	defer cleanup()

	c := newClient(t, addr)
	path := writeTempFile(t, "mtm.yaml", validYAML+"deployment_constraints:\n  no_user_facing_output: true\n")
	res, err := c.ValidateFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Valid || res.Kind != "enforcement" || res.Constraint != "no_user_facing_output" {
		t.Fatalf("expected enforcement rejection, got %+v", res)
	}
}

func TestClientValidateFileUnquotedTimestamps(t *testing.T) {
	addr, cleanup := startTestServer(t)
	defer cleanup()

	c := newClient(t, addr)
	doc := `mtm_version: mtm-v0.1
model_name: example
model_description: a test model
aathman_fingerprint: abc123
intended_use: classification
allowed_domains: []
prohibited_uses: []
owner: alice
contact: alice@example.com
created_at: 2024-01-01T00:00:00Z
updated_at: 2024-01-02
`
	res, _ := c.ValidateFile(context.Background(), writeTempFile(t, "mtm.yaml", doc))
	if !res.Valid {
		t.Fatalf("expected valid, got %+v", res)
	}
}

func TestClientValidateFileParseErrorIsLocal(t *testing.T) {
	// No server: a parse failure must not need one.
	c := newClient(t, "127.0.0.1:1")
	res, err := c.ValidateFile(context.Background(), writeTempFile(t, "mtm.yaml", "- just\n- a list\n"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Valid || res.Kind != "parse" {
		t.Fatalf("expected parse rejection, got %+v", res)
	}
}

func TestClientValidateMissingFile(t *testing.T) {
	c := newClient(t, "127.0.0.1:1")
	res, _ := c.ValidateFile(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
	if res.Valid || res.Kind != "parse" {
		t.Fatalf("expected parse rejection, got %+v", res)
	}
}

func TestClientValidateMapSchemaError(t *testing.T) {
	addr, cleanup := startTestServer(t)
	defer cleanup()

	c := newClient(t, addr)
	res, err := c.Validate(context.Background(), map[string]any{"mtm_version": "mtm-v0.1"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Valid || res.Kind != "schema" || res.Reason != "missing field: model_name" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestClientUnencodableValue(t *testing.T) {
	c := newClient(t, "127.0.0.1:1")
	res, err := c.Validate(context.Background(), map[string]any{"created_at": time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	if res.Valid || res.Kind != "parse" {
		t.Fatalf("expected parse rejection, got %+v", res)
	}
}

func TestClientFailClosedOnUnreachable(t *testing.T) {
	// Connect to a port nobody is listening on.
	c := newClient(t, "127.0.0.1:1")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	res, err := c.ValidateFile(ctx, writeTempFile(t, "mtm.yaml", validYAML))
	if err != nil {
		t.Fatalf("fail-closed should not return error, got: %v", err)
	}
	if res.Valid {
		t.Fatal("expected invalid when server unreachable")
	}
	if res.Kind != KindUnavailable {
		t.Errorf("expected kind %q, got %q", KindUnavailable, res.Kind)
	}
}

func TestClientFailClosedAfterServerStops(t *testing.T) {
	addr, cleanup := startTestServer(t)
	c := newClient(t, addr)

	path := writeTempFile(t, "mtm.yaml", validYAML)
	if res, _ := c.ValidateFile(context.Background(), path); !res.Valid {
		t.Fatalf("expected valid while server is up, got %+v", res)
	}

	cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	res, _ := c.ValidateFile(ctx, path)
	if res.Valid || res.Kind != KindUnavailable {
		t.Fatalf("expected unavailable after shutdown, got %+v", res)
	}
}
