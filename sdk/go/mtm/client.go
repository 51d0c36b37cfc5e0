package mtm

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ppiankov/mtm/internal/alert"
	"github.com/ppiankov/mtm/internal/client"
	"github.com/ppiankov/mtm/internal/config"
	"github.com/ppiankov/mtm/internal/gate"
	"github.com/ppiankov/mtm/internal/manifest"
)

// Client checks manifests before models are loaded. Safe for concurrent use.
type Client struct {
	gate   *gate.Gate
	remote *client.Client
	logger *zap.Logger
}

// New creates a Client with the given options.
func New(opts ...Option) (*Client, error) {
	var cfg clientConfig
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	gcfg := gate.Config{AuditLogPath: cfg.auditLog}
	if cfg.useConfig {
		opCfg, hash, err := config.Load(cfg.configPath)
		if err != nil {
			return nil, fmt.Errorf("mtm: %w", err)
		}
		if gcfg.AuditLogPath == "" {
			gcfg.AuditLogPath = opCfg.AuditLog
		}
		gcfg.ConfigHash = hash
		gcfg.Alerts = append([]alert.AlertConfig(nil), opCfg.Alerts...)
	}

	g, err := gate.New(gcfg, cfg.logger)
	if err != nil {
		return nil, fmt.Errorf("mtm: %w", err)
	}

	c := &Client{gate: g, logger: cfg.logger}
	if cfg.serverAddr != "" {
		c.remote, err = client.New(cfg.serverAddr)
		if err != nil {
			g.Close()
			return nil, fmt.Errorf("mtm: %w", err)
		}
	}
	return c, nil
}

// Load reads the manifest at path and returns it only if it is valid and
// declares no true deployment constraint. Rejections are *Error.
func (c *Client) Load(ctx context.Context, path string) (*Manifest, error) {
	if c.remote == nil {
		v, err := c.gate.CheckFile(path)
		return v.Manifest, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, manifest.NewParseError("cannot read manifest", err)
	}
	return c.LoadBytes(ctx, path, data)
}

// LoadBytes is Load for a manifest already in memory. source labels the
// decision in logs and the audit trail.
func (c *Client) LoadBytes(ctx context.Context, source string, data []byte) (*Manifest, error) {
	if c.remote == nil {
		v, err := c.gate.CheckBytes(source, data)
		return v.Manifest, err
	}

	doc, err := manifest.ParseBytes(data)
	if err != nil {
		return nil, err
	}
	res, _ := c.remote.Validate(ctx, doc.Map())
	if !res.Valid {
		c.logger.Warn("manifest rejected by server",
			zap.String("source", source),
			zap.String("kind", res.Kind),
			zap.String("reason", res.Reason))
		return nil, resultError(res)
	}
	return manifest.Validate(doc)
}

// Close releases the audit log and any server connection.
func (c *Client) Close() error {
	var remoteErr error
	if c.remote != nil {
		remoteErr = c.remote.Close()
	}
	if err := c.gate.Close(); err != nil {
		return err
	}
	return remoteErr
}

// LoadAndEnforce validates and enforces the manifest at path with no audit
// trail. It is the shortest path for a loader that needs only the verdict.
func LoadAndEnforce(path string) (*Manifest, error) {
	return gate.LoadAndEnforce(path)
}

// Validate checks an already-parsed mapping against the schema without
// enforcing deployment constraints.
func Validate(m map[string]any) (*Manifest, error) {
	return gate.ValidateMap(m)
}
