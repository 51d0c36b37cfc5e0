// Package gate runs a manifest through schema validation and constraint
// enforcement and records the outcome. It is the single place the CLI,
// gRPC server, MCP server and watcher go through.
package gate

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/mtm/internal/alert"
	"github.com/ppiankov/mtm/internal/audit"
	"github.com/ppiankov/mtm/internal/enforce"
	"github.com/ppiankov/mtm/internal/manifest"
)

// LoadAndValidate parses and validates the manifest at path without
// enforcing constraints.
func LoadAndValidate(path string) (*manifest.Manifest, error) {
	return manifest.Load(path)
}

// ValidateMap validates an already-parsed mapping.
func ValidateMap(m map[string]any) (*manifest.Manifest, error) {
	return manifest.LoadMap(m)
}

// LoadAndEnforce is the entry point for model loaders: the manifest at
// path is returned only if it is valid and declares no true constraint.
func LoadAndEnforce(path string) (*manifest.Manifest, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	if err := enforce.Enforce(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Config holds gate configuration.
type Config struct {
	AuditLogPath string
	// AuditLog is an already open log shared with other gates. It takes
	// precedence over AuditLogPath and is not closed by Gate.Close.
	AuditLog   *audit.Log
	ConfigHash string
	Alerts     []alert.AlertConfig
}

// Gate checks manifests and records every decision. Safe for concurrent use.
type Gate struct {
	logger     *zap.Logger
	auditLog   *audit.Log
	ownsLog    bool
	dispatcher *alert.Dispatcher
	configHash string
}

// New opens the audit log (if configured) and prepares alert delivery.
func New(cfg Config, logger *zap.Logger) (*Gate, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	auditLog := cfg.AuditLog
	ownsLog := false
	if auditLog == nil && cfg.AuditLogPath != "" {
		var err error
		auditLog, err = audit.Open(cfg.AuditLogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
		ownsLog = true
	}

	return &Gate{
		logger:     logger,
		auditLog:   auditLog,
		ownsLog:    ownsLog,
		dispatcher: alert.NewDispatcher(cfg.Alerts, logger),
		configHash: cfg.ConfigHash,
	}, nil
}

// Close waits for in-flight alerts and closes the audit log if the gate
// opened it.
func (g *Gate) Close() error {
	if g.dispatcher != nil {
		g.dispatcher.Wait()
	}
	if g.auditLog != nil && g.ownsLog {
		return g.auditLog.Close()
	}
	return nil
}

// CheckFile validates and enforces the manifest at path.
func (g *Gate) CheckFile(path string) (*Verdict, error) {
	doc, err := manifest.ParseFile(path)
	return g.check(path, doc, err)
}

// CheckBytes validates and enforces an in-memory YAML manifest. source
// labels the decision in logs and the audit trail.
func (g *Gate) CheckBytes(source string, data []byte) (*Verdict, error) {
	doc, err := manifest.ParseBytes(data)
	return g.check(source, doc, err)
}

// CheckMap validates and enforces an already-parsed mapping.
func (g *Gate) CheckMap(source string, m map[string]any) (*Verdict, error) {
	doc := manifest.FromMap(m)
	if doc == nil {
		return g.check(source, nil, manifest.NewParseError("manifest must be a YAML mapping", nil))
	}
	return g.check(source, doc, nil)
}

func (g *Gate) check(source string, doc *manifest.Document, err error) (*Verdict, error) {
	v := &Verdict{
		ID:        uuid.NewString(),
		Source:    source,
		CheckedAt: time.Now().UTC(),
	}

	var m *manifest.Manifest
	if err == nil {
		v.ModelName, _ = doc.String(manifest.FieldModelName)
		v.Fingerprint, _ = doc.String(manifest.FieldFingerprint)
		m, err = manifest.Validate(doc)
		if err == nil {
			err = enforce.Enforce(m)
		}
	}

	if err == nil {
		v.Accepted = true
		v.Manifest = m
	} else {
		v.Kind = string(manifest.KindOf(err))
		var me *manifest.Error
		if errors.As(err, &me) {
			v.Reason = me.Reason
			v.Constraint = me.Constraint
		} else {
			v.Reason = err.Error()
		}
	}

	g.record(v)
	return v, err
}

func (g *Gate) record(v *Verdict) {
	fields := []zap.Field{
		zap.String("id", v.ID),
		zap.String("source", v.Source),
		zap.String("model_name", v.ModelName),
	}
	if v.Accepted {
		g.logger.Info("manifest accepted", fields...)
	} else {
		g.logger.Warn("manifest rejected", append(fields,
			zap.String("kind", v.Kind),
			zap.String("reason", v.Reason))...)
	}

	ts := v.CheckedAt.Format(audit.TimeFormat)
	if g.auditLog != nil {
		entry := audit.Entry{
			Timestamp:   ts,
			ID:          v.ID,
			Source:      v.Source,
			ModelName:   v.ModelName,
			Fingerprint: v.Fingerprint,
			Decision:    v.Decision(),
			Kind:        v.Kind,
			Reason:      v.Reason,
			ConfigHash:  g.configHash,
		}
		if err := g.auditLog.Record(entry); err != nil {
			g.logger.Error("audit record failed", zap.String("id", v.ID), zap.Error(err))
		}
	}

	if g.dispatcher != nil && !v.Accepted {
		g.dispatcher.Dispatch(alert.AlertEvent{
			Timestamp:   ts,
			ID:          v.ID,
			Source:      v.Source,
			ModelName:   v.ModelName,
			Fingerprint: v.Fingerprint,
			Decision:    v.Decision(),
			Kind:        v.Kind,
			Reason:      v.Reason,
		})
	}
}
