package mtm

import "go.uber.org/zap"

// Option configures a Client at creation time.
type Option func(*clientConfig)

type clientConfig struct {
	configPath string
	useConfig  bool
	auditLog   string
	serverAddr string
	logger     *zap.Logger
}

// WithConfig loads audit and alert settings from an mtm config file.
// An empty path means ~/.mtm/config.yaml.
func WithConfig(path string) Option {
	return func(c *clientConfig) {
		c.configPath = path
		c.useConfig = true
	}
}

// WithAuditLog records every decision to the hash-chained log at path.
// Takes precedence over audit_log from WithConfig.
func WithAuditLog(path string) Option {
	return func(c *clientConfig) { c.auditLog = path }
}

// WithServer sends manifests to a remote mtm gRPC server at addr. Loads
// fail closed when the server is unreachable.
//
// The manifest travels as a protobuf Struct, which does not keep key order.
// When a document has several unknown fields the remote check names the
// lexically first one, where a local Load names the first one in the file.
// Verdicts are otherwise the same.
func WithServer(addr string) Option {
	return func(c *clientConfig) { c.serverAddr = addr }
}

// WithLogger sets the logger for decisions. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}
