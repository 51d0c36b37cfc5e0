package server

import (
	"context"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	pb "github.com/ppiankov/mtm/api/proto/mtm/v1"
	"github.com/ppiankov/mtm/internal/audit"
	"github.com/ppiankov/mtm/internal/config"
	"github.com/ppiankov/mtm/internal/gate"
)

// Config holds gRPC server configuration.
type Config struct {
	Port       int
	ConfigPath string
	// AuditLogPath overrides audit_log from the config file when set.
	AuditLogPath string
}

// Server implements ManifestService on top of a gate.
type Server struct {
	pb.UnimplementedManifestServiceServer

	mu         sync.RWMutex
	gate       *gate.Gate
	configHash string
	cfg        Config
	logger     *zap.Logger

	// reloadMu serializes Reload. auditLog and auditPath are written only
	// while holding both reloadMu and mu.
	reloadMu  sync.Mutex
	auditLog  *audit.Log
	auditPath string

	grpcServer *grpc.Server
}

// New loads the operator config, builds the gate and registers the service.
func New(cfg Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:        cfg,
		logger:     logger,
		grpcServer: grpc.NewServer(),
	}
	b, err := s.build()
	if err != nil {
		return nil, err
	}
	s.gate, s.configHash = b.gate, b.hash
	s.auditLog, s.auditPath = b.log, b.path

	pb.RegisterManifestServiceServer(s.grpcServer, s)
	return s, nil
}

// built is a gate together with the audit log it writes to.
type built struct {
	gate *gate.Gate
	hash string
	log  *audit.Log
	path string
}

// build loads the config and builds a gate. The open audit log is reused
// when its path is unchanged, so the hash chain is never re-read while
// checks are appending to it.
func (s *Server) build() (built, error) {
	opCfg, hash, err := config.Load(s.cfg.ConfigPath)
	if err != nil {
		return built{}, fmt.Errorf("failed to load config: %w", err)
	}
	path := opCfg.AuditLog
	if s.cfg.AuditLogPath != "" {
		path = s.cfg.AuditLogPath
	}

	log := s.auditLog
	if path != s.auditPath || s.auditLog == nil {
		log = nil
		if path != "" {
			log, err = audit.Open(path)
			if err != nil {
				return built{}, fmt.Errorf("failed to open audit log: %w", err)
			}
		}
	}

	g, err := gate.New(gate.Config{
		AuditLog:   log,
		ConfigHash: hash,
		Alerts:     opCfg.Alerts,
	}, s.logger)
	if err != nil {
		if log != nil && log != s.auditLog {
			log.Close()
		}
		return built{}, err
	}
	return built{gate: g, hash: hash, log: log, path: path}, nil
}

// Serve listens on the configured port. Blocks until stopped.
func (s *Server) Serve() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.cfg.Port, err)
	}
	return s.grpcServer.Serve(lis)
}

// ServeOn serves on an existing listener.
func (s *Server) ServeOn(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// GracefulStop stops accepting connections and waits for in-flight RPCs.
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}

// Close releases the gate and the audit log.
func (s *Server) Close() error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.gate.Close()
	if s.auditLog != nil {
		if cerr := s.auditLog.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// ConfigHash returns the hash of the config the current gate was built from.
func (s *Server) ConfigHash() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.configHash
}

// Reload rebuilds the gate from the config file. On failure the current
// gate stays in place. A changed audit_log path starts writing to the new
// log; an unchanged one keeps appending to the open log.
func (s *Server) Reload() error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	b, err := s.build()
	if err != nil {
		return err
	}

	s.mu.Lock()
	oldGate, oldLog := s.gate, s.auditLog
	s.gate, s.configHash = b.gate, b.hash
	s.auditLog, s.auditPath = b.log, b.path
	s.mu.Unlock()

	err = oldGate.Close()
	if oldLog != nil && oldLog != b.log {
		if cerr := oldLog.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Validate implements the Validate RPC. Rejections are reported in the
// response, not as RPC errors.
func (s *Server) Validate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	source := "grpc"
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		source = "grpc:" + p.Addr.String()
	}

	s.mu.RLock()
	v, _ := s.gate.CheckMap(source, req.AsMap())
	s.mu.RUnlock()

	resp, err := structpb.NewStruct(map[string]any{
		pb.FieldValid:      v.Accepted,
		pb.FieldID:         v.ID,
		pb.FieldModelName:  v.ModelName,
		pb.FieldKind:       v.Kind,
		pb.FieldReason:     v.Reason,
		pb.FieldConstraint: v.Constraint,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode verdict: %v", err)
	}
	return resp, nil
}
