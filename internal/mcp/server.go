package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/ppiankov/mtm/internal/gate"
)

// Checker is the part of the gate the MCP tools need.
type Checker interface {
	CheckFile(path string) (*gate.Verdict, error)
	CheckBytes(source string, data []byte) (*gate.Verdict, error)
}

// Server exposes manifest validation as MCP tools.
type Server struct {
	mcpServer *mcpsdk.Server
	checker   Checker
	logger    *zap.Logger
}

// New creates an MCP server whose tools go through checker.
func New(checker Checker, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		checker: checker,
		logger:  logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "mtm",
			Version: version,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// registerTools adds all mtm tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "mtm_validate",
		Description: "Validate a model trust manifest and enforce its deployment constraints. Pass either a file path or the YAML document inline. Rejected manifests return an error with the reason.",
	}, s.handleValidate)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "mtm_schema",
		Description: "List the fields a model trust manifest must declare and the deployment constraints that block loading.",
	}, s.handleSchema)
}
