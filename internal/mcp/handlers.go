package mcp

import (
	"context"
	"errors"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/ppiankov/mtm/internal/enforce"
	"github.com/ppiankov/mtm/internal/gate"
	"github.com/ppiankov/mtm/internal/manifest"
)

// --- Input/Output types ---

// ValidateInput defines parameters for the mtm_validate tool.
type ValidateInput struct {
	Path     string `json:"path,omitempty" jsonschema:"path to the manifest file"`
	Document string `json:"document,omitempty" jsonschema:"manifest YAML text, used instead of path"`
}

// ValidateOutput is the gate verdict.
type ValidateOutput struct {
	Valid       bool   `json:"valid"`
	ID          string `json:"id"`
	ModelName   string `json:"model_name,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Kind        string `json:"kind,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Constraint  string `json:"constraint,omitempty"`
}

// SchemaInput is empty, no parameters needed.
type SchemaInput struct{}

// SchemaOutput describes what a manifest must contain.
type SchemaOutput struct {
	Version        string   `json:"mtm_version"`
	RequiredFields []string `json:"required_fields"`
	Constraints    []string `json:"deployment_constraints"`
}

// --- Handlers ---

func (s *Server) handleValidate(ctx context.Context, req *mcpsdk.CallToolRequest, input ValidateInput) (*mcpsdk.CallToolResult, ValidateOutput, error) {
	switch {
	case input.Path == "" && input.Document == "":
		return nil, ValidateOutput{}, errors.New("one of path or document is required")
	case input.Path != "" && input.Document != "":
		return nil, ValidateOutput{}, errors.New("path and document are mutually exclusive")
	}

	var v *gate.Verdict
	if input.Path != "" {
		v, _ = s.checker.CheckFile(input.Path)
	} else {
		v, _ = s.checker.CheckBytes("mcp", []byte(input.Document))
	}
	out := ValidateOutput{
		Valid:       v.Accepted,
		ID:          v.ID,
		ModelName:   v.ModelName,
		Fingerprint: v.Fingerprint,
		Kind:        v.Kind,
		Reason:      v.Reason,
		Constraint:  v.Constraint,
	}

	if !out.Valid {
		s.logger.Debug("mtm_validate rejected", zap.String("kind", out.Kind), zap.String("reason", out.Reason))
		return &mcpsdk.CallToolResult{IsError: true}, out, nil
	}
	return nil, out, nil
}

func (s *Server) handleSchema(ctx context.Context, req *mcpsdk.CallToolRequest, input SchemaInput) (*mcpsdk.CallToolResult, SchemaOutput, error) {
	return nil, SchemaOutput{
		Version:        manifest.Version,
		RequiredFields: manifest.RequiredFields(),
		Constraints:    enforce.Names(),
	}, nil
}
