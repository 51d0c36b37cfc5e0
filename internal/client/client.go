package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	pb "github.com/ppiankov/mtm/api/proto/mtm/v1"
	"github.com/ppiankov/mtm/internal/manifest"
)

// KindUnavailable marks a rejection caused by the server being unreachable.
const KindUnavailable = "unavailable"

// DefaultTimeout bounds a single Validate call when ctx has no deadline.
const DefaultTimeout = 5 * time.Second

// Result is the server's verdict on one manifest.
type Result struct {
	Valid      bool   `json:"valid"`
	ID         string `json:"id,omitempty"`
	ModelName  string `json:"model_name,omitempty"`
	Kind       string `json:"kind,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Constraint string `json:"constraint,omitempty"`
}

// Client connects to an mtm gRPC server.
type Client struct {
	conn   *grpc.ClientConn
	client pb.ManifestServiceClient
}

// New creates a gRPC client for addr. The connection is lazy, so an
// unreachable server shows up on the first Validate, not here.
func New(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to manifest server: %w", err)
	}
	return &Client{
		conn:   conn,
		client: pb.NewManifestServiceClient(conn),
	}, nil
}

// Validate sends m to the server. Fail-closed: any transport error yields
// an invalid Result of kind "unavailable" and a nil error. Map keys reach
// the server in lexical order, so of several unknown fields the lexically
// first is reported.
func (c *Client) Validate(ctx context.Context, m map[string]any) (Result, error) {
	req, err := structpb.NewStruct(m)
	if err != nil {
		return Result{
			Kind:   string(manifest.KindParse),
			Reason: fmt.Sprintf("manifest cannot be encoded: %v", err),
		}, nil
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	resp, err := c.client.Validate(ctx, req)
	if err != nil {
		return Result{
			Kind:   KindUnavailable,
			Reason: fmt.Sprintf("manifest server unreachable: %v", err),
		}, nil
	}

	f := resp.GetFields()
	return Result{
		Valid:      f[pb.FieldValid].GetBoolValue(),
		ID:         f[pb.FieldID].GetStringValue(),
		ModelName:  f[pb.FieldModelName].GetStringValue(),
		Kind:       f[pb.FieldKind].GetStringValue(),
		Reason:     f[pb.FieldReason].GetStringValue(),
		Constraint: f[pb.FieldConstraint].GetStringValue(),
	}, nil
}

// ValidateFile parses the manifest at path locally and sends the mapping to
// the server. A file that does not parse is rejected without a round trip.
// File key order is not preserved; see Validate.
func (c *Client) ValidateFile(ctx context.Context, path string) (Result, error) {
	doc, err := manifest.ParseFile(path)
	if err != nil {
		res := Result{Kind: string(manifest.KindParse), Reason: err.Error()}
		var me *manifest.Error
		if errors.As(err, &me) {
			res.Kind = string(me.Kind)
			res.Reason = me.Reason
		}
		return res, nil
	}
	return c.Validate(ctx, doc.Map())
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
