package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/danielpatrickdp/whatif-engine/internal/candidate"
	"github.com/danielpatrickdp/whatif-engine/internal/params"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region types
// GenerateMethod is the full gRPC method name of the text-generation service.
const GenerateMethod = "/whatif.v1.GenerationService/Generate"

// ErrUnavailable is returned when the backend cannot be reached or the
// circuit breaker is open.
var ErrUnavailable = errors.New("generation backend unavailable")
// #endregion types

// #region client-struct
// Client calls the external text-generation service over gRPC. Requests and
// responses are google.protobuf.Struct messages so no generated stubs are needed.
type Client struct {
	conn   grpc.ClientConnInterface
	closer func() error
}
// #endregion client-struct

// #region constructor
// NewClient connects to the generation service at addr.
func NewClient(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, closer: conn.Close}, nil
}

// NewClientWithConn creates a Client over an injected connection.
// Used for testing without a real gRPC server.
func NewClientWithConn(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}
// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}
// #endregion close

// #region generate
// Generate asks the service for n candidate prompts for the parameters.
func (c *Client) Generate(ctx context.Context, p params.SimulatorParameters, n int) ([]candidate.Draft, error) {
	req, err := encodeRequest(p, n)
	if err != nil {
		return nil, err
	}
	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, GenerateMethod, req, resp); err != nil {
		return nil, fmt.Errorf("generate rpc: %w", err)
	}
	return decodeResponse(resp)
}

// encodeRequest builds {"count": n, "parameters": {...}} from the JSON form of p.
func encodeRequest(p params.SimulatorParameters, n int) (*structpb.Struct, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal parameters: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal parameters: %w", err)
	}
	req, err := structpb.NewStruct(map[string]any{
		"count":      n,
		"parameters": fields,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return req, nil
}

// decodeResponse reads {"candidates": [{"text", "impact", "tags"}]}.
func decodeResponse(resp *structpb.Struct) ([]candidate.Draft, error) {
	list := resp.GetFields()["candidates"].GetListValue()
	if list == nil {
		return nil, fmt.Errorf("decode response: missing candidates list")
	}
	drafts := make([]candidate.Draft, 0, len(list.GetValues()))
	for _, v := range list.GetValues() {
		fields := v.GetStructValue().GetFields()
		if fields == nil {
			continue
		}
		d := candidate.Draft{
			Text:   fields["text"].GetStringValue(),
			Impact: fields["impact"].GetNumberValue(),
		}
		for _, tag := range fields["tags"].GetListValue().GetValues() {
			if s := tag.GetStringValue(); s != "" {
				d.Tags = append(d.Tags, s)
			}
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}
// #endregion generate
