package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
)

// Handler serves every capability routed to one module.
type Handler func(ctx context.Context, payload []byte) ([]byte, error)

// TypedFunc is a handler with decoded request and response types.
type TypedFunc[Req any, Resp any] func(context.Context, Req) (Resp, error)

// NewJSONHandler wraps a typed function into a Handler.
// It handles the JSON unmarshalling of the request and marshalling of the response.
func NewJSONHandler[Req any, Resp any](fn TypedFunc[Req, Resp]) Handler {
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		var req Req
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("failed to unmarshal request: %w", err)
		}

		resp, err := fn(ctx, req)
		if err != nil {
			return nil, err
		}

		respBytes, err := json.Marshal(resp)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}

		return respBytes, nil
	}
}
