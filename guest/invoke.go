//go:build wasip1

package guest

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/reglet-dev/facet/domain/entities"
	"github.com/reglet-dev/facet/internal/abi"
)

// RemoteError is an error reported by the host, such as an unbound
// capability or a failing handler.
type RemoteError = abi.RemoteError

// ErrNoResponse is returned when the host could not write a response into
// guest memory.
var ErrNoResponse = errors.New("host returned no response")

//go:wasmimport facet_host invoke
func hostInvoke(capability uint32, request uint64) uint64

// Invoke calls capability c with request and returns the handler's response.
func Invoke(c entities.CapabilityID, request []byte) ([]byte, error) {
	req, err := pin(request)
	if err != nil {
		return nil, fmt.Errorf("invoke %s: %w", c, err)
	}
	defer unpin(req)

	frame, err := take(hostInvoke(abi.CapabilityWord(c), req))
	if err != nil {
		return nil, fmt.Errorf("invoke %s: %w", c, err)
	}
	if frame == nil {
		return nil, fmt.Errorf("invoke %s: %w", c, ErrNoResponse)
	}
	resp, err := abi.DecodeResponse(frame)
	if err != nil {
		return nil, fmt.Errorf("invoke %s: %w", c, err)
	}
	return resp, nil
}

// InvokeJSON marshals req, calls c and unmarshals the response into Resp.
func InvokeJSON[Req any, Resp any](c entities.CapabilityID, req Req) (Resp, error) {
	var resp Resp
	payload, err := json.Marshal(req)
	if err != nil {
		return resp, fmt.Errorf("failed to marshal request: %w", err)
	}
	out, err := Invoke(c, payload)
	if err != nil {
		return resp, err
	}
	if err := json.Unmarshal(out, &resp); err != nil {
		return resp, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return resp, nil
}
