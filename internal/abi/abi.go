// Package abi holds the wire conventions shared by the host bridge and
// guest modules: packed pointers, capability words and response frames.
package abi

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/reglet-dev/facet/domain/entities"
)

// Names of the functions on either side of the boundary.
const (
	HostModule     = "facet_host"
	InvokeFunc     = "invoke"
	AllocateFunc   = "allocate"
	DeallocateFunc = "deallocate"
)

// Response status bytes.
const (
	StatusOK    byte = 0
	StatusError byte = 1
)

// PtrHighBits is the shift of the pointer half of a packed value.
const PtrHighBits = 32

// PackPtrLen packs a pointer and length into a single uint64.
// Pointer is stored in the high 32 bits, length in the low 32 bits.
func PackPtrLen(ptr, length uint32) uint64 {
	return (uint64(ptr) << PtrHighBits) | uint64(length)
}

// UnpackPtrLen unpacks a uint64 into its original pointer and length.
func UnpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> PtrHighBits) //nolint:gosec // G115: packed format stores 32-bit values
	length = uint32(packed)             //nolint:gosec // G115: packed format stores 32-bit values
	return ptr, length
}

// CapabilityWord is the i32 form of a capability id passed to invoke.
func CapabilityWord(c entities.CapabilityID) uint32 {
	return binary.BigEndian.Uint32(c[:])
}

// CapabilityFromWord reverses CapabilityWord.
func CapabilityFromWord(w uint32) entities.CapabilityID {
	var c entities.CapabilityID
	binary.BigEndian.PutUint32(c[:], w)
	return c
}

// EncodeOK frames a successful response.
func EncodeOK(payload []byte) []byte {
	return append([]byte{StatusOK}, payload...)
}

// EncodeError frames a JSON error body.
func EncodeError(body []byte) []byte {
	return append([]byte{StatusError}, body...)
}

// RemoteError is an error frame decoded on the guest side.
type RemoteError struct {
	Kind    string                `json:"error"`
	Message string                `json:"message"`
	Code    int                   `json:"code"`
	Detail  *entities.ErrorDetail `json:"detail,omitempty"`
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Code, e.Message)
}

// DecodeResponse splits a response frame. An error frame is returned as a
// *RemoteError.
func DecodeResponse(frame []byte) ([]byte, error) {
	if len(frame) == 0 {
		return nil, fmt.Errorf("empty response frame")
	}
	switch frame[0] {
	case StatusOK:
		return frame[1:], nil
	case StatusError:
		var re RemoteError
		if err := json.Unmarshal(frame[1:], &re); err != nil {
			return nil, fmt.Errorf("malformed error frame: %w", err)
		}
		return nil, &re
	}
	return nil, fmt.Errorf("unknown response status %d", frame[0])
}
