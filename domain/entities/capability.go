package entities

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// CapabilityIDSize is the width in bytes of a CapabilityID.
const CapabilityIDSize = 4

// CapabilityID is an opaque, fixed-width identifier for one externally
// invocable capability. The zero value is malformed and can never be bound.
type CapabilityID [CapabilityIDSize]byte

// ParseCapabilityID parses the text form "0x" followed by eight hex digits.
// The "0x" prefix is optional.
func ParseCapabilityID(s string) (CapabilityID, error) {
	var id CapabilityID
	raw := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if len(raw) != hex.EncodedLen(CapabilityIDSize) {
		return id, fmt.Errorf("capability id %q: want %d hex digits", s, hex.EncodedLen(CapabilityIDSize))
	}
	if _, err := hex.Decode(id[:], []byte(raw)); err != nil {
		return id, fmt.Errorf("capability id %q: %w", s, err)
	}
	return id, nil
}

// MustParseCapabilityID is like ParseCapabilityID but panics on error.
func MustParseCapabilityID(s string) CapabilityID {
	id, err := ParseCapabilityID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// CapabilityIDFromBytes copies the first CapabilityIDSize bytes of b.
func CapabilityIDFromBytes(b []byte) (CapabilityID, error) {
	var id CapabilityID
	if len(b) < CapabilityIDSize {
		return id, fmt.Errorf("capability id needs %d bytes, got %d", CapabilityIDSize, len(b))
	}
	copy(id[:], b[:CapabilityIDSize])
	return id, nil
}

// DeriveCapabilityID hashes a canonical signature such as
// "transfer(i32,i64)->(i32)" into an id: the first four bytes of its SHA-256.
func DeriveCapabilityID(signature string) CapabilityID {
	var id CapabilityID
	sum := sha256.Sum256([]byte(signature))
	copy(id[:], sum[:CapabilityIDSize])
	return id
}

// IsZero reports whether the id is the malformed all-zero value.
func (c CapabilityID) IsZero() bool {
	return c == CapabilityID{}
}

// Compare returns -1, 0 or +1 ordering c against other bytewise.
func (c CapabilityID) Compare(other CapabilityID) int {
	return bytes.Compare(c[:], other[:])
}

// String returns the "0x"-prefixed hex form.
func (c CapabilityID) String() string {
	return "0x" + hex.EncodeToString(c[:])
}

// MarshalText implements encoding.TextMarshaler.
func (c CapabilityID) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CapabilityID) UnmarshalText(text []byte) error {
	id, err := ParseCapabilityID(string(text))
	if err != nil {
		return err
	}
	*c = id
	return nil
}

// UniqueCapabilities returns ids with duplicates removed, keeping the first
// occurrence of each.
func UniqueCapabilities(ids []CapabilityID) []CapabilityID {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[CapabilityID]struct{}, len(ids))
	out := make([]CapabilityID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// UnionCapabilities appends to dst every id of src not already in dst.
func UnionCapabilities(dst, src []CapabilityID) []CapabilityID {
	seen := make(map[CapabilityID]struct{}, len(dst)+len(src))
	for _, id := range dst {
		seen[id] = struct{}{}
	}
	for _, id := range src {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		dst = append(dst, id)
	}
	return dst
}

// ContainsCapability reports whether ids contains id.
func ContainsCapability(ids []CapabilityID, id CapabilityID) bool {
	for _, c := range ids {
		if c == id {
			return true
		}
	}
	return false
}
