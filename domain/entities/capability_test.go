package entities_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/facet/domain/entities"
)

func TestParseCapabilityID(t *testing.T) {
	tests := []struct {
		in      string
		want    entities.CapabilityID
		wantErr bool
	}{
		{in: "0x1a2b3c4d", want: entities.CapabilityID{0x1a, 0x2b, 0x3c, 0x4d}},
		{in: "0X1A2B3C4D", want: entities.CapabilityID{0x1a, 0x2b, 0x3c, 0x4d}},
		{in: "deadbeef", want: entities.CapabilityID{0xde, 0xad, 0xbe, 0xef}},
		{in: " 0x00000001 ", want: entities.CapabilityID{0, 0, 0, 1}},
		{in: "0x00000000", want: entities.CapabilityID{}},
		{in: "0x1a2b3c", wantErr: true},
		{in: "0x1a2b3c4d5e", wantErr: true},
		{in: "0xzzzzzzzz", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := entities.ParseCapabilityID(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCapabilityID_ZeroIsMalformed(t *testing.T) {
	var zero entities.CapabilityID
	assert.True(t, zero.IsZero())
	assert.False(t, entities.MustParseCapabilityID("0x00000001").IsZero())
}

func TestCapabilityID_TextRoundTrip(t *testing.T) {
	id := entities.DeriveCapabilityID("transfer(i32,i64)->(i32)")

	data, err := json.Marshal(map[string]entities.CapabilityID{"c": id})
	require.NoError(t, err)
	assert.JSONEq(t, `{"c":"`+id.String()+`"}`, string(data))

	var back map[string]entities.CapabilityID
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, id, back["c"])

	assert.Error(t, json.Unmarshal([]byte(`{"c":"0x12"}`), &back))
}

func TestCapabilityIDFromBytes(t *testing.T) {
	id, err := entities.CapabilityIDFromBytes([]byte{1, 2, 3, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, "0x01020304", id.String())

	_, err = entities.CapabilityIDFromBytes([]byte{1, 2})
	assert.Error(t, err)
}

func TestDeriveCapabilityID(t *testing.T) {
	a := entities.DeriveCapabilityID("pay(i32)->(i32)")
	assert.Equal(t, a, entities.DeriveCapabilityID("pay(i32)->(i32)"))
	assert.NotEqual(t, a, entities.DeriveCapabilityID("pay(i64)->(i32)"))
	// First four bytes of sha256("").
	assert.Equal(t, "0xe3b0c442", entities.DeriveCapabilityID("").String())
}

func TestCapabilityID_Compare(t *testing.T) {
	lo := entities.MustParseCapabilityID("0x00000001")
	hi := entities.MustParseCapabilityID("0x01000000")
	assert.Equal(t, -1, lo.Compare(hi))
	assert.Equal(t, 1, hi.Compare(lo))
	assert.Equal(t, 0, lo.Compare(lo))
}

func TestCapabilitySetHelpers(t *testing.T) {
	a := entities.DeriveCapabilityID("a")
	b := entities.DeriveCapabilityID("b")
	c := entities.DeriveCapabilityID("c")

	assert.Nil(t, entities.UniqueCapabilities(nil))
	assert.Equal(t, []entities.CapabilityID{a, b}, entities.UniqueCapabilities([]entities.CapabilityID{a, b, a, b}))
	assert.Equal(t, []entities.CapabilityID{a, b, c}, entities.UnionCapabilities([]entities.CapabilityID{a, b}, []entities.CapabilityID{b, c, a}))
	assert.True(t, entities.ContainsCapability([]entities.CapabilityID{a, b}, b))
	assert.False(t, entities.ContainsCapability([]entities.CapabilityID{a, b}, c))
}

func FuzzParseCapabilityID(f *testing.F) {
	f.Add("0x1a2b3c4d")
	f.Add("deadbeef")
	f.Add("0x")
	f.Add("0x1a2b3c4d5")

	f.Fuzz(func(t *testing.T, s string) {
		id, err := entities.ParseCapabilityID(s)
		if err != nil {
			return
		}
		again, err := entities.ParseCapabilityID(id.String())
		if err != nil {
			t.Fatalf("String() of %q does not parse: %v", s, err)
		}
		if again != id {
			t.Fatalf("round trip of %q: %s != %s", s, again, id)
		}
	})
}
