//go:build wasip1

package guest

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/facet/internal/abi"
)

func TestAllocate_Tracking(t *testing.T) {
	FreeAll()
	defer FreeAll()

	assert.Zero(t, allocate(0))

	ptr := allocate(128)
	require.NotZero(t, ptr)
	assert.Equal(t, 128, Allocated())

	deallocate(ptr, 1)
	assert.Zero(t, Allocated(), "accounting uses the pinned length")

	deallocate(ptr, 128)
	assert.Zero(t, Allocated(), "double free is ignored")
}

func TestAllocate_Limit(t *testing.T) {
	FreeAll()
	defer FreeAll()

	assert.Panics(t, func() { allocate(MaxTotalAllocations + 1) })

	_, err := pin(make([]byte, MaxTotalAllocations+1))
	assert.ErrorContains(t, err, "allocation limit exceeded")
}

func TestPinTake(t *testing.T) {
	FreeAll()
	defer FreeAll()

	packed, err := pin([]byte("payload"))
	require.NoError(t, err)
	_, length := abi.UnpackPtrLen(packed)
	assert.Equal(t, uint32(7), length)
	assert.Equal(t, 7, Allocated())

	got, err := take(packed)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
	assert.Zero(t, Allocated())

	packed, err = pin(nil)
	require.NoError(t, err)
	assert.Zero(t, packed)

	got, err = take(0)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTake_HostWrittenResponse(t *testing.T) {
	FreeAll()
	defer FreeAll()

	// The host allocates 16 bytes and reports a shorter response.
	ptr := allocate(16)
	frame := abi.EncodeOK([]byte("ok"))
	buf := pins.bufs[ptr]
	copy(buf, frame)

	got, err := take(abi.PackPtrLen(ptr, uint32(len(frame))))
	require.NoError(t, err)
	assert.Equal(t, frame, got)
	assert.Zero(t, Allocated())
}

func TestTake_Rejects(t *testing.T) {
	FreeAll()
	defer FreeAll()

	_, err := take(abi.PackPtrLen(0xdead, 4))
	assert.ErrorContains(t, err, "was not allocated by this module")

	ptr := allocate(4)
	_, err = take(abi.PackPtrLen(ptr, 8))
	assert.ErrorContains(t, err, "exceeds its 4 byte buffer")
}

func TestAllocate_Concurrent(t *testing.T) {
	FreeAll()
	defer FreeAll()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			deallocate(allocate(32), 32)
		}()
	}
	wg.Wait()
	assert.Zero(t, Allocated())
}
