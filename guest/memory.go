//go:build wasip1

package guest

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/reglet-dev/facet/internal/abi"
)

// MaxTotalAllocations bounds the memory pinned on behalf of the host.
const MaxTotalAllocations = 64 * 1024 * 1024

// pinTable owns every buffer that crosses the boundary: requests pinned by
// Invoke and responses the host writes into memory it got from allocate.
// Reads go through the table, so a response is only accepted from a buffer
// this module handed out.
type pinTable struct {
	mu    sync.Mutex
	bufs  map[uint32][]byte
	total int
}

var pins = &pinTable{bufs: make(map[uint32][]byte)}

// reserve pins a new zeroed buffer of size bytes.
func (p *pinTable) reserve(size uint32) (uint32, []byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.total+int(size) > MaxTotalAllocations {
		return 0, nil, fmt.Errorf("guest: allocation limit exceeded (requested: %d bytes, pinned: %d bytes, limit: %d bytes)",
			size, p.total, MaxTotalAllocations)
	}
	buf := make([]byte, size)
	ptr := uint32(uintptr(unsafe.Pointer(&buf[0]))) //nolint:gosec // G103,G115: wasm32 linear memory address
	p.bufs[ptr] = buf
	p.total += int(size)
	return ptr, buf, nil
}

// release unpins the buffer at ptr and returns it. Unknown pointers yield
// nil.
func (p *pinTable) release(ptr uint32) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	buf, ok := p.bufs[ptr]
	if !ok {
		return nil
	}
	delete(p.bufs, ptr)
	p.total -= len(buf)
	return buf
}

func (p *pinTable) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	clear(p.bufs)
	p.total = 0
}

func (p *pinTable) pinned() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// allocate is called by the host to obtain memory for a response.
//
//go:wasmexport allocate
func allocate(size uint32) uint32 {
	if size == 0 {
		return 0
	}
	ptr, _, err := pins.reserve(size)
	if err != nil {
		panic(err.Error())
	}
	return ptr
}

// deallocate unpins a buffer. size is ignored: accounting uses the pinned
// length.
//
//go:wasmexport deallocate
func deallocate(ptr uint32, _ uint32) {
	pins.release(ptr)
}

// FreeAll unpins every tracked buffer.
func FreeAll() {
	pins.reset()
}

// Allocated returns the number of bytes currently pinned.
func Allocated() int {
	return pins.pinned()
}

// pin copies data into a pinned buffer and returns it packed.
func pin(data []byte) (uint64, error) {
	if len(data) == 0 {
		return 0, nil
	}
	size := uint32(len(data)) //nolint:gosec // G115: wasm32 slices fit in 32 bits
	ptr, buf, err := pins.reserve(size)
	if err != nil {
		return 0, err
	}
	copy(buf, data)
	return abi.PackPtrLen(ptr, size), nil
}

// take unpins a buffer the host filled and returns its first length bytes.
// A packed value naming memory this module never handed out is an error.
func take(packed uint64) ([]byte, error) {
	ptr, length := abi.UnpackPtrLen(packed)
	if ptr == 0 || length == 0 {
		return nil, nil
	}
	buf := pins.release(ptr)
	if buf == nil {
		return nil, fmt.Errorf("response at 0x%x was not allocated by this module", ptr)
	}
	if int(length) > len(buf) {
		return nil, fmt.Errorf("response length %d exceeds its %d byte buffer", length, len(buf))
	}
	return buf[:length], nil
}

// unpin frees a packed buffer created by pin.
func unpin(packed uint64) {
	ptr, _ := abi.UnpackPtrLen(packed)
	if ptr != 0 {
		pins.release(ptr)
	}
}
