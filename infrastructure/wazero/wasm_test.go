package wazero

import "bytes"

// Helpers assembling minimal WebAssembly binaries for tests.

const (
	i32 byte = 0x7f
	i64 byte = 0x7e
)

type testFunc struct {
	name    string
	params  []byte
	results []byte
}

func uleb(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func sleb(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		done := (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0)
		if !done {
			b |= 0x80
		}
		out = append(out, b)
		if done {
			return out
		}
	}
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func vec(items ...[]byte) []byte {
	return concat(uleb(uint64(len(items))), concat(items...))
}

func wasmName(s string) []byte {
	return concat(uleb(uint64(len(s))), []byte(s))
}

func section(id byte, payload []byte) []byte {
	return concat([]byte{id}, uleb(uint64(len(payload))), payload)
}

func funcType(params, results []byte) []byte {
	return concat([]byte{0x60}, uleb(uint64(len(params))), params, uleb(uint64(len(results))), results)
}

func body(instrs ...byte) []byte {
	content := concat([]byte{0x00}, instrs, []byte{0x0b})
	return concat(uleb(uint64(len(content))), content)
}

var header = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// exportsModule builds a module exporting fns. Each function returns zeros
// of its result types.
func exportsModule(fns ...testFunc) []byte {
	var types, funcs, exports, code [][]byte
	for i, f := range fns {
		types = append(types, funcType(f.params, f.results))
		funcs = append(funcs, uleb(uint64(i)))
		exports = append(exports, concat(wasmName(f.name), []byte{0x00}, uleb(uint64(i))))

		var instrs []byte
		for _, r := range f.results {
			switch r {
			case i32:
				instrs = append(instrs, 0x41, 0x00)
			case i64:
				instrs = append(instrs, 0x42, 0x00)
			}
		}
		code = append(code, body(instrs...))
	}
	return concat(header,
		section(1, vec(types...)),
		section(3, vec(funcs...)),
		section(7, vec(exports...)),
		section(10, vec(code...)),
	)
}

// guestModule builds a module importing host.invoke and exporting "call",
// which invokes capability with payload stored at offset 16. Its allocate
// export always returns offset 1024.
func guestModule(host string, capability uint32, payload []byte) []byte {
	const payloadPtr = 16
	packed := int64(payloadPtr)<<32 | int64(len(payload))

	callInstrs := concat(
		[]byte{0x41}, sleb(int64(int32(capability))),
		[]byte{0x42}, sleb(packed),
		[]byte{0x10, 0x00},
	)

	return concat(header,
		section(1, vec(
			funcType([]byte{i32, i64}, []byte{i64}),
			funcType([]byte{i32}, []byte{i32}),
			funcType(nil, []byte{i64}),
		)),
		section(2, vec(concat(wasmName(host), wasmName("invoke"), []byte{0x00}, uleb(0)))),
		section(3, vec(uleb(1), uleb(2))),
		section(5, vec([]byte{0x00, 0x01})),
		section(7, vec(
			concat(wasmName("memory"), []byte{0x02}, uleb(0)),
			concat(wasmName("allocate"), []byte{0x00}, uleb(1)),
			concat(wasmName("call"), []byte{0x00}, uleb(2)),
		)),
		section(10, vec(
			body(concat([]byte{0x41}, sleb(1024))...),
			body(callInstrs...),
		)),
		section(11, vec(concat(
			[]byte{0x00, 0x41}, sleb(payloadPtr), []byte{0x0b},
			uleb(uint64(len(payload))), payload,
		))),
	)
}
