// Package wazero connects WebAssembly modules to the capability registry
// through the wazero runtime.
//
// It provides two adapters:
//
//   - ExportSource, a ports.CapabilitySource that compiles a .wasm module
//     (without instantiating it) and derives one capability per selected
//     exported function.
//   - RegisterRouter, which exposes a dispatch.Router to guests as a single
//     host function, so guests can invoke capabilities by id.
//
// # Capability ids
//
// An export's id is the first four bytes of the SHA-256 of its canonical
// signature, for example:
//
//	pay_card(i32,i64)->(i32)
//
// # Guest calling convention
//
// The host module (default "facet_host") exports:
//
//	invoke(capability i32, request i64) -> i64
//
// The request is a packed pointer and length (upper 32 bits pointer, lower
// 32 bits length) into guest memory. The response is written into memory
// obtained from the guest's "allocate" export and returned packed the same
// way. Its first byte is a status: 0 followed by the handler response, or 1
// followed by a JSON dispatch.ErrorResponse.
package wazero
