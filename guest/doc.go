// Package guest is linked into WebAssembly modules (GOOS=wasip1) that call
// capabilities through the host bridge.
//
// Importing the package exports "allocate" and "deallocate", which the host
// uses to hand responses back to the module. Invoke sends a request to the
// module currently owning a capability:
//
//	resp, err := guest.Invoke(storeCap, []byte(`{"key":"a"}`))
//
// Error frames come back as *RemoteError values carrying the host's error
// kind, status code and, for registry errors, an entities.ErrorDetail.
package guest
