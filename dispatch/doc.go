// Package dispatch forwards capability invocations to the module that
// currently owns the capability.
//
// A Router resolves the owner through a ports.RegistryView on every call, so
// a committed REPLACE takes effect for the next invocation without
// rebuilding the router. Handlers are registered per module and wrapped by
// middleware at construction time:
//
//	router, err := dispatch.NewRouter(reg,
//	    dispatch.WithMiddleware(dispatch.PanicRecoveryMiddleware()),
//	    dispatch.WithHandler("storage", storageHandler),
//	)
//	resp, err := router.Invoke(ctx, capability, payload)
package dispatch
