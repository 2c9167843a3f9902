package wazero

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/reglet-dev/facet/dispatch"
	"github.com/reglet-dev/facet/internal/abi"
)

// DefaultMaxRequestSize limits request payloads read from guest memory.
const DefaultMaxRequestSize = 1 << 20

// bridgeConfig holds configuration for RegisterRouter.
type bridgeConfig struct {
	moduleName     string
	maxRequestSize uint32
	logger         *slog.Logger
}

func defaultBridgeConfig() bridgeConfig {
	return bridgeConfig{
		moduleName:     abi.HostModule,
		maxRequestSize: DefaultMaxRequestSize,
		logger:         slog.Default(),
	}
}

// BridgeOption configures the host bridge.
type BridgeOption func(*bridgeConfig)

// WithModuleName sets the host module name (default: "facet_host").
func WithModuleName(name string) BridgeOption {
	return func(c *bridgeConfig) {
		c.moduleName = name
	}
}

// WithMaxRequestSize sets the maximum request size from guest memory.
func WithMaxRequestSize(size uint32) BridgeOption {
	return func(c *bridgeConfig) {
		c.maxRequestSize = size
	}
}

// WithBridgeLogger sets the logger used for failed calls.
func WithBridgeLogger(l *slog.Logger) BridgeOption {
	return func(c *bridgeConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// RegisterRouter instantiates a host module exporting "invoke", which
// forwards guest calls to router.
//
// Example:
//
//	router, _ := dispatch.NewRouter(reg, dispatch.WithHandler("storage", h))
//	err := wazero.RegisterRouter(ctx, runtime, router)
func RegisterRouter(ctx context.Context, runtime wazero.Runtime, router *dispatch.Router, opts ...BridgeOption) error {
	if router == nil {
		return fmt.Errorf("register router: router is nil")
	}
	cfg := defaultBridgeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.logger.With("component", "wasm-bridge")

	_, err := runtime.NewHostModuleBuilder(cfg.moduleName).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			handleInvoke(ctx, mod, stack, router, cfg.maxRequestSize, log)
		}), []api.ValueType{api.ValueTypeI32, api.ValueTypeI64}, []api.ValueType{api.ValueTypeI64}).
		Export(abi.InvokeFunc).
		Instantiate(ctx)
	if err != nil {
		return fmt.Errorf("instantiating host module %s: %w", cfg.moduleName, err)
	}
	return nil
}

// handleInvoke reads the request from guest memory, invokes the router, and
// writes the response.
func handleInvoke(ctx context.Context, mod api.Module, stack []uint64, router *dispatch.Router, maxRequestSize uint32, log *slog.Logger) {
	capability := abi.CapabilityFromWord(api.DecodeU32(stack[0]))
	ptr, length := abi.UnpackPtrLen(stack[1])
	caller := callerName(ctx, mod)

	if length > maxRequestSize {
		errMsg := fmt.Sprintf("request size %d exceeds maximum %d bytes", length, maxRequestSize)
		log.ErrorContext(ctx, errMsg, "caller", caller, "capability", capability)
		stack[0] = writeError(ctx, mod, dispatch.NewValidationError(errMsg), log)
		return
	}

	mem := mod.Memory()
	if mem == nil {
		log.ErrorContext(ctx, "guest module has no memory", "caller", caller)
		stack[0] = 0
		return
	}
	request, ok := mem.Read(ptr, length)
	if !ok {
		errMsg := "failed to read request from guest memory"
		log.ErrorContext(ctx, errMsg, "caller", caller, "capability", capability)
		stack[0] = writeError(ctx, mod, dispatch.NewValidationError(errMsg), log)
		return
	}
	// Memory.Read returns a view of guest memory.
	request = append([]byte(nil), request...)

	resp, err := router.Invoke(WithCaller(ctx, caller), capability, request)
	if err != nil {
		log.WarnContext(ctx, "capability invocation failed", "caller", caller, "capability", capability, "error", err)
		stack[0] = writeError(ctx, mod, dispatch.NewErrorResponse(err), log)
		return
	}

	stack[0] = writeResponse(ctx, mod, abi.EncodeOK(resp), log)
}

func writeError(ctx context.Context, mod api.Module, resp dispatch.ErrorResponse, log *slog.Logger) uint64 {
	return writeResponse(ctx, mod, abi.EncodeError(resp.ToJSON()), log)
}

// writeResponse allocates memory in the guest and writes the response bytes.
// Returns packed ptr+len or 0 on failure.
func writeResponse(ctx context.Context, mod api.Module, data []byte, log *slog.Logger) uint64 {
	allocateFn := mod.ExportedFunction(abi.AllocateFunc)
	if allocateFn == nil {
		log.ErrorContext(ctx, "guest module missing allocate export")
		return 0
	}

	results, err := allocateFn.Call(ctx, uint64(len(data)))
	if err != nil {
		log.ErrorContext(ctx, "failed to call guest allocate", "error", err)
		return 0
	}
	ptr := api.DecodeU32(results[0])

	mem := mod.Memory()
	if mem == nil || !mem.Write(ptr, data) {
		log.ErrorContext(ctx, "failed to write response to guest memory")
		return 0
	}

	return abi.PackPtrLen(ptr, uint32(len(data))) //nolint:gosec // G115: bounded by guest memory
}
