package dispatch_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/facet/dispatch"
	"github.com/reglet-dev/facet/domain/entities"
	"github.com/reglet-dev/facet/registry"
)

func seeded() *registry.Registry {
	return registry.MustNew(registry.WithSeed([]entities.ModuleEntry{
		{ID: "disk", Capabilities: []entities.CapabilityID{capRead}},
	}))
}

func TestMiddleware_FIFOOrder(t *testing.T) {
	var order []string

	record := func(name string) dispatch.Middleware {
		return func(next dispatch.Handler) dispatch.Handler {
			return func(ctx context.Context, payload []byte) ([]byte, error) {
				order = append(order, name+"-before")
				resp, err := next(ctx, payload)
				order = append(order, name+"-after")
				return resp, err
			}
		}
	}

	router, err := dispatch.NewRouter(seeded(),
		dispatch.WithMiddleware(record("first"), record("second")),
		dispatch.WithHandler("disk", func(context.Context, []byte) ([]byte, error) {
			order = append(order, "handler")
			return nil, nil
		}),
	)
	require.NoError(t, err)

	_, err = router.Invoke(context.Background(), capRead, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"first-before",
		"second-before",
		"handler",
		"second-after",
		"first-after",
	}, order)
}

func TestPanicRecoveryMiddleware(t *testing.T) {
	router, err := dispatch.NewRouter(seeded(),
		dispatch.WithMiddleware(dispatch.PanicRecoveryMiddleware()),
		dispatch.WithHandler("disk", func(context.Context, []byte) ([]byte, error) {
			panic("disk on fire")
		}),
	)
	require.NoError(t, err)

	resp, err := router.Invoke(context.Background(), capRead, nil)
	assert.Nil(t, resp)

	var panicErr *dispatch.PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "disk on fire", panicErr.Value)
	assert.Equal(t, "panic: disk on fire", err.Error())
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	router, err := dispatch.NewRouter(seeded(),
		dispatch.WithMiddleware(dispatch.LoggingMiddleware(logger)),
		dispatch.WithHandler("disk", func(context.Context, []byte) ([]byte, error) {
			return nil, assert.AnError
		}),
	)
	require.NoError(t, err)

	_, err = router.Invoke(context.Background(), capRead, []byte("abc"))
	assert.ErrorIs(t, err, assert.AnError)

	out := buf.String()
	assert.Contains(t, out, "invocation failed")
	assert.Contains(t, out, "module=disk")
	assert.Contains(t, out, "capability="+capRead.String())
	assert.Contains(t, out, "bytes=3")
}

func TestCallContext_Values(t *testing.T) {
	cc := dispatch.NewCallContext(context.Background(), capRead, "disk")

	_, ok := cc.GetValue("k")
	assert.False(t, ok)

	cc.SetValue("k", 42)
	v, ok := cc.GetValue("k")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = dispatch.CallContextFrom(context.Background())
	assert.False(t, ok)
}
