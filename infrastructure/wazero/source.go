package wazero

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/reglet-dev/facet/domain/entities"
	"github.com/reglet-dev/facet/domain/errors"
	"github.com/reglet-dev/facet/domain/ports"
	"github.com/reglet-dev/facet/internal/abi"
)

// DefaultExcludes are export patterns never turned into capabilities:
// underscore-prefixed entry points in any namespace and the memory
// management exports of the calling convention.
var DefaultExcludes = []string{"**/_*", abi.AllocateFunc, abi.DeallocateFunc}

// defaultInclude selects every export, including namespaced names such as
// "storage/get".
const defaultInclude = "**"

// Export is one exported function selected from a wasm module.
type Export struct {
	Name       string
	Signature  string
	Capability entities.CapabilityID
}

// sourceConfig holds configuration for the ExportSource.
type sourceConfig struct {
	baseDir  string
	logger   *slog.Logger
	excludes []string
	runtime  wazero.RuntimeConfig
}

func defaultSourceConfig() sourceConfig {
	return sourceConfig{
		logger:   slog.Default(),
		excludes: DefaultExcludes,
		runtime:  wazero.NewRuntimeConfigInterpreter(),
	}
}

// SourceOption configures an ExportSource.
type SourceOption func(*sourceConfig)

// WithBaseDir resolves relative wasm paths against dir.
func WithBaseDir(dir string) SourceOption {
	return func(c *sourceConfig) {
		c.baseDir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) SourceOption {
	return func(c *sourceConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDefaultExcludes replaces DefaultExcludes.
func WithDefaultExcludes(patterns ...string) SourceOption {
	return func(c *sourceConfig) {
		c.excludes = patterns
	}
}

// WithRuntimeConfig sets the wazero runtime configuration used to compile
// modules. The default is the interpreter, which compiles fastest.
func WithRuntimeConfig(rc wazero.RuntimeConfig) SourceOption {
	return func(c *sourceConfig) {
		if rc != nil {
			c.runtime = rc
		}
	}
}

// ExportSource enumerates capabilities from the exports of wasm modules.
type ExportSource struct {
	config sourceConfig
	log    *slog.Logger
}

var _ ports.CapabilitySource = (*ExportSource)(nil)

// NewExportSource creates an ExportSource.
func NewExportSource(opts ...SourceOption) *ExportSource {
	cfg := defaultSourceConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &ExportSource{
		config: cfg,
		log:    cfg.logger.With("component", "wasm-source"),
	}
}

// Capabilities reads spec.Wasm and returns the ids of its selected exports,
// sorted bytewise.
func (s *ExportSource) Capabilities(ctx context.Context, spec entities.ModuleSpec) ([]entities.CapabilityID, error) {
	if spec.Wasm == "" {
		return nil, &errors.SourceError{Module: spec.ID, Err: fmt.Errorf("no wasm path")}
	}

	path := spec.Wasm
	if !filepath.IsAbs(path) && s.config.baseDir != "" {
		path = filepath.Join(s.config.baseDir, path)
	}
	bin, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the operator's manifest
	if err != nil {
		return nil, &errors.SourceError{Module: spec.ID, Err: err}
	}

	exports, err := s.Exports(ctx, bin, spec.Exports)
	if err != nil {
		return nil, &errors.SourceError{Module: spec.ID, Err: err}
	}

	caps := make([]entities.CapabilityID, 0, len(exports))
	for _, e := range exports {
		caps = append(caps, e.Capability)
	}
	caps = entities.UniqueCapabilities(caps)
	sort.Slice(caps, func(i, j int) bool { return caps[i].Compare(caps[j]) < 0 })

	s.log.DebugContext(ctx, "enumerated wasm exports", "module", spec.ID, "path", path, "capabilities", len(caps))
	return caps, nil
}

// Exports compiles bin and returns its selected function exports ordered by
// name.
//
// Selector patterns are doublestar globs, and "/" in an export name is a
// separator: "pay_*" matches "pay_card" but not "billing/pay_card", which
// needs "billing/*" or "**/pay_*".
func (s *ExportSource) Exports(ctx context.Context, bin []byte, sel *entities.ExportSelector) ([]Export, error) {
	include := []string{defaultInclude}
	var exclude []string
	exclude = append(exclude, s.config.excludes...)
	if sel != nil {
		if len(sel.Include) > 0 {
			include = sel.Include
		}
		exclude = append(exclude, sel.Exclude...)
	}
	for _, p := range append(append([]string(nil), include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid export pattern %q", p)
		}
	}

	runtime := wazero.NewRuntimeWithConfig(ctx, s.config.runtime)
	defer func() {
		if err := runtime.Close(ctx); err != nil {
			s.log.WarnContext(ctx, "failed to close wasm runtime", "error", err)
		}
	}()

	compiled, err := runtime.CompileModule(ctx, bin)
	if err != nil {
		return nil, fmt.Errorf("compiling wasm module: %w", err)
	}

	var out []Export
	for name, def := range compiled.ExportedFunctions() {
		if !matchAny(include, name) || matchAny(exclude, name) {
			continue
		}
		sig := Signature(name, def.ParamTypes(), def.ResultTypes())
		out = append(out, Export{
			Name:       name,
			Signature:  sig,
			Capability: entities.DeriveCapabilityID(sig),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Signature renders the canonical form name(params)->(results).
func Signature(name string, params, results []api.ValueType) string {
	var b strings.Builder
	b.WriteString(name)
	writeTypes(&b, params)
	b.WriteString("->")
	writeTypes(&b, results)
	return b.String()
}

func writeTypes(b *strings.Builder, types []api.ValueType) {
	b.WriteByte('(')
	for i, t := range types {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(api.ValueTypeName(t))
	}
	b.WriteByte(')')
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
