// Package template renders manifests as text/template documents before
// they are parsed. Caller variables are reachable as {{ .vars.name }}.
package template

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"github.com/reglet-dev/facet/domain/entities"
	"github.com/reglet-dev/facet/domain/ports"
)

// templateConfig holds configuration for the GoTemplateEngine.
type templateConfig struct {
	strict bool // Fail on missing keys
	funcs  template.FuncMap
}

func defaultTemplateConfig() templateConfig {
	return templateConfig{
		strict: true, // Secure default
		funcs:  template.FuncMap{},
	}
}

// TemplateOption configures a GoTemplateEngine.
type TemplateOption func(*templateConfig)

// WithStrict enables/disables strict mode for missing keys.
// When enabled (default), template rendering fails if a referenced key is missing.
func WithStrict(enabled bool) TemplateOption {
	return func(c *templateConfig) {
		c.strict = enabled
	}
}

// WithFuncs adds template functions. They override the built-ins on name
// collision.
func WithFuncs(funcs template.FuncMap) TemplateOption {
	return func(c *templateConfig) {
		for name, fn := range funcs {
			c.funcs[name] = fn
		}
	}
}

// GoTemplateEngine implements TemplateEngine using standard text/template.
type GoTemplateEngine struct {
	config templateConfig
}

// NewGoTemplateEngine creates a new GoTemplateEngine.
func NewGoTemplateEngine(opts ...TemplateOption) ports.TemplateEngine {
	cfg := defaultTemplateConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &GoTemplateEngine{config: cfg}
}

// Render processes the raw manifest bytes with the provided variables.
func (e *GoTemplateEngine) Render(raw []byte, vars map[string]any) ([]byte, error) {
	tmpl := template.New("manifest").Funcs(builtins()).Funcs(e.config.funcs)

	// Use Option("missingkey=error") to fail fast if a key is missing.
	if e.config.strict {
		tmpl = tmpl.Option("missingkey=error")
	}

	tmpl, err := tmpl.Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest template: %w", err)
	}

	if vars == nil {
		vars = map[string]any{}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{"vars": vars}); err != nil {
		return nil, fmt.Errorf("failed to execute manifest template: %w", err)
	}

	return buf.Bytes(), nil
}

func builtins() template.FuncMap {
	return template.FuncMap{
		// capid derives a capability id from a signature the same way
		// wasm export enumeration does.
		"capid": func(signature string) string {
			return entities.DeriveCapabilityID(signature).String()
		},
		"env": os.Getenv,
		"default": func(def, v any) any {
			if v == nil || v == "" {
				return def
			}
			return v
		},
	}
}
