package engine

import (
	"fmt"
	"os"
	"strings"

	apptemplate "github.com/reglet-dev/facet/application/template"
	"github.com/reglet-dev/facet/application/validation"
	"github.com/reglet-dev/facet/domain/entities"
	"github.com/reglet-dev/facet/domain/errors"
	"github.com/reglet-dev/facet/domain/ports"
	"github.com/reglet-dev/facet/infrastructure/parser"
)

// loaderConfig holds configuration for the Loader.
type loaderConfig struct {
	templateEngine  ports.TemplateEngine
	parser          ports.ManifestParser
	validator       ports.ManifestValidator
	strictTemplates bool // Fail on missing template keys
}

func defaultLoaderConfig() loaderConfig {
	return loaderConfig{
		parser:          parser.NewYamlManifestParser(),
		strictTemplates: true,
	}
}

// Loader orchestrates the manifest loading pipeline:
// render, parse, validate.
type Loader struct {
	config loaderConfig
}

// LoaderOption configures the Loader.
type LoaderOption func(*loaderConfig)

// WithParser sets a custom manifest parser.
func WithParser(p ports.ManifestParser) LoaderOption {
	return func(c *loaderConfig) {
		c.parser = p
	}
}

// WithTemplateEngine sets a template engine.
func WithTemplateEngine(t ports.TemplateEngine) LoaderOption {
	return func(c *loaderConfig) {
		c.templateEngine = t
	}
}

// WithValidator sets the manifest validator.
func WithValidator(v ports.ManifestValidator) LoaderOption {
	return func(c *loaderConfig) {
		c.validator = v
	}
}

// WithStrictTemplates enables/disables strict template mode.
// When enabled (default), template rendering fails if a referenced key is missing.
func WithStrictTemplates(enabled bool) LoaderOption {
	return func(c *loaderConfig) {
		c.strictTemplates = enabled
	}
}

// NewLoader creates a new Loader with defaults.
func NewLoader(opts ...LoaderOption) (*Loader, error) {
	cfg := defaultLoaderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.templateEngine == nil {
		cfg.templateEngine = apptemplate.NewGoTemplateEngine(
			apptemplate.WithStrict(cfg.strictTemplates),
		)
	}
	if cfg.validator == nil {
		v, err := validation.NewManifestValidator()
		if err != nil {
			return nil, err
		}
		cfg.validator = v
	}
	return &Loader{config: cfg}, nil
}

// LoadManifest renders, parses, and validates a manifest. Every failure is
// a *errors.ManifestError.
func (l *Loader) LoadManifest(raw []byte, vars map[string]any) (*entities.Manifest, error) {
	data, err := l.config.templateEngine.Render(raw, vars)
	if err != nil {
		return nil, &errors.ManifestError{Err: fmt.Errorf("failed to render manifest: %w", err)}
	}

	manifest, err := l.config.parser.Parse(data)
	if err != nil {
		return nil, &errors.ManifestError{Err: fmt.Errorf("failed to parse manifest: %w", err)}
	}

	res, err := l.config.validator.Validate(manifest)
	if err != nil {
		return nil, &errors.ManifestError{Err: fmt.Errorf("validation error: %w", err)}
	}
	if !res.Valid {
		lines := make([]string, 0, len(res.Errors))
		for _, e := range res.Errors {
			lines = append(lines, fmt.Sprintf("- %s: %s", e.Field, e.Message))
		}
		return nil, &errors.ManifestError{
			Field: res.Errors[0].Field,
			Err:   fmt.Errorf("%d problem(s):\n%s", len(res.Errors), strings.Join(lines, "\n")),
		}
	}

	return manifest, nil
}

// LoadFile reads path and loads it with LoadManifest.
func (l *Loader) LoadFile(path string, vars map[string]any) (*entities.Manifest, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // G304: operator-supplied manifest path
	if err != nil {
		return nil, &errors.ManifestError{Err: err}
	}
	return l.LoadManifest(raw, vars)
}
