// Package validation checks manifests in three passes: the generated JSON
// schema, struct tags, and the supported format version range.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/reglet-dev/facet/application/schema"
	"github.com/reglet-dev/facet/domain/entities"
	"github.com/reglet-dev/facet/domain/ports"
)

// DefaultVersionConstraint is the manifest format range this build reads.
const DefaultVersionConstraint = "^1"

// validatorConfig holds configuration for the ManifestValidator.
type validatorConfig struct {
	constraint string
}

func defaultValidatorConfig() validatorConfig {
	return validatorConfig{constraint: DefaultVersionConstraint}
}

// ValidatorOption configures a ManifestValidator.
type ValidatorOption func(*validatorConfig)

// WithVersionConstraint sets the accepted manifest version range.
func WithVersionConstraint(c string) ValidatorOption {
	return func(cfg *validatorConfig) {
		cfg.constraint = c
	}
}

// ManifestValidator implements ports.ManifestValidator.
type ManifestValidator struct {
	config     validatorConfig
	constraint *semver.Constraints

	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

var _ ports.ManifestValidator = (*ManifestValidator)(nil)

// NewManifestValidator creates a validator. It fails if the version
// constraint does not parse.
func NewManifestValidator(opts ...ValidatorOption) (*ManifestValidator, error) {
	cfg := defaultValidatorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	c, err := semver.NewConstraint(cfg.constraint)
	if err != nil {
		return nil, fmt.Errorf("invalid version constraint %q: %w", cfg.constraint, err)
	}
	return &ManifestValidator{config: cfg, constraint: c}, nil
}

// Validate runs every pass and collects their findings. The returned error
// is reserved for failures of the validator itself.
func (v *ManifestValidator) Validate(manifest *entities.Manifest) (*entities.ValidationResult, error) {
	if manifest == nil {
		return nil, errors.New("nil manifest")
	}
	result := &entities.ValidationResult{Valid: true}

	sch, err := v.compiled()
	if err != nil {
		return nil, err
	}

	obj, err := toJSONValue(manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare validation object: %w", err)
	}

	if err := sch.Validate(obj); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return nil, err
		}
		result.Errors = append(result.Errors, leafErrors(ve)...)
	}

	// Struct tags would repeat most schema findings; run them only on a
	// document that has the right shape.
	if len(result.Errors) == 0 {
		result.Errors = append(result.Errors, structErrors(manifest)...)
	}
	if len(result.Errors) == 0 {
		result.Errors = append(result.Errors, v.semanticErrors(manifest)...)
	}

	result.Valid = len(result.Errors) == 0
	return result, nil
}

func (v *ManifestValidator) compiled() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		raw, err := schema.ManifestSchema()
		if err != nil {
			v.err = err
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schema.ManifestSchemaID, bytes.NewReader(raw)); err != nil {
			v.err = fmt.Errorf("failed to add manifest schema: %w", err)
			return
		}
		v.schema, v.err = compiler.Compile(schema.ManifestSchemaID)
		if v.err != nil {
			v.err = fmt.Errorf("invalid manifest schema: %w", v.err)
		}
	})
	return v.schema, v.err
}

// semanticErrors checks what neither the schema nor struct tags express.
func (v *ManifestValidator) semanticErrors(m *entities.Manifest) []entities.ValidationError {
	var out []entities.ValidationError

	if ver, err := semver.NewVersion(m.Version); err != nil {
		out = append(out, entities.ValidationError{Field: "version", Message: err.Error()})
	} else if !v.constraint.Check(ver) {
		out = append(out, entities.ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("version %s is not supported (want %s)", m.Version, v.config.constraint),
		})
	}

	seen := make(map[string]int, len(m.Modules))
	for i, spec := range m.Modules {
		if j, dup := seen[spec.ID]; dup {
			out = append(out, entities.ValidationError{
				Field:   fmt.Sprintf("modules[%d].id", i),
				Message: fmt.Sprintf("module %q already declared at modules[%d]", spec.ID, j),
			})
			continue
		}
		seen[spec.ID] = i
		if m.Self != "" && spec.ID == m.Self {
			out = append(out, entities.ValidationError{
				Field:   fmt.Sprintf("modules[%d].id", i),
				Message: fmt.Sprintf("module %q is the registry self id and cannot be declared", spec.ID),
			})
		}
	}
	return out
}

// toJSONValue converts the manifest into the generic form the schema
// validator walks.
func toJSONValue(m *entities.Manifest) (interface{}, error) {
	doc := *m
	if doc.Modules == nil {
		doc.Modules = []entities.ModuleSpec{}
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var obj interface{}
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// leafErrors flattens a schema validation error tree into its causes.
func leafErrors(ve *jsonschema.ValidationError) []entities.ValidationError {
	if len(ve.Causes) == 0 {
		return []entities.ValidationError{{
			Field:   pointerToField(ve.InstanceLocation),
			Message: ve.Message,
		}}
	}
	var out []entities.ValidationError
	for _, c := range ve.Causes {
		out = append(out, leafErrors(c)...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// pointerToField turns "/modules/0/id" into "modules[0].id".
func pointerToField(ptr string) string {
	var b strings.Builder
	for _, tok := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		if tok == "" {
			continue
		}
		if isIndex(tok) {
			b.WriteString("[" + tok + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(tok)
	}
	return b.String()
}

func isIndex(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
