package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/facet/application/validation"
	"github.com/reglet-dev/facet/domain/entities"
)

func validManifest() *entities.Manifest {
	return &entities.Manifest{
		Version: "1.2.0",
		Self:    "router",
		Modules: []entities.ModuleSpec{
			{ID: "storage", Capabilities: []string{"0x1a2b3c4d", "deadbeef"}},
			{ID: "payments", Wasm: "./payments.wasm", Exports: &entities.ExportSelector{Include: []string{"pay_*"}}},
		},
		Filters: entities.ManifestFilters{
			Replace: entities.ManifestFilterSet{
				Only: []entities.ManifestFilter{{Module: "*", Capabilities: []string{"0x1a2b3c4d"}}},
			},
		},
	}
}

func fields(res *entities.ValidationResult) []string {
	out := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		out = append(out, e.Field)
	}
	return out
}

func TestManifestValidator_Valid(t *testing.T) {
	v, err := validation.NewManifestValidator()
	require.NoError(t, err)

	res, err := v.Validate(validManifest())
	require.NoError(t, err)
	assert.True(t, res.Valid, "%v", res.Errors)
	assert.Empty(t, res.Errors)
}

func TestManifestValidator_NoModules(t *testing.T) {
	v, err := validation.NewManifestValidator()
	require.NoError(t, err)

	res, err := v.Validate(&entities.Manifest{Version: "1.0.0"})
	require.NoError(t, err)
	assert.True(t, res.Valid, "%v", res.Errors)
}

func TestManifestValidator_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *entities.Manifest)
		field  string
	}{
		{
			name:   "malformed capability",
			mutate: func(m *entities.Manifest) { m.Modules[0].Capabilities[1] = "0xnothex!" },
			field:  "modules[0].capabilities[1]",
		},
		{
			name:   "zero capability",
			mutate: func(m *entities.Manifest) { m.Modules[0].Capabilities[0] = "0x00000000" },
			field:  "modules[0].capabilities[0]",
		},
		{
			name:   "missing module id",
			mutate: func(m *entities.Manifest) { m.Modules[0].ID = "" },
			field:  "modules[0].id",
		},
		{
			name:   "reserved module id",
			mutate: func(m *entities.Manifest) { m.Modules[1].ID = "*" },
			field:  "modules[1].id",
		},
		{
			name:   "neither capabilities nor wasm",
			mutate: func(m *entities.Manifest) { m.Modules[1].Wasm = "" },
			field:  "modules[1].capabilities",
		},
		{
			name:   "null filter module",
			mutate: func(m *entities.Manifest) { m.Filters.Replace.Only[0].Module = "<null>" },
			field:  "filters.replace.only[0].module",
		},
		{
			name:   "empty filter capabilities",
			mutate: func(m *entities.Manifest) { m.Filters.Replace.Only[0].Capabilities = []string{} },
			field:  "filters.replace.only[0].capabilities",
		},
		{
			name:   "version not semver",
			mutate: func(m *entities.Manifest) { m.Version = "one" },
			field:  "version",
		},
		{
			name:   "unsupported major version",
			mutate: func(m *entities.Manifest) { m.Version = "2.0.0" },
			field:  "version",
		},
		{
			name:   "duplicate module",
			mutate: func(m *entities.Manifest) { m.Modules[1] = m.Modules[0] },
			field:  "modules[1].id",
		},
		{
			name:   "self declared as module",
			mutate: func(m *entities.Manifest) { m.Modules[0].ID = "router" },
			field:  "modules[0].id",
		},
	}

	v, err := validation.NewManifestValidator()
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validManifest()
			tt.mutate(m)

			res, err := v.Validate(m)
			require.NoError(t, err)
			assert.False(t, res.Valid)
			assert.Contains(t, fields(res), tt.field)
		})
	}
}

func TestManifestValidator_VersionConstraint(t *testing.T) {
	v, err := validation.NewManifestValidator(validation.WithVersionConstraint(">=1.2 <1.3"))
	require.NoError(t, err)

	m := validManifest()
	res, err := v.Validate(m)
	require.NoError(t, err)
	assert.True(t, res.Valid)

	m.Version = "1.3.0"
	res, err = v.Validate(m)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors[0].Message, "not supported")

	_, err = validation.NewManifestValidator(validation.WithVersionConstraint("not a range"))
	assert.Error(t, err)
}

func TestManifestValidator_NilManifest(t *testing.T) {
	v, err := validation.NewManifestValidator()
	require.NoError(t, err)

	_, err = v.Validate(nil)
	assert.Error(t, err)
}

func TestValidateStruct(t *testing.T) {
	type target struct {
		Cap    string `json:"cap" validate:"capid"`
		Module string `json:"module" validate:"moduleid"`
	}

	assert.NoError(t, validation.ValidateStruct(&target{Cap: "0x01020304", Module: "m"}))

	err := validation.ValidateStruct(&target{Cap: "0x0102", Module: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cap")
}
