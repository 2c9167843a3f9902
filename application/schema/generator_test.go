package schema

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSchema_ModuleList(t *testing.T) {
	type module struct {
		ID   string   `json:"id" jsonschema:"required"`
		Caps []string `json:"capabilities,omitempty"`
	}
	type doc struct {
		Modules []module `json:"modules"`
	}

	raw, err := GenerateSchema(doc{})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, name := range []string{"modules", "id", "capabilities"} {
		assert.Contains(t, string(raw), `"`+name+`"`)
	}
}

func TestManifestSchema(t *testing.T) {
	raw, err := ManifestSchema()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, ManifestSchemaID, decoded["$id"])

	properties, ok := decoded["properties"].(map[string]any)
	require.True(t, ok, "properties should be a map")
	assert.Subset(t, keys(properties), []string{"version", "self", "modules", "filters"})

	required, ok := decoded["required"].([]any)
	require.True(t, ok, "required should be an array")
	assert.ElementsMatch(t, []any{"version", "modules"}, required)

	// module specs and filter entries
	assert.Equal(t, 2, strings.Count(string(raw), `"pattern": "^(0[xX])?[0-9a-fA-F]{8}$"`))
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
