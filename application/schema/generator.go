// Package schema generates the JSON schema of the manifest format.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/reglet-dev/facet/domain/entities"
)

// CapabilityPattern matches the text form of a capability id.
const CapabilityPattern = `^(0[xX])?[0-9a-fA-F]{8}$`

// ManifestSchemaID is the $id of the generated manifest schema.
const ManifestSchemaID = "https://reglet.dev/schemas/facet/manifest.json"

// GenerateSchema creates a JSON schema from a Go struct.
// It uses the `invopop/jsonschema` library to reflect on the struct
// and generate a standard JSON Schema (Draft 2020-12).
func GenerateSchema(v interface{}) ([]byte, error) {
	return marshal(reflect(v))
}

// ManifestSchema returns the schema manifests are validated against.
// Capability lists are constrained to the id text form.
func ManifestSchema() ([]byte, error) {
	s := reflect(&entities.Manifest{})
	s.ID = jsonschema.ID(ManifestSchemaID)
	s.Title = "facet manifest"

	constrainCapabilities(s)
	for _, def := range s.Definitions {
		constrainCapabilities(def)
	}
	return marshal(s)
}

func reflect(v interface{}) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true, // Expand struct definitions inline
	}
	return reflector.Reflect(v)
}

func marshal(s *jsonschema.Schema) ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return jsonBytes, nil
}

// constrainCapabilities sets the id pattern on the items of every
// "capabilities" string array property of s.
func constrainCapabilities(s *jsonschema.Schema) {
	if s == nil || s.Properties == nil {
		return
	}
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		prop := pair.Value
		if pair.Key != "capabilities" || prop == nil || prop.Items == nil {
			continue
		}
		if prop.Items.Type == "string" {
			prop.Items.Pattern = CapabilityPattern
		}
	}
}
