package ports

import "github.com/reglet-dev/facet/domain/entities"

// ManifestParser parses raw bytes into a Manifest.
type ManifestParser interface {
	Parse(data []byte) (*entities.Manifest, error)
}

// TemplateEngine renders a raw manifest with caller-supplied values.
type TemplateEngine interface {
	Render(raw []byte, values map[string]any) ([]byte, error)
}

// ManifestValidator checks a parsed manifest.
type ManifestValidator interface {
	Validate(manifest *entities.Manifest) (*entities.ValidationResult, error)
}
