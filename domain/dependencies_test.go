package domain_test

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modulePath = "github.com/reglet-dev/facet/"

// layerRule lists the module-internal import prefixes a layer may use.
type layerRule struct {
	dir     string
	allowed []string
}

// TestLayerDependencies checks the hexagonal layering. Domain packages
// depend only on entities; application, registry and dispatch only on the
// domain and each other's application packages.
func TestLayerDependencies(t *testing.T) {
	rules := []layerRule{
		{dir: "entities"},
		{dir: "errors", allowed: []string{"domain/entities"}},
		{dir: "ports", allowed: []string{"domain/entities"}},
		{dir: "../application/*", allowed: []string{"domain/", "application/"}},
		{dir: "../registry", allowed: []string{"domain/"}},
		{dir: "../dispatch", allowed: []string{"domain/"}},
	}

	fset := token.NewFileSet()
	for _, rule := range rules {
		dirs, err := filepath.Glob(rule.dir)
		require.NoError(t, err)
		require.NotEmpty(t, dirs, "no packages match %s", rule.dir)

		for _, dir := range dirs {
			files, err := filepath.Glob(filepath.Join(dir, "*.go"))
			require.NoError(t, err)

			for _, file := range files {
				// Tests may pull in test helpers and adapters.
				if strings.HasSuffix(file, "_test.go") {
					continue
				}
				checkImports(t, fset, file, rule.allowed)
			}
		}
	}
}

func checkImports(t *testing.T, fset *token.FileSet, filename string, allowed []string) {
	t.Helper()

	f, err := parser.ParseFile(fset, filename, nil, parser.ImportsOnly)
	require.NoError(t, err, "failed to parse %s", filename)

	for _, imp := range f.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		rel, internal := strings.CutPrefix(path, modulePath)
		if !internal {
			continue
		}

		ok := false
		for _, prefix := range allowed {
			if strings.HasPrefix(rel, prefix) {
				ok = true
				break
			}
		}
		assert.True(t, ok, "%s imports %s (allowed: %v)", filename, path, allowed)
	}
}

func TestDomainPackagesExist(t *testing.T) {
	for _, dir := range []string{"entities", "errors", "ports"} {
		files, err := filepath.Glob(filepath.Join(dir, "*.go"))
		require.NoError(t, err)
		assert.NotEmpty(t, files, "domain/%s should contain Go files", dir)
	}
}
