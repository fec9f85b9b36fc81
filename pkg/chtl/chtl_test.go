package chtl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yhlight/chtl/internal/config"
)

func TestCompileTemplateExpansionWithInsert(t *testing.T) {
	src := `
[Template] @Element Card {
  div { text { T } }
  div { text { C } }
}

body {
  @Element Card {
    insert after div[0] {
      p { text { X } }
    }
  }
}
`
	result := Compile(Source{Name: "card.chtl", Text: src}, config.Default())

	require.True(t, result.OK, "diagnostics: %+v", result.Diagnostics)

	bodyIdx := strings.Index(result.HTML, "<body>")
	require.GreaterOrEqual(t, bodyIdx, 0)

	tIdx := strings.Index(result.HTML, "T")
	xIdx := strings.Index(result.HTML, "X")
	cIdx := strings.Index(result.HTML, "C")
	require.True(t, tIdx >= 0 && xIdx >= 0 && cIdx >= 0)
	assert.True(t, tIdx < xIdx && xIdx < cIdx, "expected T, then X, then C in document order")
}

func TestCompileTemplateExpansionWithDelete(t *testing.T) {
	src := `
[Template] @Element Card {
  div { text { T } }
  div { text { C } }
}

body {
  @Element Card {
    delete div[1];
  }
}
`
	result := Compile(Source{Name: "card.chtl", Text: src}, config.Default())

	require.True(t, result.OK, "diagnostics: %+v", result.Diagnostics)
	assert.Contains(t, result.HTML, "T")
	assert.NotContains(t, result.HTML, "C")
}

func TestCompileUnknownTemplateReferenceProducesPlaceholderNotFailure(t *testing.T) {
	src := `
body {
  @Element NoSuchTemplate;
}
`
	result := Compile(Source{Name: "missing.chtl", Text: src}, config.Default())

	assert.Contains(t, result.HTML, "unresolved")
	foundError := false
	for _, d := range result.Diagnostics {
		if d.Severity == "error" {
			foundError = true
		}
	}
	assert.True(t, foundError, "expected an error diagnostic for the unresolved reference")
}

func TestCompileBatchIsolatesRegistriesAcrossSources(t *testing.T) {
	sources := []Source{
		{Name: "a.chtl", Text: "[Template] @Element Box { div { text { A } } }\nbody { @Element Box; }"},
		{Name: "b.chtl", Text: "body { @Element Box; }"},
	}

	results, err := CompileBatch(sources, config.Default())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].OK, "diagnostics: %+v", results[0].Diagnostics)
	assert.Contains(t, results[0].HTML, "A")

	// b.chtl never declared Box itself, so its own compile must not see a.chtl's registry.
	foundError := false
	for _, d := range results[1].Diagnostics {
		if d.Severity == "error" {
			foundError = true
		}
	}
	assert.True(t, foundError, "expected b.chtl's unresolved Box reference to be independently reported")
}

func TestCompileConfigurationBlockOverridesDefaults(t *testing.T) {
	src := `
[Configuration] {
  minify: true;
}
body { text { hi } }
`
	result := Compile(Source{Name: "cfg.chtl", Text: src}, config.Default())
	require.True(t, result.OK, "diagnostics: %+v", result.Diagnostics)
	assert.NotContains(t, result.HTML, "\n  ", "minified output should not carry pretty-print indentation")
}
