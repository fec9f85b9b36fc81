package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesSpecDefaults(t *testing.T) {
	o := Default()
	assert.True(t, o.PrettyPrint)
	assert.False(t, o.Minify)
	assert.True(t, o.AutoDoctype)
	assert.True(t, o.IncludeComments)
	assert.Equal(t, 2, o.IndentSize)
	assert.False(t, o.SourceMap)
}

func TestValidateMinifyOverridesPrettyPrint(t *testing.T) {
	o := Default()
	o.Minify = true
	o.PrettyPrint = true

	require.NoError(t, o.Validate())
	assert.False(t, o.PrettyPrint)
}

func TestValidateRejectsNegativeIndentSize(t *testing.T) {
	o := Default()
	o.IndentSize = -1
	err := o.Validate()
	assert.Error(t, err)
}

func TestLoadDefaultsMergesOverYAML(t *testing.T) {
	r := strings.NewReader("indent_size: 4\nminify: true\n")
	o, err := LoadDefaults(r)
	require.NoError(t, err)
	assert.Equal(t, 4, o.IndentSize)
	assert.True(t, o.Minify)
	// fields absent from the YAML keep Default()'s values
	assert.True(t, o.AutoDoctype)
}

func TestLoadDefaultsEmptyReaderKeepsDefaults(t *testing.T) {
	o, err := LoadDefaults(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), o)
}

func TestMergeOnlyAppliesSpecifiedKeys(t *testing.T) {
	base := Default()
	override := Options{IndentSize: 4, Minify: true}
	keys := map[string]bool{"indent_size": true}

	out := Merge(base, override, keys)
	assert.Equal(t, 4, out.IndentSize)
	assert.False(t, out.Minify, "minify was not in keys so base's value must survive")
}

func TestMergeMinifyReconciliationAppliesAfterOverride(t *testing.T) {
	base := Default()
	override := Options{Minify: true}
	keys := map[string]bool{"minify": true}

	out := Merge(base, override, keys)
	assert.True(t, out.Minify)
	assert.False(t, out.PrettyPrint)
}

func TestMergeWithNoKeysReturnsBaseUnchanged(t *testing.T) {
	base := Default()
	out := Merge(base, Options{IndentSize: 99}, map[string]bool{})
	assert.Equal(t, base, out)
}
