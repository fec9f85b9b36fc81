package chtlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yhlight/chtl/internal/chtlparser"
	"github.com/Yhlight/chtl/internal/config"
	"github.com/Yhlight/chtl/internal/logger"
)

func generate(t *testing.T, text string, opts config.Options) (Result, *logger.Log) {
	t.Helper()
	log := logger.NewDeferLog()
	source := logger.Source{Name: "test.chtl", Contents: text}
	parsed := chtlparser.Parse(log, source)
	result := Generate(log, source, parsed.Tree, parsed.Registry, parsed.State, opts)
	return result, &log
}

func TestGenerateLocalStyleSynthesizesClassWhenMissing(t *testing.T) {
	result, log := generate(t, `div { style { color: red; } }`, config.Default())
	require.Empty(t, (*log).Done())
	assert.Contains(t, result.HTML, `class="_c0"`)
	assert.Contains(t, result.CSS, "color")
}

func TestGenerateLocalStyleReusesExistingClass(t *testing.T) {
	result, log := generate(t, `div { class: "box"; style { color: red; } }`, config.Default())
	require.Empty(t, (*log).Done())
	assert.Contains(t, result.HTML, `class="box"`)
	assert.NotContains(t, result.HTML, "_c0")
}

func TestGenerateDoctypeOnlyWhenHTMLElementPresent(t *testing.T) {
	withHTML, log := generate(t, `html { body { text { hi } } }`, config.Default())
	require.Empty(t, (*log).Done())
	assert.Contains(t, withHTML.HTML, "<!DOCTYPE html>")

	withoutHTML, log2 := generate(t, `div { text { hi } }`, config.Default())
	require.Empty(t, (*log2).Done())
	assert.NotContains(t, withoutHTML.HTML, "<!DOCTYPE html>")
}

func TestGenerateUnresolvedVarReferenceReportsErrorButStillProducesHTML(t *testing.T) {
	result, log := generate(t, `div { text { @Var NoSuchColor } }`, config.Default())
	msgs := (*log).Done()
	require.NotEmpty(t, msgs)
	assert.Contains(t, result.HTML, "unresolved: NoSuchColor")
}

func TestGenerateExceptProhibitsListedElement(t *testing.T) {
	result, log := generate(t, `[Namespace] layout { except div; div { text { nope } } }`, config.Default())
	msgs := (*log).Done()
	require.NotEmpty(t, msgs, "a prohibited element must be reported")
	_ = result
}

func TestGenerateSkipsOKWhenErrorsPresent(t *testing.T) {
	result, _ := generate(t, `div { text { @Var Missing } }`, config.Default())
	assert.False(t, result.OK)
}

func TestGenerateVoidElementSelfClosesWithoutChildren(t *testing.T) {
	result, log := generate(t, `img { src: "a.png"; }`, config.Default())
	require.Empty(t, (*log).Done())
	assert.Contains(t, result.HTML, `<img src="a.png">`)
	assert.NotContains(t, result.HTML, "</img>")
}

func TestGenerateMinifyProducesNoIndentationOrNewlines(t *testing.T) {
	opts := config.Default()
	opts.Minify = true
	require.NoError(t, opts.Validate()) // reconciles PrettyPrint off, same as pkg/chtl does before Generate
	result, log := generate(t, `div { span { text { hi } } }`, opts)
	require.Empty(t, (*log).Done())
	assert.NotContains(t, result.HTML, "\n")
}
