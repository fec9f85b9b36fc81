package chtljsgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yhlight/chtl/internal/chtljsparser"
	"github.com/Yhlight/chtl/internal/chtljsregistry"
	"github.com/Yhlight/chtl/internal/config"
	"github.com/Yhlight/chtl/internal/logger"
)

func generate(t *testing.T, text string, emitPrelude bool) (Result, *logger.Log) {
	t.Helper()
	log := logger.NewDeferLog()
	source := logger.Source{Name: "test.cjs", Contents: text}
	reg := chtljsregistry.New(log)
	parsed := chtljsparser.Parse(log, source, reg, false)
	result := Generate(log, source, parsed.Tree, reg, config.Default(), emitPrelude)
	return result, &log
}

func TestGeneratePreludeEmittedOnce(t *testing.T) {
	result, _ := generate(t, `{{.box}}->listen({click: () => {f();}});`, true)
	assert.Equal(t, 1, strings.Count(result.JS, "function __chtljs_select"))
	assert.Contains(t, result.JS, "__chtljs_listen(")
}

func TestGenerateNoPreludeWhenNotFirst(t *testing.T) {
	result, _ := generate(t, `{{.box}};`, false)
	assert.NotContains(t, result.JS, "function __chtljs_select")
}

func TestGenerateVirDeclarationEmitsFunctionNotBinding(t *testing.T) {
	result, _ := generate(t, `vir box = listen({click: () => {doThing();}});`, false)

	assert.NotContains(t, result.JS, "var box")
	assert.NotContains(t, result.JS, "const box")
	require.Len(t, result.GeneratedFunctions, 1)
	assert.Equal(t, "__chtljs_vir_box_click", result.GeneratedFunctions[0])
	assert.Contains(t, result.JS, "function __chtljs_vir_box_click()")
	assert.Equal(t, "__chtljs_vir_box_click", result.VirMappings["box.click"])
}

func TestGenerateVirAccessCallsSameGeneratedName(t *testing.T) {
	result, _ := generate(t, `vir box = listen({click: () => {doThing();}}); box->click();`, false)

	genName := result.VirMappings["box.click"]
	require.NotEmpty(t, genName)
	assert.Contains(t, result.JS, genName+"()")
}

func TestGenerateObservedSelectorsRecorded(t *testing.T) {
	result, _ := generate(t, `{{.box}}; {{#id}};`, false)
	assert.ElementsMatch(t, []string{".box", "#id"}, result.UsedSelectors)
}

func TestGenerateSelectorMemberAssignmentEmitsSingleStatement(t *testing.T) {
	result, log := generate(t, `{{.b}}->textContent = "ok";`, false)
	require.Empty(t, (*log).Done())
	assert.Equal(t, 1, strings.Count(result.JS, ";"))
	assert.Contains(t, result.JS, `__chtljs_select(".b").textContent = "ok";`)
}

func TestGenerateRawFragmentEmittedVerbatim(t *testing.T) {
	result, _ := generate(t, `let a = 1 + 2;`, false)
	assert.Contains(t, result.JS, "let a = 1 + 2;")
}
