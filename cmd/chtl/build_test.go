package main

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yhlight/chtl/internal/config"
	"github.com/Yhlight/chtl/pkg/chtl"
)

func withMemFs(t *testing.T) {
	t.Helper()
	old := fs
	fs = afero.NewMemMapFs()
	t.Cleanup(func() { fs = old })
}

func TestCollectSourcesFromDirectoryWalksRecursively(t *testing.T) {
	withMemFs(t)
	require.NoError(t, afero.WriteFile(fs, "/site/a.chtl", []byte("div { text { a } }"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/site/nested/b.chtl", []byte("div { text { b } }"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/site/notes.txt", []byte("ignore me"), 0o644))

	files, err := collectSources([]string{"/site"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/site/a.chtl", "/site/nested/b.chtl"}, files)
}

func TestCollectSourcesFromExplicitFileList(t *testing.T) {
	withMemFs(t)
	require.NoError(t, afero.WriteFile(fs, "/a.chtl", []byte("div;"), 0o644))

	files, err := collectSources([]string{"/a.chtl"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a.chtl"}, files)
}

func TestCollectSourcesMissingPathReturnsError(t *testing.T) {
	withMemFs(t)
	_, err := collectSources([]string{"/does-not-exist.chtl"})
	assert.Error(t, err)
}

func TestWriteOutputsSkipsEmptyArtifactsAndUsesOutDir(t *testing.T) {
	withMemFs(t)
	oldOutDir := outDir
	outDir = "/out"
	t.Cleanup(func() { outDir = oldOutDir })

	result := chtl.GenerateResult{OK: true, HTML: "<div></div>", CSS: "", JS: ""}
	require.NoError(t, writeOutputs("/src/page.chtl", result))

	exists, err := afero.Exists(fs, "/out/page.html")
	require.NoError(t, err)
	assert.True(t, exists)

	cssExists, _ := afero.Exists(fs, "/out/page.css")
	assert.False(t, cssExists, "empty CSS must not be written")
}

func TestWriteOutputsAlongsideSourceWhenNoOutDir(t *testing.T) {
	withMemFs(t)
	oldOutDir := outDir
	outDir = ""
	t.Cleanup(func() { outDir = oldOutDir })

	result := chtl.GenerateResult{OK: true, HTML: "<div></div>"}
	require.NoError(t, writeOutputs("/project/pages/page.chtl", result))

	exists, err := afero.Exists(fs, "/project/pages/page.html")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestBuildOneWritesOutputsOnSuccessfulCompile(t *testing.T) {
	withMemFs(t)
	oldOutDir := outDir
	outDir = ""
	t.Cleanup(func() { outDir = oldOutDir })

	require.NoError(t, afero.WriteFile(fs, "/ok.chtl", []byte("div { text { hi } }"), 0o644))
	ok := buildOne("/ok.chtl", config.Default())
	assert.True(t, ok)

	exists, _ := afero.Exists(fs, "/ok.html")
	assert.True(t, exists)
}

func TestBuildOneReturnsFalseOnCompileError(t *testing.T) {
	withMemFs(t)
	require.NoError(t, afero.WriteFile(fs, "/bad.chtl", []byte("body { @Element Missing; }"), 0o644))
	ok := buildOne("/bad.chtl", config.Default())
	assert.False(t, ok)
}
