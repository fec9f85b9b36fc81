package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Yhlight/chtl/internal/config"
	"github.com/Yhlight/chtl/pkg/chtl"
)

var fs = afero.NewOsFs()

func runBuild(cmd *cobra.Command, args []string) error {
	opts := config.Default()
	opts.PrettyPrint = prettyPrint
	opts.Minify = minify
	opts.IncludeComments = includeComments
	opts.IndentSize = indentSize
	if err := (&opts).Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	files, err := collectSources(args)
	if err != nil {
		return err
	}

	failed := buildAll(files, opts)

	if watch {
		return watchAndRebuild(files, opts)
	}
	if failed {
		return fmt.Errorf("build finished with errors")
	}
	return nil
}

// collectSources expands args (files or directories) into a flat list of
// .chtl file paths, walking directories recursively.
func collectSources(args []string) ([]string, error) {
	var files []string
	for _, a := range args {
		info, err := fs.Stat(a)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, a)
			continue
		}
		err = afero.Walk(fs, a, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && strings.HasSuffix(path, ".chtl") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// buildAll compiles every file in files and writes its outputs, returning
// true if any file produced an error-severity diagnostic or failed to
// compile at all.
func buildAll(files []string, opts config.Options) bool {
	failed := false
	for _, path := range files {
		if !buildOne(path, opts) {
			failed = true
		}
	}
	return failed
}

func buildOne(path string, opts config.Options) bool {
	contents, err := afero.ReadFile(fs, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return false
	}

	result := chtl.Compile(chtl.Source{Name: path, Text: string(contents)}, opts)
	printDiagnostics(path, result.Diagnostics)

	if !result.OK {
		return false
	}
	if err := writeOutputs(path, result); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return false
	}
	return true
}

func writeOutputs(path string, result chtl.GenerateResult) error {
	dir := filepath.Dir(path)
	if outDir != "" {
		dir = outDir
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	outputs := map[string]string{
		".html": result.HTML,
		".css":  result.CSS,
		".js":   result.JS,
	}
	for ext, content := range outputs {
		if content == "" {
			continue
		}
		if err := afero.WriteFile(fs, filepath.Join(dir, base+ext), []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func printDiagnostics(path string, diags []chtl.Diagnostic) {
	errColor := color.New(color.FgRed, color.Bold).SprintFunc()
	warnColor := color.New(color.FgYellow, color.Bold).SprintFunc()
	for _, d := range diags {
		sev := d.Severity
		switch d.Severity {
		case "error":
			sev = errColor(sev)
		case "warning":
			sev = warnColor(sev)
		}
		fmt.Fprintf(os.Stderr, "%s:%d:%d: %s: %s\n", path, d.Line, d.Column, sev, d.Message)
	}
}

// watchAndRebuild recompiles whichever source file changed, rather than the
// whole batch, so a large build directory stays responsive under --watch.
func watchAndRebuild(files []string, opts config.Options) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dirs := map[string]bool{}
	for _, f := range files {
		dirs[filepath.Dir(f)] = true
	}
	for d := range dirs {
		if err := watcher.Add(d); err != nil {
			return err
		}
	}

	fmt.Fprintln(os.Stderr, "watching for changes...")
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".chtl") {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			buildOne(ev.Name, opts)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, "watch error:", err)
		}
	}
}
