// Package chtl is the public entry point: Compile (and CompileBatch) run the
// full pipeline — lex, parse, validate, generate — over one or many CHTL
// source units and return GenerateResult, the external-interface shape spec
// section 6 names. The compiler is a pure function of its inputs: no
// persisted state survives a call (spec section 6).
package chtl

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Yhlight/chtl/internal/chtlast"
	"github.com/Yhlight/chtl/internal/chtlgen"
	"github.com/Yhlight/chtl/internal/chtlparser"
	"github.com/Yhlight/chtl/internal/config"
	"github.com/Yhlight/chtl/internal/logger"
	"github.com/Yhlight/chtl/internal/metrics"
)

// Source is the input shape spec section 6 names: Source{name, text}.
type Source struct {
	Name string
	Text string
}

// Diagnostic mirrors spec 6's shape exactly.
type Diagnostic struct {
	Severity string
	File     string
	Line     int
	Column   int
	Message  string
}

type Metadata struct {
	GeneratedFunctions []string
	VirMappings        map[string]string
	UsedSelectors      []string
}

// GenerateResult mirrors spec 6's GenerateResult shape.
type GenerateResult struct {
	OK          bool
	HTML        string
	CSS         string
	JS          string
	Diagnostics []Diagnostic
	Metadata    Metadata
}

// Compile runs one Source through the full lexer → parser → validator →
// generator pipeline (spec section 4). opts supplies host-level defaults;
// a [Configuration] block found in the source overrides them field by
// field, per spec 6's configuration precedence.
func Compile(src Source, opts config.Options) GenerateResult {
	return compileTimed(src, opts, nil)
}

// CompileWithMetrics behaves like Compile but reports the outcome to recorder
// (ok/fail counts, duration, per-severity diagnostic counts). recorder may be
// nil, in which case this is identical to Compile.
func CompileWithMetrics(src Source, opts config.Options, recorder *metrics.Recorder) GenerateResult {
	return compileTimed(src, opts, recorder)
}

func compileTimed(src Source, opts config.Options, recorder *metrics.Recorder) GenerateResult {
	start := time.Now()

	log := logger.NewDeferLog()
	source := logger.Source{Name: src.Name, Contents: src.Text}

	parsed := chtlparser.Parse(log, source)

	resolvedOpts := applyConfiguration(parsed.Tree, opts)
	if err := resolvedOpts.Validate(); err != nil {
		logger.AddError(log, source, 0, 0, "invalid configuration: "+err.Error())
	}

	if !parsed.State.Valid() {
		for _, msg := range stateViolationMessages(parsed) {
			logger.AddError(log, source, 0, 0, msg)
		}
	}

	genResult := chtlgen.Generate(log, source, parsed.Tree, parsed.Registry, parsed.State, resolvedOpts)
	msgs := log.Done()

	result := GenerateResult{
		OK:          genResult.OK && !hasErrorSeverity(msgs),
		HTML:        genResult.HTML,
		CSS:         genResult.CSS,
		JS:          genResult.JS,
		Diagnostics: toDiagnostics(msgs),
		Metadata: Metadata{
			GeneratedFunctions: genResult.Metadata.GeneratedFunctions,
			VirMappings:        genResult.Metadata.VirMappings,
			UsedSelectors:      genResult.Metadata.UsedSelectors,
		},
	}

	recorder.Observe(result.OK, time.Since(start), severityCount(msgs, logger.Error), severityCount(msgs, logger.Warning), severityCount(msgs, logger.Info))
	return result
}

func severityCount(msgs []logger.Msg, sev logger.Severity) int {
	n := 0
	for _, m := range msgs {
		if m.Severity == sev {
			n++
		}
	}
	return n
}

// CompileBatch compiles many independent sources concurrently; each gets
// its own registry, state helper, and AST, matching spec section 5's
// parallel-compilation contract ("provided each owns its own registry,
// state machines, and AST").
func CompileBatch(sources []Source, opts config.Options) ([]GenerateResult, error) {
	results := make([]GenerateResult, len(sources))
	var g errgroup.Group
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			results[i] = Compile(src, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func hasErrorSeverity(msgs []logger.Msg) bool {
	for _, m := range msgs {
		if m.Severity == logger.Error {
			return true
		}
	}
	return false
}

func toDiagnostics(msgs []logger.Msg) []Diagnostic {
	out := make([]Diagnostic, len(msgs))
	for i, m := range msgs {
		out[i] = Diagnostic{
			Severity: m.Severity.String(),
			File:     m.Loc.File,
			Line:     m.Loc.Line,
			Column:   m.Loc.Column,
			Message:  m.Text,
		}
	}
	return out
}

// applyConfiguration looks for a top-level [Configuration] node and merges
// its key/value pairs over opts (spec 6's configuration table), coercing
// the parser's raw string values to the typed Options fields.
func applyConfiguration(tree *chtlast.Tree, opts config.Options) config.Options {
	root := tree.Get(tree.Root)
	for _, c := range root.Children {
		n := tree.Get(c)
		if n.Kind != chtlast.Configuration {
			continue
		}
		override := opts
		keys := map[string]bool{}
		for key, value := range n.Attrs {
			keys[key] = true
			switch key {
			case "pretty_print":
				override.PrettyPrint = parseBool(value)
			case "minify":
				override.Minify = parseBool(value)
			case "auto_doctype":
				override.AutoDoctype = parseBool(value)
			case "include_comments":
				override.IncludeComments = parseBool(value)
			case "indent_size":
				if n, err := strconv.Atoi(value); err == nil {
					override.IndentSize = n
				}
			case "source_map":
				override.SourceMap = parseBool(value)
			}
		}
		opts = config.Merge(opts, override, keys)
	}
	return opts
}

func parseBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}

// stateViolationMessages flattens every node's attached StateInfo errors
// (spec 4.3: "Violations are collected as errors attached to the offending
// node, not thrown") into plain diagnostic text.
func stateViolationMessages(parsed chtlparser.Result) []string {
	var out []string
	parsed.Tree.Walk(parsed.Tree.Root, func(id chtlast.NodeID, _ *chtlast.Node) {
		info, ok := parsed.State.StateInfoFor(id)
		if !ok {
			return
		}
		out = append(out, info.Errors...)
	})
	return out
}
