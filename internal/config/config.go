// Package config holds the compiler's Options, the recognized keys of a
// source-level [Configuration] block (spec section 6), and host-level
// default loading/validation for the ambient configuration stack.
package config

import (
	"io"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Options is the resolved set of recognized [Configuration] keys plus the
// defaults a host may pin ahead of time. Source-level [Configuration] values
// always win over whatever was loaded via LoadDefaults.
type Options struct {
	PrettyPrint     bool `yaml:"pretty_print"`
	Minify          bool `yaml:"minify"`
	AutoDoctype     bool `yaml:"auto_doctype"`
	IncludeComments bool `yaml:"include_comments"`
	IndentSize      int  `yaml:"indent_size" validate:"gte=0"`
	SourceMap       bool `yaml:"source_map"`
}

// Default matches the spec's stated default: indent_size 2, pretty printing
// and auto doctype on, comments preserved, minify and source maps off.
func Default() Options {
	return Options{
		PrettyPrint:     true,
		Minify:          false,
		AutoDoctype:     true,
		IncludeComments: true,
		IndentSize:      2,
		SourceMap:       false,
	}
}

var validate = validator.New()

// Validate reconciles and checks Options. Per spec section 6, "minify
// overrides pretty_print" is a reconciliation, not a rejection: if both are
// set, pretty printing is turned off rather than treated as an error. Any
// remaining structural violation (a negative indent_size) is returned as an
// error for the caller to surface as an Error-severity diagnostic — config
// validation never panics and never aborts the rest of the pipeline.
func (o *Options) Validate() error {
	if o.Minify {
		o.PrettyPrint = false
	}
	return validate.Struct(o)
}

// LoadDefaults reads host-level defaults (e.g. a project-wide chtl.yaml) and
// decodes them over Default(), so fields absent from the YAML keep their
// default values and a [Configuration] block
// found later in a source file can still override any of these fields field
// by field. This is a CLI/CI convenience; the core compiler never reads it
// itself, it is always handed a resolved Options value.
func LoadDefaults(r io.Reader) (Options, error) {
	opts := Default()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&opts); err != nil && err != io.EOF {
		return opts, err
	}
	return opts, nil
}

// Merge overrides base with any field explicitly set in override, used to
// apply a [Configuration] block's parsed key/values over loaded defaults.
// Keys is the set of option names the [Configuration] block actually
// specified; unspecified keys keep base's value.
func Merge(base Options, override Options, keys map[string]bool) Options {
	out := base
	if keys["pretty_print"] {
		out.PrettyPrint = override.PrettyPrint
	}
	if keys["minify"] {
		out.Minify = override.Minify
	}
	if keys["auto_doctype"] {
		out.AutoDoctype = override.AutoDoctype
	}
	if keys["include_comments"] {
		out.IncludeComments = override.IncludeComments
	}
	if keys["indent_size"] {
		out.IndentSize = override.IndentSize
	}
	if keys["source_map"] {
		out.SourceMap = override.SourceMap
	}
	if out.Minify {
		out.PrettyPrint = false
	}
	return out
}
