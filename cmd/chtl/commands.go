package main

import (
	"github.com/spf13/cobra"
)

var (
	outDir          string
	prettyPrint     bool
	minify          bool
	includeComments bool
	indentSize      int
	watch           bool

	rootCmd = &cobra.Command{
		Use:   "chtl",
		Short: "Compile CHTL and CHTL-JS sources to HTML, CSS, and JavaScript",
	}

	buildCmd = &cobra.Command{
		Use:   "build [path...]",
		Short: "Compile one or more .chtl files (or directories of them)",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runBuild,
	}
)

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&outDir, "outdir", "o", "", "Directory to write compiled output into (default: alongside each source)")
	buildCmd.Flags().BoolVar(&prettyPrint, "pretty", true, "Pretty-print generated HTML/CSS/JS")
	buildCmd.Flags().BoolVar(&minify, "minify", false, "Minify generated output (overrides --pretty)")
	buildCmd.Flags().BoolVar(&includeComments, "comments", true, "Carry CHTL comments into generated output")
	buildCmd.Flags().IntVar(&indentSize, "indent", 2, "Indent width used when pretty-printing")
	buildCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Recompile affected files on change")
}
