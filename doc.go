// Package repo2pdf renders a checked-out source repository as one PDF
// using pandoc and xelatex.
//
// # Quick Start
//
//	conv, err := repo2pdf.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := conv.Convert(ctx, repo2pdf.Input{
//	    RepoPath:  "./workspace/myrepo",
//	    OutputDir: "./output",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.PDFPath)
//
// # Conversion Pipeline
//
//  1. Files are collected in sorted path order, skipping ignored, hidden
//     and binary files.
//  2. Each file becomes a Markdown section: Markdown is cleaned and its
//     images materialized, code is fenced with a language tag, HTML is
//     converted by pandoc. Long code files are split into parts.
//  3. A title, the front section (template text, directory tree, code
//     statistics) and the file sections are assembled into combined.md.
//  4. pandoc typesets combined.md with a rendered LaTeX header into
//     <OutputDir>/<repo>_<YYYYMMDD_HHmmss>.pdf.
//
// When typesetting fails the combined Markdown is kept as
// <OutputDir>/debug.md and the error is a *TypesetError.
//
// # Templates
//
// Document templates are YAML files selecting the front section:
//
//	name: handbook
//	structure:
//	  include_tree: true
//	  include_stats: false
//	  tree_max_depth: 2
//	  sections:
//	    - title: About
//	      content: Source of {{repo_name}} as of {{date}}.
//	    - type: tree
//
// Use WithAssetLoader with NewAssetLoader to supply custom templates or a
// custom LaTeX header from a directory.
//
// # External Tools
//
// pandoc and a TeX distribution with xelatex are required. inkscape is
// used, when present, for SVGs the built-in rasterizer rejects.
package repo2pdf
