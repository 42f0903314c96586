// Package fileproc classifies repository files and renders each one as a
// Markdown fragment of the combined document.
//
// Classification is by name: Classify maps a path to a Kind and the
// Processor dispatches through a handler table keyed by Kind. Markdown
// goes through the pipeline package, code is fenced with its language
// (long files split into parts), HTML is converted by pandoc and images
// are materialized as a side effect without producing text.
package fileproc
