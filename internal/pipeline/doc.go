// Package pipeline rewrites repository Markdown so pandoc can typeset it
// inside one combined document.
//
// The Processor runs nine ordered passes over a file's text: fence title
// cleanup, reference collection, three image rewrites (reference-style,
// inline and <img>), inline SVG rasterization, \u escaping, code line
// wrapping and rule-line escaping. Each text pass is also exported as a
// pure function so callers can apply it on its own.
//
// Fenced code is tracked by FenceScanner, a two-state line scanner. Image
// rewrites and escapes only touch text outside fences; wrapping only
// touches lines inside them.
package pipeline
