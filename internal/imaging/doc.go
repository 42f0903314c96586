// Package imaging turns every image a repository document references into
// a raster file the typesetter can embed.
//
// SVG sources are rasterized in-process with oksvg/rasterx at twice their
// declared size; SVGs the built-in renderer cannot handle are handed to
// inkscape when a command runner is configured. Remote images are
// downloaded once per run. All outputs land in one images directory and
// are named by content (or URL) hash, so repeated references share a file.
//
// Failures are returned to the caller, which is expected to drop the
// image reference and carry on.
package imaging
