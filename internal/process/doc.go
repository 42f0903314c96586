// Package process runs the external tools repo2pdf shells out to (pandoc,
// inkscape) and makes sure a cancelled run leaves no orphaned children.
package process
