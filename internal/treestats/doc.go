// Package treestats renders the two advisory reports placed in front of
// the file sections: an indented directory tree and a table of file,
// line and size totals broken down by language and extension.
//
// Both walks honour the same ignore patterns and hidden-entry rules as
// file collection, so the reports describe exactly the files the
// document contains.
package treestats
