// Package logfields holds the slog attribute keys shared by every package
// so log output keeps one schema from clone to typesetting.
package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field names.
const (
	KeyRepo       = "repository"
	KeyBranch     = "branch"
	KeyCommit     = "commit"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyImage      = "image"
	KeyKind       = "kind"
	KeySize       = "size"
	KeyLines      = "lines"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyTemplate   = "template"
	KeyPreset     = "preset"
	KeyError      = "error"
)

func Repository(r string) slog.Attr { return slog.String(KeyRepo, r) }
func Branch(b string) slog.Attr     { return slog.String(KeyBranch, b) }
func Commit(c string) slog.Attr     { return slog.String(KeyCommit, c) }
func Path(p string) slog.Attr       { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr        { return slog.String(KeyURL, u) }
func Image(i string) slog.Attr      { return slog.String(KeyImage, i) }
func Kind(k string) slog.Attr       { return slog.String(KeyKind, k) }
func Size(n int64) slog.Attr        { return slog.Int64(KeySize, n) }
func Lines(n int) slog.Attr         { return slog.Int(KeyLines, n) }
func Stage(s string) slog.Attr      { return slog.String(KeyStage, s) }
func Template(t string) slog.Attr   { return slog.String(KeyTemplate, t) }
func Preset(p string) slog.Attr     { return slog.String(KeyPreset, p) }

// Duration reports d in milliseconds.
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// Discard returns a logger that drops every record. Constructors use it
// when the caller passes no logger.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
