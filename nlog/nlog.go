// Package nlog is the thin logging facade this core uses for its own
// debug-level diagnostics: dropped empty or unmatched datagrams,
// retransmits, max-retry teardowns and rejected links. Connect timeouts
// and identifier-pool exhaustion are not logged. Logging is an external collaborator per
// spec.md §6.3 — the host owns the real sink — so this package only
// adapts whatever hclog.Logger the host hands in, the way the teacher's
// logger/hclog.go bridges its own facade onto hclog.
package nlog

import "github.com/hashicorp/go-hclog"

// Logger is the subset of hclog.Logger this core calls.
type Logger = hclog.Logger

// Null returns a logger that discards everything, used when a host does
// not wire one in (the default for every constructor in this core).
func Null() Logger {
	return hclog.NewNullLogger()
}

// New builds a named logger at the given level, for hosts that want the
// core's own default rather than bringing their own hclog.Logger.
func New(name string, level hclog.Level) Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  name,
		Level: level,
	})
}
