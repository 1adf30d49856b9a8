// Package logging assembles structured slog loggers and formatting helpers used
// across mediabox.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes helpers that tag log lines with the conversion
// session, track and codec they concern. Console output is coloured only
// when it reaches a terminal. A nil logger passed to any helper discards.
package logging
