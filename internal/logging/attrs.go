package logging

import (
	"context"
	"log/slog"
	"time"
)

// Attr is a structured log attribute.
type Attr = slog.Attr

func String(key, value string) Attr { return slog.String(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

// Error records err under the "error" key.
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// Session identifies a conversion session.
func Session(id string) Attr { return slog.String(FieldSessionID, id) }

// Demuxer names the container reader chosen by probing.
func Demuxer(name string) Attr { return slog.String(FieldDemuxer, name) }

// TrackID identifies a track within a session.
func TrackID(id uint32) Attr { return slog.Uint64(FieldTrackID, uint64(id)) }

// TrackAttrs describes a track and, when known, its codec.
func TrackAttrs(id uint32, codec string, extra ...Attr) []Attr {
	attrs := make([]Attr, 0, 2+len(extra))
	attrs = append(attrs, TrackID(id))
	if codec != "" {
		attrs = append(attrs, slog.String(FieldCodec, codec))
	}
	return append(attrs, extra...)
}

// NewComponentLogger creates a logger with a standardized component attribute.
// A nil logger discards everything.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	return orDiscard(logger).With(slog.String(FieldComponent, component))
}

// WarnWithContext logs a warning that always carries event_type, error_hint
// and impact, filling in defaults for the ones attrs lacks.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	event(logger, slog.LevelWarn, msg, eventType, attrs, true)
}

// ErrorWithContext logs an error that always carries event_type and
// error_hint.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	event(logger, slog.LevelError, msg, eventType, attrs, false)
}

func event(logger *slog.Logger, level slog.Level, msg, eventType string, attrs []Attr, withImpact bool) {
	if logger == nil {
		return
	}
	if !hasKey(attrs, FieldEventType) {
		attrs = append(attrs, slog.String(FieldEventType, eventType))
	}
	if !hasKey(attrs, FieldErrorHint) {
		attrs = append(attrs, slog.String(FieldErrorHint, "check logs for details"))
	}
	if withImpact && !hasKey(attrs, FieldImpact) {
		attrs = append(attrs, slog.String(FieldImpact, "operation completed with warnings"))
	}
	logger.LogAttrs(context.Background(), level, msg, attrs...)
}

func hasKey(attrs []Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
