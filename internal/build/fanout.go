package build

import (
	"context"
	"errors"
	"log/slog"
)

// fanout is a slog.Handler that hands every record to a set of handlers,
// which lets one logger write to the console and the log file at once.
type fanout []slog.Handler

// Ensure fanout implements slog.Handler at compile time.
var _ slog.Handler = (fanout)(nil)

// Enabled reports whether any handler accepts records at level.
//
// NOTE: this is part of the slog.Handler interface.
func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

// Handle dispatches the record to every handler that accepts its level.
//
// NOTE: this is part of the slog.Handler interface.
func (f fanout) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// WithAttrs returns a fanout whose handlers all carry attrs.
//
// NOTE: this is part of the slog.Handler interface.
func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}

	return out
}

// WithGroup returns a fanout whose handlers all open group name.
//
// NOTE: this is part of the slog.Handler interface.
func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}

	return out
}
