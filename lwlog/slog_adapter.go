package lwlog

import (
	"context"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger. Useful for
// development when you want to see protocol events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given
// slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("conn_id", event.ConnID),
		slog.String("category", event.Category.String()),
	}
	if event.Direction != DirectionNone {
		attrs = append(attrs, slog.String("direction", event.Direction.String()))
	}
	if event.DeviceName != "" {
		attrs = append(attrs, slog.String("device", event.DeviceName))
	}

	switch {
	case event.Lifecycle != nil:
		attrs = append(attrs, slog.String("kind", event.Lifecycle.Kind))
		if event.Lifecycle.Lifetime > 0 {
			attrs = append(attrs, slog.Duration("lifetime", event.Lifecycle.Lifetime))
		}
	case event.Transaction != nil:
		t := event.Transaction
		attrs = append(attrs,
			slog.String("op", t.Op),
			slog.Uint64("object_id", uint64(t.ObjectID)),
			slog.Uint64("instance_id", uint64(t.InstanceID)),
			slog.Uint64("status", uint64(t.Status)),
			slog.Duration("processing_time", t.ProcessingTime),
		)
		if t.ResourceID != nil {
			attrs = append(attrs, slog.Uint64("resource_id", uint64(*t.ResourceID)))
		}
	case event.Notify != nil:
		n := event.Notify
		attrs = append(attrs,
			slog.String("scope", n.Scope),
			slog.Uint64("object_id", uint64(n.ObjectID)),
			slog.Uint64("instance_id", uint64(n.InstanceID)),
			slog.Int("data_len", n.DataLen),
		)
		if n.ResourceID != nil {
			attrs = append(attrs, slog.Uint64("resource_id", uint64(*n.ResourceID)))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_context", event.Error.Context),
			slog.String("error_msg", event.Error.Message),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
