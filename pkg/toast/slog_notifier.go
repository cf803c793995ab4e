package toast

import (
	"context"
	"log/slog"
)

// NewSlogNotifier returns a Notifier that writes toasts to the given logger.
// Destructive toasts log at error level, everything else at info.
func NewSlogNotifier(log *slog.Logger) Notifier {
	if log == nil {
		log = slog.Default()
	}
	return NotifierFunc(func(t Toast) {
		level := slog.LevelInfo
		if t.Variant == VariantDestructive {
			level = slog.LevelError
		}
		log.LogAttrs(context.Background(), level, t.Title,
			slog.String("description", t.Description),
			slog.String("variant", string(t.Variant)),
		)
	})
}
