package providers

import (
	"context"
	"log/slog"

	"github.com/preston-bernstein/poll-position/internal/logging"
)

// logWithSource emits a log entry if a logger is available and always includes source and endpoint.
func logWithSource(ctx context.Context, fallback *slog.Logger, level slog.Level, source, endpoint, msg string, args ...any) {
	logger := logging.FromContext(ctx, fallback)
	if logger == nil {
		return
	}
	args = append(args, slog.String(logging.FieldProvider, source), slog.String(logging.FieldEndpoint, endpoint))
	logger.Log(ctx, level, msg, args...)
}
