package embeddedmqtt

import (
	"context"
	"log/slog"
	"strings"

	"go.uber.org/zap"
)

// newBridgeLogger adapts a zap logger to the slog interface mochi-mqtt
// expects. Client disconnect EOFs are demoted to debug so a node shutting
// down does not spam the log.
func newBridgeLogger(logger *zap.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return slog.New(&bridgeHandler{logger: logger})
}

type bridgeHandler struct {
	logger *zap.Logger
	attrs  []slog.Attr
}

func (h *bridgeHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *bridgeHandler) Handle(_ context.Context, record slog.Record) error {
	fields := make([]zap.Field, 0, len(h.attrs)+record.NumAttrs())
	for _, attr := range h.attrs {
		fields = append(fields, attrToField(attr))
	}

	eof := false
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Key == "error" && isConnClosed(attr.Value) {
			eof = true
		}
		fields = append(fields, attrToField(attr))
		return true
	})

	level := record.Level
	if eof {
		level = slog.LevelDebug
	}

	switch {
	case level >= slog.LevelError:
		h.logger.Error(record.Message, fields...)
	case level >= slog.LevelWarn:
		h.logger.Warn(record.Message, fields...)
	case level >= slog.LevelInfo:
		h.logger.Info(record.Message, fields...)
	default:
		h.logger.Debug(record.Message, fields...)
	}
	return nil
}

func (h *bridgeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next = append(next, h.attrs...)
	next = append(next, attrs...)
	return &bridgeHandler{logger: h.logger, attrs: next}
}

func (h *bridgeHandler) WithGroup(_ string) slog.Handler {
	return h
}

func isConnClosed(value slog.Value) bool {
	var msg string
	switch value.Kind() {
	case slog.KindString:
		msg = value.String()
	case slog.KindAny:
		if err, ok := value.Any().(error); ok {
			msg = err.Error()
		}
	}
	return msg == "EOF" || strings.Contains(msg, "read connection: EOF")
}

func attrToField(attr slog.Attr) zap.Field {
	switch attr.Value.Kind() {
	case slog.KindString:
		return zap.String(attr.Key, attr.Value.String())
	case slog.KindInt64:
		return zap.Int64(attr.Key, attr.Value.Int64())
	case slog.KindUint64:
		return zap.Uint64(attr.Key, attr.Value.Uint64())
	case slog.KindFloat64:
		return zap.Float64(attr.Key, attr.Value.Float64())
	case slog.KindBool:
		return zap.Bool(attr.Key, attr.Value.Bool())
	default:
		return zap.Any(attr.Key, attr.Value.Any())
	}
}
