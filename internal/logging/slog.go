package logging

import (
	"context"
	"log/slog"
)

// slogHandler feeds slog records from libraries into a Logger. Records are
// demoted one level: library chatter at info becomes debug.
type slogHandler struct {
	logger *Logger
	group  string
}

// Slog returns a *slog.Logger that writes through l
func (l *Logger) Slog() *slog.Logger {
	return slog.New(&slogHandler{logger: l})
}

func demote(level slog.Level) LogLevel {
	switch {
	case level >= slog.LevelError:
		return LevelWarn
	case level >= slog.LevelWarn:
		return LevelInfo
	default:
		return LevelDebug
	}
}

func (h *slogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return demote(level) >= h.logger.Level()
}

func (h *slogHandler) Handle(_ context.Context, record slog.Record) error {
	fields := make(Fields, record.NumAttrs())
	record.Attrs(func(attr slog.Attr) bool {
		h.addAttr(fields, attr)
		return true
	})
	h.logger.log(demote(record.Level), record.Message, fields)
	return nil
}

func (h *slogHandler) addAttr(fields Fields, attr slog.Attr) {
	key := attr.Key
	if h.group != "" {
		key = h.group + "." + key
	}
	value := attr.Value.Resolve()
	if err, ok := value.Any().(error); ok {
		fields[key] = err.Error()
		return
	}
	fields[key] = value.Any()
}

func (h *slogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	fields := make(Fields, len(attrs))
	for _, attr := range attrs {
		h.addAttr(fields, attr)
	}
	return &slogHandler{logger: h.logger.With(fields), group: h.group}
}

func (h *slogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &slogHandler{logger: h.logger, group: group}
}
