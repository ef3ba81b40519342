package logger

import (
	"context"
	"log/slog"

	"github.com/coreos/go-systemd/v22/journal"
)

// journalHandler writes records directly to the systemd journal over
// its datagram socket. It degrades to the terminal handler (pterm or
// plain JSON on stdout, as createTerminalHandler decides) if the
// journal socket isn't reachable - a --systemd run outside of
// systemd (e.g. under a plain shell during development) should still
// produce readable logs instead of silently dropping them.
type journalHandler struct {
	level slog.Level
	attrs []slog.Attr
}

func newJournalHandler(level slog.Level) slog.Handler {
	if !journal.Enabled() {
		return createTerminalHandler(level)
	}
	return &journalHandler{level: level}
}

func (h *journalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *journalHandler) Handle(_ context.Context, record slog.Record) error {
	vars := make(map[string]string, record.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		vars[journalFieldName(a.Key)] = a.Value.String()
	}
	record.Attrs(func(a slog.Attr) bool {
		vars[journalFieldName(a.Key)] = a.Value.String()
		return true
	})

	return journal.Send(record.Message, journalPriority(record.Level), vars)
}

func (h *journalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &journalHandler{level: h.level, attrs: merged}
}

func (h *journalHandler) WithGroup(name string) slog.Handler {
	return h
}

func journalPriority(level slog.Level) journal.Priority {
	switch {
	case level >= slog.LevelError:
		return journal.PriErr
	case level >= slog.LevelWarn:
		return journal.PriWarning
	case level >= slog.LevelInfo:
		return journal.PriInfo
	default:
		return journal.PriDebug
	}
}

// journalFieldName upper-cases a slog attribute key into the
// journal's required SD_JOURNAL_FIELD format (letters, digits,
// underscore, must not start with a digit).
func journalFieldName(key string) string {
	out := make([]byte, 0, len(key)+1)
	if len(key) > 0 && key[0] >= '0' && key[0] <= '9' {
		out = append(out, '_')
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z':
			out = append(out, c-('a'-'A'))
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
