package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

type Options struct {
	Level      slog.Leveler
	TimeFormat string
}

var DefaultOptions = &Options{
	Level:      slog.LevelInfo,
	TimeFormat: time.StampMilli,
}

type requestIDKey struct{}

// WithRequestID tags ctx so every record logged with it carries the id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

func Err(err error) slog.Attr {
	return slog.Any("error", err)
}

type handler struct {
	w      io.Writer
	mu     *sync.Mutex
	opts   Options
	attrs  []slog.Attr
	groups []string
}

func NewHandler(w io.Writer, opts *Options) slog.Handler {
	if opts == nil {
		opts = DefaultOptions
	}
	return &handler{w: w, mu: &sync.Mutex{}, opts: *opts}
}

func (h *handler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *handler) Handle(ctx context.Context, r slog.Record) error {
	var sb strings.Builder

	if !r.Time.IsZero() {
		sb.WriteString(color.HiBlackString(r.Time.Format(h.opts.TimeFormat)))
		sb.WriteByte(' ')
	}
	sb.WriteString(levelString(r.Level))
	sb.WriteByte(' ')
	sb.WriteString(r.Message)

	prefix := groupPrefix(h.groups)
	if id, ok := RequestID(ctx); ok {
		writeAttr(&sb, "", slog.String("request_id", id))
	}
	for _, a := range h.attrs {
		writeAttr(&sb, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, prefix, a)
		return true
	})
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, sb.String())
	return err
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefix := groupPrefix(h.groups)
	nh := *h
	nh.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		a.Key = prefix + a.Key
		nh.attrs = append(nh.attrs, a)
	}
	return &nh
}

func (h *handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	nh.groups = append(append([]string{}, h.groups...), name)
	return &nh
}

func groupPrefix(groups []string) string {
	if len(groups) == 0 {
		return ""
	}
	return strings.Join(groups, ".") + "."
}

func writeAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(sb, prefix+a.Key+".", ga)
		}
		return
	}

	sb.WriteByte(' ')
	sb.WriteString(color.CyanString(prefix + a.Key))
	sb.WriteByte('=')

	value := a.Value.String()
	if a.Key == "error" {
		sb.WriteString(color.RedString("%q", value))
		return
	}
	if strings.ContainsAny(value, " \t\n\"=") {
		value = fmt.Sprintf("%q", value)
	}
	sb.WriteString(value)
}

func levelString(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return color.New(color.FgRed, color.Bold).Sprint("ERROR")
	case level >= slog.LevelWarn:
		return color.YellowString("WARN ")
	case level >= slog.LevelInfo:
		return color.GreenString("INFO ")
	default:
		return color.MagentaString("DEBUG")
	}
}
