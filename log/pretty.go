package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used to render records for a terminal.
// Styles built from a renderer bound to a non-terminal writer render plain
// text.
type palette struct {
	key, str, num, yes, no, dur, when, null lipgloss.Style
	level                                   map[Level]lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }

	return &palette{
		key:  fg("8"),
		str:  fg("6"),
		num:  fg("3"),
		yes:  fg("2"),
		no:   fg("1"),
		dur:  fg("5"),
		when: fg("4"),
		null: fg("8"),
		level: map[Level]lipgloss.Style{
			LevelTrace: fg("8"),
			LevelDebug: fg("4"),
			LevelInfo:  fg("2"),
			LevelWarn:  fg("3"),
			LevelError: fg("1").Bold(true),
		},
	}
}

func (p *palette) levelName(l slog.Level) string {
	name := Level(l).String()

	style, ok := p.level[Level(l)]
	if !ok {
		switch {
		case l >= slog.LevelError:
			style = p.level[LevelError]
		case l >= slog.LevelWarn:
			style = p.level[LevelWarn]
		default:
			style = p.level[LevelInfo]
		}
	}

	return style.Render(name)
}

// value renders a resolved attribute value without quotes.
func (p *palette) value(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return p.str.Render(v.String())

	case slog.KindInt64:
		return p.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return p.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return p.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return p.yes.Render("true")
		}

		return p.no.Render("false")

	case slog.KindDuration:
		return p.dur.Render(v.Duration().String())

	case slog.KindTime:
		return p.when.Render(v.Time().String())

	case slog.KindAny:
		switch a := v.Any().(type) {
		case nil:
			return p.null.Render("null")
		case slog.Level:
			return p.levelName(a)
		case error:
			return p.no.Render(a.Error())
		}
	}

	return p.str.Render(v.String())
}

// prettyHandler carries the state shared by both pretty handlers.
type prettyHandler struct {
	opts       slog.HandlerOptions
	mu         *sync.Mutex
	w          io.Writer
	style      *palette
	formatTime FormatTime
	prefix     string      // dotted group path
	attrs      []slog.Attr // from WithAttrs, already qualified by prefix
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

// flatten resolves a and appends it to out with group keys joined by dots.
func (h *prettyHandler) flatten(out []slog.Attr, prefix string, a slog.Attr) []slog.Attr {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return out
	}

	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			out = h.flatten(out, key, ga)
		}

		return out
	}

	return append(out, slog.Attr{Key: key, Value: a.Value})
}

// fields returns the header fields of r followed by its attributes.
func (h *prettyHandler) fields(r slog.Record) (head, body []slog.Attr) {
	if !r.Time.IsZero() {
		if ts := h.formatTime(r.Time); ts != "" {
			head = append(head, slog.String(slog.TimeKey, ts))
		}
	}

	head = append(head, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			head = append(head, slog.String(slog.SourceKey, src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	head = append(head, slog.String(slog.MessageKey, r.Message))

	body = append(body, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		body = h.flatten(body, h.prefix, a)

		return true
	})

	return head, body
}

func (h *prettyHandler) write(buf *bytes.Buffer) error {
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) withAttrs(attrs []slog.Attr) *prettyHandler {
	c := *h
	c.attrs = append([]slog.Attr(nil), h.attrs...)

	for _, a := range attrs {
		c.attrs = h.flatten(c.attrs, h.prefix, a)
	}

	return &c
}

func (h *prettyHandler) withGroup(name string) *prettyHandler {
	c := *h
	if name == "" {
		return &c
	}

	if c.prefix != "" {
		c.prefix += "."
	}

	c.prefix += name

	return &c
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) *prettyHandler {
	if formatTime == nil {
		formatTime = makeFormatTimeFunc(DefaultTimeLayout)
	}

	return &prettyHandler{
		opts:       *opts,
		mu:         &sync.Mutex{},
		w:          w,
		style:      newPalette(w),
		formatTime: formatTime,
	}
}

// prettyTextHandler renders each record on one line of key=value pairs.
type prettyTextHandler struct{ *prettyHandler }

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) *prettyTextHandler {
	return &prettyTextHandler{newPrettyHandler(w, opts, formatTime)}
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	head, body := h.fields(r)

	var buf bytes.Buffer

	for _, a := range append(head, body...) {
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.style.key.Render(a.Key))
		buf.WriteByte('=')
		buf.WriteString(h.style.value(a.Value))
	}

	return h.write(&buf)
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyTextHandler{h.withAttrs(attrs)}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	return &prettyTextHandler{h.withGroup(name)}
}

// prettyJSONHandler renders each record as an indented object with
// unquoted values.
type prettyJSONHandler struct{ *prettyHandler }

func newPrettyJSONHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) *prettyJSONHandler {
	return &prettyJSONHandler{newPrettyHandler(w, opts, formatTime)}
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	head, body := h.fields(r)
	all := append(head, body...)

	lines := make([]string, len(all))
	for i, a := range all {
		lines[i] = "  " + h.style.key.Render(a.Key) + ": " + h.style.value(a.Value)
	}

	var buf bytes.Buffer

	buf.WriteString("{\n")
	buf.WriteString(strings.Join(lines, ",\n"))
	buf.WriteString("\n}")

	return h.write(&buf)
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyJSONHandler{h.withAttrs(attrs)}
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	return &prettyJSONHandler{h.withGroup(name)}
}
