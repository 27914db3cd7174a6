package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// plain returns a logger writing unstyled records without timestamps.
func plain(w io.Writer, opts ...Option) Logger {
	base := []Option{WithTimeLayout("none"), WithPretty(false)}

	return Make(w, append(base, opts...)...)
}

func decode(t *testing.T, b []byte) map[string]any {
	t.Helper()

	var rec map[string]any
	if err := json.Unmarshal(b, &rec); err != nil {
		t.Fatalf("record %q: %v", b, err)
	}

	return rec
}

func TestMake_Defaults(t *testing.T) {
	logger := Make(&bytes.Buffer{})

	if logger.Level() != DefaultLevel {
		t.Errorf("level = %v, want %v", logger.Level(), DefaultLevel)
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("format = %v, want %v", logger.Format(), DefaultFormat)
	}

	if logger.caller != DefaultCaller || logger.pretty != DefaultPretty {
		t.Errorf("caller/pretty = %v/%v", logger.caller, logger.pretty)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name   string
		min    Level
		emit   func(Logger, string, ...slog.Attr)
		logged bool
	}{
		{"trace below debug", LevelDebug, Logger.Trace, false},
		{"trace at trace", LevelTrace, Logger.Trace, true},
		{"debug below info", LevelInfo, Logger.Debug, false},
		{"info at info", LevelInfo, Logger.Info, true},
		{"warn below error", LevelError, Logger.Warn, false},
		{"error at warn", LevelWarn, Logger.Error, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.emit(plain(&buf, WithLevel(tt.min)), "search")

			if got := buf.Len() > 0; got != tt.logged {
				t.Errorf("logged = %v, want %v: %q", got, tt.logged, buf.String())
			}
		})
	}
}

func TestLogger_LevelNames(t *testing.T) {
	var buf bytes.Buffer

	logger := plain(&buf, WithLevel(LevelTrace))
	logger.Trace("lexed", slog.Int("tokens", 7))

	rec := decode(t, buf.Bytes())
	if rec["level"] != "TRACE" {
		t.Errorf("level = %v, want TRACE", rec["level"])
	}

	if rec["tokens"] != float64(7) {
		t.Errorf("tokens = %v, want 7", rec["tokens"])
	}
}

func TestLogger_Formats(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer

		plain(&buf, WithFormat(FormatJSON)).Info("query compiled", slog.String("expr", "a.b"))

		rec := decode(t, buf.Bytes())
		if rec["msg"] != "query compiled" || rec["expr"] != "a.b" {
			t.Errorf("record = %v", rec)
		}

		if _, ok := rec["time"]; ok {
			t.Errorf("time present with layout none: %v", rec)
		}
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer

		plain(&buf, WithFormat(FormatText)).Info("query compiled", slog.String("expr", "a.b"))

		want := `level=INFO msg="query compiled" expr=a.b`
		if got := strings.TrimSpace(buf.String()); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})
}

func TestLogger_Caller(t *testing.T) {
	for _, enable := range []bool{true, false} {
		var buf bytes.Buffer

		plain(&buf, WithCaller(enable)).Info("evaluated")

		if got := strings.Contains(buf.String(), `"source"`); got != enable {
			t.Errorf("caller %v: source present = %v", enable, got)
		}
	}
}

func TestLogger_WithAndWrap(t *testing.T) {
	var buf bytes.Buffer

	base := plain(&buf).With(slog.String("file", "data.json"))
	base.Warn("search failed", Err(errors.New("invalid-type")))

	rec := decode(t, buf.Bytes())
	if rec["file"] != "data.json" || rec["error"] != "invalid-type" {
		t.Errorf("record = %v", rec)
	}

	wrapped := base.Wrap(WithLevel(LevelError))
	if wrapped.Level() != LevelError {
		t.Errorf("wrapped level = %v, want error", wrapped.Level())
	}

	if base.Level() != DefaultLevel {
		t.Errorf("Wrap changed receiver level to %v", base.Level())
	}

	if wrapped.Format() != base.Format() {
		t.Errorf("wrapped format = %v, want %v", wrapped.Format(), base.Format())
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var l Logger

	l.Trace("x")
	l.Info("x")
	l.ErrorContext(context.Background(), "x")

	if l.With(slog.Int("n", 1)).Logger != nil {
		t.Error("With on zero logger allocated a handler")
	}

	if l.Level() != DefaultLevel || l.Format() != DefaultFormat {
		t.Errorf("zero logger reports %v/%v", l.Level(), l.Format())
	}

	if w := l.Wrap(WithLevel(LevelDebug)); w.Level() != LevelDebug {
		t.Errorf("Wrap on zero logger: level %v", w.Level())
	}
}

func TestLogger_ContextMethods(t *testing.T) {
	ctx := context.Background()

	methods := map[string]func(Logger){
		"trace": func(l Logger) { l.TraceContext(ctx, "ctx") },
		"debug": func(l Logger) { l.DebugContext(ctx, "ctx") },
		"info":  func(l Logger) { l.InfoContext(ctx, "ctx") },
		"warn":  func(l Logger) { l.WarnContext(ctx, "ctx") },
		"error": func(l Logger) { l.ErrorContext(ctx, "ctx") },
	}

	for name, call := range methods {
		var buf bytes.Buffer

		call(plain(&buf, WithLevel(LevelTrace)))

		rec := decode(t, buf.Bytes())
		if rec["level"] != strings.ToUpper(name) {
			t.Errorf("%s: level = %v", name, rec["level"])
		}
	}
}

func TestLogger_Concurrent(t *testing.T) {
	var (
		buf bytes.Buffer
		mu  sync.Mutex
		wg  sync.WaitGroup
	)

	logger := plain(&lockedBuffer{buf: &buf, mu: &mu})

	const n = 64

	for i := range n {
		wg.Add(1)

		go func() {
			defer wg.Done()

			logger.Info("cached", slog.Int("id", i))
		}()
	}

	wg.Wait()

	if lines := strings.Count(buf.String(), "\n"); lines != n {
		t.Errorf("got %d records, want %d", lines, n)
	}
}

type lockedBuffer struct {
	buf *bytes.Buffer
	mu  *sync.Mutex
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func TestPackage_DefaultLogger(t *testing.T) {
	original := Default()

	t.Cleanup(func() {
		defaultMutex.Lock()
		defaultLog = original
		defaultMutex.Unlock()
	})

	var buf bytes.Buffer

	Config(WithOutput(&buf), WithLevel(LevelTrace), WithPretty(false), WithTimeLayout("none"))

	ctx := context.Background()
	calls := []struct {
		level string
		emit  func()
	}{
		{"TRACE", func() { Trace("pkg") }},
		{"DEBUG", func() { Debug("pkg") }},
		{"INFO", func() { Info("pkg") }},
		{"WARN", func() { Warn("pkg") }},
		{"ERROR", func() { Error("pkg") }},
		{"TRACE", func() { TraceContext(ctx, "pkg") }},
		{"DEBUG", func() { DebugContext(ctx, "pkg") }},
		{"INFO", func() { InfoContext(ctx, "pkg") }},
		{"WARN", func() { WarnContext(ctx, "pkg") }},
		{"ERROR", func() { ErrorContext(ctx, "pkg") }},
		{"INFO", func() { With(slog.String("k", "v")).Info("pkg") }},
	}

	for _, c := range calls {
		buf.Reset()
		c.emit()

		rec := decode(t, buf.Bytes())
		if rec["level"] != c.level || rec["msg"] != "pkg" {
			t.Errorf("record = %v, want level %s", rec, c.level)
		}
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	var buf bytes.Buffer

	logger := Make(&buf).With(slog.String("component", "cache"))

	for i := 0; b.Loop(); i++ {
		buf.Reset()
		logger.Info("hit", slog.Int("n", i))
	}
}
