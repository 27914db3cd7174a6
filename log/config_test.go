package log

import (
	"bytes"
	"io"
	"slices"
	"testing"
	"time"
)

func TestOptions(t *testing.T) {
	var buf bytes.Buffer

	tests := []struct {
		name  string
		opt   Option
		check func(config) bool
	}{
		{"level", WithLevel(LevelWarn), func(c config) bool { return c.level == LevelWarn }},
		{"format", WithFormat(FormatText), func(c config) bool { return c.format == FormatText }},
		{"caller", WithCaller(true), func(c config) bool { return c.caller }},
		{"pretty", WithPretty(false), func(c config) bool { return !c.pretty }},
		{"output", WithOutput(&buf), func(c config) bool { return c.output == &buf }},
		{"nil output", WithOutput(nil), func(c config) bool { return c.output == io.Discard }},
		{"defaults", WithDefaults(nil), func(c config) bool {
			return c.output == io.Discard && c.level == DefaultLevel &&
				c.format == DefaultFormat && c.pretty == DefaultPretty
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.opt(config{})

			if c.mutex == nil {
				t.Error("option left config without a mutex")
			}

			if !tt.check(c) {
				t.Errorf("option not applied: %+v", c)
			}
		})
	}
}

func TestConfig_CloneIsIndependent(t *testing.T) {
	base := makeConfig(nil, WithLevel(LevelDebug))
	dup := base.clone(WithLevel(LevelError))

	if base.mutex == dup.mutex {
		t.Error("clone shares the mutex")
	}

	if base.level != LevelDebug || dup.level != LevelError {
		t.Errorf("levels = %v/%v", base.level, dup.level)
	}
}

func TestConfig_FormatTime(t *testing.T) {
	at := time.Date(2024, 3, 9, 8, 7, 6, 5004003, time.UTC)

	tests := []struct {
		layout string
		want   string
	}{
		{"RFC3339", "2024-03-09T08:07:06Z"},
		{"rfc3339-nano", "2024-03-09T08:07:06.005004003Z"},
		{"kitchen", "8:07AM"},
		{"ms", "Mar  9 08:07:06.005"},
		{"2006/01/02", "2024/03/09"},
		{"none", ""},
		{" \t", ""},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			c := WithTimeLayout(tt.layout)(config{})

			if got := c.formatTime(at); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"json":   FormatJSON,
		" TEXT ": FormatText,
		"yaml":   DefaultFormat,
	}

	for in, want := range tests {
		if got := ParseFormat(in); got != want {
			t.Errorf("ParseFormat(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNames(t *testing.T) {
	levels := slices.Collect(Levels())
	if want := []string{"trace", "debug", "info", "warn", "error"}; !slices.Equal(levels, want) {
		t.Errorf("Levels() = %v, want %v", levels, want)
	}

	formats := slices.Collect(Formats())
	if want := []string{"json", "text"}; !slices.Equal(formats, want) {
		t.Errorf("Formats() = %v, want %v", formats, want)
	}
}
