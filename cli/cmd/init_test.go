package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// initContext parses args against cli with the config path var set and
// returns a context carrying the resulting kong.Context.
func initContext(t *testing.T, cli any, confPath string, args ...string) context.Context {
	t.Helper()

	parser, err := kong.New(cli, kong.Vars{ConfigIdentifier: confPath})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(context.Background(), ktx)
}

func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{name: "create_new_config"},
		{name: "overwrite_existing_with_force", force: true, exists: true},
		{name: "fail_without_force", exists: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			confPath := filepath.Join(t.TempDir(), "config.yaml")

			if tt.exists {
				if err := os.WriteFile(confPath, []byte("existing: true\n"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			var cli struct {
				Output string `name:"output"`
			}

			ctx := initContext(t, &cli, confPath, "--output=yaml")

			err := (&Init{Force: tt.force}).Run(ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Init.Run() error = %v, want %v", err, tt.wantErr)
				}

				content, _ := os.ReadFile(confPath)
				if string(content) != "existing: true\n" {
					t.Errorf("Init.Run() modified existing file: %q", content)
				}

				return
			}

			if err != nil {
				t.Fatalf("Init.Run() unexpected error = %v", err)
			}

			content, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var got map[string]map[string]any
			if err := yaml.Unmarshal(content, &got); err != nil {
				t.Fatalf("generated config is not valid YAML: %v\n%s", err, content)
			}

			if v := got[ConfigIdentifier]["output"]; v != "yaml" {
				t.Errorf("config.output = %v, want yaml\n%s", v, content)
			}
		})
	}
}

func TestInitDocument(t *testing.T) {
	t.Parallel()

	var cli struct {
		Verbose bool     `name:"verbose"`
		Output  string   `name:"output"`
		Empty   string   `name:"empty"`
		Count   int      `name:"count"`
		Tags    []string `name:"tags"`
		Secret  string   `hidden:""      name:"secret"`
		Mode    string   `name:"pprof-mode"`
	}

	ctx := initContext(t, &cli, "unused",
		"--verbose", "--output=out.txt", "--count=5", "--tags=a,b",
		"--secret=s", "--pprof-mode=cpu",
	)

	doc := (&Init{}).document(kongContextFrom(ctx))
	if len(doc) != 1 || doc[0].Key != ConfigIdentifier {
		t.Fatalf("document() = %v, want single %q section", doc, ConfigIdentifier)
	}

	entries, ok := doc[0].Value.(yaml.MapSlice)
	if !ok {
		t.Fatalf("document() section has type %T", doc[0].Value)
	}

	got := entries.ToMap()

	want := map[string]any{
		"verbose": true,
		"output":  "out.txt",
		"count":   int64(5),
	}

	for k, v := range want {
		if got[k] != v {
			t.Errorf("document()[%q] = %#v, want %#v", k, got[k], v)
		}
	}

	if tags, ok := got["tags"].([]any); !ok || len(tags) != 2 {
		t.Errorf("document()[tags] = %#v, want two items", got["tags"])
	}

	for _, k := range []string{"empty", "secret", "pprof-mode", "help"} {
		if _, ok := got[k]; ok {
			t.Errorf("document() includes %q", k)
		}
	}
}

func TestFlagValue(t *testing.T) {
	t.Parallel()

	type level string

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"bool", true, true},
		{"string", "x", "x"},
		{"empty string", "", nil},
		{"named string", level("debug"), "debug"},
		{"int", 42, int64(42)},
		{"uint", uint8(7), uint64(7)},
		{"float", 1.5, 1.5},
		{"empty slice", []string{}, nil},
		{"struct", struct{}{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := flagValue(tt.in); got != tt.want {
				t.Errorf("flagValue(%#v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestInitWithInvalidPath(t *testing.T) {
	t.Parallel()

	var cli struct{}

	ctx := initContext(t, &cli, filepath.Join(t.TempDir(), "missing", "config.yaml"))

	if err := (&Init{}).Run(ctx); !errors.Is(err, ErrWriteConfig) {
		t.Errorf("Init.Run() error = %v, want %v", err, ErrWriteConfig)
	}
}
