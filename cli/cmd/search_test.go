package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func runSearch(t *testing.T, s Search, stdin string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	ctx := WithStdio(context.Background(), strings.NewReader(stdin), &out)

	if s.Output == "" {
		s.Output = outputJSON
	}

	err := s.Run(ctx)

	return out.String(), err
}

func TestSearchRun(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{"items":[{"n":1},{"n":2}]}`)
	b := writeFile(t, dir, "b.yaml", "items:\n  - n: 3\n")

	tests := []struct {
		name   string
		search Search
		stdin  string
		want   string
	}{
		{
			name:   "stdin",
			search: Search{Expression: "items[*].n", Compact: true},
			stdin:  `{"items":[{"n":5}]}`,
			want:   "[5]\n",
		},
		{
			name:   "files in order then stdin",
			search: Search{Expression: "items[0].n", Files: []string{"-", a, b}},
			stdin:  `{"items":[{"n":9}]}`,
			want:   "1\n3\n9\n",
		},
		{
			name:   "raw",
			search: Search{Expression: "name", Raw: true},
			stdin:  "name: jmes\n",
			want:   "jmes\n",
		},
		{
			name:   "expr extension",
			search: Search{Registry: registryFlags{Expr: true}, Expression: "expr('a * 2', @)"},
			stdin:  `{"a":21}`,
			want:   "42\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runSearch(t, tt.search, tt.stdin)
			if err != nil {
				t.Fatalf("Search.Run() error = %v", err)
			}

			if got != tt.want {
				t.Errorf("Search.Run() output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSearchRunErrors(t *testing.T) {
	tests := []struct {
		name    string
		search  Search
		stdin   string
		wantErr error
	}{
		{"compile", Search{Expression: "foo."}, `{}`, ErrCompile},
		{"expr disabled", Search{Expression: "expr('1', @)"}, `{}`, ErrSearch},
		{"runtime", Search{Expression: "abs('x')"}, `{}`, ErrSearch},
		{"decode", Search{Expression: "@", Input: inputJSON}, `{`, ErrReadInput},
		{"missing file", Search{Expression: "@", Files: []string{"/nonexistent/x.json"}}, ``, ErrReadInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runSearch(t, tt.search, tt.stdin)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Search.Run() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestASTRun(t *testing.T) {
	var out bytes.Buffer

	ctx := WithStdio(context.Background(), nil, &out)

	err := (&AST{Indent: 2, Expression: "foo.bar"}).Run(ctx)
	if err != nil {
		t.Fatalf("AST.Run() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{`Field "foo"`, `  right: Field "bar"`} {
		if !strings.Contains(got, want) {
			t.Errorf("AST.Run() output missing %q:\n%s", want, got)
		}
	}

	err = (&AST{Expression: "["}).Run(ctx)
	if !errors.Is(err, ErrCompile) {
		t.Errorf("AST.Run() error = %v, want %v", err, ErrCompile)
	}
}

func TestFuncsRun(t *testing.T) {
	tests := []struct {
		name  string
		funcs Funcs
		check func(t *testing.T, lines []string)
	}{
		{
			name:  "all sorted",
			funcs: Funcs{},
			check: func(t *testing.T, lines []string) {
				if len(lines) < 26 {
					t.Fatalf("Funcs.Run() listed %d functions", len(lines))
				}

				if !strings.HasPrefix(lines[0], "abs(") {
					t.Errorf("first function = %q, want abs", lines[0])
				}

				for _, l := range lines {
					if strings.HasPrefix(l, "expr(") {
						t.Errorf("expr listed while disabled")
					}
				}
			},
		},
		{
			name:  "filter",
			funcs: Funcs{Filter: "sort_by"},
			check: func(t *testing.T, lines []string) {
				if len(lines) == 0 || !strings.HasPrefix(lines[0], "sort_by(") {
					t.Errorf("Funcs.Run() = %v, want sort_by first", lines)
				}
			},
		},
		{
			name:  "with expr",
			funcs: Funcs{Registry: registryFlags{Expr: true}, Filter: "expr"},
			check: func(t *testing.T, lines []string) {
				if len(lines) == 0 || !strings.HasPrefix(lines[0], "expr(") {
					t.Errorf("Funcs.Run() = %v, want expr first", lines)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			ctx := WithStdio(context.Background(), nil, &out)

			if err := tt.funcs.Run(ctx); err != nil {
				t.Fatalf("Funcs.Run() error = %v", err)
			}

			tt.check(t, strings.Split(strings.TrimSpace(out.String()), "\n"))
		})
	}
}
