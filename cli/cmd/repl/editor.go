package repl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/jmes/jmespath"
	"github.com/ardnew/jmes/log"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand] for the document
// edit-parse-retry loop. It writes the current document as indented JSON
// to a temp file, opens the user's editor, and parses the result as JSON or
// YAML. On a parse error the user is asked whether to edit again.
type editCommand struct {
	doc     *jmespath.Value
	ctxFunc func() context.Context
	newDoc  *jmespath.Value
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-parse-retry loop. An emptied file cancels the edit.
// If the user declines to edit again after a parse error, Run returns
// [ErrEditDeclined].
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()

	var buf bytes.Buffer
	if err := json.Indent(&buf, c.doc.AppendJSON(nil), "", "  "); err != nil {
		return fmt.Errorf("format document: %w", err)
	}

	f, err := os.CreateTemp("", "jmes-repl-*.json")
	if err != nil {
		return err
	}

	tmpPath := f.Name()
	f.Close()

	defer os.Remove(tmpPath)

	content := buf.Bytes()

	for {
		if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath); err != nil {
			return err
		}

		data, err := os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}

		doc, parseErr := parseDocument(data)
		c.logger.TraceContext(ctx, "editor parse attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", parseErr == nil),
		)

		if parseErr == nil {
			c.newDoc = doc

			return nil
		}

		fmt.Fprintf(c.stderr, "\nParse error: %s\n", parseErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}

		content = data
	}
}

// parseDocument parses data as JSON, falling back to YAML.
func parseDocument(data []byte) (*jmespath.Value, error) {
	doc, err := jmespath.ParseJSON(data)
	if err == nil {
		return doc, nil
	}

	return jmespath.ParseYAML(data)
}

// runEditor runs $EDITOR (or vi) on path and waits for it to exit.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	args := strings.Fields(os.Getenv("EDITOR"))
	if len(args) == 0 {
		args = []string{defaultEditor}
	}

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
