package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/jmes/jmespath"
	"github.com/ardnew/jmes/pkg"
)

// Input formats.
const (
	inputAuto = "auto"
	inputJSON = "json"
	inputYAML = "yaml"
)

// Output formats.
const (
	outputJSON = "json"
	outputYAML = "yaml"
)

// decode reads all of r and parses it as format. The auto format tries JSON
// first and falls back to YAML.
func decode(r io.Reader, format string) (*jmespath.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, pkg.ErrReadInput.Wrap(err)
	}

	var doc *jmespath.Value

	switch format {
	case inputJSON:
		doc, err = jmespath.ParseJSON(data)

	case inputYAML:
		doc, err = jmespath.ParseYAML(data)

	case inputAuto, "":
		doc, err = jmespath.ParseJSON(data)
		if err != nil {
			doc, err = jmespath.ParseYAML(data)
		}

	default:
		return nil, pkg.ErrInvalidFormat.Wrapf("input %q", format)
	}

	if err != nil {
		return nil, pkg.ErrDecodeInput.Wrap(err)
	}

	return doc, nil
}

// encoder writes search results.
type encoder struct {
	format  string
	indent  int
	compact bool
	raw     bool
}

// encode writes v to w followed by a newline.
func (e encoder) encode(w io.Writer, v *jmespath.Value) error {
	var (
		out []byte
		err error
	)

	switch {
	case e.raw && v.Kind() == jmespath.KindString:
		out = []byte(v.Str())

	case e.format == outputYAML:
		out, err = yaml.MarshalWithOptions(v,
			yaml.Indent(max(e.indent, 1)),
			yaml.IndentSequence(true),
		)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		out = bytes.TrimSuffix(out, []byte("\n"))

	case e.format == outputJSON || e.format == "":
		out = v.AppendJSON(nil)

		if !e.compact && e.indent > 0 {
			var buf bytes.Buffer

			err = json.Indent(&buf, out, "", spaces(e.indent))
			if err != nil {
				return ErrJSONMarshal.Wrap(err)
			}

			out = buf.Bytes()
		}

	default:
		return pkg.ErrInvalidFormat.Wrapf("output %q", e.format)
	}

	_, err = w.Write(append(out, '\n'))
	if err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("format", e.format))
	}

	return nil
}

func spaces(n int) string {
	return string(bytes.Repeat([]byte{' '}, n))
}
