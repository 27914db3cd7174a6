package cmd

import (
	"context"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/jmes/log"
	"github.com/ardnew/jmes/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// ignoredFlags are flag name prefixes never written to the config file.
var ignoredFlags = []string{"help", "version", profile.Tag}

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := yaml.MarshalWithOptions(
		i.document(ktx),
		yaml.Indent(defaultConfigIndent),
		yaml.IndentSequence(true),
	)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(ErrYAMLMarshal.Wrap(err))
	}

	err = os.WriteFile(confPath, data, 0o600)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// document builds the config file contents: a single section named
// [ConfigIdentifier] mapping flag names to their current values.
func (i *Init) document(ktx *kong.Context) yaml.MapSlice {
	var entries yaml.MapSlice

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignoredFlags, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if val := flagValue(ktx.FlagValue(flag)); val != nil {
			entries = append(entries, yaml.MapItem{Key: flag.Name, Value: val})
		}
	}

	return yaml.MapSlice{{Key: ConfigIdentifier, Value: entries}}
}

// flagValue converts a parsed flag value into a YAML scalar or sequence,
// or nil if the value is unset. Named types (such as the log level) are
// reduced to their underlying kind.
func flagValue(val any) any {
	if val == nil {
		return nil
	}

	v := reflect.ValueOf(val)

	switch v.Kind() {
	case reflect.Bool:
		return v.Bool()

	case reflect.String:
		if v.Len() == 0 {
			return nil
		}

		return v.String()

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()

	case reflect.Float32, reflect.Float64:
		return v.Float()

	case reflect.Slice:
		if v.Len() == 0 {
			return nil
		}

		items := make([]any, 0, v.Len())
		for j := range v.Len() {
			if item := flagValue(v.Index(j).Interface()); item != nil {
				items = append(items, item)
			}
		}

		return items

	default:
		return nil
	}
}
