package cli

import (
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/jmes/jmespath"
	"github.com/ardnew/jmes/log"
)

// resolve returns a [kong.ConfigurationLoader] for YAML (or JSON) config
// files. The loader selects the top-level member called section by searching
// the document with section as a quoted-identifier query.
//
// Members of the section are matched to flags by name:
//   - underscores and hyphens are interchangeable ("log_level" sets
//     --log-level)
//   - nested objects join their keys with hyphens, so
//     `log: {level: debug}` also sets --log-level
//   - numbers become their decimal text, since kong parses flag values
//     from strings
//
// Example config file:
//
//	config:
//	  log:
//	    level: debug
//	    pretty: false
//	  output: yaml
//	  indent: 4
//
// Command-line flags override config file values. A config file that cannot
// be parsed is reported at warn level and otherwise ignored.
func resolve(section string) kong.ConfigurationLoader {
	query := jmespath.MustCompile(strconv.Quote(section))

	return func(r io.Reader) (kong.Resolver, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			log.Warn("read configuration", log.Err(err))

			return config{}, nil
		}

		doc, err := jmespath.ParseYAML(data)
		if err != nil {
			log.Warn("parse configuration", log.Err(err))

			return config{}, nil
		}

		sec, err := query.Search(doc)
		if err != nil || sec.Kind() != jmespath.KindObject {
			log.Debug("configuration section not found",
				slog.String("section", section),
			)

			return config{}, nil
		}

		cfg := config{}
		cfg.load("", sec)

		return cfg, nil
	}
}

// config implements [kong.Resolver] over a flattened config section. Keys
// are stored in flag form (hyphen-separated).
type config map[string]any

// load adds the members of obj to c, prefixing each key with prefix.
func (c config) load(prefix string, obj *jmespath.Value) {
	for key, val := range obj.Fields() {
		key = prefix + flagName(key)

		if val.Kind() == jmespath.KindObject {
			c.load(key+"-", val)

			continue
		}

		c[key] = flagValue(val)
	}
}

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// flagValue converts v into a form kong accepts for a flag value.
func flagValue(v *jmespath.Value) any {
	switch v.Kind() {
	case jmespath.KindNumber:
		return strconv.FormatFloat(v.Number(), 'f', -1, 64)

	case jmespath.KindArray:
		items := make([]any, 0, v.Len())
		for _, item := range v.Items() {
			items = append(items, flagValue(item))
		}

		return items

	default:
		return v.Native()
	}
}

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver]. It returns nil for flags the config
// does not set, letting kong apply defaults.
func (c config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := c[flagName(flag.Name)]; ok {
		return value, nil
	}

	return nil, nil
}
