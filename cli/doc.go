// Package cli contains the command line interface for jmes.
//
// # Usage
//
// The default command searches each input document with a JMESPath
// expression and prints one result per document:
//
//	jmes 'items[?state == `running`].name' a.json b.yaml
//	kubectl get pods -o json | jmes -r 'items[0].metadata.name'
//
// Other commands print an expression's tree (ast), list the available
// functions (funcs), start an interactive session (repl), and write the
// current flag values to the configuration file (init).
//
// # Configuration
//
// Flag defaults are read from the "config" section of a YAML file in the
// user configuration directory, ~/.config/jmes/config.yaml on Linux. Keys
// name long flags; nested mappings are joined with hyphens, so
//
//	config:
//	  log:
//	    level: debug
//
// sets --log-level=debug. Underscores in keys are read as hyphens. The file
// is optional and an unreadable file is ignored with a warning.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --[no-]log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize log output on a terminal
//
// Logging flags take effect before the command line is parsed, so they
// apply to parse errors as well.
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o jmes .
//
//   - --pprof-mode: Enable profiling (block, clock, cpu, goroutine, mem,
//     mutex, thread, trace, ...)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/jmes/pprof)
package cli
