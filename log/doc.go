// Package log wraps [log/slog] with the level, format, and styling options
// used across jmes.
//
// A [Logger] is built with [Make] and functional options. The zero Logger
// discards everything, so components such as the query cache and the REPL
// accept one without requiring initialization:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"))
//
//	logger.Trace("query compiled", slog.String("expr", "people[*].name"))
//	logger.Error("search failed", log.Err(err))
//
// # Levels
//
// [LevelTrace] sits below [LevelDebug]. The query engine reports compilation,
// cache lookups, and searches at trace level, so they stay hidden unless
// requested with --log-level=trace.
//
// # Default logger
//
// The package-level functions write through a shared logger that [Config]
// reconfigures in place. Context-unaware variants pass the context returned
// by [DefaultContextProvider].
//
// # Time layouts
//
// [WithTimeLayout] accepts the names of the [time] package layouts, matched
// without regard to case or punctuation ("RFC3339", "rfc3339-nano",
// "kitchen"), short aliases such as "ms" and "ns", or a custom layout. The
// name "none" or a blank layout omits timestamps.
//
// # Pretty output
//
// [WithPretty] (on by default) styles records with lipgloss. Styles are bound
// to the output writer, so redirected output stays plain text.
package log
