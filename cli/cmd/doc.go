// Package cmd implements the jmes sub-commands: search (the default), ast,
// funcs, init, and repl.
//
// Commands receive their kong context, standard streams, and input sources
// through [context.Context] values installed by the cli package.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
