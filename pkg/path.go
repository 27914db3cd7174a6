package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

var (
	dlvBinary  = regexp.MustCompile(`^__debug_bin\d+$`)
	leadingDot = regexp.MustCompile(`^\.+`)
)

// Prefix returns the base name used for the config and cache directories.
//
// It is the executable's base name without extension, except that the
// default dlv output "__debug_bin<N>" maps to [Name] and leading dots are
// removed.
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		id = filepath.Base(id)
		id = strings.TrimSuffix(id, filepath.Ext(id))
		id = dlvBinary.ReplaceAllString(id, Name)
		id = leadingDot.ReplaceAllString(id, "")

		if id == "" {
			return Name
		}

		return id
	},
)

// ConfigDir returns the directory holding the config file.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string { return userDir(os.UserConfigDir, ".config") },
)

// CacheDir returns the directory used for REPL history and profiles.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string { return userDir(os.UserCacheDir, ".cache") },
)

// userDir joins [Prefix] to the platform directory returned by base, falling
// back to a hidden directory under $HOME and finally the working directory.
func userDir(base func() (string, error), hidden string) string {
	dir, err := base()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(home, hidden)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, Prefix())
}
