package cli

import (
	"os"
	"path/filepath"

	"github.com/ardnew/jmes/pkg"
)

// baseConfig is the name of the config file section read by [resolve] and
// written by the init command.
const baseConfig = "config"

// configFile is the base name of the YAML config file.
const configFile = baseConfig + ".yaml"

// defaultDirMode is the permission mode for created directories.
var defaultDirMode os.FileMode = 0o700

// configPath returns the path formed by joining the config directory with
// elem. With no elements it returns the config directory itself.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// cacheDir returns the directory for transient files.
func cacheDir() string { return pkg.CacheDir() }

// mkdirAllRequired creates the config and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
