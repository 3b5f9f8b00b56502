package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

var (
	debugBin  = regexp.MustCompile(`^__debug_bin\d+$`)
	leadingDt = regexp.MustCompile(`^\.+`)
)

// Prefix returns the base name of the running executable, without extension
// or leading dots. A delve debug binary is reported as [Name].
var Prefix = sync.OnceValue(func() string {
	id := os.Args[0]
	if exe, err := os.Executable(); err == nil {
		id = exe
	}

	id = filepath.Base(id)
	id = strings.TrimSuffix(id, filepath.Ext(id))
	id = debugBin.ReplaceAllString(id, Name)
	id = leadingDt.ReplaceAllString(id, "")

	if id == "" {
		return Name
	}

	return id
})

// ConfigDir returns the per-user configuration directory.
var ConfigDir = sync.OnceValue(func() string {
	return userDir(os.UserConfigDir, ".config")
})

// CacheDir returns the per-user cache directory. It holds the REPL history
// and profiling output.
var CacheDir = sync.OnceValue(func() string {
	return userDir(os.UserCacheDir, ".cache")
})

// ConfigPath joins elem onto [ConfigDir].
func ConfigPath(elem ...string) string {
	return filepath.Join(append([]string{ConfigDir()}, elem...)...)
}

// CachePath joins elem onto [CacheDir].
func CachePath(elem ...string) string {
	return filepath.Join(append([]string{CacheDir()}, elem...)...)
}

// userDir resolves a directory from the OS convention, falling back to a
// dot directory in $HOME and finally the working directory.
func userDir(system func() (string, error), dot string) string {
	dir, err := system()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(home, dot)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, Prefix())
}
