// Package storage keeps saved games and player preferences in a BadgerDB
// database.
package storage

import (
	"os"
	"path/filepath"
)

// DatabaseDir returns the default database directory, creating it if
// needed: $XDG_DATA_HOME/gbachess/db, else the user config directory.
func DatabaseDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		var err error
		if base, err = os.UserConfigDir(); err != nil {
			return "", err
		}
	}
	dir := filepath.Join(base, "gbachess", "db")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
