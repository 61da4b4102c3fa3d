package main

import (
	"testing"

	"github.com/bsumner2/gbachess/internal/storage"
	"github.com/bsumner2/gbachess/internal/testutil"
)

func TestRunCleansUpOnError(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.DBDir = dir
	cfg.HashMB = 7
	cfg.Difficulty = "impossible"

	err := run(cfg, map[string]bool{"hash": true, "difficulty": true})
	if err == nil {
		t.Fatal("run accepted an unknown difficulty")
	}

	// The database lock is only released by Close, and the preferences
	// are only written by the deferred save.
	store, err := storage.Open(dir)
	testutil.AssertNoError(t, err, "reopening the database")
	defer store.Close()

	prefs, err := store.LoadPreferences()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, prefs.HashMB, 7)
}

func TestRunListsGames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DBDir = t.TempDir()
	cfg.List = true

	testutil.AssertNoError(t, run(cfg, map[string]bool{}))
}

func TestRunDeleteMissingGame(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DBDir = t.TempDir()
	cfg.Delete = 42

	testutil.AssertErrorIs(t, run(cfg, map[string]bool{}), storage.ErrGameNotFound)
}
