// Command gbachess runs the chess engine as a UCI engine on stdin/stdout.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"

	"github.com/bsumner2/gbachess/internal/engine"
	"github.com/bsumner2/gbachess/internal/storage"
	"github.com/bsumner2/gbachess/internal/uci"
)

// Config holds the command-line settings.
type Config struct {
	Depth      int    // fixed search depth, 0 = difficulty preset
	HashMB     int    // transposition table size
	DBDir      string // saved-game database, "" = storage.DatabaseDir
	Difficulty string
	SaveGames  bool
	Resume     uint64 // saved game to continue, 0 = new game
	List       bool
	Delete     uint64
	CPUProfile string
}

// DefaultConfig returns the settings used when no flags are given.
func DefaultConfig() Config {
	return Config{
		HashMB:     1,
		Difficulty: engine.Medium.String(),
	}
}

func parseFlags() (Config, map[string]bool) {
	cfg := DefaultConfig()
	flag.IntVar(&cfg.Depth, "depth", cfg.Depth, "fixed search depth (0 = use difficulty)")
	flag.IntVar(&cfg.HashMB, "hash", cfg.HashMB, "transposition table size in MB")
	flag.StringVar(&cfg.DBDir, "db", cfg.DBDir, "saved-game database directory (default: $XDG_DATA_HOME/gbachess/db)")
	flag.StringVar(&cfg.Difficulty, "difficulty", cfg.Difficulty, "easy, medium or hard")
	flag.BoolVar(&cfg.SaveGames, "save", cfg.SaveGames, "save games to the database")
	flag.Uint64Var(&cfg.Resume, "resume", cfg.Resume, "continue the saved game with this id")
	flag.BoolVar(&cfg.List, "list", cfg.List, "list saved games and exit")
	flag.Uint64Var(&cfg.Delete, "delete", cfg.Delete, "delete the saved game with this id and exit")
	flag.StringVar(&cfg.CPUProfile, "cpuprofile", cfg.CPUProfile, "write cpu profile to file")
	flag.Parse()

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return cfg, set
}

// needsDB reports whether any requested feature uses the database.
func (c Config) needsDB() bool {
	return c.SaveGames || c.Resume != 0 || c.List || c.Delete != 0 || c.DBDir != ""
}

func openStore(dir string) (*storage.Storage, error) {
	if dir == "" {
		return storage.NewStorage()
	}
	return storage.Open(dir)
}

func main() {
	// The UCI protocol owns stdout.
	log.SetOutput(os.Stderr)

	cfg, set := parseFlags()
	if err := run(cfg, set); err != nil {
		log.Fatal(err)
	}
}

// run does the work of main, so its deferred cleanup always runs before
// the process exits.
func run(cfg Config, set map[string]bool) error {
	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := cfg.CPUProfile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	var store *storage.Storage
	if cfg.needsDB() {
		var err error
		store, err = openStore(cfg.DBDir)
		if err != nil {
			return err
		}
		defer store.Close()

		// Stored preferences fill in what the flags leave unset.
		prefs, err := store.LoadPreferences()
		if err != nil {
			log.Printf("Warning: preferences not loaded: %v", err)
			prefs = storage.DefaultPreferences()
		}
		if !set["difficulty"] {
			cfg.Difficulty = prefs.Difficulty
		}
		if !set["hash"] {
			cfg.HashMB = prefs.HashMB
		}
		prefs.Difficulty, prefs.HashMB = cfg.Difficulty, cfg.HashMB
		defer func() {
			if err := store.SavePreferences(prefs); err != nil {
				log.Printf("Warning: preferences not saved: %v", err)
			}
		}()
	}

	switch {
	case cfg.List:
		return listGames(store)
	case cfg.Delete != 0:
		if err := store.DeleteGame(cfg.Delete); err != nil {
			return err
		}
		log.Printf("Deleted game %d", cfg.Delete)
		return nil
	}

	difficulty, err := engine.ParseDifficulty(cfg.Difficulty)
	if err != nil {
		return err
	}

	ai := engine.NewAI(engine.BucketsForMB(max(cfg.HashMB, 1)))
	ai.SetDifficulty(difficulty)

	protocol := uci.New(ai, store)
	protocol.SetDepth(cfg.Depth)
	protocol.SetSaveGame(cfg.SaveGames)
	if cfg.Resume != 0 {
		if err := protocol.Resume(cfg.Resume); err != nil {
			return err
		}
		log.Printf("Resumed game %d", cfg.Resume)
	}

	if err := protocol.Run(os.Stdin); err != nil {
		return fmt.Errorf("input error: %w", err)
	}
	return nil
}

func listGames(store *storage.Storage) error {
	games, err := store.ListGames()
	if err != nil {
		return err
	}
	for _, g := range games {
		fmt.Printf("%d\t%s\t%s vs %s\t%d moves\t%s\n", g.ID, g.Saved.Format("2006-01-02 15:04"),
			g.White, g.Black, len(g.History), g.Result)
	}

	stats, err := store.LoadStats()
	if err != nil {
		return err
	}
	fmt.Printf("%d finished: %d-%d, %d drawn (%.0f%% decisive)\n",
		stats.GamesPlayed, stats.WhiteWins, stats.BlackWins, stats.Draws, stats.DecisiveRate())
	return nil
}
