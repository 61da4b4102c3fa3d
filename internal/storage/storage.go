package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsumner2/gbachess/internal/board"
	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	keyGameSeq     = "seq/game"
	gamePrefix     = "game/"
)

// Game results in PGN notation.
const (
	ResultWhiteWins = "1-0"
	ResultBlackWins = "0-1"
	ResultDraw      = "1/2-1/2"
	ResultOngoing   = "*"
)

var (
	ErrGameNotFound = errors.New("storage: game not found")
	ErrBadResult    = errors.New("storage: unknown game result")
)

// SavedGame is a game record: who played, how it ended and every move.
// The position is never stored; it is rebuilt from History.
type SavedGame struct {
	ID      uint64        `json:"id"`
	White   string        `json:"white"`
	Black   string        `json:"black"`
	Result  string        `json:"result"`
	History board.History `json:"history"`
	Saved   time.Time     `json:"saved"`
}

// SideToMove returns whose turn it is at the end of the record.
func (g *SavedGame) SideToMove() board.Color {
	return g.History.SideToMove()
}

// Position replays the record and returns the final position.
func (g *SavedGame) Position() (*board.State, error) {
	s, err := board.Replay(g.History)
	if err != nil {
		return nil, fmt.Errorf("game %d: %w", g.ID, err)
	}
	return s, nil
}

// ResultOf returns the result of a position: decisive on checkmate, drawn
// on stalemate and ongoing otherwise.
func ResultOf(s *board.State) string {
	checkers := s.Checkers(s.SideToMove)
	switch {
	case s.IsCheckmate(checkers):
		if s.SideToMove == board.White {
			return ResultBlackWins
		}
		return ResultWhiteWins
	case len(checkers) == 0 && s.IsStalemate():
		return ResultDraw
	}
	return ResultOngoing
}

func validResult(r string) bool {
	switch r {
	case ResultWhiteWins, ResultBlackWins, ResultDraw, ResultOngoing:
		return true
	}
	return false
}

// Preferences stores player settings between sessions.
type Preferences struct {
	Username   string    `json:"username"`
	Difficulty string    `json:"difficulty"`
	HashMB     int       `json:"hash_mb"`
	LastPlayed time.Time `json:"last_played"`
}

// DefaultPreferences returns default preferences.
func DefaultPreferences() *Preferences {
	return &Preferences{
		Username:   "Player",
		Difficulty: "medium",
		HashMB:     1,
	}
}

// GameStats counts finished games by result.
type GameStats struct {
	GamesPlayed int `json:"games_played"`
	WhiteWins   int `json:"white_wins"`
	BlackWins   int `json:"black_wins"`
	Draws       int `json:"draws"`
}

// DecisiveRate returns the share of games that did not end drawn (0-100).
func (s *GameStats) DecisiveRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.WhiteWins+s.BlackWins) / float64(s.GamesPlayed) * 100
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database in DatabaseDir.
func NewStorage() (*Storage, error) {
	dbDir, err := DatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens or creates a database in dir.
func Open(dir string) (*Storage, error) {
	return open(badger.DefaultOptions(dir))
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Storage, error) {
	opts.Logger = nil // badger logs to stderr, which UCI clients read

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func gameKey(id uint64) []byte {
	key := make([]byte, len(gamePrefix)+8)
	copy(key, gamePrefix)
	binary.BigEndian.PutUint64(key[len(gamePrefix):], id)
	return key
}

// SaveGame stores a game. The history must replay from the starting
// position. A zero ID is replaced by a fresh one; an existing ID is
// overwritten. Finishing a game (a result other than "*") for the first
// time updates the statistics.
func (s *Storage) SaveGame(g *SavedGame) error {
	if g.Result == "" {
		g.Result = ResultOngoing
	}
	if !validResult(g.Result) {
		return fmt.Errorf("%q: %w", g.Result, ErrBadResult)
	}
	if _, err := board.Replay(g.History); err != nil {
		return fmt.Errorf("save game: %w", err)
	}

	if g.ID == 0 {
		seq, err := s.db.GetSequence([]byte(keyGameSeq), 16)
		if err != nil {
			return err
		}
		id, err := seq.Next()
		if rerr := seq.Release(); err == nil {
			err = rerr
		}
		if err != nil {
			return err
		}
		// Sequences start at zero, which means "unsaved".
		g.ID = id + 1
	}
	g.Saved = time.Now()

	data, err := json.Marshal(g)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		prev, err := getGame(txn, g.ID)
		if err != nil && !errors.Is(err, ErrGameNotFound) {
			return err
		}
		if err := txn.Set(gameKey(g.ID), data); err != nil {
			return err
		}
		if g.Result == ResultOngoing || (prev != nil && prev.Result != ResultOngoing) {
			return nil
		}
		return recordResult(txn, g.Result)
	})
}

func getGame(txn *badger.Txn, id uint64) (*SavedGame, error) {
	item, err := txn.Get(gameKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, fmt.Errorf("game %d: %w", id, ErrGameNotFound)
	}
	if err != nil {
		return nil, err
	}
	g := &SavedGame{}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, g)
	})
	return g, err
}

// LoadGame returns the game with the given id.
func (s *Storage) LoadGame(id uint64) (*SavedGame, error) {
	var g *SavedGame
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		g, err = getGame(txn, id)
		return err
	})
	return g, err
}

// ListGames returns every saved game in id order.
func (s *Storage) ListGames() ([]*SavedGame, error) {
	var games []*SavedGame
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(gamePrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			g := &SavedGame{}
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, g)
			})
			if err != nil {
				return err
			}
			games = append(games, g)
		}
		return nil
	})
	return games, err
}

// DeleteGame removes a saved game. Statistics are left alone.
func (s *Storage) DeleteGame(id uint64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(gameKey(id)); err == badger.ErrKeyNotFound {
			return fmt.Errorf("game %d: %w", id, ErrGameNotFound)
		} else if err != nil {
			return err
		}
		return txn.Delete(gameKey(id))
	})
}

// SavePreferences saves player preferences
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastPlayed = time.Now()

	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPreferences), data)
	})
}

// LoadPreferences loads player preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPreferences))
		if err == badger.ErrKeyNotFound {
			return nil // Use defaults
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, prefs)
		})
	})

	return prefs, err
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	var stats *GameStats
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		stats, err = loadStats(txn)
		return err
	})
	return stats, err
}

func loadStats(txn *badger.Txn) (*GameStats, error) {
	stats := &GameStats{}
	item, err := txn.Get([]byte(keyStats))
	if err == badger.ErrKeyNotFound {
		return stats, nil
	}
	if err != nil {
		return nil, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, stats)
	})
	return stats, err
}

func recordResult(txn *badger.Txn, result string) error {
	stats, err := loadStats(txn)
	if err != nil {
		return err
	}

	stats.GamesPlayed++
	switch result {
	case ResultWhiteWins:
		stats.WhiteWins++
	case ResultBlackWins:
		stats.BlackWins++
	case ResultDraw:
		stats.Draws++
	}

	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return txn.Set([]byte(keyStats), data)
}
