package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bsumner2/gbachess/internal/board"
	"github.com/bsumner2/gbachess/internal/testutil"
)

func openTest(t *testing.T) *Storage {
	t.Helper()
	s, err := OpenInMemory()
	testutil.AssertNoError(t, err, "OpenInMemory")
	t.Cleanup(func() { s.Close() })
	return s
}

// record plays UCI moves from the start and returns the history and the
// final position.
func record(t *testing.T, moves ...string) (board.History, *board.State) {
	t.Helper()
	s := board.NewGame()
	var h board.History
	for _, uci := range moves {
		m, err := board.ParseUCI(uci)
		testutil.AssertNoError(t, err, "ParseUCI(%q)", uci)
		vm, ok := s.ValidateMove(m)
		if !ok {
			t.Fatalf("move %s rejected", uci)
		}
		h = h.Append(s.Record(vm))
		s.Apply(vm)
	}
	return h, s
}

func TestSaveLoadGame(t *testing.T) {
	st := openTest(t)
	hist, want := record(t, "e2e4", "e7e5", "g1f3", "b8c6", "f1c4")

	g := &SavedGame{White: "alice", Black: "gba", History: hist}
	testutil.AssertNoError(t, st.SaveGame(g))
	if g.ID == 0 {
		t.Fatal("SaveGame left ID at zero")
	}
	if g.Result != ResultOngoing {
		t.Errorf("Result = %q, want %q", g.Result, ResultOngoing)
	}

	got, err := st.LoadGame(g.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, got.History, hist)
	if got.White != "alice" || got.Black != "gba" {
		t.Errorf("players = %q/%q", got.White, got.Black)
	}
	if got.SideToMove() != board.Black {
		t.Errorf("SideToMove = %s, want black", got.SideToMove())
	}

	pos, err := got.Position()
	testutil.AssertNoError(t, err)
	if pos.FEN() != want.FEN() || pos.Hash != want.Hash {
		t.Errorf("resumed position %s, want %s", pos.FEN(), want.FEN())
	}
}

func TestSaveGameOverwrite(t *testing.T) {
	st := openTest(t)
	hist, _ := record(t, "d2d4")
	g := &SavedGame{History: hist}
	testutil.AssertNoError(t, st.SaveGame(g))
	id := g.ID

	g.History, _ = record(t, "d2d4", "d7d5")
	testutil.AssertNoError(t, st.SaveGame(g))
	if g.ID != id {
		t.Errorf("ID changed from %d to %d", id, g.ID)
	}
	games, err := st.ListGames()
	testutil.AssertNoError(t, err)
	if len(games) != 1 || len(games[0].History.HalfMoves()) != 2 {
		t.Errorf("after overwrite: %d games", len(games))
	}
}

func TestSaveGameRejects(t *testing.T) {
	st := openTest(t)

	hist, _ := record(t, "e2e4")
	hist[0].White.To = board.MustSquare("e5") // not a pawn move
	err := st.SaveGame(&SavedGame{History: hist})
	testutil.AssertErrorIs(t, err, board.ErrIllegalMove)

	hist, _ = record(t, "e2e4")
	err = st.SaveGame(&SavedGame{History: hist, Result: "2-0"})
	testutil.AssertErrorIs(t, err, ErrBadResult)

	games, err := st.ListGames()
	testutil.AssertNoError(t, err)
	if len(games) != 0 {
		t.Errorf("rejected games were stored: %d", len(games))
	}
}

func TestListAndDeleteGames(t *testing.T) {
	st := openTest(t)
	var ids []uint64
	for _, first := range []string{"e2e4", "d2d4", "c2c4"} {
		hist, _ := record(t, first)
		g := &SavedGame{History: hist}
		testutil.AssertNoError(t, st.SaveGame(g))
		ids = append(ids, g.ID)
	}

	games, err := st.ListGames()
	testutil.AssertNoError(t, err)
	var got []uint64
	for _, g := range games {
		got = append(got, g.ID)
	}
	testutil.AssertEqual(t, got, ids)

	testutil.AssertNoError(t, st.DeleteGame(ids[1]))
	_, err = st.LoadGame(ids[1])
	testutil.AssertErrorIs(t, err, ErrGameNotFound)
	testutil.AssertErrorIs(t, st.DeleteGame(ids[1]), ErrGameNotFound)

	games, err = st.ListGames()
	testutil.AssertNoError(t, err)
	if len(games) != 2 {
		t.Errorf("%d games after delete, want 2", len(games))
	}
}

func TestResultOf(t *testing.T) {
	_, mated := record(t, "f2f3", "e7e5", "g2g4", "d8h4")
	if got := ResultOf(mated); got != ResultBlackWins {
		t.Errorf("fool's mate result %q", got)
	}
	if got := ResultOf(board.NewGame()); got != ResultOngoing {
		t.Errorf("start result %q", got)
	}
	stale := board.MustParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if got := ResultOf(stale); got != ResultDraw {
		t.Errorf("stalemate result %q", got)
	}
}

func TestStatsCountFinishedGamesOnce(t *testing.T) {
	st := openTest(t)
	hist, mated := record(t, "f2f3", "e7e5", "g2g4", "d8h4")

	g := &SavedGame{History: hist}
	testutil.AssertNoError(t, st.SaveGame(g))
	g.Result = ResultOf(mated)
	testutil.AssertNoError(t, st.SaveGame(g))
	testutil.AssertNoError(t, st.SaveGame(g))

	draw, _ := record(t, "g1f3")
	testutil.AssertNoError(t, st.SaveGame(&SavedGame{History: draw, Result: ResultDraw}))

	stats, err := st.LoadStats()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, stats, &GameStats{GamesPlayed: 2, BlackWins: 1, Draws: 1})
	if stats.DecisiveRate() != 50 {
		t.Errorf("DecisiveRate = %.1f, want 50", stats.DecisiveRate())
	}
}

func TestPreferences(t *testing.T) {
	st := openTest(t)

	prefs, err := st.LoadPreferences()
	testutil.AssertNoError(t, err)
	if prefs.Difficulty != "medium" || prefs.Username != "Player" {
		t.Errorf("defaults = %+v", prefs)
	}

	prefs.Difficulty = "hard"
	prefs.HashMB = 4
	testutil.AssertNoError(t, st.SavePreferences(prefs))

	got, err := st.LoadPreferences()
	testutil.AssertNoError(t, err)
	if got.Difficulty != "hard" || got.HashMB != 4 || got.LastPlayed.IsZero() {
		t.Errorf("loaded %+v", got)
	}
}

func TestOpenOnDisk(t *testing.T) {
	dir := t.TempDir()
	hist, _ := record(t, "e2e4")

	st, err := Open(dir)
	testutil.AssertNoError(t, err)
	g := &SavedGame{History: hist}
	testutil.AssertNoError(t, st.SaveGame(g))
	testutil.AssertNoError(t, st.Close())

	st, err = Open(dir)
	testutil.AssertNoError(t, err)
	defer st.Close()
	got, err := st.LoadGame(g.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, got.History, hist)
}

func TestDatabaseDir(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_DATA_HOME", base)
	dbDir, err := DatabaseDir()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, dbDir, filepath.Join(base, "gbachess", "db"))
	if _, err := os.Stat(dbDir); err != nil {
		t.Errorf("database directory missing: %v", err)
	}
}
