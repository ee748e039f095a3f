package archive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T) *Store {
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndGet(t *testing.T) {
	store := open(t)
	ctx := context.Background()

	started := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	id, err := store.Record(ctx, Game{
		Session:     "live_42",
		EngineWhite: true,
		Started:     started,
		Ended:       started.Add(10 * time.Minute),
		Result:      "1-0",
		Reason:      "Checkmate",
		Moves:       []string{"e4", "e5", "Qh5", "Nc6", "Bc4", "Nf6", "Qxf7#"},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, id)

	game, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "live_42", game.Session)
	assert.True(t, game.EngineWhite)
	assert.Equal(t, "1-0", game.Result)
	assert.Len(t, game.Moves, 7)
	assert.True(t, started.Equal(game.Started))

	// unique prefixes resolve too
	game, err = store.Get(ctx, id[:8])
	require.NoError(t, err)
	assert.Equal(t, id, game.ID)

	_, err = store.Get(ctx, "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordDefaults(t *testing.T) {
	store := open(t)
	ctx := context.Background()

	id, err := store.Record(ctx, Game{ID: "fixed", Moves: []string{"d4"}})
	require.NoError(t, err)
	assert.Equal(t, "fixed", id)

	game, err := store.Get(ctx, "fixed")
	require.NoError(t, err)
	assert.Equal(t, "*", game.Result)
	assert.True(t, game.Started.IsZero())
	assert.False(t, game.Ended.IsZero())

	_, err = store.Record(ctx, Game{ID: "fixed"})
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	store := open(t)
	ctx := context.Background()

	base := time.Now()
	for i, id := range []string{"a1", "a2", "b3"} {
		_, err := store.Record(ctx, Game{ID: id, Ended: base.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}

	games, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, games, 3)
	assert.Equal(t, "b3", games[0].ID)
	assert.Equal(t, "a1", games[2].ID)

	games, err = store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, games, 2)

	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrAmbiguous)
}

func TestPGN(t *testing.T) {
	game := Game{
		Session:     "live_42",
		EngineWhite: false,
		Started:     time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC),
		Result:      "0-1",
		Reason:      "Checkmate",
		Moves:       []string{"f3", "e5", "g4", "Qh4#"},
	}

	pgn := game.PGN()
	assert.Contains(t, pgn, `[Site "live_42"]`)
	assert.Contains(t, pgn, `[Date "2024.03.14"]`)
	assert.Contains(t, pgn, `[White "opponent"]`)
	assert.Contains(t, pgn, `[Black "tandem"]`)
	assert.Contains(t, pgn, `[Termination "Checkmate"]`)
	assert.Contains(t, pgn, "1. f3 e5 2. g4 Qh4# 0-1\n")

	// unreplayable moves are written as recorded
	game.Moves = []string{"e4", "Ke2", "nonsense"}
	game.Result = ""
	assert.Contains(t, game.PGN(), "1. e4 Ke2 2. nonsense *\n")
}
