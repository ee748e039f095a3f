package game

import (
	"errors"
	"testing"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplay(t *testing.T) {
	model, err := Replay([]string{"e4", "e5", "Nf3", "Nc6", "Bb5"})
	require.NoError(t, err)

	assert.Equal(t, 5, model.Len())
	assert.Equal(t, []string{"e4", "e5", "Nf3", "Nc6", "Bb5"}, model.Tokens())
	assert.Equal(t, []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5"}, model.UCI())
	assert.Equal(t, chess.Black, model.SideToMove())
	assert.Equal(t, None, model.Terminal())
}

func TestReplayIllegal(t *testing.T) {
	_, err := Replay([]string{"e4", "e5", "Ke3"})
	require.Error(t, err)

	var illegal *IllegalMoveError
	require.True(t, errors.As(err, &illegal))
	assert.Equal(t, 2, illegal.Index)
	assert.Equal(t, "Ke3", illegal.Token)
	assert.ErrorIs(t, err, ErrIllegalMove)
}

func TestApplyKeepsObservedToken(t *testing.T) {
	model := New()
	for _, token := range []string{"e4", "e5", "Bc4", "Nc6", "Qh5", "Nf6"} {
		_, err := model.Apply(token)
		require.NoError(t, err)
	}

	ply, err := model.Apply("Qxf7#")
	require.NoError(t, err)
	assert.Equal(t, "Qxf7#", ply.Token)
	assert.Equal(t, "h5f7", ply.UCI)

	assert.Equal(t, Checkmate, model.Terminal())
	result, reason := model.Result()
	assert.Equal(t, WhiteWins, result)
	assert.Equal(t, "Checkmate", reason)

	// no further moves are accepted once the game is decided
	_, err = model.Apply("Ke7")
	assert.ErrorIs(t, err, ErrIllegalMove)
}

func TestParseIgnoresAnnotations(t *testing.T) {
	model, err := Replay([]string{"f3", "e5", "g4"})
	require.NoError(t, err)

	for _, token := range []string{"Qh4#", "Qh4", "Qh4+", "Qh4!!", "Qh4#?!"} {
		mov, err := model.Parse(token)
		require.NoError(t, err, token)
		assert.Equal(t, "d8h4", mov.String())
	}

	// parsing must not mutate the model
	assert.Equal(t, 3, model.Len())
}

func TestParseCastling(t *testing.T) {
	model, err := Replay([]string{"e4", "e5", "Nf3", "Nc6", "Bc4", "Bc5"})
	require.NoError(t, err)

	for _, token := range []string{"O-O", "0-0", "O-O+"} {
		mov, err := model.Parse(token)
		require.NoError(t, err, token)
		assert.Equal(t, "e1g1", mov.String())
	}
}

func TestParseRejectsResultTokens(t *testing.T) {
	model := New()
	for _, token := range []string{"1-0", "0-1", "1/2-1/2", "", "  "} {
		_, err := model.Parse(token)
		assert.ErrorIs(t, err, ErrIllegalMove, token)
	}
}

func TestEncodeUCI(t *testing.T) {
	model, err := Replay([]string{"e4", "e5"})
	require.NoError(t, err)

	san, err := model.EncodeUCI("g1f3")
	require.NoError(t, err)
	assert.Equal(t, "Nf3", san)

	_, err = model.EncodeUCI("e1e3")
	assert.ErrorIs(t, err, ErrIllegalMove)
}

func TestReset(t *testing.T) {
	model, err := Replay([]string{"d4", "d5"})
	require.NoError(t, err)

	model.Reset()
	assert.Equal(t, 0, model.Len())
	assert.Equal(t, chess.White, model.SideToMove())
	assert.Equal(t, chess.StartingPosition().String(), model.FEN())
}

func TestMaterial(t *testing.T) {
	model, err := Replay([]string{"e4", "d5", "exd5"})
	require.NoError(t, err)
	assert.Equal(t, 1, model.Material())

	_, err = model.Apply("Qxd5")
	require.NoError(t, err)
	assert.Equal(t, 0, model.Material())
}

func TestSideToMoveAlternates(t *testing.T) {
	model := New()
	sides := []chess.Color{chess.White, chess.Black, chess.White, chess.Black}
	for i, token := range []string{"c4", "c5", "Nc3", "Nc6"} {
		assert.Equal(t, sides[i], model.SideToMove())
		_, err := model.Apply(token)
		require.NoError(t, err)
	}
	assert.Equal(t, chess.White, model.SideToMove())
}
