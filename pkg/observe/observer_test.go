package observe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type surface struct {
	moves    Reading[[]string]
	ready    Reading[bool]
	starting Reading[bool]
	session  Reading[string]
	over     bool
}

func (s *surface) MoveList(context.Context) Reading[[]string]     { return s.moves }
func (s *surface) EngineIsWhite(context.Context) Reading[bool]    { return Value(true) }
func (s *surface) BoardReady(context.Context) Reading[bool]       { return s.ready }
func (s *surface) StartingPosition(context.Context) Reading[bool] { return s.starting }
func (s *surface) GameOver(context.Context) bool                  { return s.over }
func (s *surface) SessionID(context.Context) Reading[string]      { return s.session }
func (s *surface) ResetCache(context.Context)                     {}
func (s *surface) RequestNewGame(context.Context) bool            { return true }

func TestSplitResult(t *testing.T) {
	moves, result := SplitResult([]string{"e4", "e5", " ", "Qh5", "1-0", "junk"})
	assert.Equal(t, []string{"e4", "e5", "Qh5"}, moves)
	assert.Equal(t, "1-0", result)

	moves, result = SplitResult(nil)
	assert.Empty(t, moves)
	assert.Empty(t, result)
}

func TestCapture(t *testing.T) {
	s := &surface{
		moves:    Value([]string{"e4", "e5", "0-1"}),
		ready:    Value(true),
		starting: Missing[bool](),
		session:  Value("live_42"),
		over:     true,
	}

	snap := Capture(context.Background(), s)
	assert.True(t, snap.Visible)
	assert.True(t, snap.Ready)
	assert.True(t, snap.GameOver)
	assert.False(t, snap.Transient)
	assert.Equal(t, []string{"e4", "e5"}, snap.Moves)
	assert.Equal(t, "0-1", snap.Result)
	assert.True(t, Is(snap.SessionID, "live_42"))
	assert.Equal(t, Unknown, snap.Starting.Status)
}

func TestCaptureTransient(t *testing.T) {
	s := &surface{
		moves:    Transient[[]string](errors.New("stale element")),
		ready:    Value(true),
		starting: Missing[bool](),
		session:  Missing[string](),
	}

	snap := Capture(context.Background(), s)
	assert.False(t, snap.Visible)
	assert.False(t, snap.Empty())
	assert.True(t, snap.Transient)
}

func TestReading(t *testing.T) {
	value, known := Value(3).Get()
	assert.True(t, known)
	assert.Equal(t, 3, value)

	_, known = Missing[int]().Get()
	assert.False(t, known)

	assert.True(t, Is(Value("x"), "x"))
	assert.False(t, Is(Transient[string](nil), ""))
	assert.Equal(t, "transient", TransientFailure.String())
}
