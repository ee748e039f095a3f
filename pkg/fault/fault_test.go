package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodes(t *testing.T) {
	tests := []struct {
		kind  Kind
		code  string
		fatal bool
	}{
		{TransientObservation, "RUNTIME", false},
		{Divergence, "RUNTIME", false},
		{ResyncExhausted, "RUNTIME", true},
		{ConfirmationTimeout, "CONFIRMATION", true},
		{OracleFailure, "ORACLE", true},
		{SessionTimeout, "TIMEOUT", true},
		{EngineStartup, "ENGINE", true},
	}

	for _, test := range tests {
		assert.Equal(t, test.code, test.kind.Code(), test.kind.String())
		assert.Equal(t, test.fatal, test.kind.Fatal(), test.kind.String())
	}
}

func TestFaultChain(t *testing.T) {
	cause := errors.New("engine exited")
	err := fmt.Errorf("tick: %w", Wrap(OracleFailure, cause, "ply %d", 12))

	assert.True(t, Is(err, OracleFailure))
	assert.False(t, Is(err, Divergence))
	assert.Equal(t, OracleFailure, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "tick: oracle failure: ply 12: engine exited", err.Error())

	assert.Equal(t, TransientObservation, KindOf(errors.New("plain")))
	assert.Equal(t, "resync exhausted: 10 attempts", New(ResyncExhausted, "%d attempts", 10).Error())
}
