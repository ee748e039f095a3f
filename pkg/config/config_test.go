package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptudirm.com/x/tandem/pkg/session"
)

func TestDefault(t *testing.T) {
	config := Default()

	// the embedded file agrees with the built-in defaults
	assert.Equal(t, session.DefaultConfig(), config.Session)

	assert.Equal(t, "stockfish", config.Engine.Cmd)
	assert.Equal(t, 12, config.Engine.Depth)
	assert.Equal(t, time.Minute, config.Engine.Timeout)
	assert.Equal(t, "true", config.Engine.Options["UCI_ShowWDL"])
	assert.Equal(t, 50*time.Millisecond, config.Surface.MouseLatency)
	assert.Equal(t, "none", config.Control.Mode)
	assert.True(t, config.Archive.Enabled)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
session:
  continuous: true
  sync:
    empty-debounce: 5
engine:
  cmd: /usr/bin/berserk
control:
  mode: localhost:8080
`), 0644))

	config, err := Load(path)
	require.NoError(t, err)

	assert.True(t, config.Session.Continuous)
	assert.Equal(t, 5, config.Session.Sync.EmptyDebounce)
	assert.Equal(t, "/usr/bin/berserk", config.Engine.Cmd)
	assert.Equal(t, "localhost:8080", config.Control.Mode)

	// unset values keep their defaults
	assert.Equal(t, 250*time.Millisecond, config.Session.PollInterval)
	assert.Equal(t, 10, config.Session.Sync.ResyncAttempts)
	assert.Equal(t, 12, config.Engine.Depth)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session: ["), 0644))

	_, err = Load(path)
	assert.Error(t, err)
}

func TestArchivePath(t *testing.T) {
	config := Default()
	config.Archive.Path = "/tmp/games.db"

	path, err := config.ArchivePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/games.db", path)
}
