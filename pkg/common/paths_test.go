package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryCreate(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "dir", "file.yaml")

	created, err := TryCreate(file, []byte("first"))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = TryCreate(file, []byte("second"))
	require.NoError(t, err)
	assert.False(t, created)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestTryMkdir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, TryMkdir(dir))
	require.NoError(t, TryMkdir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
