package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/config"
)

func TestOpen_Memory(t *testing.T) {
	backend, err := Open(context.Background(), config.Config{
		Storage: config.StorageConfig{Driver: config.StorageMemory},
	}, zap.NewNop())
	require.NoError(t, err)
	defer backend.Close()

	assert.IsType(t, &MemoryStore{}, backend.Store)
	assert.NoError(t, backend.Ping(context.Background()))
}

func TestOpen_File(t *testing.T) {
	backend, err := Open(context.Background(), config.Config{
		Storage: config.StorageConfig{
			Driver:   config.StorageFile,
			FilePath: filepath.Join(t.TempDir(), "origin.json"),
		},
	}, zap.NewNop())
	require.NoError(t, err)
	defer backend.Close()

	assert.IsType(t, &FileStore{}, backend.Store)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.Config{
		Storage: config.StorageConfig{Driver: "localstorage"},
	}, zap.NewNop())
	require.Error(t, err)
}
