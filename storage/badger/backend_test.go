package badger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend(t *testing.T) {
	t.Run("in memory", func(t *testing.T) {
		backend, err := OpenBackend("", true)
		require.NoError(t, err)
		assert.False(t, backend.IsClosed())
		require.NoError(t, backend.Close())
		assert.True(t, backend.IsClosed())
	})

	t.Run("creates the directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "db")
		backend, err := OpenBackend(path, false)
		require.NoError(t, err)
		require.NoError(t, backend.Close())
	})
}

func TestWithTransaction(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	t.Run("propagates the callback error", func(t *testing.T) {
		boom := errors.New("boom")
		err := backend.WithTransaction(context.Background(), func(context.Context) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("commits on success", func(t *testing.T) {
		err := backend.WithTransaction(context.Background(), func(context.Context) error {
			return nil
		})
		assert.NoError(t, err)
	})
}
