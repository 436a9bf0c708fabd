// storagetest — общий набор проверок для реализаций storage.CredentialStore.
package storagetest

import (
	"context"
	"testing"

	"github.com/pribylovaa/storefront/internal/models"
	"github.com/pribylovaa/storefront/internal/storage"
	"github.com/stretchr/testify/require"
)

// Run прогоняет контракт хранилища. newStore должен возвращать пустое хранилище.
func Run(t *testing.T, newStore func(t *testing.T) storage.CredentialStore) {
	t.Helper()

	t.Run("load_empty_is_not_found", func(t *testing.T) {
		st := newStore(t)
		_, err := st.Load(context.Background())
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("save_then_load", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()
		in := models.Credentials{Access: "a1", Refresh: "r1"}

		require.NoError(t, st.Save(ctx, in))

		out, err := st.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, in, out)
	})

	t.Run("save_replaces_pair", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()

		require.NoError(t, st.Save(ctx, models.Credentials{Access: "a1", Refresh: "r1"}))
		require.NoError(t, st.Save(ctx, models.Credentials{Access: "a2", Refresh: "r1"}))

		out, err := st.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, "a2", out.Access)
		require.Equal(t, "r1", out.Refresh)
	})

	t.Run("save_rejects_partial_pair", func(t *testing.T) {
		st := newStore(t)
		err := st.Save(context.Background(), models.Credentials{Access: "a1"})
		require.ErrorIs(t, err, storage.ErrCorrupted)
	})

	t.Run("delete_is_idempotent", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()

		require.NoError(t, st.Save(ctx, models.Credentials{Access: "a1", Refresh: "r1"}))
		require.NoError(t, st.Delete(ctx))
		require.NoError(t, st.Delete(ctx))

		_, err := st.Load(ctx)
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}
