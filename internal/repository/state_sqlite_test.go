package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rocketscienceinc/t3-store/internal/repository/storage"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStateRepository(t *testing.T) {
	ctx := context.Background()

	st, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "t3.db")+"?_busy_timeout=5000&_journal_mode=WAL")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})

	require.NoError(t, st.Init(ctx))

	testStateRepository(t, ctx,
		func() StateRepository {
			return NewSQLiteStateRepository(st.Connection, testKey, 10*time.Millisecond)
		},
		func(t *testing.T) {
			t.Helper()

			_, err := st.Connection.ExecContext(ctx,
				`INSERT INTO kv (key, value, origin) VALUES (?, ?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value`, testKey, "{not json", "test")
			require.NoError(t, err)
		},
	)
}
