package application

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/t3-store/internal/apperror"
	"github.com/rocketscienceinc/t3-store/internal/config"
	"github.com/rocketscienceinc/t3-store/internal/entity"
)

func testConfig(driver string) *config.Config {
	return &config.Config{
		Storage: config.Storage{Driver: driver, Key: "live-t3-storage-key"},
		Players: config.DefaultPlayers(),
	}
}

func TestOpenStateRepository(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Memory driver", func(t *testing.T) {
		// Given: the memory driver
		repo, release, err := openStateRepository(ctx, logger, testConfig(config.DriverMemory))
		require.NoError(t, err)
		defer release()

		// When: reading before any write
		state, err := repo.Read(ctx)

		// Then: the initial state is returned
		require.NoError(t, err)
		assert.Equal(t, entity.InitialState(), state)
	})

	t.Run("SQLite driver", func(t *testing.T) {
		// Given: a sqlite file in a temp dir
		conf := testConfig(config.DriverSQLite)
		conf.SQLite.Path = filepath.Join(t.TempDir(), "t3.db") + "?_busy_timeout=5000&_journal_mode=WAL"
		conf.SQLite.PollInterval = 10 * time.Millisecond

		repo, release, err := openStateRepository(ctx, logger, conf)
		require.NoError(t, err)
		defer release()

		// When: writing a state
		state := entity.InitialState()
		state.CurrentGameMoves = append(state.CurrentGameMoves, entity.Move{SquareID: 5, Player: conf.Players[0]})
		require.NoError(t, repo.Write(ctx, state))

		// Then: it reads back
		got, err := repo.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, state, got)
	})

	t.Run("Unknown driver", func(t *testing.T) {
		_, _, err := openStateRepository(ctx, logger, testConfig("etcd"))

		require.ErrorIs(t, err, apperror.ErrUnknownStorage)
	})

	t.Run("Missing addresses", func(t *testing.T) {
		for _, driver := range []string{config.DriverRedis, config.DriverSQLite, config.DriverPostgres} {
			// Given: a driver without its address
			_, _, err := openStateRepository(ctx, logger, testConfig(driver))

			// Then: ErrNoStorageAddress is returned
			require.ErrorIs(t, err, apperror.ErrNoStorageAddress, driver)
		}
	})
}
