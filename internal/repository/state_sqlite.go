package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/t3-store/internal/entity"
)

type sqliteState struct {
	conn         *sql.DB
	key          string
	origin       string
	pollInterval time.Duration
}

// NewSQLiteStateRepository - expects the kv table created by storage.SQLiteStorage.Init.
// Changes from other processes are detected by polling the data version every pollInterval.
func NewSQLiteStateRepository(conn *sql.DB, key string, pollInterval time.Duration) StateRepository {
	return &sqliteState{
		conn:         conn,
		key:          key,
		origin:       newOrigin(),
		pollInterval: pollInterval,
	}
}

func (that *sqliteState) Read(ctx context.Context) (*entity.GameState, error) {
	query := `SELECT value FROM kv WHERE key = ?`

	var value string

	err := that.conn.QueryRowContext(ctx, query, that.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.InitialState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("can't read state: %w", err)
	}

	return decodeState([]byte(value))
}

func (that *sqliteState) Write(ctx context.Context, state *entity.GameState) error {
	query := `INSERT INTO kv (key, value, origin) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, origin = excluded.origin`

	data, err := encodeState(state)
	if err != nil {
		return err
	}

	if _, err = that.conn.ExecContext(ctx, query, that.key, string(data), that.origin); err != nil {
		return fmt.Errorf("can't save state: %w", err)
	}

	return nil
}

// Watch - PRAGMA data_version only moves when another connection commits, so it is read on a
// dedicated connection; the stored origin filters out writes made through this repository.
func (that *sqliteState) Watch(ctx context.Context, onChange func()) error {
	conn, err := that.conn.Conn(ctx)
	if err != nil {
		return fmt.Errorf("can't get connection: %w", err)
	}
	defer conn.Close()

	version, err := dataVersion(ctx, conn)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(that.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		current, err := dataVersion(ctx, conn)
		if err != nil {
			return err
		}

		if current == version {
			continue
		}
		version = current

		origin, err := that.lastOrigin(ctx, conn)
		if err != nil {
			return err
		}

		if origin != "" && origin != that.origin {
			onChange()
		}
	}
}

func (that *sqliteState) lastOrigin(ctx context.Context, conn *sql.Conn) (string, error) {
	query := `SELECT origin FROM kv WHERE key = ?`

	var origin string

	err := conn.QueryRowContext(ctx, query, that.key).Scan(&origin)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("can't read state origin: %w", err)
	}

	return origin, nil
}

func dataVersion(ctx context.Context, conn *sql.Conn) (int64, error) {
	var version int64
	if err := conn.QueryRowContext(ctx, `PRAGMA data_version`).Scan(&version); err != nil {
		return 0, fmt.Errorf("can't read data version: %w", err)
	}

	return version, nil
}
