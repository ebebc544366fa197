package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rocketscienceinc/t3-store/internal/entity"
)

type postgresState struct {
	pool   *pgxpool.Pool
	key    string
	origin string
}

// NewPostgresStateRepository - expects the kv table created by storage.PostgresStorage.Init.
// Every write notifies "<key>:changed" with the writer origin in the same transaction.
func NewPostgresStateRepository(pool *pgxpool.Pool, key string) StateRepository {
	return &postgresState{
		pool:   pool,
		key:    key,
		origin: newOrigin(),
	}
}

func (that *postgresState) Read(ctx context.Context) (*entity.GameState, error) {
	query := `SELECT value FROM kv WHERE key = $1`

	var value []byte

	err := that.pool.QueryRow(ctx, query, that.key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.InitialState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("can't read state: %w", err)
	}

	return decodeState(value)
}

func (that *postgresState) Write(ctx context.Context, state *entity.GameState) error {
	query := `INSERT INTO kv (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`

	data, err := encodeState(state)
	if err != nil {
		return err
	}

	tx, err := that.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err = tx.Exec(ctx, query, that.key, string(data)); err != nil {
		return fmt.Errorf("can't save state: %w", err)
	}

	if _, err = tx.Exec(ctx, `SELECT pg_notify($1, $2)`, changeChannel(that.key), that.origin); err != nil {
		return fmt.Errorf("can't notify state change: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (that *postgresState) Watch(ctx context.Context, onChange func()) error {
	conn, err := that.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("can't acquire connection: %w", err)
	}
	defer conn.Release()

	channel := pgx.Identifier{changeChannel(that.key)}.Sanitize()
	if _, err = conn.Exec(ctx, "LISTEN "+channel); err != nil {
		return fmt.Errorf("can't listen for state changes: %w", err)
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			return fmt.Errorf("failed to wait for state change: %w", err)
		}

		if notification.Payload != that.origin {
			onChange()
		}
	}
}
