package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rocketscienceinc/t3-store/internal/apperror"
	"github.com/rocketscienceinc/t3-store/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "live-t3-storage-key"

var (
	playerOne = entity.Player{ID: 1, Name: "Player 1", IconClass: "fa-x", ColorClass: "turquoise"}
	playerTwo = entity.Player{ID: 2, Name: "Player 2", IconClass: "fa-o", ColorClass: "yellow"}
)

// sampleState - one move in progress and a won game in the current round.
func sampleState() *entity.GameState {
	winner := playerOne

	state := entity.InitialState()
	state.CurrentGameMoves = append(state.CurrentGameMoves, entity.Move{SquareID: 5, Player: playerOne})
	state.History.CurrentRoundGames = append(state.History.CurrentRoundGames, entity.CompletedGame{
		Moves: []entity.Move{
			{SquareID: 1, Player: playerOne},
			{SquareID: 4, Player: playerTwo},
			{SquareID: 2, Player: playerOne},
			{SquareID: 5, Player: playerTwo},
			{SquareID: 3, Player: playerOne},
		},
		Status: entity.Status{IsComplete: true, Winner: &winner},
	})

	return state
}

// testStateRepository - checks the behavior every backend shares. newRepo must return
// repositories on the same slot; corrupt must store an unparsable record in it.
func testStateRepository(
	t *testing.T,
	ctx context.Context,
	newRepo func() StateRepository,
	corrupt func(t *testing.T),
) {
	t.Helper()

	t.Run("Read returns the initial state when nothing is stored", func(t *testing.T) {
		// Given: an empty slot
		repo := newRepo()

		// When: reading the state
		state, err := repo.Read(ctx)

		// Then: the initial state is returned
		require.NoError(t, err)
		assert.Equal(t, entity.InitialState(), state)
	})

	t.Run("Write then Read returns the same state", func(t *testing.T) {
		// Given: a stored state
		repo := newRepo()
		require.NoError(t, repo.Write(ctx, sampleState()))

		// When: another instance reads it
		state, err := newRepo().Read(ctx)

		// Then: it equals what was written
		require.NoError(t, err)
		assert.Equal(t, sampleState(), state)
	})

	t.Run("Write overwrites the previous state", func(t *testing.T) {
		// Given: a stored state
		repo := newRepo()
		require.NoError(t, repo.Write(ctx, sampleState()))

		// When: the initial state is written over it
		require.NoError(t, newRepo().Write(ctx, entity.InitialState()))

		// Then: the last write wins
		state, err := repo.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, entity.InitialState(), state)
	})

	t.Run("Watch reports writes from other instances only", func(t *testing.T) {
		// Given: a watching instance and a second instance on the same slot
		watching := newRepo()
		other := newRepo()

		watchCtx, cancel := context.WithCancel(ctx)
		changes := make(chan struct{}, 64)
		done := make(chan error, 1)

		go func() {
			done <- watching.Watch(watchCtx, func() {
				changes <- struct{}{}
			})
		}()

		// When: the other instance writes
		// Then: the watcher is notified
		require.Eventually(t, func() bool {
			if err := other.Write(ctx, sampleState()); err != nil {
				return false
			}

			select {
			case <-changes:
				return true
			case <-time.After(50 * time.Millisecond):
				return false
			}
		}, 10*time.Second, 10*time.Millisecond)

		drain(changes)

		// When: the watching instance writes itself
		require.NoError(t, watching.Write(ctx, entity.InitialState()))

		// Then: nothing is reported
		assert.Never(t, func() bool {
			select {
			case <-changes:
				return true
			default:
				return false
			}
		}, 300*time.Millisecond, 20*time.Millisecond)

		// When: the context is canceled
		cancel()

		// Then: Watch returns
		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(5 * time.Second):
			t.Fatal("watch did not stop after cancel")
		}
	})

	t.Run("Read fails with ErrParse on a malformed record", func(t *testing.T) {
		// Given: an unparsable record in the slot
		corrupt(t)

		// When: reading the state
		state, err := newRepo().Read(ctx)

		// Then: a parse error is returned
		require.ErrorIs(t, err, apperror.ErrParse)
		assert.Nil(t, state)
	})
}

func drain(changes chan struct{}) {
	time.Sleep(100 * time.Millisecond)

	for {
		select {
		case <-changes:
		default:
			return
		}
	}
}

func TestDecodeState(t *testing.T) {
	t.Run("Sparse record is normalized", func(t *testing.T) {
		// When: decoding a record without history
		state, err := decodeState([]byte(`{"currentGameMoves":[]}`))

		// Then: history slices are empty, not nil
		require.NoError(t, err)
		assert.Equal(t, entity.InitialState(), state)
	})

	t.Run("Empty record reads as the initial state", func(t *testing.T) {
		for _, data := range [][]byte{nil, {}} {
			// When: decoding an empty value
			state, err := decodeState(data)

			// Then: it is treated like a missing record
			require.NoError(t, err)
			assert.Equal(t, entity.InitialState(), state)
		}
	})

	t.Run("Malformed record", func(t *testing.T) {
		// When: decoding broken JSON
		_, err := decodeState([]byte(`{"currentGameMoves":`))

		// Then: ErrParse is returned
		assert.ErrorIs(t, err, apperror.ErrParse)
	})
}

func TestChangeChannel(t *testing.T) {
	t.Run("Short key keeps its name", func(t *testing.T) {
		assert.Equal(t, "live-t3-storage-key:changed", changeChannel("live-t3-storage-key"))
	})

	t.Run("Long key fits a postgres identifier", func(t *testing.T) {
		// Given: keys longer than a channel name may be
		first := strings.Repeat("k", 100)
		second := strings.Repeat("k", 99) + "x"

		// When: deriving their channels
		channel := changeChannel(first)

		// Then: the name is short, stable and distinct per key
		assert.LessOrEqual(t, len(channel), maxChannelLength)
		assert.True(t, strings.HasSuffix(channel, ":changed"))
		assert.Equal(t, channel, changeChannel(first))
		assert.NotEqual(t, channel, changeChannel(second))
	})
}
