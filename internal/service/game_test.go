package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/t3-store/internal/apperror"
	"github.com/rocketscienceinc/t3-store/internal/entity"
)

var (
	errSomeError = errors.New("some error")

	playerOne = entity.Player{ID: 1, Name: "Player 1"}
	playerTwo = entity.Player{ID: 2, Name: "Player 2"}
)

type mockGameStore struct {
	mock.Mock
}

func (that *mockGameStore) Players() []entity.Player {
	players, _ := that.Called().Get(0).([]entity.Player)

	return players
}

func (that *mockGameStore) Game(ctx context.Context) (*entity.Game, error) {
	args := that.Called(ctx)
	game, _ := args.Get(0).(*entity.Game)

	return game, args.Error(1)
}

func (that *mockGameStore) Stats(ctx context.Context) (*entity.Stats, error) {
	args := that.Called(ctx)
	stats, _ := args.Get(0).(*entity.Stats)

	return stats, args.Error(1)
}

func (that *mockGameStore) History(ctx context.Context) (*entity.History, error) {
	args := that.Called(ctx)
	history, _ := args.Get(0).(*entity.History)

	return history, args.Error(1)
}

func (that *mockGameStore) PlayerMove(ctx context.Context, squareID int) error {
	return that.Called(ctx, squareID).Error(0)
}

func (that *mockGameStore) Reset(ctx context.Context) error {
	return that.Called(ctx).Error(0)
}

func (that *mockGameStore) NewRound(ctx context.Context) error {
	return that.Called(ctx).Error(0)
}

func newTestService(store *mockGameStore) GameService {
	return NewGameService(slog.New(slog.NewTextHandler(io.Discard, nil)), store)
}

func emptyStats() *entity.Stats {
	return &entity.Stats{
		PlayerWithStats: []entity.PlayerWithStats{{Player: playerOne}, {Player: playerTwo}},
	}
}

func TestGameService_MakeMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Moves on a free square", func(t *testing.T) {
		// Given: an empty board
		store := &mockGameStore{}
		empty := &entity.Game{Moves: []entity.Move{}, CurrentPlayer: playerOne}
		moved := &entity.Game{Moves: []entity.Move{{SquareID: 5, Player: playerOne}}, CurrentPlayer: playerTwo}

		store.On("Game", mock.Anything).Return(empty, nil).Once()
		store.On("PlayerMove", mock.Anything, 5).Return(nil).Once()
		store.On("Game", mock.Anything).Return(moved, nil).Once()
		store.On("Stats", mock.Anything).Return(emptyStats(), nil).Once()

		svc := newTestService(store)

		// When: moving on square 5
		snapshot, err := svc.MakeMove(ctx, 5)

		// Then: the fresh snapshot is returned
		require.NoError(t, err)
		assert.Equal(t, moved, snapshot.Game)
		assert.Equal(t, emptyStats(), snapshot.Stats)
		store.AssertExpectations(t)
	})

	t.Run("Rejects an occupied square", func(t *testing.T) {
		// Given: square 5 taken
		store := &mockGameStore{}
		store.On("Game", mock.Anything).Return(&entity.Game{
			Moves:         []entity.Move{{SquareID: 5, Player: playerOne}},
			CurrentPlayer: playerTwo,
		}, nil)

		svc := newTestService(store)

		// When: moving on square 5 again
		snapshot, err := svc.MakeMove(ctx, 5)

		// Then: ErrCellOccupied is returned and the store is not touched
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Nil(t, snapshot)
		store.AssertNotCalled(t, "PlayerMove", mock.Anything, mock.Anything)
	})

	t.Run("Rejects a move on a complete game", func(t *testing.T) {
		// Given: a won game
		store := &mockGameStore{}
		store.On("Game", mock.Anything).Return(&entity.Game{
			Status: entity.Status{IsComplete: true, Winner: &playerOne},
		}, nil)

		svc := newTestService(store)

		// When: moving
		_, err := svc.MakeMove(ctx, 4)

		// Then: ErrGameFinished is returned
		require.ErrorIs(t, err, apperror.ErrGameFinished)
		store.AssertNotCalled(t, "PlayerMove", mock.Anything, mock.Anything)
	})

	t.Run("Rejects squares outside the board", func(t *testing.T) {
		store := &mockGameStore{}
		svc := newTestService(store)

		for _, square := range []int{-1, 0, 10} {
			// When: moving outside 1..9
			_, err := svc.MakeMove(ctx, square)

			// Then: ErrInvalidCell is returned without reading the store
			require.ErrorIs(t, err, apperror.ErrInvalidCell)
		}

		store.AssertNotCalled(t, "Game", mock.Anything)
	})

	t.Run("Store failure is returned", func(t *testing.T) {
		// Given: a store failing to write
		store := &mockGameStore{}
		store.On("Game", mock.Anything).Return(&entity.Game{Moves: []entity.Move{}}, nil)
		store.On("PlayerMove", mock.Anything, 1).Return(errSomeError)

		svc := newTestService(store)

		// When: moving
		_, err := svc.MakeMove(ctx, 1)

		// Then: the error is wrapped
		require.ErrorIs(t, err, errSomeError)
	})
}

func TestGameService_Reset(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns the snapshot after reset", func(t *testing.T) {
		// Given: a store
		store := &mockGameStore{}
		store.On("Reset", mock.Anything).Return(nil).Once()
		store.On("Game", mock.Anything).Return(&entity.Game{Moves: []entity.Move{}, CurrentPlayer: playerOne}, nil)
		store.On("Stats", mock.Anything).Return(emptyStats(), nil)

		svc := newTestService(store)

		// When: resetting
		snapshot, err := svc.Reset(ctx)

		// Then: the snapshot shows an empty board
		require.NoError(t, err)
		assert.Empty(t, snapshot.Game.Moves)
		store.AssertExpectations(t)
	})

	t.Run("Reset failure is returned", func(t *testing.T) {
		store := &mockGameStore{}
		store.On("Reset", mock.Anything).Return(errSomeError)

		_, err := newTestService(store).Reset(ctx)

		require.ErrorIs(t, err, errSomeError)
	})
}

func TestGameService_NewRound(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns the snapshot after the new round", func(t *testing.T) {
		// Given: a store
		store := &mockGameStore{}
		store.On("NewRound", mock.Anything).Return(nil).Once()
		store.On("Game", mock.Anything).Return(&entity.Game{Moves: []entity.Move{}, CurrentPlayer: playerOne}, nil)
		store.On("Stats", mock.Anything).Return(emptyStats(), nil)

		// When: starting a new round
		snapshot, err := newTestService(store).NewRound(ctx)

		// Then: the stats are empty
		require.NoError(t, err)
		assert.Zero(t, snapshot.Stats.Ties)
		store.AssertExpectations(t)
	})

	t.Run("New round failure is returned", func(t *testing.T) {
		store := &mockGameStore{}
		store.On("NewRound", mock.Anything).Return(errSomeError)

		_, err := newTestService(store).NewRound(ctx)

		require.ErrorIs(t, err, errSomeError)
	})
}

func TestGameService_Snapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("Stats failure is returned", func(t *testing.T) {
		// Given: a store failing on stats
		store := &mockGameStore{}
		store.On("Game", mock.Anything).Return(&entity.Game{}, nil)
		store.On("Stats", mock.Anything).Return(nil, apperror.ErrParse)

		// When: reading the snapshot
		snapshot, err := newTestService(store).Snapshot(ctx)

		// Then: the parse error is returned
		require.ErrorIs(t, err, apperror.ErrParse)
		assert.Nil(t, snapshot)
	})

	t.Run("History is passed through", func(t *testing.T) {
		history := &entity.History{CurrentRoundGames: []entity.CompletedGame{}, AllGames: []entity.CompletedGame{}}

		store := &mockGameStore{}
		store.On("History", mock.Anything).Return(history, nil)

		got, err := newTestService(store).History(ctx)

		require.NoError(t, err)
		assert.Same(t, history, got)
	})
}

func TestGameService_Players(t *testing.T) {
	// Given: a store with two players
	store := &mockGameStore{}
	store.On("Players").Return([]entity.Player{playerOne, playerTwo})

	// When: listing the players
	got := newTestService(store).Players()

	// Then: they are returned in turn order
	assert.Equal(t, []entity.Player{playerOne, playerTwo}, got)
	store.AssertExpectations(t)
}
