package tictactoe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/t3-store/internal/apperror"
	"github.com/rocketscienceinc/t3-store/internal/entity"
)

const (
	OperationMove     = "move"
	OperationReset    = "reset"
	OperationNewRound = "new_round"
)

type stateRepo interface {
	Read(ctx context.Context) (*entity.GameState, error)
	Write(ctx context.Context, state *entity.GameState) error
}

type stateWatcher interface {
	Watch(ctx context.Context, onChange func()) error
}

type recorder interface {
	StateCommitted(operation string)
	ExternalChange()
	ParseFailed()
}

// Store owns the game state. Every view is derived from a fresh read of the persisted state and
// every mutation works on a deep copy of it before committing.
type Store struct {
	logger   *slog.Logger
	repo     stateRepo
	players  []entity.Player
	notifier *Notifier
	metrics  recorder
}

// NewStore - creates a store for exactly two players.
func NewStore(logger *slog.Logger, repo stateRepo, players []entity.Player, metrics recorder) (*Store, error) {
	if len(players) != 2 {
		return nil, fmt.Errorf("%w: got %d", apperror.ErrInvalidPlayers, len(players))
	}

	configured := make([]entity.Player, len(players))
	copy(configured, players)

	return &Store{
		logger:   logger.With("component", "store"),
		repo:     repo,
		players:  configured,
		notifier: NewNotifier(),
		metrics:  metrics,
	}, nil
}

// Players - returns a copy of the configured players.
func (that *Store) Players() []entity.Player {
	players := make([]entity.Player, len(that.players))
	copy(players, that.players)

	return players
}

// Game - derives the game in progress: moves, whose turn it is and the status.
func (that *Store) Game(ctx context.Context) (*entity.Game, error) {
	state, err := that.getState(ctx)
	if err != nil {
		return nil, err
	}

	return deriveGame(that.players, state), nil
}

// Stats - wins per player and ties in the current round.
func (that *Store) Stats(ctx context.Context) (*entity.Stats, error) {
	state, err := that.getState(ctx)
	if err != nil {
		return nil, err
	}

	return deriveStats(that.players, state), nil
}

// History - all archived games, including the ones of the current round.
func (that *Store) History(ctx context.Context) (*entity.History, error) {
	state, err := that.getState(ctx)
	if err != nil {
		return nil, err
	}

	history := state.Clone().History

	return &history, nil
}

// PlayerMove - records a move on the square for the current player.
// The caller must make sure the square is free; the store does not check it.
func (that *Store) PlayerMove(ctx context.Context, squareID int) error {
	state, err := that.getState(ctx)
	if err != nil {
		return err
	}

	stateClone := state.Clone()
	stateClone.CurrentGameMoves = append(stateClone.CurrentGameMoves, entity.Move{
		SquareID: squareID,
		Player:   currentPlayer(that.players, state.CurrentGameMoves),
	})

	return that.saveState(ctx, OperationMove, stateClone)
}

// Reset - archives the current game if it is complete and clears the board.
func (that *Store) Reset(ctx context.Context) error {
	state, err := that.getState(ctx)
	if err != nil {
		return err
	}

	stateClone := state.Clone()

	game := deriveGame(that.players, state)
	if game.Status.IsComplete {
		stateClone.History.CurrentRoundGames = append(stateClone.History.CurrentRoundGames, entity.CompletedGame{
			Moves:  game.Moves,
			Status: game.Status,
		})
	}

	stateClone.CurrentGameMoves = []entity.Move{}

	return that.saveState(ctx, OperationReset, stateClone)
}

// NewRound - resets the board, then moves the games of the current round into the full history.
func (that *Store) NewRound(ctx context.Context) error {
	if err := that.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset before new round: %w", err)
	}

	return that.saveState(ctx, OperationNewRound, func(prev *entity.GameState) *entity.GameState {
		next := prev.Clone()
		next.History.AllGames = append(next.History.AllGames, next.History.CurrentRoundGames...)
		next.History.CurrentRoundGames = []entity.CompletedGame{}

		return next
	})
}

// Subscribe - registers a listener called after every commit and every external change.
func (that *Store) Subscribe(listener Listener) func() {
	return that.notifier.Subscribe(listener)
}

// WatchExternal - forwards changes written by other processes to the store listeners.
// It blocks until ctx is done or the watcher fails.
func (that *Store) WatchExternal(ctx context.Context, watcher stateWatcher) error {
	log := that.logger.With("method", "WatchExternal")

	err := watcher.Watch(ctx, func() {
		log.Debug("state changed in another process")

		that.metrics.ExternalChange()
		that.notifier.NotifyExternal()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to watch external changes: %w", err)
	}

	return nil
}

// saveState - transitions from the previous state to a new one. It accepts either the new state
// or a function deriving it from the previous state.
func (that *Store) saveState(ctx context.Context, operation string, stateOrFn any) error {
	var newState *entity.GameState

	switch value := stateOrFn.(type) {
	case func(*entity.GameState) *entity.GameState:
		prevState, err := that.getState(ctx)
		if err != nil {
			return err
		}

		newState = value(prevState)
	case *entity.GameState:
		newState = value
	default:
		return fmt.Errorf("%w: %T", apperror.ErrInvalidArgument, stateOrFn)
	}

	if newState == nil {
		return fmt.Errorf("%w: nil state", apperror.ErrInvalidArgument)
	}

	if err := that.repo.Write(ctx, newState); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	that.metrics.StateCommitted(operation)
	that.logger.Debug("state committed", "operation", operation, "moves", len(newState.CurrentGameMoves))

	that.notifier.Notify()

	return nil
}

func (that *Store) getState(ctx context.Context) (*entity.GameState, error) {
	state, err := that.repo.Read(ctx)
	if err != nil {
		if errors.Is(err, apperror.ErrParse) {
			that.metrics.ParseFailed()
		}

		return nil, fmt.Errorf("failed to get state: %w", err)
	}

	return state, nil
}
