package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/t3-store/internal/apperror"
	"github.com/rocketscienceinc/t3-store/internal/entity"
)

// Snapshot is what clients render: the game in progress and the round stats.
type Snapshot struct {
	Game  *entity.Game  `json:"game"`
	Stats *entity.Stats `json:"stats"`
}

type GameService interface {
	Players() []entity.Player
	Snapshot(ctx context.Context) (*Snapshot, error)
	Stats(ctx context.Context) (*entity.Stats, error)
	History(ctx context.Context) (*entity.History, error)

	MakeMove(ctx context.Context, squareID int) (*Snapshot, error)
	Reset(ctx context.Context) (*Snapshot, error)
	NewRound(ctx context.Context) (*Snapshot, error)
}

type gameStore interface {
	Players() []entity.Player
	Game(ctx context.Context) (*entity.Game, error)
	Stats(ctx context.Context) (*entity.Stats, error)
	History(ctx context.Context) (*entity.History, error)

	PlayerMove(ctx context.Context, squareID int) error
	Reset(ctx context.Context) error
	NewRound(ctx context.Context) error
}

type gameService struct {
	logger *slog.Logger
	store  gameStore
}

func NewGameService(logger *slog.Logger, store gameStore) GameService {
	return &gameService{
		logger: logger,
		store:  store,
	}
}

func (that *gameService) Players() []entity.Player {
	return that.store.Players()
}

func (that *gameService) Snapshot(ctx context.Context) (*Snapshot, error) {
	game, err := that.store.Game(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	stats, err := that.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return &Snapshot{Game: game, Stats: stats}, nil
}

func (that *gameService) Stats(ctx context.Context) (*entity.Stats, error) {
	stats, err := that.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return stats, nil
}

func (that *gameService) History(ctx context.Context) (*entity.History, error) {
	history, err := that.store.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	return history, nil
}

// MakeMove - the store trusts its caller with the square, so it is checked here.
func (that *gameService) MakeMove(ctx context.Context, squareID int) (*Snapshot, error) {
	log := that.logger.With("method", "MakeMove", "squareID", squareID)

	if !entity.IsValidSquare(squareID) {
		return nil, fmt.Errorf("%w: square %d", apperror.ErrInvalidCell, squareID)
	}

	game, err := that.store.Game(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if game.Status.IsComplete {
		return nil, apperror.ErrGameFinished
	}

	if game.IsOccupied(squareID) {
		return nil, fmt.Errorf("%w: square %d", apperror.ErrCellOccupied, squareID)
	}

	if err = that.store.PlayerMove(ctx, squareID); err != nil {
		return nil, fmt.Errorf("failed to make move: %w", err)
	}

	log.Debug("move made", "playerID", game.CurrentPlayer.ID)

	return that.Snapshot(ctx)
}

func (that *gameService) Reset(ctx context.Context) (*Snapshot, error) {
	if err := that.store.Reset(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset game: %w", err)
	}

	return that.Snapshot(ctx)
}

func (that *gameService) NewRound(ctx context.Context) (*Snapshot, error) {
	if err := that.store.NewRound(ctx); err != nil {
		return nil, fmt.Errorf("failed to start new round: %w", err)
	}

	that.logger.Info("new round started")

	return that.Snapshot(ctx)
}
