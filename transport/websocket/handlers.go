package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/t3-store/internal/apperror"
)

// The new snapshot reaches every client through Broadcast, so handlers only answer on failure.

func (that *Server) handleMove(ctx context.Context, msg *Message, sender *client) error {
	log := that.logger.With("method", "handleMove")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.SquareID == nil {
		log.Warn("squareId is missing in payload")
		that.sendError(sender, apperror.ErrInvalidCell)

		return nil
	}

	if _, err := that.gameService.MakeMove(ctx, *payloadReq.SquareID); err != nil {
		return that.reject(sender, err)
	}

	return nil
}

func (that *Server) handleReset(ctx context.Context, _ *Message, sender *client) error {
	if _, err := that.gameService.Reset(ctx); err != nil {
		return that.reject(sender, err)
	}

	return nil
}

func (that *Server) handleNewRound(ctx context.Context, _ *Message, sender *client) error {
	if _, err := that.gameService.NewRound(ctx); err != nil {
		return that.reject(sender, err)
	}

	return nil
}

// reject - reports a failed command to its sender; rule violations are not server errors.
func (that *Server) reject(sender *client, err error) error {
	if errors.Is(err, apperror.ErrInvalidCell) ||
		errors.Is(err, apperror.ErrCellOccupied) ||
		errors.Is(err, apperror.ErrGameFinished) {
		that.sendError(sender, err)

		return nil
	}

	that.sendError(sender, errors.New("internal error"))

	return err
}
