package apperror

import "errors"

var (
	ErrParse            = errors.New("failed to parse stored state")
	ErrInvalidArgument  = errors.New("invalid argument passed to save state")
	ErrInvalidPlayers   = errors.New("exactly two players are required")
	ErrUnknownStorage   = errors.New("unknown storage driver")
	ErrGameFinished     = errors.New("game is already finished")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrInvalidCell      = errors.New("invalid cell index")
	ErrNoStorageAddress = errors.New("storage address is empty")
)
