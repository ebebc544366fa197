package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/t3-store/internal/apperror"
	"github.com/rocketscienceinc/t3-store/internal/entity"
)

// StateRepository keeps the game state as one serialized record under a key. A missing record
// reads as the initial state.
type StateRepository interface {
	Read(ctx context.Context) (*entity.GameState, error)
	Write(ctx context.Context, state *entity.GameState) error

	// Watch blocks until ctx is done and calls onChange whenever the record is rewritten by
	// another repository instance. Writes made through this instance are not reported.
	Watch(ctx context.Context, onChange func()) error
}

func newOrigin() string {
	return uuid.NewString()
}

// maxChannelLength - postgres identifiers are limited to 63 bytes; pg_notify rejects longer ones.
const maxChannelLength = 63

const changeSuffix = ":changed"

// changeChannel - "<key>:changed", with long keys replaced by their name-based uuid.
func changeChannel(key string) string {
	if len(key)+len(changeSuffix) <= maxChannelLength {
		return key + changeSuffix
	}

	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String() + changeSuffix
}

func encodeState(state *entity.GameState) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("could not marshal state: %w", err)
	}

	return data, nil
}

// decodeState - an empty record counts as absent.
func decodeState(data []byte) (*entity.GameState, error) {
	if len(data) == 0 {
		return entity.InitialState(), nil
	}

	var state entity.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrParse, err)
	}

	state.Normalize()

	return &state, nil
}
