package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/t3-store/internal/entity"
	"github.com/rocketscienceinc/t3-store/internal/service"
)

const (
	actionStateChange = "statechange"
	actionGameMove    = "game:move"
	actionGameReset   = "game:reset"
	actionNewRound    = "game:new-round"
	actionError       = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Game     *entity.Game  `json:"game,omitempty"`
	Stats    *entity.Stats `json:"stats,omitempty"`
	SquareID *int          `json:"squareId,omitempty"`
	Error    string        `json:"error,omitempty"`
}

func snapshotPayload(snapshot *service.Snapshot) Payload {
	return Payload{
		Game:  snapshot.Game,
		Stats: snapshot.Stats,
	}
}

func encodeMessage(action string, payload Payload) ([]byte, error) {
	rawPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: rawPayload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}
