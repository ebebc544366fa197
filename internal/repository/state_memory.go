package repository

import (
	"context"

	"github.com/rocketscienceinc/t3-store/internal/entity"
	"github.com/rocketscienceinc/t3-store/internal/repository/storage"
)

type memoryState struct {
	storage *storage.MemoryStorage
	key     string
	origin  string
}

// NewMemoryStateRepository - every repository created on the same storage acts as a separate
// process sharing the slot.
func NewMemoryStateRepository(storage *storage.MemoryStorage, key string) StateRepository {
	return &memoryState{
		storage: storage,
		key:     key,
		origin:  newOrigin(),
	}
}

func (that *memoryState) Read(_ context.Context) (*entity.GameState, error) {
	data, ok := that.storage.Get(that.key)
	if !ok {
		return entity.InitialState(), nil
	}

	return decodeState(data)
}

func (that *memoryState) Write(_ context.Context, state *entity.GameState) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}

	that.storage.Set(that.key, data, that.origin)

	return nil
}

func (that *memoryState) Watch(ctx context.Context, onChange func()) error {
	changes, stop := that.storage.Watch()
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case change := <-changes:
			if change.Key == that.key && change.Origin != that.origin {
				onChange()
			}
		}
	}
}
