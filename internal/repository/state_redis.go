package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/t3-store/internal/entity"
)

type redisState struct {
	client *redis.Client
	key    string
	origin string
}

// NewRedisStateRepository - writes publish the writer origin on "<key>:changed" so other
// instances can tell they have to re-read.
func NewRedisStateRepository(client *redis.Client, key string) StateRepository {
	return &redisState{
		client: client,
		key:    key,
		origin: newOrigin(),
	}
}

func (that *redisState) Read(ctx context.Context) (*entity.GameState, error) {
	response, err := that.client.Get(ctx, that.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return entity.InitialState(), nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get state: %w", err)
	}

	return decodeState(response)
}

func (that *redisState) Write(ctx context.Context, state *entity.GameState) error {
	stateJSON, err := encodeState(state)
	if err != nil {
		return err
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, that.key, stateJSON, 0)
		pipe.Publish(ctx, changeChannel(that.key), that.origin)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set state: %w", err)
	}

	return nil
}

func (that *redisState) Watch(ctx context.Context, onChange func()) error {
	pubsub := that.client.Subscribe(ctx, changeChannel(that.key))
	defer pubsub.Close()

	// wait for the subscription to be confirmed, otherwise early messages are lost
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to state changes: %w", err)
	}

	messages := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			if msg.Payload != that.origin {
				onChange()
			}
		}
	}
}
