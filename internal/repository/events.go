package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gridmatch-backend/internal/entity"
)

type EventPublisher interface {
	Publish(ctx context.Context, event *entity.Event) error
}

type redisEvents struct {
	client *redis.Client
}

func NewEventPublisher(client *redis.Client) EventPublisher {
	return &redisEvents{
		client: client,
	}
}

func (that *redisEvents) Publish(ctx context.Context, event *entity.Event) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not marshal event: %w", err)
	}

	if err = that.client.Publish(ctx, event.Channel(), eventJSON).Err(); err != nil {
		return storageErr("publish "+event.Channel(), err)
	}

	return nil
}
