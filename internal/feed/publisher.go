package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"civictracker/backend/internal/config"
	"civictracker/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// Publisher distributes events to every server instance through Redis
// pub/sub. Without Redis it delivers straight to the local hub.
type Publisher struct {
	rdb    *redis.Client
	hub    *Hub
	logger *slog.Logger
}

func NewPublisher(rdb *redis.Client, hub *Hub, logger *slog.Logger) *Publisher {
	return &Publisher{
		rdb:    rdb,
		hub:    hub,
		logger: logger.With("component", "feed"),
	}
}

// Publish sends event to all instances.
func (p *Publisher) Publish(ctx context.Context, event models.Event) error {
	if p.rdb == nil {
		p.hub.Broadcast(event)
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.rdb.Publish(ctx, config.EventsChannel, data).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Listen subscribes to the events channel and forwards every message to the
// local hub until ctx is done. It returns once the subscription is confirmed.
func (p *Publisher) Listen(ctx context.Context) error {
	if p.rdb == nil {
		return nil
	}

	sub := p.rdb.Subscribe(ctx, config.EventsChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", config.EventsChannel, err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event models.Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					p.logger.Warn("dropping malformed event", "error", err)
					continue
				}
				p.hub.Broadcast(event)
			}
		}
	}()
	return nil
}
