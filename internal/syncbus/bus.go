// Package syncbus fans out state changes to other views of the same stand
// over a redis pub/sub channel. Delivery is fire-and-forget, last write
// wins; the bus is a replication side-channel, never a source of truth.
package syncbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/ventasapp/services/pos/config"
)

// Event types on the wire. Replaced events carry a whole collection; the
// rest patch a single entity.
const (
	EventStationsReplaced = "puestos_actualizado"
	EventProductsReplaced = "productos_actualizado"
	EventOrdersReplaced   = "pedidos_actualizado"
	EventSalesReplaced    = "ventas_actualizado"
	EventOrderCreated     = "nuevo_pedido"
	EventOrderUpdated     = "pedido_actualizado"
	EventSaleRecorded     = "venta_registrada"
)

// Event is one sync message. Origin identifies the publishing instance so a
// node can drop its own events instead of re-applying them (feedback-loop
// guard).
type Event struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Origin    string          `json:"origin"`
	Timestamp int64           `json:"timestamp"`
}

// Publisher is the outbound half of the bus. Services depend on it instead
// of the concrete Bus so tests can capture emitted events.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// Bus publishes and subscribes on the sync channel.
type Bus struct {
	client  *redis.Client
	channel string
	origin  string
	enabled bool
}

// New connects to redis. A disabled config yields a no-op bus, mirroring how
// the rest of the collaborators degrade.
func New(cfg config.RedisConfig) (*Bus, error) {
	if !cfg.Enabled {
		return &Bus{enabled: false}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to Redis")
	}

	return &Bus{
		client:  client,
		channel: cfg.Channel,
		origin:  uuid.New().String(),
		enabled: true,
	}, nil
}

// Publish sends one event. Errors are returned for the caller to log; a
// failed publish never affects local state.
func (b *Bus) Publish(ctx context.Context, eventType string, payload interface{}) error {
	if b == nil || !b.enabled {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal sync payload")
	}
	msg, err := json.Marshal(Event{
		Type:      eventType,
		Data:      data,
		Origin:    b.origin,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return errors.Wrap(err, "failed to marshal sync event")
	}

	if err := b.client.Publish(ctx, b.channel, msg).Err(); err != nil {
		return errors.Wrap(err, "failed to publish sync event")
	}
	return nil
}

// Subscribe delivers inbound events from other instances to handler on a
// dedicated goroutine, one at a time. Events published by this instance are
// dropped. The returned function unsubscribes.
func (b *Bus) Subscribe(ctx context.Context, handler func(Event)) (func(), error) {
	if b == nil || !b.enabled {
		return func() {}, nil
	}

	pubsub := b.client.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to subscribe to sync channel")
	}

	go func() {
		for msg := range pubsub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Warn().Err(err).Msg("Dropping malformed sync event")
				continue
			}
			if ev.Origin == b.origin {
				continue
			}
			handler(ev)
		}
	}()

	return func() {
		if err := pubsub.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing sync subscription")
		}
	}, nil
}

// Close releases the redis connection.
func (b *Bus) Close() error {
	if b == nil || !b.enabled || b.client == nil {
		return nil
	}
	return b.client.Close()
}
