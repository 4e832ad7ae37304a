package revalidate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/acmelabs/invoice_dashboard/internal/logging"
)

const publishTimeout = 2 * time.Second

type message struct {
	Origin string `json:"origin"`
	Path   string `json:"path"`
}

// RedisBroadcaster shares revalidations between instances over a Redis channel.
type RedisBroadcaster struct {
	local   *Registry
	rdb     *redis.Client
	channel string
	origin  string
	logger  *logging.Logger
}

// NewRedisBroadcaster connects to redisURL and wraps local.
func NewRedisBroadcaster(ctx context.Context, redisURL, channel string, local *Registry, logger *logging.Logger) (*RedisBroadcaster, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if logger == nil {
		logger = logging.NewDiscard()
	}
	return &RedisBroadcaster{
		local:   local,
		rdb:     rdb,
		channel: channel,
		origin:  logging.NewTraceID(),
		logger:  logger,
	}, nil
}

// Revalidate marks path stale locally and publishes it to other instances.
// Publish failures are logged; the local revalidation always happens.
func (b *RedisBroadcaster) Revalidate(path string) {
	b.local.Revalidate(path)

	payload, err := json.Marshal(message{Origin: b.origin, Path: Normalize(path)})
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		b.logger.WithError(err).WithField("path", path).Warn("Failed to publish revalidation")
	}
}

// Listen applies revalidations published by other instances until ctx is done.
// Cancellation is a normal stop and returns nil.
func (b *RedisBroadcaster) Listen(ctx context.Context) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("revalidation subscription closed")
			}
			b.handle(msg.Payload)
		}
	}
}

func (b *RedisBroadcaster) handle(payload string) {
	var m message
	if err := json.Unmarshal([]byte(payload), &m); err != nil || m.Path == "" {
		b.logger.WithField("payload", payload).Warn("Ignoring malformed revalidation message")
		return
	}
	if m.Origin == b.origin {
		return
	}
	b.local.apply(m.Path, "remote")
}

// Close releases the Redis connection.
func (b *RedisBroadcaster) Close() error {
	return b.rdb.Close()
}
