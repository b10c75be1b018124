package pubsub

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/pixelgenesis/credential-node/internal/log"
)

// RedisClient struct
type RedisClient struct {
	conn *redis.Client
}

// NewRedis returns a redis pubsub client
func NewRedis(rdb *redis.Client) *RedisClient {
	return &RedisClient{rdb}
}

// Publish publishes a new topic payload
func (rdb *RedisClient) Publish(ctx context.Context, topic string, payload Event) error {
	msg, err := payload.Marshal()
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}
	return rdb.conn.Publish(ctx, topic, []byte(msg)).Err()
}

// Subscribe listens to topic until ctx is cancelled. Each message is handled by callback
// and a panic inside callback is recovered so the subscription keeps running.
func (rdb *RedisClient) Subscribe(ctx context.Context, topic string, callback EventHandler) {
	ps := rdb.conn.Subscribe(ctx, topic)
	// Wait for the subscription to be confirmed so no message published after this call is lost.
	if _, err := ps.Receive(ctx); err != nil {
		log.Error(ctx, "subscribing to topic", "topic", topic, "err", err)
	}
	go func() {
		defer func() { _ = ps.Close() }()
		ch := ps.Channel()
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				if event.Channel != topic {
					log.Error(ctx, "msg channel != topic", "channel", event.Channel, "topic", topic)
					continue
				}
				handle(ctx, topic, Message(event.Payload), callback)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func handle(ctx context.Context, topic string, msg Message, callback EventHandler) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(ctx, "recovered from panic in pubsub callback", "topic", topic, "panic", r)
		}
	}()
	if err := callback(ctx, msg); err != nil {
		log.Error(ctx, "executing callback function", "topic", topic, "err", err)
	}
}
