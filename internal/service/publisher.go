package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PredictionEvent is broadcast after a prediction has been recorded.
type PredictionEvent struct {
	RecordID    int64     `json:"record_id"`
	Prediction  float64   `json:"prediction"`
	Overridden  bool      `json:"overridden"`
	PredictedAt time.Time `json:"predicted_at"`
}

// Publisher delivers prediction events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event PredictionEvent) error
}

// RedisPublisher publishes events as JSON on a Redis channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher connects to the Redis instance at url.
func NewRedisPublisher(url, channel string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewRedisPublisherFromClient(redis.NewClient(opts), channel), nil
}

// NewRedisPublisherFromClient wraps an existing client.
func NewRedisPublisherFromClient(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

// Publish sends the event to the configured channel.
func (p *RedisPublisher) Publish(ctx context.Context, event PredictionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal prediction event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish prediction event: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection.
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
