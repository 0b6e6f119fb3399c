// Package gateway delivers coordinator events to connected clients:
// a Redis pub/sub publisher addressed per user or per document room,
// and a WebSocket hub that relays the subscribed channels to sockets.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Channel naming. Per-user channels carry operation/cursor/session
// events addressed to that user; room channels carry document-wide
// fan-out.
func UserChannel(userID string) string { return "user:" + userID }
func RoomChannel(roomID string) string { return "doc:" + roomID }

// Envelope is the published message frame.
type Envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// RedisGateway publishes events over Redis pub/sub. Redis guarantees
// per-subscriber delivery order on a channel, which is all the
// coordinator requires of its transport.
type RedisGateway struct {
	client *redis.Client
}

func NewRedisGateway(client *redis.Client) *RedisGateway {
	return &RedisGateway{client: client}
}

func (g *RedisGateway) SendToUser(ctx context.Context, userID, event string, payload any) error {
	return g.publish(ctx, UserChannel(userID), event, payload)
}

func (g *RedisGateway) SendToRoom(ctx context.Context, roomID, event string, payload any) error {
	return g.publish(ctx, RoomChannel(roomID), event, payload)
}

func (g *RedisGateway) publish(ctx context.Context, channel, event string, payload any) error {
	buf, err := json.Marshal(Envelope{Event: event, Payload: payload})
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}
	if err := g.client.Publish(ctx, channel, buf).Err(); err != nil {
		return fmt.Errorf("publish %s to %s: %w", event, channel, err)
	}
	return nil
}
