// Package store holds the persistence adapters for document snapshots
// and the durable operation archive.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/redis/go-redis/v9"

	"github.com/Vib3Cod3r/saleshub-sub000/internal/collab"
)

// Snapshots live under document:{id}. The TTL is advisory: it bounds
// how long an abandoned document lingers, it is not a correctness
// mechanism.
const (
	keyPrefix   = "document:"
	snapshotTTL = 7 * 24 * time.Hour

	saveRetries = 4
)

func documentKey(id string) string { return keyPrefix + id }

// RedisStore persists document snapshots as JSON values in Redis.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context, id string) (*collab.Document, error) {
	val, err := s.client.Get(ctx, documentKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, collab.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", id, err)
	}
	var doc collab.Document
	if err := json.Unmarshal(val, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	return &doc, nil
}

// Save writes the snapshot, refreshing the TTL. Transient write
// failures are retried with capped exponential backoff before the call
// is reported failed.
func (s *RedisStore) Save(ctx context.Context, doc *collab.Document) error {
	buf, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", doc.ID, err)
	}
	write := func() error {
		return s.client.Set(ctx, documentKey(doc.ID), buf, snapshotTTL).Err()
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), saveRetries), ctx)
	if err := backoff.Retry(write, policy); err != nil {
		return fmt.Errorf("save document %s: %w", doc.ID, err)
	}
	return nil
}
