package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jwebster45206/life-engine/pkg/storage"
	"github.com/redis/go-redis/v9"
)

// Life archive operations (Redis-backed)

func lifeKey(id uuid.UUID) string {
	return "life:" + id.String()
}

func (r *RedisStorage) SaveLife(ctx context.Context, rec *storage.LifeRecord) error {
	if rec == nil {
		return errors.New("life record cannot be nil")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		r.logger.Error("Failed to marshal life", "uuid", rec.ID, "error", err)
		return fmt.Errorf("failed to marshal life: %w", err)
	}

	if err := r.client.Set(ctx, lifeKey(rec.ID), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save life", "uuid", rec.ID, "error", err)
		return fmt.Errorf("failed to save life: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadLife(ctx context.Context, id uuid.UUID) (*storage.LifeRecord, error) {
	data, err := r.client.Get(ctx, lifeKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Life not found", "uuid", id)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load life", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load life: %w", err)
	}

	var rec storage.LifeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		r.logger.Error("Failed to unmarshal life", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal life: %w", err)
	}
	return &rec, nil
}

func (r *RedisStorage) DeleteLife(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, lifeKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete life", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete life: %w", err)
	}
	return nil
}
