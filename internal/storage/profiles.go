package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/jwebster45206/life-engine/pkg/storage"
	"github.com/redis/go-redis/v9"
)

// Player profile operations (Redis-backed). A profile is a run counter and
// the set of every event the player's lives have triggered.

func timesKey(player string) string    { return "profile:" + player + ":times" }
func achievedKey(player string) string { return "profile:" + player + ":achieved" }

func (r *RedisStorage) LoadProfile(ctx context.Context, player string) (*storage.Profile, error) {
	if err := storage.ValidatePlayer(player); err != nil {
		return nil, err
	}

	pipe := r.client.Pipeline()
	timesCmd := pipe.Get(ctx, timesKey(player))
	achievedCmd := pipe.SMembers(ctx, achievedKey(player))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		r.logger.Error("Failed to load profile", "player", player, "error", err)
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	times, err := timesCmd.Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to parse run counter for %s: %w", player, err)
	}
	achieved, err := parseIDs(achievedCmd.Val())
	if err != nil {
		return nil, fmt.Errorf("failed to parse achieved events for %s: %w", player, err)
	}

	return &storage.Profile{Player: player, Times: times, Achieved: achieved}, nil
}

func (r *RedisStorage) RecordLife(ctx context.Context, player string, achieved []int) (*storage.Profile, error) {
	if err := storage.ValidatePlayer(player); err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Incr(ctx, timesKey(player))
	if len(achieved) > 0 {
		members := make([]any, len(achieved))
		for i, id := range achieved {
			members[i] = id
		}
		pipe.SAdd(ctx, achievedKey(player), members...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to record life", "player", player, "error", err)
		return nil, fmt.Errorf("failed to record life: %w", err)
	}

	return r.LoadProfile(ctx, player)
}

func parseIDs(members []string) ([]int, error) {
	ids := make([]int, 0, len(members))
	for _, m := range members {
		id, err := strconv.Atoi(m)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
