package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"trivia-session-service/internal/domain"
)

// StatsStore keeps per-device lifetime statistics as JSON values.
type StatsStore struct {
	client *redis.Client
}

func NewStatsStore(client *redis.Client) *StatsStore {
	return &StatsStore{client: client}
}

func (s *StatsStore) key(deviceID string) string {
	return "stats:" + deviceID
}

// Stats returns the accumulated statistics, zero-valued when absent.
func (s *StatsStore) Stats(ctx context.Context, deviceID string) (domain.UserStats, error) {
	raw, err := s.client.Get(ctx, s.key(deviceID)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.UserStats{}, nil
	}
	if err != nil {
		return domain.UserStats{}, err
	}
	var stats domain.UserStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		// Corrupt value: start over rather than poisoning every game.
		return domain.UserStats{}, nil
	}
	return stats, nil
}

func (s *StatsStore) RecordGame(ctx context.Context, deviceID string, correct, total int, isDaily bool) (domain.UserStats, error) {
	stats, err := s.Stats(ctx, deviceID)
	if err != nil {
		return domain.UserStats{}, err
	}
	updated := stats.Record(correct, total, isDaily)
	raw, err := json.Marshal(updated)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("marshal stats: %w", err)
	}
	if err := s.client.Set(ctx, s.key(deviceID), raw, 0).Err(); err != nil {
		return domain.UserStats{}, err
	}
	return updated, nil
}
