package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"trivia-session-service/internal/app"
	"trivia-session-service/internal/domain"
)

const boardKey = "leaderboard:local"

// BoardCache keeps the local leaderboard fallback in a Redis sorted set:
// member = entry JSON, score = quiz score. The set is trimmed to the
// highest app.LocalCacheCap entries on every write.
type BoardCache struct {
	client *redis.Client
}

func NewBoardCache(client *redis.Client) *BoardCache {
	return &BoardCache{client: client}
}

func (c *BoardCache) Append(ctx context.Context, entry domain.LeaderboardEntry) error {
	member, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, boardKey, redis.Z{Score: float64(entry.Score), Member: string(member)})
	pipe.ZRemRangeByRank(ctx, boardKey, 0, int64(-(app.LocalCacheCap + 1)))
	_, err = pipe.Exec(ctx)
	return err
}

// Top returns entries in descending score order.
func (c *BoardCache) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	members, err := c.client.ZRevRange(ctx, boardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]domain.LeaderboardEntry, 0, len(members))
	for _, member := range members {
		var entry domain.LeaderboardEntry
		if err := json.Unmarshal([]byte(member), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (c *BoardCache) Replace(ctx context.Context, entries []domain.LeaderboardEntry) error {
	pipe := c.client.Pipeline()
	pipe.Del(ctx, boardKey)
	for _, entry := range entries {
		member, err := json.Marshal(entry)
		if err != nil {
			continue
		}
		pipe.ZAdd(ctx, boardKey, redis.Z{Score: float64(entry.Score), Member: string(member)})
	}
	pipe.ZRemRangeByRank(ctx, boardKey, 0, int64(-(app.LocalCacheCap + 1)))
	_, err := pipe.Exec(ctx)
	return err
}
