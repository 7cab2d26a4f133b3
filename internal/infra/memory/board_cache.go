package memory

import (
	"context"
	"sort"
	"sync"

	"trivia-session-service/internal/app"
	"trivia-session-service/internal/domain"
)

// BoardCache is the in-memory local leaderboard cache, capped at the
// highest app.LocalCacheCap scores.
type BoardCache struct {
	mu      sync.RWMutex
	entries []domain.LeaderboardEntry
}

func NewBoardCache() *BoardCache {
	return &BoardCache{}
}

func (c *BoardCache) Append(_ context.Context, entry domain.LeaderboardEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry)
	sortByScore(c.entries)
	if len(c.entries) > app.LocalCacheCap {
		c.entries = c.entries[:app.LocalCacheCap]
	}
	return nil
}

func (c *BoardCache) Top(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if limit > len(c.entries) {
		limit = len(c.entries)
	}
	out := make([]domain.LeaderboardEntry, limit)
	copy(out, c.entries[:limit])
	return out, nil
}

func (c *BoardCache) Replace(_ context.Context, entries []domain.LeaderboardEntry) error {
	copied := make([]domain.LeaderboardEntry, len(entries))
	copy(copied, entries)
	sortByScore(copied)
	if len(copied) > app.LocalCacheCap {
		copied = copied[:app.LocalCacheCap]
	}
	c.mu.Lock()
	c.entries = copied
	c.mu.Unlock()
	return nil
}

func sortByScore(entries []domain.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
}
