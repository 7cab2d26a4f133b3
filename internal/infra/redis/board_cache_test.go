package redis

import (
	"context"
	"fmt"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"trivia-session-service/internal/app"
	"trivia-session-service/internal/domain"
)

func newClient(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func boardEntry(name string, score int) domain.LeaderboardEntry {
	return domain.LeaderboardEntry{ID: name, Name: name, Score: score, Total: 10}
}

func TestBoardCacheAppendAndTop(t *testing.T) {
	cache := NewBoardCache(newClient(t))
	ctx := context.Background()

	for _, score := range []int{4, 9, 2} {
		if err := cache.Append(ctx, boardEntry(fmt.Sprintf("p%d", score), score)); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	top, err := cache.Top(ctx, 10)
	if err != nil {
		t.Fatalf("top failed: %v", err)
	}
	if len(top) != 3 || top[0].Score != 9 || top[2].Score != 2 {
		t.Fatalf("expected descending scores, got %+v", top)
	}
}

func TestBoardCacheTrimsToCap(t *testing.T) {
	cache := NewBoardCache(newClient(t))
	ctx := context.Background()

	for i := 0; i < app.LocalCacheCap+5; i++ {
		if err := cache.Append(ctx, boardEntry(fmt.Sprintf("p%02d", i), i)); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	top, err := cache.Top(ctx, app.LocalCacheCap+5)
	if err != nil {
		t.Fatalf("top failed: %v", err)
	}
	if len(top) != app.LocalCacheCap {
		t.Fatalf("expected cap of %d entries, got %d", app.LocalCacheCap, len(top))
	}
	if top[len(top)-1].Score != 5 {
		t.Fatalf("lowest scores should be evicted, kept %d", top[len(top)-1].Score)
	}
}

func TestBoardCacheReplace(t *testing.T) {
	cache := NewBoardCache(newClient(t))
	ctx := context.Background()
	cache.Append(ctx, boardEntry("old", 1))

	fresh := []domain.LeaderboardEntry{boardEntry("a", 4), boardEntry("b", 8)}
	if err := cache.Replace(ctx, fresh); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	top, err := cache.Top(ctx, 10)
	if err != nil {
		t.Fatalf("top failed: %v", err)
	}
	if len(top) != 2 || top[0].Name != "b" {
		t.Fatalf("expected replaced board, got %+v", top)
	}
}

func TestStatsStoreAccumulates(t *testing.T) {
	store := NewStatsStore(newClient(t))
	ctx := context.Background()

	stats, err := store.RecordGame(ctx, "device-1", 7, 10, false)
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if stats.TotalGames != 1 || stats.BestScorePercentage != 70 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	stats, err = store.RecordGame(ctx, "device-1", 3, 10, true)
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if stats.TotalGames != 2 || stats.DailyChallengesCompleted != 1 || stats.BestScorePercentage != 70 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	read, err := store.Stats(ctx, "device-1")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if read != stats {
		t.Fatalf("read back %+v, want %+v", read, stats)
	}
}

func TestStatsStoreCorruptValueResets(t *testing.T) {
	client := newClient(t)
	store := NewStatsStore(client)
	ctx := context.Background()

	if err := client.Set(ctx, "stats:device-1", "{not json", 0).Err(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	stats, err := store.Stats(ctx, "device-1")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if stats != (domain.UserStats{}) {
		t.Fatalf("corrupt value should read as zero, got %+v", stats)
	}
}
