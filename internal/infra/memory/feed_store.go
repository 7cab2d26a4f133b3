package memory

import (
	"context"
	"sort"
	"sync"

	"trivia-session-service/internal/domain"
)

// FeedStore is an in-process stand-in for the remote score and comment
// store, used when Postgres is not configured and in tests.
type FeedStore struct {
	mu       sync.RWMutex
	scores   []domain.LeaderboardEntry
	comments []domain.CommunityComment
}

func NewFeedStore() *FeedStore {
	return &FeedStore{}
}

func (f *FeedStore) SaveScore(_ context.Context, entry domain.LeaderboardEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scores = append(f.scores, entry)
	return nil
}

func (f *FeedStore) TopScores(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]domain.LeaderboardEntry, len(f.scores))
	copy(out, f.scores)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *FeedStore) SaveComment(_ context.Context, comment domain.CommunityComment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments = append(f.comments, comment)
	return nil
}

// RecentComments returns the newest comments first.
func (f *FeedStore) RecentComments(_ context.Context, limit int) ([]domain.CommunityComment, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]domain.CommunityComment, len(f.comments))
	copy(out, f.comments)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
