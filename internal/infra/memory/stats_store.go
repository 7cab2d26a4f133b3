package memory

import (
	"context"
	"sync"

	"trivia-session-service/internal/domain"
)

// StatsStore keeps per-device lifetime statistics in memory.
type StatsStore struct {
	mu    sync.RWMutex
	stats map[string]domain.UserStats
}

func NewStatsStore() *StatsStore {
	return &StatsStore{stats: make(map[string]domain.UserStats)}
}

// Stats returns the accumulated statistics, zero-valued when absent.
func (s *StatsStore) Stats(_ context.Context, deviceID string) (domain.UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats[deviceID], nil
}

func (s *StatsStore) RecordGame(_ context.Context, deviceID string, correct, total int, isDaily bool) (domain.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := s.stats[deviceID].Record(correct, total, isDaily)
	s.stats[deviceID] = updated
	return updated, nil
}
