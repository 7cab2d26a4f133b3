package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"trivia-session-service/internal/domain"
)

// LocalCacheCap is the number of highest scores kept in the local cache.
const LocalCacheCap = 20

// RecentCommentsLimit is the community feed page size.
const RecentCommentsLimit = 15

// RemoteStore is the remote persistence backend for scores and comments.
type RemoteStore interface {
	SaveScore(ctx context.Context, entry domain.LeaderboardEntry) error
	TopScores(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	SaveComment(ctx context.Context, comment domain.CommunityComment) error
	RecentComments(ctx context.Context, limit int) ([]domain.CommunityComment, error)
}

// BoardCache is the local leaderboard fallback, capped at the highest
// LocalCacheCap scores.
type BoardCache interface {
	Append(ctx context.Context, entry domain.LeaderboardEntry) error
	Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	Replace(ctx context.Context, entries []domain.LeaderboardEntry) error
}

// StatsStore accumulates per-device lifetime statistics.
type StatsStore interface {
	Stats(ctx context.Context, deviceID string) (domain.UserStats, error)
	RecordGame(ctx context.Context, deviceID string, correct, total int, isDaily bool) (domain.UserStats, error)
}

// Gateway fronts the remote store with a local cache. A missing remote
// degrades to local-only behavior: reads fall back, remote writes are
// skipped.
type Gateway struct {
	remote RemoteStore
	local  BoardCache
	log    *slog.Logger
	now    func() time.Time
}

func NewGateway(remote RemoteStore, local BoardCache, log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	return &Gateway{remote: remote, local: local, log: log, now: time.Now}
}

// TopScores reads the leaderboard remote-first, descending by score. A
// successful remote read refreshes the local cache; on remote failure the
// local cache answers, and an empty board is never an error.
func (g *Gateway) TopScores(ctx context.Context, limit int) []domain.LeaderboardEntry {
	if limit <= 0 {
		limit = LocalCacheCap
	}
	if g.remote != nil {
		entries, err := g.remote.TopScores(ctx, limit)
		if err == nil && len(entries) > 0 {
			if err := g.local.Replace(ctx, entries); err != nil {
				g.log.Warn("refresh local leaderboard cache failed", "error", err)
			}
			return entries
		}
		if err != nil {
			g.log.Warn("remote leaderboard read failed, falling back to local", "error", err)
		}
	}
	entries, err := g.local.Top(ctx, limit)
	if err != nil {
		g.log.Warn("local leaderboard read failed", "error", err)
		return nil
	}
	return entries
}

// SaveScore assigns identity and stores the entry: best-effort against the
// remote, and always appended to the capped local cache. The remote outcome
// is returned so callers can leave the save unconfirmed, but the local copy
// is kept regardless.
func (g *Gateway) SaveScore(ctx context.Context, entry domain.LeaderboardEntry) (domain.LeaderboardEntry, error) {
	entry.ID = uuid.NewString()
	entry.Date = g.now()

	var remoteErr error
	if g.remote != nil {
		if remoteErr = g.remote.SaveScore(ctx, entry); remoteErr != nil {
			g.log.Warn("remote score save failed", "error", remoteErr)
		}
	}
	if err := g.local.Append(ctx, entry); err != nil {
		g.log.Warn("local score save failed", "error", err)
	}
	return entry, remoteErr
}

// RecentComments reads the community feed newest-first, soft-failing to an
// empty feed.
func (g *Gateway) RecentComments(ctx context.Context, limit int) []domain.CommunityComment {
	if limit <= 0 {
		limit = RecentCommentsLimit
	}
	if g.remote == nil {
		return nil
	}
	comments, err := g.remote.RecentComments(ctx, limit)
	if err != nil {
		g.log.Warn("comment feed read failed", "error", err)
		return nil
	}
	return comments
}

// SaveComment appends a community comment. Failure is recoverable: it is
// surfaced to the caller so the client can keep the draft and retry.
func (g *Gateway) SaveComment(ctx context.Context, comment domain.CommunityComment) (domain.CommunityComment, error) {
	if strings.TrimSpace(comment.Text) == "" {
		return domain.CommunityComment{}, fmt.Errorf("%w: empty text", domain.ErrCommentRejected)
	}
	if g.remote == nil {
		return domain.CommunityComment{}, fmt.Errorf("%w: %v", domain.ErrCommentRejected, domain.ErrNotConfigured)
	}
	comment.ID = uuid.NewString()
	comment.Date = g.now()
	if err := g.remote.SaveComment(ctx, comment); err != nil {
		return domain.CommunityComment{}, fmt.Errorf("%w: %v", domain.ErrCommentRejected, err)
	}
	return comment, nil
}
