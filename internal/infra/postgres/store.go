package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-session-service/internal/domain"
)

// Store is the remote persistence backend on Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) SaveScore(ctx context.Context, entry domain.LeaderboardEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO leaderboard_entries (id, name, score, total, category, difficulty, age, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.Name, entry.Score, entry.Total, entry.Category,
		string(entry.Difficulty), string(entry.Age), entry.Date)
	if err != nil {
		return fmt.Errorf("save score: %w", err)
	}
	return nil
}

func (s *Store) TopScores(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, score, total, category, difficulty, age, created_at
		 FROM leaderboard_entries
		 ORDER BY score DESC, created_at ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("top scores: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var entry domain.LeaderboardEntry
		var difficulty, age string
		if err := rows.Scan(&entry.ID, &entry.Name, &entry.Score, &entry.Total,
			&entry.Category, &difficulty, &age, &entry.Date); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		entry.Difficulty = domain.Difficulty(difficulty)
		entry.Age = domain.AgeGroup(age)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *Store) SaveComment(ctx context.Context, comment domain.CommunityComment) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO community_comments (id, user_name, body, lang, media_url, media_type, file_name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		comment.ID, comment.UserName, comment.Text, string(comment.Lang),
		comment.MediaURL, string(comment.MediaType), comment.FileName, comment.Date)
	if err != nil {
		return fmt.Errorf("save comment: %w", err)
	}
	return nil
}

func (s *Store) RecentComments(ctx context.Context, limit int) ([]domain.CommunityComment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_name, body, lang, media_url, media_type, file_name, created_at
		 FROM community_comments
		 ORDER BY created_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent comments: %w", err)
	}
	defer rows.Close()

	var comments []domain.CommunityComment
	for rows.Next() {
		var comment domain.CommunityComment
		var lang, mediaType string
		if err := rows.Scan(&comment.ID, &comment.UserName, &comment.Text, &lang,
			&comment.MediaURL, &mediaType, &comment.FileName, &comment.Date); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comment.Lang = domain.Language(lang)
		comment.MediaType = domain.MediaType(mediaType)
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}
