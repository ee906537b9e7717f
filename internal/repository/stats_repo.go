package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"geoclash/internal/database"
	"geoclash/internal/models"
)

// StatsRepository handles per-user, per-mode aggregate persistence
type StatsRepository struct {
	db *database.DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *database.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// BestStreak returns the user's recorded best streak for the mode, or 0 when
// none has been recorded yet.
func (r *StatsRepository) BestStreak(ctx context.Context, userID int64, mode models.GameMode) (int, error) {
	var best int
	query := "SELECT best_streak FROM user_stats WHERE user_id = ? AND game_mode = ?"
	err := r.db.QueryRow(ctx, query, userID, string(mode)).Scan(&best)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return best, nil
}

// RecordBestStreak upserts the user's best streak for the mode.
func (r *StatsRepository) RecordBestStreak(ctx context.Context, userID int64, mode models.GameMode, streak int) error {
	now := time.Now().UTC()

	query := "UPDATE user_stats SET best_streak = ?, updated_at = ? WHERE user_id = ? AND game_mode = ?"
	result, err := r.db.Exec(ctx, query, streak, now, userID, string(mode))
	if err != nil {
		return fmt.Errorf("failed to update best streak: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	query = `
		INSERT INTO user_stats (user_id, game_mode, best_streak, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(ctx, query, userID, string(mode), streak, now, now)
	if err != nil && r.db.Dialect.IsUniqueViolation(err) {
		// Lost a create race; the other writer's row is there now.
		_, err = r.db.Exec(ctx,
			"UPDATE user_stats SET best_streak = ?, updated_at = ? WHERE user_id = ? AND game_mode = ? AND best_streak < ?",
			streak, now, userID, string(mode), streak)
	}
	if err != nil {
		return fmt.Errorf("failed to record best streak: %w", err)
	}
	return nil
}
