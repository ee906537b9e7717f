package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"geoclash/internal/database"
	"geoclash/internal/models"
)

// ScoreRepository handles score record and guess persistence
type ScoreRepository struct {
	db *database.DB
}

// NewScoreRepository creates a new score repository
func NewScoreRepository(db *database.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// RegisterGuess appends a guess to the score record for (user, entity, mode),
// creating the record on first guess, and bumps its updated_at. The whole
// read-modify-write runs in one transaction; a concurrent create of the same
// record is resolved through the unique constraint.
func (r *ScoreRepository) RegisterGuess(ctx context.Context, userID int64, kind models.EntityKind, entityID int64, mode models.GameMode, isCorrect bool) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	scoreID, err := getOrCreateScore(ctx, tx, userID, kind, entityID, mode)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	query := "INSERT INTO guesses (score_id, created_at, is_correct) VALUES (?, ?, ?)"
	if _, err := tx.Exec(ctx, query, scoreID, now, isCorrect); err != nil {
		return fmt.Errorf("failed to insert guess: %w", err)
	}

	query = "UPDATE user_scores SET updated_at = ? WHERE id = ?"
	if _, err := tx.Exec(ctx, query, now, scoreID); err != nil {
		return fmt.Errorf("failed to touch score record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit guess: %w", err)
	}
	return nil
}

// getOrCreateScore returns the id of the score record, creating it when
// missing. When two requests race on the create, the loser hits the unique
// constraint and re-reads the winner's row.
func getOrCreateScore(ctx context.Context, tx *database.Tx, userID int64, kind models.EntityKind, entityID int64, mode models.GameMode) (int64, error) {
	id, err := findScoreID(ctx, tx, userID, kind, entityID, mode)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up score record: %w", err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO user_scores (user_id, entity_kind, entity_id, game_mode, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err = tx.ExecReturningID(ctx, query, userID, string(kind), entityID, string(mode), now, now)
	if err == nil {
		return id, nil
	}
	if tx.GetDialect().IsUniqueViolation(err) {
		id, err = findScoreID(ctx, tx, userID, kind, entityID, mode)
		if err != nil {
			return 0, fmt.Errorf("failed to re-read score record after conflict: %w", err)
		}
		return id, nil
	}
	return 0, fmt.Errorf("failed to create score record: %w", err)
}

func findScoreID(ctx context.Context, tx *database.Tx, userID int64, kind models.EntityKind, entityID int64, mode models.GameMode) (int64, error) {
	var id int64
	query := `
		SELECT id FROM user_scores
		WHERE user_id = ? AND entity_kind = ? AND entity_id = ? AND game_mode = ?
	`
	err := tx.QueryRow(ctx, query, userID, string(kind), entityID, string(mode)).Scan(&id)
	return id, err
}

// ListByUser retrieves all score records for (user, kind, mode) with their
// guesses attached. When updatedBefore is non-nil, only records last updated
// at or before the cutoff are returned.
func (r *ScoreRepository) ListByUser(ctx context.Context, userID int64, kind models.EntityKind, mode models.GameMode, updatedBefore *time.Time) ([]models.ScoreRecord, error) {
	query := `
		SELECT id, user_id, entity_kind, entity_id, game_mode, created_at, updated_at
		FROM user_scores
		WHERE user_id = ? AND entity_kind = ? AND game_mode = ?
	`
	args := []interface{}{userID, string(kind), string(mode)}
	if updatedBefore != nil {
		query += " AND updated_at <= ?"
		args = append(args, updatedBefore.UTC())
	}
	query += " ORDER BY created_at ASC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.ScoreRecord
	for rows.Next() {
		var record models.ScoreRecord
		var kindStr, modeStr string
		err := rows.Scan(
			&record.ID,
			&record.UserID,
			&kindStr,
			&record.EntityID,
			&modeStr,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		record.EntityKind = models.EntityKind(kindStr)
		record.GameMode = models.GameMode(modeStr)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachGuesses(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// attachGuesses loads the guess history for each record in one query.
func (r *ScoreRepository) attachGuesses(ctx context.Context, records []models.ScoreRecord) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]interface{}, len(records))
	byID := make(map[int64]*models.ScoreRecord, len(records))
	for i := range records {
		ids[i] = records[i].ID
		byID[records[i].ID] = &records[i]
	}

	query := fmt.Sprintf(`
		SELECT id, score_id, created_at, is_correct
		FROM guesses
		WHERE score_id IN (%s)
		ORDER BY created_at ASC, id ASC
	`, inPlaceholders(len(ids)))

	rows, err := r.db.Query(ctx, query, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var guess models.Guess
		if err := rows.Scan(&guess.ID, &guess.ScoreID, &guess.CreatedAt, &guess.IsCorrect); err != nil {
			return err
		}
		if record, ok := byID[guess.ScoreID]; ok {
			record.Guesses = append(record.Guesses, guess)
		}
	}
	return rows.Err()
}

// inPlaceholders returns "?, ?, ..." with n placeholders.
func inPlaceholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
