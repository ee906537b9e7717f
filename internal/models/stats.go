package models

import "time"

// UserStats stores per-user, per-mode aggregates. Only the best streak is
// tracked for now.
type UserStats struct {
	ID         int64
	UserID     int64
	GameMode   GameMode
	BestStreak int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
