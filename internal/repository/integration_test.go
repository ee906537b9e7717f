package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"geoclash/internal/database"
	"geoclash/internal/models"
)

// newTestDB opens a throwaway SQLite database with the full schema and a
// minimal catalog.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	dbPath := "test_repository.db"
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := database.InitializeSQLite(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(ctx, "../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	seed := []struct {
		query string
		args  []interface{}
	}{
		{"INSERT INTO users (id, username, email) VALUES (1, 'alex', 'alex@example.com')", nil},
		{"INSERT INTO countries (id, name_en, name_fr, name_native, iso2_code, iso3_code, flag_path, continent) VALUES (1, 'France', 'France', 'France', 'FR', 'FRA', '/flags/fr.svg', 'EU')", nil},
		{"INSERT INTO countries (id, name_en, name_fr, name_native, iso2_code, iso3_code, flag_path, continent) VALUES (2, 'Japan', 'Japon', 'Nihon', 'JP', 'JPN', '/flags/jp.svg', 'AS')", nil},
		{"INSERT INTO countries (id, name_en, name_fr, name_native, iso2_code, iso3_code, flag_path, continent) VALUES (3, 'Nepal', 'Népal', 'Nepal', 'NP', 'NPL', '', 'AS')", nil},
		{"INSERT INTO cities (id, name_en, name_fr, is_capital) VALUES (1, 'Paris', 'Paris', 1)", nil},
		{"INSERT INTO cities (id, name_en, name_fr, is_capital) VALUES (2, 'Tokyo', 'Tokyo', 1)", nil},
		{"INSERT INTO cities (id, name_en, name_fr, is_capital) VALUES (3, 'Lyon', 'Lyon', 0)", nil},
		{"INSERT INTO country_cities (country_id, city_id) VALUES (1, 1)", nil},
		{"INSERT INTO country_cities (country_id, city_id) VALUES (1, 3)", nil},
		{"INSERT INTO country_cities (country_id, city_id) VALUES (2, 2)", nil},
		{"INSERT INTO departments (id, name, number, region, prefecture) VALUES (1, 'Ain', '01', 'Auvergne-Rhône-Alpes', 'Bourg-en-Bresse')", nil},
	}
	for _, stmt := range seed {
		if _, err := db.Exec(ctx, stmt.query, stmt.args...); err != nil {
			t.Fatalf("Failed to seed: %v", err)
		}
	}
	return db
}

func TestRegisterGuessCreatesAndReuses(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	scores := NewScoreRepository(db)

	mode := models.GameModeCountryFlagTraining
	if err := scores.RegisterGuess(ctx, 1, models.EntityKindCountry, 1, mode, true); err != nil {
		t.Fatalf("RegisterGuess failed: %v", err)
	}
	if err := scores.RegisterGuess(ctx, 1, models.EntityKindCountry, 1, mode, false); err != nil {
		t.Fatalf("RegisterGuess failed: %v", err)
	}

	// Both guesses land on one score record.
	var recordCount int
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM user_scores").Scan(&recordCount); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if recordCount != 1 {
		t.Errorf("Expected 1 score record, got %d", recordCount)
	}

	records, err := scores.ListByUser(ctx, 1, models.EntityKindCountry, mode, nil)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if len(records[0].Guesses) != 2 {
		t.Errorf("Expected 2 guesses attached, got %d", len(records[0].Guesses))
	}
	if records[0].Guesses[0].IsCorrect != true || records[0].Guesses[1].IsCorrect != false {
		t.Errorf("Expected guesses in insertion order, got %+v", records[0].Guesses)
	}
}

func TestRegisterGuessSeparatesModesAndEntities(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	scores := NewScoreRepository(db)

	if err := scores.RegisterGuess(ctx, 1, models.EntityKindCountry, 1, models.GameModeCountryFlagTraining, true); err != nil {
		t.Fatalf("RegisterGuess failed: %v", err)
	}
	if err := scores.RegisterGuess(ctx, 1, models.EntityKindCountry, 1, models.GameModeCapitalTraining, true); err != nil {
		t.Fatalf("RegisterGuess failed: %v", err)
	}
	if err := scores.RegisterGuess(ctx, 1, models.EntityKindCountry, 2, models.GameModeCountryFlagTraining, true); err != nil {
		t.Fatalf("RegisterGuess failed: %v", err)
	}

	var recordCount int
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM user_scores").Scan(&recordCount); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if recordCount != 3 {
		t.Errorf("Expected 3 score records, got %d", recordCount)
	}
}

func TestListByUserCutoff(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	scores := NewScoreRepository(db)

	mode := models.GameModeCountryFlagTraining
	if err := scores.RegisterGuess(ctx, 1, models.EntityKindCountry, 1, mode, true); err != nil {
		t.Fatalf("RegisterGuess failed: %v", err)
	}

	// A cutoff in the past excludes the fresh record; a future one includes
	// it.
	past := time.Now().Add(-time.Hour)
	records, err := scores.ListByUser(ctx, 1, models.EntityKindCountry, mode, &past)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records before the cutoff, got %d", len(records))
	}

	future := time.Now().Add(time.Hour)
	records, err = scores.ListByUser(ctx, 1, models.EntityKindCountry, mode, &future)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Expected 1 record before a future cutoff, got %d", len(records))
	}
}

func TestCountryFilterValidity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	countries := NewCountryRepository(db)

	// Nepal has no flag asset and must disappear under RequireFlag.
	withFlags, err := countries.List(ctx, CountryFilter{RequireFlag: true})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, country := range withFlags {
		if country.ISO2Code == "NP" {
			t.Error("Expected Nepal to be excluded by the flag filter")
		}
	}
	if len(withFlags) != 2 {
		t.Errorf("Expected 2 countries with flags, got %d", len(withFlags))
	}

	// Nepal has no capital city linked either.
	withCapitals, err := countries.List(ctx, CountryFilter{RequireCapital: true})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(withCapitals) != 2 {
		t.Errorf("Expected 2 countries with capitals, got %d", len(withCapitals))
	}

	// Continent filter composes with validity.
	asian, err := countries.List(ctx, CountryFilter{Continents: []string{"AS"}, RequireFlag: true})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(asian) != 1 || asian[0].ISO2Code != "JP" {
		t.Errorf("Expected only Japan, got %+v", asian)
	}
}

func TestCountryCapitalsAttached(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	countries := NewCountryRepository(db)

	france, err := countries.GetByISO2(ctx, "FR")
	if err != nil {
		t.Fatalf("GetByISO2 failed: %v", err)
	}
	if france == nil {
		t.Fatal("Expected France to exist")
	}

	// Lyon is linked but not a capital, so only Paris is attached.
	if len(france.Capitals) != 1 || france.Capitals[0].NameEN != "Paris" {
		t.Errorf("Expected only Paris as capital, got %+v", france.Capitals)
	}
}

func TestGetByCapitalIDs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	countries := NewCountryRepository(db)

	resolved, err := countries.GetByCapitalIDs(ctx, []int64{1})
	if err != nil {
		t.Fatalf("GetByCapitalIDs failed: %v", err)
	}
	if len(resolved) != 1 || resolved[0].ISO2Code != "FR" {
		t.Errorf("Expected Paris to resolve to France, got %+v", resolved)
	}

	// Ids spanning two countries resolve to both; callers treat that as
	// corrupt data.
	resolved, err = countries.GetByCapitalIDs(ctx, []int64{1, 2})
	if err != nil {
		t.Fatalf("GetByCapitalIDs failed: %v", err)
	}
	if len(resolved) != 2 {
		t.Errorf("Expected 2 countries, got %d", len(resolved))
	}
}

func TestListUnattempted(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	countries := NewCountryRepository(db)
	scores := NewScoreRepository(db)

	mode := models.GameModeCountryFlagTraining
	if err := scores.RegisterGuess(ctx, 1, models.EntityKindCountry, 1, mode, true); err != nil {
		t.Fatalf("RegisterGuess failed: %v", err)
	}

	unattempted, err := countries.ListUnattempted(ctx, 1, mode, CountryFilter{RequireFlag: true})
	if err != nil {
		t.Fatalf("ListUnattempted failed: %v", err)
	}
	if len(unattempted) != 1 || unattempted[0].ISO2Code != "JP" {
		t.Errorf("Expected only Japan unattempted, got %+v", unattempted)
	}

	// The attempt only counts for its own mode.
	unattempted, err = countries.ListUnattempted(ctx, 1, models.GameModeCapitalTraining, CountryFilter{RequireFlag: true})
	if err != nil {
		t.Fatalf("ListUnattempted failed: %v", err)
	}
	if len(unattempted) != 2 {
		t.Errorf("Expected both countries unattempted in another mode, got %d", len(unattempted))
	}
}

func TestBestStreakUpsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	stats := NewStatsRepository(db)

	mode := models.GameModeCountryFlagChallenge
	best, err := stats.BestStreak(ctx, 1, mode)
	if err != nil {
		t.Fatalf("BestStreak failed: %v", err)
	}
	if best != 0 {
		t.Errorf("Expected 0 for a fresh user, got %d", best)
	}

	if err := stats.RecordBestStreak(ctx, 1, mode, 5); err != nil {
		t.Fatalf("RecordBestStreak failed: %v", err)
	}
	if err := stats.RecordBestStreak(ctx, 1, mode, 9); err != nil {
		t.Fatalf("RecordBestStreak failed: %v", err)
	}

	best, err = stats.BestStreak(ctx, 1, mode)
	if err != nil {
		t.Fatalf("BestStreak failed: %v", err)
	}
	if best != 9 {
		t.Errorf("Expected best streak 9, got %d", best)
	}

	var rowCount int
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM user_stats").Scan(&rowCount); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if rowCount != 1 {
		t.Errorf("Expected one stats row per (user, mode), got %d", rowCount)
	}
}

func TestAuthSessionLookup(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	sessions := NewAuthSessionRepository(db)

	if _, err := db.Exec(ctx,
		"INSERT INTO auth_sessions (token_id, user_id, expires_at) VALUES (?, ?, ?)",
		"live-token", 1, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if _, err := db.Exec(ctx,
		"INSERT INTO auth_sessions (token_id, user_id, expires_at) VALUES (?, ?, ?)",
		"dead-token", 1, time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	userID, err := sessions.UserIDByTokenID(ctx, "live-token")
	if err != nil {
		t.Fatalf("UserIDByTokenID failed: %v", err)
	}
	if userID != 1 {
		t.Errorf("Expected user 1, got %d", userID)
	}

	if _, err := sessions.UserIDByTokenID(ctx, "dead-token"); err != ErrAuthSessionNotFound {
		t.Errorf("Expected ErrAuthSessionNotFound for an expired session, got %v", err)
	}
	if _, err := sessions.UserIDByTokenID(ctx, "missing"); err != ErrAuthSessionNotFound {
		t.Errorf("Expected ErrAuthSessionNotFound for an unknown token, got %v", err)
	}
}
