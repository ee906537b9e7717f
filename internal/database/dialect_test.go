package database

import (
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"
)

func TestRewritePlaceholdersToNumbered(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:     "no placeholders",
			query:    "SELECT 1",
			expected: "SELECT 1",
		},
		{
			name:     "single placeholder",
			query:    "SELECT * FROM countries WHERE iso2_code = ?",
			expected: "SELECT * FROM countries WHERE iso2_code = $1",
		},
		{
			name:     "multiple placeholders",
			query:    "INSERT INTO guesses (score_id, is_correct) VALUES (?, ?)",
			expected: "INSERT INTO guesses (score_id, is_correct) VALUES ($1, $2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := rewritePlaceholdersToNumbered(tt.query)
			if result != tt.expected {
				t.Errorf("rewritePlaceholdersToNumbered() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestDialectRewriteQuery(t *testing.T) {
	query := "SELECT id FROM departments WHERE number = ?"

	if got := NewSQLiteDialect().RewriteQuery(query); got != query {
		t.Errorf("sqlite RewriteQuery() = %q, want unchanged", got)
	}
	if got := NewMySQLDialect().RewriteQuery(query); got != query {
		t.Errorf("mysql RewriteQuery() = %q, want unchanged", got)
	}
	if got := NewPostgresDialect().RewriteQuery(query); got != "SELECT id FROM departments WHERE number = $1" {
		t.Errorf("postgres RewriteQuery() = %q, want numbered placeholders", got)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		err     error
		want    bool
	}{
		{
			name:    "sqlite unique constraint",
			dialect: NewSQLiteDialect(),
			err:     sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique},
			want:    true,
		},
		{
			name:    "sqlite other error",
			dialect: NewSQLiteDialect(),
			err:     sqlite3.Error{Code: sqlite3.ErrBusy},
			want:    false,
		},
		{
			name:    "postgres unique violation",
			dialect: NewPostgresDialect(),
			err:     &pq.Error{Code: "23505"},
			want:    true,
		},
		{
			name:    "postgres other error",
			dialect: NewPostgresDialect(),
			err:     &pq.Error{Code: "23503"},
			want:    false,
		},
		{
			name:    "mysql duplicate entry",
			dialect: NewMySQLDialect(),
			err:     &mysql.MySQLError{Number: 1062},
			want:    true,
		},
		{
			name:    "mysql other error",
			dialect: NewMySQLDialect(),
			err:     &mysql.MySQLError{Number: 1452},
			want:    false,
		},
		{
			name:    "nil error",
			dialect: NewSQLiteDialect(),
			err:     nil,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.IsUniqueViolation(tt.err); got != tt.want {
				t.Errorf("IsUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}
