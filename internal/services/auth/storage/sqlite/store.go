// Package sqlite implements auth profile persistence over SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	platformi18n "github.com/proact-eco/proact/internal/platform/i18n"
	"github.com/proact-eco/proact/internal/platform/storage/sqlitemigrate"
	"github.com/proact-eco/proact/internal/services/auth/profile"
	"github.com/proact-eco/proact/internal/services/auth/storage"
	"github.com/proact-eco/proact/internal/services/auth/storage/sqlite/migrations"
)

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis restores millisecond precision and keeps UTC normalization.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store implements profile persistence over SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens an auth SQLite store and applies bundled migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutProfile inserts or replaces a profile record.
func (s *Store) PutProfile(ctx context.Context, p profile.Profile) error {
	interests, err := json.Marshal(p.Interests)
	if err != nil {
		return fmt.Errorf("encode interests: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO profiles (id, email, onboarded, locale, location, occupation, interests, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    email = excluded.email,
    onboarded = excluded.onboarded,
    locale = excluded.locale,
    location = excluded.location,
    occupation = excluded.occupation,
    interests = excluded.interests,
    updated_at = excluded.updated_at
`,
		p.ID,
		p.Email,
		boolToInt(p.Onboarded),
		p.Locale.String(),
		p.Location,
		p.Occupation,
		string(interests),
		toMillis(p.CreatedAt),
		toMillis(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	return nil
}

// GetProfile loads a profile record by user ID.
func (s *Store) GetProfile(ctx context.Context, userID string) (profile.Profile, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, email, onboarded, locale, location, occupation, interests, created_at, updated_at
FROM profiles
WHERE id = ?
`, userID)

	var (
		p         profile.Profile
		onboarded int
		locale    string
		interests string
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(&p.ID, &p.Email, &onboarded, &locale, &p.Location, &p.Occupation, &interests, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return profile.Profile{}, storage.ErrNotFound
	}
	if err != nil {
		return profile.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	p.Onboarded = onboarded != 0
	p.Locale, _ = platformi18n.ParseTag(locale)
	if err := json.Unmarshal([]byte(interests), &p.Interests); err != nil {
		return profile.Profile{}, fmt.Errorf("decode interests: %w", err)
	}
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return p, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
