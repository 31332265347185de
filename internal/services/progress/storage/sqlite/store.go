// Package sqlite implements mission and point-event persistence over SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	apperrors "github.com/proact-eco/proact/internal/platform/errors"
	"github.com/proact-eco/proact/internal/platform/storage/sqlitemigrate"
	"github.com/proact-eco/proact/internal/services/progress/mission"
	"github.com/proact-eco/proact/internal/services/progress/storage"
	"github.com/proact-eco/proact/internal/services/progress/storage/sqlite/migrations"
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store implements storage.MissionStore over SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a progress SQLite store and applies bundled migrations.
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

// PutMission inserts or replaces a mission node and, recursively, its steps.
func (s *Store) PutMission(ctx context.Context, userID string, m mission.Mission) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put mission: %w", err)
	}
	if err := putMissionTx(ctx, tx, userID, m); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put mission: %w", err)
	}
	return nil
}

func putMissionTx(ctx context.Context, tx *sql.Tx, userID string, m mission.Mission) error {
	var deadline any
	if m.Deadline != nil {
		deadline = toMillis(*m.Deadline)
	}
	var parentID any
	if m.ParentID != "" {
		parentID = m.ParentID
	}
	_, err := tx.ExecContext(ctx, `
INSERT INTO missions (id, user_id, parent_id, title, description, level, period, status, deadline, eco_points, co2_saved_kg, regeneration_left, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    user_id = excluded.user_id,
    parent_id = excluded.parent_id,
    title = excluded.title,
    description = excluded.description,
    level = excluded.level,
    period = excluded.period,
    status = excluded.status,
    deadline = excluded.deadline,
    eco_points = excluded.eco_points,
    co2_saved_kg = excluded.co2_saved_kg,
    regeneration_left = excluded.regeneration_left
`,
		m.ID,
		userID,
		parentID,
		m.Title,
		m.Description,
		string(m.Level),
		string(m.Period),
		string(m.Status),
		deadline,
		m.EcoPoints,
		m.CO2SavedKg,
		m.RegenerationLeft,
		toMillis(m.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put mission %s: %w", m.ID, err)
	}
	for _, step := range m.Steps {
		step.ParentID = m.ID
		if err := putMissionTx(ctx, tx, userID, step); err != nil {
			return err
		}
	}
	return nil
}

// ListActiveMissions returns the user's unfinished top-level missions ordered
// by creation time, resolving steps down to the given depth. Depth 1 returns
// bare top-level nodes.
func (s *Store) ListActiveMissions(ctx context.Context, userID string, depth int) ([]mission.Mission, error) {
	if depth <= 0 {
		return nil, apperrors.WithMetadata(
			apperrors.CodeProgressInvalidDepth,
			"mission traversal depth must be positive",
			map[string]string{"depth": fmt.Sprintf("%d", depth)},
		)
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, parent_id, title, description, level, period, status, deadline, eco_points, co2_saved_kg, regeneration_left, created_at
FROM missions
WHERE user_id = ? AND parent_id IS NULL AND status IN (?, ?)
ORDER BY created_at, id
`, userID, string(mission.StatusNotStarted), string(mission.StatusInProgress))
	if err != nil {
		return nil, fmt.Errorf("list active missions: %w", err)
	}
	missions, err := collectMissions(rows)
	if err != nil {
		return nil, err
	}

	for i := range missions {
		if err := s.loadSteps(ctx, &missions[i], depth-1); err != nil {
			return nil, err
		}
	}
	return missions, nil
}

func (s *Store) loadSteps(ctx context.Context, parent *mission.Mission, depth int) error {
	if depth <= 0 {
		return nil
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, parent_id, title, description, level, period, status, deadline, eco_points, co2_saved_kg, regeneration_left, created_at
FROM missions
WHERE parent_id = ?
ORDER BY created_at, id
`, parent.ID)
	if err != nil {
		return fmt.Errorf("load steps of %s: %w", parent.ID, err)
	}
	steps, err := collectMissions(rows)
	if err != nil {
		return err
	}
	for i := range steps {
		if err := s.loadSteps(ctx, &steps[i], depth-1); err != nil {
			return err
		}
	}
	parent.Steps = steps
	return nil
}

func collectMissions(rows *sql.Rows) ([]mission.Mission, error) {
	defer rows.Close()

	var missions []mission.Mission
	for rows.Next() {
		var (
			m        mission.Mission
			parentID sql.NullString
			level    string
			period   string
			status   string
			deadline sql.NullInt64
			created  int64
		)
		err := rows.Scan(&m.ID, &parentID, &m.Title, &m.Description, &level, &period, &status, &deadline, &m.EcoPoints, &m.CO2SavedKg, &m.RegenerationLeft, &created)
		if err != nil {
			return nil, fmt.Errorf("scan mission: %w", err)
		}
		m.ParentID = parentID.String
		m.Level = mission.Level(level)
		m.Period = mission.PeriodType(period)
		m.Status = mission.Status(status)
		if deadline.Valid {
			at := fromMillis(deadline.Int64)
			m.Deadline = &at
		}
		m.CreatedAt = fromMillis(created)
		missions = append(missions, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate missions: %w", err)
	}
	return missions, nil
}

// CompleteMission marks a mission done and records its eco points as a point
// event. Completing an already-done mission is a no-op.
func (s *Store) CompleteMission(ctx context.Context, missionID string, at time.Time) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin complete mission: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
SELECT user_id, status, eco_points FROM missions WHERE id = ?
`, missionID)
	var (
		userID    string
		status    string
		ecoPoints int
	)
	err = row.Scan(&userID, &status, &ecoPoints)
	if err == sql.ErrNoRows {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load mission %s: %w", missionID, err)
	}
	if mission.Status(status) == mission.StatusDone {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE missions SET status = ? WHERE id = ?
`, string(mission.StatusDone), missionID); err != nil {
		return fmt.Errorf("mark mission done: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO point_events (user_id, mission_id, points, awarded_at) VALUES (?, ?, ?, ?)
`, userID, missionID, ecoPoints, toMillis(at)); err != nil {
		return fmt.Errorf("record point event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit complete mission: %w", err)
	}
	return nil
}

// WeeklyPoints totals the point events since the most recent Monday 00:00 UTC.
func (s *Store) WeeklyPoints(ctx context.Context, userID string, now time.Time) (int, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT COALESCE(SUM(points), 0) FROM point_events WHERE user_id = ? AND awarded_at >= ?
`, userID, toMillis(storage.WeekStart(now)))

	var total int
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("sum weekly points: %w", err)
	}
	return total, nil
}
