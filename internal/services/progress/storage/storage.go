// Package storage defines persistence contracts for the progress service.
package storage

import (
	"context"
	"time"

	apperrors "github.com/proact-eco/proact/internal/platform/errors"
	"github.com/proact-eco/proact/internal/services/progress/mission"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// MissionStore persists the mission tree and completion point events.
type MissionStore interface {
	// PutMission inserts or replaces a mission node and its steps.
	PutMission(ctx context.Context, userID string, m mission.Mission) error
	// ListActiveMissions returns the user's not-yet-finished top-level
	// missions, resolving sub-missions down to the given depth.
	ListActiveMissions(ctx context.Context, userID string, depth int) ([]mission.Mission, error)
	// CompleteMission marks a mission done and records its eco points as a
	// point event at the given time.
	CompleteMission(ctx context.Context, missionID string, at time.Time) error
	// WeeklyPoints totals the point events inside the current weekly window.
	WeeklyPoints(ctx context.Context, userID string, now time.Time) (int, error)
}

// WeekStart returns the most recent Monday 00:00 UTC at or before now. The
// weekly point total covers events from this instant onward.
func WeekStart(now time.Time) time.Time {
	now = now.UTC()
	daysSinceMonday := (int(now.Weekday()) + 6) % 7
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.AddDate(0, 0, -daysSinceMonday)
}
