package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/proact-eco/proact/internal/platform/errors"
	"github.com/proact-eco/proact/internal/services/progress/mission"
	"github.com/proact-eco/proact/internal/services/progress/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "progress.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testMission(id string, created time.Time) mission.Mission {
	return mission.Mission{
		ID:        id,
		Title:     "Bike to work",
		Level:     mission.LevelMission,
		Period:    mission.PeriodWeekly,
		Status:    mission.StatusNotStarted,
		EcoPoints: 25,
		CreatedAt: created,
	}
}

func TestPutListActiveMissions(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	first := testMission("m1", now)
	first.Steps = []mission.Mission{
		{
			ID:        "s1",
			Title:     "Check tire pressure",
			Level:     mission.LevelStep,
			Status:    mission.StatusNotStarted,
			EcoPoints: 5,
			CreatedAt: now,
		},
	}
	second := testMission("m2", now.Add(time.Minute))
	second.Status = mission.StatusInProgress
	done := testMission("m3", now.Add(2*time.Minute))
	done.Status = mission.StatusDone

	for _, m := range []mission.Mission{first, second, done} {
		if err := store.PutMission(ctx, "user-1", m); err != nil {
			t.Fatalf("put mission %s: %v", m.ID, err)
		}
	}

	missions, err := store.ListActiveMissions(ctx, "user-1", 2)
	if err != nil {
		t.Fatalf("list active missions: %v", err)
	}
	if len(missions) != 2 {
		t.Fatalf("len(missions) = %d, want 2 (done mission excluded)", len(missions))
	}
	if missions[0].ID != "m1" || missions[1].ID != "m2" {
		t.Fatalf("mission order = %s, %s, want m1, m2", missions[0].ID, missions[1].ID)
	}
	if len(missions[0].Steps) != 1 || missions[0].Steps[0].ID != "s1" {
		t.Fatalf("m1 steps = %+v, want single step s1", missions[0].Steps)
	}
	if missions[0].Steps[0].ParentID != "m1" {
		t.Fatalf("step ParentID = %q, want %q", missions[0].Steps[0].ParentID, "m1")
	}
}

func TestListActiveMissionsDepthLimitsTraversal(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	parent := testMission("m1", now)
	parent.Steps = []mission.Mission{
		{
			ID:        "s1",
			Title:     "Step one",
			Level:     mission.LevelStep,
			Status:    mission.StatusNotStarted,
			CreatedAt: now,
		},
	}
	if err := store.PutMission(ctx, "user-1", parent); err != nil {
		t.Fatalf("put mission: %v", err)
	}

	missions, err := store.ListActiveMissions(ctx, "user-1", 1)
	if err != nil {
		t.Fatalf("list at depth 1: %v", err)
	}
	if len(missions[0].Steps) != 0 {
		t.Fatalf("depth 1 returned %d steps, want 0", len(missions[0].Steps))
	}
}

func TestListActiveMissionsRejectsNonPositiveDepth(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	_, err := store.ListActiveMissions(context.Background(), "user-1", 0)
	if !errors.Is(err, apperrors.New(apperrors.CodeProgressInvalidDepth, "")) {
		t.Fatalf("ListActiveMissions(depth=0) error = %v, want invalid depth", err)
	}
}

func TestListActiveMissionsScopedToUser(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	if err := store.PutMission(ctx, "user-1", testMission("m1", now)); err != nil {
		t.Fatalf("put mission: %v", err)
	}

	missions, err := store.ListActiveMissions(ctx, "user-2", 2)
	if err != nil {
		t.Fatalf("list for other user: %v", err)
	}
	if len(missions) != 0 {
		t.Fatalf("len(missions) = %d, want 0 for other user", len(missions))
	}
}

func TestCompleteMissionRecordsWeeklyPoints(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC) // Wednesday

	if err := store.PutMission(ctx, "user-1", testMission("m1", now)); err != nil {
		t.Fatalf("put mission: %v", err)
	}
	if err := store.CompleteMission(ctx, "m1", now); err != nil {
		t.Fatalf("complete mission: %v", err)
	}

	total, err := store.WeeklyPoints(ctx, "user-1", now)
	if err != nil {
		t.Fatalf("weekly points: %v", err)
	}
	if total != 25 {
		t.Fatalf("WeeklyPoints = %d, want 25", total)
	}

	missions, err := store.ListActiveMissions(ctx, "user-1", 2)
	if err != nil {
		t.Fatalf("list active missions: %v", err)
	}
	if len(missions) != 0 {
		t.Fatalf("len(missions) = %d, want 0 after completion", len(missions))
	}
}

func TestCompleteMissionIdempotent(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

	if err := store.PutMission(ctx, "user-1", testMission("m1", now)); err != nil {
		t.Fatalf("put mission: %v", err)
	}
	if err := store.CompleteMission(ctx, "m1", now); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	if err := store.CompleteMission(ctx, "m1", now.Add(time.Hour)); err != nil {
		t.Fatalf("second completion: %v", err)
	}

	total, err := store.WeeklyPoints(ctx, "user-1", now)
	if err != nil {
		t.Fatalf("weekly points: %v", err)
	}
	if total != 25 {
		t.Fatalf("WeeklyPoints = %d, want 25 (no double award)", total)
	}
}

func TestCompleteMissionNotFound(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	err := store.CompleteMission(context.Background(), "missing", time.Now())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("CompleteMission() error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestWeeklyPointsExcludesPriorWeeks(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	lastWeek := time.Date(2026, 2, 25, 12, 0, 0, 0, time.UTC) // Wednesday
	thisWeek := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)  // next Wednesday

	old := testMission("m1", lastWeek)
	current := testMission("m2", thisWeek)
	for _, m := range []mission.Mission{old, current} {
		if err := store.PutMission(ctx, "user-1", m); err != nil {
			t.Fatalf("put mission %s: %v", m.ID, err)
		}
	}
	if err := store.CompleteMission(ctx, "m1", lastWeek); err != nil {
		t.Fatalf("complete old mission: %v", err)
	}
	if err := store.CompleteMission(ctx, "m2", thisWeek); err != nil {
		t.Fatalf("complete current mission: %v", err)
	}

	total, err := store.WeeklyPoints(ctx, "user-1", thisWeek)
	if err != nil {
		t.Fatalf("weekly points: %v", err)
	}
	if total != 25 {
		t.Fatalf("WeeklyPoints = %d, want 25 (prior week excluded)", total)
	}
}
