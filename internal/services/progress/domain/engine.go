package domain

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/proact-eco/proact/internal/platform/errors"
	"github.com/proact-eco/proact/internal/services/progress/mission"
)

// DefaultMissionDepth bounds sub-mission traversal when listing active
// missions. Depth 2 resolves a mission and its immediate steps.
const DefaultMissionDepth = 2

var tracer = otel.Tracer("proact/progress/domain")

// MissionGateway is the remote source of truth for missions and points. The
// engine caches what it returns but never owns it.
type MissionGateway interface {
	ListActiveMissions(ctx context.Context, userID string, depth int) ([]mission.Mission, error)
	CompleteMission(ctx context.Context, missionID string, at time.Time) error
	WeeklyPoints(ctx context.Context, userID string, now time.Time) (int, error)
}

// Phase tracks the engine lifecycle within a session.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseInitializing
	PhaseReady
	PhaseClosed
)

// String reports the phase name for logs.
func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseInitializing:
		return "initializing"
	case PhaseReady:
		return "ready"
	case PhaseClosed:
		return "closed"
	}
	return "unknown"
}

// EngineConfig tunes a single engine instance. The zero value is usable.
type EngineConfig struct {
	// MissionDepth overrides DefaultMissionDepth when positive.
	MissionDepth int
	// Now is the clock used for completion timestamps and weekly windows.
	// Defaults to time.Now.
	Now func() time.Time
	// OnError receives reconciliation failures from fire-and-forget paths.
	// May be nil.
	OnError func(error)
}

// Engine owns one user's in-session progression state. Local rewards apply
// synchronously; remote confirmation and refresh race under last-writer-wins.
type Engine struct {
	userID  string
	gateway MissionGateway
	depth   int
	now     func() time.Time
	onError func(error)

	mu        sync.Mutex
	phase     Phase
	state     State
	listeners map[int]func(State)
	nextSub   int
}

// NewEngine wires an engine for one user session. The gateway must be
// non-nil; missing config fields fall back to defaults.
func NewEngine(userID string, gateway MissionGateway, cfg EngineConfig) *Engine {
	depth := cfg.MissionDepth
	if depth <= 0 {
		depth = DefaultMissionDepth
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		userID:    userID,
		gateway:   gateway,
		depth:     depth,
		now:       now,
		onError:   cfg.OnError,
		state:     State{Level: LevelForPoints(0)},
		listeners: map[int]func(State){},
	}
}

// Phase reports the current lifecycle phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// Subscribe registers a listener called with a snapshot after every settled
// mutation. The returned function cancels the subscription.
func (e *Engine) Subscribe(fn func(State)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextSub
	e.nextSub++
	e.listeners[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

// Initialize fetches active missions and the weekly point total concurrently
// and combines them into the initial state. Both fetches must succeed; an
// empty mission list is not an error. Calling Initialize on a ready or
// closed engine is rejected.
func (e *Engine) Initialize(ctx context.Context) (State, error) {
	ctx, span := tracer.Start(ctx, "progress.Initialize")
	defer span.End()

	e.mu.Lock()
	switch e.phase {
	case PhaseClosed:
		e.mu.Unlock()
		return State{}, apperrors.New(apperrors.CodeProgressClosed, "engine is closed")
	case PhaseInitializing, PhaseReady:
		e.mu.Unlock()
		return State{}, apperrors.New(apperrors.CodeProgressInitFailed, "engine already initialized")
	}
	e.phase = PhaseInitializing
	e.mu.Unlock()

	var (
		missions []mission.Mission
		points   int
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		listed, err := e.gateway.ListActiveMissions(groupCtx, e.userID, e.depth)
		if err != nil {
			return err
		}
		missions = listed
		return nil
	})
	group.Go(func() error {
		total, err := e.gateway.WeeklyPoints(groupCtx, e.userID, e.now())
		if err != nil {
			return err
		}
		points = total
		return nil
	})
	err := group.Wait()

	e.mu.Lock()
	if e.phase == PhaseClosed {
		e.mu.Unlock()
		return State{}, apperrors.New(apperrors.CodeProgressClosed, "engine closed during initialization")
	}
	if err != nil {
		e.phase = PhaseUninitialized
		e.mu.Unlock()
		return State{}, apperrors.Wrap(apperrors.CodeProgressInitFailed, "initial progress fetch failed", err)
	}
	if points < 0 {
		points = 0
	}
	e.phase = PhaseReady
	e.state = State{
		EcoPoints:      points,
		Level:          LevelForPoints(points),
		ActiveMissions: missions,
	}
	snapshot, observers := e.snapshotAndListenersLocked()
	e.mu.Unlock()

	span.SetAttributes(
		attribute.Int("progress.missions", len(missions)),
		attribute.Int("progress.eco_points", points),
	)
	notify(observers, snapshot)
	return snapshot, nil
}

// ApplyLocalReward adds points (possibly negative) to the eco-point total,
// clamping at zero and recomputing the level. It never touches I/O; the new
// snapshot is returned before any remote confirmation.
func (e *Engine) ApplyLocalReward(points int) (State, error) {
	e.mu.Lock()
	if err := e.readyLocked(); err != nil {
		e.mu.Unlock()
		return State{}, err
	}
	total := e.state.EcoPoints + points
	if total < 0 {
		total = 0
	}
	e.state.EcoPoints = total
	e.state.Level = LevelForPoints(total)
	snapshot, observers := e.snapshotAndListenersLocked()
	e.mu.Unlock()

	notify(observers, snapshot)
	return snapshot, nil
}

// CompleteMission confirms a mission completion with the remote store. The
// caller is expected to have already applied the optimistic reward via
// ApplyLocalReward; a remote failure is surfaced as a reconciliation error
// and does not revert local points. On success the mission leaves the active
// list.
func (e *Engine) CompleteMission(ctx context.Context, missionID string) error {
	ctx, span := tracer.Start(ctx, "progress.CompleteMission")
	defer span.End()
	span.SetAttributes(attribute.String("mission.id", missionID))

	e.mu.Lock()
	if err := e.readyLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.mu.Unlock()

	if err := e.gateway.CompleteMission(ctx, missionID, e.now()); err != nil {
		wrapped := apperrors.WrapWithMetadata(
			apperrors.CodeProgressReconciliation,
			"mission completion not confirmed by remote store",
			map[string]string{"mission_id": missionID},
			err,
		)
		e.report(wrapped)
		return wrapped
	}

	e.mu.Lock()
	if e.phase == PhaseClosed {
		e.mu.Unlock()
		return nil
	}
	e.state.ActiveMissions, _ = removeMission(e.state.ActiveMissions, missionID)
	snapshot, observers := e.snapshotAndListenersLocked()
	e.mu.Unlock()

	notify(observers, snapshot)
	return nil
}

// removeMission deletes the node with the given ID from the mission tree,
// descending into step lists so a completed step is pruned from its parent
// rather than lingering in snapshots. removed reports whether a node matched.
func removeMission(missions []mission.Mission, missionID string) (out []mission.Mission, removed bool) {
	for i := range missions {
		if missions[i].ID == missionID {
			return append(missions[:i], missions[i+1:]...), true
		}
		if steps, ok := removeMission(missions[i].Steps, missionID); ok {
			missions[i].Steps = steps
			return missions, true
		}
	}
	return missions, false
}

// RefreshWeeklyPoints re-fetches the authoritative weekly total and replaces
// the local eco-point count with it. Concurrent refreshes and completions
// race deliberately; whichever result lands last wins.
func (e *Engine) RefreshWeeklyPoints(ctx context.Context) (State, error) {
	ctx, span := tracer.Start(ctx, "progress.RefreshWeeklyPoints")
	defer span.End()

	e.mu.Lock()
	if err := e.readyLocked(); err != nil {
		e.mu.Unlock()
		return State{}, err
	}
	e.mu.Unlock()

	total, err := e.gateway.WeeklyPoints(ctx, e.userID, e.now())
	if err != nil {
		return State{}, apperrors.Wrap(apperrors.CodeProgressReconciliation, "weekly points refresh failed", err)
	}
	if total < 0 {
		total = 0
	}

	e.mu.Lock()
	if e.phase != PhaseReady {
		e.mu.Unlock()
		return State{}, apperrors.New(apperrors.CodeProgressClosed, "engine closed during refresh")
	}
	e.state.EcoPoints = total
	e.state.Level = LevelForPoints(total)
	snapshot, observers := e.snapshotAndListenersLocked()
	e.mu.Unlock()

	span.SetAttributes(attribute.Int("progress.eco_points", total))
	notify(observers, snapshot)
	return snapshot, nil
}

// Close ends the session. In-flight results land on a closed engine and are
// discarded without mutating state. Close is idempotent.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.phase = PhaseClosed
	e.listeners = map[int]func(State){}
}

func (e *Engine) readyLocked() error {
	switch e.phase {
	case PhaseClosed:
		return apperrors.New(apperrors.CodeProgressClosed, "engine is closed")
	case PhaseReady:
		return nil
	}
	return apperrors.New(apperrors.CodeProgressNotReady, "engine is not initialized")
}

func (e *Engine) snapshotAndListenersLocked() (State, []func(State)) {
	observers := make([]func(State), 0, len(e.listeners))
	for _, fn := range e.listeners {
		observers = append(observers, fn)
	}
	return e.state.clone(), observers
}

func (e *Engine) report(err error) {
	if e.onError != nil {
		e.onError(err)
	}
}

func notify(observers []func(State), snapshot State) {
	for _, fn := range observers {
		fn(snapshot)
	}
}
