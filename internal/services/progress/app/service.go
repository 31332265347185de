// Package app orchestrates per-user progress sessions over the domain engine
// and the session resolver.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	apperrors "github.com/proact-eco/proact/internal/platform/errors"
	"github.com/proact-eco/proact/internal/services/auth/identity"
	"github.com/proact-eco/proact/internal/services/auth/profile"
	authstorage "github.com/proact-eco/proact/internal/services/auth/storage"
	progressdomain "github.com/proact-eco/proact/internal/services/progress/domain"
	"github.com/proact-eco/proact/internal/services/progress/mission"
	sessiondomain "github.com/proact-eco/proact/internal/services/session/domain"
)

// DefaultGatewayTimeout bounds detached remote calls kicked off by handlers.
const DefaultGatewayTimeout = 10 * time.Second

// Config tunes the progress application service.
type Config struct {
	// MissionDepth bounds sub-mission traversal during initialization.
	MissionDepth int
	// GatewayTimeout bounds fire-and-forget remote confirmation calls.
	GatewayTimeout time.Duration
	// Now is the injected clock. Defaults to time.Now.
	Now func() time.Time
	// Logger receives reconciliation reports. Defaults to the stdlib logger.
	Logger *log.Logger
}

// Service owns one resolver and one sync engine per authenticated user.
type Service struct {
	profiles sessiondomain.ProfileGateway
	missions progressdomain.MissionGateway
	depth    int
	timeout  time.Duration
	now      func() time.Time
	logger   *log.Logger

	mu       sync.Mutex
	sessions map[string]*session
	closed   bool
}

type session struct {
	resolver *sessiondomain.Resolver
	engine   *progressdomain.Engine

	// initMu serializes lazy engine initialization across requests.
	initMu sync.Mutex
}

// NewService wires the progress application service. Both gateways are
// required.
func NewService(profiles sessiondomain.ProfileGateway, missions progressdomain.MissionGateway, cfg Config) (*Service, error) {
	if profiles == nil {
		return nil, fmt.Errorf("profile gateway is required")
	}
	if missions == nil {
		return nil, fmt.Errorf("mission gateway is required")
	}
	timeout := cfg.GatewayTimeout
	if timeout <= 0 {
		timeout = DefaultGatewayTimeout
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		profiles: profiles,
		missions: missions,
		depth:    cfg.MissionDepth,
		timeout:  timeout,
		now:      now,
		logger:   logger,
		sessions: map[string]*session{},
	}, nil
}

// Resolve derives the caller's navigation state from an auth signal.
func (s *Service) Resolve(ctx context.Context, signal identity.Signal) (sessiondomain.NavigationState, error) {
	sess, err := s.session(signal.UserID)
	if err != nil {
		return sessiondomain.NavigationState{}, err
	}
	return sess.resolver.Resolve(ctx, signal)
}

// Snapshot returns the caller's progress state, initializing the engine on
// first use.
func (s *Service) Snapshot(ctx context.Context, userID string) (progressdomain.State, error) {
	sess, err := s.readySession(ctx, userID)
	if err != nil {
		return progressdomain.State{}, err
	}
	return sess.engine.Snapshot(), nil
}

// ApplyReward applies an optimistic local reward and returns the new snapshot.
func (s *Service) ApplyReward(ctx context.Context, userID string, points int) (progressdomain.State, error) {
	sess, err := s.readySession(ctx, userID)
	if err != nil {
		return progressdomain.State{}, err
	}
	return sess.engine.ApplyLocalReward(points)
}

// CompleteMission applies the mission's reward locally and kicks the remote
// confirmation without waiting for it. The returned snapshot already carries
// the optimistic points; a failed confirmation is reported, never rolled back.
func (s *Service) CompleteMission(ctx context.Context, userID, missionID string) (progressdomain.State, error) {
	sess, err := s.readySession(ctx, userID)
	if err != nil {
		return progressdomain.State{}, err
	}

	target, ok := findMission(sess.engine.Snapshot().ActiveMissions, missionID)
	if !ok {
		return progressdomain.State{}, apperrors.WithMetadata(
			apperrors.CodeNotFound,
			"mission is not in the active list",
			map[string]string{"mission_id": missionID},
		)
	}
	state, err := sess.engine.ApplyLocalReward(target.EcoPoints)
	if err != nil {
		return progressdomain.State{}, err
	}

	go func() {
		detached, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		// A failure here already reaches the logger through the engine's
		// error listener.
		_ = sess.engine.CompleteMission(detached, missionID)
	}()

	return state, nil
}

// RefreshWeeklyPoints replaces the local total with the authoritative one.
func (s *Service) RefreshWeeklyPoints(ctx context.Context, userID string) (progressdomain.State, error) {
	sess, err := s.readySession(ctx, userID)
	if err != nil {
		return progressdomain.State{}, err
	}
	return sess.engine.RefreshWeeklyPoints(ctx)
}

// Close tears down every active session; late async results are discarded.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, sess := range s.sessions {
		sess.engine.Close()
	}
	s.sessions = map[string]*session{}
}

func (s *Service) session(userID string) (*session, error) {
	if userID == "" {
		return nil, apperrors.New(apperrors.CodeIdentityTokenInvalid, "identity has no subject")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, apperrors.New(apperrors.CodeProgressClosed, "service is shut down")
	}
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &session{
			resolver: sessiondomain.NewResolver(s.profiles),
			engine: progressdomain.NewEngine(userID, s.missions, progressdomain.EngineConfig{
				MissionDepth: s.depth,
				Now:          s.now,
				OnError: func(err error) {
					s.logger.Printf("[PROGRESS] reconciliation for user %s: %v", userID, err)
				},
			}),
		}
		s.sessions[userID] = sess
	}
	return sess, nil
}

func (s *Service) readySession(ctx context.Context, userID string) (*session, error) {
	sess, err := s.session(userID)
	if err != nil {
		return nil, err
	}
	sess.initMu.Lock()
	defer sess.initMu.Unlock()
	if sess.engine.Phase() == progressdomain.PhaseReady {
		return sess, nil
	}
	if _, err := sess.engine.Initialize(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}

func findMission(missions []mission.Mission, missionID string) (mission.Mission, bool) {
	for _, m := range missions {
		if m.ID == missionID {
			return m, true
		}
		if found, ok := findMission(m.Steps, missionID); ok {
			return found, ok
		}
	}
	return mission.Mission{}, false
}

// ProfileGateway adapts the auth profile store to the resolver's contract:
// a missing record is reported as a nil profile, not an error.
type ProfileGateway struct {
	Store authstorage.ProfileStore
}

// GetProfile loads the profile, mapping not-found to (nil, nil).
func (g ProfileGateway) GetProfile(ctx context.Context, userID string) (*profile.Profile, error) {
	p, err := g.Store.GetProfile(ctx, userID)
	if errors.Is(err, authstorage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
