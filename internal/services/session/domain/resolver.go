package domain

import (
	"context"
	"errors"
	"sync"

	apperrors "github.com/proact-eco/proact/internal/platform/errors"
	"github.com/proact-eco/proact/internal/services/auth/identity"
	"github.com/proact-eco/proact/internal/services/auth/profile"
)

var (
	// ErrResolverNotConfigured indicates the resolver is nil.
	ErrResolverNotConfigured = errors.New("session resolver is not configured")
	// ErrProfileGatewayNotConfigured indicates the profile dependency is missing.
	ErrProfileGatewayNotConfigured = errors.New("profile gateway is not configured")
)

// ProfileGateway resolves the current user's profile record. A nil profile
// with a nil error means authentication succeeded but the record has not been
// created yet.
type ProfileGateway interface {
	GetProfile(ctx context.Context, userID string) (*profile.Profile, error)
}

// Resolver derives the session navigation state from auth signals.
//
// Each signal receives a monotonically increasing sequence token when
// resolution starts. A profile fetch begun under an older token never
// overwrites state committed under a newer one, so the latest signal wins by
// recency rather than by fetch completion order.
type Resolver struct {
	profiles ProfileGateway

	mu    sync.Mutex
	seq   uint64
	state NavigationState
}

// NewResolver builds a resolver over the profile gateway. The committed state
// starts out as loading until the first signal resolves.
func NewResolver(profiles ProfileGateway) *Resolver {
	return &Resolver{
		profiles: profiles,
		state:    NavigationState{Kind: NavigationLoading},
	}
}

// State returns the currently committed navigation state.
func (r *Resolver) State() NavigationState {
	if r == nil {
		return NavigationState{Kind: NavigationLoading}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Resolve derives and commits the navigation state for one auth signal.
//
// Unauthenticated signals commit immediately without touching the profile
// gateway. Authenticated-but-unverified identities hold the loading state;
// the identity provider is responsible for signing those accounts out, so the
// condition should not persist. Verified identities fetch the profile and
// branch on its onboarded flag.
//
// Profile fetch failures propagate to the caller and leave the committed
// state untouched; the resolver never guesses a surface on error.
func (r *Resolver) Resolve(ctx context.Context, signal identity.Signal) (NavigationState, error) {
	if r == nil {
		return NavigationState{}, ErrResolverNotConfigured
	}
	if r.profiles == nil {
		return NavigationState{}, ErrProfileGatewayNotConfigured
	}

	token, state, pending := r.claim(signal)
	if !pending {
		return state, nil
	}
	return r.settle(ctx, token, signal)
}

// claim assigns the next sequence token to the signal and commits any state
// that needs no profile fetch. pending reports whether a fetch must still
// settle the signal under the returned token. Claiming is what orders
// signals: tokens are handed out in the order claim is called, regardless of
// how long each settle takes.
func (r *Resolver) claim(signal identity.Signal) (token uint64, state NavigationState, pending bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	token = r.seq

	switch {
	case signal.Kind != identity.SignalAuthenticated:
		r.state = NavigationState{Kind: NavigationShowLogin}
	case !signal.EmailVerified:
		r.state = NavigationState{Kind: NavigationLoading}
	default:
		// Resolution is pending until the profile fetch settles.
		r.state = NavigationState{Kind: NavigationLoading}
		pending = true
	}
	return token, r.state, pending
}

// settle fetches the profile for a claimed signal and commits the result,
// unless a newer token was claimed while the fetch was in flight.
func (r *Resolver) settle(ctx context.Context, token uint64, signal identity.Signal) (NavigationState, error) {
	fetched, err := r.profiles.GetProfile(ctx, signal.UserID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if token != r.seq {
		// A newer signal resolved while the fetch was in flight; its state
		// is authoritative and this result is discarded.
		return r.state, nil
	}
	if err != nil {
		return r.state, apperrors.Wrap(apperrors.CodeAuthResolutionFailed, "profile fetch failed", err)
	}

	if fetched == nil || !fetched.Onboarded {
		r.state = NavigationState{Kind: NavigationShowOnboarding, Profile: fetched}
	} else {
		r.state = NavigationState{Kind: NavigationShowHome}
	}
	return r.state, nil
}

// Watch consumes an auth signal stream until the stream closes or ctx ends.
//
// Tokens are claimed in the receive loop itself, so signals are ordered by
// arrival on the stream, not by which settle goroutine wins a lock race.
// Profile fetches still run concurrently and cannot delay a newer signal.
// Resolution failures are reported through onError when set.
func (r *Resolver) Watch(ctx context.Context, signals <-chan identity.Signal, onError func(error)) {
	if r == nil || r.profiles == nil || signals == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case signal, ok := <-signals:
			if !ok {
				return
			}
			token, _, pending := r.claim(signal)
			if !pending {
				continue
			}
			go func() {
				if _, err := r.settle(ctx, token, signal); err != nil && onError != nil {
					onError(err)
				}
			}()
		}
	}
}
