package domain

import "github.com/proact-eco/proact/internal/services/auth/profile"

// NavigationKind describes which surface the app shell should present.
type NavigationKind int

const (
	// NavigationUnspecified represents an invalid navigation value.
	NavigationUnspecified NavigationKind = iota
	// NavigationLoading indicates resolution is pending; no surface is committed.
	NavigationLoading
	// NavigationShowLogin indicates no identity is signed in.
	NavigationShowLogin
	// NavigationShowOnboarding indicates the user must complete onboarding first.
	NavigationShowOnboarding
	// NavigationShowHome indicates the main experience.
	NavigationShowHome
)

// String returns the navigation kind as a stable lowercase label.
func (k NavigationKind) String() string {
	switch k {
	case NavigationLoading:
		return "loading"
	case NavigationShowLogin:
		return "show_login"
	case NavigationShowOnboarding:
		return "show_onboarding"
	case NavigationShowHome:
		return "show_home"
	default:
		return "unspecified"
	}
}

// NavigationState is the derived, non-persisted session surface decision.
//
// Profile is populated only for NavigationShowOnboarding, and may still be nil
// there: an authenticated user whose profile record has not been created yet
// also lands in onboarding.
type NavigationState struct {
	Kind    NavigationKind
	Profile *profile.Profile
}
