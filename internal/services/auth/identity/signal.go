package identity

// SignalKind describes the authentication state carried by a signal.
type SignalKind int

const (
	// SignalUnspecified represents an invalid signal value.
	SignalUnspecified SignalKind = iota
	// SignalAuthenticated indicates the provider holds an authenticated identity.
	SignalAuthenticated
	// SignalUnauthenticated indicates no identity is signed in.
	SignalUnauthenticated
)

// Signal is one authentication state transition emitted by the identity
// provider. The provider retains the latest value, so consumers may join the
// stream at any point and still observe the current state.
//
// Sign-in and sign-out flows belong to the external provider; this core only
// consumes the resulting stream, delivered as a plain receive channel.
// Providers are expected to sign out unverified accounts themselves, so a
// verified=false signal should be transient.
type Signal struct {
	Kind          SignalKind
	UserID        string
	Email         string
	EmailVerified bool
}

// Authenticated reports whether the signal carries a signed-in identity.
func (s Signal) Authenticated() bool {
	return s.Kind == SignalAuthenticated
}
