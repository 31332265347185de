// Package session serves as an umbrella for session state derivation.
//
// The domain subpackage turns the identity provider's auth signal stream and
// the user's profile record into a navigation state for the app shell: login,
// onboarding, or the main experience.
package session
