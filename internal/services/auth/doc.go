// Package auth serves as an umbrella for identity and profile functionality.
//
// The package is organized into three primary subpackages:
//   - identity: Auth signals emitted by the external identity provider and
//     ID-token verification.
//   - profile: The user profile entity and its onboarding lifecycle.
//   - storage: Profile persistence interfaces and the SQLite implementation.
package auth
