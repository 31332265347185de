// Package progress serves as an umbrella for mission progression functionality.
//
// The package is organized into five primary subpackages:
//   - mission: The mission entity hierarchy (projects, missions, steps) and
//     its lifecycle rules.
//   - domain: The progress sync engine that owns per-session eco-point, level,
//     and active-mission state.
//   - storage: Mission persistence interfaces and the SQLite implementation.
//   - generator: Gemini-backed personalized mission drafting.
//   - api/httpapi: The HTTP JSON transport consumed by the mobile app.
package progress
