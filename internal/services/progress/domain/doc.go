// Package domain holds the progression sync engine: per-session eco-point
// and mission state with synchronous optimistic rewards and last-writer-wins
// reconciliation against the remote store.
package domain
