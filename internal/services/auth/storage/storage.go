// Package storage defines persistence interfaces for auth profiles.
package storage

import (
	"context"

	"github.com/proact-eco/proact/internal/platform/errors"
	"github.com/proact-eco/proact/internal/services/auth/profile"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New(errors.CodeNotFound, "record not found")

// ProfileStore persists user profile records.
type ProfileStore interface {
	PutProfile(ctx context.Context, p profile.Profile) error
	GetProfile(ctx context.Context, userID string) (profile.Profile, error)
}
