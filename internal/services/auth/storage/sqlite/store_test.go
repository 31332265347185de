package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/proact-eco/proact/internal/services/auth/profile"
	"github.com/proact-eco/proact/internal/services/auth/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPutGetProfileRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	want := profile.Profile{
		ID:         "user-1",
		Email:      "ada@example.com",
		Onboarded:  true,
		Locale:     language.BrazilianPortuguese,
		Location:   "New York City",
		Occupation: "College Student",
		Interests:  []string{"Biking around the city", "Playing guitar"},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := store.PutProfile(ctx, want); err != nil {
		t.Fatalf("put profile: %v", err)
	}

	got, err := store.GetProfile(ctx, "user-1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if got.ID != want.ID || got.Email != want.Email || !got.Onboarded {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if got.Locale != want.Locale {
		t.Fatalf("Locale = %v, want %v", got.Locale, want.Locale)
	}
	if len(got.Interests) != 2 || got.Interests[0] != want.Interests[0] {
		t.Fatalf("Interests = %v, want %v", got.Interests, want.Interests)
	}
	if !got.CreatedAt.Equal(now) || !got.UpdatedAt.Equal(now) {
		t.Fatalf("timestamps = %v/%v, want %v", got.CreatedAt, got.UpdatedAt, now)
	}
}

func TestPutProfileUpserts(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	p, err := profile.CreateProfile(profile.CreateProfileInput{
		UserID: "user-1",
		Email:  "ada@example.com",
	}, func() time.Time { return now })
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if err := store.PutProfile(ctx, p); err != nil {
		t.Fatalf("put profile: %v", err)
	}

	onboarded := p.CompleteOnboarding(func() time.Time { return now.Add(time.Hour) })
	if err := store.PutProfile(ctx, onboarded); err != nil {
		t.Fatalf("put onboarded profile: %v", err)
	}

	got, err := store.GetProfile(ctx, "user-1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if !got.Onboarded {
		t.Fatal("expected upsert to persist onboarded flag")
	}
	if !got.UpdatedAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("UpdatedAt = %v, want %v", got.UpdatedAt, now.Add(time.Hour))
	}
}

func TestGetProfileMissing(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	_, err := store.GetProfile(context.Background(), "nobody")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
