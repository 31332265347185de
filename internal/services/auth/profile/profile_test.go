package profile

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/text/language"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
}

func TestCreateProfile(t *testing.T) {
	t.Parallel()

	got, err := CreateProfile(CreateProfileInput{
		UserID:     "user-1",
		Email:      " Ada@Example.com ",
		Locale:     "pt-BR",
		Location:   " New York City ",
		Occupation: "College Student",
		Interests:  []string{"Biking around the city", "", "Playing guitar"},
	}, fixedNow)
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}

	if got.ID != "user-1" {
		t.Fatalf("ID = %q, want user-1", got.ID)
	}
	if got.Email != "ada@example.com" {
		t.Fatalf("Email = %q, want lowercased trimmed email", got.Email)
	}
	if got.Onboarded {
		t.Fatal("new profiles must not be onboarded")
	}
	if got.Locale != language.BrazilianPortuguese {
		t.Fatalf("Locale = %v, want pt-BR", got.Locale)
	}
	if len(got.Interests) != 2 {
		t.Fatalf("Interests = %v, want empty entries dropped", got.Interests)
	}
	if !got.CreatedAt.Equal(fixedNow()) || !got.UpdatedAt.Equal(fixedNow()) {
		t.Fatalf("timestamps = %v/%v, want %v", got.CreatedAt, got.UpdatedAt, fixedNow())
	}
}

func TestCreateProfileValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input CreateProfileInput
		want  error
	}{
		{"missing user id", CreateProfileInput{Email: "a@b.com"}, ErrEmptyUserID},
		{"missing email", CreateProfileInput{UserID: "user-1"}, ErrEmptyEmail},
		{"malformed email", CreateProfileInput{UserID: "user-1", Email: "not-an-email"}, ErrInvalidEmail},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := CreateProfile(tc.input, fixedNow)
			if !errors.Is(err, tc.want) {
				t.Fatalf("CreateProfile error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCreateProfileUnknownLocaleFallsBack(t *testing.T) {
	t.Parallel()

	got, err := CreateProfile(CreateProfileInput{
		UserID: "user-1",
		Email:  "a@b.com",
		Locale: "zz-ZZ",
	}, fixedNow)
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if got.Locale != language.AmericanEnglish {
		t.Fatalf("Locale = %v, want default en-US", got.Locale)
	}
}

func TestCompleteOnboarding(t *testing.T) {
	t.Parallel()

	p, err := CreateProfile(CreateProfileInput{UserID: "user-1", Email: "a@b.com"}, fixedNow)
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}

	later := func() time.Time { return fixedNow().Add(time.Hour) }
	onboarded := p.CompleteOnboarding(later)

	if !onboarded.Onboarded {
		t.Fatal("expected profile to be onboarded")
	}
	if !onboarded.UpdatedAt.Equal(later()) {
		t.Fatalf("UpdatedAt = %v, want %v", onboarded.UpdatedAt, later())
	}
	if p.Onboarded {
		t.Fatal("CompleteOnboarding must not mutate the receiver")
	}
}
