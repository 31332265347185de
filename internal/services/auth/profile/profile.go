// Package profile provides user profile management.
package profile

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/language"

	apperrors "github.com/proact-eco/proact/internal/platform/errors"
	platformi18n "github.com/proact-eco/proact/internal/platform/i18n"
)

var (
	// ErrEmptyUserID indicates a missing user ID.
	ErrEmptyUserID = apperrors.New(apperrors.CodeProfileEmptyUserID, "user id is required")
	// ErrEmptyEmail indicates a missing email address.
	ErrEmptyEmail = apperrors.New(apperrors.CodeProfileEmptyEmail, "email is required")
	// ErrInvalidEmail indicates an email address that does not match the required format.
	ErrInvalidEmail = apperrors.New(apperrors.CodeProfileInvalidEmail, "email must contain a local part and a domain")

	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Profile represents the durable record backing one authenticated user.
//
// The ID is the identity provider's subject, not a generated value: a profile
// either exists for an authenticated user or has not been created yet.
type Profile struct {
	ID         string
	Email      string
	Onboarded  bool
	Locale     language.Tag
	Location   string
	Occupation string
	Interests  []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreateProfileInput describes the metadata needed to create a profile.
type CreateProfileInput struct {
	UserID     string
	Email      string
	Locale     string
	Location   string
	Occupation string
	Interests  []string
}

// NormalizeCreateProfileInput trims and validates profile input metadata.
func NormalizeCreateProfileInput(input CreateProfileInput) (CreateProfileInput, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	if input.UserID == "" {
		return CreateProfileInput{}, ErrEmptyUserID
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email == "" {
		return CreateProfileInput{}, ErrEmptyEmail
	}
	if !emailPattern.MatchString(input.Email) {
		return CreateProfileInput{}, ErrInvalidEmail
	}
	input.Location = strings.TrimSpace(input.Location)
	input.Occupation = strings.TrimSpace(input.Occupation)
	interests := make([]string, 0, len(input.Interests))
	for _, interest := range input.Interests {
		interest = strings.TrimSpace(interest)
		if interest != "" {
			interests = append(interests, interest)
		}
	}
	input.Interests = interests
	return input, nil
}

// CreateProfile creates a not-yet-onboarded profile from validated input.
func CreateProfile(input CreateProfileInput, now func() time.Time) (Profile, error) {
	if now == nil {
		now = time.Now
	}

	normalized, err := NormalizeCreateProfileInput(input)
	if err != nil {
		return Profile{}, err
	}

	locale, _ := platformi18n.ParseTag(normalized.Locale)
	createdAt := now().UTC()
	return Profile{
		ID:         normalized.UserID,
		Email:      normalized.Email,
		Onboarded:  false,
		Locale:     locale,
		Location:   normalized.Location,
		Occupation: normalized.Occupation,
		Interests:  normalized.Interests,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}, nil
}

// CompleteOnboarding marks the profile as onboarded.
func (p Profile) CompleteOnboarding(now func() time.Time) Profile {
	if now == nil {
		now = time.Now
	}
	p.Onboarded = true
	p.UpdatedAt = now().UTC()
	return p
}
