package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/proact-eco/proact/internal/platform/errors"
)

const (
	testIssuer   = "https://id.proact.test"
	testAudience = "proact-app"
)

func testKeys(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return pub, priv
}

func testConfig(pub ed25519.PublicKey, now time.Time) VerifierConfig {
	return VerifierConfig{
		Issuer:   testIssuer,
		Audience: testAudience,
		Key:      pub,
		Now:      func() time.Time { return now },
	}
}

func signToken(t *testing.T, priv ed25519.PrivateKey, claims idTokenClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(priv)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func baseClaims(now time.Time) idTokenClaims {
	return idTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testAudience},
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email:         "ada@example.com",
		EmailVerified: true,
	}
}

func TestVerifyIDTokenValid(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	pub, priv := testKeys(t)
	token := signToken(t, priv, baseClaims(now))

	got, err := VerifyIDToken(token, testConfig(pub, now))
	if err != nil {
		t.Fatalf("verify id token: %v", err)
	}
	if got.UserID != "user-1" {
		t.Fatalf("UserID = %q, want user-1", got.UserID)
	}
	if got.Email != "ada@example.com" {
		t.Fatalf("Email = %q, want ada@example.com", got.Email)
	}
	if !got.EmailVerified {
		t.Fatal("expected verified email")
	}

	signal := got.Signal()
	if signal.Kind != SignalAuthenticated {
		t.Fatalf("signal kind = %v, want authenticated", signal.Kind)
	}
}

func TestVerifyIDTokenCarriesUnverifiedEmail(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	pub, priv := testKeys(t)
	claims := baseClaims(now)
	claims.EmailVerified = false
	token := signToken(t, priv, claims)

	got, err := VerifyIDToken(token, testConfig(pub, now))
	if err != nil {
		t.Fatalf("verify id token: %v", err)
	}
	if got.EmailVerified {
		t.Fatal("expected unverified email to be preserved, not rejected")
	}
}

func TestVerifyIDTokenExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	pub, priv := testKeys(t)
	claims := baseClaims(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
	token := signToken(t, priv, claims)

	_, err := VerifyIDToken(token, testConfig(pub, now))
	if !errors.Is(err, apperrors.New(apperrors.CodeIdentityTokenExpired, "")) {
		t.Fatalf("expected token expired error, got %v", err)
	}
}

func TestVerifyIDTokenIssuerMismatch(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	pub, priv := testKeys(t)
	claims := baseClaims(now)
	claims.Issuer = "https://rogue.example.com"
	token := signToken(t, priv, claims)

	_, err := VerifyIDToken(token, testConfig(pub, now))
	if !errors.Is(err, apperrors.New(apperrors.CodeIdentityTokenMismatch, "")) {
		t.Fatalf("expected issuer mismatch error, got %v", err)
	}
}

func TestVerifyIDTokenBadSignature(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	pub, _ := testKeys(t)
	_, otherPriv := testKeys(t)
	token := signToken(t, otherPriv, baseClaims(now))

	_, err := VerifyIDToken(token, testConfig(pub, now))
	if !errors.Is(err, apperrors.New(apperrors.CodeIdentityTokenInvalid, "")) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestVerifyIDTokenMissingSubject(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	pub, priv := testKeys(t)
	claims := baseClaims(now)
	claims.Subject = ""
	token := signToken(t, priv, claims)

	_, err := VerifyIDToken(token, testConfig(pub, now))
	if !errors.Is(err, apperrors.New(apperrors.CodeIdentityTokenInvalid, "")) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}
