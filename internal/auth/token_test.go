package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestSigner(t *testing.T, ttl time.Duration) *TokenSigner {
	t.Helper()
	s, err := NewTokenSigner(testSecret, ttl)
	if err != nil {
		t.Fatalf("NewTokenSigner failed: %v", err)
	}
	return s
}

func TestNewTokenSigner_RejectsWeakSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenSigner("short", time.Hour); err != ErrWeakSecret {
		t.Errorf("expected ErrWeakSecret, got %v", err)
	}
	if _, err := NewTokenSigner(testSecret, 0); err == nil {
		t.Error("expected error for zero ttl")
	}
}

func TestTokenSigner_IssueAndVerify(t *testing.T) {
	t.Parallel()

	s := newTestSigner(t, time.Hour)

	token, err := s.Issue(42, "ada@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("token should be a three-part JWT, got %q", token)
	}

	claims, err := s.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "ada@example.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" {
		t.Error("jti should be set")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Errorf("exp - iat = %s, want 1h", got)
	}
}

func TestTokenSigner_SameSecondTokensDiffer(t *testing.T) {
	t.Parallel()

	s := newTestSigner(t, time.Hour)
	fixed := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return fixed }

	a, err := s.Issue(1, "a@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	b, err := s.Issue(1, "a@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if a == b {
		t.Error("tokens issued in the same second should differ")
	}
}

func TestTokenSigner_VerifyRejects(t *testing.T) {
	t.Parallel()

	s := newTestSigner(t, time.Hour)
	valid, err := s.Issue(7, "x@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	other, err := NewTokenSigner("ffffffffffffffffffffffffffffffff", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenSigner failed: %v", err)
	}
	foreign, _ := other.Issue(7, "x@example.com")

	expiredSigner := newTestSigner(t, time.Minute)
	expiredSigner.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, _ := expiredSigner.Issue(7, "x@example.com")

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 7}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID:           7,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"tampered", valid[:len(valid)-2] + "xx"},
		{"wrong secret", foreign},
		{"expired", expired},
		{"alg none", none},
		{"other hmac alg", hs512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := s.Verify(tt.token); err != ErrInvalidToken {
				t.Errorf("Verify(%s) error = %v, want ErrInvalidToken", tt.name, err)
			}
		})
	}
}

func TestClaimsContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if ClaimsFromContext(ctx) != nil {
		t.Error("empty context should have no claims")
	}
	if UserIDFromContext(ctx) != 0 {
		t.Error("anonymous user id should be 0")
	}

	ctx = ContextWithClaims(ctx, &Claims{UserID: 9, Email: "n@example.com"})
	if got := ClaimsFromContext(ctx).Email; got != "n@example.com" {
		t.Errorf("email = %q", got)
	}
	if UserIDFromContext(ctx) != 9 {
		t.Error("user id should come from claims")
	}
}
