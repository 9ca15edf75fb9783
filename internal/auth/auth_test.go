package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"go-shop/internal/apperr"
	"go-shop/internal/models"
)

var ana = models.Identity{UserID: 7, Email: "ana@x.com", Name: "Ana", Role: models.RoleCustomer}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	digest, err := h.Hash("secret1")
	if err != nil {
		t.Fatal(err)
	}
	if digest == "secret1" {
		t.Fatal("digest must not be the plaintext")
	}
	if !h.Verify("secret1", digest) {
		t.Fatal("expected matching password to verify")
	}
	if h.Verify("wrong", digest) {
		t.Fatal("expected wrong password to fail")
	}
}

func TestBcryptHasherClampsCost(t *testing.T) {
	if h := NewBcryptHasher(99); h.Cost != bcrypt.DefaultCost {
		t.Fatalf("cost = %d", h.Cost)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	token, exp, err := svc.Issue(ana)
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(exp) <= 59*time.Minute {
		t.Fatalf("unexpected expiry %v", exp)
	}
	got, err := svc.Verify(token)
	if err != nil {
		t.Fatal(err)
	}
	if got != ana {
		t.Fatalf("identity = %+v, want %+v", got, ana)
	}
}

func TestJWTExpired(t *testing.T) {
	svc := NewJWTService("test-secret", time.Minute)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := svc.Issue(ana)
	if err != nil {
		t.Fatal(err)
	}
	svc.now = time.Now
	if _, err := svc.Verify(token); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	token, _, err := NewJWTService("one", time.Hour).Issue(ana)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewJWTService("two", time.Hour).Verify(token); err == nil {
		t.Fatal("expected signature failure")
	}
}

func TestJWTRejectsUnsignedToken(t *testing.T) {
	claims := Claims{UserID: 1, Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewJWTService("secret", time.Hour).Verify(token); err == nil {
		t.Fatal("alg=none token must be rejected")
	}
}

func TestGuardAuthenticate(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	g := NewGuard(svc)
	token, _, err := svc.Issue(ana)
	if err != nil {
		t.Fatal(err)
	}

	for _, header := range []string{"Bearer " + token, "bearer " + token, token} {
		id, err := g.Authenticate(header)
		if err != nil {
			t.Fatalf("Authenticate(%q): %v", header[:10], err)
		}
		if id.UserID != ana.UserID || id.Role != models.RoleCustomer {
			t.Fatalf("identity = %+v", id)
		}
	}

	_, err = g.Authenticate("")
	if !errors.Is(err, ErrMissingToken) || !apperr.Is(err, apperr.KindAuthentication) {
		t.Fatalf("missing token: %v", err)
	}
	if apperr.Message(err) != "authentication required" {
		t.Fatalf("message = %q", apperr.Message(err))
	}

	for _, header := range []string{"Bearer ", "bearer", "  Bearer   "} {
		_, err := g.Authenticate(header)
		if !errors.Is(err, ErrMissingToken) || errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Authenticate(%q): %v", header, err)
		}
	}

	_, err = g.Authenticate("Bearer not.a.jwt")
	if !errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrMissingToken) {
		t.Fatalf("invalid token: %v", err)
	}
	if msg := apperr.Message(err); msg != "invalid token" || strings.Contains(msg, "segment") {
		t.Fatalf("message leaks details: %q", msg)
	}
}

func TestGuardRequire(t *testing.T) {
	g := NewGuard(NewJWTService("test-secret", time.Hour))
	if err := g.Require(ana, models.RoleAdmin); !apperr.Is(err, apperr.KindAuthorization) {
		t.Fatalf("customer acting as admin: %v", err)
	}
	if err := g.Require(ana, models.RoleCustomer); err != nil {
		t.Fatal(err)
	}
}

func TestRequireRole(t *testing.T) {
	if err := RequireRole(ana, models.RoleAdmin); !apperr.Is(err, apperr.KindAuthorization) {
		t.Fatalf("customer acting as admin: %v", err)
	}
	admin := models.Identity{UserID: 1, Role: models.RoleAdmin}
	if err := RequireRole(admin, models.RoleAdmin); err != nil {
		t.Fatal(err)
	}
	if err := RequireRole(models.Identity{}, models.RoleCustomer); !apperr.Is(err, apperr.KindAuthentication) {
		t.Fatalf("anonymous identity: %v", err)
	}
}
