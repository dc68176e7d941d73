package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lilalabs/keygate/internal/model"
	"github.com/lilalabs/keygate/internal/store"
)

const testSecret = "test-secret-key-for-jwt"

func newTestAuth(t *testing.T) (*AuthService, *store.Store) {
	t.Helper()
	st, err := store.Open(store.Options{Driver: store.DriverSQLite})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewAuthService(st, testSecret, time.Hour), st
}

func seedAdmin(t *testing.T, st *store.Store, email, password string) *model.Admin {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	admin := &model.Admin{Email: email, PasswordHash: hash}
	if err := st.CreateAdmin(context.Background(), admin); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	return admin
}

func TestHashPasswordVerifies(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-password" {
		t.Fatal("hash must not equal the plaintext")
	}

	auth, st := newTestAuth(t)
	admin := &model.Admin{Email: "a@example.com", PasswordHash: hash}
	if err := st.CreateAdmin(context.Background(), admin); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if _, err := auth.Login(context.Background(), "a@example.com", "s3cret-password"); err != nil {
		t.Errorf("Login with correct password: %v", err)
	}
}

func TestLoginIssuesValidToken(t *testing.T) {
	auth, st := newTestAuth(t)
	admin := seedAdmin(t, st, "admin@example.com", "supersecret")

	token, err := auth.Login(context.Background(), "admin@example.com", "supersecret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	principal, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if principal.AdminID != admin.ID {
		t.Errorf("AdminID: got %d, want %d", principal.AdminID, admin.ID)
	}
	if principal.Role != RoleAdmin {
		t.Errorf("Role: got %q, want %q", principal.Role, RoleAdmin)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	auth, st := newTestAuth(t)
	seedAdmin(t, st, "admin@example.com", "supersecret")

	_, wrongPw := auth.Login(context.Background(), "admin@example.com", "not-the-password")
	_, unknown := auth.Login(context.Background(), "nobody@example.com", "whatever")

	if !errors.Is(wrongPw, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", wrongPw)
	}
	if !errors.Is(unknown, ErrInvalidCredentials) {
		t.Errorf("unknown email: got %v, want ErrInvalidCredentials", unknown)
	}
}

func TestValidateTokenExpired(t *testing.T) {
	st, err := store.Open(store.Options{Driver: store.DriverSQLite})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	// Negative TTL issues a token that is already expired but correctly signed.
	expiredAuth := NewAuthService(st, testSecret, -time.Hour)
	token, err := expiredAuth.IssueToken(7)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if _, err := expiredAuth.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	auth, _ := newTestAuth(t)

	if _, err := auth.ValidateToken("garbage.token.here"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	auth, st := newTestAuth(t)

	other := NewAuthService(st, "a-different-secret", time.Hour)
	token, err := other.IssueToken(1)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if _, err := auth.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestValidateTokenWrongRole(t *testing.T) {
	auth, _ := newTestAuth(t)

	// Correctly signed token carrying a non-admin role claim.
	claims := adminClaims{
		AdminID: 1,
		Role:    "viewer",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := auth.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for non-admin role, got %v", err)
	}
}
