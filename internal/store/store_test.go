package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lilalabs/keygate/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{Driver: DriverSQLite}) // in-memory
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func makeKey(t *testing.T, s *Store, key string, status string, expiresAt time.Time) *model.APIKey {
	t.Helper()
	k := &model.APIKey{
		Key:       key,
		Status:    status,
		ExpiresAt: expiresAt,
	}
	if err := s.CreateAPIKey(context.Background(), k); err != nil {
		t.Fatalf("CreateAPIKey: %v", err)
	}
	return k
}

func TestAPIKeyRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	expires := time.Now().Add(30 * 24 * time.Hour).UTC()
	k := makeKey(t, s, "Lila_secr3t_0123456789abcdef", model.KeyStatusActive, expires)
	if k.ID == 0 {
		t.Fatal("expected generated id")
	}

	got, err := s.GetAPIKey(ctx, k.ID)
	if err != nil {
		t.Fatalf("GetAPIKey: %v", err)
	}
	if got.Key != k.Key {
		t.Errorf("Key: got %q, want %q", got.Key, k.Key)
	}
	if got.Status != model.KeyStatusActive {
		t.Errorf("Status: got %q, want active", got.Status)
	}
	if got.UserID != nil {
		t.Errorf("UserID: got %v, want nil", *got.UserID)
	}
	if got.ExpiresAt.Unix() != expires.Unix() {
		t.Errorf("ExpiresAt: got %v, want %v", got.ExpiresAt, expires)
	}
}

func TestGetAPIKeyNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetAPIKey(context.Background(), 12345)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListAPIKeysNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	expires := time.Now().Add(time.Hour)
	first := makeKey(t, s, "Lila_secr3t_aaaaaaaaaaaaaaaa", model.KeyStatusActive, expires)
	second := makeKey(t, s, "Lila_secr3t_bbbbbbbbbbbbbbbb", model.KeyStatusActive, expires)

	keys, err := s.ListAPIKeys(ctx)
	if err != nil {
		t.Fatalf("ListAPIKeys: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("got %d keys, want 2", len(keys))
	}
	if keys[0].ID != second.ID || keys[1].ID != first.ID {
		t.Errorf("order: got [%d, %d], want [%d, %d]", keys[0].ID, keys[1].ID, second.ID, first.ID)
	}
}

func TestDuplicateKeyStringRejected(t *testing.T) {
	s := newTestStore(t)

	expires := time.Now().Add(time.Hour)
	makeKey(t, s, "Lila_secr3t_cccccccccccccccc", model.KeyStatusActive, expires)

	dup := &model.APIKey{
		Key:       "Lila_secr3t_cccccccccccccccc",
		Status:    model.KeyStatusActive,
		ExpiresAt: expires,
	}
	err := s.CreateAPIKey(context.Background(), dup)
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestRevokeAPIKeyIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	k := makeKey(t, s, "Lila_secr3t_dddddddddddddddd", model.KeyStatusActive, time.Now().Add(time.Hour))

	if err := s.RevokeAPIKey(ctx, k.ID); err != nil {
		t.Fatalf("first revoke: %v", err)
	}
	got, err := s.GetAPIKey(ctx, k.ID)
	if err != nil {
		t.Fatalf("GetAPIKey: %v", err)
	}
	if got.Status != model.KeyStatusInactive {
		t.Errorf("Status after revoke: got %q, want inactive", got.Status)
	}

	// No current-status precondition: revoking again succeeds.
	if err := s.RevokeAPIKey(ctx, k.ID); err != nil {
		t.Errorf("second revoke: %v", err)
	}
}

func TestRevokeAPIKeyNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.RevokeAPIKey(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateAndListUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	k := makeKey(t, s, "Lila_secr3t_eeeeeeeeeeeeeeee", model.KeyStatusActive, time.Now().Add(time.Hour))

	today := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	u := &model.User{
		FirstName: "Sinta",
		LastName:  "Dewi",
		Email:     "sinta@example.com",
		StartDate: today,
		APIKeyID:  k.ID,
	}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == 0 {
		t.Fatal("expected generated id")
	}

	// Email uniqueness is intentionally not enforced for users.
	dup := &model.User{
		FirstName: "Sinta",
		LastName:  "Dewi",
		Email:     "sinta@example.com",
		StartDate: today,
		APIKeyID:  k.ID,
	}
	if err := s.CreateUser(ctx, dup); err != nil {
		t.Fatalf("CreateUser duplicate email: %v", err)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}
	if users[0].LastDate != nil {
		t.Errorf("LastDate: got %v, want nil", users[0].LastDate)
	}
	if users[0].APIKeyID != k.ID {
		t.Errorf("APIKeyID: got %d, want %d", users[0].APIKeyID, k.ID)
	}
}

func TestCreateAdminDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	admin := &model.Admin{Email: "admin@example.com", PasswordHash: "x"}
	if err := s.CreateAdmin(ctx, admin); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	dup := &model.Admin{Email: "admin@example.com", PasswordHash: "y"}
	err := s.CreateAdmin(ctx, dup)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	admins, err := s.ListAdmins(ctx)
	if err != nil {
		t.Fatalf("ListAdmins: %v", err)
	}
	if len(admins) != 1 {
		t.Errorf("got %d admins, want 1", len(admins))
	}
}

func TestGetAdminByEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetAdminByEmail(ctx, "missing@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	admin := &model.Admin{Email: "admin@example.com", PasswordHash: "hash"}
	if err := s.CreateAdmin(ctx, admin); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	got, err := s.GetAdminByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("GetAdminByEmail: %v", err)
	}
	if got.ID != admin.ID || got.PasswordHash != "hash" {
		t.Errorf("got %+v, want id=%d hash=hash", got, admin.ID)
	}
}

func TestHasAnyAdmin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	has, err := s.HasAnyAdmin(ctx)
	if err != nil {
		t.Fatalf("HasAnyAdmin: %v", err)
	}
	if has {
		t.Error("expected no admins on fresh store")
	}

	if err := s.CreateAdmin(ctx, &model.Admin{Email: "a@b.c", PasswordHash: "x"}); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	has, err = s.HasAnyAdmin(ctx)
	if err != nil {
		t.Fatalf("HasAnyAdmin: %v", err)
	}
	if !has {
		t.Error("expected an admin after create")
	}
}
