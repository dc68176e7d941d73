package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/lilalabs/keygate/internal/model"
	"github.com/lilalabs/keygate/internal/store"
)

// ErrKeyInvalid is returned when a key id does not reference an active,
// unexpired API key. Callers are told nothing more specific.
var ErrKeyInvalid = errors.New("api key invalid")

// keyTokenBytes is the random portion of a key: 8 bytes, hex-encoded to 16
// characters behind the fixed prefix.
const keyTokenBytes = 8

// KeyService owns the API key lifecycle: generation, validation for
// registration, and revocation.
type KeyService struct {
	store  *store.Store
	prefix string
	ttl    time.Duration
}

// NewKeyService creates a KeyService issuing keys with the given prefix that
// expire ttl after issuance.
func NewKeyService(st *store.Store, prefix string, ttl time.Duration) *KeyService {
	return &KeyService{
		store:  st,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Generate issues a new active API key and persists it. The returned key
// carries the generated id and full key string.
func (s *KeyService) Generate(ctx context.Context) (*model.APIKey, error) {
	buf := make([]byte, keyTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate key token: %w", err)
	}

	key := &model.APIKey{
		Key:       s.prefix + hex.EncodeToString(buf),
		Status:    model.KeyStatusActive,
		ExpiresAt: time.Now().Add(s.ttl).UTC(),
	}
	if err := s.store.CreateAPIKey(ctx, key); err != nil {
		return nil, err
	}
	return key, nil
}

// ValidateForRegistration checks that the key id references an active key
// whose validity window has not passed. A missing, revoked, or expired key
// all yield ErrKeyInvalid.
//
// The caller's follow-up insert is a separate statement; a revocation landing
// between the two is not rolled back.
func (s *KeyService) ValidateForRegistration(ctx context.Context, id int64) error {
	key, err := s.store.GetAPIKey(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrKeyInvalid
		}
		return err
	}
	if key.Status != model.KeyStatusActive {
		return ErrKeyInvalid
	}
	if key.Expired(time.Now()) {
		return ErrKeyInvalid
	}
	return nil
}

// Revoke marks a key inactive. Passes through store.ErrNotFound when the id
// does not exist.
func (s *KeyService) Revoke(ctx context.Context, id int64) error {
	return s.store.RevokeAPIKey(ctx, id)
}
