package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/lilalabs/keygate/internal/store"
)

var (
	// ErrInvalidCredentials is returned for both unknown email and wrong
	// password, so responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned when a bearer token fails verification:
	// bad signature, expired, malformed, or wrong role.
	ErrInvalidToken = errors.New("invalid token")
)

// RoleAdmin is the role claim embedded in admin session tokens.
const RoleAdmin = "admin"

// bcryptCost is the work factor for password hashes. Hashing is the one
// deliberately expensive operation in the system.
const bcryptCost = 10

// dummyHash is a valid bcrypt digest compared against when the email lookup
// finds no admin, so the unknown-email and wrong-password branches both cost
// one bcrypt comparison.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Principal is the verified identity carried by an admin session token.
type Principal struct {
	AdminID int64
	Role    string
}

// AuthService owns admin credential verification and session token
// issue/verify. The signing secret is injected at construction; there is no
// ambient fallback.
type AuthService struct {
	store    *store.Store
	secret   []byte
	tokenTTL time.Duration
}

// NewAuthService creates an AuthService signing tokens with secret that
// expire after tokenTTL.
func NewAuthService(st *store.Store, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		store:    st,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login verifies an admin's email and password and returns a signed session
// token. Both failure modes return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	admin, err := s.store.GetAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a comparison anyway so this branch is not cheaper
			// than a wrong password.
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.IssueToken(admin.ID)
}

// IssueToken creates a signed HS256 token for the given admin.
func (s *AuthService) IssueToken(adminID int64) (string, error) {
	now := time.Now()
	claims := adminClaims{
		AdminID: adminID,
		Role:    RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			Issuer:    "keygate",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken verifies a session token's signature, expiry, and role, and
// returns the embedded identity.
func (s *AuthService) ValidateToken(tokenStr string) (*Principal, error) {
	claims := &adminClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Role != RoleAdmin {
		return nil, ErrInvalidToken
	}

	return &Principal{
		AdminID: claims.AdminID,
		Role:    claims.Role,
	}, nil
}

type adminClaims struct {
	AdminID int64  `json:"id"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}
