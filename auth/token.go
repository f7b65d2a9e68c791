package auth

import (
	"fmt"
	"safe-space/domain"
	safeerrors "safe-space/errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "safe-space"

// CustomClaims defines the data stored inside the JWT.
type CustomClaims struct {
	UserID string      `json:"id"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 bearer tokens.
type TokenManager struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

func NewTokenManager(secret string, duration time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), duration: duration, now: time.Now}
}

// GenerateToken creates a signed JWT carrying the identity.
func (m *TokenManager) GenerateToken(identity domain.Identity) (string, error) {
	now := m.now()
	claims := &CustomClaims{
		UserID: identity.ID,
		Role:   identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", safeerrors.ErrTokenGeneration, err)
	}
	return signed, nil
}

// ValidateToken checks signature, algorithm, issuer and expiry and returns
// the identity the token was issued for.
func (m *TokenManager) ValidateToken(tokenString string) (domain.Identity, error) {
	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %w", safeerrors.ErrUnauthenticated, err)
	}
	if !token.Valid || !claims.Role.Valid() || domain.ValidateID(claims.UserID) != nil {
		return domain.Identity{}, fmt.Errorf("%w: invalid claims", safeerrors.ErrUnauthenticated)
	}
	return domain.Identity{ID: claims.UserID, Role: claims.Role}, nil
}
