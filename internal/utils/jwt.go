package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// AccessClaims are embedded in short-lived access tokens.
type AccessClaims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims are embedded in long-lived refresh tokens.
type RefreshClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// JWTOptions configures a JWTUtil.
type JWTOptions struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// JWTUtil issues and validates access and refresh tokens, each kind with its own secret.
type JWTUtil struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewJWTUtil creates a new JWTUtil
func NewJWTUtil(opts JWTOptions) *JWTUtil {
	return &JWTUtil{
		accessSecret:  []byte(opts.AccessSecret),
		refreshSecret: []byte(opts.RefreshSecret),
		accessTTL:     opts.AccessTTL,
		refreshTTL:    opts.RefreshTTL,
		now:           time.Now,
	}
}

// RefreshTTL is the lifetime of refresh tokens; persisted expiries use the same value.
func (ju *JWTUtil) RefreshTTL() time.Duration {
	return ju.refreshTTL
}

// GenerateAccessToken signs a token carrying the user's id, email and role.
func (ju *JWTUtil) GenerateAccessToken(userID, email, role string) (string, error) {
	now := ju.now()
	claims := &AccessClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ju.accessTTL)),
		},
	}
	return sign(claims, ju.accessSecret)
}

// GenerateRefreshToken signs a token carrying the user id and a random jti.
func (ju *JWTUtil) GenerateRefreshToken(userID string) (string, error) {
	now := ju.now()
	claims := &RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ju.refreshTTL)),
		},
	}
	return sign(claims, ju.refreshSecret)
}

// ValidateAccessToken verifies an access token against the access secret.
func (ju *JWTUtil) ValidateAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := Verify(tokenString, ju.accessSecret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ValidateRefreshToken verifies a refresh token against the refresh secret.
func (ju *JWTUtil) ValidateRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := Verify(tokenString, ju.refreshSecret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func sign(claims jwt.Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify checks signature, algorithm and expiry of tokenString and decodes it into claims.
// It fails with ErrTokenExpired or ErrInvalidToken.
func Verify(tokenString string, secret []byte, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
