package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour

	issuer = "taskmanager"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = fmt.Errorf("%w: token has expired", ErrInvalidToken)
	ErrMissingSecrets = errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must be set")
)

type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenManager(config TokenConfig) (*TokenManager, error) {
	if config.AccessSecret == "" || config.RefreshSecret == "" {
		return nil, ErrMissingSecrets
	}

	if config.AccessSecret == config.RefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}

	if config.AccessTTL <= 0 {
		config.AccessTTL = DefaultAccessTokenTTL
	}

	if config.RefreshTTL <= 0 {
		config.RefreshTTL = DefaultRefreshTokenTTL
	}

	return &TokenManager{
		accessSecret:  []byte(config.AccessSecret),
		refreshSecret: []byte(config.RefreshSecret),
		accessTTL:     config.AccessTTL,
		refreshTTL:    config.RefreshTTL,
	}, nil
}

func (m *TokenManager) IssueAccessToken(userID, email string) (string, error) {
	return m.sign(userID, email, TokenTypeAccess, m.accessTTL, m.accessSecret)
}

// IssueRefreshToken omits the email; refresh tokens only identify the user.
func (m *TokenManager) IssueRefreshToken(userID string) (string, error) {
	return m.sign(userID, "", TokenTypeRefresh, m.refreshTTL, m.refreshSecret)
}

func (m *TokenManager) VerifyAccessToken(token string) (*Claims, error) {
	return m.verify(token, TokenTypeAccess, m.accessSecret)
}

func (m *TokenManager) VerifyRefreshToken(token string) (*Claims, error) {
	return m.verify(token, TokenTypeRefresh, m.refreshSecret)
}

func (m *TokenManager) AccessTTL() time.Duration {
	return m.accessTTL
}

func (m *TokenManager) sign(userID, email, tokenType string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}

	return signed, nil
}

func (m *TokenManager) verify(tokenString, tokenType string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}

		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.TokenType != tokenType || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
