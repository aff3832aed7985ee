package auth

import (
	"fmt"

	"taskmanager/internal/core/port"
)

// Credentials adapts the hasher and token manager to port.CredentialService.
type Credentials struct {
	hasher *PasswordHasher
	tokens *TokenManager
}

func NewCredentials(hasher *PasswordHasher, tokens *TokenManager) *Credentials {
	return &Credentials{hasher: hasher, tokens: tokens}
}

func (c *Credentials) HashPassword(password string) (string, error) {
	hash, err := c.hasher.Hash(password)
	if IsPasswordTooLong(err) {
		return "", fmt.Errorf("%w: %w", port.ErrPasswordTooLong, err)
	}

	return hash, err
}

func (c *Credentials) VerifyPassword(password, hash string) bool {
	return c.hasher.Verify(password, hash)
}

func (c *Credentials) IssueAccessToken(claims port.TokenClaims) (string, error) {
	return c.tokens.IssueAccessToken(claims.UserID, claims.Email)
}

func (c *Credentials) IssueRefreshToken(claims port.TokenClaims) (string, error) {
	return c.tokens.IssueRefreshToken(claims.UserID)
}

func (c *Credentials) VerifyAccessToken(token string) (port.TokenClaims, error) {
	claims, err := c.tokens.VerifyAccessToken(token)
	if err != nil {
		return port.TokenClaims{}, err
	}

	return port.TokenClaims{UserID: claims.UserID, Email: claims.Email}, nil
}

func (c *Credentials) VerifyRefreshToken(token string) (port.TokenClaims, error) {
	claims, err := c.tokens.VerifyRefreshToken(token)
	if err != nil {
		return port.TokenClaims{}, err
	}

	return port.TokenClaims{UserID: claims.UserID}, nil
}
