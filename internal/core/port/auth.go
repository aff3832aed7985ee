package port

import (
	"context"
	"errors"
)

// ErrPasswordTooLong is returned by HashPassword for input the hash cannot represent.
var ErrPasswordTooLong = errors.New("password too long")

type TokenClaims struct {
	UserID string
	Email  string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// CredentialService hashes passwords and issues the access/refresh token pair.
// Verify* return an error matching auth.ErrInvalidToken on any failure.
type CredentialService interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, hash string) bool

	IssueAccessToken(claims TokenClaims) (string, error)
	IssueRefreshToken(claims TokenClaims) (string, error)
	VerifyAccessToken(token string) (TokenClaims, error)
	VerifyRefreshToken(token string) (TokenClaims, error)
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

type LoginInput struct {
	Email    string
	Password string
}

type PublicUser struct {
	ID    string
	Email string
	Name  string
}

type AuthResult struct {
	Tokens TokenPair
	User   PublicUser
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (AuthResult, error)
	Login(ctx context.Context, input LoginInput) (AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	Authenticate(ctx context.Context, accessToken string) (TokenClaims, error)
}
