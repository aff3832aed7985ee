package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/port"
)

const MinPasswordLength = 8

const invalidCredentials = "Invalid credentials"

// fallbackDummyHash is only used when the configured hasher cannot produce one.
const fallbackDummyHash = "$2a$12$C6UzMDM.H6dfI/f/IKcEeO5Q7L6WQ8bE0pHq0ZlH6yX1jM9Z6t3eS"

type AuthService struct {
	users       port.UserRepository
	credentials port.CredentialService

	// dummyHash is checked for unknown emails so that path costs the same
	// as a wrong password.
	dummyHash string
}

func NewAuthService(users port.UserRepository, credentials port.CredentialService) *AuthService {
	dummyHash, err := credentials.HashPassword(uuid.NewString())
	if err != nil {
		slog.Warn("Auth#NewAuthService", "dummy_hash", err)
		dummyHash = fallbackDummyHash
	}

	return &AuthService{users: users, credentials: credentials, dummyHash: dummyHash}
}

func (as *AuthService) Register(ctx context.Context, input port.RegisterInput) (port.AuthResult, error) {
	email := domain.NormalizeEmail(input.Email)

	_, err := as.users.FindByEmail(ctx, email)

	if err == nil {
		return port.AuthResult{}, domain.NewConflictError("email", "Email already in use")
	}

	if !errors.Is(err, domain.ErrNotFound) {
		return port.AuthResult{}, fmt.Errorf("find user by email: %w", err)
	}

	if utf8.RuneCountInString(input.Password) < MinPasswordLength {
		return port.AuthResult{}, domain.NewValidationError("password", "Password must be at least 8 characters")
	}

	hash, err := as.credentials.HashPassword(input.Password)
	if errors.Is(err, port.ErrPasswordTooLong) {
		return port.AuthResult{}, domain.NewValidationError("password", "Password must be at most 72 bytes")
	}

	if err != nil {
		return port.AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := domain.NewUser(uuid.NewString(), email, hash, input.Name, time.Now().UTC())
	if err != nil {
		return port.AuthResult{}, err
	}

	saved, err := as.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return port.AuthResult{}, err
		}

		return port.AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	return as.authResult(saved)
}

// Login returns the same error for an unknown email and a wrong password.
func (as *AuthService) Login(ctx context.Context, input port.LoginInput) (port.AuthResult, error) {
	user, err := as.users.FindByEmail(ctx, domain.NormalizeEmail(input.Email))

	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.ErrorContext(ctx, "Auth#Login", "find_by_email", err)
		}

		as.credentials.VerifyPassword(input.Password, as.dummyHash)

		return port.AuthResult{}, domain.NewUnauthenticatedError(invalidCredentials)
	}

	if !as.credentials.VerifyPassword(input.Password, user.PasswordHash) {
		return port.AuthResult{}, domain.NewUnauthenticatedError(invalidCredentials)
	}

	return as.authResult(user)
}

func (as *AuthService) Refresh(ctx context.Context, refreshToken string) (port.TokenPair, error) {
	claims, err := as.credentials.VerifyRefreshToken(refreshToken)
	if err != nil {
		slog.InfoContext(ctx, "Auth#Refresh", "verify", err)
		return port.TokenPair{}, domain.NewUnauthenticatedError("Invalid refresh token")
	}

	user, err := as.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.ErrorContext(ctx, "Auth#Refresh", "find_by_id", err)
		}

		return port.TokenPair{}, domain.NewUnauthenticatedError("Invalid refresh token")
	}

	return as.issueTokens(user)
}

// Authenticate resolves an access token to the caller identity.
func (as *AuthService) Authenticate(ctx context.Context, accessToken string) (port.TokenClaims, error) {
	claims, err := as.credentials.VerifyAccessToken(accessToken)
	if err != nil {
		return port.TokenClaims{}, domain.NewUnauthenticatedError("Invalid or expired token")
	}

	return claims, nil
}

func (as *AuthService) authResult(user domain.User) (port.AuthResult, error) {
	tokens, err := as.issueTokens(user)
	if err != nil {
		return port.AuthResult{}, err
	}

	return port.AuthResult{
		Tokens: tokens,
		User: port.PublicUser{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
		},
	}, nil
}

func (as *AuthService) issueTokens(user domain.User) (port.TokenPair, error) {
	access, err := as.credentials.IssueAccessToken(port.TokenClaims{UserID: user.ID, Email: user.Email})
	if err != nil {
		return port.TokenPair{}, err
	}

	refresh, err := as.credentials.IssueRefreshToken(port.TokenClaims{UserID: user.ID})
	if err != nil {
		return port.TokenPair{}, err
	}

	return port.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
