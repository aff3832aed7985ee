package service_test

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/port"
	"taskmanager/pkg/auth"
)

func newCredentials() *auth.Credentials {
	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	tokens, err := auth.NewTokenManager(auth.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
	})
	if err != nil {
		panic(err)
	}

	return auth.NewCredentials(hasher, tokens)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.TaskEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event domain.TaskEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)

	return p.err
}

func (p *recordingPublisher) Events() []domain.TaskEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]domain.TaskEvent(nil), p.events...)
}

func ptr[T any](value T) *T {
	return &value
}

// recordingCredentials remembers every hash passed to VerifyPassword.
type recordingCredentials struct {
	port.CredentialService

	mu     sync.Mutex
	hashes []string
}

func (c *recordingCredentials) VerifyPassword(password, hash string) bool {
	c.mu.Lock()
	c.hashes = append(c.hashes, hash)
	c.mu.Unlock()

	return c.CredentialService.VerifyPassword(password, hash)
}

func (c *recordingCredentials) Hashes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string(nil), c.hashes...)
}

var errHasherUnavailable = errors.New("hasher unavailable")

// brokenHasherCredentials fails every HashPassword call.
type brokenHasherCredentials struct {
	port.CredentialService
}

func (c brokenHasherCredentials) HashPassword(password string) (string, error) {
	return "", errHasherUnavailable
}
