package factory

import (
	"sync"
	"time"

	fab "github.com/Goldziher/fabricator"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"taskmanager/internal/core/domain"
)

const DefaultPassword = "password123"

var defaultPasswordHash = sync.OnceValue(func() string {
	hash, _ := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	return string(hash)
})

// NewUser builds a persisted-shape user with a unique email. Keys in
// customData override the generated fields by struct field name.
func NewUser(customData ...map[string]any) domain.User {
	now := time.Now().UTC().Truncate(time.Microsecond)

	data := map[string]any{
		"ID":           uuid.NewString(),
		"Email":        "user-" + uuid.NewString()[:8] + "@example.com",
		"Name":         "Test User",
		"PasswordHash": defaultPasswordHash(),
		"CreatedAt":    now,
		"UpdatedAt":    now,
	}

	for _, custom := range customData {
		for key, value := range custom {
			data[key] = value
		}
	}

	return fab.New(domain.User{}).Build(data)
}
