package domain

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const MinNameLength = 2

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewUser(id, email, passwordHash, name string, now time.Time) (User, error) {
	user := User{
		ID:           id,
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := user.Validate(); err != nil {
		return User{}, err
	}

	return user, nil
}

func (u *User) Validate() error {
	if !emailPattern.MatchString(u.Email) {
		return NewValidationError("email", "Invalid email format")
	}

	if utf8.RuneCountInString(u.Name) < MinNameLength {
		return NewValidationError("name", "Name must have at least 2 characters")
	}

	return nil
}

// UpdateEmail applies the change only when the result is valid.
func (u *User) UpdateEmail(email string) error {
	next := *u
	next.Email = NormalizeEmail(email)

	if err := next.Validate(); err != nil {
		return err
	}

	u.Email = next.Email
	u.UpdatedAt = time.Now().UTC()

	return nil
}

func (u *User) UpdateName(name string) error {
	next := *u
	next.Name = name

	if err := next.Validate(); err != nil {
		return err
	}

	u.Name = name
	u.UpdatedAt = time.Now().UTC()

	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
