package service_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"taskmanager/internal/adapter/database/memory"
	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/port"
	"taskmanager/internal/core/service"
)

type UserServiceTestSuite struct {
	suite.Suite
	service *service.UserService
	auth    *service.AuthService
	ctx     context.Context
}

func (s *UserServiceTestSuite) SetupTest() {
	repo := memory.NewUserRepository(memory.NewDB())

	s.service = service.NewUserService(repo)
	s.auth = service.NewAuthService(repo, newCredentials())
	s.ctx = context.Background()
}

func TestUserServiceTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(UserServiceTestSuite))
}

func (s *UserServiceTestSuite) register(email string) port.PublicUser {
	result, err := s.auth.Register(s.ctx, port.RegisterInput{Email: email, Password: "password123", Name: "Test User"})
	require.NoError(s.T(), err)

	return result.User
}

func (s *UserServiceTestSuite) TestGetByID() {
	registered := s.register("test@example.com")

	user, err := s.service.GetByID(s.ctx, registered.ID)
	Expect(err).To(BeNil())
	Expect(user.Email).To(Equal("test@example.com"))

	_, err = s.service.GetByID(s.ctx, "missing")
	Expect(errors.Is(err, domain.ErrNotFound)).To(BeTrue())
	Expect(err.Error()).To(Equal("User not found"))
}

func (s *UserServiceTestSuite) TestUpdateProfile() {
	registered := s.register("test@example.com")
	before, _ := s.service.GetByID(s.ctx, registered.ID)

	user, err := s.service.UpdateProfile(s.ctx, registered.ID, port.UpdateProfileInput{
		Name:  ptr("Renamed User"),
		Email: ptr("New@Example.com"),
	})

	Expect(err).To(BeNil())
	Expect(user.Name).To(Equal("Renamed User"))
	Expect(user.Email).To(Equal("new@example.com"))
	Expect(user.UpdatedAt.After(before.UpdatedAt)).To(BeTrue())

	_, err = s.auth.Login(s.ctx, port.LoginInput{Email: "new@example.com", Password: "password123"})
	Expect(err).To(BeNil())
}

func (s *UserServiceTestSuite) TestUpdateProfile_EmailTaken() {
	first := s.register("first@example.com")
	s.register("second@example.com")

	_, err := s.service.UpdateProfile(s.ctx, first.ID, port.UpdateProfileInput{Email: ptr("second@example.com")})

	assert.True(s.T(), errors.Is(err, domain.ErrConflict))
}

func (s *UserServiceTestSuite) TestUpdateProfile_SameEmailIsNotAConflict() {
	registered := s.register("test@example.com")

	user, err := s.service.UpdateProfile(s.ctx, registered.ID, port.UpdateProfileInput{Email: ptr("TEST@example.com")})

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "test@example.com", user.Email)
}

func (s *UserServiceTestSuite) TestUpdateProfile_Validation() {
	registered := s.register("test@example.com")

	_, err := s.service.UpdateProfile(s.ctx, registered.ID, port.UpdateProfileInput{Name: ptr("x")})
	assert.True(s.T(), errors.Is(err, domain.ErrValidation))

	_, err = s.service.UpdateProfile(s.ctx, registered.ID, port.UpdateProfileInput{Email: ptr("broken")})
	assert.True(s.T(), errors.Is(err, domain.ErrValidation))

	user, _ := s.service.GetByID(s.ctx, registered.ID)
	assert.Equal(s.T(), "Test User", user.Name)
	assert.Equal(s.T(), "test@example.com", user.Email)
}
