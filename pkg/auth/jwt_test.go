package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type TokenManagerTestSuite struct {
	suite.Suite
	manager *TokenManager
}

func (s *TokenManagerTestSuite) SetupTest() {
	manager, err := NewTokenManager(TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
	})

	s.Require().NoError(err)
	s.manager = manager
}

func TestTokenManagerTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TokenManagerTestSuite))
}

func (s *TokenManagerTestSuite) TestNewTokenManager_RequiresSecrets() {
	_, err := NewTokenManager(TokenConfig{AccessSecret: "only-access"})
	Expect(errors.Is(err, ErrMissingSecrets)).To(BeTrue())

	_, err = NewTokenManager(TokenConfig{RefreshSecret: "only-refresh"})
	Expect(errors.Is(err, ErrMissingSecrets)).To(BeTrue())

	_, err = NewTokenManager(TokenConfig{AccessSecret: "same", RefreshSecret: "same"})
	Expect(err).To(HaveOccurred())
}

func (s *TokenManagerTestSuite) TestNewTokenManager_DefaultLifetimes() {
	Expect(s.manager.accessTTL).To(Equal(15 * time.Minute))
	Expect(s.manager.refreshTTL).To(Equal(7 * 24 * time.Hour))
}

func (s *TokenManagerTestSuite) TestAccessToken_RoundTrip() {
	token, err := s.manager.IssueAccessToken("user-1", "user@example.com")
	Expect(err).To(BeNil())

	claims, err := s.manager.VerifyAccessToken(token)
	Expect(err).To(BeNil())
	Expect(claims.UserID).To(Equal("user-1"))
	Expect(claims.Email).To(Equal("user@example.com"))
	Expect(claims.TokenType).To(Equal(TokenTypeAccess))
	Expect(claims.Subject).To(Equal("user-1"))
}

func (s *TokenManagerTestSuite) TestRefreshToken_RoundTrip() {
	token, err := s.manager.IssueRefreshToken("user-1")
	Expect(err).To(BeNil())

	claims, err := s.manager.VerifyRefreshToken(token)
	Expect(err).To(BeNil())
	Expect(claims.UserID).To(Equal("user-1"))
	Expect(claims.Email).To(BeEmpty())
}

func (s *TokenManagerTestSuite) TestTokensAreNotInterchangeable() {
	access, _ := s.manager.IssueAccessToken("user-1", "user@example.com")
	refresh, _ := s.manager.IssueRefreshToken("user-1")

	_, err := s.manager.VerifyRefreshToken(access)
	Expect(errors.Is(err, ErrInvalidToken)).To(BeTrue())

	_, err = s.manager.VerifyAccessToken(refresh)
	Expect(errors.Is(err, ErrInvalidToken)).To(BeTrue())
}

func (s *TokenManagerTestSuite) TestRejectsWrongSecret() {
	other, _ := NewTokenManager(TokenConfig{AccessSecret: "other-access", RefreshSecret: "other-refresh"})
	token, _ := other.IssueAccessToken("user-1", "user@example.com")

	_, err := s.manager.VerifyAccessToken(token)
	Expect(errors.Is(err, ErrInvalidToken)).To(BeTrue())
}

func (s *TokenManagerTestSuite) TestRejectsExpiredToken() {
	token, err := s.manager.sign("user-1", "", TokenTypeAccess, -time.Minute, s.manager.accessSecret)
	Expect(err).To(BeNil())

	_, err = s.manager.VerifyAccessToken(token)
	Expect(errors.Is(err, ErrExpiredToken)).To(BeTrue())
	Expect(errors.Is(err, ErrInvalidToken)).To(BeTrue())
}

func (s *TokenManagerTestSuite) TestRejectsOtherAlgorithms() {
	claims := Claims{
		UserID:    "user-1",
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	Expect(err).To(BeNil())

	_, err = s.manager.VerifyAccessToken(token)
	Expect(errors.Is(err, ErrInvalidToken)).To(BeTrue())
}

func TestVerify_Garbage(t *testing.T) {
	manager, _ := NewTokenManager(TokenConfig{AccessSecret: "a", RefreshSecret: "b"})

	for _, token := range []string{"", "abc", "a.b.c"} {
		_, err := manager.VerifyAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}
