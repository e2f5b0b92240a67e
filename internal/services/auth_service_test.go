package services

import (
	"time"

	"github.com/riverkeep/river-ops/internal/repository"
)

func (s *ServiceTestSuite) newAuth() *AuthService {
	auth := NewAuthService(repository.NewUserRepository(s.db))
	auth.now = func() time.Time { return fixedNow }
	return auth
}

func (s *ServiceTestSuite) TestAuth_CreateAndLogin() {
	auth := s.newAuth()

	user, err := auth.CreateUser(CreateUserInput{Username: " warden ", Password: "riverbank", IsStaff: true})
	s.Require().NoError(err)
	s.Equal("warden", user.Username)
	s.NotEqual("riverbank", user.PasswordHash)

	_, err = auth.CreateUser(CreateUserInput{Username: "warden", Password: "riverbank"})
	s.ErrorIs(err, ErrUsernameTaken)

	logged, err := auth.Login(LoginInput{Username: "warden", Password: "riverbank"})
	s.Require().NoError(err)
	s.Require().NotNil(logged.LastLoginAt)
	s.True(fixedNow.Equal(*logged.LastLoginAt))

	_, err = auth.Login(LoginInput{Username: "warden", Password: "wrong-pass"})
	s.ErrorIs(err, ErrInvalidCredentials)
	_, err = auth.Login(LoginInput{Username: "nobody", Password: "riverbank"})
	s.ErrorIs(err, ErrInvalidCredentials)

	found, err := auth.GetUser(user.ID)
	s.Require().NoError(err)
	s.True(found.IsStaff)
	_, err = auth.GetUser(404)
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *ServiceTestSuite) TestAuth_CreateValidation() {
	auth := s.newAuth()

	_, err := auth.CreateUser(CreateUserInput{Username: "", Password: "riverbank"})
	s.ErrorIs(err, ErrUsernameRequired)
	_, err = auth.CreateUser(CreateUserInput{Username: "volunteer", Password: "short"})
	s.ErrorIs(err, ErrPasswordTooShort)
}
