package services

import (
	"testing"
	"time"

	"taskroom/auth"
	"taskroom/errors"
	"taskroom/mocks"
	"taskroom/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTokenManager() *auth.TokenManager {
	return auth.NewTokenManager("test-secret-at-least-32-characters", time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	userRepo := mocks.NewMockIUserRepository(ctrl)
	tokens := newTokenManager()
	service := NewAuthService(userRepo, tokens)
	userID := uuid.NewString()

	// The display name stored alongside the user is the mailbox part
	userRepo.EXPECT().
		CreateUser("alice@example.com", "alice", gomock.Any()).
		Return(userID, nil).
		Times(1)

	token, err := service.Register("alice@example.com", "ComplexPass123!")
	req.NoError(err)

	claims, err := tokens.Validate(string(token))
	req.NoError(err)
	req.Equal(userID, claims.UserID)
	req.Equal("alice", claims.DisplayName)
}

func TestAuthService_RegisterRejectsWeakPassword(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	userRepo := mocks.NewMockIUserRepository(ctrl)
	service := NewAuthService(userRepo, newTokenManager())

	// No repository call happens for an invalid request
	_, err := service.Register("alice@example.com", "weak")
	req.ErrorIs(err, errors.ErrInvalidPassword)
}

func TestAuthService_RegisterPropagatesDuplicate(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	userRepo := mocks.NewMockIUserRepository(ctrl)
	service := NewAuthService(userRepo, newTokenManager())

	userRepo.EXPECT().
		CreateUser(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.ErrUserAlreadyExists)

	_, err := service.Register("alice@example.com", "ComplexPass123!")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func TestAuthService_Login(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	userRepo := mocks.NewMockIUserRepository(ctrl)
	tokens := newTokenManager()
	service := NewAuthService(userRepo, tokens)

	hash, err := auth.HashPassword("ComplexPass123!")
	req.NoError(err)
	user := repositories.User{
		ID:           uuid.NewString(),
		Email:        "alice@example.com",
		DisplayName:  "alice",
		PasswordHash: hash,
		Roles:        []string{"user"},
	}

	userRepo.EXPECT().GetUserByEmail("alice@example.com").Return(user, nil).Times(2)

	// Given the right password, a token carrying the identity is issued
	token, err := service.Login("alice@example.com", "ComplexPass123!")
	req.NoError(err)
	claims, err := tokens.Validate(string(token))
	req.NoError(err)
	req.Equal(user.ID, claims.UserID)
	req.Equal("alice", claims.DisplayName)

	// Given a wrong password, a generic error comes back
	_, err = service.Login("alice@example.com", "WrongPassword1!")
	req.ErrorIs(err, errors.ErrInvalidCredentials)
}

func TestAuthService_LoginUnknownEmailIsGeneric(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	userRepo := mocks.NewMockIUserRepository(ctrl)
	service := NewAuthService(userRepo, newTokenManager())

	userRepo.EXPECT().
		GetUserByEmail(gomock.Any()).
		Return(repositories.User{}, errors.ErrInvalidCredentials)

	// Same error as a bad password, to prevent user enumeration
	_, err := service.Login("nobody@example.com", "ComplexPass123!")
	req.ErrorIs(err, errors.ErrInvalidCredentials)
}
