package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"formdesk/internal/domain"
	"formdesk/internal/service"
	"formdesk/mocks"
)

func activeReviewer() *domain.Reviewer {
	return &domain.Reviewer{
		ID:           uuid.New(),
		Email:        "reviewer@test.com",
		PasswordHash: hashPassword("password123"),
		FullName:     "Test Reviewer",
		Role:         domain.RoleReviewer,
		IsActive:     true,
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := new(mocks.MockReviewerRepo)
	svc := service.NewAuthService(repo, testJWTConfig())
	reviewer := activeReviewer()

	repo.On("GetByEmail", mock.Anything, "reviewer@test.com").Return(reviewer, nil)

	result, err := svc.Login(context.Background(), service.LoginInput{
		Email:    "reviewer@test.com",
		Password: "password123",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.True(t, result.ExpiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reviewer.ID, claims.ReviewerID)
	assert.Equal(t, domain.RoleReviewer, claims.Role)

	repo.AssertExpectations(t)
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	repo := new(mocks.MockReviewerRepo)
	svc := service.NewAuthService(repo, testJWTConfig())

	repo.On("GetByEmail", mock.Anything, "reviewer@test.com").Return(activeReviewer(), nil)

	result, err := svc.Login(context.Background(), service.LoginInput{
		Email:    "reviewer@test.com",
		Password: "wrong-password",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	repo := new(mocks.MockReviewerRepo)
	svc := service.NewAuthService(repo, testJWTConfig())

	repo.On("GetByEmail", mock.Anything, "ghost@test.com").Return(nil, domain.ErrNotFound)

	_, err := svc.Login(context.Background(), service.LoginInput{Email: "ghost@test.com", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_Login_RepoError(t *testing.T) {
	repo := new(mocks.MockReviewerRepo)
	svc := service.NewAuthService(repo, testJWTConfig())

	repo.On("GetByEmail", mock.Anything, "reviewer@test.com").Return(nil, errors.New("db down"))

	_, err := svc.Login(context.Background(), service.LoginInput{Email: "reviewer@test.com", Password: "password123"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_Login_InactiveReviewer(t *testing.T) {
	repo := new(mocks.MockReviewerRepo)
	svc := service.NewAuthService(repo, testJWTConfig())
	reviewer := activeReviewer()
	reviewer.IsActive = false

	repo.On("GetByEmail", mock.Anything, "reviewer@test.com").Return(reviewer, nil)

	_, err := svc.Login(context.Background(), service.LoginInput{Email: "reviewer@test.com", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrReviewerInactive)
}

func TestAuthService_RefreshToken(t *testing.T) {
	repo := new(mocks.MockReviewerRepo)
	svc := service.NewAuthService(repo, testJWTConfig())
	reviewer := activeReviewer()

	repo.On("GetByEmail", mock.Anything, reviewer.Email).Return(reviewer, nil)
	repo.On("GetByID", mock.Anything, reviewer.ID).Return(reviewer, nil)

	pair, err := svc.Login(context.Background(), service.LoginInput{Email: reviewer.Email, Password: "password123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// An access token is not accepted as a refresh token and vice versa.
	_, err = svc.RefreshToken(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.ValidateToken(pair.RefreshToken)
	assert.Error(t, err)
}

func TestAuthService_ValidateToken_WrongSecret(t *testing.T) {
	repo := new(mocks.MockReviewerRepo)
	reviewer := activeReviewer()
	repo.On("GetByEmail", mock.Anything, reviewer.Email).Return(reviewer, nil)

	pair, err := service.NewAuthService(repo, testJWTConfig()).
		Login(context.Background(), service.LoginInput{Email: reviewer.Email, Password: "password123"})
	require.NoError(t, err)

	other := testJWTConfig()
	other.Secret = "another-secret"
	_, err = service.NewAuthService(repo, other).ValidateToken(pair.AccessToken)
	assert.Error(t, err)
}
