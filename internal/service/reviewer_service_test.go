package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"formdesk/internal/domain"
	"formdesk/internal/service"
	"formdesk/mocks"
)

func TestReviewerService_Create(t *testing.T) {
	repo := new(mocks.MockReviewerRepo)
	svc := service.NewReviewerService(repo)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Reviewer")).Return(nil)

	reviewer, err := svc.Create(context.Background(), service.CreateReviewerInput{
		Email:    " Ada@Example.com ",
		Password: "password123",
		FullName: "Ada Obi",
		Role:     domain.RoleReviewer,
	})

	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", reviewer.Email)
	assert.True(t, reviewer.IsActive)
	assert.NotEqual(t, uuid.Nil, reviewer.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(reviewer.PasswordHash), []byte("password123")))
	repo.AssertExpectations(t)
}

func TestReviewerService_Create_InvalidRole(t *testing.T) {
	repo := new(mocks.MockReviewerRepo)
	svc := service.NewReviewerService(repo)

	_, err := svc.Create(context.Background(), service.CreateReviewerInput{
		Email: "a@b.com", Password: "password123", FullName: "A", Role: "owner",
	})

	assert.ErrorIs(t, err, domain.ErrInvalidRole)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReviewerService_Create_DuplicateEmail(t *testing.T) {
	repo := new(mocks.MockReviewerRepo)
	svc := service.NewReviewerService(repo)

	repo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicateEmail)

	_, err := svc.Create(context.Background(), service.CreateReviewerInput{
		Email: "a@b.com", Password: "password123", FullName: "A", Role: domain.RoleAdmin,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestReviewerService_Update(t *testing.T) {
	repo := new(mocks.MockReviewerRepo)
	svc := service.NewReviewerService(repo)
	id := uuid.New()
	existing := &domain.Reviewer{ID: id, Email: "old@b.com", Role: domain.RoleViewer, IsActive: true}

	repo.On("GetByID", mock.Anything, id).Return(existing, nil)
	repo.On("Update", mock.Anything, existing).Return(nil)

	role := domain.RoleAdmin
	inactive := false
	updated, err := svc.Update(context.Background(), id, service.UpdateReviewerInput{Role: &role, IsActive: &inactive})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "old@b.com", updated.Email)
}

func TestReviewerService_Update_NotFound(t *testing.T) {
	repo := new(mocks.MockReviewerRepo)
	svc := service.NewReviewerService(repo)
	id := uuid.New()

	repo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)

	_, err := svc.Update(context.Background(), id, service.UpdateReviewerInput{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
