package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"formdesk/internal/domain"
	"formdesk/internal/port"
)

const bcryptCost = 12

// CreateReviewerInput is the DTO for creating a reviewer.
type CreateReviewerInput struct {
	Email    string              `json:"email" binding:"required,email"`
	Password string              `json:"password" binding:"required,min=8"`
	FullName string              `json:"full_name" binding:"required"`
	Role     domain.ReviewerRole `json:"role" binding:"required"`
}

// UpdateReviewerInput is the DTO for updating a reviewer.
type UpdateReviewerInput struct {
	Email    *string              `json:"email" binding:"omitempty,email"`
	FullName *string              `json:"full_name"`
	Role     *domain.ReviewerRole `json:"role"`
	IsActive *bool                `json:"is_active"`
	Password *string              `json:"password" binding:"omitempty,min=8"`
}

// ReviewerService defines the reviewer management contract.
type ReviewerService interface {
	Create(ctx context.Context, input CreateReviewerInput) (*domain.Reviewer, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Reviewer, error)
	List(ctx context.Context, offset, limit int) ([]domain.Reviewer, int, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateReviewerInput) (*domain.Reviewer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type reviewerService struct {
	repo port.ReviewerRepository
}

// NewReviewerService creates a new ReviewerService implementation.
func NewReviewerService(repo port.ReviewerRepository) ReviewerService {
	return &reviewerService{repo: repo}
}

// HashPassword returns the bcrypt hash stored for reviewer passwords.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func (s *reviewerService) Create(ctx context.Context, input CreateReviewerInput) (*domain.Reviewer, error) {
	if !domain.ValidReviewerRoles[input.Role] {
		return nil, domain.ErrInvalidRole
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	reviewer := &domain.Reviewer{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		FullName:     input.FullName,
		Role:         input.Role,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, reviewer); err != nil {
		return nil, err
	}
	return reviewer, nil
}

func (s *reviewerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reviewer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *reviewerService) List(ctx context.Context, offset, limit int) ([]domain.Reviewer, int, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *reviewerService) Update(ctx context.Context, id uuid.UUID, input UpdateReviewerInput) (*domain.Reviewer, error) {
	reviewer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		reviewer.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.FullName != nil {
		reviewer.FullName = *input.FullName
	}
	if input.Role != nil {
		if !domain.ValidReviewerRoles[*input.Role] {
			return nil, domain.ErrInvalidRole
		}
		reviewer.Role = *input.Role
	}
	if input.IsActive != nil {
		reviewer.IsActive = *input.IsActive
	}
	if input.Password != nil {
		hash, err := HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		reviewer.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, reviewer); err != nil {
		return nil, err
	}
	return reviewer, nil
}

func (s *reviewerService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
