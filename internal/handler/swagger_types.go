package handler

import "formdesk/internal/domain"

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"reviewer@insurer.example"`
	Password string `json:"password" binding:"required" example:"securepassword123"`
}

// RefreshRequest represents the token refresh request body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// CreateReviewerRequest represents the create reviewer request body.
type CreateReviewerRequest struct {
	Email    string              `json:"email" binding:"required" example:"claims@insurer.example"`
	Password string              `json:"password" binding:"required" example:"securepassword123"`
	FullName string              `json:"full_name" binding:"required" example:"Chidi Okeke"`
	Role     domain.ReviewerRole `json:"role" binding:"required" example:"reviewer"`
}

// UpdateReviewerRequest represents the update reviewer request body.
type UpdateReviewerRequest struct {
	Email    *string              `json:"email" example:"claims@insurer.example"`
	FullName *string              `json:"full_name" example:"Chidi Okeke"`
	Role     *domain.ReviewerRole `json:"role" example:"admin"`
	IsActive *bool                `json:"is_active" example:"true"`
	Password *string              `json:"password" example:"newpassword123"`
}

// --- Response Types ---

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"operation completed successfully"`
}

// SubmitResponse is the plain body of the public submit routes.
type SubmitResponse struct {
	Message string `json:"message" example:"Form submitted successfully"`
	ID      string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// SubmitErrorResponse is the plain error body of the public submit routes.
type SubmitErrorResponse struct {
	Error  string            `json:"error" example:"validation failed"`
	Fields map[string]string `json:"fields,omitempty"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
