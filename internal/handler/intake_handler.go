package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"formdesk/internal/domain"
	"formdesk/internal/logger"
	"formdesk/internal/service"
)

// maxSubmitBody caps the JSON body accepted by the public submit routes.
const maxSubmitBody = 1 << 20

// IntakeHandler serves the public submit routes and the legacy status endpoint.
// Both keep the plain {message|error} bodies that existing clients parse.
type IntakeHandler struct {
	submissionService service.SubmissionService
}

// NewIntakeHandler creates a new IntakeHandler.
func NewIntakeHandler(submissionService service.SubmissionService) *IntakeHandler {
	return &IntakeHandler{submissionService: submissionService}
}

// Submit returns the handler for POST /submit-<formType>.
// @Summary Submit a form
// @Description Persist a completed form envelope. Values are re-validated and sanitised server-side.
// @Tags intake
// @Accept json
// @Produce json
// @Param formType path string true "Form type, part of the route name"
// @Param request body object true "Submission envelope"
// @Success 201 {object} SubmitResponse "Stored"
// @Failure 400 {object} SubmitErrorResponse "Invalid JSON or field errors"
// @Failure 500 {object} SubmitErrorResponse "Storage failure"
// @Router /submit-{formType} [post]
func (h *IntakeHandler) Submit(formType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSubmitBody)

		var payload map[string]any
		if err := c.ShouldBindJSON(&payload); err != nil || payload == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
			return
		}

		sub, err := h.submissionService.Create(c.Request.Context(), formType, payload)
		if err != nil {
			if fields, ok := service.IsInvalidSubmission(err); ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
				return
			}
			status, _, msg := MapDomainError(err)
			if status >= 500 {
				logger.FromContext(c.Request.Context()).Error("submission failed",
					zap.String("form_type", formType), zap.Error(err))
				msg = "failed to store submission"
			}
			c.JSON(status, gin.H{"error": msg})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "Form submitted successfully",
			"id":      sub.ID.String(),
		})
	}
}

// UpdateClaimStatusRequest is the legacy status update body.
type UpdateClaimStatusRequest struct {
	CollectionName string `json:"collectionName" binding:"required" example:"motor-claim"`
	DocumentID     string `json:"documentId" binding:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	Status         string `json:"status" binding:"required" example:"approved"`
	Comment        string `json:"comment" example:"All documents verified"`
}

// UpdateClaimStatus handles POST /api/update-claim-status
// @Summary Update a claim status
// @Description Move a submission to a new status, record an audit entry and email the submitter.
// @Tags intake
// @Accept json
// @Produce json
// @Param request body UpdateClaimStatusRequest true "Status update"
// @Success 200 {object} SubmitResponse "Updated"
// @Failure 400 {object} SubmitErrorResponse "Invalid status"
// @Failure 404 {object} SubmitErrorResponse "Not found"
// @Failure 409 {object} SubmitErrorResponse "Transition not allowed"
// @Security BearerAuth
// @Router /update-claim-status [post]
func (h *IntakeHandler) UpdateClaimStatus(c *gin.Context) {
	var req UpdateClaimStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "collectionName, documentId and status are required"})
		return
	}
	id, err := uuid.Parse(strings.TrimSpace(req.DocumentID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid documentId"})
		return
	}

	sub, err := h.submissionService.UpdateStatus(c.Request.Context(), service.UpdateStatusInput{
		FormType:   strings.TrimSpace(req.CollectionName),
		ID:         id,
		Status:     domain.SubmissionStatus(strings.ToLower(strings.TrimSpace(req.Status))),
		Comment:    req.Comment,
		ReviewerID: reviewerID(c),
	})
	if err != nil {
		status, _, msg := MapDomainError(err)
		if errors.Is(err, domain.ErrUnknownFormType) {
			msg = "unknown collection"
		}
		if status >= 500 {
			logger.FromContext(c.Request.Context()).Error("status update failed", zap.Error(err))
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Status updated successfully",
		"id":      sub.ID.String(),
		"status":  sub.Status,
	})
}
