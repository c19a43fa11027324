package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"formdesk/internal/middleware"
	"formdesk/internal/service"
)

// ReviewerHandler handles reviewer management endpoints.
type ReviewerHandler struct {
	reviewerService service.ReviewerService
}

// NewReviewerHandler creates a new ReviewerHandler.
func NewReviewerHandler(reviewerService service.ReviewerService) *ReviewerHandler {
	return &ReviewerHandler{reviewerService: reviewerService}
}

// Create handles POST /api/v1/admin/reviewers
// @Summary Create a reviewer
// @Description Create a back-office reviewer (admin only)
// @Tags reviewers
// @Accept json
// @Produce json
// @Param request body CreateReviewerRequest true "Reviewer details"
// @Success 201 {object} Response{data=domain.Reviewer} "Reviewer created"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 403 {object} ErrorResponseBody "Forbidden - admin only"
// @Failure 409 {object} ErrorResponseBody "Email already exists"
// @Security BearerAuth
// @Router /admin/reviewers [post]
func (h *ReviewerHandler) Create(c *gin.Context) {
	var input service.CreateReviewerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	reviewer, err := h.reviewerService.Create(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, reviewer)
}

// List handles GET /api/v1/admin/reviewers
// @Summary List reviewers
// @Tags reviewers
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Reviewer,meta=PagMeta} "List of reviewers"
// @Failure 403 {object} ErrorResponseBody "Forbidden - admin only"
// @Security BearerAuth
// @Router /admin/reviewers [get]
func (h *ReviewerHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	reviewers, total, err := h.reviewerService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, reviewers, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/admin/reviewers/:id
// @Summary Get a reviewer
// @Tags reviewers
// @Produce json
// @Param id path string true "Reviewer ID"
// @Success 200 {object} Response{data=domain.Reviewer} "Reviewer"
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Security BearerAuth
// @Router /admin/reviewers/{id} [get]
func (h *ReviewerHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	reviewer, err := h.reviewerService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, reviewer)
}

// Update handles PUT /api/v1/admin/reviewers/:id
// @Summary Update a reviewer
// @Tags reviewers
// @Accept json
// @Produce json
// @Param id path string true "Reviewer ID"
// @Param request body UpdateReviewerRequest true "Fields to update"
// @Success 200 {object} Response{data=domain.Reviewer} "Updated reviewer"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Security BearerAuth
// @Router /admin/reviewers/{id} [put]
func (h *ReviewerHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var input service.UpdateReviewerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	self, _ := middleware.GetReviewerID(c)
	if self == id && input.IsActive != nil && !*input.IsActive {
		RespondError(c, http.StatusBadRequest, "SELF_DEACTIVATION", "you cannot deactivate your own account")
		return
	}

	reviewer, err := h.reviewerService.Update(c.Request.Context(), id, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, reviewer)
}

// Delete handles DELETE /api/v1/admin/reviewers/:id
// @Summary Delete a reviewer
// @Tags reviewers
// @Produce json
// @Param id path string true "Reviewer ID"
// @Success 200 {object} Response "Reviewer deleted"
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Security BearerAuth
// @Router /admin/reviewers/{id} [delete]
func (h *ReviewerHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	self, _ := middleware.GetReviewerID(c)
	if self == id {
		RespondError(c, http.StatusBadRequest, "SELF_DELETION", "you cannot delete your own account")
		return
	}

	if err := h.reviewerService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "reviewer deleted"})
}
