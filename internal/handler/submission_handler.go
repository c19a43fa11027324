package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"formdesk/internal/csvexport"
	"formdesk/internal/domain"
	"formdesk/internal/service"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// exportAll selects every form type in the workbook export.
const exportAll = "all"

// SubmissionHandler handles the back-office submission endpoints.
type SubmissionHandler struct {
	submissionService service.SubmissionService
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(submissionService service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// UpdateSubmissionRequest carries field changes applied by a reviewer.
type UpdateSubmissionRequest struct {
	Data map[string]any `json:"data" binding:"required"`
}

// UpdateStatusRequest carries a reviewer decision.
type UpdateStatusRequest struct {
	Status  domain.SubmissionStatus `json:"status" binding:"required" example:"under_review"`
	Comment string                  `json:"comment" example:"Waiting for police report"`
}

// List handles GET /api/v1/admin/submissions
// @Summary List submissions
// @Description Newest first by client timestamp, then server time
// @Tags submissions
// @Produce json
// @Param form_type query string false "Filter by form type"
// @Param status query string false "Filter by status"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Submission,meta=PagMeta} "Submissions"
// @Failure 400 {object} ErrorResponseBody "Invalid status filter"
// @Security BearerAuth
// @Router /admin/submissions [get]
func (h *SubmissionHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	filter := domain.SubmissionFilter{
		FormType: c.Query("form_type"),
		Status:   domain.SubmissionStatus(c.Query("status")),
		Offset:   offset,
		Limit:    limit,
	}
	if filter.Status != "" && !domain.ValidSubmissionStatuses[filter.Status] {
		HandleError(c, domain.ErrInvalidStatus)
		return
	}

	subs, total, err := h.submissionService.List(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, subs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/admin/submissions/:formType/:id
// @Summary Get a submission
// @Tags submissions
// @Produce json
// @Param formType path string true "Form type"
// @Param id path string true "Submission ID"
// @Success 200 {object} Response{data=domain.Submission} "Submission"
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Security BearerAuth
// @Router /admin/submissions/{formType}/{id} [get]
func (h *SubmissionHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	sub, err := h.submissionService.GetByID(c.Request.Context(), c.Param("formType"), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, sub)
}

// Update handles PUT /api/v1/admin/submissions/:formType/:id
// @Summary Edit submission data
// @Description Merge field changes into a submission and re-validate it
// @Tags submissions
// @Accept json
// @Produce json
// @Param formType path string true "Form type"
// @Param id path string true "Submission ID"
// @Param request body UpdateSubmissionRequest true "Field changes"
// @Success 200 {object} Response{data=domain.Submission} "Updated submission"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Security BearerAuth
// @Router /admin/submissions/{formType}/{id} [put]
func (h *SubmissionHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	sub, err := h.submissionService.UpdateData(c.Request.Context(), service.UpdateDataInput{
		FormType:   c.Param("formType"),
		ID:         id,
		Changes:    req.Data,
		ReviewerID: reviewerID(c),
	})
	if err != nil {
		if fields, ok := service.IsInvalidSubmission(err); ok {
			RespondFieldErrors(c, "VALIDATION_ERROR", "submission has invalid fields", fields)
			return
		}
		HandleError(c, err)
		return
	}

	RespondOK(c, sub)
}

// UpdateStatus handles POST /api/v1/admin/submissions/:formType/:id/status
// @Summary Change submission status
// @Tags submissions
// @Accept json
// @Produce json
// @Param formType path string true "Form type"
// @Param id path string true "Submission ID"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} Response{data=domain.Submission} "Updated submission"
// @Failure 400 {object} ErrorResponseBody "Invalid status"
// @Failure 409 {object} ErrorResponseBody "Transition not allowed"
// @Security BearerAuth
// @Router /admin/submissions/{formType}/{id}/status [post]
func (h *SubmissionHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	sub, err := h.submissionService.UpdateStatus(c.Request.Context(), service.UpdateStatusInput{
		FormType:   c.Param("formType"),
		ID:         id,
		Status:     req.Status,
		Comment:    req.Comment,
		ReviewerID: reviewerID(c),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, sub)
}

// Delete handles DELETE /api/v1/admin/submissions/:formType/:id
// @Summary Delete a submission
// @Tags submissions
// @Produce json
// @Param formType path string true "Form type"
// @Param id path string true "Submission ID"
// @Success 200 {object} Response "Submission deleted"
// @Failure 403 {object} ErrorResponseBody "Forbidden - admin only"
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Security BearerAuth
// @Router /admin/submissions/{formType}/{id} [delete]
func (h *SubmissionHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.submissionService.Delete(c.Request.Context(), c.Param("formType"), id, reviewerID(c)); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "submission deleted"})
}

// ListAudit handles GET /api/v1/admin/submissions/:formType/:id/audit
// @Summary Submission audit trail
// @Tags submissions
// @Produce json
// @Param formType path string true "Form type"
// @Param id path string true "Submission ID"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.SubmissionAuditEntry,meta=PagMeta} "Audit entries"
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Security BearerAuth
// @Router /admin/submissions/{formType}/{id}/audit [get]
func (h *SubmissionHandler) ListAudit(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	entries, total, err := h.submissionService.ListAudit(c.Request.Context(), c.Param("formType"), id, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, entries, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// ExportCSV handles GET /api/v1/admin/submissions/:formType/export/csv
// @Summary Export submissions as CSV
// @Tags submissions
// @Produce text/csv
// @Param formType path string true "Form type"
// @Success 200 {file} file "CSV file"
// @Failure 404 {object} ErrorResponseBody "Unknown form type"
// @Security BearerAuth
// @Router /admin/submissions/{formType}/export/csv [get]
func (h *SubmissionHandler) ExportCSV(c *gin.Context) {
	formType := c.Param("formType")

	var buf bytes.Buffer
	if err := h.submissionService.ExportCSV(c.Request.Context(), formType, &buf); err != nil {
		HandleError(c, err)
		return
	}

	attach(c, csvexport.BuildFilename(formType, "csv"), contentTypeCSV, buf.Bytes())
}

// ExportXLSX handles GET /api/v1/admin/submissions/:formType/export/xlsx
// @Summary Export submissions as an Excel workbook
// @Description Use "all" as the form type for one sheet per form
// @Tags submissions
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param formType path string true "Form type or all"
// @Success 200 {file} file "XLSX file"
// @Failure 404 {object} ErrorResponseBody "Unknown form type"
// @Security BearerAuth
// @Router /admin/submissions/{formType}/export/xlsx [get]
func (h *SubmissionHandler) ExportXLSX(c *gin.Context) {
	formType := c.Param("formType")
	var types []string
	if formType != exportAll {
		types = []string{formType}
	}

	var buf bytes.Buffer
	if err := h.submissionService.ExportXLSX(c.Request.Context(), types, &buf); err != nil {
		HandleError(c, err)
		return
	}

	attach(c, csvexport.BuildFilename(formType, "xlsx"), contentTypeXLSX, buf.Bytes())
}

func attach(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, body)
}
