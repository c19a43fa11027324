package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"formdesk/internal/service"
	"formdesk/internal/wizard"
)

// HeaderClientID identifies the browser that owns a draft.
const HeaderClientID = "X-Client-ID"

// WizardHandler drives server-held wizard sessions.
type WizardHandler struct {
	manager *wizard.Manager
}

// NewWizardHandler creates a new WizardHandler.
func NewWizardHandler(manager *wizard.Manager) *WizardHandler {
	return &WizardHandler{manager: manager}
}

// CreateSessionRequest starts a wizard session.
type CreateSessionRequest struct {
	ClientID     string `json:"client_id" example:"2f1c0d7e-3b0a-4a53-9a43-0f4d5bb1b0a2"`
	RestoreDraft bool   `json:"restore_draft" example:"true"`
}

// SetValuesRequest carries field changes.
type SetValuesRequest struct {
	Values map[string]any `json:"values" binding:"required"`
}

// SubmitSessionResponse is returned once a session's form is stored.
type SubmitSessionResponse struct {
	ID      string       `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Session *wizard.View `json:"session"`
}

// respondView sends an error envelope that still carries the session view,
// so the client can render field errors and notices in one round trip.
func respondView(c *gin.Context, status int, code, msg string, fields map[string]string, view *wizard.View) {
	c.JSON(status, APIResponse{
		Success: false,
		Data:    view,
		Error:   &APIError{Code: code, Message: msg, Fields: fields},
	})
}

func (h *WizardHandler) session(c *gin.Context) (*wizard.Session, bool) {
	s, err := h.manager.Get(c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return nil, false
	}
	return s, true
}

// Create handles POST /api/v1/wizard/:formType/sessions
// @Summary Start a wizard session
// @Tags wizard
// @Accept json
// @Produce json
// @Param formType path string true "Form type"
// @Param X-Client-ID header string false "Draft owner"
// @Param request body CreateSessionRequest false "Session options"
// @Success 201 {object} Response{data=wizard.View} "Session"
// @Failure 404 {object} ErrorResponseBody "Unknown form type"
// @Router /wizard/{formType}/sessions [post]
func (h *WizardHandler) Create(c *gin.Context) {
	var req CreateSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
	}
	clientID := c.GetHeader(HeaderClientID)
	if clientID == "" {
		clientID = req.ClientID
	}
	restore := req.RestoreDraft
	if q, err := strconv.ParseBool(c.Query("restore_draft")); err == nil {
		restore = q
	}

	s, err := h.manager.Create(c.Request.Context(), c.Param("formType"), clientID, restore)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, s.View())
}

// Get handles GET /api/v1/wizard/sessions/:id
// @Summary Get a wizard session
// @Tags wizard
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} Response{data=wizard.View} "Session"
// @Failure 404 {object} ErrorResponseBody "Session not found or expired"
// @Router /wizard/sessions/{id} [get]
func (h *WizardHandler) Get(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	RespondOK(c, s.View())
}

// SetValues handles PATCH /api/v1/wizard/sessions/:id/values
// @Summary Update field values
// @Tags wizard
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body SetValuesRequest true "Field changes"
// @Success 200 {object} Response{data=wizard.View} "Session"
// @Failure 400 {object} ErrorResponseBody "Unknown field"
// @Failure 404 {object} ErrorResponseBody "Session not found or expired"
// @Router /wizard/sessions/{id}/values [patch]
func (h *WizardHandler) SetValues(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req SetValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := s.SetValues(c.Request.Context(), req.Values); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, s.View())
}

// Next handles POST /api/v1/wizard/sessions/:id/next
// @Summary Advance to the next step
// @Description Validates only the active step
// @Tags wizard
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} Response{data=wizard.View} "Session"
// @Failure 422 {object} Response{data=wizard.View} "Step has invalid fields"
// @Router /wizard/sessions/{id}/next [post]
func (h *WizardHandler) Next(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	if err := s.Next(c.Request.Context()); err != nil {
		var blocked *wizard.StepBlockedError
		if errors.As(err, &blocked) {
			respondView(c, http.StatusUnprocessableEntity, "STEP_INVALID", err.Error(), blocked.Fields, s.View())
			return
		}
		HandleError(c, err)
		return
	}

	RespondOK(c, s.View())
}

// Previous handles POST /api/v1/wizard/sessions/:id/previous
// @Summary Go back one step
// @Tags wizard
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} Response{data=wizard.View} "Session"
// @Router /wizard/sessions/{id}/previous [post]
func (h *WizardHandler) Previous(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.Previous()
	RespondOK(c, s.View())
}

// Reset handles POST /api/v1/wizard/sessions/:id/reset
// @Summary Clear the form and return to the first step
// @Tags wizard
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} Response{data=wizard.View} "Session"
// @Router /wizard/sessions/{id}/reset [post]
func (h *WizardHandler) Reset(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.Reset()
	RespondOK(c, s.View())
}

// AttachFile handles POST /api/v1/wizard/sessions/:id/files
// @Summary Upload a file into a session field
// @Tags wizard
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Session ID"
// @Param field_key formData string true "File field key"
// @Param file formData file true "File"
// @Success 200 {object} Response{data=wizard.View} "Session"
// @Failure 400 {object} ErrorResponseBody "Not a file field"
// @Failure 413 {object} Response{data=wizard.View} "File too large"
// @Router /wizard/sessions/{id}/files [post]
func (h *WizardHandler) AttachFile(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxMultipartBody)

	key := c.PostForm("field_key")
	if key == "" {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "field_key is required")
		return
	}
	in, file, ok := readFormFile(c, "file")
	if !ok {
		return
	}
	defer file.Close()

	if _, err := s.AttachFile(c.Request.Context(), key, in); err != nil {
		if errors.Is(err, wizard.ErrUnknownField) || errors.Is(err, wizard.ErrNotFileField) {
			HandleError(c, err)
			return
		}
		status, code, msg := MapDomainError(err)
		respondView(c, status, code, msg, nil, s.View())
		return
	}

	RespondOK(c, s.View())
}

// Submit handles POST /api/v1/wizard/sessions/:id/submit
// @Summary Submit the session's form
// @Description Validates every step, stores the submission once and resets the session
// @Tags wizard
// @Produce json
// @Param id path string true "Session ID"
// @Success 201 {object} Response{data=SubmitSessionResponse} "Stored"
// @Failure 409 {object} ErrorResponseBody "Already submitting or not on the last step"
// @Failure 422 {object} Response{data=wizard.View} "Form has invalid fields"
// @Router /wizard/sessions/{id}/submit [post]
func (h *WizardHandler) Submit(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	res, err := s.Submit(c.Request.Context())
	if err != nil {
		var invalid *wizard.ValidationError
		switch {
		case errors.As(err, &invalid):
			respondView(c, http.StatusUnprocessableEntity, "FORM_INVALID", err.Error(), invalid.Fields, s.View())
		case errors.Is(err, wizard.ErrSubmissionInFlight), errors.Is(err, wizard.ErrNotOnLastStep):
			HandleError(c, err)
		default:
			if fields, ok := service.IsInvalidSubmission(err); ok {
				respondView(c, http.StatusUnprocessableEntity, "FORM_INVALID", "submission has invalid fields", fields, s.View())
				return
			}
			status, code, msg := MapDomainError(err)
			respondView(c, status, code, msg, nil, s.View())
		}
		return
	}

	RespondCreated(c, SubmitSessionResponse{ID: res.ID, Session: s.View()})
}

// Delete handles DELETE /api/v1/wizard/sessions/:id
// @Summary Discard a wizard session
// @Tags wizard
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} Response "Session discarded"
// @Failure 404 {object} ErrorResponseBody "Session not found or expired"
// @Router /wizard/sessions/{id} [delete]
func (h *WizardHandler) Delete(c *gin.Context) {
	if err := h.manager.Delete(c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "session discarded"})
}
