package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"formdesk/internal/port"
	"formdesk/internal/service"
)

// maxMultipartBody bounds a multipart request before the per-form ceiling is checked.
const maxMultipartBody = 32 << 20

// UploadHandler handles direct file uploads for form fields.
type UploadHandler struct {
	uploadService service.UploadService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(uploadService service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// UploadResponse describes a stored file.
type UploadResponse struct {
	URL  string `json:"url" example:"https://bucket.s3.amazonaws.com/claim/policeReport/1718000000000_report.pdf"`
	Name string `json:"name" example:"report.pdf"`
	Type string `json:"type" example:"application/pdf"`
	Size int64  `json:"size" example:"204800"`
	Key  string `json:"key" example:"claim/policeReport/1718000000000_report.pdf"`
}

// Upload handles POST /api/v1/uploads
// @Summary Upload a file for a form field
// @Description Accepts PDF, JPEG or PNG up to the form's size ceiling
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param form_type formData string true "Form type"
// @Param field_key formData string true "File field key"
// @Success 201 {object} Response{data=UploadResponse} "Stored"
// @Failure 400 {object} ErrorResponseBody "Invalid file type or field"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 502 {object} ErrorResponseBody "Storage failure"
// @Router /uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxMultipartBody)

	formType := c.PostForm("form_type")
	fieldKey := c.PostForm("field_key")
	if formType == "" || fieldKey == "" {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "form_type and field_key are required")
		return
	}

	in, file, ok := readFormFile(c, "file")
	if !ok {
		return
	}
	defer file.Close()
	in.FormType = formType
	in.FieldKey = fieldKey

	res, err := h.uploadService.Upload(c.Request.Context(), in, nil)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, UploadResponse{
		URL:  res.URL,
		Name: res.OriginalName,
		Type: res.ContentType,
		Size: res.FileSize,
		Key:  res.StorageKey,
	})
}

// readFormFile opens the multipart file under name. The caller closes the file.
func readFormFile(c *gin.Context, name string) (port.FileUpload, multipart.File, bool) {
	header, err := c.FormFile(name)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "a file is required in the '"+name+"' field")
		return port.FileUpload{}, nil, false
	}
	file, err := header.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FILE", "the uploaded file could not be read")
		return port.FileUpload{}, nil, false
	}
	return port.FileUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, file, true
}

// DownloadLink handles GET /api/v1/admin/files/:id/link
// @Summary Get a time-limited download link for an uploaded file
// @Tags uploads
// @Produce json
// @Security BearerAuth
// @Param id path string true "Uploaded file ID"
// @Success 200 {object} Response{data=service.FileLink} "Signed link"
// @Failure 404 {object} ErrorResponseBody "File not found or not uploaded"
// @Router /admin/files/{id}/link [get]
func (h *UploadHandler) DownloadLink(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	link, err := h.uploadService.DownloadLink(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, link)
}
