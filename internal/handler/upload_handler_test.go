package handler_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"formdesk/internal/domain"
	"formdesk/internal/handler"
	"formdesk/internal/port"
	"formdesk/internal/service"
	"formdesk/mocks"
)

func uploadContext(t *testing.T, fields map[string]string, fileName string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/uploads", &buf)
	c.Request.Header.Set("Content-Type", mw.FormDataContentType())
	return c, w
}

func TestUploadHandler_Upload(t *testing.T) {
	svc := new(mocks.MockUploadService)
	h := handler.NewUploadHandler(svc)
	svc.On("Upload", mock.Anything, mock.MatchedBy(func(in port.FileUpload) bool {
		return in.FormType == "motor-claim" && in.FieldKey == "policeReport" && in.FileName == "report.pdf" && in.Size == 8
	}), mock.Anything).Return(&domain.UploadedFile{
		OriginalName: "report.pdf",
		ContentType:  "application/pdf",
		FileSize:     8,
		StorageKey:   "claim/policeReport/1_report.pdf",
		URL:          "https://files.example.com/claim/policeReport/1_report.pdf",
	}, nil)

	c, w := uploadContext(t, map[string]string{"form_type": "motor-claim", "field_key": "policeReport"}, "report.pdf", []byte("%PDF-1.4"))
	h.Upload(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"key":"claim/policeReport/1_report.pdf"`)
	svc.AssertExpectations(t)
}

func TestUploadHandler_Upload_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"bad type", domain.ErrInvalidFileType, http.StatusBadRequest},
		{"too large", domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{"storage", domain.ErrUploadFailed, http.StatusBadGateway},
		{"not configured", domain.ErrMissingConfig, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.MockUploadService)
			h := handler.NewUploadHandler(svc)
			svc.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			c, w := uploadContext(t, map[string]string{"form_type": "motor-claim", "field_key": "policeReport"}, "x.pdf", []byte("x"))
			h.Upload(c)

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestUploadHandler_Upload_MissingParts(t *testing.T) {
	svc := new(mocks.MockUploadService)
	h := handler.NewUploadHandler(svc)

	c, w := uploadContext(t, map[string]string{"form_type": "motor-claim"}, "x.pdf", []byte("x"))
	h.Upload(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = uploadContext(t, map[string]string{"form_type": "motor-claim", "field_key": "policeReport"}, "", nil)
	h.Upload(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_FILE", decodeResponse(t, w).Error.Code)

	svc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadHandler_DownloadLink(t *testing.T) {
	svc := new(mocks.MockUploadService)
	h := handler.NewUploadHandler(svc)
	id := uuid.New()
	svc.On("DownloadLink", mock.Anything, id).Return(&service.FileLink{
		URL:         "https://files.example.com/claim/policeReport/1_report.pdf?X-Amz-Signature=abc",
		Name:        "report.pdf",
		ContentType: "application/pdf",
	}, nil)

	c, w := jsonContext(http.MethodGet, "/api/v1/admin/files/"+id.String()+"/link", nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.DownloadLink(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "X-Amz-Signature=abc")
}

func TestUploadHandler_DownloadLink_Errors(t *testing.T) {
	svc := new(mocks.MockUploadService)
	h := handler.NewUploadHandler(svc)

	c, w := jsonContext(http.MethodGet, "/api/v1/admin/files/nope/link", nil)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	h.DownloadLink(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	id := uuid.New()
	svc.On("DownloadLink", mock.Anything, id).Return(nil, domain.ErrNotFound)
	c, w = jsonContext(http.MethodGet, "/api/v1/admin/files/"+id.String()+"/link", nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.DownloadLink(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
