package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"formdesk/internal/domain"
	"formdesk/internal/form"
	"formdesk/internal/form/catalog"
	"formdesk/internal/handler"
	"formdesk/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setAuthContext(c *gin.Context, reviewerID uuid.UUID, role domain.ReviewerRole) {
	c.Set(middleware.ContextKeyReviewerID, reviewerID)
	c.Set(middleware.ContextKeyRole, string(role))
}

func jsonContext(method, target string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	var raw []byte
	switch b := body.(type) {
	case nil:
	case string:
		raw = []byte(b)
	default:
		raw, _ = json.Marshal(b)
	}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(method, target, bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")
	if len(raw) > 0 {
		c.Request.ContentLength = int64(len(raw))
	}
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	schema := form.NewSchema(
		form.FieldRule{Key: "fullName", Label: "Full Name", Type: form.FieldText, Required: true},
		form.FieldRule{Key: "email", Label: "Email", Type: form.FieldEmail, Required: true},
		form.FieldRule{Key: "idCard", Label: "ID Card", Type: form.FieldFile, Required: true},
	)
	cat, err := catalog.New(&form.Definition{
		Type:     "individual-kyc",
		Category: "kyc",
		Title:    "Individual KYC",
		Schema:   schema,
		Steps: []form.Step{
			{ID: "personal", Title: "Personal", FieldKeys: []string{"fullName", "email"}},
			{ID: "documents", Title: "Documents", FieldKeys: []string{"idCard"}},
		},
	})
	require.NoError(t, err)
	return cat
}
