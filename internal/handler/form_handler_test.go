package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formdesk/internal/handler"
)

func TestFormHandler_List(t *testing.T) {
	h := handler.NewFormHandler(testCatalog(t))

	c, w := jsonContext(http.MethodGet, "/api/v1/forms", nil)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []handler.FormSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []handler.FormSummary{{Type: "individual-kyc", Category: "kyc", Title: "Individual KYC", Steps: 2}}, resp.Data)
}

func TestFormHandler_Get(t *testing.T) {
	h := handler.NewFormHandler(testCatalog(t))

	c, w := jsonContext(http.MethodGet, "/api/v1/forms/individual-kyc", nil)
	c.Params = gin.Params{{Key: "formType", Value: "individual-kyc"}}
	h.Get(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data struct {
			Type   string `json:"type"`
			Fields []struct {
				Key  string `json:"key"`
				Type string `json:"type"`
			} `json:"fields"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "individual-kyc", resp.Data.Type)
	require.Len(t, resp.Data.Fields, 3)
	assert.Equal(t, "idCard", resp.Data.Fields[2].Key)
	assert.Equal(t, "file", resp.Data.Fields[2].Type)
}

func TestFormHandler_Get_Unknown(t *testing.T) {
	h := handler.NewFormHandler(testCatalog(t))

	c, w := jsonContext(http.MethodGet, "/api/v1/forms/pet-claim", nil)
	c.Params = gin.Params{{Key: "formType", Value: "pet-claim"}}
	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "UNKNOWN_FORM_TYPE", decodeResponse(t, w).Error.Code)
}
