package handler

import (
	"github.com/gin-gonic/gin"

	"formdesk/internal/form"
	"formdesk/internal/form/catalog"
)

// FormHandler exposes the form catalog to clients that render the wizard themselves.
type FormHandler struct {
	catalog *catalog.Catalog
}

// NewFormHandler creates a new FormHandler.
func NewFormHandler(cat *catalog.Catalog) *FormHandler {
	return &FormHandler{catalog: cat}
}

// FormSummary is one entry of the catalog listing.
type FormSummary struct {
	Type     string `json:"type" example:"motor-claim"`
	Category string `json:"category" example:"claim"`
	Title    string `json:"title" example:"Motor Claim"`
	Steps    int    `json:"steps" example:"4"`
}

// FormDetail is a definition together with its field rules.
type FormDetail struct {
	*form.Definition
	Fields []form.FieldRule `json:"fields"`
}

// List handles GET /api/v1/forms
// @Summary List forms
// @Tags forms
// @Produce json
// @Success 200 {object} Response{data=[]FormSummary} "Catalog"
// @Router /forms [get]
func (h *FormHandler) List(c *gin.Context) {
	defs := h.catalog.All()
	out := make([]FormSummary, 0, len(defs))
	for _, def := range defs {
		out = append(out, FormSummary{
			Type:     def.Type,
			Category: def.Category,
			Title:    def.Title,
			Steps:    len(def.Steps),
		})
	}
	RespondOK(c, out)
}

// Get handles GET /api/v1/forms/:formType
// @Summary Get a form definition
// @Tags forms
// @Produce json
// @Param formType path string true "Form type"
// @Success 200 {object} Response{data=FormDetail} "Definition"
// @Failure 404 {object} ErrorResponseBody "Unknown form type"
// @Router /forms/{formType} [get]
func (h *FormHandler) Get(c *gin.Context) {
	def, err := h.catalog.Get(c.Param("formType"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, FormDetail{Definition: def, Fields: def.Schema.Rules()})
}
