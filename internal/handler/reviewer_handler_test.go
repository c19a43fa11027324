package handler_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"formdesk/internal/domain"
	"formdesk/internal/handler"
	"formdesk/internal/service"
	"formdesk/mocks"
)

func TestReviewerHandler_Create(t *testing.T) {
	svc := new(mocks.MockReviewerService)
	h := handler.NewReviewerHandler(svc)
	input := service.CreateReviewerInput{
		Email:    "claims@insurer.example",
		Password: "password123",
		FullName: "Chidi Okeke",
		Role:     domain.RoleReviewer,
	}
	svc.On("Create", mock.Anything, input).Return(&domain.Reviewer{ID: uuid.New(), Email: input.Email}, nil)

	c, w := jsonContext(http.MethodPost, "/api/v1/admin/reviewers", input)
	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	svc.AssertExpectations(t)
}

func TestReviewerHandler_Create_Duplicate(t *testing.T) {
	svc := new(mocks.MockReviewerService)
	h := handler.NewReviewerHandler(svc)
	svc.On("Create", mock.Anything, mock.AnythingOfType("service.CreateReviewerInput")).Return(nil, domain.ErrDuplicateEmail)

	c, w := jsonContext(http.MethodPost, "/api/v1/admin/reviewers", map[string]string{
		"email": "claims@insurer.example", "password": "password123", "full_name": "C", "role": "viewer",
	})
	h.Create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReviewerHandler_List(t *testing.T) {
	svc := new(mocks.MockReviewerService)
	h := handler.NewReviewerHandler(svc)
	svc.On("List", mock.Anything, 20, 10).Return([]domain.Reviewer{{ID: uuid.New()}}, 21, nil)

	c, w := jsonContext(http.MethodGet, "/api/v1/admin/reviewers?offset=20&limit=10", nil)
	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 21, decodeResponse(t, w).Meta.Total)
}

func TestReviewerHandler_Update_SelfDeactivation(t *testing.T) {
	svc := new(mocks.MockReviewerService)
	h := handler.NewReviewerHandler(svc)
	self := uuid.New()

	c, w := jsonContext(http.MethodPut, "/api/v1/admin/reviewers/"+self.String(), map[string]any{"is_active": false})
	c.Params = gin.Params{{Key: "id", Value: self.String()}}
	setAuthContext(c, self, domain.RoleAdmin)
	h.Update(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "SELF_DEACTIVATION", decodeResponse(t, w).Error.Code)
	svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewerHandler_Delete(t *testing.T) {
	svc := new(mocks.MockReviewerService)
	h := handler.NewReviewerHandler(svc)
	self := uuid.New()
	other := uuid.New()
	svc.On("Delete", mock.Anything, other).Return(nil)

	c, w := jsonContext(http.MethodDelete, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: self.String()}}
	setAuthContext(c, self, domain.RoleAdmin)
	h.Delete(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = jsonContext(http.MethodDelete, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: other.String()}}
	setAuthContext(c, self, domain.RoleAdmin)
	h.Delete(c)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
