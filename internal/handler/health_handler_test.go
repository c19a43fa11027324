package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"formdesk/internal/domain"
	"formdesk/internal/handler"
	"formdesk/mocks"
)

func TestHealthHandler_Liveness(t *testing.T) {
	h := handler.NewHealthHandler(nil)

	c, w := jsonContext(http.MethodGet, "/healthz", nil)
	h.Liveness(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHealthHandler_Readiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: refused") }

	h := handler.NewHealthHandler(map[string]handler.ReadinessCheck{"database": ok})
	c, w := jsonContext(http.MethodGet, "/readyz", nil)
	h.Readiness(c)
	assert.Equal(t, http.StatusOK, w.Code)

	h = handler.NewHealthHandler(map[string]handler.ReadinessCheck{"database": ok, "storage": down})
	c, w = jsonContext(http.MethodGet, "/readyz", nil)
	h.Readiness(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable","errors":{"storage":"not reachable"}}`, w.Body.String())
}

func TestStatsHandler_GetStats(t *testing.T) {
	svc := new(mocks.MockStatsService)
	h := handler.NewStatsHandler(svc)
	svc.On("GetStats", mock.Anything).Return(domain.NewStats([]domain.StatusCount{
		{FormType: "motor-claim", Status: domain.StatusProcessing, Count: 3},
		{FormType: "fire-claim", Status: domain.StatusApproved, Count: 2},
	}), nil)

	c, w := jsonContext(http.MethodGet, "/api/v1/admin/stats", nil)
	h.GetStats(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":5`)
	svc.AssertExpectations(t)
}
