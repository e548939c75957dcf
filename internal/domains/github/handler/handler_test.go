package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"portfolio-backend/internal/domains/github/service"
)

type stubService struct {
	body json.RawMessage
	err  error
}

func (s stubService) Profile(context.Context) (json.RawMessage, error) { return s.body, s.err }
func (s stubService) Repos(context.Context) (json.RawMessage, error)   { return s.body, s.err }
func (s stubService) Refresh(context.Context) error                    { return s.err }

func get(svc service.GitHubService, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestGitHubHandler(t *testing.T) {
	rec := get(stubService{body: json.RawMessage(`[{"name":"a"}]`)}, "/api/v1/github/repos")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":[{"name":"a"}]}`, rec.Body.String())

	rec = get(stubService{err: &service.UpstreamError{Status: 500, Path: "/users/x"}}, "/api/v1/github/profile")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"upstreamStatus":500`)

	rec = get(stubService{err: service.ErrNotConfigured}, "/api/v1/github/profile")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
