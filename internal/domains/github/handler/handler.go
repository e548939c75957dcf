package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"portfolio-backend/internal/domains/github/service"
	"portfolio-backend/internal/shared/response"
)

const CodeNotConfigured = "GITHUB_NOT_CONFIGURED"

type Handler struct {
	service service.GitHubService
}

func NewHandler(svc service.GitHubService) *Handler {
	return &Handler{service: svc}
}

// GetProfile - GET /api/v1/github/profile
func (h *Handler) GetProfile(c *gin.Context) {
	h.serve(c, h.service.Profile)
}

// GetRepos - GET /api/v1/github/repos
func (h *Handler) GetRepos(c *gin.Context) {
	h.serve(c, h.service.Repos)
}

func (h *Handler) RegisterRoutes(public *gin.RouterGroup) {
	public.GET("/github/profile", h.GetProfile)
	public.GET("/github/repos", h.GetRepos)
}

func (h *Handler) serve(c *gin.Context, fetch func(context.Context) (json.RawMessage, error)) {
	body, err := fetch(c.Request.Context())
	if err == nil {
		response.Success(c, http.StatusOK, body)
		return
	}

	var upstream *service.UpstreamError
	switch {
	case errors.Is(err, service.ErrNotConfigured):
		response.ErrorResponse(c, http.StatusServiceUnavailable, CodeNotConfigured, err.Error())
	case errors.As(err, &upstream):
		log.Warn().Err(err).Int("upstream_status", upstream.Status).Msg("github upstream failed")
		response.ErrorWithDetails(c, http.StatusBadGateway, response.CodeBadGateway, "github is unavailable",
			gin.H{"upstreamStatus": upstream.Status})
	default:
		log.Error().Err(err).Msg("github request failed")
		response.ErrorResponse(c, http.StatusBadGateway, response.CodeBadGateway, "github is unavailable")
	}
}
