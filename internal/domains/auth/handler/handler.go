package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"portfolio-backend/internal/domains/auth/model"
	"portfolio-backend/internal/domains/auth/service"
	"portfolio-backend/internal/shared/middleware"
	"portfolio-backend/internal/shared/response"
)

type Handler struct {
	service service.AuthService
}

func NewHandler(svc service.AuthService) *Handler {
	return &Handler{service: svc}
}

// Login - POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req, middleware.GetClientIP(c))
	var locked *model.LoginLockedError
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, resp)
	case errors.As(err, &locked):
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(locked.RetryAfter.Seconds()))))
		response.ErrorResponse(c, http.StatusTooManyRequests, model.CodeLoginLocked, locked.Error())
	case errors.Is(err, model.ErrInvalidCredentials):
		response.ErrorResponse(c, http.StatusUnauthorized, model.CodeInvalidCredentials, "invalid username or password")
	case errors.Is(err, model.ErrLoginDisabled):
		response.ErrorResponse(c, http.StatusServiceUnavailable, response.CodeInternal, err.Error())
	default:
		log.Error().Err(err).Msg("login failed")
		response.InternalServerError(c, "internal server error")
	}
}

func (h *Handler) RegisterRoutes(public *gin.RouterGroup, limit gin.HandlerFunc) {
	public.POST("/auth/login", limit, h.Login)
}
