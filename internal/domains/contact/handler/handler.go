package handler

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"portfolio-backend/internal/domains/contact/model"
	"portfolio-backend/internal/domains/contact/service"
	"portfolio-backend/internal/shared/middleware"
	"portfolio-backend/internal/shared/response"
)

type Handler struct {
	service service.ContactService
}

func NewHandler(svc service.ContactService) *Handler {
	return &Handler{service: svc}
}

// SendMessage - POST /api/v1/contact
// Responds 202: delivery happens in the worker.
func (h *Handler) SendMessage(c *gin.Context) {
	var req model.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	err := h.service.Submit(c.Request.Context(), req, middleware.GetClientIP(c))
	var errs validation.Errors
	switch {
	case err == nil:
		response.Success(c, http.StatusAccepted, gin.H{"queued": true})
	case errors.As(err, &errs):
		response.ErrorWithDetails(c, http.StatusBadRequest, model.CodeValidationError, "contact message is invalid", errs)
	default:
		log.Error().Err(err).Msg("contact request failed")
		response.InternalServerError(c, "could not send message, please try again later")
	}
}

func (h *Handler) RegisterRoutes(public *gin.RouterGroup, limit gin.HandlerFunc) {
	public.POST("/contact", limit, h.SendMessage)
}
