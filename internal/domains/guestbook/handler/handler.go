package handler

import (
	"errors"
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"portfolio-backend/internal/domains/guestbook/model"
	"portfolio-backend/internal/domains/guestbook/service"
	"portfolio-backend/internal/shared/response"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type Handler struct {
	service service.GuestbookService
}

func NewHandler(svc service.GuestbookService) *Handler {
	return &Handler{service: svc}
}

// ListEntries - GET /api/v1/guestbook?page=&limit=
func (h *Handler) ListEntries(c *gin.Context) {
	page, limit := 1, defaultPageLimit
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = min(l, maxPageLimit)
	}

	entries, total, err := h.service.List(c.Request.Context(), page, limit)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, entries, &response.Meta{Page: page, Limit: limit, Total: total})
}

// CreateEntry - POST /api/v1/guestbook
func (h *Handler) CreateEntry(c *gin.Context) {
	var req model.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	entry, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, entry)
}

// DeleteEntry - DELETE /api/v1/guestbook/:id (admin)
func (h *Handler) DeleteEntry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, model.ErrInvalidEntryID.Error())
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}

func (h *Handler) RegisterRoutes(public, admin *gin.RouterGroup, limit gin.HandlerFunc) {
	public.GET("/guestbook", h.ListEntries)
	public.POST("/guestbook", limit, h.CreateEntry)
	admin.DELETE("/guestbook/:id", h.DeleteEntry)
}

func (h *Handler) mapError(c *gin.Context, err error) {
	var errs validation.Errors
	switch {
	case errors.As(err, &errs):
		response.ErrorWithDetails(c, http.StatusBadRequest, model.CodeValidationError, "guestbook entry is invalid", errs)
	case errors.Is(err, model.ErrEntryNotFound):
		response.ErrorResponse(c, http.StatusNotFound, model.CodeEntryNotFound, err.Error())
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("guestbook request failed")
		response.InternalServerError(c, "internal server error")
	}
}
