package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"portfolio-backend/internal/domains/project/model"
	"portfolio-backend/internal/domains/project/multipart"
	"portfolio-backend/internal/domains/project/service"
	"portfolio-backend/internal/shared/response"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 50
	// form values and small files stay in memory, larger files spill to disk
	multipartMemory = 8 << 20
)

type Handler struct {
	service  service.ProjectService
	maxBytes int64 // whole request body cap
}

func NewHandler(svc service.ProjectService, maxBodyBytes int64) *Handler {
	return &Handler{service: svc, maxBytes: maxBodyBytes}
}

// ListProjects - GET /api/v1/projects?page=&limit=
func (h *Handler) ListProjects(c *gin.Context) {
	page, limit := 1, defaultPageLimit
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = min(l, maxPageLimit)
	}

	projects, total, err := h.service.List(c.Request.Context(), page, limit)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, projects, &response.Meta{Page: page, Limit: limit, Total: total})
}

// ListPinned - GET /api/v1/projects/pinned
func (h *Handler) ListPinned(c *gin.Context) {
	projects, err := h.service.ListPinned(c.Request.Context())
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, http.StatusOK, projects)
}

// GetProject - GET /api/v1/projects/:id
func (h *Handler) GetProject(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// CreateProject - POST /api/v1/projects (multipart/form-data)
func (h *Handler) CreateProject(c *gin.Context) {
	doc, err := h.decode(c)
	if err != nil {
		h.mapError(c, err)
		return
	}
	req, err := toCreateRequest(doc)
	if err != nil {
		h.mapError(c, err)
		return
	}

	p, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

// UpdateProject - PUT /api/v1/projects/:id (multipart/form-data)
func (h *Handler) UpdateProject(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}
	doc, err := h.decode(c)
	if err != nil {
		h.mapError(c, err)
		return
	}
	req, err := toUpdateRequest(doc)
	if err != nil {
		h.mapError(c, err)
		return
	}

	p, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// DeleteProject - DELETE /api/v1/projects/:id
func (h *Handler) DeleteProject(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}

func (h *Handler) decode(c *gin.Context) (*multipart.Document, error) {
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	}
	return multipart.ParseRequest(c.Request, multipartMemory, projectSchema)
}

func (h *Handler) projectID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, response.CodeBadRequest, model.ErrInvalidProjectID.Error())
		return uuid.Nil, false
	}
	return id, true
}

// mapError is the single place domain errors become HTTP statuses.
func (h *Handler) mapError(c *gin.Context, err error) {
	var (
		decodeErr *multipart.DecodeError
		validErr  *model.ValidationError
		pinErr    *model.PinLimitError
	)

	switch {
	case errors.As(err, &decodeErr):
		response.ErrorWithDetails(c, http.StatusBadRequest, model.CodeDecodeError, decodeErr.Error(), decodeErr)
	case errors.As(err, &validErr):
		response.ErrorWithDetails(c, http.StatusBadRequest, model.CodeValidationError, "project is invalid", validErr.Issues)
	case errors.As(err, &pinErr):
		response.ErrorWithDetails(c, http.StatusConflict, model.CodePinLimitExceeded, pinErr.Error(), pinErr)
	case errors.Is(err, model.ErrProjectNotFound):
		response.ErrorResponse(c, http.StatusNotFound, model.CodeProjectNotFound, err.Error())
	default:
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("project request failed")
		response.InternalServerError(c, "internal server error")
	}
}

// RegisterRoutes mounts the read routes on public and the mutations on admin.
func (h *Handler) RegisterRoutes(public, admin *gin.RouterGroup) {
	public.GET("/projects", h.ListProjects)
	public.GET("/projects/pinned", h.ListPinned)
	public.GET("/projects/:id", h.GetProject)

	admin.POST("/projects", h.CreateProject)
	admin.PUT("/projects/:id", h.UpdateProject)
	admin.DELETE("/projects/:id", h.DeleteProject)
}
