package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	bookmodel "booklib-backend/internal/domains/book/model"
	"booklib-backend/internal/domains/saved/model"
	"booklib-backend/internal/domains/saved/service"
	"booklib-backend/internal/shared/middleware"
	"booklib-backend/internal/shared/response"
	"booklib-backend/internal/stats"
)

type SavedHandler struct {
	savedService service.SavedService
}

func NewSavedHandler(savedService service.SavedService) *SavedHandler {
	return &SavedHandler{savedService: savedService}
}

// Save adds a book to the caller's saved list
// POST /api/v1/books/:id/save
func (h *SavedHandler) Save(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book ID")
		return
	}

	var req model.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, err.Error())
		return
	}

	saved, err := h.savedService.Save(c.Request.Context(), userID, bookID, &req)
	if err != nil {
		statusCode, errCode := mapSaveError(err)
		response.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}

	response.Success(c, http.StatusCreated, saved)
}

// UpdateSaveStatus moves a saved book to another shelf
// PUT /api/v1/books/:id/save
func (h *SavedHandler) UpdateSaveStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book ID")
		return
	}

	var req model.UpdateSaveStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	saved, err := h.savedService.UpdateSaveStatus(c.Request.Context(), userID, bookID, &req)
	if err != nil {
		statusCode, errCode := mapSaveError(err)
		response.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}

	response.Success(c, http.StatusOK, saved)
}

// Unsave removes a book from the caller's saved list
// DELETE /api/v1/books/:id/save
func (h *SavedHandler) Unsave(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book ID")
		return
	}

	if err := h.savedService.Unsave(c.Request.Context(), userID, bookID); err != nil {
		statusCode, errCode := mapSaveError(err)
		response.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}

	c.Status(http.StatusNoContent)
}

// ListSaved lists the caller's saved books
// GET /api/v1/me/saved
func (h *SavedHandler) ListSaved(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	items, total, err := h.savedService.ListSaved(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.InternalServerError(c, "failed to list saved books")
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// mapSaveError maps domain errors to HTTP status and error code.
func mapSaveError(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidStatus):
		return http.StatusBadRequest, model.ErrCodeInvalidStatus
	case errors.Is(err, model.ErrAlreadySaved):
		return http.StatusConflict, model.ErrCodeAlreadySaved
	case errors.Is(err, model.ErrSaveNotFound):
		return http.StatusNotFound, model.ErrCodeSaveNotFound
	case errors.Is(err, bookmodel.ErrBookNotFound), errors.Is(err, stats.ErrParentNotFound):
		return http.StatusNotFound, bookmodel.ErrCodeBookNotFound
	case errors.Is(err, stats.ErrConflict):
		return http.StatusServiceUnavailable, "STATS_CONFLICT"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
