package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	bookmodel "booklib-backend/internal/domains/book/model"
	"booklib-backend/internal/domains/rating/model"
	"booklib-backend/internal/domains/rating/service"
	"booklib-backend/internal/shared/middleware"
	"booklib-backend/internal/shared/response"
	"booklib-backend/internal/stats"
)

type RatingHandler struct {
	ratingService service.ServiceInterface
}

func NewRatingHandler(ratingService service.ServiceInterface) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

// Rate creates or updates the caller's rating for a book
// POST /api/v1/books/:id/ratings
func (h *RatingHandler) Rate(c *gin.Context) {
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

	var req model.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.ratingService.Rate(c.Request.Context(), userID, bookID, req)
	if err != nil {
		statusCode, errCode := mapRatingError(err)
		response.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	response.Success(c, status, result.Rating)
}

// Unrate soft-deletes the caller's rating
// DELETE /api/v1/books/:id/ratings
func (h *RatingHandler) Unrate(c *gin.Context) {
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

	if err := h.ratingService.Unrate(c.Request.Context(), userID, bookID); err != nil {
		statusCode, errCode := mapRatingError(err)
		response.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}

	c.Status(http.StatusNoContent)
}

// ListBookRatings lists active ratings for a book
// GET /api/v1/books/:id/ratings
func (h *RatingHandler) ListBookRatings(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	ratings, total, err := h.ratingService.ListBookRatings(c.Request.Context(), bookID, page, limit)
	if err != nil {
		response.InternalServerError(c, "failed to list ratings")
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, ratings, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// mapRatingError maps domain errors to HTTP status and error code.
func mapRatingError(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrOutOfRange):
		return http.StatusBadRequest, model.ErrCodeOutOfRange
	case errors.Is(err, model.ErrReviewTooLong):
		return http.StatusBadRequest, model.ErrCodeReviewTooLong
	case errors.Is(err, model.ErrAlreadyRated):
		return http.StatusConflict, model.ErrCodeAlreadyRated
	case errors.Is(err, model.ErrRatingNotFound):
		return http.StatusNotFound, model.ErrCodeRatingNotFound
	case errors.Is(err, bookmodel.ErrBookNotFound), errors.Is(err, stats.ErrParentNotFound):
		return http.StatusNotFound, bookmodel.ErrCodeBookNotFound
	case errors.Is(err, stats.ErrConflict):
		return http.StatusServiceUnavailable, "STATS_CONFLICT"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
