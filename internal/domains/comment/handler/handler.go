package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	bookmodel "booklib-backend/internal/domains/book/model"
	"booklib-backend/internal/domains/comment/model"
	"booklib-backend/internal/domains/comment/service"
	"booklib-backend/internal/shared/middleware"
	"booklib-backend/internal/shared/response"
	"booklib-backend/internal/stats"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// CreateComment posts a comment or reply on a book
// POST /api/v1/books/:id/comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
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

	var req model.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), userID, bookID, &req)
	if err != nil {
		statusCode, errCode := mapCommentError(err)
		response.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}

	response.Success(c, http.StatusCreated, comment)
}

// ListBookComments lists the visible comments of a book
// GET /api/v1/books/:id/comments
func (h *CommentHandler) ListBookComments(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	comments, total, err := h.commentService.ListBookComments(c.Request.Context(), bookID, page, limit)
	if err != nil {
		statusCode, errCode := mapCommentError(err)
		response.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, comments, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// EditComment updates the caller's own comment text
// PUT /api/v1/comments/:id
func (h *CommentHandler) EditComment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	commentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid comment ID")
		return
	}

	var req model.EditCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	comment, err := h.commentService.EditComment(c.Request.Context(), userID, commentID, &req)
	if err != nil {
		statusCode, errCode := mapCommentError(err)
		response.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}

	response.Success(c, http.StatusOK, comment)
}

// DeleteComment soft-deletes the caller's own comment
// DELETE /api/v1/comments/:id
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	commentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid comment ID")
		return
	}

	if err := h.commentService.DeleteComment(c.Request.Context(), userID, commentID); err != nil {
		statusCode, errCode := mapCommentError(err)
		response.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}

	c.Status(http.StatusNoContent)
}

// ModerateComment sets a comment's moderation status
// PUT /api/v1/admin/comments/:id/status
func (h *CommentHandler) ModerateComment(c *gin.Context) {
	commentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid comment ID")
		return
	}

	var req model.ModerateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	comment, err := h.commentService.ModerateComment(c.Request.Context(), commentID, &req)
	if err != nil {
		statusCode, errCode := mapCommentError(err)
		response.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}

	response.Success(c, http.StatusOK, comment)
}

// ToggleLike sets or flips the caller's like/dislike on a comment
// PUT /api/v1/comments/:id/like
func (h *CommentHandler) ToggleLike(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	commentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid comment ID")
		return
	}

	var req model.ToggleLikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	like, likesCount, err := h.commentService.ToggleLike(c.Request.Context(), userID, commentID, &req)
	if err != nil {
		statusCode, errCode := mapCommentError(err)
		response.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"like":        like,
		"likes_count": likesCount,
	})
}

// mapCommentError maps domain errors to HTTP status and error code.
func mapCommentError(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrTextRequired):
		return http.StatusBadRequest, model.ErrCodeTextRequired
	case errors.Is(err, model.ErrTextTooLong):
		return http.StatusBadRequest, model.ErrCodeTextTooLong
	case errors.Is(err, model.ErrNestingTooDeep):
		return http.StatusBadRequest, model.ErrCodeNestingTooDeep
	case errors.Is(err, model.ErrInvalidStatus):
		return http.StatusBadRequest, model.ErrCodeInvalidStatus
	case errors.Is(err, model.ErrNotOwner):
		return http.StatusForbidden, model.ErrCodeNotOwner
	case errors.Is(err, model.ErrCommentNotFound):
		return http.StatusNotFound, model.ErrCodeCommentNotFound
	case errors.Is(err, bookmodel.ErrBookNotFound):
		return http.StatusNotFound, bookmodel.ErrCodeBookNotFound
	case errors.Is(err, stats.ErrParentNotFound):
		return http.StatusNotFound, model.ErrCodeCommentNotFound
	case errors.Is(err, stats.ErrConflict):
		return http.StatusServiceUnavailable, "STATS_CONFLICT"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
