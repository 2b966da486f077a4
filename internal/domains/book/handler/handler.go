package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"booklib-backend/internal/domains/book/model"
	"booklib-backend/internal/domains/book/service"
	"booklib-backend/internal/shared/response"
)

type BookHandler struct {
	bookService service.ServiceInterface
}

func NewBookHandler(bookService service.ServiceInterface) *BookHandler {
	return &BookHandler{bookService: bookService}
}

// ListBooks lists the catalog
// GET /api/v1/books
func (h *BookHandler) ListBooks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	search := c.Query("search")

	books, total, err := h.bookService.ListBooks(c.Request.Context(), search, page, limit)
	if err != nil {
		response.InternalServerError(c, "failed to list books")
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, books, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// GetBook gets a book with its aggregates
// GET /api/v1/books/:id
func (h *BookHandler) GetBook(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book ID")
		return
	}

	book, err := h.bookService.GetBook(c.Request.Context(), bookID)
	if err != nil {
		if err == model.ErrBookNotFound {
			response.ErrorResponse(c, http.StatusNotFound, model.ErrCodeBookNotFound, "Book not found")
			return
		}
		response.InternalServerError(c, "failed to get book")
		return
	}

	response.Success(c, http.StatusOK, book)
}

// GetStats reads the aggregate snapshot for a book
// GET /api/v1/books/:id/stats
func (h *BookHandler) GetStats(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book ID")
		return
	}

	stats, err := h.bookService.GetStats(c.Request.Context(), bookID)
	if err != nil {
		if err == model.ErrBookNotFound {
			response.ErrorResponse(c, http.StatusNotFound, model.ErrCodeBookNotFound, "Book not found")
			return
		}
		response.InternalServerError(c, "failed to get stats")
		return
	}

	response.Success(c, http.StatusOK, stats)
}
