package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/catalog"
)

type BooksController struct {
	catalog *catalog.Service
	log     *zap.Logger
}

func NewBooksController(catalog *catalog.Service, log *zap.Logger) *BooksController {
	return &BooksController{catalog: catalog, log: log}
}

// ListBooks handles GET /api/books?q=&include_inactive=
func (bc *BooksController) ListBooks(c *gin.Context) {
	includeInactive, _ := strconv.ParseBool(c.Query("include_inactive"))

	books, err := bc.catalog.ListBooks(c.Request.Context(), c.Query("q"), includeInactive)
	if err != nil {
		respondServiceError(c, bc.log, err, "list books")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"books": books,
		"count": len(books),
	})
}

// CreateBook handles POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req catalog.BookInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	book, err := bc.catalog.CreateBook(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, bc.log, err, "create book")
		return
	}
	respondCreated(c, book)
}

// GetBook handles GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.catalog.GetBook(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, bc.log, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// UpdateBook handles PATCH /api/books/:id
func (bc *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req catalog.BookUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	book, err := bc.catalog.UpdateBook(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, bc.log, err, "update book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// DeactivateBook handles DELETE /api/books/:id. Books are never removed,
// only withdrawn from circulation.
func (bc *BooksController) DeactivateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.catalog.DeactivateBook(c.Request.Context(), id); err != nil {
		respondServiceError(c, bc.log, err, "deactivate book")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "book deactivated"})
}
