package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library-api/internal/models"
	"library-api/internal/services"
)

type bookHandler struct {
	svc services.BookService
}

type createBookRequest struct {
	Title     string  `json:"title" binding:"required,max=255"`
	Author    string  `json:"author" binding:"required,max=255"`
	ISBN      *string `json:"isbn" binding:"omitempty,max=20"`
	Publisher string  `json:"publisher" binding:"max=255"`
	Year      int     `json:"year" binding:"omitempty,min=0,max=9999"`
}

type updateBookRequest struct {
	Title     *string `json:"title" binding:"omitempty,max=255"`
	Author    *string `json:"author" binding:"omitempty,max=255"`
	ISBN      *string `json:"isbn" binding:"omitempty,max=20"`
	Publisher *string `json:"publisher" binding:"omitempty,max=255"`
	Year      *int    `json:"year" binding:"omitempty,min=0,max=9999"`
}

type createCopyRequest struct {
	BookID uuid.UUID             `json:"book_id" binding:"required"`
	Status models.BookCopyStatus `json:"status" binding:"omitempty,oneof=AVAILABLE CHECKED_OUT"`
}

// addBookCopyRequest is the body of POST /books/:id/copies; the book comes
// from the path.
type addBookCopyRequest struct {
	Status models.BookCopyStatus `json:"status" binding:"omitempty,oneof=AVAILABLE CHECKED_OUT"`
}

type updateCopyRequest struct {
	BookID *uuid.UUID             `json:"book_id"`
	Status *models.BookCopyStatus `json:"status" binding:"omitempty,oneof=AVAILABLE CHECKED_OUT"`
}

func (h *bookHandler) listBooks(c *gin.Context) {
	books, err := h.svc.ListBooks(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *bookHandler) getBook(c *gin.Context) {
	id, err := parseID(c.Param("id"), "book")
	if err != nil {
		fail(c, err)
		return
	}
	book, err := h.svc.GetBook(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *bookHandler) createBook(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, invalidRequest(err))
		return
	}
	if req.ISBN != nil && *req.ISBN == "" {
		req.ISBN = nil
	}

	book, err := h.svc.CreateBook(c.Request.Context(), &models.Book{
		Title:     req.Title,
		Author:    req.Author,
		ISBN:      req.ISBN,
		Publisher: req.Publisher,
		Year:      req.Year,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (h *bookHandler) updateBook(c *gin.Context) {
	id, err := parseID(c.Param("id"), "book")
	if err != nil {
		fail(c, err)
		return
	}
	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, invalidRequest(err))
		return
	}

	book, err := h.svc.UpdateBook(c.Request.Context(), id, services.UpdateBookInput{
		Title:     req.Title,
		Author:    req.Author,
		ISBN:      req.ISBN,
		Publisher: req.Publisher,
		Year:      req.Year,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *bookHandler) deleteBook(c *gin.Context) {
	id, err := parseID(c.Param("id"), "book")
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.svc.DeleteBook(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *bookHandler) listCopiesOfBook(c *gin.Context) {
	id, err := parseID(c.Param("id"), "book")
	if err != nil {
		fail(c, err)
		return
	}
	copies, err := h.svc.ListCopiesOfBook(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, copies)
}

func (h *bookHandler) addBookCopy(c *gin.Context) {
	bookID, err := parseID(c.Param("id"), "book")
	if err != nil {
		fail(c, err)
		return
	}
	var req addBookCopyRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, invalidRequest(err))
			return
		}
	}

	bc, err := h.svc.CreateCopy(c.Request.Context(), &models.BookCopy{BookID: bookID, Status: req.Status})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, bc)
}

func (h *bookHandler) listCopies(c *gin.Context) {
	copies, err := h.svc.ListCopies(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, copies)
}

func (h *bookHandler) getCopy(c *gin.Context) {
	id, err := parseID(c.Param("id"), "copy")
	if err != nil {
		fail(c, err)
		return
	}
	bc, err := h.svc.GetCopy(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bc)
}

func (h *bookHandler) createCopy(c *gin.Context) {
	var req createCopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, invalidRequest(err))
		return
	}
	bc, err := h.svc.CreateCopy(c.Request.Context(), &models.BookCopy{BookID: req.BookID, Status: req.Status})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, bc)
}

func (h *bookHandler) updateCopy(c *gin.Context) {
	id, err := parseID(c.Param("id"), "copy")
	if err != nil {
		fail(c, err)
		return
	}
	var req updateCopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, invalidRequest(err))
		return
	}
	bc, err := h.svc.UpdateCopy(c.Request.Context(), id, services.UpdateBookCopyInput{
		BookID: req.BookID,
		Status: req.Status,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bc)
}

func (h *bookHandler) deleteCopy(c *gin.Context) {
	id, err := parseID(c.Param("id"), "copy")
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.svc.DeleteCopy(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
