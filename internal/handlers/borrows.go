package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library-api/internal/models"
	"library-api/internal/services"
)

type borrowHandler struct {
	svc services.BorrowService
}

type createBorrowRequest struct {
	ClientID   uuid.UUID  `json:"client_id" binding:"required"`
	CopyID     uuid.UUID  `json:"copy_id" binding:"required"`
	EmployeeID *uuid.UUID `json:"employee_id"`
	BorrowedAt *time.Time `json:"borrowed_at"`
	ReturnedAt *time.Time `json:"returned_at"`
}

// updateBorrowRequest: employee_id and returned_at accept null to clear them.
type updateBorrowRequest struct {
	ClientID   *uuid.UUID                   `json:"client_id"`
	CopyID     *uuid.UUID                   `json:"copy_id"`
	EmployeeID services.Nullable[uuid.UUID] `json:"employee_id"`
	BorrowedAt *time.Time                   `json:"borrowed_at"`
	ReturnedAt services.Nullable[time.Time] `json:"returned_at"`
}

func (h *borrowHandler) list(c *gin.Context) {
	borrows, err := h.svc.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, borrows)
}

func (h *borrowHandler) get(c *gin.Context) {
	id, err := parseID(c.Param("id"), "borrow")
	if err != nil {
		fail(c, err)
		return
	}
	borrow, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, borrow)
}

// create does not check whether the copy is already lent out.
func (h *borrowHandler) create(c *gin.Context) {
	var req createBorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, invalidRequest(err))
		return
	}

	borrow := &models.Borrow{
		ClientID:   req.ClientID,
		CopyID:     req.CopyID,
		EmployeeID: req.EmployeeID,
		ReturnedAt: req.ReturnedAt,
	}
	if req.BorrowedAt != nil {
		borrow.BorrowedAt = req.BorrowedAt.UTC()
	}

	created, err := h.svc.Create(c.Request.Context(), borrow)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *borrowHandler) update(c *gin.Context) {
	id, err := parseID(c.Param("id"), "borrow")
	if err != nil {
		fail(c, err)
		return
	}
	var req updateBorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, invalidRequest(err))
		return
	}

	borrow, err := h.svc.Update(c.Request.Context(), id, services.UpdateBorrowInput{
		ClientID:   req.ClientID,
		CopyID:     req.CopyID,
		EmployeeID: req.EmployeeID,
		BorrowedAt: req.BorrowedAt,
		ReturnedAt: req.ReturnedAt,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, borrow)
}

func (h *borrowHandler) delete(c *gin.Context) {
	id, err := parseID(c.Param("id"), "borrow")
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
