package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-api/internal/models"
	"library-api/internal/services"
)

type userHandler struct {
	svc     services.UserService
	borrows services.BorrowService
}

// register mounts the user routes on g. kind fixes the user type for the
// /clients and /employees groups; "" serves every user.
func (h *userHandler) register(g *gin.RouterGroup, kind models.UserType) {
	g.GET("", h.list(kind))
	g.POST("", h.create(kind))
	g.GET("/:id", h.get(kind))
	g.PUT("/:id", h.update(kind))
	g.PATCH("/:id", h.update(kind))
	g.DELETE("/:id", h.delete(kind))
	if kind != models.UserTypeEmployee {
		g.GET("/:id/borrows", h.listBorrows(kind))
	}
}

type clientProfileRequest struct {
	CustomerType string `json:"customer_type" binding:"omitempty,oneof=individual corporate"`
	Address      string `json:"address" binding:"max=255"`
}

type employeeProfileRequest struct {
	Role string `json:"role" binding:"required,max=100"`
}

type createUserRequest struct {
	Name     string                  `json:"name" binding:"required,max=128"`
	Email    string                  `json:"email" binding:"required,email,max=128"`
	Password string                  `json:"password" binding:"required,min=6,max=72"`
	UserType models.UserType         `json:"user_type" binding:"omitempty,oneof=client employee"`
	Client   *clientProfileRequest   `json:"client"`
	Employee *employeeProfileRequest `json:"employee"`
}

type clientPatchRequest struct {
	CustomerType *string `json:"customer_type" binding:"omitempty,oneof=individual corporate"`
	Address      *string `json:"address" binding:"omitempty,max=255"`
}

type employeePatchRequest struct {
	Role *string `json:"role" binding:"omitempty,max=100"`
}

type updateUserRequest struct {
	Name     *string               `json:"name" binding:"omitempty,max=128"`
	Email    *string               `json:"email" binding:"omitempty,email,max=128"`
	Password *string               `json:"password" binding:"omitempty,min=6,max=72"`
	UserType *models.UserType      `json:"user_type" binding:"omitempty,oneof=client employee"`
	Client   *clientPatchRequest   `json:"client"`
	Employee *employeePatchRequest `json:"employee"`
}

func (h *userHandler) list(kind models.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := h.svc.List(c.Request.Context(), kind)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

func (h *userHandler) get(kind models.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c.Param("id"), "user")
		if err != nil {
			fail(c, err)
			return
		}
		user, err := h.svc.Get(c.Request.Context(), kind, id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func (h *userHandler) create(kind models.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, invalidRequest(err))
			return
		}
		if kind != "" {
			if req.UserType != "" && req.UserType != kind {
				fail(c, invalidRequestf("user_type must be %s on this route", kind))
				return
			}
			req.UserType = kind
		}

		in := services.CreateUserInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			UserType: req.UserType,
		}
		if req.Client != nil {
			in.Client = &models.Client{CustomerType: req.Client.CustomerType, Address: req.Client.Address}
		}
		if req.Employee != nil {
			in.Employee = &models.Employee{Role: req.Employee.Role}
		}

		user, err := h.svc.Create(c.Request.Context(), in)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

func (h *userHandler) update(kind models.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c.Param("id"), "user")
		if err != nil {
			fail(c, err)
			return
		}
		var req updateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, invalidRequest(err))
			return
		}

		in := services.UpdateUserInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			UserType: req.UserType,
		}
		if req.Client != nil {
			in.CustomerType = req.Client.CustomerType
			in.Address = req.Client.Address
		}
		if req.Employee != nil {
			in.Role = req.Employee.Role
		}

		user, err := h.svc.Update(c.Request.Context(), kind, id, in)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func (h *userHandler) delete(kind models.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c.Param("id"), "user")
		if err != nil {
			fail(c, err)
			return
		}
		if err := h.svc.Delete(c.Request.Context(), kind, id); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// listBorrows returns every borrow (open and returned) of a client.
func (h *userHandler) listBorrows(kind models.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c.Param("id"), "user")
		if err != nil {
			fail(c, err)
			return
		}
		if _, err := h.svc.Get(c.Request.Context(), kind, id); err != nil {
			fail(c, err)
			return
		}
		borrows, err := h.borrows.ListByClient(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, borrows)
	}
}
