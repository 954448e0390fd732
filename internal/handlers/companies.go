package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-api/internal/models"
	"library-api/internal/services"
)

type companyHandler struct {
	svc services.CompanyService
}

type createCompanyRequest struct {
	CNPJ         string `json:"cnpj" binding:"required,cnpj"`
	LegalName    string `json:"legal_name" binding:"required,max=255"`
	TradeName    string `json:"trade_name" binding:"max=255"`
	ContactPhone string `json:"contact_phone" binding:"omitempty,phone_br"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email,max=255"`
	Website      string `json:"website" binding:"omitempty,url,max=255"`
}

type updateCompanyRequest struct {
	CNPJ         *string `json:"cnpj" binding:"omitempty,cnpj"`
	LegalName    *string `json:"legal_name" binding:"omitempty,max=255"`
	TradeName    *string `json:"trade_name" binding:"omitempty,max=255"`
	ContactPhone *string `json:"contact_phone" binding:"omitempty,phone_br"`
	ContactEmail *string `json:"contact_email" binding:"omitempty,email,max=255"`
	Website      *string `json:"website" binding:"omitempty,url,max=255"`
}

func (h *companyHandler) list(c *gin.Context) {
	companies, err := h.svc.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, companies)
}

func (h *companyHandler) get(c *gin.Context) {
	id, err := parseID(c.Param("id"), "company")
	if err != nil {
		fail(c, err)
		return
	}
	company, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *companyHandler) getByCNPJ(c *gin.Context) {
	company, err := h.svc.GetByCNPJ(c.Request.Context(), c.Param("cnpj"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *companyHandler) create(c *gin.Context) {
	var req createCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, invalidRequest(err))
		return
	}
	company, err := h.svc.Create(c.Request.Context(), &models.Company{
		CNPJ:         req.CNPJ,
		LegalName:    req.LegalName,
		TradeName:    req.TradeName,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
		Website:      req.Website,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, company)
}

func (h *companyHandler) update(c *gin.Context) {
	id, err := parseID(c.Param("id"), "company")
	if err != nil {
		fail(c, err)
		return
	}
	var req updateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, invalidRequest(err))
		return
	}
	company, err := h.svc.Update(c.Request.Context(), id, services.UpdateCompanyInput{
		CNPJ:         req.CNPJ,
		LegalName:    req.LegalName,
		TradeName:    req.TradeName,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
		Website:      req.Website,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *companyHandler) delete(c *gin.Context) {
	id, err := parseID(c.Param("id"), "company")
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
