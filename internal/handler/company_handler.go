package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"email-catalog-go/internal/service"
)

// CreateCompany registers a new company in the catalog
func (h *Handlers) CreateCompany(c *gin.Context) {
	var req CompanyCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: name and client_id are required",
			Code:    http.StatusBadRequest,
		})
		return
	}

	company, err := h.companies.CreateCompany(c.Request.Context(), req.Name, req.ClientID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: err.Error(),
				Code:    http.StatusBadRequest,
			})
		case errors.Is(err, service.ErrDuplicateName):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "duplicate_name",
				Message: err.Error(),
				Code:    http.StatusBadRequest,
			})
		default:
			logrus.Errorf("Failed to create company: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "storage_error",
				Message: "Failed to create company",
				Code:    http.StatusInternalServerError,
			})
		}
		return
	}

	c.JSON(http.StatusCreated, CompanyResponse{
		ID:        company.ID,
		Name:      company.Name,
		ClientID:  company.ClientID,
		CreatedAt: company.CreatedAt,
	})
}

// ListCompanies returns registered companies with offset/limit pagination
func (h *Handlers) ListCompanies(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	companies, err := h.companies.ListCompanies(c.Request.Context(), skip, limit)
	if err != nil {
		logrus.Errorf("Failed to list companies: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "storage_error",
			Message: "Failed to list companies",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	responses := make([]CompanyResponse, 0, len(companies))
	for _, company := range companies {
		responses = append(responses, CompanyResponse{
			ID:        company.ID,
			Name:      company.Name,
			ClientID:  company.ClientID,
			CreatedAt: company.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, responses)
}
