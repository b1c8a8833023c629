package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"email-catalog-go/internal/service"
)

const serviceVersion = "1.0.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	db        *gorm.DB
	companies *service.CompanyService
	ingest    *service.IngestService
	search    *service.SearchService
}

// NewHandlers creates new HTTP handlers
func NewHandlers(db *gorm.DB, companies *service.CompanyService, ingest *service.IngestService, search *service.SearchService) *Handlers {
	return &Handlers{
		db:        db,
		companies: companies,
		ingest:    ingest,
		search:    search,
	}
}

// SetupRoutes sets up all HTTP routes
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	router.GET("/", h.Root)
	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/companies", h.CreateCompany)
		api.GET("/companies", h.ListCompanies)

		api.POST("/emails/bulk", h.BulkCreateEmails)
		api.GET("/emails/search", h.SearchEmails)
	}
}

// Root returns service information
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Email Catalog API is running",
		"version": serviceVersion,
		"endpoints": gin.H{
			"companies":     "/api/companies",
			"bulk_emails":   "/api/emails/bulk",
			"search_emails": "/api/emails/search",
			"metrics":       "/metrics",
		},
	})
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Database:  "ok",
	}

	if err := h.db.Raw("SELECT 1").Error; err != nil {
		response.Status = "error"
		response.Database = "error"
		logrus.Errorf("Database health check failed: %v", err)
	}

	statusCode := http.StatusOK
	if response.Status == "error" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}
