package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"email-catalog-go/internal/service"
)

// zonelessLayout matches ISO timestamps without an offset, e.g.
// "2024-01-01T00:00:00". They are interpreted as UTC.
const zonelessLayout = "2006-01-02T15:04:05"

func parseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.ParseInLocation(zonelessLayout, value, time.UTC)
}

// BulkCreateEmails registers a batch of emails with per-item isolation.
// The batch is accepted (201) as long as at least one record succeeded;
// only a fully failed batch is reported as 400. Callers must inspect the
// itemized error list either way.
func (h *Handlers) BulkCreateEmails(c *gin.Context) {
	var req EmailBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: emails must contain at least one item",
			Code:    http.StatusBadRequest,
		})
		return
	}

	submissions := make([]service.EmailSubmission, 0, len(req.Emails))
	for _, email := range req.Emails {
		sub := service.EmailSubmission{
			Recipient:   email.Recipient,
			Sender:      email.Sender,
			CompanyName: email.CompanyName,
			SMTPCode:    email.SMTPCode,
			Content:     email.Content,
		}
		// A malformed date leaves the zero value; the ingest engine
		// reports it as a per-record validation failure.
		if email.Date != "" {
			if date, err := parseTimestamp(email.Date); err == nil {
				sub.Date = date
			}
		}
		submissions = append(submissions, sub)
	}

	result, err := h.ingest.IngestBatch(c.Request.Context(), submissions)
	if err != nil {
		logrus.Errorf("Bulk ingest failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "storage_error",
			Message: "Failed to process bulk ingest",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	response := EmailBulkResponse{
		Success: result.Success,
		Failed:  result.Failed,
		Errors:  make([]BulkErrorEntry, 0, len(result.Failures)),
	}
	for _, failure := range result.Failures {
		response.Errors = append(response.Errors, BulkErrorEntry{
			Indice:   failure.Index,
			SMTPCode: failure.SMTPCode,
			Sender:   failure.Sender,
			Kind:     string(failure.Kind),
			Error:    failure.Message,
		})
	}

	if result.AllFailed() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "all_failed",
			"message": "All emails failed to register",
			"success": response.Success,
			"failed":  response.Failed,
			"errors":  response.Errors,
		})
		return
	}

	c.JSON(http.StatusCreated, response)
}

// SearchEmails runs a filtered, paginated email search
func (h *Handlers) SearchEmails(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	params := service.SearchParams{
		Content:     c.Query("content"),
		Recipient:   c.Query("recipient"),
		Sender:      c.Query("sender"),
		CompanyName: c.Query("company_name"),
		Page:        page,
		PageSize:    pageSize,
	}

	if value := c.Query("date_from"); value != "" {
		date, err := parseTimestamp(value)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: "date_from must be an ISO timestamp",
				Code:    http.StatusBadRequest,
			})
			return
		}
		params.DateFrom = &date
	}
	if value := c.Query("date_to"); value != "" {
		date, err := parseTimestamp(value)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: "date_to must be an ISO timestamp",
				Code:    http.StatusBadRequest,
			})
			return
		}
		params.DateTo = &date
	}

	result, err := h.search.Search(c.Request.Context(), params)
	if err != nil {
		logrus.Errorf("Search failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "storage_error",
			Message: "Failed to search emails",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
