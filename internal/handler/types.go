package handler

import "time"

// CompanyCreateRequest represents the request body for company registration
type CompanyCreateRequest struct {
	Name     string `json:"name" binding:"required"`
	ClientID string `json:"client_id" binding:"required"`
}

// CompanyResponse represents the response structure for companies
type CompanyResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	ClientID  string    `json:"client_id"`
	CreatedAt time.Time `json:"created_at"`
}

// EmailCreateRequest is one record of a bulk ingest request. Fields carry
// no binding tags: record-level validation happens per item inside the
// ingest service so one bad record cannot reject the whole batch.
type EmailCreateRequest struct {
	Recipient   string `json:"recipient"`
	Sender      string `json:"sender"`
	Date        string `json:"date"`
	CompanyName string `json:"company_name"`
	SMTPCode    string `json:"smtp_code"`
	Content     string `json:"content"`
}

// EmailBulkRequest represents the bulk ingest request body
type EmailBulkRequest struct {
	Emails []EmailCreateRequest `json:"emails" binding:"required,min=1"`
}

// BulkErrorEntry itemizes one failed record of a bulk batch
type BulkErrorEntry struct {
	Indice   int    `json:"indice"`
	SMTPCode string `json:"smtp_code"`
	Sender   string `json:"sender"`
	Kind     string `json:"kind"`
	Error    string `json:"error"`
}

// EmailBulkResponse summarizes a processed bulk batch
type EmailBulkResponse struct {
	Success int              `json:"success"`
	Failed  int              `json:"failed"`
	Errors  []BulkErrorEntry `json:"errors"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
