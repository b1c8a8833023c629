package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"email-catalog-go/internal/metrics"
	"email-catalog-go/internal/model"
	"email-catalog-go/internal/repository"
)

// FailureKind distinguishes the per-record failure causes of a bulk batch.
type FailureKind string

const (
	FailureValidation        FailureKind = "validation"
	FailureCompanyNotFound   FailureKind = "company_not_found"
	FailureDuplicateSMTPCode FailureKind = "duplicate_smtp_code"
	FailureStorage           FailureKind = "storage"
)

// EmailSubmission is a single record of a bulk ingest batch. The company
// is referenced by name; resolution to an id happens during ingestion.
type EmailSubmission struct {
	Recipient   string
	Sender      string
	Date        time.Time
	CompanyName string
	SMTPCode    string
	Content     string
}

// IngestFailure reports one failed record with enough context to identify
// it in the submitted batch.
type IngestFailure struct {
	Index    int
	SMTPCode string
	Sender   string
	Kind     FailureKind
	Message  string
}

// IngestResult summarizes a processed batch.
type IngestResult struct {
	Success  int
	Failed   int
	Failures []IngestFailure
}

// AllFailed reports whether no record in the batch succeeded.
func (r *IngestResult) AllFailed() bool {
	return r.Success == 0 && r.Failed > 0
}

// SearchInvalidator is notified when committed emails change so stale
// search results can be dropped.
type SearchInvalidator interface {
	Invalidate(ctx context.Context) error
}

// IngestService validates and inserts bulk email batches with per-item
// failure isolation.
type IngestService struct {
	repo        *repository.Repository
	metrics     *metrics.Metrics
	invalidator SearchInvalidator
}

// NewIngestService creates a new bulk ingest service. The invalidator may
// be nil when no search cache is configured.
func NewIngestService(repo *repository.Repository, m *metrics.Metrics, invalidator SearchInvalidator) *IngestService {
	return &IngestService{
		repo:        repo,
		metrics:     m,
		invalidator: invalidator,
	}
}

// IngestBatch processes the records of a batch sequentially and in order.
// Each record is validated and inserted independently: a failure never
// aborts the remaining records or rolls back prior insertions. The
// returned result itemizes every failure alongside the success count.
func (s *IngestService) IngestBatch(ctx context.Context, submissions []EmailSubmission) (*IngestResult, error) {
	if len(submissions) == 0 {
		return nil, fmt.Errorf("%w: batch must contain at least one email", ErrInvalidInput)
	}

	result := &IngestResult{Failures: []IngestFailure{}}

	for i, sub := range submissions {
		if failure := s.ingestOne(ctx, i, sub); failure != nil {
			result.Failed++
			result.Failures = append(result.Failures, *failure)
			if s.metrics != nil {
				s.metrics.IngestFailures.Inc()
			}
			continue
		}
		result.Success++
		if s.metrics != nil {
			s.metrics.IngestSuccesses.Inc()
		}
	}

	if s.metrics != nil {
		s.metrics.IngestBatches.Inc()
	}

	if result.Success > 0 && s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx); err != nil {
			logrus.Warnf("Failed to invalidate search cache: %v", err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"batch_size": len(submissions),
		"success":    result.Success,
		"failed":     result.Failed,
	}).Info("Bulk ingest batch processed")

	return result, nil
}

func (s *IngestService) ingestOne(ctx context.Context, index int, sub EmailSubmission) *IngestFailure {
	fail := func(kind FailureKind, message string) *IngestFailure {
		return &IngestFailure{
			Index:    index,
			SMTPCode: sub.SMTPCode,
			Sender:   sub.Sender,
			Kind:     kind,
			Message:  message,
		}
	}

	if msg := validateSubmission(sub); msg != "" {
		return fail(FailureValidation, msg)
	}

	company, err := s.repo.GetCompanyByName(ctx, sub.CompanyName)
	if err != nil {
		return fail(FailureStorage, fmt.Sprintf("unexpected error: %v", err))
	}
	if company == nil {
		return fail(FailureCompanyNotFound, fmt.Sprintf("company '%s' not found in catalog", sub.CompanyName))
	}

	// Pre-check against committed rows keeps duplicate reporting clean;
	// the unique index remains authoritative under concurrent batches.
	exists, err := s.repo.EmailExistsBySMTPCode(ctx, sub.SMTPCode)
	if err != nil {
		return fail(FailureStorage, fmt.Sprintf("unexpected error: %v", err))
	}
	if exists {
		return fail(FailureDuplicateSMTPCode, fmt.Sprintf("email with smtp_code '%s' already exists", sub.SMTPCode))
	}

	email := &model.Email{
		Recipient: sub.Recipient,
		Sender:    sub.Sender,
		Date:      sub.Date,
		CompanyID: company.ID,
		SMTPCode:  sub.SMTPCode,
		Content:   sub.Content,
	}
	if err := s.repo.CreateEmail(ctx, email); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail(FailureDuplicateSMTPCode, fmt.Sprintf("email with smtp_code '%s' already exists", sub.SMTPCode))
		}
		return fail(FailureStorage, fmt.Sprintf("unexpected error: %v", err))
	}

	return nil
}

func validateSubmission(sub EmailSubmission) string {
	switch {
	case sub.Recipient == "" || len(sub.Recipient) > maxNameLength:
		return fmt.Sprintf("recipient must be 1-%d characters", maxNameLength)
	case sub.Sender == "" || len(sub.Sender) > maxNameLength:
		return fmt.Sprintf("sender must be 1-%d characters", maxNameLength)
	case sub.Date.IsZero():
		return "date must be a valid timestamp"
	case sub.CompanyName == "" || len(sub.CompanyName) > maxNameLength:
		return fmt.Sprintf("company_name must be 1-%d characters", maxNameLength)
	case sub.SMTPCode == "" || len(sub.SMTPCode) > maxNameLength:
		return fmt.Sprintf("smtp_code must be 1-%d characters", maxNameLength)
	case sub.Content == "":
		return "content is required"
	}
	return ""
}
