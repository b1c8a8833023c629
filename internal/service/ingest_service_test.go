package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"email-catalog-go/internal/repository"
)

func setupIngest(t *testing.T) (*IngestService, *CompanyService, *repository.Repository) {
	repo := setupRepo(t)
	m := testMetrics()
	return NewIngestService(repo, m, nil), NewCompanyService(repo, m), repo
}

func submission(company, smtpCode string) EmailSubmission {
	return EmailSubmission{
		Recipient:   "recipient@example.com",
		Sender:      "sender@" + company + ".com",
		Date:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		CompanyName: company,
		SMTPCode:    smtpCode,
		Content:     "hello world",
	}
}

func TestIngestBatchAllValid(t *testing.T) {
	ingest, companies, _ := setupIngest(t)
	ctx := context.Background()
	_, err := companies.CreateCompany(ctx, "Acme", "client_001")
	require.NoError(t, err)

	result, err := ingest.IngestBatch(ctx, []EmailSubmission{
		submission("Acme", "S1"),
		submission("Acme", "S2"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, result.Failures)
	assert.False(t, result.AllFailed())
}

func TestIngestBatchUnknownCompanyIsolation(t *testing.T) {
	ingest, companies, _ := setupIngest(t)
	ctx := context.Background()
	_, err := companies.CreateCompany(ctx, "Acme", "client_001")
	require.NoError(t, err)

	// 5 records, 2 referencing companies that are not in the catalog.
	batch := []EmailSubmission{
		submission("Acme", "S1"),
		submission("Ghost", "S2"),
		submission("Acme", "S3"),
		submission("Phantom", "S4"),
		submission("Acme", "S5"),
	}

	result, err := ingest.IngestBatch(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Success)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Failures, 2)

	assert.Equal(t, 1, result.Failures[0].Index)
	assert.Equal(t, "S2", result.Failures[0].SMTPCode)
	assert.Equal(t, FailureCompanyNotFound, result.Failures[0].Kind)
	assert.Contains(t, result.Failures[0].Message, "Ghost")

	assert.Equal(t, 3, result.Failures[1].Index)
	assert.Equal(t, FailureCompanyNotFound, result.Failures[1].Kind)
}

func TestIngestDuplicateSMTPCodeAcrossBatches(t *testing.T) {
	ingest, companies, _ := setupIngest(t)
	ctx := context.Background()
	_, err := companies.CreateCompany(ctx, "Acme", "client_001")
	require.NoError(t, err)

	first, err := ingest.IngestBatch(ctx, []EmailSubmission{submission("Acme", "S1")})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Success)

	second, err := ingest.IngestBatch(ctx, []EmailSubmission{submission("Acme", "S1")})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Success)
	assert.Equal(t, 1, second.Failed)
	require.Len(t, second.Failures, 1)
	assert.Equal(t, FailureDuplicateSMTPCode, second.Failures[0].Kind)
	assert.True(t, second.AllFailed())
}

func TestIngestDuplicateSMTPCodeWithinBatch(t *testing.T) {
	ingest, companies, repo := setupIngest(t)
	ctx := context.Background()
	_, err := companies.CreateCompany(ctx, "Acme", "client_001")
	require.NoError(t, err)

	result, err := ingest.IngestBatch(ctx, []EmailSubmission{
		submission("Acme", "S1"),
		submission("Acme", "S1"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Success)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, 1, result.Failures[0].Index)
	assert.Equal(t, FailureDuplicateSMTPCode, result.Failures[0].Kind)

	// Exactly one copy made it to storage.
	count, err := repo.CountEmails(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestIngestValidationIsolation(t *testing.T) {
	ingest, companies, _ := setupIngest(t)
	ctx := context.Background()
	_, err := companies.CreateCompany(ctx, "Acme", "client_001")
	require.NoError(t, err)

	invalid := submission("Acme", "S1")
	invalid.Recipient = ""
	noDate := submission("Acme", "S2")
	noDate.Date = time.Time{}

	result, err := ingest.IngestBatch(ctx, []EmailSubmission{
		invalid,
		noDate,
		submission("Acme", "S3"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Success)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Failures, 2)
	assert.Equal(t, FailureValidation, result.Failures[0].Kind)
	assert.Contains(t, result.Failures[0].Message, "recipient")
	assert.Equal(t, FailureValidation, result.Failures[1].Kind)
	assert.Contains(t, result.Failures[1].Message, "date")
}

func TestIngestAllFailed(t *testing.T) {
	ingest, _, _ := setupIngest(t)

	result, err := ingest.IngestBatch(context.Background(), []EmailSubmission{
		submission("Ghost", "S1"),
		submission("Ghost", "S2"),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Success)
	assert.Equal(t, 2, result.Failed)
	assert.True(t, result.AllFailed())
}

func TestIngestEmptyBatch(t *testing.T) {
	ingest, _, _ := setupIngest(t)

	_, err := ingest.IngestBatch(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

type recordingInvalidator struct {
	calls int
}

func (r *recordingInvalidator) Invalidate(ctx context.Context) error {
	r.calls++
	return nil
}

func TestIngestInvalidatesSearchCache(t *testing.T) {
	repo := setupRepo(t)
	m := testMetrics()
	invalidator := &recordingInvalidator{}
	ingest := NewIngestService(repo, m, invalidator)
	companies := NewCompanyService(repo, m)
	ctx := context.Background()

	_, err := companies.CreateCompany(ctx, "Acme", "client_001")
	require.NoError(t, err)

	// A fully failed batch commits nothing and must not invalidate.
	_, err = ingest.IngestBatch(ctx, []EmailSubmission{submission("Ghost", "S1")})
	require.NoError(t, err)
	assert.Equal(t, 0, invalidator.calls)

	_, err = ingest.IngestBatch(ctx, []EmailSubmission{submission("Acme", "S2")})
	require.NoError(t, err)
	assert.Equal(t, 1, invalidator.calls)
}

func TestIngestLargeBatchOrdering(t *testing.T) {
	ingest, companies, _ := setupIngest(t)
	ctx := context.Background()
	_, err := companies.CreateCompany(ctx, "Acme", "client_001")
	require.NoError(t, err)

	var batch []EmailSubmission
	for i := 0; i < 10; i++ {
		company := "Acme"
		if i%3 == 0 {
			company = "Ghost"
		}
		batch = append(batch, submission(company, fmt.Sprintf("S%02d", i)))
	}

	result, err := ingest.IngestBatch(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 6, result.Success)
	assert.Equal(t, 4, result.Failed)

	// Failure entries keep batch order.
	for i := 1; i < len(result.Failures); i++ {
		assert.Greater(t, result.Failures[i].Index, result.Failures[i-1].Index)
	}
}
