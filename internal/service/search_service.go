package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"email-catalog-go/internal/metrics"
	"email-catalog-go/internal/repository"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// SearchParams carries the filters and paging of an email search. Content
// is the mandatory filter; the rest are optional and combined with AND.
type SearchParams struct {
	Content     string
	Recipient   string
	Sender      string
	CompanyName string
	DateFrom    *time.Time
	DateTo      *time.Time
	Page        int
	PageSize    int
}

// EmailResult is a search hit enriched with the linked company's name.
type EmailResult struct {
	ID          uint      `json:"id"`
	Recipient   string    `json:"recipient"`
	Sender      string    `json:"sender"`
	Date        time.Time `json:"date"`
	CompanyName string    `json:"company_name"`
	SMTPCode    string    `json:"smtp_code"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// SearchResult is one page of a filtered email search.
type SearchResult struct {
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
	Emails     []EmailResult `json:"emails"`
}

// SearchResultCache caches search result pages under a caller-supplied key.
type SearchResultCache interface {
	GetOrCompute(ctx context.Context, key string, compute func() (*SearchResult, error)) (*SearchResult, bool, error)
}

// SearchService runs filtered, paginated email searches.
type SearchService struct {
	repo    *repository.Repository
	metrics *metrics.Metrics
	cache   SearchResultCache
}

// NewSearchService creates a new search service. The cache may be nil.
func NewSearchService(repo *repository.Repository, m *metrics.Metrics, cache SearchResultCache) *SearchService {
	return &SearchService{repo: repo, metrics: m, cache: cache}
}

// Search executes a filtered email search. A blank content filter means
// "no query attempted" and yields an empty page rather than an error.
// Pages past the last return an empty list.
func (s *SearchService) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if s.metrics != nil {
		s.metrics.SearchRequests.Inc()
		timer := time.Now()
		defer func() {
			s.metrics.SearchDuration.Observe(time.Since(timer).Seconds())
		}()
	}

	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = defaultPageSize
	}
	if params.PageSize > maxPageSize {
		params.PageSize = maxPageSize
	}

	if strings.TrimSpace(params.Content) == "" {
		return &SearchResult{
			Total:      0,
			Page:       params.Page,
			PageSize:   params.PageSize,
			TotalPages: 0,
			Emails:     []EmailResult{},
		}, nil
	}

	if s.cache != nil {
		result, hit, err := s.cache.GetOrCompute(ctx, params.cacheKey(), func() (*SearchResult, error) {
			return s.query(ctx, params)
		})
		if err != nil {
			return nil, err
		}
		if hit {
			logrus.Debug("Search served from cache")
		}
		return result, nil
	}

	return s.query(ctx, params)
}

func (s *SearchService) query(ctx context.Context, params SearchParams) (*SearchResult, error) {
	filter := repository.EmailSearchFilter{
		Content:     params.Content,
		Recipient:   params.Recipient,
		Sender:      params.Sender,
		CompanyName: params.CompanyName,
		DateFrom:    params.DateFrom,
		DateTo:      params.DateTo,
		Offset:      (params.Page - 1) * params.PageSize,
		Limit:       params.PageSize,
	}

	emails, total, err := s.repo.SearchEmails(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(params.PageSize) - 1) / int64(params.PageSize))
	}

	results := make([]EmailResult, 0, len(emails))
	for _, email := range emails {
		companyName := ""
		if email.Company != nil {
			companyName = email.Company.Name
		}
		results = append(results, EmailResult{
			ID:          email.ID,
			Recipient:   email.Recipient,
			Sender:      email.Sender,
			Date:        email.Date,
			CompanyName: companyName,
			SMTPCode:    email.SMTPCode,
			Content:     email.Content,
			CreatedAt:   email.CreatedAt,
		})
	}

	return &SearchResult{
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
		Emails:     results,
	}, nil
}

// cacheKey canonicalizes the parameters so identical queries share one
// cache entry. The cache hashes it before use.
func (p SearchParams) cacheKey() string {
	from, to := "", ""
	if p.DateFrom != nil {
		from = p.DateFrom.UTC().Format(time.RFC3339Nano)
	}
	if p.DateTo != nil {
		to = p.DateTo.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("content=%s|recipient=%s|sender=%s|company=%s|from=%s|to=%s|page=%d|size=%d",
		p.Content, p.Recipient, p.Sender, p.CompanyName, from, to, p.Page, p.PageSize)
}
