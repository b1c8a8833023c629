package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"email-catalog-go/internal/metrics"
	"email-catalog-go/internal/model"
	"email-catalog-go/internal/repository"
)

const (
	maxNameLength     = 200
	maxClientIDLength = 100
	defaultListLimit  = 100
)

// CompanyService manages the company catalog: registration and lookups.
type CompanyService struct {
	repo    *repository.Repository
	metrics *metrics.Metrics
}

// NewCompanyService creates a new company service
func NewCompanyService(repo *repository.Repository, m *metrics.Metrics) *CompanyService {
	return &CompanyService{repo: repo, metrics: m}
}

// CreateCompany registers a new company. Names are matched exactly and
// must be unique; the pre-check gives a clean duplicate error, the unique
// index backs it up under races.
func (s *CompanyService) CreateCompany(ctx context.Context, name, clientID string) (*model.Company, error) {
	if name == "" || len(name) > maxNameLength {
		return nil, fmt.Errorf("%w: name must be 1-%d characters", ErrInvalidInput, maxNameLength)
	}
	if clientID == "" || len(clientID) > maxClientIDLength {
		return nil, fmt.Errorf("%w: client_id must be 1-%d characters", ErrInvalidInput, maxClientIDLength)
	}

	existing, err := s.repo.GetCompanyByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: company '%s' already exists", ErrDuplicateName, name)
	}

	company := &model.Company{
		Name:     name,
		ClientID: clientID,
	}
	if err := s.repo.CreateCompany(ctx, company); err != nil {
		// Concurrent creation can slip past the pre-check; the unique
		// index reports it as a duplicated key.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: company '%s' already exists", ErrDuplicateName, name)
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CompaniesCreated.Inc()
	}
	logrus.WithFields(logrus.Fields{
		"company_id": company.ID,
		"name":       company.Name,
	}).Info("Company registered")

	return company, nil
}

// FindCompanyByName looks up a company by exact name
func (s *CompanyService) FindCompanyByName(ctx context.Context, name string) (*model.Company, error) {
	company, err := s.repo.GetCompanyByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, fmt.Errorf("%w: company '%s'", ErrNotFound, name)
	}
	return company, nil
}

// ListCompanies returns companies in insertion order. A negative skip is
// clamped to zero and a non-positive limit gets the default.
func (s *CompanyService) ListCompanies(ctx context.Context, skip, limit int) ([]model.Company, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.repo.ListCompanies(ctx, skip, limit)
}
