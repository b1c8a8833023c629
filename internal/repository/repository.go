package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"email-catalog-go/internal/model"
)

// EmailSearchFilter carries the predicates and paging window for an email
// search. String filters are case-sensitive substring matches; the date
// bounds are inclusive and applied independently.
type EmailSearchFilter struct {
	Content     string
	Recipient   string
	Sender      string
	CompanyName string
	DateFrom    *time.Time
	DateTo      *time.Time
	Offset      int
	Limit       int
}

type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateCompany persists a new company. The unique index on name is
// authoritative; a violation is reported as gorm.ErrDuplicatedKey.
func (r *Repository) CreateCompany(ctx context.Context, company *model.Company) error {
	result := r.db.WithContext(ctx).Create(company)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return result.Error
		}
		return fmt.Errorf("failed to create company: %w", result.Error)
	}
	return nil
}

// GetCompanyByName looks up a company by exact name. Returns (nil, nil)
// when no company matches.
func (r *Repository) GetCompanyByName(ctx context.Context, name string) (*model.Company, error) {
	var company model.Company
	result := r.db.WithContext(ctx).Where("name = ?", name).First(&company)
	if result.Error == nil {
		return &company, nil
	}
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("failed to get company by name: %w", result.Error)
}

// ListCompanies returns companies in insertion order with offset/limit
// pagination.
func (r *Repository) ListCompanies(ctx context.Context, offset, limit int) ([]model.Company, error) {
	var companies []model.Company
	result := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&companies)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list companies: %w", result.Error)
	}
	return companies, nil
}

func (r *Repository) CountCompanies(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.Company{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count companies: %w", result.Error)
	}
	return count, nil
}

// CreateEmail persists a new email. A smtp_code collision that slipped
// past the pre-check surfaces as gorm.ErrDuplicatedKey.
func (r *Repository) CreateEmail(ctx context.Context, email *model.Email) error {
	result := r.db.WithContext(ctx).Create(email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return result.Error
		}
		return fmt.Errorf("failed to create email: %w", result.Error)
	}
	return nil
}

// EmailExistsBySMTPCode reports whether an email with the given smtp_code
// has already been committed.
func (r *Repository) EmailExistsBySMTPCode(ctx context.Context, smtpCode string) (bool, error) {
	var email model.Email
	result := r.db.WithContext(ctx).Where("smtp_code = ?", smtpCode).First(&email)
	if result.Error == nil {
		return true, nil
	}
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check smtp code: %w", result.Error)
}

func (r *Repository) CountEmails(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.Email{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count emails: %w", result.Error)
	}
	return count, nil
}

// SearchEmails runs the filtered email query and returns the page rows plus
// the total match count. All filters are combined with AND. Substring
// predicates use INSTR, a byte comparison on SQLite that follows column
// collation on MySQL; the connection pins utf8mb4_bin so both engines
// match case-sensitively. Rows are ordered by id so repeated identical
// queries paginate without skips or duplicates.
func (r *Repository) SearchEmails(ctx context.Context, filter EmailSearchFilter) ([]model.Email, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Email{}).
		Joins("JOIN companies ON companies.id = emails.company_id").
		Where("INSTR(emails.content, ?) > 0", filter.Content)

	if filter.Recipient != "" {
		query = query.Where("INSTR(emails.recipient, ?) > 0", filter.Recipient)
	}
	if filter.Sender != "" {
		query = query.Where("INSTR(emails.sender, ?) > 0", filter.Sender)
	}
	if filter.CompanyName != "" {
		query = query.Where("INSTR(companies.name, ?) > 0", filter.CompanyName)
	}
	if filter.DateFrom != nil {
		query = query.Where("emails.date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("emails.date <= ?", *filter.DateTo)
	}

	// New session so the same condition set can run Count and Find.
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	var emails []model.Email
	result := query.
		Preload("Company").
		Order("emails.id ASC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&emails)
	if result.Error != nil {
		return nil, 0, fmt.Errorf("failed to search emails: %w", result.Error)
	}

	return emails, total, nil
}
