package model

import (
	"time"
)

// Email represents a single tracked email transmission. The SMTP code is a
// globally unique external identifier used as the idempotency key for
// bulk ingestion.
type Email struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Recipient string    `json:"recipient" gorm:"type:varchar(200);not null;index"`
	Sender    string    `json:"sender" gorm:"type:varchar(200);not null;index"`
	Date      time.Time `json:"date" gorm:"not null;index"`
	CompanyID uint      `json:"company_id" gorm:"not null;index"`
	SMTPCode  string    `json:"smtp_code" gorm:"type:varchar(200);not null;uniqueIndex"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`

	Company *Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}

// TableName specifies the table name for Email
func (Email) TableName() string {
	return "emails"
}
