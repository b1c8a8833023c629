package model

import (
	"time"
)

// Company represents a registered client company in the catalog
type Company struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(200);not null;uniqueIndex"`
	ClientID  string    `json:"client_id" gorm:"type:varchar(100);not null;index"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Company
func (Company) TableName() string {
	return "companies"
}
