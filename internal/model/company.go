package model

import (
	"time"
)

// INNLength is the fixed length of a company tax identifier
const INNLength = 12

// Company is the tenant root that owns storages, suppliers and sales
type Company struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	INN         string    `json:"inn" gorm:"type:varchar(12);unique;not null;comment:'Tax identifier'"`
	Title       string    `json:"title" gorm:"type:varchar(255);not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OwnerCompanyID implements the CompanyScoped capability
func (c *Company) OwnerCompanyID() uint {
	return c.ID
}
