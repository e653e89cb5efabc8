package model

import (
	"time"
)

// Storage is a stock location owned by exactly one company
type Storage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Address   string    `json:"address" gorm:"type:varchar(255);not null"`
	CompanyID uint      `json:"company_id" gorm:"index;not null;comment:'Company this storage belongs to'"`
	Company   *Company  `json:"-" gorm:"foreignKey:CompanyID"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OwnerCompanyID implements the CompanyScoped capability
func (s *Storage) OwnerCompanyID() uint {
	return s.CompanyID
}
