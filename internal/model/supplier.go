package model

import (
	"time"
)

// Supplier represents an external vendor scoped to a company.
// Supplies keep a weak reference to their supplier so the supply history
// survives supplier deletion.
type Supplier struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	CompanyID     uint      `json:"company_id" gorm:"index;not null;comment:'Company this supplier belongs to'"`
	Name          string    `json:"name" gorm:"type:varchar(255);not null"`
	ContactPerson string    `json:"contact_person" gorm:"type:varchar(255)"`
	Phone         string    `json:"phone" gorm:"type:varchar(20)"`
	Email         string    `json:"email" gorm:"type:varchar(255)"`
	Address       string    `json:"address" gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OwnerCompanyID implements the CompanyScoped capability
func (s *Supplier) OwnerCompanyID() uint {
	return s.CompanyID
}
