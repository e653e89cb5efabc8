package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is an outbound transaction that decreases product stock.
// TotalAmount is denormalized and always equals the sum of its lines'
// price times quantity.
type Sale struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	CompanyID   uint            `json:"company_id" gorm:"index;not null"`
	BuyerName   string          `json:"buyer_name" gorm:"type:varchar(255);not null"`
	SaleDate    time.Time       `json:"sale_date" gorm:"index;not null"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);default:0"`
	CreatedBy   uint            `json:"created_by" gorm:"index"`
	Lines       []ProductSale   `json:"product_sales" gorm:"foreignKey:SaleID"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// OwnerCompanyID implements the CompanyScoped capability
func (s *Sale) OwnerCompanyID() uint {
	return s.CompanyID
}

// ProductSale is a single product position inside a sale. Price snapshots the
// product's selling price and CostPrice its purchase price at sale time, so
// historical revenue and profit stay reproducible after price changes.
// The product reference blocks hard deletion of products with sale history.
type ProductSale struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	SaleID    uint            `json:"sale_id" gorm:"index;not null"`
	ProductID uint            `json:"product_id" gorm:"index;not null"`
	Product   *Product        `json:"product,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
	Quantity  int64           `json:"quantity" gorm:"not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	CostPrice decimal.Decimal `json:"cost_price" gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time       `json:"created_at"`
}
