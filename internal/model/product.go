package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a stock-keeping unit owned by exactly one storage.
// Quantity is the single source of truth for on-hand stock and is only
// mutated by the ledger engine inside a transaction.
type Product struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	StorageID     uint            `json:"storage_id" gorm:"index;not null;comment:'Storage this product belongs to'"`
	Storage       *Storage        `json:"-" gorm:"foreignKey:StorageID"`
	Title         string          `json:"title" gorm:"type:varchar(255);not null"`
	Description   string          `json:"description" gorm:"type:text"`
	Quantity      int64           `json:"quantity" gorm:"not null;default:0"`
	PurchasePrice decimal.Decimal `json:"purchase_price" gorm:"type:decimal(10,2);default:0"`
	SellingPrice  decimal.Decimal `json:"selling_price" gorm:"type:decimal(10,2);default:0"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
