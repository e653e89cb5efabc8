package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supply is an inbound transaction that increases product stock.
// It belongs to one storage and weakly references a supplier.
type Supply struct {
	ID         uint         `json:"id" gorm:"primaryKey"`
	StorageID  uint         `json:"storage_id" gorm:"index;not null"`
	Storage    *Storage     `json:"storage,omitempty" gorm:"foreignKey:StorageID"`
	SupplierID *uint        `json:"supplier_id" gorm:"index"`
	Supplier   *Supplier    `json:"supplier,omitempty" gorm:"foreignKey:SupplierID;constraint:OnDelete:SET NULL"`
	CreatedBy  uint         `json:"created_by" gorm:"index"`
	Lines      []SupplyLine `json:"products" gorm:"foreignKey:SupplyID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time    `json:"created_at" gorm:"index"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// SupplyLine is a single product position inside a supply. PurchasePrice is a
// snapshot of the product's purchase price at supply time.
type SupplyLine struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	SupplyID      uint            `json:"supply_id" gorm:"index;not null"`
	ProductID     uint            `json:"product_id" gorm:"index;not null"`
	Product       *Product        `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Quantity      int64           `json:"quantity" gorm:"not null"`
	PurchasePrice decimal.Decimal `json:"purchase_price" gorm:"type:decimal(10,2);not null"`
	CreatedAt     time.Time       `json:"created_at"`
}
