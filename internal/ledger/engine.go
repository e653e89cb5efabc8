package ledger

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"inventory-service/internal/apperr"
	"inventory-service/internal/model"
)

// Engine owns every stock-affecting transaction. Each mutation runs inside a
// single database transaction: either every line item and every quantity
// change commits, or none of them do. Quantity changes are single atomic
// UPDATE statements, so concurrent transactions on the same product serialize
// on the row without explicit locks and a sale can never drive stock negative.
type Engine struct {
	db *gorm.DB
}

// NewEngine creates a ledger engine on top of the given database
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// LineInput is one product position in a supply or sale request
type LineInput struct {
	ProductID uint  `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// SupplyInput is the request to create an inbound supply
type SupplyInput struct {
	StorageID  uint        `json:"storage_id"`
	SupplierID *uint       `json:"supplier_id"`
	Lines      []LineInput `json:"products"`
}

// SaleInput is the request to create an outbound sale
type SaleInput struct {
	BuyerName string      `json:"buyer_name"`
	SaleDate  *time.Time  `json:"sale_date"`
	Lines     []LineInput `json:"product_sales"`
}

// ListFilter narrows list queries to a date range and a result window
type ListFilter struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

func (f ListFilter) limit() int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	if f.Limit > maxListLimit {
		return maxListLimit
	}
	return f.Limit
}

func (f ListFilter) validate() error {
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return apperr.Validation("start date is after end date")
	}
	return nil
}

func validateLines(lines []LineInput) error {
	if len(lines) == 0 {
		return apperr.Validation("at least one product line is required")
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			return apperr.Validation("quantity for product %d must be positive", line.ProductID)
		}
	}
	return nil
}

// loadScopedProduct fetches a product with its storage and verifies that it
// belongs to the actor's company
func loadScopedProduct(tx *gorm.DB, actor Actor, productID uint) (*model.Product, error) {
	var product model.Product
	if err := tx.Preload("Storage").First(&product, productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("product")
		}
		return nil, err
	}
	if product.Storage == nil {
		return nil, apperr.NotFound("storage")
	}
	if err := checkScope(actor, product.Storage); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateSupply atomically records an inbound supply: it snapshots each
// product's purchase price into a supply line and increments its stock.
func (e *Engine) CreateSupply(actor Actor, in SupplyInput) (*model.Supply, error) {
	if err := actor.requireOwner(); err != nil {
		return nil, err
	}
	if err := validateLines(in.Lines); err != nil {
		return nil, err
	}

	var supplyID uint
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var storage model.Storage
		if err := tx.Where("id = ? AND company_id = ?", in.StorageID, actor.CompanyID).
			First(&storage).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("storage")
			}
			return err
		}

		if in.SupplierID != nil {
			var supplier model.Supplier
			if err := tx.Where("id = ? AND company_id = ?", *in.SupplierID, actor.CompanyID).
				First(&supplier).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return apperr.NotFound("supplier")
				}
				return err
			}
		}

		supply := model.Supply{
			StorageID:  storage.ID,
			SupplierID: in.SupplierID,
			CreatedBy:  actor.UserID,
		}
		if err := tx.Create(&supply).Error; err != nil {
			return err
		}

		for _, line := range in.Lines {
			product, err := loadScopedProduct(tx, actor, line.ProductID)
			if err != nil {
				return err
			}

			supplyLine := model.SupplyLine{
				SupplyID:      supply.ID,
				ProductID:     product.ID,
				Quantity:      line.Quantity,
				PurchasePrice: product.PurchasePrice,
			}
			if err := tx.Create(&supplyLine).Error; err != nil {
				return err
			}

			if err := tx.Model(&model.Product{}).Where("id = ?", product.ID).
				UpdateColumn("quantity", gorm.Expr("quantity + ?", line.Quantity)).Error; err != nil {
				return err
			}
		}

		supplyID = supply.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return e.GetSupply(actor, supplyID)
}

// CreateSale atomically records an outbound sale. Every line snapshots the
// product's selling and purchase prices and decrements stock with a
// conditional update; any line short on stock aborts the whole sale.
func (e *Engine) CreateSale(actor Actor, in SaleInput) (*model.Sale, error) {
	if err := actor.requireCompany(); err != nil {
		return nil, err
	}
	if in.BuyerName == "" {
		return nil, apperr.Validation("buyer name is required")
	}
	if err := validateLines(in.Lines); err != nil {
		return nil, err
	}

	saleDate := time.Now()
	if in.SaleDate != nil {
		saleDate = *in.SaleDate
	}

	var saleID uint
	err := e.db.Transaction(func(tx *gorm.DB) error {
		sale := model.Sale{
			CompanyID:   actor.CompanyID,
			BuyerName:   in.BuyerName,
			SaleDate:    saleDate,
			TotalAmount: decimal.Zero,
			CreatedBy:   actor.UserID,
		}
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}

		total := decimal.Zero
		for _, line := range in.Lines {
			product, err := loadScopedProduct(tx, actor, line.ProductID)
			if err != nil {
				return err
			}

			// Check-and-decrement in one statement: the row is only touched
			// when enough stock remains, so two sales racing on the last
			// units cannot both succeed.
			res := tx.Model(&model.Product{}).
				Where("id = ? AND quantity >= ?", product.ID, line.Quantity).
				UpdateColumn("quantity", gorm.Expr("quantity - ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				var available int64
				if err := tx.Model(&model.Product{}).Select("quantity").
					Where("id = ?", product.ID).Scan(&available).Error; err != nil {
					return err
				}
				return apperr.InsufficientStock(product.ID, product.Title, available)
			}

			productSale := model.ProductSale{
				SaleID:    sale.ID,
				ProductID: product.ID,
				Quantity:  line.Quantity,
				Price:     product.SellingPrice,
				CostPrice: product.PurchasePrice,
			}
			if err := tx.Create(&productSale).Error; err != nil {
				return err
			}

			total = total.Add(product.SellingPrice.Mul(decimal.NewFromInt(line.Quantity)))
		}

		if err := tx.Model(&model.Sale{}).Where("id = ?", sale.ID).
			UpdateColumn("total_amount", total).Error; err != nil {
			return err
		}

		saleID = sale.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return e.GetSale(actor, saleID)
}

// DeleteSale reverses a sale: every line's quantity is added back to its
// product, then the sale and its lines are removed, all in one transaction.
// Reversal always re-adds the line quantity rather than restoring a snapshot,
// so stock stays correct regardless of supplies and sales made in between.
func (e *Engine) DeleteSale(actor Actor, saleID uint) error {
	if err := actor.requireCompany(); err != nil {
		return err
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		// Lock the sale row for the duration of the reversal. Of two
		// concurrent deletes the loser blocks here and then sees the row
		// gone, instead of re-applying the quantity increments.
		var sale model.Sale
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND company_id = ?", saleID, actor.CompanyID).
			First(&sale).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("sale")
			}
			return err
		}

		var lines []model.ProductSale
		if err := tx.Where("sale_id = ?", sale.ID).Find(&lines).Error; err != nil {
			return err
		}

		for _, line := range lines {
			if err := tx.Model(&model.Product{}).Where("id = ?", line.ProductID).
				UpdateColumn("quantity", gorm.Expr("quantity + ?", line.Quantity)).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("sale_id = ?", sale.ID).Delete(&model.ProductSale{}).Error; err != nil {
			return err
		}
		return tx.Delete(&sale).Error
	})
}

// GetSupply returns a supply with its lines and products, scoped to the
// actor's company through the owning storage
func (e *Engine) GetSupply(actor Actor, supplyID uint) (*model.Supply, error) {
	if err := actor.requireCompany(); err != nil {
		return nil, err
	}

	var supply model.Supply
	err := e.db.
		Joins("JOIN storages ON storages.id = supplies.storage_id").
		Where("supplies.id = ? AND storages.company_id = ?", supplyID, actor.CompanyID).
		Preload("Storage").
		Preload("Supplier").
		Preload("Lines.Product").
		First(&supply).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("supply")
		}
		return nil, err
	}
	return &supply, nil
}

// ListSupplies returns the company's supplies, newest first
func (e *Engine) ListSupplies(actor Actor, filter ListFilter) ([]model.Supply, error) {
	if err := actor.requireCompany(); err != nil {
		return nil, err
	}
	if err := filter.validate(); err != nil {
		return nil, err
	}

	query := e.db.
		Joins("JOIN storages ON storages.id = supplies.storage_id").
		Where("storages.company_id = ?", actor.CompanyID)
	if filter.From != nil {
		query = query.Where("supplies.created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("supplies.created_at < ?", *filter.To)
	}

	var supplies []model.Supply
	err := query.
		Preload("Storage").
		Preload("Supplier").
		Preload("Lines.Product").
		Order("supplies.created_at DESC").
		Limit(filter.limit()).
		Offset(filter.Offset).
		Find(&supplies).Error
	if err != nil {
		return nil, err
	}
	return supplies, nil
}

// GetSale returns a sale with its lines and products, scoped to the actor's
// company
func (e *Engine) GetSale(actor Actor, saleID uint) (*model.Sale, error) {
	if err := actor.requireCompany(); err != nil {
		return nil, err
	}

	var sale model.Sale
	err := e.db.
		Where("id = ? AND company_id = ?", saleID, actor.CompanyID).
		Preload("Lines.Product").
		First(&sale).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("sale")
		}
		return nil, err
	}
	return &sale, nil
}

// ListSales returns the company's sales, newest first by sale date
func (e *Engine) ListSales(actor Actor, filter ListFilter) ([]model.Sale, error) {
	if err := actor.requireCompany(); err != nil {
		return nil, err
	}
	if err := filter.validate(); err != nil {
		return nil, err
	}

	query := e.db.Where("company_id = ?", actor.CompanyID)
	if filter.From != nil {
		query = query.Where("sale_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("sale_date < ?", *filter.To)
	}

	var sales []model.Sale
	err := query.
		Preload("Lines.Product").
		Order("sale_date DESC").
		Limit(filter.limit()).
		Offset(filter.Offset).
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}
