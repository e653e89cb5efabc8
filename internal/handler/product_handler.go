package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"inventory-service/internal/apperr"
	"inventory-service/internal/model"
	"inventory-service/pkg/database"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"
)

// ProductRequest defines the structure for product creation/update requests.
// Quantity is never part of the request: stock only changes through the
// ledger engine.
type ProductRequest struct {
	StorageID     uint            `json:"storage_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
}

func (r *ProductRequest) validate() error {
	if r.Title == "" {
		return apperr.Validation("title is required")
	}
	if r.PurchasePrice.IsNegative() || r.SellingPrice.IsNegative() {
		return apperr.Validation("prices must not be negative")
	}
	return nil
}

// ListProducts returns the company's products with optional storage filtering
func ListProducts(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}
	if actor.CompanyID == 0 {
		return respondError(c, log, apperr.Forbidden("user is not attached to a company"))
	}

	query := database.GetDB().
		Joins("JOIN storages ON storages.id = products.storage_id").
		Where("storages.company_id = ?", actor.CompanyID)

	// Filter by storage if specified
	if storageID := c.QueryParam("storage_id"); storageID != "" {
		query = query.Where("products.storage_id = ?", storageID)
		log.Info("Filtering products by storage", zap.String("storage_id", storageID))
	}

	var products []model.Product
	if result := query.Find(&products); result.Error != nil {
		log.Error("Failed to list products", zap.Error(result.Error))
		return respondError(c, log, result.Error)
	}

	log.Info("Products retrieved successfully", zap.Int("count", len(products)))
	return c.JSON(http.StatusOK, products)
}

// GetProduct returns a single product scoped to the caller's company
func GetProduct(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var product model.Product
	result := database.GetDB().
		Joins("JOIN storages ON storages.id = products.storage_id").
		Where("products.id = ? AND storages.company_id = ?", id, actor.CompanyID).
		First(&product)
	if result.Error != nil {
		log.Warn("Product not found", zap.Uint("product_id", id))
		return respondError(c, log, apperr.NotFound("product"))
	}

	return c.JSON(http.StatusOK, product)
}

// CreateProduct registers a new product in one of the company's storages.
// New products always start with zero stock.
func CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}
	if actor.CompanyID == 0 {
		return respondError(c, log, apperr.Forbidden("user is not attached to a company"))
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := req.validate(); err != nil {
		return respondError(c, log, err)
	}

	var storage model.Storage
	if result := database.GetDB().First(&storage, req.StorageID); result.Error != nil {
		log.Warn("Storage not found", zap.Uint("storage_id", req.StorageID))
		return respondError(c, log, apperr.NotFound("storage"))
	}
	if storage.CompanyID != actor.CompanyID {
		return respondError(c, log, apperr.Forbidden("cannot add products to this storage"))
	}

	product := model.Product{
		StorageID:     storage.ID,
		Title:         req.Title,
		Description:   req.Description,
		Quantity:      0,
		PurchasePrice: req.PurchasePrice,
		SellingPrice:  req.SellingPrice,
	}
	if result := database.GetDB().Create(&product); result.Error != nil {
		log.Error("Failed to create product", zap.Error(result.Error))
		return respondError(c, log, result.Error)
	}

	prometheus.RecordCatalogOperation("product", "create")
	prometheus.UpdateProductStock(product.ID, product.Title, product.Quantity)
	log.Info("Product created successfully",
		zap.Uint("product_id", product.ID),
		zap.String("title", product.Title))
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct updates product metadata and prices. Quantity is untouched.
func UpdateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := req.validate(); err != nil {
		return respondError(c, log, err)
	}

	var product model.Product
	result := database.GetDB().
		Joins("JOIN storages ON storages.id = products.storage_id").
		Where("products.id = ? AND storages.company_id = ?", id, actor.CompanyID).
		First(&product)
	if result.Error != nil {
		log.Warn("Product not found for update", zap.Uint("product_id", id))
		return respondError(c, log, apperr.NotFound("product"))
	}

	updates := map[string]interface{}{
		"title":          req.Title,
		"description":    req.Description,
		"purchase_price": req.PurchasePrice,
		"selling_price":  req.SellingPrice,
	}
	if result := database.GetDB().Model(&product).Updates(updates); result.Error != nil {
		log.Error("Failed to update product", zap.Error(result.Error))
		return respondError(c, log, result.Error)
	}

	prometheus.RecordCatalogOperation("product", "update")
	log.Info("Product updated successfully",
		zap.Uint("product_id", product.ID),
		zap.String("title", product.Title))
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product that has no sale history. Products
// referenced by sale lines are kept so the ledger stays consistent.
func DeleteProduct(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	db := database.GetDB()
	var product model.Product
	result := db.
		Joins("JOIN storages ON storages.id = products.storage_id").
		Where("products.id = ? AND storages.company_id = ?", id, actor.CompanyID).
		First(&product)
	if result.Error != nil {
		log.Warn("Product not found for deletion", zap.Uint("product_id", id))
		return respondError(c, log, apperr.NotFound("product"))
	}

	var saleLines int64
	if result := db.Model(&model.ProductSale{}).
		Where("product_id = ?", product.ID).Count(&saleLines); result.Error != nil {
		log.Error("Failed to count sale lines for product", zap.Error(result.Error))
		return respondError(c, log, result.Error)
	}
	if saleLines > 0 {
		log.Warn("Product has sale history and cannot be deleted",
			zap.Uint("product_id", product.ID),
			zap.Int64("sale_lines", saleLines))
		return respondError(c, log, apperr.Conflict("product is referenced by sales and cannot be deleted"))
	}

	if result := db.Delete(&product); result.Error != nil {
		log.Error("Failed to delete product", zap.Error(result.Error))
		return respondError(c, log, result.Error)
	}

	prometheus.RecordCatalogOperation("product", "delete")
	log.Info("Product deleted successfully", zap.Uint("product_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully"})
}
