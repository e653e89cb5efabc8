package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-service/internal/apperr"
	"inventory-service/internal/model"
	"inventory-service/pkg/database"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"
)

// SupplierRequest defines the structure for supplier creation/update requests
type SupplierRequest struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

// ListSuppliers returns the caller's company suppliers
func ListSuppliers(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}
	if actor.CompanyID == 0 {
		return respondError(c, log, apperr.Forbidden("user is not attached to a company"))
	}

	var suppliers []model.Supplier
	result := database.GetDB().Where("company_id = ?", actor.CompanyID).Find(&suppliers)
	if result.Error != nil {
		log.Error("Failed to list suppliers", zap.Error(result.Error))
		return respondError(c, log, result.Error)
	}

	return c.JSON(http.StatusOK, suppliers)
}

// CreateSupplier creates a supplier in the caller's company (owner only)
func CreateSupplier(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}
	if actor.CompanyID == 0 || !actor.IsOwner {
		return respondError(c, log, apperr.Forbidden("only the company owner can create suppliers"))
	}

	var req SupplierRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" {
		return respondError(c, log, apperr.Validation("name is required"))
	}

	supplier := model.Supplier{
		CompanyID:     actor.CompanyID,
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
	}
	if result := database.GetDB().Create(&supplier); result.Error != nil {
		log.Error("Failed to create supplier", zap.Error(result.Error))
		return respondError(c, log, result.Error)
	}

	prometheus.RecordCatalogOperation("supplier", "create")
	log.Info("Supplier created successfully",
		zap.Uint("supplier_id", supplier.ID),
		zap.String("name", supplier.Name))
	return c.JSON(http.StatusCreated, supplier)
}

// GetSupplier returns a single supplier scoped to the caller's company
func GetSupplier(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var supplier model.Supplier
	result := database.GetDB().Where("id = ? AND company_id = ?", id, actor.CompanyID).First(&supplier)
	if result.Error != nil {
		log.Warn("Supplier not found", zap.Uint("supplier_id", id))
		return respondError(c, log, apperr.NotFound("supplier"))
	}

	return c.JSON(http.StatusOK, supplier)
}

// UpdateSupplier updates supplier contact details (owner only)
func UpdateSupplier(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}
	if !actor.IsOwner {
		return respondError(c, log, apperr.Forbidden("only the company owner can update suppliers"))
	}

	id, err := parseID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var req SupplierRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" {
		return respondError(c, log, apperr.Validation("name is required"))
	}

	var supplier model.Supplier
	result := database.GetDB().Where("id = ? AND company_id = ?", id, actor.CompanyID).First(&supplier)
	if result.Error != nil {
		log.Warn("Supplier not found for update", zap.Uint("supplier_id", id))
		return respondError(c, log, apperr.NotFound("supplier"))
	}

	supplier.Name = req.Name
	supplier.ContactPerson = req.ContactPerson
	supplier.Phone = req.Phone
	supplier.Email = req.Email
	supplier.Address = req.Address

	if result := database.GetDB().Save(&supplier); result.Error != nil {
		log.Error("Failed to update supplier", zap.Error(result.Error))
		return respondError(c, log, result.Error)
	}

	prometheus.RecordCatalogOperation("supplier", "update")
	return c.JSON(http.StatusOK, supplier)
}

// DeleteSupplier removes a supplier (owner only). Historical supplies keep
// their rows with the supplier reference set to null.
func DeleteSupplier(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}
	if !actor.IsOwner {
		return respondError(c, log, apperr.Forbidden("only the company owner can delete suppliers"))
	}

	id, err := parseID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	db := database.GetDB()
	var supplier model.Supplier
	if result := db.Where("id = ? AND company_id = ?", id, actor.CompanyID).First(&supplier); result.Error != nil {
		log.Warn("Supplier not found for deletion", zap.Uint("supplier_id", id))
		return respondError(c, log, apperr.NotFound("supplier"))
	}

	// Detach history first so the supply records survive the delete
	if result := db.Model(&model.Supply{}).Where("supplier_id = ?", supplier.ID).
		Update("supplier_id", nil); result.Error != nil {
		log.Error("Failed to detach supplies from supplier", zap.Error(result.Error))
		return respondError(c, log, result.Error)
	}
	if result := db.Delete(&supplier); result.Error != nil {
		log.Error("Failed to delete supplier", zap.Error(result.Error))
		return respondError(c, log, result.Error)
	}

	prometheus.RecordCatalogOperation("supplier", "delete")
	log.Info("Supplier deleted successfully", zap.Uint("supplier_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Supplier deleted successfully"})
}
