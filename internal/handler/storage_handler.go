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

// StorageRequest defines the structure for storage creation/update requests
type StorageRequest struct {
	Address string `json:"address"`
}

// ListStorages returns the caller's company storages
func ListStorages(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}
	if actor.CompanyID == 0 {
		return respondError(c, log, apperr.Forbidden("user is not attached to a company"))
	}

	var storages []model.Storage
	result := database.GetDB().Where("company_id = ?", actor.CompanyID).Find(&storages)
	if result.Error != nil {
		log.Error("Failed to list storages", zap.Error(result.Error))
		return respondError(c, log, result.Error)
	}

	return c.JSON(http.StatusOK, storages)
}

// CreateStorage creates a storage in the caller's company (owner only)
func CreateStorage(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}
	if actor.CompanyID == 0 || !actor.IsOwner {
		return respondError(c, log, apperr.Forbidden("only the company owner can create storages"))
	}

	var req StorageRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Address == "" {
		return respondError(c, log, apperr.Validation("address is required"))
	}

	storage := model.Storage{
		Address:   req.Address,
		CompanyID: actor.CompanyID,
	}
	if result := database.GetDB().Create(&storage); result.Error != nil {
		log.Error("Failed to create storage", zap.Error(result.Error))
		return respondError(c, log, result.Error)
	}

	prometheus.RecordCatalogOperation("storage", "create")
	log.Info("Storage created successfully",
		zap.Uint("storage_id", storage.ID),
		zap.String("address", storage.Address))
	return c.JSON(http.StatusCreated, storage)
}

// GetStorage returns a single storage scoped to the caller's company
func GetStorage(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var storage model.Storage
	result := database.GetDB().Where("id = ? AND company_id = ?", id, actor.CompanyID).First(&storage)
	if result.Error != nil {
		log.Warn("Storage not found", zap.Uint("storage_id", id))
		return respondError(c, log, apperr.NotFound("storage"))
	}

	return c.JSON(http.StatusOK, storage)
}

// UpdateStorage updates a storage address (owner only)
func UpdateStorage(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}
	if !actor.IsOwner {
		return respondError(c, log, apperr.Forbidden("only the company owner can update storages"))
	}

	id, err := parseID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var req StorageRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Address == "" {
		return respondError(c, log, apperr.Validation("address is required"))
	}

	var storage model.Storage
	result := database.GetDB().Where("id = ? AND company_id = ?", id, actor.CompanyID).First(&storage)
	if result.Error != nil {
		log.Warn("Storage not found for update", zap.Uint("storage_id", id))
		return respondError(c, log, apperr.NotFound("storage"))
	}

	storage.Address = req.Address
	if result := database.GetDB().Save(&storage); result.Error != nil {
		log.Error("Failed to update storage", zap.Error(result.Error))
		return respondError(c, log, result.Error)
	}

	prometheus.RecordCatalogOperation("storage", "update")
	return c.JSON(http.StatusOK, storage)
}

// DeleteStorage removes a storage (owner only)
func DeleteStorage(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}
	if !actor.IsOwner {
		return respondError(c, log, apperr.Forbidden("only the company owner can delete storages"))
	}

	id, err := parseID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	result := database.GetDB().Where("id = ? AND company_id = ?", id, actor.CompanyID).Delete(&model.Storage{})
	if result.Error != nil {
		log.Error("Failed to delete storage", zap.Error(result.Error))
		return respondError(c, log, result.Error)
	}
	if result.RowsAffected == 0 {
		log.Warn("Storage not found for deletion", zap.Uint("storage_id", id))
		return respondError(c, log, apperr.NotFound("storage"))
	}

	prometheus.RecordCatalogOperation("storage", "delete")
	log.Info("Storage deleted successfully", zap.Uint("storage_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Storage deleted successfully"})
}
