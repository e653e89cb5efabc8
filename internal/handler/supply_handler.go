package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-service/internal/ledger"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"
)

// CreateSupply records an inbound supply and increments product stock
func CreateSupply(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}

	var in ledger.SupplyInput
	if err := c.Bind(&in); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	supply, err := engine().CreateSupply(actor, in)
	if err != nil {
		log.Warn("Supply creation rejected", zap.Error(err))
		return respondError(c, log, err)
	}

	prometheus.RecordLedgerOperation("supply_create")
	for _, line := range supply.Lines {
		if line.Product != nil {
			prometheus.UpdateProductStock(line.ProductID, line.Product.Title, line.Product.Quantity)
		}
	}
	log.Info("Supply created successfully",
		zap.Uint("supply_id", supply.ID),
		zap.Uint("storage_id", supply.StorageID),
		zap.Int("lines", len(supply.Lines)))
	return c.JSON(http.StatusCreated, supply)
}

// GetSupply returns a supply with its lines
func GetSupply(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	supply, err := engine().GetSupply(actor, id)
	if err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, supply)
}

// ListSupplies returns the company's supplies with optional date filtering
func ListSupplies(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}

	filter, err := parseListFilter(c)
	if err != nil {
		return respondError(c, log, err)
	}

	supplies, err := engine().ListSupplies(actor, filter)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Supplies retrieved successfully", zap.Int("count", len(supplies)))
	return c.JSON(http.StatusOK, supplies)
}
