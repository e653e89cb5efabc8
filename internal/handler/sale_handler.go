package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-service/internal/ledger"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"
)

// SaleRequest defines the structure for sale creation requests. SaleDate is
// optional and accepts a date or an RFC 3339 timestamp.
type SaleRequest struct {
	BuyerName string             `json:"buyer_name"`
	SaleDate  string             `json:"sale_date"`
	Lines     []ledger.LineInput `json:"product_sales"`
}

// CreateSale records an outbound sale and decrements product stock
func CreateSale(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}

	var req SaleRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	in := ledger.SaleInput{
		BuyerName: req.BuyerName,
		Lines:     req.Lines,
	}
	if req.SaleDate != "" {
		saleDate, err := parseDate(req.SaleDate)
		if err != nil {
			return respondError(c, log, err)
		}
		in.SaleDate = &saleDate
	}

	sale, err := engine().CreateSale(actor, in)
	if err != nil {
		log.Warn("Sale creation rejected", zap.Error(err))
		return respondError(c, log, err)
	}

	prometheus.RecordLedgerOperation("sale_create")
	total, _ := sale.TotalAmount.Float64()
	prometheus.SaleTotalAmountHistogram.Observe(total)
	for _, line := range sale.Lines {
		if line.Product != nil {
			prometheus.UpdateProductStock(line.ProductID, line.Product.Title, line.Product.Quantity)
		}
	}
	log.Info("Sale created successfully",
		zap.Uint("sale_id", sale.ID),
		zap.String("buyer_name", sale.BuyerName),
		zap.Int("lines", len(sale.Lines)),
		zap.String("total_amount", sale.TotalAmount.String()))
	return c.JSON(http.StatusCreated, sale)
}

// GetSale returns a sale with its lines
func GetSale(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	sale, err := engine().GetSale(actor, id)
	if err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, sale)
}

// ListSales returns the company's sales with optional date filtering
func ListSales(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}

	filter, err := parseListFilter(c)
	if err != nil {
		return respondError(c, log, err)
	}

	sales, err := engine().ListSales(actor, filter)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Sales retrieved successfully", zap.Int("count", len(sales)))
	return c.JSON(http.StatusOK, sales)
}

// DeleteSale reverses a sale, returning each line's quantity to stock
func DeleteSale(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	if err := engine().DeleteSale(actor, id); err != nil {
		log.Warn("Sale deletion rejected", zap.Uint("sale_id", id), zap.Error(err))
		return respondError(c, log, err)
	}

	prometheus.RecordLedgerOperation("sale_delete")
	log.Info("Sale reversed successfully", zap.Uint("sale_id", id))
	return c.NoContent(http.StatusNoContent)
}
