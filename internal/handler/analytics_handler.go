package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-service/pkg/logger"
	"inventory-service/prometheus"
)

// GetSummary returns aggregated totals and top-product rankings for the
// caller's company
func GetSummary(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}

	from, to, err := parseDateRange(c)
	if err != nil {
		return respondError(c, log, err)
	}

	defer prometheus.TrackDBOperation("analytics_summary")(time.Now())
	summary, err := engine().Summarize(actor, from, to)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Summary computed",
		zap.Time("from", summary.From),
		zap.Time("to", summary.To),
		zap.String("total_sales", summary.TotalSales.String()))
	return c.JSON(http.StatusOK, summary)
}

// GetTimeSeries returns day/week bucketed aggregates for charting
func GetTimeSeries(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}

	from, to, err := parseDateRange(c)
	if err != nil {
		return respondError(c, log, err)
	}

	defer prometheus.TrackDBOperation("analytics_timeseries")(time.Now())
	series, err := engine().TimeSeries(actor, from, to)
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, series)
}

// SalesReportRequest defines the structure for report build requests
type SalesReportRequest struct {
	Period string `json:"period"`
	Date   string `json:"date"`
}

// BuildSalesReport computes and caches an aggregation snapshot
func BuildSalesReport(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}

	var req SalesReportRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	date := time.Now()
	if req.Date != "" {
		if date, err = parseDate(req.Date); err != nil {
			return respondError(c, log, err)
		}
	}

	report, err := engine().BuildSalesReport(actor, req.Period, date)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Sales report built",
		zap.String("period", report.Period),
		zap.Time("report_date", report.ReportDate))
	return c.JSON(http.StatusCreated, report)
}

// ListSalesReports returns cached aggregation snapshots
func ListSalesReports(c echo.Context) error {
	log := logger.FromContext(c)
	actor, err := actorOrReject(c)
	if err != nil {
		return err
	}

	reports, err := engine().ListSalesReports(actor, c.QueryParam("period"))
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, reports)
}
