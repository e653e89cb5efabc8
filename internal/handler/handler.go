package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-service/internal/apperr"
	"inventory-service/internal/ledger"
	"inventory-service/internal/middleware"
	"inventory-service/pkg/database"
	"inventory-service/prometheus"
)

const dateLayout = "2006-01-02"

// engine returns a ledger engine bound to the application database
func engine() *ledger.Engine {
	return ledger.NewEngine(database.GetDB())
}

// actorOrReject extracts the resolved actor or rejects the request
func actorOrReject(c echo.Context) (ledger.Actor, error) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return ledger.Actor{}, c.JSON(http.StatusUnauthorized, echo.Map{
			"error": "missing authentication context",
		})
	}
	return actor, nil
}

// parseID parses the :id path parameter
func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, apperr.Validation("invalid id %q", c.Param("id"))
	}
	return uint(id), nil
}

// parseDate accepts a plain date or an RFC 3339 timestamp
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid date %q", value)
	}
	return t, nil
}

// parseDateRange reads the optional start_date/end_date query parameters.
// A date-only end_date covers the whole day.
func parseDateRange(c echo.Context) (*time.Time, *time.Time, error) {
	var from, to *time.Time

	if value := c.QueryParam("start_date"); value != "" {
		t, err := parseDate(value)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if value := c.QueryParam("end_date"); value != "" {
		t, err := parseDate(value)
		if err != nil {
			return nil, nil, err
		}
		if _, parseErr := time.Parse(dateLayout, value); parseErr == nil {
			t = t.AddDate(0, 0, 1)
		}
		to = &t
	}
	return from, to, nil
}

// parseListFilter combines the date range with limit/offset pagination
func parseListFilter(c echo.Context) (ledger.ListFilter, error) {
	from, to, err := parseDateRange(c)
	if err != nil {
		return ledger.ListFilter{}, err
	}

	filter := ledger.ListFilter{From: from, To: to}
	if value := c.QueryParam("limit"); value != "" {
		if limit, err := strconv.Atoi(value); err == nil {
			filter.Limit = limit
		}
	}
	if value := c.QueryParam("offset"); value != "" {
		if offset, err := strconv.Atoi(value); err == nil && offset > 0 {
			filter.Offset = offset
		}
	}
	return filter, nil
}

// respondError maps application errors to HTTP responses
func respondError(c echo.Context, log *zap.Logger, err error) error {
	var e *apperr.Error
	if !errors.As(err, &e) {
		log.Error("Unhandled error", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "internal server error",
		})
	}

	status := http.StatusInternalServerError
	switch e.Kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindForbidden:
		status = http.StatusForbidden
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindInsufficientStock, apperr.KindConflict:
		status = http.StatusConflict
	}

	payload := echo.Map{
		"error": e.Message,
		"kind":  e.Kind,
	}
	if e.Kind == apperr.KindInsufficientStock {
		prometheus.InsufficientStockCounter.Inc()
		payload["product_id"] = e.ProductID
		payload["available"] = e.Available
	}
	if apperr.IsRetryable(e) {
		payload["retryable"] = true
	}
	return c.JSON(status, payload)
}
