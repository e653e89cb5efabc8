package ledger

import (
	"time"

	"gorm.io/gorm/clause"

	"inventory-service/internal/apperr"
	"inventory-service/internal/model"
)

// reportRange maps a period and a date inside it to the covered [from, to)
// interval
func reportRange(period string, date time.Time) (time.Time, time.Time, error) {
	switch period {
	case model.PeriodDay:
		from := dayStart(date)
		return from, from.AddDate(0, 0, 1), nil
	case model.PeriodWeek:
		from := weekStart(date)
		return from, from.AddDate(0, 0, 7), nil
	case model.PeriodMonth:
		y, m, _ := date.Date()
		from := time.Date(y, m, 1, 0, 0, 0, 0, date.Location())
		return from, from.AddDate(0, 1, 0), nil
	default:
		return time.Time{}, time.Time{}, apperr.Validation("unknown report period %q", period)
	}
}

// BuildSalesReport computes the period's totals and caches them as a
// SalesReport row. Rebuilding the same period replaces the cached row; the
// report is never consulted for correctness, only for cheap reads.
func (e *Engine) BuildSalesReport(actor Actor, period string, date time.Time) (*model.SalesReport, error) {
	if err := actor.requireCompany(); err != nil {
		return nil, err
	}

	from, to, err := reportRange(period, date)
	if err != nil {
		return nil, err
	}

	summary, err := e.Summarize(actor, &from, &to)
	if err != nil {
		return nil, err
	}

	report := model.SalesReport{
		CompanyID:  actor.CompanyID,
		Period:     period,
		ReportDate: from,
		TotalSales: summary.TotalSales,
		NetProfit:  summary.NetProfit,
	}
	err = e.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "company_id"}, {Name: "period"}, {Name: "report_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_sales", "net_profit", "updated_at",
		}),
	}).Create(&report).Error
	if err != nil {
		return nil, err
	}

	// Re-read so the caller sees the stored row on rebuilds as well
	var stored model.SalesReport
	if err := e.db.Where("company_id = ? AND period = ? AND report_date = ?",
		actor.CompanyID, period, from).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// ListSalesReports returns the company's cached reports, newest first.
// An empty period lists every period.
func (e *Engine) ListSalesReports(actor Actor, period string) ([]model.SalesReport, error) {
	if err := actor.requireCompany(); err != nil {
		return nil, err
	}
	if period != "" && period != model.PeriodDay && period != model.PeriodWeek && period != model.PeriodMonth {
		return nil, apperr.Validation("unknown report period %q", period)
	}

	query := e.db.Where("company_id = ?", actor.CompanyID)
	if period != "" {
		query = query.Where("period = ?", period)
	}

	var reports []model.SalesReport
	if err := query.Order("report_date DESC").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}
