package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report periods for cached sales reports
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// SalesReport is a precomputed aggregation snapshot. It is purely a cache:
// rebuilding a report for the same company, period and date replaces the row.
type SalesReport struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	CompanyID  uint            `json:"company_id" gorm:"not null;uniqueIndex:idx_company_period_date"`
	Period     string          `json:"period" gorm:"type:varchar(10);not null;uniqueIndex:idx_company_period_date"`
	ReportDate time.Time       `json:"report_date" gorm:"not null;uniqueIndex:idx_company_period_date"`
	TotalSales decimal.Decimal `json:"total_sales" gorm:"type:decimal(12,2);default:0"`
	NetProfit  decimal.Decimal `json:"net_profit" gorm:"type:decimal(12,2);default:0"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
