package ledger

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"inventory-service/internal/apperr"
	"inventory-service/internal/model"
)

// Default aggregation window when the caller gives no range
const defaultSummaryWindow = 30 * 24 * time.Hour

const topProductsLimit = 5

// ProductStat is one row of a top-products ranking
type ProductStat struct {
	ProductID uint            `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int64           `json:"quantity"`
	Profit    decimal.Decimal `json:"profit"`
}

// Summary aggregates the committed sales ledger over a date range
type Summary struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	TopByQuantity []ProductStat   `json:"top_products_by_quantity"`
	TopByProfit   []ProductStat   `json:"top_products_by_profit"`
}

// RevenuePoint is a day bucket of sale revenue
type RevenuePoint struct {
	Day   time.Time       `json:"day"`
	Total decimal.Decimal `json:"total"`
}

// ProfitPoint is an ISO-week bucket of sale profit
type ProfitPoint struct {
	WeekStart time.Time       `json:"week_start"`
	Profit    decimal.Decimal `json:"profit"`
}

// Series holds bucketed ledger aggregates for charting. It is derived from a
// fresh range query on every call; there is no cursor state to resume.
type Series struct {
	From         time.Time      `json:"from"`
	To           time.Time      `json:"to"`
	DailyRevenue []RevenuePoint `json:"daily_revenue"`
	WeeklyProfit []ProfitPoint  `json:"weekly_profit"`
	TopProducts  []ProductStat  `json:"top_products"`
}

// resolveRange fills in the default trailing window and validates order.
// The range is inclusive of from and exclusive of to.
func resolveRange(from, to *time.Time) (time.Time, time.Time, error) {
	end := time.Now()
	if to != nil {
		end = *to
	}
	start := end.Add(-defaultSummaryWindow)
	if from != nil {
		start = *from
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, apperr.Validation("start date is after end date")
	}
	return start, end, nil
}

// salesInRange scopes a query to the company's sales within [from, to)
func salesInRange(db *gorm.DB, companyID uint, from, to time.Time) *gorm.DB {
	return db.Model(&model.Sale{}).
		Where("company_id = ? AND sale_date >= ? AND sale_date < ?", companyID, from, to)
}

// lineAggregates runs a grouped aggregation over sale lines in range. Profit
// is computed from the per-line price and cost snapshots, so past reports do
// not move when a product's current prices change.
func lineAggregates(db *gorm.DB, companyID uint, from, to time.Time, orderBy string) ([]ProductStat, error) {
	var stats []ProductStat
	err := db.Table("product_sales").
		Select("product_sales.product_id AS product_id, products.title AS title, "+
			"SUM(product_sales.quantity) AS quantity, "+
			"COALESCE(SUM(product_sales.quantity * (product_sales.price - product_sales.cost_price)), 0) AS profit").
		Joins("JOIN sales ON sales.id = product_sales.sale_id").
		Joins("JOIN products ON products.id = product_sales.product_id").
		Where("sales.company_id = ? AND sales.sale_date >= ? AND sales.sale_date < ?", companyID, from, to).
		Group("product_sales.product_id, products.title").
		Order(orderBy).
		Limit(topProductsLimit).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Summarize computes total revenue, net profit and top-product rankings for
// the actor's company. It is read-only.
func (e *Engine) Summarize(actor Actor, from, to *time.Time) (*Summary, error) {
	if err := actor.requireCompany(); err != nil {
		return nil, err
	}
	start, end, err := resolveRange(from, to)
	if err != nil {
		return nil, err
	}

	summary := &Summary{From: start, To: end}

	var totalSales decimal.NullDecimal
	if err := salesInRange(e.db, actor.CompanyID, start, end).
		Select("SUM(total_amount)").Scan(&totalSales).Error; err != nil {
		return nil, err
	}
	summary.TotalSales = totalSales.Decimal

	var netProfit decimal.NullDecimal
	if err := e.db.Table("product_sales").
		Select("SUM(product_sales.quantity * (product_sales.price - product_sales.cost_price))").
		Joins("JOIN sales ON sales.id = product_sales.sale_id").
		Where("sales.company_id = ? AND sales.sale_date >= ? AND sales.sale_date < ?", actor.CompanyID, start, end).
		Scan(&netProfit).Error; err != nil {
		return nil, err
	}
	summary.NetProfit = netProfit.Decimal

	if summary.TopByQuantity, err = lineAggregates(e.db, actor.CompanyID, start, end, "quantity DESC"); err != nil {
		return nil, err
	}
	if summary.TopByProfit, err = lineAggregates(e.db, actor.CompanyID, start, end, "profit DESC"); err != nil {
		return nil, err
	}
	return summary, nil
}

// dayStart truncates a timestamp to the start of its day
func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// weekStart truncates a timestamp to the Monday of its ISO week
func weekStart(t time.Time) time.Time {
	day := dayStart(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// TimeSeries buckets the company's sales into daily revenue and weekly profit
// rows plus a top-products ranking. Buckets are ordered oldest first.
func (e *Engine) TimeSeries(actor Actor, from, to *time.Time) (*Series, error) {
	if err := actor.requireCompany(); err != nil {
		return nil, err
	}
	start, end, err := resolveRange(from, to)
	if err != nil {
		return nil, err
	}

	series := &Series{From: start, To: end}

	var sales []model.Sale
	if err := salesInRange(e.db, actor.CompanyID, start, end).
		Order("sale_date ASC").Find(&sales).Error; err != nil {
		return nil, err
	}

	daily := map[time.Time]decimal.Decimal{}
	for _, sale := range sales {
		day := dayStart(sale.SaleDate)
		daily[day] = daily[day].Add(sale.TotalAmount)
	}
	for _, sale := range sales {
		day := dayStart(sale.SaleDate)
		if total, ok := daily[day]; ok {
			series.DailyRevenue = append(series.DailyRevenue, RevenuePoint{Day: day, Total: total})
			delete(daily, day)
		}
	}

	type lineRow struct {
		SaleDate  time.Time
		Quantity  int64
		Price     decimal.Decimal
		CostPrice decimal.Decimal
	}
	var lines []lineRow
	if err := e.db.Table("product_sales").
		Select("sales.sale_date AS sale_date, product_sales.quantity AS quantity, "+
			"product_sales.price AS price, product_sales.cost_price AS cost_price").
		Joins("JOIN sales ON sales.id = product_sales.sale_id").
		Where("sales.company_id = ? AND sales.sale_date >= ? AND sales.sale_date < ?", actor.CompanyID, start, end).
		Order("sales.sale_date ASC").
		Scan(&lines).Error; err != nil {
		return nil, err
	}

	weekly := map[time.Time]decimal.Decimal{}
	for _, line := range lines {
		week := weekStart(line.SaleDate)
		profit := line.Price.Sub(line.CostPrice).Mul(decimal.NewFromInt(line.Quantity))
		weekly[week] = weekly[week].Add(profit)
	}
	for _, line := range lines {
		week := weekStart(line.SaleDate)
		if profit, ok := weekly[week]; ok {
			series.WeeklyProfit = append(series.WeeklyProfit, ProfitPoint{WeekStart: week, Profit: profit})
			delete(weekly, week)
		}
	}

	if series.TopProducts, err = lineAggregates(e.db, actor.CompanyID, start, end, "quantity DESC"); err != nil {
		return nil, err
	}
	return series, nil
}
