package ledger_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"inventory-service/internal/apperr"
	"inventory-service/internal/ledger"
	"inventory-service/internal/model"
	"inventory-service/pkg/database"
)

// newTestEngine opens an isolated in-memory database. A single pooled
// connection keeps the shared-cache database alive for the whole test and
// serializes concurrent transactions.
func newTestEngine(t *testing.T) (*ledger.Engine, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return ledger.NewEngine(db), db
}

func seedCompany(t *testing.T, db *gorm.DB, inn string) *model.Company {
	t.Helper()
	company := model.Company{INN: inn, Title: "Company " + inn}
	require.NoError(t, db.Create(&company).Error)
	return &company
}

func seedStorage(t *testing.T, db *gorm.DB, companyID uint) *model.Storage {
	t.Helper()
	storage := model.Storage{Address: "Warehouse street 1", CompanyID: companyID}
	require.NoError(t, db.Create(&storage).Error)
	return &storage
}

func seedSupplier(t *testing.T, db *gorm.DB, companyID uint, name string) *model.Supplier {
	t.Helper()
	supplier := model.Supplier{CompanyID: companyID, Name: name}
	require.NoError(t, db.Create(&supplier).Error)
	return &supplier
}

func seedProduct(t *testing.T, db *gorm.DB, storageID uint, title string, quantity int64, purchase, selling string) *model.Product {
	t.Helper()
	product := model.Product{
		StorageID:     storageID,
		Title:         title,
		Quantity:      quantity,
		PurchasePrice: decimal.RequireFromString(purchase),
		SellingPrice:  decimal.RequireFromString(selling),
	}
	require.NoError(t, db.Create(&product).Error)
	return &product
}

func productQuantity(t *testing.T, db *gorm.DB, productID uint) int64 {
	t.Helper()
	var product model.Product
	require.NoError(t, db.First(&product, productID).Error)
	return product.Quantity
}

func requireDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	require.True(t, decimal.RequireFromString(expected).Equal(actual),
		"expected %s, got %s", expected, actual.String())
}

func owner(companyID uint) ledger.Actor {
	return ledger.Actor{UserID: 1, CompanyID: companyID, IsOwner: true}
}

func member(companyID uint) ledger.Actor {
	return ledger.Actor{UserID: 2, CompanyID: companyID}
}

// ── Supplies ──────────────────────────────────────────────────────────────────

func TestCreateSupply_IncrementsStockAndSnapshotsPrice(t *testing.T) {
	engine, db := newTestEngine(t)
	company := seedCompany(t, db, "111111111111")
	storage := seedStorage(t, db, company.ID)
	supplier := seedSupplier(t, db, company.ID, "Acme")
	product := seedProduct(t, db, storage.ID, "Bolt", 0, "10.50", "15.00")

	supply, err := engine.CreateSupply(owner(company.ID), ledger.SupplyInput{
		StorageID:  storage.ID,
		SupplierID: &supplier.ID,
		Lines:      []ledger.LineInput{{ProductID: product.ID, Quantity: 10}},
	})
	require.NoError(t, err)
	require.Len(t, supply.Lines, 1)

	requireDecimal(t, "10.50", supply.Lines[0].PurchasePrice)
	assert.EqualValues(t, 10, supply.Lines[0].Quantity)
	require.NotNil(t, supply.Supplier)
	assert.Equal(t, "Acme", supply.Supplier.Name)
	assert.EqualValues(t, 10, productQuantity(t, db, product.ID))

	// The snapshot must not follow later price changes
	require.NoError(t, db.Model(&model.Product{}).Where("id = ?", product.ID).
		Update("purchase_price", decimal.RequireFromString("99.99")).Error)
	reloaded, err := engine.GetSupply(owner(company.ID), supply.ID)
	require.NoError(t, err)
	requireDecimal(t, "10.50", reloaded.Lines[0].PurchasePrice)
}

func TestCreateSupply_RequiresOwner(t *testing.T) {
	engine, db := newTestEngine(t)
	company := seedCompany(t, db, "111111111111")
	storage := seedStorage(t, db, company.ID)
	product := seedProduct(t, db, storage.ID, "Bolt", 0, "1.00", "2.00")

	_, err := engine.CreateSupply(member(company.ID), ledger.SupplyInput{
		StorageID: storage.ID,
		Lines:     []ledger.LineInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestCreateSupply_ValidationErrors(t *testing.T) {
	engine, db := newTestEngine(t)
	company := seedCompany(t, db, "111111111111")
	storage := seedStorage(t, db, company.ID)
	product := seedProduct(t, db, storage.ID, "Bolt", 0, "1.00", "2.00")

	_, err := engine.CreateSupply(owner(company.ID), ledger.SupplyInput{
		StorageID: storage.ID,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = engine.CreateSupply(owner(company.ID), ledger.SupplyInput{
		StorageID: storage.ID,
		Lines:     []ledger.LineInput{{ProductID: product.ID, Quantity: 0}},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreateSupply_UnknownReferences(t *testing.T) {
	engine, db := newTestEngine(t)
	company := seedCompany(t, db, "111111111111")
	storage := seedStorage(t, db, company.ID)

	_, err := engine.CreateSupply(owner(company.ID), ledger.SupplyInput{
		StorageID: 9999,
		Lines:     []ledger.LineInput{{ProductID: 1, Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = engine.CreateSupply(owner(company.ID), ledger.SupplyInput{
		StorageID: storage.ID,
		Lines:     []ledger.LineInput{{ProductID: 9999, Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCreateSupply_ForeignProductRollsBack(t *testing.T) {
	engine, db := newTestEngine(t)
	company := seedCompany(t, db, "111111111111")
	other := seedCompany(t, db, "222222222222")
	storage := seedStorage(t, db, company.ID)
	otherStorage := seedStorage(t, db, other.ID)
	mine := seedProduct(t, db, storage.ID, "Mine", 0, "1.00", "2.00")
	foreign := seedProduct(t, db, otherStorage.ID, "Foreign", 0, "1.00", "2.00")

	_, err := engine.CreateSupply(owner(company.ID), ledger.SupplyInput{
		StorageID: storage.ID,
		Lines: []ledger.LineInput{
			{ProductID: mine.ID, Quantity: 5},
			{ProductID: foreign.ID, Quantity: 5},
		},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	// The first line's increment must have rolled back with the rest
	assert.EqualValues(t, 0, productQuantity(t, db, mine.ID))
	assert.EqualValues(t, 0, productQuantity(t, db, foreign.ID))

	var supplies int64
	require.NoError(t, db.Model(&model.Supply{}).Count(&supplies).Error)
	assert.EqualValues(t, 0, supplies)
}

// ── Sales ─────────────────────────────────────────────────────────────────────

func TestCreateSale_DecrementsStockAndTotals(t *testing.T) {
	engine, db := newTestEngine(t)
	company := seedCompany(t, db, "111111111111")
	storage := seedStorage(t, db, company.ID)
	product := seedProduct(t, db, storage.ID, "Bolt", 10, "3.00", "5.00")

	sale, err := engine.CreateSale(member(company.ID), ledger.SaleInput{
		BuyerName: "Ivanov",
		Lines:     []ledger.LineInput{{ProductID: product.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	require.Len(t, sale.Lines, 1)

	requireDecimal(t, "20.00", sale.TotalAmount)
	requireDecimal(t, "5.00", sale.Lines[0].Price)
	requireDecimal(t, "3.00", sale.Lines[0].CostPrice)
	assert.EqualValues(t, 6, productQuantity(t, db, product.ID))
}

func TestStockConservation(t *testing.T) {
	engine, db := newTestEngine(t)
	company := seedCompany(t, db, "111111111111")
	storage := seedStorage(t, db, company.ID)
	product := seedProduct(t, db, storage.ID, "Bolt", 0, "3.00", "5.00")

	_, err := engine.CreateSupply(owner(company.ID), ledger.SupplyInput{
		StorageID: storage.ID,
		Lines:     []ledger.LineInput{{ProductID: product.ID, Quantity: 10}},
	})
	require.NoError(t, err)

	_, err = engine.CreateSale(member(company.ID), ledger.SaleInput{
		BuyerName: "Ivanov",
		Lines:     []ledger.LineInput{{ProductID: product.ID, Quantity: 4}},
	})
	require.NoError(t, err)

	assert.EqualValues(t, 6, productQuantity(t, db, product.ID))
}

func TestCreateSale_InsufficientStock(t *testing.T) {
	engine, db := newTestEngine(t)
	company := seedCompany(t, db, "111111111111")
	storage := seedStorage(t, db, company.ID)
	product := seedProduct(t, db, storage.ID, "Bolt", 3, "3.00", "5.00")

	_, err := engine.CreateSale(member(company.ID), ledger.SaleInput{
		BuyerName: "Ivanov",
		Lines:     []ledger.LineInput{{ProductID: product.ID, Quantity: 5}},
	})
	require.Error(t, err)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindInsufficientStock, appErr.Kind)
	assert.Equal(t, product.ID, appErr.ProductID)
	assert.EqualValues(t, 3, appErr.Available)

	// No partial decrement, no dangling sale rows
	assert.EqualValues(t, 3, productQuantity(t, db, product.ID))
	var sales int64
	require.NoError(t, db.Model(&model.Sale{}).Count(&sales).Error)
	assert.EqualValues(t, 0, sales)
}

func TestCreateSale_MultiLineRollback(t *testing.T) {
	engine, db := newTestEngine(t)
	company := seedCompany(t, db, "111111111111")
	storage := seedStorage(t, db, company.ID)
	plenty := seedProduct(t, db, storage.ID, "Plenty", 10, "1.00", "2.00")
	scarce := seedProduct(t, db, storage.ID, "Scarce", 1, "1.00", "2.00")

	_, err := engine.CreateSale(member(company.ID), ledger.SaleInput{
		BuyerName: "Ivanov",
		Lines: []ledger.LineInput{
			{ProductID: plenty.ID, Quantity: 2},
			{ProductID: scarce.ID, Quantity: 5},
		},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(err))

	// The already-applied first line must be rolled back, not compensated
	assert.EqualValues(t, 10, productQuantity(t, db, plenty.ID))
	assert.EqualValues(t, 1, productQuantity(t, db, scarce.ID))

	var lines int64
	require.NoError(t, db.Model(&model.ProductSale{}).Count(&lines).Error)
	assert.EqualValues(t, 0, lines)
}

func TestCreateSale_ValidationErrors(t *testing.T) {
	engine, db := newTestEngine(t)
	company := seedCompany(t, db, "111111111111")
	storage := seedStorage(t, db, company.ID)
	product := seedProduct(t, db, storage.ID, "Bolt", 5, "1.00", "2.00")

	_, err := engine.CreateSale(member(company.ID), ledger.SaleInput{
		Lines: []ledger.LineInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = engine.CreateSale(member(company.ID), ledger.SaleInput{
		BuyerName: "Ivanov",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = engine.CreateSale(ledger.Actor{UserID: 7}, ledger.SaleInput{
		BuyerName: "Ivanov",
		Lines:     []ledger.LineInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestCreateSale_SaleDateOverride(t *testing.T) {
	engine, db := newTestEngine(t)
	company := seedCompany(t, db, "111111111111")
	storage := seedStorage(t, db, company.ID)
	product := seedProduct(t, db, storage.ID, "Bolt", 5, "1.00", "2.00")

	saleDate := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	sale, err := engine.CreateSale(member(company.ID), ledger.SaleInput{
		BuyerName: "Ivanov",
		SaleDate:  &saleDate,
		Lines:     []ledger.LineInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.True(t, sale.SaleDate.Equal(saleDate), "expected %s, got %s", saleDate, sale.SaleDate)
}

func TestDeleteSale_RestoresStock(t *testing.T) {
	engine, db := newTestEngine(t)
	company := seedCompany(t, db, "111111111111")
	storage := seedStorage(t, db, company.ID)
	product := seedProduct(t, db, storage.ID, "Bolt", 10, "3.00", "5.00")

	sale, err := engine.CreateSale(member(company.ID), ledger.SaleInput{
		BuyerName: "Ivanov",
		Lines:     []ledger.LineInput{{ProductID: product.ID, Quantity: 5}},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 5, productQuantity(t, db, product.ID))

	// Stock moves in between; reversal must add, not reset
	_, err = engine.CreateSupply(owner(company.ID), ledger.SupplyInput{
		StorageID: storage.ID,
		Lines:     []ledger.LineInput{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 7, productQuantity(t, db, product.ID))

	require.NoError(t, engine.DeleteSale(member(company.ID), sale.ID))
	assert.EqualValues(t, 12, productQuantity(t, db, product.ID))

	_, err = engine.GetSale(member(company.ID), sale.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	var lines int64
	require.NoError(t, db.Model(&model.ProductSale{}).Where("sale_id = ?", sale.ID).Count(&lines).Error)
	assert.EqualValues(t, 0, lines)
}

func TestTotalConsistency(t *testing.T) {
	engine, db := newTestEngine(t)
	company := seedCompany(t, db, "111111111111")
	storage := seedStorage(t, db, company.ID)
	bolt := seedProduct(t, db, storage.ID, "Bolt", 10, "3.00", "5.50")
	nut := seedProduct(t, db, storage.ID, "Nut", 10, "0.50", "1.25")

	sale, err := engine.CreateSale(member(company.ID), ledger.SaleInput{
		BuyerName: "Ivanov",
		Lines: []ledger.LineInput{
			{ProductID: bolt.ID, Quantity: 3},
			{ProductID: nut.ID, Quantity: 4},
		},
	})
	require.NoError(t, err)

	reloaded, err := engine.GetSale(member(company.ID), sale.ID)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, line := range reloaded.Lines {
		sum = sum.Add(line.Price.Mul(decimal.NewFromInt(line.Quantity)))
	}
	require.True(t, reloaded.TotalAmount.Equal(sum),
		"total %s != sum of lines %s", reloaded.TotalAmount, sum)
	requireDecimal(t, "21.50", reloaded.TotalAmount)
}

// ── Scoping ───────────────────────────────────────────────────────────────────

func TestCompanyScoping(t *testing.T) {
	engine, db := newTestEngine(t)
	companyX := seedCompany(t, db, "111111111111")
	companyY := seedCompany(t, db, "222222222222")
	storageX := seedStorage(t, db, companyX.ID)
	productX := seedProduct(t, db, storageX.ID, "Bolt", 10, "3.00", "5.00")

	sale, err := engine.CreateSale(member(companyX.ID), ledger.SaleInput{
		BuyerName: "Ivanov",
		Lines:     []ledger.LineInput{{ProductID: productX.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	supply, err := engine.CreateSupply(owner(companyX.ID), ledger.SupplyInput{
		StorageID: storageX.ID,
		Lines:     []ledger.LineInput{{ProductID: productX.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// Reads from another company leak nothing
	_, err = engine.GetSale(member(companyY.ID), sale.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = engine.GetSupply(member(companyY.ID), supply.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// Deleting another company's sale fails and leaves stock untouched
	before := productQuantity(t, db, productX.ID)
	err = engine.DeleteSale(member(companyY.ID), sale.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, before, productQuantity(t, db, productX.ID))

	// Selling another company's product is rejected
	_, err = engine.CreateSale(member(companyY.ID), ledger.SaleInput{
		BuyerName: "Petrov",
		Lines:     []ledger.LineInput{{ProductID: productX.ID, Quantity: 1}},
	})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	// Lists stay empty for the other company
	sales, err := engine.ListSales(member(companyY.ID), ledger.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, sales)
	supplies, err := engine.ListSupplies(member(companyY.ID), ledger.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, supplies)
}

// ── Lists ─────────────────────────────────────────────────────────────────────

func TestListSales_FilterAndOrder(t *testing.T) {
	engine, db := newTestEngine(t)
	company := seedCompany(t, db, "111111111111")
	storage := seedStorage(t, db, company.ID)
	product := seedProduct(t, db, storage.ID, "Bolt", 100, "1.00", "2.00")

	dates := []time.Time{
		time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 9, 10, 0, 0, 0, time.UTC),
	}
	for _, d := range dates {
		saleDate := d
		_, err := engine.CreateSale(member(company.ID), ledger.SaleInput{
			BuyerName: "Ivanov",
			SaleDate:  &saleDate,
			Lines:     []ledger.LineInput{{ProductID: product.ID, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	all, err := engine.ListSales(member(company.ID), ledger.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].SaleDate.After(all[1].SaleDate))
	assert.True(t, all[1].SaleDate.After(all[2].SaleDate))

	from := time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.March, 6, 0, 0, 0, 0, time.UTC)
	filtered, err := engine.ListSales(member(company.ID), ledger.ListFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.True(t, filtered[0].SaleDate.Equal(dates[1]))

	_, err = engine.ListSales(member(company.ID), ledger.ListFilter{From: &to, To: &from})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestListSupplies_NestedLines(t *testing.T) {
	engine, db := newTestEngine(t)
	company := seedCompany(t, db, "111111111111")
	storage := seedStorage(t, db, company.ID)
	product := seedProduct(t, db, storage.ID, "Bolt", 0, "1.00", "2.00")

	_, err := engine.CreateSupply(owner(company.ID), ledger.SupplyInput{
		StorageID: storage.ID,
		Lines:     []ledger.LineInput{{ProductID: product.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	supplies, err := engine.ListSupplies(owner(company.ID), ledger.ListFilter{})
	require.NoError(t, err)
	require.Len(t, supplies, 1)
	require.Len(t, supplies[0].Lines, 1)
	require.NotNil(t, supplies[0].Lines[0].Product)
	assert.Equal(t, "Bolt", supplies[0].Lines[0].Product.Title)
}
