package ledger_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-service/internal/apperr"
	"inventory-service/internal/ledger"
)

func TestConcurrentSales_NoOversell(t *testing.T) {
	engine, db := newTestEngine(t)
	company := seedCompany(t, db, "111111111111")
	storage := seedStorage(t, db, company.ID)
	product := seedProduct(t, db, storage.ID, "Bolt", 30, "3.00", "5.00")

	const attempts = 50
	results := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.CreateSale(member(company.ID), ledger.SaleInput{
				BuyerName: "Ivanov",
				Lines:     []ledger.LineInput{{ProductID: product.ID, Quantity: 1}},
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case apperr.KindOf(err) == apperr.KindInsufficientStock:
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 30, succeeded)
	assert.Equal(t, 20, rejected)
	assert.EqualValues(t, 0, productQuantity(t, db, product.ID))
}

func TestConcurrentSupplies_NoLostUpdate(t *testing.T) {
	engine, db := newTestEngine(t)
	company := seedCompany(t, db, "111111111111")
	storage := seedStorage(t, db, company.ID)
	product := seedProduct(t, db, storage.ID, "Bolt", 0, "3.00", "5.00")

	const attempts = 20
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.CreateSupply(owner(company.ID), ledger.SupplyInput{
				StorageID: storage.ID,
				Lines:     []ledger.LineInput{{ProductID: product.ID, Quantity: 1}},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.EqualValues(t, attempts, productQuantity(t, db, product.ID))
}

// Two reversals of the same sale must restore its quantities exactly once:
// one caller wins, the other gets NotFound.
func TestConcurrentDeleteSale_SingleReversal(t *testing.T) {
	engine, db := newTestEngine(t)
	company := seedCompany(t, db, "111111111111")
	storage := seedStorage(t, db, company.ID)
	product := seedProduct(t, db, storage.ID, "Bolt", 10, "3.00", "5.00")

	sale, err := engine.CreateSale(member(company.ID), ledger.SaleInput{
		BuyerName: "Ivanov",
		Lines:     []ledger.LineInput{{ProductID: product.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	require.EqualValues(t, 6, productQuantity(t, db, product.ID))

	const attempts = 2
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- engine.DeleteSale(member(company.ID), sale.ID)
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, notFound int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case apperr.KindOf(err) == apperr.KindNotFound:
			notFound++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, notFound)
	assert.EqualValues(t, 10, productQuantity(t, db, product.ID))
}

// A reversal racing a new sale must preserve stock conservation regardless of
// which side wins.
func TestConcurrentDeleteAndSale_Conserved(t *testing.T) {
	engine, db := newTestEngine(t)
	company := seedCompany(t, db, "111111111111")
	storage := seedStorage(t, db, company.ID)
	product := seedProduct(t, db, storage.ID, "Bolt", 5, "3.00", "5.00")

	sale, err := engine.CreateSale(member(company.ID), ledger.SaleInput{
		BuyerName: "Ivanov",
		Lines:     []ledger.LineInput{{ProductID: product.ID, Quantity: 5}},
	})
	require.NoError(t, err)
	require.EqualValues(t, 0, productQuantity(t, db, product.ID))

	var wg sync.WaitGroup
	var deleteErr, saleErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		deleteErr = engine.DeleteSale(member(company.ID), sale.ID)
	}()
	go func() {
		defer wg.Done()
		_, saleErr = engine.CreateSale(member(company.ID), ledger.SaleInput{
			BuyerName: "Petrov",
			Lines:     []ledger.LineInput{{ProductID: product.ID, Quantity: 5}},
		})
	}()
	wg.Wait()

	require.NoError(t, deleteErr)
	final := productQuantity(t, db, product.ID)
	if saleErr == nil {
		// The new sale consumed the restored units
		assert.EqualValues(t, 0, final)
	} else {
		assert.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(saleErr))
		assert.EqualValues(t, 5, final)
	}
}
