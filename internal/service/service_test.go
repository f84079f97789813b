package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinicdesk/internal/models"
	"github.com/clinicdesk/clinicdesk/internal/money"
	"github.com/clinicdesk/clinicdesk/internal/storage/sqlite"
)

// testNow is a fixed clock so due dates and payment dates are stable.
var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

// fixture wires all three services over a throwaway SQLite store and
// seeds one patient and one catalog service.
type fixture struct {
	registry *RegistryService
	quotes   *QuoteService
	bills    *BillService
	patient  *models.Patient
	service  *models.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "clinic.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	bills := NewBillService(store, DueInDays(30))
	bills.now = func() time.Time { return testNow }

	f := &fixture{
		registry: NewRegistryService(store),
		quotes:   NewQuoteService(store),
		bills:    bills,
	}

	ctx := context.Background()
	f.patient, err = f.registry.CreatePatient(ctx, PatientInput{Name: "Ana Duarte"})
	require.NoError(t, err)

	f.service, err = f.registry.CreateService(ctx, ServiceInput{Name: "Root canal", Price: 10000})
	require.NoError(t, err)

	return f
}

// addService registers another catalog entry for multi-line documents.
func (f *fixture) addService(t *testing.T, name string, price money.Cents) *models.Service {
	t.Helper()
	svc, err := f.registry.CreateService(context.Background(), ServiceInput{Name: name, Price: price})
	require.NoError(t, err)
	return svc
}

// createQuote builds the standard test document: 3 units at 100.00 with a
// 10% document discount and 8% tax, totalling 291.60.
func (f *fixture) createQuote(t *testing.T) *models.Quote {
	t.Helper()
	quote, warnings, err := f.quotes.CreateQuote(context.Background(), QuoteInput{
		PatientID:  f.patient.ID,
		Title:      "Treatment plan",
		Items:      []LineItemInput{{ServiceID: f.service.ID, Quantity: 3}},
		Discount:   models.DiscountSpec{Kind: models.DiscountPercentage, Percent: 10},
		TaxPercent: 8,
		ValidUntil: testNow.AddDate(0, 0, 30).Unix(),
	})
	require.NoError(t, err)
	require.Empty(t, warnings)
	return quote
}

// createPendingBill creates the standard document as a bill and moves it
// out of draft so payments reflect real front-desk flow.
func (f *fixture) createPendingBill(t *testing.T) *models.Bill {
	t.Helper()
	ctx := context.Background()
	bill, warnings, err := f.bills.CreateBill(ctx, BillInput{
		PatientID:  f.patient.ID,
		Items:      []LineItemInput{{ServiceID: f.service.ID, Quantity: 3}},
		Discount:   models.DiscountSpec{Kind: models.DiscountPercentage, Percent: 10},
		TaxPercent: 8,
	})
	require.NoError(t, err)
	require.Empty(t, warnings)

	bill, err = f.bills.TransitionBill(ctx, bill.ID, models.BillStatusPending)
	require.NoError(t, err)
	return bill
}
