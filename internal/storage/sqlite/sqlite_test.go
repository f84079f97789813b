package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinicdesk/internal/domain"
	"github.com/clinicdesk/clinicdesk/internal/models"
	"github.com/clinicdesk/clinicdesk/internal/money"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "clinic.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestPatient(t *testing.T, store *SQLiteStore) *models.Patient {
	t.Helper()
	p := &models.Patient{Name: "Jordan Reyes", Phone: "555-0101", Email: "jordan@example.com"}
	require.NoError(t, store.CreatePatient(context.Background(), p))
	return p
}

func TestPatientCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := createTestPatient(t, store)
	assert.NotEmpty(t, p.ID)
	assert.NotZero(t, p.CreatedAt)

	got, err := store.GetPatient(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Email, got.Email)

	got.Phone = "555-0202"
	require.NoError(t, store.UpdatePatient(ctx, got))
	got, err = store.GetPatient(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-0202", got.Phone)

	require.NoError(t, store.DeletePatient(ctx, p.ID))
	_, err = store.GetPatient(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPatientNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetPatient(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = store.UpdatePatient(ctx, &models.Patient{ID: "missing", Name: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = store.DeletePatient(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServiceCatalog(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cat := &models.Category{Name: "Dental"}
	require.NoError(t, store.CreateCategory(ctx, cat))

	withCategory := &models.Service{CategoryID: cat.ID, Name: "Cleaning", Price: 8000}
	require.NoError(t, store.CreateService(ctx, withCategory))

	uncategorized := &models.Service{Name: "Consultation", Price: 5000}
	require.NoError(t, store.CreateService(ctx, uncategorized))

	got, err := store.GetService(ctx, withCategory.ID)
	require.NoError(t, err)
	assert.Equal(t, cat.ID, got.CategoryID)
	assert.Equal(t, money.Cents(8000), got.Price)

	got, err = store.GetService(ctx, uncategorized.ID)
	require.NoError(t, err)
	assert.Empty(t, got.CategoryID)

	services, err := store.ListServices(ctx)
	require.NoError(t, err)
	assert.Len(t, services, 2)

	got.Price = 5500
	require.NoError(t, store.UpdateService(ctx, got))
	got, err = store.GetService(ctx, uncategorized.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(5500), got.Price)

	require.NoError(t, store.DeleteService(ctx, withCategory.ID))
	_, err = store.GetService(ctx, withCategory.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQuoteRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	patient := createTestPatient(t, store)

	quote := &models.Quote{
		Document: models.Document{
			PatientID: patient.ID,
			Items: []models.LineItem{
				{ServiceID: "svc-1", Description: "Cleaning", Quantity: 2, UnitPrice: 8000, LineTotal: 16000},
				{ServiceID: "svc-2", Description: "X-Ray", Quantity: 1, UnitPrice: 12000, Discount: 2000, LineTotal: 10000},
			},
			Discount:   models.DiscountSpec{Kind: models.DiscountPercentage, Percent: 10},
			TaxPercent: 8,
			Totals: models.Totals{
				Subtotal:       26000,
				DiscountAmount: 2600,
				TaxAmount:      1872,
				Total:          25272,
			},
			Notes: "first visit",
		},
		Title:  "Initial treatment plan",
		Status: models.QuoteStatusDraft,
	}
	require.NoError(t, store.CreateQuote(ctx, quote))
	assert.NotEmpty(t, quote.ID)

	got, err := store.GetQuote(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, quote.Title, got.Title)
	assert.Equal(t, models.QuoteStatusDraft, got.Status)
	assert.Equal(t, quote.Totals, got.Totals)
	assert.Equal(t, models.DiscountPercentage, got.Discount.Kind)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Cleaning", got.Items[0].Description)
	assert.Equal(t, "X-Ray", got.Items[1].Description)

	// Update rewrites items; order follows slice order.
	got.Items = []models.LineItem{
		{ServiceID: "svc-2", Description: "X-Ray", Quantity: 1, UnitPrice: 12000, LineTotal: 12000},
	}
	got.Status = models.QuoteStatusSent
	require.NoError(t, store.UpdateQuote(ctx, got))

	got, err = store.GetQuote(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusSent, got.Status)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "X-Ray", got.Items[0].Description)

	require.NoError(t, store.DeleteQuote(ctx, quote.ID))
	_, err = store.GetQuote(ctx, quote.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListQuotesFiltersByPatient(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	alice := createTestPatient(t, store)
	bob := &models.Patient{Name: "Sam Okafor"}
	require.NoError(t, store.CreatePatient(ctx, bob))

	for _, pid := range []string{alice.ID, alice.ID, bob.ID} {
		q := &models.Quote{
			Document: models.Document{PatientID: pid},
			Status:   models.QuoteStatusDraft,
		}
		require.NoError(t, store.CreateQuote(ctx, q))
	}

	all, err := store.ListQuotes(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := store.ListQuotes(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, q := range mine {
		assert.Equal(t, alice.ID, q.PatientID)
	}
}

func TestBillRoundTripWithPayments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	patient := createTestPatient(t, store)

	bill := &models.Bill{
		Document: models.Document{
			PatientID: patient.ID,
			Items: []models.LineItem{
				{ServiceID: "svc-1", Description: "Filling", Quantity: 3, UnitPrice: 10000, LineTotal: 30000},
			},
			Discount:   models.DiscountSpec{Kind: models.DiscountPercentage, Percent: 10},
			TaxPercent: 8,
			Totals: models.Totals{
				Subtotal:       30000,
				DiscountAmount: 3000,
				TaxAmount:      2160,
				Total:          29160,
			},
		},
		DueDate: 1893456000,
		Balance: 29160,
		Status:  models.BillStatusPending,
	}
	require.NoError(t, store.CreateBill(ctx, bill))

	got, err := store.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.Totals, got.Totals)
	assert.Empty(t, got.Payments)
	assert.Empty(t, got.QuoteID)

	// Ledger entries keep their append order across rewrites.
	got.Payments = []models.Payment{
		{BillID: got.ID, Amount: 10000, Method: models.PaymentMethodCash, Date: 100},
		{BillID: got.ID, Amount: 19160, Method: models.PaymentMethodCard, Reference: "AUTH-42", Date: 200},
	}
	got.AmountPaid = 29160
	got.Balance = 0
	got.Status = models.BillStatusPaid
	require.NoError(t, store.UpdateBill(ctx, got))

	got, err = store.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusPaid, got.Status)
	assert.Equal(t, money.Cents(29160), got.AmountPaid)
	require.Len(t, got.Payments, 2)
	assert.Equal(t, money.Cents(10000), got.Payments[0].Amount)
	assert.Equal(t, "AUTH-42", got.Payments[1].Reference)
	for _, p := range got.Payments {
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, got.ID, p.BillID)
	}

	require.NoError(t, store.DeleteBill(ctx, bill.ID))
	_, err = store.GetBill(ctx, bill.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBillKeepsQuoteReference(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	patient := createTestPatient(t, store)

	quote := &models.Quote{
		Document: models.Document{PatientID: patient.ID},
		Status:   models.QuoteStatusAccepted,
	}
	require.NoError(t, store.CreateQuote(ctx, quote))

	bill := &models.Bill{
		Document: models.Document{PatientID: patient.ID},
		QuoteID:  quote.ID,
		Status:   models.BillStatusPending,
	}
	require.NoError(t, store.CreateBill(ctx, bill))

	got, err := store.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, quote.ID, got.QuoteID)
}
