package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinicdesk/internal/domain"
	"github.com/clinicdesk/clinicdesk/internal/models"
	"github.com/clinicdesk/clinicdesk/internal/money"
)

func TestCreateBill(t *testing.T) {
	f := newFixture(t)

	bill, warnings, err := f.bills.CreateBill(context.Background(), BillInput{
		PatientID:  f.patient.ID,
		Items:      []LineItemInput{{ServiceID: f.service.ID, Quantity: 3}},
		Discount:   models.DiscountSpec{Kind: models.DiscountPercentage, Percent: 10},
		TaxPercent: 8,
	})
	require.NoError(t, err)
	require.Empty(t, warnings)

	assert.Equal(t, models.BillStatusDraft, bill.Status)
	assert.Equal(t, money.Cents(29160), bill.Total)
	assert.Equal(t, money.Cents(29160), bill.Balance)
	assert.Equal(t, money.Cents(0), bill.AmountPaid)
	assert.Empty(t, bill.Payments)
	assert.Empty(t, bill.QuoteID)

	// Default due date comes from the 30-day rule.
	assert.Equal(t, testNow.AddDate(0, 0, 30).Unix(), bill.DueDate)
}

func TestApplyPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bill := f.createPendingBill(t)

	// Partial payment: amount paid, balance and status move together.
	bill, err := f.bills.ApplyPayment(ctx, bill.ID, PaymentInput{
		Amount: 10000,
		Method: models.PaymentMethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, money.Cents(10000), bill.AmountPaid)
	assert.Equal(t, money.Cents(19160), bill.Balance)
	assert.Equal(t, models.BillStatusPartiallyPaid, bill.Status)

	// Second payment settles the bill exactly.
	bill, err = f.bills.ApplyPayment(ctx, bill.ID, PaymentInput{
		Amount:    19160,
		Method:    models.PaymentMethodCard,
		Reference: "AUTH-77",
	})
	require.NoError(t, err)
	assert.Equal(t, money.Cents(29160), bill.AmountPaid)
	assert.Equal(t, money.Cents(0), bill.Balance)
	assert.Equal(t, models.BillStatusPaid, bill.Status)
	require.Len(t, bill.Payments, 2)

	// The settled bill accepts nothing further.
	_, err = f.bills.ApplyPayment(ctx, bill.ID, PaymentInput{
		Amount: 1,
		Method: models.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, domain.ErrBillClosed)
}

func TestApplyPaymentRejectsOverpayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bill := f.createPendingBill(t)

	_, err := f.bills.ApplyPayment(ctx, bill.ID, PaymentInput{
		Amount: bill.Balance + 1,
		Method: models.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, domain.ErrPaymentExceedsBalance)

	// The failed payment left no trace.
	got, err := f.bills.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Payments)
	assert.Equal(t, money.Cents(0), got.AmountPaid)
	assert.Equal(t, bill.Balance, got.Balance)
	assert.Equal(t, models.BillStatusPending, got.Status)
}

func TestApplyPaymentRejectsNonPositiveAmounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bill := f.createPendingBill(t)

	for _, amount := range []money.Cents{0, -500} {
		_, err := f.bills.ApplyPayment(ctx, bill.ID, PaymentInput{
			Amount: amount,
			Method: models.PaymentMethodCash,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidAmount, "amount %d", amount)
	}
}

func TestApplyPaymentToCancelledBill(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bill := f.createPendingBill(t)

	_, err := f.bills.TransitionBill(ctx, bill.ID, models.BillStatusCancelled)
	require.NoError(t, err)

	_, err = f.bills.ApplyPayment(ctx, bill.ID, PaymentInput{
		Amount: 100,
		Method: models.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, domain.ErrBillClosed)
}

func TestDeletePayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bill := f.createPendingBill(t)

	bill, err := f.bills.ApplyPayment(ctx, bill.ID, PaymentInput{
		Amount: 29160,
		Method: models.PaymentMethodTransfer,
	})
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusPaid, bill.Status)

	// Removing the only payment reopens the bill as pending.
	bill, err = f.bills.DeletePayment(ctx, bill.ID, bill.Payments[0].ID)
	require.NoError(t, err)
	assert.Empty(t, bill.Payments)
	assert.Equal(t, money.Cents(0), bill.AmountPaid)
	assert.Equal(t, money.Cents(29160), bill.Balance)
	assert.Equal(t, models.BillStatusPending, bill.Status)
}

func TestDeletePaymentRecomputesPartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bill := f.createPendingBill(t)

	bill, err := f.bills.ApplyPayment(ctx, bill.ID, PaymentInput{Amount: 10000, Method: models.PaymentMethodCash})
	require.NoError(t, err)
	first := bill.Payments[0].ID

	bill, err = f.bills.ApplyPayment(ctx, bill.ID, PaymentInput{Amount: 19160, Method: models.PaymentMethodCard})
	require.NoError(t, err)
	require.Equal(t, models.BillStatusPaid, bill.Status)

	bill, err = f.bills.DeletePayment(ctx, bill.ID, first)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(19160), bill.AmountPaid)
	assert.Equal(t, money.Cents(10000), bill.Balance)
	assert.Equal(t, models.BillStatusPartiallyPaid, bill.Status)
}

func TestDeletePaymentErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("unknown payment", func(t *testing.T) {
		bill := f.createPendingBill(t)
		_, err := f.bills.DeletePayment(ctx, bill.ID, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("cancelled bill ledger is frozen", func(t *testing.T) {
		bill := f.createPendingBill(t)
		bill, err := f.bills.ApplyPayment(ctx, bill.ID, PaymentInput{Amount: 100, Method: models.PaymentMethodCash})
		require.NoError(t, err)
		paymentID := bill.Payments[0].ID

		_, err = f.bills.TransitionBill(ctx, bill.ID, models.BillStatusCancelled)
		require.NoError(t, err)

		_, err = f.bills.DeletePayment(ctx, bill.ID, paymentID)
		assert.ErrorIs(t, err, domain.ErrDeleteNotAllowed)
	})
}

func TestUpdateBillFrozenAfterPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bill := f.createPendingBill(t)

	_, err := f.bills.ApplyPayment(ctx, bill.ID, PaymentInput{Amount: 100, Method: models.PaymentMethodCash})
	require.NoError(t, err)

	_, _, err = f.bills.UpdateBill(ctx, bill.ID, BillInput{
		PatientID: f.patient.ID,
		Items:     []LineItemInput{{ServiceID: f.service.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrEditNotAllowed)
}

func TestUpdateBillRecomputesBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bill := f.createPendingBill(t)

	updated, warnings, err := f.bills.UpdateBill(ctx, bill.ID, BillInput{
		PatientID:  f.patient.ID,
		Items:      []LineItemInput{{ServiceID: f.service.ID, Quantity: 1}},
		TaxPercent: 8,
	})
	require.NoError(t, err)
	require.Empty(t, warnings)
	assert.Equal(t, money.Cents(10800), updated.Total)
	assert.Equal(t, money.Cents(10800), updated.Balance)
}

func TestDeleteBill(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("draft deletes", func(t *testing.T) {
		bill, _, err := f.bills.CreateBill(ctx, BillInput{
			PatientID: f.patient.ID,
			Items:     []LineItemInput{{ServiceID: f.service.ID, Quantity: 1}},
		})
		require.NoError(t, err)
		require.NoError(t, f.bills.DeleteBill(ctx, bill.ID))
	})

	t.Run("pending is kept", func(t *testing.T) {
		bill := f.createPendingBill(t)
		err := f.bills.DeleteBill(ctx, bill.ID)
		assert.ErrorIs(t, err, domain.ErrDeleteNotAllowed)
	})
}

func TestConvertQuote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quote := f.createQuote(t)

	_, err := f.quotes.TransitionQuote(ctx, quote.ID, models.QuoteStatusSent)
	require.NoError(t, err)
	_, err = f.quotes.TransitionQuote(ctx, quote.ID, models.QuoteStatusAccepted)
	require.NoError(t, err)

	bill, err := f.bills.ConvertQuote(ctx, quote.ID)
	require.NoError(t, err)

	// The bill carries the quote's financials and starts pending.
	assert.Equal(t, quote.ID, bill.QuoteID)
	assert.Equal(t, quote.PatientID, bill.PatientID)
	assert.Equal(t, quote.Totals, bill.Totals)
	assert.Equal(t, bill.Total, bill.Balance)
	assert.Equal(t, models.BillStatusPending, bill.Status)
	assert.Equal(t, testNow.AddDate(0, 0, 30).Unix(), bill.DueDate)

	// Line items are copies with fresh identities.
	require.Len(t, bill.Items, len(quote.Items))
	for i := range bill.Items {
		assert.NotEqual(t, quote.Items[i].ID, bill.Items[i].ID)
		assert.Equal(t, quote.Items[i].ServiceID, bill.Items[i].ServiceID)
		assert.Equal(t, quote.Items[i].LineTotal, bill.Items[i].LineTotal)
	}

	// The source quote is closed out.
	got, err := f.quotes.GetQuote(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusConverted, got.Status)

	// And cannot be converted twice.
	_, err = f.bills.ConvertQuote(ctx, quote.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidConversionSource)
}

func TestConvertQuoteRequiresAccepted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quote := f.createQuote(t)

	_, err := f.bills.ConvertQuote(ctx, quote.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidConversionSource)

	// The draft quote is untouched by the failed conversion.
	got, err := f.quotes.GetQuote(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusDraft, got.Status)

	bills, err := f.bills.ListBills(ctx, f.patient.ID)
	require.NoError(t, err)
	assert.Empty(t, bills)
}
