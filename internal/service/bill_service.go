package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/calculator"
	"github.com/clinicdesk/clinicdesk/internal/domain"
	"github.com/clinicdesk/clinicdesk/internal/models"
	"github.com/clinicdesk/clinicdesk/internal/money"
	"github.com/clinicdesk/clinicdesk/internal/storage"
)

// DueDateRule computes a bill's due date from its creation time.
type DueDateRule func(now time.Time) time.Time

// DueInDays returns a rule that sets the due date n days after creation.
func DueInDays(n int) DueDateRule {
	return func(now time.Time) time.Time {
		return now.AddDate(0, 0, n)
	}
}

// BillService manages bills, the payment ledger and quote conversion.
type BillService struct {
	store   storage.Store
	dueDate DueDateRule
	now     func() time.Time
}

// NewBillService creates a new BillService. The due-date rule applies to
// bills converted from quotes; direct bills carry an explicit due date.
func NewBillService(store storage.Store, rule DueDateRule) *BillService {
	if rule == nil {
		rule = DueInDays(30)
	}
	return &BillService{store: store, dueDate: rule, now: time.Now}
}

// BillInput carries the caller-editable fields of a bill.
type BillInput struct {
	PatientID string `validate:"required"`
	Date      int64
	DueDate   int64

	// QuoteID optionally links the bill to an existing quote for
	// reference. ConvertQuote is the path that also closes the quote.
	QuoteID    string
	Items      []LineItemInput
	Discount   models.DiscountSpec
	TaxPercent float64
	Notes      string
}

// CreateBill builds a new draft bill with an empty payment ledger.
func (s *BillService) CreateBill(ctx context.Context, in BillInput) (*models.Bill, Warnings, error) {
	if err := validate.Struct(in); err != nil {
		return nil, nil, invalidInput(err)
	}
	if _, err := s.store.GetPatient(ctx, in.PatientID); err != nil {
		return nil, nil, err
	}

	items, warnings, err := buildLineItems(ctx, s.store, in.Items)
	if err != nil {
		return nil, nil, err
	}
	totals, err := calculator.Totals(items, in.Discount, in.TaxPercent)
	if err != nil {
		return nil, nil, err
	}

	dueDate := in.DueDate
	if dueDate == 0 {
		dueDate = s.dueDate(s.now()).Unix()
	}

	bill := &models.Bill{
		Document: models.Document{
			PatientID:  in.PatientID,
			Date:       in.Date,
			Items:      items,
			Discount:   in.Discount,
			TaxPercent: in.TaxPercent,
			Totals:     totals,
			Notes:      in.Notes,
		},
		DueDate: dueDate,
		QuoteID: in.QuoteID,
		Balance: totals.Total,
		Status:  models.BillStatusDraft,
	}

	if err := s.store.CreateBill(ctx, bill); err != nil {
		slog.Error("CreateBill failed", "error", err)
		return nil, nil, err
	}

	slog.Info("Bill created", "bill_id", bill.ID, "patient_id", bill.PatientID, "total", bill.Total)
	return bill, warnings, nil
}

// UpdateBill replaces the editable fields of a draft or pending bill and
// re-derives totals and balance in the same update. Bills with payment
// activity or in a terminal state are frozen.
func (s *BillService) UpdateBill(ctx context.Context, id string, in BillInput) (*models.Bill, Warnings, error) {
	if err := validate.Struct(in); err != nil {
		return nil, nil, invalidInput(err)
	}

	bill, err := s.store.GetBill(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !domain.BillEditable(bill.Status) {
		return nil, nil, &domain.ValidationError{
			Err:     domain.ErrEditNotAllowed,
			Details: fmt.Sprintf("bill is %s", bill.Status),
		}
	}

	items, warnings, err := buildLineItems(ctx, s.store, in.Items)
	if err != nil {
		return nil, nil, err
	}
	totals, err := calculator.Totals(items, in.Discount, in.TaxPercent)
	if err != nil {
		return nil, nil, err
	}

	bill.PatientID = in.PatientID
	if in.Date != 0 {
		bill.Date = in.Date
	}
	if in.DueDate != 0 {
		bill.DueDate = in.DueDate
	}
	bill.Items = items
	bill.Discount = in.Discount
	bill.TaxPercent = in.TaxPercent
	bill.Totals = totals
	bill.Notes = in.Notes
	bill.Balance = totals.Total - bill.AmountPaid

	if err := s.store.UpdateBill(ctx, bill); err != nil {
		slog.Error("UpdateBill failed", "bill_id", id, "error", err)
		return nil, nil, err
	}

	slog.Info("Bill updated", "bill_id", bill.ID, "total", bill.Total, "balance", bill.Balance)
	return bill, warnings, nil
}

// TransitionBill moves a bill to the target status if the transition table
// permits it. This is also the only way a bill becomes overdue.
func (s *BillService) TransitionBill(ctx context.Context, id string, target models.BillStatus) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.TransitionBill(bill.Status, target); err != nil {
		return nil, err
	}

	from := bill.Status
	bill.Status = target
	if err := s.store.UpdateBill(ctx, bill); err != nil {
		slog.Error("TransitionBill failed", "bill_id", id, "error", err)
		return nil, err
	}

	slog.Info("Bill status changed", "bill_id", id, "from", from, "to", target)
	return bill, nil
}

// PaymentInput carries one payment to apply against a bill.
type PaymentInput struct {
	Amount    money.Cents
	Method    models.PaymentMethod `validate:"required"`
	Reference string
	Notes     string
	Date      int64
}

// ApplyPayment appends a payment to the ledger and recomputes amount paid,
// balance and status in one atomic update.
//
// Rules, in order: closed bills (paid, cancelled) accept no payments;
// amounts must be positive; a payment may not exceed the outstanding
// balance (no auto-clamping - the caller must resubmit). On any failure
// the bill is left unchanged.
func (s *BillService) ApplyPayment(ctx context.Context, billID string, in PaymentInput) (*models.Bill, error) {
	if err := validate.Struct(in); err != nil {
		return nil, invalidInput(err)
	}

	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}

	if domain.BillClosed(bill.Status) {
		return nil, &domain.ValidationError{
			Err:     domain.ErrBillClosed,
			Details: fmt.Sprintf("bill is %s", bill.Status),
		}
	}
	if in.Amount <= 0 {
		return nil, &domain.ValidationError{
			Err:     domain.ErrInvalidAmount,
			Details: fmt.Sprintf("got %s", money.Format(in.Amount)),
		}
	}
	if in.Amount > bill.Balance {
		return nil, &domain.ValidationError{
			Err:     domain.ErrPaymentExceedsBalance,
			Details: fmt.Sprintf("payment %s, balance %s", money.Format(in.Amount), money.Format(bill.Balance)),
		}
	}

	date := in.Date
	if date == 0 {
		date = s.now().Unix()
	}
	bill.Payments = append(bill.Payments, models.Payment{
		BillID:    bill.ID,
		Amount:    in.Amount,
		Method:    in.Method,
		Reference: in.Reference,
		Notes:     in.Notes,
		Date:      date,
	})
	s.recomputeLedger(bill)

	if err := s.store.UpdateBill(ctx, bill); err != nil {
		slog.Error("ApplyPayment failed", "bill_id", billID, "error", err)
		return nil, err
	}

	slog.Info("Payment applied",
		"bill_id", bill.ID,
		"amount", in.Amount,
		"balance", bill.Balance,
		"status", bill.Status,
	)
	return bill, nil
}

// DeletePayment removes a payment from the ledger and recomputes amount
// paid, balance and status, exactly as ApplyPayment in reverse. Cancelled
// bills keep their ledger frozen.
func (s *BillService) DeletePayment(ctx context.Context, billID, paymentID string) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill.Status == models.BillStatusCancelled {
		return nil, &domain.ValidationError{
			Err:     domain.ErrDeleteNotAllowed,
			Details: "cancelled bill ledger is frozen",
		}
	}

	idx := -1
	for i := range bill.Payments {
		if bill.Payments[i].ID == paymentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("payment %s: %w", paymentID, domain.ErrNotFound)
	}

	removed := bill.Payments[idx].Amount
	bill.Payments = append(bill.Payments[:idx], bill.Payments[idx+1:]...)
	s.recomputeLedger(bill)

	if err := s.store.UpdateBill(ctx, bill); err != nil {
		slog.Error("DeletePayment failed", "bill_id", billID, "error", err)
		return nil, err
	}

	slog.Info("Payment deleted",
		"bill_id", bill.ID,
		"payment_id", paymentID,
		"amount", removed,
		"balance", bill.Balance,
		"status", bill.Status,
	)
	return bill, nil
}

// recomputeLedger re-derives AmountPaid, Balance and status from the
// ledger. The three fields always change together.
func (s *BillService) recomputeLedger(bill *models.Bill) {
	var paid money.Cents
	for i := range bill.Payments {
		paid += bill.Payments[i].Amount
	}
	bill.AmountPaid = paid
	bill.Balance = bill.Total - paid
	bill.Status = domain.DerivePaymentStatus(bill.Status, paid, bill.Total)
}

// DeleteBill removes a draft bill.
func (s *BillService) DeleteBill(ctx context.Context, id string) error {
	bill, err := s.store.GetBill(ctx, id)
	if err != nil {
		return err
	}
	if !domain.BillDeletable(bill.Status) {
		return &domain.ValidationError{
			Err:     domain.ErrDeleteNotAllowed,
			Details: fmt.Sprintf("bill is %s", bill.Status),
		}
	}

	if err := s.store.DeleteBill(ctx, id); err != nil {
		slog.Error("DeleteBill failed", "bill_id", id, "error", err)
		return err
	}
	slog.Info("Bill deleted", "bill_id", id)
	return nil
}

// GetBill retrieves a bill by ID.
func (s *BillService) GetBill(ctx context.Context, id string) (*models.Bill, error) {
	return s.store.GetBill(ctx, id)
}

// ListBills retrieves bills, optionally filtered by patient.
func (s *BillService) ListBills(ctx context.Context, patientID string) ([]models.Bill, error) {
	return s.store.ListBills(ctx, patientID)
}

// ConvertQuote turns an accepted quote into a pending bill.
//
// The bill gets fresh line item identities but the same snapshotted
// services, quantities and prices; totals are re-derived through the
// calculator rather than trusted from the stored quote. Conversion is
// two-phase: the bill is created first, and only then is the quote closed
// as converted - so a failure can leave an accepted quote without a bill,
// but never a converted quote without one.
func (s *BillService) ConvertQuote(ctx context.Context, quoteID string) (*models.Bill, error) {
	quote, err := s.store.GetQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if !domain.QuoteConvertible(quote.Status) {
		return nil, &domain.ValidationError{
			Err:     domain.ErrInvalidConversionSource,
			Details: fmt.Sprintf("quote is %s", quote.Status),
		}
	}

	items := make([]models.LineItem, len(quote.Items))
	for i, it := range quote.Items {
		items[i] = models.LineItem{
			ServiceID:   it.ServiceID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Discount:    it.Discount,
			LineTotal:   it.LineTotal,
		}
	}

	totals, err := calculator.Totals(items, quote.Discount, quote.TaxPercent)
	if err != nil {
		return nil, fmt.Errorf("quote %s has invalid financial fields: %w", quoteID, err)
	}

	now := s.now()
	bill := &models.Bill{
		Document: models.Document{
			PatientID:  quote.PatientID,
			Date:       now.Unix(),
			Items:      items,
			Discount:   quote.Discount,
			TaxPercent: quote.TaxPercent,
			Totals:     totals,
			Notes:      quote.Notes,
		},
		DueDate: s.dueDate(now).Unix(),
		QuoteID: quote.ID,
		Balance: totals.Total,
		Status:  models.BillStatusPending,
	}

	if err := s.store.CreateBill(ctx, bill); err != nil {
		slog.Error("ConvertQuote: bill creation failed", "quote_id", quoteID, "error", err)
		return nil, err
	}

	quote.Status = models.QuoteStatusConverted
	if err := s.store.UpdateQuote(ctx, quote); err != nil {
		slog.Error("ConvertQuote: failed to close quote", "quote_id", quoteID, "bill_id", bill.ID, "error", err)
		return bill, fmt.Errorf("bill %s created but quote not closed: %w", bill.ID, err)
	}

	slog.Info("Quote converted", "quote_id", quoteID, "bill_id", bill.ID, "total", bill.Total)
	return bill, nil
}
