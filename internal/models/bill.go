package models

import "github.com/clinicdesk/clinicdesk/internal/money"

// BillStatus is the lifecycle state of a bill.
// The legal transitions are defined in the domain package.
type BillStatus string

const (
	BillStatusDraft         BillStatus = "draft"
	BillStatusPending       BillStatus = "pending"
	BillStatusPartiallyPaid BillStatus = "partially_paid"
	BillStatusPaid          BillStatus = "paid"
	BillStatusOverdue       BillStatus = "overdue"
	BillStatusCancelled     BillStatus = "cancelled"
)

// PaymentMethod is how a payment was made.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCheque   PaymentMethod = "cheque"
	PaymentMethodMobile   PaymentMethod = "mobile"
	PaymentMethodOther    PaymentMethod = "other"
)

// Payment is one entry in a bill's payment ledger.
// The ledger is append-only: payments are never edited in place. Reversal
// means deleting the payment, which recomputes the whole ledger.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// BillID is the bill this payment applies to.
	BillID string

	// Amount is the payment amount in cents, always > 0 and never more
	// than the bill's balance at the time it was applied.
	Amount money.Cents

	// Method is how the payment was made.
	Method PaymentMethod

	// Reference is an optional external reference (receipt no, txn id).
	Reference string

	// Notes holds optional free-form notes.
	Notes string

	// Date is the payment date as a Unix timestamp.
	Date int64
}

// Bill is an invoice for a patient, with a payment ledger.
type Bill struct {
	Document

	// DueDate is the Unix timestamp the bill is due by.
	DueDate int64

	// QuoteID references the quote this bill was converted from, if any.
	// Set only at creation and immutable afterwards.
	QuoteID string

	// Payments is the ordered, append-only payment ledger.
	Payments []Payment

	// AmountPaid is derived: the sum of Payments amounts.
	AmountPaid money.Cents

	// Balance is derived: Total - AmountPaid.
	Balance money.Cents

	// Status is the current lifecycle state.
	Status BillStatus
}
