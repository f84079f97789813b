package models

import "github.com/clinicdesk/clinicdesk/internal/money"

// DiscountKind selects how a document-level discount is applied.
type DiscountKind string

const (
	DiscountNone       DiscountKind = "none"
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

// DiscountSpec describes a document-level discount.
// Exactly one of Percent or Amount is meaningful, selected by Kind.
type DiscountSpec struct {
	// Kind is none, percentage or fixed.
	Kind DiscountKind

	// Percent is the discount percentage (0-100) when Kind is percentage.
	Percent float64

	// Amount is the discount in cents when Kind is fixed.
	Amount money.Cents
}

// LineItem is one service line within a quote or bill.
// UnitPrice and Description are snapshotted from the catalog at add time.
type LineItem struct {
	// ID is the unique identifier for the line item (UUID format).
	ID string

	// ServiceID references the catalog service this line was created from.
	ServiceID string

	// Description is the service name captured at add time.
	Description string

	// Quantity is the number of units, always >= 1.
	Quantity int64

	// UnitPrice is the per-unit price in cents captured at add time.
	UnitPrice money.Cents

	// Discount is an optional absolute per-line discount in cents.
	// Never larger than UnitPrice * Quantity.
	Discount money.Cents

	// LineTotal is the derived line amount:
	// UnitPrice * Quantity - Discount.
	LineTotal money.Cents
}

// Totals are the derived financial fields of a document.
// Invariants: Subtotal == sum of LineTotal over items, and
// Total == Subtotal - DiscountAmount + TaxAmount. The four fields are
// always recomputed together by the calculator.
type Totals struct {
	Subtotal       money.Cents
	DiscountAmount money.Cents
	TaxAmount      money.Cents
	Total          money.Cents
}

// Document is the financial shape shared by Quote and Bill.
type Document struct {
	// ID is the unique identifier for the document (UUID format).
	ID string

	// PatientID is the patient this document belongs to.
	PatientID string

	// Date is the document date as a Unix timestamp.
	Date int64

	// Items is the ordered list of service lines. Line items are owned
	// exclusively by their document and never shared.
	Items []LineItem

	// Discount is the document-level discount.
	Discount DiscountSpec

	// TaxPercent is the tax percentage (>= 0) applied to the taxable base.
	TaxPercent float64

	// Totals are the derived subtotal/discount/tax/total fields.
	Totals

	// Notes holds free-form notes shown on the printed document.
	Notes string

	// CreatedAt is the Unix timestamp when the document was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last mutation.
	UpdatedAt int64
}
