// Package calculator implements the financial math for quotes and bills:
// line totals and the subtotal -> discount -> tax -> total chain.
//
// This is the single implementation of that chain in the codebase. UI and
// service layers call it and attach the result to a document in one atomic
// update; they never re-derive totals themselves.
package calculator

import (
	"fmt"

	"github.com/clinicdesk/clinicdesk/internal/domain"
	"github.com/clinicdesk/clinicdesk/internal/models"
	"github.com/clinicdesk/clinicdesk/internal/money"
)

// LineTotal computes unitPrice*quantity - discount for one service line.
//
// Quantities below 1 and negative amounts are rejected. A discount larger
// than the line amount is clamped to it; clamped reports this so the
// caller can surface domain.ErrDiscountExceedsLineValue as a warning
// without blocking the save.
func LineTotal(unitPrice money.Cents, quantity int64, discount money.Cents) (total money.Cents, clamped bool, err error) {
	if quantity < 1 {
		return 0, false, &domain.ValidationError{
			Err:     domain.ErrInvalidQuantity,
			Details: fmt.Sprintf("got %d", quantity),
		}
	}
	if unitPrice < 0 || discount < 0 {
		return 0, false, &domain.ValidationError{
			Err:     domain.ErrInvalidAmount,
			Details: "unit price and discount cannot be negative",
		}
	}

	gross := unitPrice * money.Cents(quantity)
	if discount > gross {
		return 0, true, nil
	}
	return gross - discount, false, nil
}

// Totals computes the derived financial fields for a document:
//
//	subtotal       = sum of line totals
//	discountAmount = percentage of subtotal, or fixed amount clamped to it
//	taxAmount      = taxPercent of (subtotal - discountAmount)
//	total          = taxable base + taxAmount
//
// Line totals are re-derived from each item's snapshotted fields rather
// than trusted from storage. Each percentage is rounded half-up exactly
// once; rounding is never compounded across steps. The function is pure
// and idempotent.
func Totals(items []models.LineItem, discount models.DiscountSpec, taxPercent float64) (models.Totals, error) {
	if taxPercent < 0 {
		return models.Totals{}, &domain.ValidationError{
			Err:     domain.ErrInvalidAmount,
			Details: fmt.Sprintf("tax percentage %v cannot be negative", taxPercent),
		}
	}

	var subtotal money.Cents
	for i := range items {
		it := &items[i]
		line, _, err := LineTotal(it.UnitPrice, it.Quantity, it.Discount)
		if err != nil {
			return models.Totals{}, fmt.Errorf("item %d: %w", i+1, err)
		}
		subtotal += line
	}

	discountAmount, err := discountFor(discount, subtotal)
	if err != nil {
		return models.Totals{}, err
	}

	taxable := subtotal - discountAmount
	taxAmount := money.PercentOf(taxable, taxPercent)

	return models.Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxAmount:      taxAmount,
		Total:          taxable + taxAmount,
	}, nil
}

// discountFor resolves a DiscountSpec against a subtotal. Both kinds are
// clamped to the subtotal so the taxable base can never go negative.
func discountFor(d models.DiscountSpec, subtotal money.Cents) (money.Cents, error) {
	switch d.Kind {
	case models.DiscountNone, "":
		return 0, nil
	case models.DiscountPercentage:
		if d.Percent < 0 {
			return 0, &domain.ValidationError{
				Err:     domain.ErrInvalidAmount,
				Details: fmt.Sprintf("discount percentage %v cannot be negative", d.Percent),
			}
		}
		return money.Min(money.PercentOf(subtotal, d.Percent), subtotal), nil
	case models.DiscountFixed:
		if d.Amount < 0 {
			return 0, &domain.ValidationError{
				Err:     domain.ErrInvalidAmount,
				Details: "fixed discount cannot be negative",
			}
		}
		return money.Min(d.Amount, subtotal), nil
	default:
		return 0, &domain.ValidationError{
			Err:     domain.ErrInvalidAmount,
			Details: fmt.Sprintf("unknown discount kind %q", d.Kind),
		}
	}
}
