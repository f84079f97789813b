// Package service implements the operations the UI layer calls: patient
// and catalog management, quote and bill lifecycles, conversion, and the
// payment ledger.
//
// Every mutation follows the same shape: load the document, validate the
// operation against its status, recompute all derived fields through the
// calculator, then persist the finished document in one store call. A
// failed operation never leaves a partially mutated document behind —
// work happens on the loaded copy and is only persisted on success.
package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/clinicdesk/clinicdesk/internal/calculator"
	"github.com/clinicdesk/clinicdesk/internal/domain"
	"github.com/clinicdesk/clinicdesk/internal/models"
	"github.com/clinicdesk/clinicdesk/internal/money"
	"github.com/clinicdesk/clinicdesk/internal/storage"
)

// Warnings are recoverable issues raised while building a document, such
// as a clamped per-line discount. The document is valid as returned; the
// UI decides whether to surface or block on them.
type Warnings []error

// LineItemInput describes one requested service line. The unit price and
// description are snapshotted from the catalog, never supplied by the
// caller.
type LineItemInput struct {
	ServiceID string `validate:"required"`
	Quantity  int64
	Discount  money.Cents
}

// buildLineItems resolves inputs against the catalog and computes line
// totals. Discounts exceeding the line amount are clamped and reported as
// warnings wrapping domain.ErrDiscountExceedsLineValue.
func buildLineItems(ctx context.Context, store storage.Store, inputs []LineItemInput) ([]models.LineItem, Warnings, error) {
	var warnings Warnings
	items := make([]models.LineItem, 0, len(inputs))
	for i, in := range inputs {
		svc, err := store.GetService(ctx, in.ServiceID)
		if err != nil {
			return nil, nil, fmt.Errorf("item %d: %w", i+1, err)
		}

		total, clamped, err := calculator.LineTotal(svc.Price, in.Quantity, in.Discount)
		if err != nil {
			return nil, nil, fmt.Errorf("item %d: %w", i+1, err)
		}

		discount := in.Discount
		if clamped {
			discount = svc.Price * money.Cents(in.Quantity)
			warnings = append(warnings, &domain.ValidationError{
				Err:     domain.ErrDiscountExceedsLineValue,
				Details: fmt.Sprintf("item %d (%s): discount clamped to %s", i+1, svc.Name, money.Format(discount)),
			})
		}

		items = append(items, models.LineItem{
			ServiceID:   svc.ID,
			Description: svc.Name,
			Quantity:    in.Quantity,
			UnitPrice:   svc.Price,
			Discount:    discount,
			LineTotal:   total,
		})
	}
	return items, warnings, nil
}

// validate checks struct tags on service inputs.
var validate = validator.New()

// invalidInput marks a validator failure as a caller error.
func invalidInput(err error) error {
	return fmt.Errorf("invalid input: %w", err)
}
