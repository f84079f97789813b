package domain

import (
	"time"

	"github.com/clinicdesk/clinicdesk/internal/models"
	"github.com/clinicdesk/clinicdesk/internal/money"
)

// billTransitions is the closed transition table for bills.
// paid and cancelled are terminal. overdue is an explicit status reached
// by a deliberate transition (scheduled job or front-desk action), never
// set implicitly; see IsOverdue for the display predicate.
var billTransitions = map[models.BillStatus][]models.BillStatus{
	models.BillStatusDraft: {
		models.BillStatusPending,
		models.BillStatusCancelled,
	},
	models.BillStatusPending: {
		models.BillStatusPartiallyPaid,
		models.BillStatusPaid,
		models.BillStatusOverdue,
		models.BillStatusCancelled,
	},
	models.BillStatusPartiallyPaid: {
		models.BillStatusPaid,
		models.BillStatusOverdue,
		models.BillStatusCancelled,
	},
	models.BillStatusOverdue: {
		models.BillStatusPartiallyPaid,
		models.BillStatusPaid,
		models.BillStatusCancelled,
	},
}

// CanTransitionBill reports whether from -> to is a legal bill transition.
func CanTransitionBill(from, to models.BillStatus) bool {
	for _, next := range billTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionBill validates from -> to, returning a TransitionError for
// illegal moves.
func TransitionBill(from, to models.BillStatus) error {
	if !CanTransitionBill(from, to) {
		return &TransitionError{Entity: "bill", From: string(from), To: string(to)}
	}
	return nil
}

// BillTerminal reports whether the status has no outbound transitions.
func BillTerminal(s models.BillStatus) bool {
	return len(billTransitions[s]) == 0
}

// BillClosed reports whether the bill accepts no further payments.
func BillClosed(s models.BillStatus) bool {
	return s == models.BillStatusPaid || s == models.BillStatusCancelled
}

// BillEditable reports whether item/discount/tax edits are permitted.
func BillEditable(s models.BillStatus) bool {
	return s == models.BillStatusDraft || s == models.BillStatusPending
}

// BillDeletable reports whether the bill may be deleted.
func BillDeletable(s models.BillStatus) bool {
	return s == models.BillStatusDraft
}

// DerivePaymentStatus returns the status implied by the ledger after a
// payment is applied or removed: settled ledgers are paid, partial ledgers
// are partially_paid, and an emptied ledger falls back to pending unless
// the bill never left draft.
func DerivePaymentStatus(current models.BillStatus, amountPaid, total money.Cents) models.BillStatus {
	switch {
	case total > 0 && amountPaid >= total:
		return models.BillStatusPaid
	case amountPaid > 0:
		return models.BillStatusPartiallyPaid
	case current == models.BillStatusDraft:
		return models.BillStatusDraft
	default:
		return models.BillStatusPending
	}
}

// IsOverdue reports whether a bill should be highlighted as overdue: past
// its due date with an open balance. Purely a view-level flag; it never
// changes the stored status.
func IsOverdue(b *models.Bill, now time.Time) bool {
	if BillClosed(b.Status) {
		return false
	}
	return b.DueDate > 0 && now.Unix() > b.DueDate && b.Balance > 0
}
