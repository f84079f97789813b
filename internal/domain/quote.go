package domain

import (
	"time"

	"github.com/clinicdesk/clinicdesk/internal/models"
)

// quoteTransitions is the closed transition table for quotes.
// Statuses with no entry are terminal. Expiry is reachable from every
// non-terminal status: a quote whose validity lapses before conversion
// expires no matter how far it got.
var quoteTransitions = map[models.QuoteStatus][]models.QuoteStatus{
	models.QuoteStatusDraft: {
		models.QuoteStatusSent,
		models.QuoteStatusRejected,
		models.QuoteStatusCancelled,
		models.QuoteStatusExpired,
	},
	models.QuoteStatusSent: {
		models.QuoteStatusAccepted,
		models.QuoteStatusRejected,
		models.QuoteStatusExpired,
	},
	models.QuoteStatusAccepted: {
		models.QuoteStatusConverted,
		models.QuoteStatusExpired,
	},
}

// CanTransitionQuote reports whether from -> to is a legal quote transition.
func CanTransitionQuote(from, to models.QuoteStatus) bool {
	for _, next := range quoteTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionQuote validates from -> to, returning a TransitionError for
// illegal moves.
func TransitionQuote(from, to models.QuoteStatus) error {
	if !CanTransitionQuote(from, to) {
		return &TransitionError{Entity: "quote", From: string(from), To: string(to)}
	}
	return nil
}

// QuoteTerminal reports whether the status has no outbound transitions.
func QuoteTerminal(s models.QuoteStatus) bool {
	return len(quoteTransitions[s]) == 0
}

// QuoteEditable reports whether item/discount/tax edits are permitted.
// Only drafts are editable; anything the patient has seen is frozen.
func QuoteEditable(s models.QuoteStatus) bool {
	return s == models.QuoteStatusDraft
}

// QuoteDeletable reports whether the quote may be deleted.
// One rule everywhere: only drafts. Terminal quotes stay as history.
func QuoteDeletable(s models.QuoteStatus) bool {
	return s == models.QuoteStatusDraft
}

// QuoteConvertible reports whether the quote may be converted into a bill.
func QuoteConvertible(s models.QuoteStatus) bool {
	return s == models.QuoteStatusAccepted
}

// QuoteExpired reports whether a quote's validity window has lapsed while
// it is still in a non-terminal status. This is a display predicate; the
// stored status only becomes expired through an explicit transition.
func QuoteExpired(q *models.Quote, now time.Time) bool {
	if QuoteTerminal(q.Status) {
		return false
	}
	return q.ValidUntil > 0 && now.Unix() > q.ValidUntil
}
