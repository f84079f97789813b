package models

// QuoteStatus is the lifecycle state of a quote.
// The legal transitions are defined in the domain package.
type QuoteStatus string

const (
	QuoteStatusDraft     QuoteStatus = "draft"
	QuoteStatusSent      QuoteStatus = "sent"
	QuoteStatusAccepted  QuoteStatus = "accepted"
	QuoteStatusRejected  QuoteStatus = "rejected"
	QuoteStatusExpired   QuoteStatus = "expired"
	QuoteStatusCancelled QuoteStatus = "cancelled"
	QuoteStatusConverted QuoteStatus = "converted"
)

// Quote is a priced treatment proposal for a patient.
// An accepted quote can be converted into a bill exactly once.
type Quote struct {
	Document

	// Title is a short human-readable name for the quote.
	Title string

	// ValidUntil is the Unix timestamp after which the quote may be expired.
	ValidUntil int64

	// Status is the current lifecycle state.
	Status QuoteStatus
}
