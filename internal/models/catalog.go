package models

import "github.com/clinicdesk/clinicdesk/internal/money"

// Category groups services in the catalog (e.g. "Consultations", "Surgery").
type Category struct {
	// ID is the unique identifier for the category (UUID format).
	ID string

	// Name is the display name of the category.
	Name string
}

// Service is a billable clinic service in the catalog.
// Its price is the current list price; documents snapshot the price onto
// their line items at add time, so later catalog edits never change an
// existing quote or bill.
type Service struct {
	// ID is the unique identifier for the service (UUID format).
	ID string

	// CategoryID is the category this service belongs to, if any.
	CategoryID string

	// Name is the display name of the service.
	Name string

	// Description is an optional longer description.
	Description string

	// Price is the current list price in cents.
	Price money.Cents
}
