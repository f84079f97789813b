package models

// Patient represents a clinic patient record.
// Quotes and bills reference patients by ID.
type Patient struct {
	// ID is the unique identifier for the patient (UUID format).
	ID string

	// Name is the patient's full name.
	Name string

	// Phone is the primary contact number.
	Phone string

	// Email is the patient's email address, if any.
	Email string

	// Address is the postal address, free-form.
	Address string

	// Notes holds free-form clinical or administrative notes.
	Notes string

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last modification.
	UpdatedAt int64
}
