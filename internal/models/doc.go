// Package models defines the core domain models for Clinicdesk.
//
// # Models
//
//   - Patient: a clinic patient record
//   - Category, Service: the service catalog quotes and bills draw from
//   - Quote: a priced proposal for a patient, convertible into a Bill
//   - Bill: an invoice with a payment ledger and derived balance
//   - LineItem, DiscountSpec, Payment: children of the documents above
//
// Quotes and bills share the same financial shape (items, discount, tax,
// derived totals) through the embedded Document struct.
//
// # Design Principles
//
//  1. **Derived fields are never hand-edited**: Subtotal, DiscountAmount,
//     TaxAmount, Total, AmountPaid and Balance are written only by the
//     calculator and the payment ledger, always together in one update.
//  2. **Money is integer cents**: see the money package. No float fields
//     carry currency amounts.
//  3. **Statuses are closed enums**: legal transitions live in the domain
//     package, not in callers.
//  4. **Avoid circular references**: children point at parents via ID
//     strings, never pointers.
package models
