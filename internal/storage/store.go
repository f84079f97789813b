// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/clinicdesk/clinicdesk/internal/models"
)

// Store defines the interface for clinic data persistence.
// This abstraction keeps the core testable without a storage dependency
// and allows swapping backends without changing the service layer.
//
// Persistence is write-behind with respect to the in-memory documents the
// services operate on: there is no transaction spanning memory and disk,
// so a crash between a mutation and its save can lose that mutation. This
// is an accepted limitation of a single-user, device-local application.
//
// Lookups for missing records return an error wrapping domain.ErrNotFound.
type Store interface {
	// Patients.
	CreatePatient(ctx context.Context, p *models.Patient) error
	GetPatient(ctx context.Context, id string) (*models.Patient, error)
	ListPatients(ctx context.Context) ([]models.Patient, error)
	UpdatePatient(ctx context.Context, p *models.Patient) error
	DeletePatient(ctx context.Context, id string) error

	// Service catalog.
	CreateCategory(ctx context.Context, c *models.Category) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateService(ctx context.Context, svc *models.Service) error
	GetService(ctx context.Context, id string) (*models.Service, error)
	ListServices(ctx context.Context) ([]models.Service, error)
	UpdateService(ctx context.Context, svc *models.Service) error
	DeleteService(ctx context.Context, id string) error

	// Quotes. Create and Update persist the document with its items in one
	// transaction. ListQuotes filters by patient when patientID is non-empty.
	CreateQuote(ctx context.Context, q *models.Quote) error
	GetQuote(ctx context.Context, id string) (*models.Quote, error)
	ListQuotes(ctx context.Context, patientID string) ([]models.Quote, error)
	UpdateQuote(ctx context.Context, q *models.Quote) error
	DeleteQuote(ctx context.Context, id string) error

	// Bills. Create and Update persist the document with its items and
	// payment ledger in one transaction, preserving ledger order.
	CreateBill(ctx context.Context, b *models.Bill) error
	GetBill(ctx context.Context, id string) (*models.Bill, error)
	ListBills(ctx context.Context, patientID string) ([]models.Bill, error)
	UpdateBill(ctx context.Context, b *models.Bill) error
	DeleteBill(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}
