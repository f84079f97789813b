package service

import (
	"context"
	"log/slog"

	"github.com/clinicdesk/clinicdesk/internal/models"
	"github.com/clinicdesk/clinicdesk/internal/money"
	"github.com/clinicdesk/clinicdesk/internal/storage"
)

// RegistryService manages the patient registry and the service catalog.
type RegistryService struct {
	store storage.Store
}

// NewRegistryService creates a new RegistryService with the given storage
// backend.
func NewRegistryService(store storage.Store) *RegistryService {
	return &RegistryService{store: store}
}

// PatientInput carries the editable fields of a patient record.
type PatientInput struct {
	Name    string `validate:"required"`
	Phone   string
	Email   string `validate:"omitempty,email"`
	Address string
	Notes   string
}

// CreatePatient registers a new patient.
func (s *RegistryService) CreatePatient(ctx context.Context, in PatientInput) (*models.Patient, error) {
	if err := validate.Struct(in); err != nil {
		return nil, invalidInput(err)
	}

	patient := &models.Patient{
		Name:    in.Name,
		Phone:   in.Phone,
		Email:   in.Email,
		Address: in.Address,
		Notes:   in.Notes,
	}
	if err := s.store.CreatePatient(ctx, patient); err != nil {
		slog.Error("CreatePatient failed", "error", err)
		return nil, err
	}
	slog.Info("Patient created", "patient_id", patient.ID, "name", patient.Name)
	return patient, nil
}

// UpdatePatient updates an existing patient record.
func (s *RegistryService) UpdatePatient(ctx context.Context, id string, in PatientInput) (*models.Patient, error) {
	if err := validate.Struct(in); err != nil {
		return nil, invalidInput(err)
	}

	patient, err := s.store.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	patient.Name = in.Name
	patient.Phone = in.Phone
	patient.Email = in.Email
	patient.Address = in.Address
	patient.Notes = in.Notes

	if err := s.store.UpdatePatient(ctx, patient); err != nil {
		slog.Error("UpdatePatient failed", "patient_id", id, "error", err)
		return nil, err
	}
	slog.Info("Patient updated", "patient_id", id)
	return patient, nil
}

// GetPatient retrieves a patient by ID.
func (s *RegistryService) GetPatient(ctx context.Context, id string) (*models.Patient, error) {
	return s.store.GetPatient(ctx, id)
}

// ListPatients retrieves all patients.
func (s *RegistryService) ListPatients(ctx context.Context) ([]models.Patient, error) {
	return s.store.ListPatients(ctx)
}

// DeletePatient removes a patient record.
func (s *RegistryService) DeletePatient(ctx context.Context, id string) error {
	if err := s.store.DeletePatient(ctx, id); err != nil {
		slog.Error("DeletePatient failed", "patient_id", id, "error", err)
		return err
	}
	slog.Info("Patient deleted", "patient_id", id)
	return nil
}

// CreateCategory adds a catalog category.
func (s *RegistryService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	category := &models.Category{Name: name}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		slog.Error("CreateCategory failed", "error", err)
		return nil, err
	}
	slog.Info("Category created", "category_id", category.ID, "name", name)
	return category, nil
}

// ListCategories retrieves all catalog categories.
func (s *RegistryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListCategories(ctx)
}

// ServiceInput carries the editable fields of a catalog service.
type ServiceInput struct {
	CategoryID  string
	Name        string `validate:"required"`
	Description string
	Price       money.Cents `validate:"gte=0"`
}

// CreateService adds a service to the catalog.
func (s *RegistryService) CreateService(ctx context.Context, in ServiceInput) (*models.Service, error) {
	if err := validate.Struct(in); err != nil {
		return nil, invalidInput(err)
	}

	svc := &models.Service{
		CategoryID:  in.CategoryID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
	}
	if err := s.store.CreateService(ctx, svc); err != nil {
		slog.Error("CreateService failed", "error", err)
		return nil, err
	}
	slog.Info("Service created", "service_id", svc.ID, "name", svc.Name, "price", svc.Price)
	return svc, nil
}

// UpdateService updates a catalog service. Existing documents keep the
// prices they snapshotted at add time.
func (s *RegistryService) UpdateService(ctx context.Context, id string, in ServiceInput) (*models.Service, error) {
	if err := validate.Struct(in); err != nil {
		return nil, invalidInput(err)
	}

	svc, err := s.store.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	svc.CategoryID = in.CategoryID
	svc.Name = in.Name
	svc.Description = in.Description
	svc.Price = in.Price

	if err := s.store.UpdateService(ctx, svc); err != nil {
		slog.Error("UpdateService failed", "service_id", id, "error", err)
		return nil, err
	}
	slog.Info("Service updated", "service_id", id)
	return svc, nil
}

// ListServices retrieves the full service catalog.
func (s *RegistryService) ListServices(ctx context.Context) ([]models.Service, error) {
	return s.store.ListServices(ctx)
}

// DeleteService removes a service from the catalog.
func (s *RegistryService) DeleteService(ctx context.Context, id string) error {
	if err := s.store.DeleteService(ctx, id); err != nil {
		slog.Error("DeleteService failed", "service_id", id, "error", err)
		return err
	}
	slog.Info("Service deleted", "service_id", id)
	return nil
}
