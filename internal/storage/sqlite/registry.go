package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/models"
)

// CreatePatient persists a new patient, generating ID and timestamps.
func (s *SQLiteStore) CreatePatient(ctx context.Context, p *models.Patient) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if p.CreatedAt == 0 {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO patients (id, name, phone, email, address, notes, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Name, p.Phone, p.Email, p.Address, p.Notes, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert patient: %w", err)
	}
	return nil
}

// GetPatient retrieves a patient by ID.
func (s *SQLiteStore) GetPatient(ctx context.Context, id string) (*models.Patient, error) {
	p := &models.Patient{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, phone, email, address, notes, created_at, updated_at FROM patients WHERE id = ?",
		id,
	).Scan(&p.ID, &p.Name, &p.Phone, &p.Email, &p.Address, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if isNoRows(err) {
		return nil, notFound("patient", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return p, nil
}

// ListPatients retrieves all patients ordered by name.
func (s *SQLiteStore) ListPatients(ctx context.Context) ([]models.Patient, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, phone, email, address, notes, created_at, updated_at FROM patients ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	var patients []models.Patient
	for rows.Next() {
		var p models.Patient
		if err := rows.Scan(&p.ID, &p.Name, &p.Phone, &p.Email, &p.Address, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate patients: %w", err)
	}
	return patients, nil
}

// UpdatePatient updates an existing patient record.
func (s *SQLiteStore) UpdatePatient(ctx context.Context, p *models.Patient) error {
	p.UpdatedAt = time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		"UPDATE patients SET name = ?, phone = ?, email = ?, address = ?, notes = ?, updated_at = ? WHERE id = ?",
		p.Name, p.Phone, p.Email, p.Address, p.Notes, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return requireRow(res, "patient", p.ID)
}

// DeletePatient removes a patient by ID.
func (s *SQLiteStore) DeletePatient(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM patients WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return requireRow(res, "patient", id)
}

// CreateCategory persists a new catalog category.
func (s *SQLiteStore) CreateCategory(ctx context.Context, c *models.Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (id, name) VALUES (?, ?)", c.ID, c.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

// ListCategories retrieves all categories ordered by name.
func (s *SQLiteStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

// CreateService persists a new catalog service.
func (s *SQLiteStore) CreateService(ctx context.Context, svc *models.Service) error {
	if svc.ID == "" {
		svc.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO services (id, category_id, name, description, price_cents) VALUES (?, ?, ?, ?, ?)",
		svc.ID, nullable(svc.CategoryID), svc.Name, svc.Description, int64(svc.Price),
	)
	if err != nil {
		return fmt.Errorf("failed to insert service: %w", err)
	}
	return nil
}

// GetService retrieves a catalog service by ID.
func (s *SQLiteStore) GetService(ctx context.Context, id string) (*models.Service, error) {
	svc := &models.Service{}
	var categoryID *string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, category_id, name, description, price_cents FROM services WHERE id = ?",
		id,
	).Scan(&svc.ID, &categoryID, &svc.Name, &svc.Description, &svc.Price)
	if isNoRows(err) {
		return nil, notFound("service", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	if categoryID != nil {
		svc.CategoryID = *categoryID
	}
	return svc, nil
}

// ListServices retrieves all catalog services ordered by name.
func (s *SQLiteStore) ListServices(ctx context.Context) ([]models.Service, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, category_id, name, description, price_cents FROM services ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		var svc models.Service
		var categoryID *string
		if err := rows.Scan(&svc.ID, &categoryID, &svc.Name, &svc.Description, &svc.Price); err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		if categoryID != nil {
			svc.CategoryID = *categoryID
		}
		services = append(services, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate services: %w", err)
	}
	return services, nil
}

// UpdateService updates an existing catalog service.
func (s *SQLiteStore) UpdateService(ctx context.Context, svc *models.Service) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE services SET category_id = ?, name = ?, description = ?, price_cents = ? WHERE id = ?",
		nullable(svc.CategoryID), svc.Name, svc.Description, int64(svc.Price), svc.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	return requireRow(res, "service", svc.ID)
}

// DeleteService removes a catalog service by ID.
func (s *SQLiteStore) DeleteService(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM services WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	return requireRow(res, "service", id)
}
