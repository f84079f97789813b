package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinicdesk/internal/domain"
	"github.com/clinicdesk/clinicdesk/internal/money"
)

func TestPatientRegistry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.registry.CreatePatient(ctx, PatientInput{
		Name:  "Noa Fischer",
		Email: "noa@example.com",
		Phone: "555-0199",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)

	p, err = f.registry.UpdatePatient(ctx, p.ID, PatientInput{
		Name:  "Noa Fischer",
		Email: "noa@example.com",
		Notes: "prefers morning appointments",
	})
	require.NoError(t, err)
	assert.Equal(t, "prefers morning appointments", p.Notes)

	patients, err := f.registry.ListPatients(ctx)
	require.NoError(t, err)
	assert.Len(t, patients, 2) // fixture patient plus this one

	require.NoError(t, f.registry.DeletePatient(ctx, p.ID))
	_, err = f.registry.GetPatient(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPatientValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.registry.CreatePatient(ctx, PatientInput{})
	assert.Error(t, err, "name is required")

	_, err = f.registry.CreatePatient(ctx, PatientInput{Name: "x", Email: "not-an-email"})
	assert.Error(t, err)
}

func TestServiceCatalogManagement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cat, err := f.registry.CreateCategory(ctx, "Orthodontics")
	require.NoError(t, err)

	svc, err := f.registry.CreateService(ctx, ServiceInput{
		CategoryID: cat.ID,
		Name:       "Braces consult",
		Price:      7500,
	})
	require.NoError(t, err)
	assert.Equal(t, cat.ID, svc.CategoryID)

	_, err = f.registry.CreateService(ctx, ServiceInput{Name: "Free check", Price: -1})
	assert.Error(t, err, "negative price rejected")

	services, err := f.registry.ListServices(ctx)
	require.NoError(t, err)
	assert.Len(t, services, 2) // fixture service plus this one

	svc, err = f.registry.UpdateService(ctx, svc.ID, ServiceInput{
		CategoryID: cat.ID,
		Name:       "Braces consult",
		Price:      8000,
	})
	require.NoError(t, err)
	assert.Equal(t, money.Cents(8000), svc.Price)

	require.NoError(t, f.registry.DeleteService(ctx, svc.ID))
}
