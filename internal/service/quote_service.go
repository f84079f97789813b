package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/clinicdesk/clinicdesk/internal/calculator"
	"github.com/clinicdesk/clinicdesk/internal/domain"
	"github.com/clinicdesk/clinicdesk/internal/models"
	"github.com/clinicdesk/clinicdesk/internal/storage"
)

// QuoteService manages quote creation, editing and the quote lifecycle.
type QuoteService struct {
	store storage.Store
}

// NewQuoteService creates a new QuoteService with the given storage backend.
func NewQuoteService(store storage.Store) *QuoteService {
	return &QuoteService{store: store}
}

// QuoteInput carries the caller-editable fields of a quote.
type QuoteInput struct {
	PatientID  string `validate:"required"`
	Title      string
	Date       int64
	Items      []LineItemInput
	Discount   models.DiscountSpec
	TaxPercent float64
	ValidUntil int64
	Notes      string
}

// CreateQuote builds a new draft quote: snapshots catalog prices onto the
// items, derives all totals, and persists the result.
func (s *QuoteService) CreateQuote(ctx context.Context, in QuoteInput) (*models.Quote, Warnings, error) {
	if err := validate.Struct(in); err != nil {
		return nil, nil, invalidInput(err)
	}
	if _, err := s.store.GetPatient(ctx, in.PatientID); err != nil {
		return nil, nil, err
	}

	items, warnings, err := buildLineItems(ctx, s.store, in.Items)
	if err != nil {
		return nil, nil, err
	}
	totals, err := calculator.Totals(items, in.Discount, in.TaxPercent)
	if err != nil {
		return nil, nil, err
	}

	quote := &models.Quote{
		Document: models.Document{
			PatientID:  in.PatientID,
			Date:       in.Date,
			Items:      items,
			Discount:   in.Discount,
			TaxPercent: in.TaxPercent,
			Totals:     totals,
			Notes:      in.Notes,
		},
		Title:      in.Title,
		ValidUntil: in.ValidUntil,
		Status:     models.QuoteStatusDraft,
	}

	if err := s.store.CreateQuote(ctx, quote); err != nil {
		slog.Error("CreateQuote failed", "error", err)
		return nil, nil, err
	}

	slog.Info("Quote created", "quote_id", quote.ID, "patient_id", quote.PatientID, "total", quote.Total)
	return quote, warnings, nil
}

// UpdateQuote replaces the editable fields of a draft quote and re-derives
// its totals in the same update. Non-draft quotes are frozen.
func (s *QuoteService) UpdateQuote(ctx context.Context, id string, in QuoteInput) (*models.Quote, Warnings, error) {
	if err := validate.Struct(in); err != nil {
		return nil, nil, invalidInput(err)
	}

	quote, err := s.store.GetQuote(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !domain.QuoteEditable(quote.Status) {
		return nil, nil, &domain.ValidationError{
			Err:     domain.ErrEditNotAllowed,
			Details: fmt.Sprintf("quote is %s", quote.Status),
		}
	}

	items, warnings, err := buildLineItems(ctx, s.store, in.Items)
	if err != nil {
		return nil, nil, err
	}
	totals, err := calculator.Totals(items, in.Discount, in.TaxPercent)
	if err != nil {
		return nil, nil, err
	}

	quote.PatientID = in.PatientID
	quote.Title = in.Title
	if in.Date != 0 {
		quote.Date = in.Date
	}
	quote.Items = items
	quote.Discount = in.Discount
	quote.TaxPercent = in.TaxPercent
	quote.Totals = totals
	quote.ValidUntil = in.ValidUntil
	quote.Notes = in.Notes

	if err := s.store.UpdateQuote(ctx, quote); err != nil {
		slog.Error("UpdateQuote failed", "quote_id", id, "error", err)
		return nil, nil, err
	}

	slog.Info("Quote updated", "quote_id", quote.ID, "total", quote.Total)
	return quote, warnings, nil
}

// TransitionQuote moves a quote to the target status if the transition
// table permits it.
func (s *QuoteService) TransitionQuote(ctx context.Context, id string, target models.QuoteStatus) (*models.Quote, error) {
	quote, err := s.store.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.TransitionQuote(quote.Status, target); err != nil {
		return nil, err
	}

	from := quote.Status
	quote.Status = target
	if err := s.store.UpdateQuote(ctx, quote); err != nil {
		slog.Error("TransitionQuote failed", "quote_id", id, "error", err)
		return nil, err
	}

	slog.Info("Quote status changed", "quote_id", id, "from", from, "to", target)
	return quote, nil
}

// DeleteQuote removes a draft quote. Any other status is kept as history.
func (s *QuoteService) DeleteQuote(ctx context.Context, id string) error {
	quote, err := s.store.GetQuote(ctx, id)
	if err != nil {
		return err
	}
	if !domain.QuoteDeletable(quote.Status) {
		return &domain.ValidationError{
			Err:     domain.ErrDeleteNotAllowed,
			Details: fmt.Sprintf("quote is %s", quote.Status),
		}
	}

	if err := s.store.DeleteQuote(ctx, id); err != nil {
		slog.Error("DeleteQuote failed", "quote_id", id, "error", err)
		return err
	}
	slog.Info("Quote deleted", "quote_id", id)
	return nil
}

// GetQuote retrieves a quote by ID.
func (s *QuoteService) GetQuote(ctx context.Context, id string) (*models.Quote, error) {
	return s.store.GetQuote(ctx, id)
}

// ListQuotes retrieves quotes, optionally filtered by patient.
func (s *QuoteService) ListQuotes(ctx context.Context, patientID string) ([]models.Quote, error) {
	return s.store.ListQuotes(ctx, patientID)
}
