package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/models"
)

// CreateQuote persists a new quote with its items in one transaction.
func (s *SQLiteStore) CreateQuote(ctx context.Context, q *models.Quote) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if q.CreatedAt == 0 {
		q.CreatedAt = now
	}
	q.UpdatedAt = now
	if q.Date == 0 {
		q.Date = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO quotes (id, patient_id, title, date, discount_kind, discount_percent, discount_cents,
			tax_percent, subtotal_cents, discount_amount_cents, tax_amount_cents, total_cents,
			status, valid_until, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.PatientID, q.Title, q.Date, string(q.Discount.Kind), q.Discount.Percent, int64(q.Discount.Amount),
		q.TaxPercent, int64(q.Subtotal), int64(q.DiscountAmount), int64(q.TaxAmount), int64(q.Total),
		string(q.Status), q.ValidUntil, q.Notes, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}

	if err := insertItems(ctx, tx, "quote_items", "quote_id", q.ID, q.Items); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetQuote retrieves a quote by ID, including all items in order.
func (s *SQLiteStore) GetQuote(ctx context.Context, id string) (*models.Quote, error) {
	q := &models.Quote{}
	var kind, status string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, patient_id, title, date, discount_kind, discount_percent, discount_cents,
			tax_percent, subtotal_cents, discount_amount_cents, tax_amount_cents, total_cents,
			status, valid_until, notes, created_at, updated_at
		FROM quotes WHERE id = ?`, id,
	).Scan(&q.ID, &q.PatientID, &q.Title, &q.Date, &kind, &q.Discount.Percent, &q.Discount.Amount,
		&q.TaxPercent, &q.Subtotal, &q.DiscountAmount, &q.TaxAmount, &q.Total,
		&status, &q.ValidUntil, &q.Notes, &q.CreatedAt, &q.UpdatedAt)
	if isNoRows(err) {
		return nil, notFound("quote", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	q.Discount.Kind = models.DiscountKind(kind)
	q.Status = models.QuoteStatus(status)

	q.Items, err = s.loadItems(ctx, "quote_items", "quote_id", q.ID)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ListQuotes retrieves quotes, newest first, optionally filtered by patient.
// Items are loaded for each quote so totals can be re-derived by callers.
func (s *SQLiteStore) ListQuotes(ctx context.Context, patientID string) ([]models.Quote, error) {
	query := `SELECT id FROM quotes ORDER BY date DESC, created_at DESC`
	args := []any{}
	if patientID != "" {
		query = `SELECT id FROM quotes WHERE patient_id = ? ORDER BY date DESC, created_at DESC`
		args = append(args, patientID)
	}

	ids, err := s.collectIDs(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}

	quotes := make([]models.Quote, 0, len(ids))
	for _, id := range ids {
		q, err := s.GetQuote(ctx, id)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, *q)
	}
	return quotes, nil
}

// UpdateQuote rewrites a quote and its items in one transaction.
func (s *SQLiteStore) UpdateQuote(ctx context.Context, q *models.Quote) error {
	q.UpdatedAt = time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE quotes SET patient_id = ?, title = ?, date = ?, discount_kind = ?, discount_percent = ?,
			discount_cents = ?, tax_percent = ?, subtotal_cents = ?, discount_amount_cents = ?,
			tax_amount_cents = ?, total_cents = ?, status = ?, valid_until = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		q.PatientID, q.Title, q.Date, string(q.Discount.Kind), q.Discount.Percent,
		int64(q.Discount.Amount), q.TaxPercent, int64(q.Subtotal), int64(q.DiscountAmount),
		int64(q.TaxAmount), int64(q.Total), string(q.Status), q.ValidUntil, q.Notes, q.UpdatedAt,
		q.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update quote: %w", err)
	}
	if err := requireRow(res, "quote", q.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM quote_items WHERE quote_id = ?", q.ID); err != nil {
		return fmt.Errorf("failed to clear quote items: %w", err)
	}
	if err := insertItems(ctx, tx, "quote_items", "quote_id", q.ID, q.Items); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteQuote removes a quote and (via cascade) its items.
func (s *SQLiteStore) DeleteQuote(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM quotes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete quote: %w", err)
	}
	return requireRow(res, "quote", id)
}

// insertItems writes a document's line items preserving their order.
func insertItems(ctx context.Context, tx *sql.Tx, table, parentCol, parentID string, items []models.LineItem) error {
	for i := range items {
		item := &items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx,
			fmt.Sprintf(`INSERT INTO %s (id, %s, service_id, description, quantity, unit_price_cents,
				discount_cents, line_total_cents, position) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, table, parentCol),
			item.ID, parentID, item.ServiceID, item.Description, item.Quantity,
			int64(item.UnitPrice), int64(item.Discount), int64(item.LineTotal), i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert line item: %w", err)
		}
	}
	return nil
}

// loadItems reads a document's line items in stored order.
func (s *SQLiteStore) loadItems(ctx context.Context, table, parentCol, parentID string) ([]models.LineItem, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, service_id, description, quantity, unit_price_cents, discount_cents,
			line_total_cents FROM %s WHERE %s = ? ORDER BY position`, table, parentCol),
		parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get line items: %w", err)
	}
	defer rows.Close()

	var items []models.LineItem
	for rows.Next() {
		var item models.LineItem
		if err := rows.Scan(&item.ID, &item.ServiceID, &item.Description, &item.Quantity,
			&item.UnitPrice, &item.Discount, &item.LineTotal); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate line items: %w", err)
	}
	return items, nil
}

// collectIDs runs a single-column id query and returns the values.
func (s *SQLiteStore) collectIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
