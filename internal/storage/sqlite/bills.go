package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/models"
)

// CreateBill persists a new bill with its items and payments in one
// transaction.
func (s *SQLiteStore) CreateBill(ctx context.Context, b *models.Bill) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if b.CreatedAt == 0 {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	if b.Date == 0 {
		b.Date = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bills (id, patient_id, quote_id, date, due_date, discount_kind, discount_percent,
			discount_cents, tax_percent, subtotal_cents, discount_amount_cents, tax_amount_cents,
			total_cents, amount_paid_cents, balance_cents, status, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.PatientID, b.QuoteID, b.Date, b.DueDate, string(b.Discount.Kind), b.Discount.Percent,
		int64(b.Discount.Amount), b.TaxPercent, int64(b.Subtotal), int64(b.DiscountAmount), int64(b.TaxAmount),
		int64(b.Total), int64(b.AmountPaid), int64(b.Balance), string(b.Status), b.Notes, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	if err := insertItems(ctx, tx, "bill_items", "bill_id", b.ID, b.Items); err != nil {
		return err
	}
	if err := insertPayments(ctx, tx, b.ID, b.Payments); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetBill retrieves a bill by ID, including items and the payment ledger
// in order.
func (s *SQLiteStore) GetBill(ctx context.Context, id string) (*models.Bill, error) {
	b := &models.Bill{}
	var kind, status string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, patient_id, quote_id, date, due_date, discount_kind, discount_percent, discount_cents,
			tax_percent, subtotal_cents, discount_amount_cents, tax_amount_cents, total_cents,
			amount_paid_cents, balance_cents, status, notes, created_at, updated_at
		FROM bills WHERE id = ?`, id,
	).Scan(&b.ID, &b.PatientID, &b.QuoteID, &b.Date, &b.DueDate, &kind, &b.Discount.Percent, &b.Discount.Amount,
		&b.TaxPercent, &b.Subtotal, &b.DiscountAmount, &b.TaxAmount, &b.Total,
		&b.AmountPaid, &b.Balance, &status, &b.Notes, &b.CreatedAt, &b.UpdatedAt)
	if isNoRows(err) {
		return nil, notFound("bill", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	b.Discount.Kind = models.DiscountKind(kind)
	b.Status = models.BillStatus(status)

	b.Items, err = s.loadItems(ctx, "bill_items", "bill_id", b.ID)
	if err != nil {
		return nil, err
	}
	b.Payments, err = s.loadPayments(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBills retrieves bills, newest first, optionally filtered by patient.
func (s *SQLiteStore) ListBills(ctx context.Context, patientID string) ([]models.Bill, error) {
	query := `SELECT id FROM bills ORDER BY date DESC, created_at DESC`
	args := []any{}
	if patientID != "" {
		query = `SELECT id FROM bills WHERE patient_id = ? ORDER BY date DESC, created_at DESC`
		args = append(args, patientID)
	}

	ids, err := s.collectIDs(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}

	bills := make([]models.Bill, 0, len(ids))
	for _, id := range ids {
		b, err := s.GetBill(ctx, id)
		if err != nil {
			return nil, err
		}
		bills = append(bills, *b)
	}
	return bills, nil
}

// UpdateBill rewrites a bill, its items and its payment ledger in one
// transaction. QuoteID is intentionally not updatable.
func (s *SQLiteStore) UpdateBill(ctx context.Context, b *models.Bill) error {
	b.UpdatedAt = time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE bills SET patient_id = ?, date = ?, due_date = ?, discount_kind = ?, discount_percent = ?,
			discount_cents = ?, tax_percent = ?, subtotal_cents = ?, discount_amount_cents = ?,
			tax_amount_cents = ?, total_cents = ?, amount_paid_cents = ?, balance_cents = ?,
			status = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		b.PatientID, b.Date, b.DueDate, string(b.Discount.Kind), b.Discount.Percent,
		int64(b.Discount.Amount), b.TaxPercent, int64(b.Subtotal), int64(b.DiscountAmount),
		int64(b.TaxAmount), int64(b.Total), int64(b.AmountPaid), int64(b.Balance),
		string(b.Status), b.Notes, b.UpdatedAt,
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	if err := requireRow(res, "bill", b.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM bill_items WHERE bill_id = ?", b.ID); err != nil {
		return fmt.Errorf("failed to clear bill items: %w", err)
	}
	if err := insertItems(ctx, tx, "bill_items", "bill_id", b.ID, b.Items); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM payments WHERE bill_id = ?", b.ID); err != nil {
		return fmt.Errorf("failed to clear payments: %w", err)
	}
	if err := insertPayments(ctx, tx, b.ID, b.Payments); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteBill removes a bill and (via cascade) its items and payments.
func (s *SQLiteStore) DeleteBill(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	return requireRow(res, "bill", id)
}

// insertPayments writes the payment ledger preserving its order.
func insertPayments(ctx context.Context, tx *sql.Tx, billID string, payments []models.Payment) error {
	for i := range payments {
		p := &payments[i]
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		p.BillID = billID
		_, err := tx.ExecContext(ctx,
			`INSERT INTO payments (id, bill_id, amount_cents, method, reference, notes, date, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, billID, int64(p.Amount), string(p.Method), p.Reference, p.Notes, p.Date, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}
	}
	return nil
}

// loadPayments reads a bill's payment ledger in stored order.
func (s *SQLiteStore) loadPayments(ctx context.Context, billID string) ([]models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, bill_id, amount_cents, method, reference, notes, date
		FROM payments WHERE bill_id = ? ORDER BY position`, billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		var method string
		if err := rows.Scan(&p.ID, &p.BillID, &p.Amount, &method, &p.Reference, &p.Notes, &p.Date); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.Method = models.PaymentMethod(method)
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return payments, nil
}
