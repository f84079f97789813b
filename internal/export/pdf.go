// Package export renders quotes and bills into printable documents.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/clinicdesk/clinicdesk/internal/models"
	"github.com/clinicdesk/clinicdesk/internal/money"
)

// ClinicInfo is the letterhead printed on every document.
type ClinicInfo struct {
	Name    string
	Address string
	Phone   string
}

// QuotePDF renders a quote as a PDF document.
func QuotePDF(clinic ClinicInfo, q *models.Quote, patient *models.Patient) ([]byte, error) {
	pdf := newDocument(clinic, "QUOTE", q.ID, q.Date, patient)

	if q.Title != "" {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, q.Title, "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}

	writeItems(pdf, q.Items)
	writeTotals(pdf, q.Totals)

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Status: %s", q.Status), "", 1, "L", false, 0, "")
	if q.ValidUntil > 0 {
		pdf.CellFormat(0, 5, fmt.Sprintf("Valid until: %s", formatDate(q.ValidUntil)), "", 1, "L", false, 0, "")
	}
	writeNotes(pdf, q.Notes)

	return output(pdf)
}

// BillPDF renders a bill as a PDF document, including the payment ledger
// and the outstanding balance.
func BillPDF(clinic ClinicInfo, b *models.Bill, patient *models.Patient) ([]byte, error) {
	pdf := newDocument(clinic, "INVOICE", b.ID, b.Date, patient)

	writeItems(pdf, b.Items)
	writeTotals(pdf, b.Totals)

	if len(b.Payments) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, "Payments", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, p := range b.Payments {
			line := fmt.Sprintf("%s  %s  %s", formatDate(p.Date), p.Method, money.Format(p.Amount))
			if p.Reference != "" {
				line += "  (" + p.Reference + ")"
			}
			pdf.CellFormat(0, 5, line, "", 1, "L", false, 0, "")
		}
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(140, 6, "Amount paid", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, money.Format(b.AmountPaid), "", 1, "R", false, 0, "")
	pdf.CellFormat(140, 6, "Balance due", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, money.Format(b.Balance), "", 1, "R", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Status: %s", b.Status), "", 1, "L", false, 0, "")
	if b.DueDate > 0 {
		pdf.CellFormat(0, 5, fmt.Sprintf("Due: %s", formatDate(b.DueDate)), "", 1, "L", false, 0, "")
	}
	writeNotes(pdf, b.Notes)

	return output(pdf)
}

func newDocument(clinic ClinicInfo, title, id string, date int64, patient *models.Patient) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(120, 8, clinic.Name, "", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, title, "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	if clinic.Address != "" {
		pdf.CellFormat(0, 5, clinic.Address, "", 1, "L", false, 0, "")
	}
	if clinic.Phone != "" {
		pdf.CellFormat(0, 5, clinic.Phone, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.CellFormat(120, 5, "Patient: "+patient.Name, "", 0, "L", false, 0, "")
	pdf.CellFormat(60, 5, "Date: "+formatDate(date), "", 1, "R", false, 0, "")
	pdf.CellFormat(120, 5, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(60, 5, "Ref: "+shortID(id), "", 1, "R", false, 0, "")
	pdf.Ln(6)

	return pdf
}

func writeItems(pdf *gofpdf.Fpdf, items []models.LineItem) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(80, 6, "Service", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 6, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 6, "Unit price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(25, 6, "Discount", "B", 0, "R", false, 0, "")
	pdf.CellFormat(25, 6, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, it := range items {
		pdf.CellFormat(80, 6, it.Description, "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", it.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, money.Format(it.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, money.Format(it.Discount), "", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, money.Format(it.LineTotal), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)
}

func writeTotals(pdf *gofpdf.Fpdf, t models.Totals) {
	row := func(label string, amount money.Cents, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(140, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, money.Format(amount), "", 1, "R", false, 0, "")
	}
	row("Subtotal", t.Subtotal, false)
	if t.DiscountAmount > 0 {
		row("Discount", -t.DiscountAmount, false)
	}
	if t.TaxAmount > 0 {
		row("Tax", t.TaxAmount, false)
	}
	row("Total", t.Total, true)
}

func writeNotes(pdf *gofpdf.Fpdf, notes string) {
	if notes == "" {
		return
	}
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, notes, "", "L", false)
}

func formatDate(unix int64) string {
	return time.Unix(unix, 0).Format("Jan 2, 2006")
}

// shortID keeps document references readable on the printout.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
