package Financial

import (
	"time"

	"github.com/shopspring/decimal"
)

// Derived document statuses
const (
	StatusDraft         = "Draft"
	StatusSent          = "Sent"
	StatusUnpaid        = "Unpaid"
	StatusPaid          = "Paid"
	StatusPartiallyPaid = "PartiallyPaid"
	StatusOverdue       = "Overdue"
)

// StoredStatusDraft is the stored invoice status hint that forces the derived
// status to Draft regardless of recorded money.
const StoredStatusDraft = "DRAFT"

// SettleableDocument is the slice of an invoice or expense the settlement
// calculator needs. StoredStatus only matters for invoices.
type SettleableDocument struct {
	Total        decimal.Decimal
	DueDate      *time.Time
	StoredStatus string
}

// SettlementAmount is one allocation's contribution toward a document.
type SettlementAmount struct {
	Cash decimal.Decimal
	TDS  decimal.Decimal
}

// PaidAmount sums cash plus withheld tax over the document's allocations.
// Callers pass only the allocations belonging to one document.
func PaidAmount(allocations []SettlementAmount) decimal.Decimal {
	paid := decimal.Zero
	for _, a := range allocations {
		paid = paid.Add(a.Cash).Add(a.TDS)
	}
	return paid
}

// Balance is the unsettled remainder. It goes negative if the allocation-sum
// invariant was bypassed upstream; the calculator just reports it.
func Balance(doc SettleableDocument, allocations []SettlementAmount) decimal.Decimal {
	return doc.Total.Sub(PaidAmount(allocations))
}

// InvoiceStatus derives the display status of an invoice.
// A stored DRAFT hint is terminal and ignores money entirely.
func InvoiceStatus(doc SettleableDocument, allocations []SettlementAmount, today time.Time) string {
	if doc.StoredStatus == StoredStatusDraft {
		return StatusDraft
	}
	paid := PaidAmount(allocations)
	if doc.Total.Sub(paid).LessThanOrEqual(decimal.Zero) {
		return StatusPaid
	}
	if paid.GreaterThan(decimal.Zero) {
		return StatusPartiallyPaid
	}
	if doc.DueDate == nil || !today.After(*doc.DueDate) {
		return StatusSent
	}
	return StatusOverdue
}

// ExpenseStatus derives the display status of an expense or vendor bill.
// Same ladder as invoices without the draft override, Unpaid instead of Sent.
func ExpenseStatus(doc SettleableDocument, allocations []SettlementAmount, today time.Time) string {
	paid := PaidAmount(allocations)
	if doc.Total.Sub(paid).LessThanOrEqual(decimal.Zero) {
		return StatusPaid
	}
	if paid.GreaterThan(decimal.Zero) {
		return StatusPartiallyPaid
	}
	if doc.DueDate != nil && today.After(*doc.DueDate) {
		return StatusOverdue
	}
	return StatusUnpaid
}
