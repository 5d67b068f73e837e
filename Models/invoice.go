package Models

import (
	"time"

	"Sitebook/Financial"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Stored invoice status hints. The derived settlement status is authoritative
// for display; DRAFT forces it regardless of recorded money.
const (
	InvoiceStatusDraft     = "DRAFT"
	InvoiceStatusIssued    = "ISSUED"
	InvoiceStatusOverdue   = "OVERDUE"
	InvoiceStatusCancelled = "CANCELLED"
)

// Invoice is a client-facing bill. Total is immutable through the settlement
// flow; edits go through the invoice update endpoint.
type Invoice struct {
	gorm.Model
	TenantID      uint            `json:"tenant_id" gorm:"not null;index"`
	ClientID      uint            `json:"client_id" gorm:"not null;index"`
	ProjectID     *uint           `json:"project_id" gorm:"index"`
	InvoiceNumber string          `json:"invoice_number" gorm:"not null;index"`
	Date          time.Time       `json:"date"`
	DueDate       *time.Time      `json:"due_date"`
	Subtotal      decimal.Decimal `json:"subtotal" gorm:"type:decimal(20,2)"`
	TaxAmount     decimal.Decimal `json:"tax_amount" gorm:"type:decimal(20,2)"`
	Total         decimal.Decimal `json:"total" gorm:"type:decimal(20,2)"`
	Status        string          `json:"status" gorm:"type:varchar(20);default:DRAFT"`
	Notes         string          `json:"notes" gorm:"type:text"`

	Items []InvoiceItem `json:"items,omitempty" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`

	// Derived fields, filled by the settlement calculator, never stored
	PaidAmount    decimal.Decimal `json:"paid_amount" gorm:"-"`
	Balance       decimal.Decimal `json:"balance" gorm:"-"`
	DerivedStatus string          `json:"derived_status" gorm:"-"`
}

type InvoiceItem struct {
	gorm.Model
	InvoiceID   uint            `json:"invoice_id" gorm:"not null;index"`
	Description string          `json:"description" gorm:"not null"`
	Quantity    decimal.Decimal `json:"quantity" gorm:"type:decimal(20,3)"`
	Rate        decimal.Decimal `json:"rate" gorm:"type:decimal(20,2)"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(20,2)"`
	ItemOrder   int             `json:"item_order" gorm:"not null"`
}

// Settleable adapts the invoice for the settlement calculator.
func (i *Invoice) Settleable() Financial.SettleableDocument {
	return Financial.SettleableDocument{
		Total:        i.Total,
		DueDate:      i.DueDate,
		StoredStatus: i.Status,
	}
}
