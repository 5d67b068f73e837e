package Models

import (
	"time"

	"Sitebook/Financial"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Expense is a vendor bill or site expense. TaxableValue is the 194C TDS base
// of the bill; Total includes GST and is what allocations settle against.
type Expense struct {
	gorm.Model
	TenantID     uint            `json:"tenant_id" gorm:"not null;index"`
	VendorID     uint            `json:"vendor_id" gorm:"not null;index"`
	ProjectID    *uint           `json:"project_id" gorm:"index"`
	BillNumber   string          `json:"bill_number" gorm:"index"`
	Category     string          `json:"category" gorm:"type:varchar(40)"`
	Date         time.Time       `json:"date"`
	DueDate      *time.Time      `json:"due_date"`
	TaxableValue decimal.Decimal `json:"taxable_value" gorm:"type:decimal(20,2)"`
	TaxAmount    decimal.Decimal `json:"tax_amount" gorm:"type:decimal(20,2)"`
	Total        decimal.Decimal `json:"total" gorm:"type:decimal(20,2)"`
	Notes        string          `json:"notes" gorm:"type:text"`

	// Derived fields, filled by the settlement calculator, never stored
	PaidAmount    decimal.Decimal `json:"paid_amount" gorm:"-"`
	Balance       decimal.Decimal `json:"balance" gorm:"-"`
	DerivedStatus string          `json:"derived_status" gorm:"-"`
}

// Settleable adapts the expense for the settlement calculator.
func (e *Expense) Settleable() Financial.SettleableDocument {
	return Financial.SettleableDocument{
		Total:   e.Total,
		DueDate: e.DueDate,
	}
}
