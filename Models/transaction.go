package Models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Allocation document types
const (
	DocumentTypeInvoice = "invoice"
	DocumentTypeExpense = "expense"
)

// Transaction is a money movement: a receipt from a client (IN), a payment to
// a vendor (OUT) or an internal transfer. Amount is the cash that actually
// moved; TDSAmount is withholding counted as settled on top of it.
type Transaction struct {
	gorm.Model
	TenantID  uint            `json:"tenant_id" gorm:"not null;index"`
	Direction string          `json:"direction" gorm:"type:varchar(10);not null;index"`
	Date      time.Time       `json:"date" gorm:"index"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(20,2)"`
	TDSAmount decimal.Decimal `json:"tds_amount" gorm:"type:decimal(20,2)"`
	Method    string          `json:"method" gorm:"type:varchar(20)"`
	Reference string          `json:"reference" gorm:"type:varchar(64);index"`
	ClientID  *uint           `json:"client_id" gorm:"index"`
	VendorID  *uint           `json:"vendor_id" gorm:"index"`
	ProjectID *uint           `json:"project_id" gorm:"index"`
	Notes     string          `json:"notes" gorm:"type:text"`

	// TDSDetail keeps the engine's audit result (rate, thresholds crossed,
	// reason string) exactly as computed when the payment was recorded.
	TDSDetail datatypes.JSON `json:"tds_detail,omitempty"`

	Allocations []Allocation `json:"allocations,omitempty" gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
}

// Allocation applies part of a transaction's value against one invoice or
// expense. GrossAmount is the stored cash+TDS convenience sum. For any
// document the gross amounts across its allocations never exceed the
// document total; creation logic enforces that, not the database.
type Allocation struct {
	gorm.Model
	TenantID      uint            `json:"tenant_id" gorm:"not null;index"`
	TransactionID uint            `json:"transaction_id" gorm:"not null;index"`
	DocumentType  string          `json:"document_type" gorm:"type:varchar(10);not null;index:idx_allocation_document"`
	DocumentID    uint            `json:"document_id" gorm:"not null;index:idx_allocation_document"`
	CashAmount    decimal.Decimal `json:"cash_amount" gorm:"type:decimal(20,2)"`
	TDSAmount     decimal.Decimal `json:"tds_amount" gorm:"type:decimal(20,2)"`
	GrossAmount   decimal.Decimal `json:"gross_amount" gorm:"type:decimal(20,2)"`
}
