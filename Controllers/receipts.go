package Controllers

import (
	"fmt"
	"time"

	"Sitebook/Financial"
	"Sitebook/Models"
	"Sitebook/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReceiptController handles client receipt endpoints. A receipt is an IN
// transaction that settles one or more invoices; when the client withheld
// tax at source, the withheld amount is distributed over the invoice lines
// in the order given.
type ReceiptController struct {
	DB *gorm.DB
}

// NewReceiptController creates a new ReceiptController
func NewReceiptController(db *gorm.DB) *ReceiptController {
	return &ReceiptController{DB: db}
}

type ReceiptLine struct {
	InvoiceID uint            `json:"invoice_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
}

type ReceiptInput struct {
	ClientID  uint            `json:"client_id" validate:"required"`
	ProjectID *uint           `json:"project_id"`
	Date      string          `json:"date" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
	TDSAmount decimal.Decimal `json:"tds_amount"`
	Method    string          `json:"method"`
	Notes     string          `json:"notes"`
	Lines     []ReceiptLine   `json:"lines" validate:"required,min=1,dive"`
}

// CreateReceipt records money received from a client against its invoices
func (c *ReceiptController) CreateReceipt(ctx *fiber.Ctx) error {
	var input ReceiptInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if !input.Amount.GreaterThan(decimal.Zero) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Receipt amount must be positive"})
	}
	if input.TDSAmount.IsNegative() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "TDS amount cannot be negative"})
	}
	date, err := parseDate(input.Date)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date format. Use YYYY-MM-DD"})
	}

	tenantID := middleware.TenantID(ctx)

	var client Models.Client
	if err := c.DB.Where("tenant_id = ?", tenantID).First(&client, input.ClientID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
	}

	var transaction *Models.Transaction
	txErr := c.DB.Transaction(func(tx *gorm.DB) error {
		lines, err := buildReceiptLines(tx, tenantID, input)
		if err != nil {
			return err
		}

		// Total gross being settled may not exceed what actually arrived.
		available := input.Amount.Add(input.TDSAmount)
		requested := decimal.Zero
		for _, line := range lines {
			requested = requested.Add(line.Gross)
		}
		if requested.GreaterThan(available) {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Allocated %s but the receipt only covers %s",
					requested.StringFixed(2), available.StringFixed(2)))
		}

		splits := Financial.SequentialSplit(lines, input.TDSAmount)

		transaction = &Models.Transaction{
			TenantID:  tenantID,
			Direction: Financial.FlowIn,
			Date:      date,
			Amount:    input.Amount,
			TDSAmount: input.TDSAmount,
			Method:    input.Method,
			Reference: uuid.NewString(),
			ClientID:  &input.ClientID,
			ProjectID: input.ProjectID,
			Notes:     input.Notes,
		}
		if err := tx.Create(transaction).Error; err != nil {
			return err
		}
		return createAllocations(tx, tenantID, transaction.ID, Models.DocumentTypeInvoice, splits)
	})
	if txErr != nil {
		return respondPlanError(ctx, txErr)
	}

	c.DB.Preload("Allocations").First(transaction, transaction.ID)
	return ctx.Status(fiber.StatusCreated).JSON(transaction)
}

// buildReceiptLines validates each requested invoice allocation against the
// invoice's remaining balance and returns the lines in request order. Order
// matters: withheld tax is absorbed by the earlier lines first.
func buildReceiptLines(tx *gorm.DB, tenantID uint, input ReceiptInput) ([]Financial.BillLine, error) {
	lines := make([]Financial.BillLine, 0, len(input.Lines))
	seen := make(map[uint]bool, len(input.Lines))
	today := time.Now()

	for _, line := range input.Lines {
		if !line.Amount.GreaterThan(decimal.Zero) {
			return nil, fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Amount for invoice %d must be positive", line.InvoiceID))
		}
		if seen[line.InvoiceID] {
			return nil, fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Invoice %d appears more than once", line.InvoiceID))
		}
		seen[line.InvoiceID] = true

		var invoice Models.Invoice
		if err := tx.Where("tenant_id = ? AND client_id = ?", tenantID, input.ClientID).First(&invoice, line.InvoiceID).Error; err != nil {
			return nil, fiber.NewError(fiber.StatusNotFound,
				fmt.Sprintf("Invoice %d not found for this client", line.InvoiceID))
		}
		if invoice.Status == Models.InvoiceStatusCancelled {
			return nil, fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Invoice %s is cancelled", invoice.InvoiceNumber))
		}

		var allocations []Models.Allocation
		if err := tx.Where("tenant_id = ? AND document_type = ? AND document_id = ?",
			tenantID, Models.DocumentTypeInvoice, invoice.ID).Find(&allocations).Error; err != nil {
			return nil, err
		}
		amounts := settlementAmounts(allocations)
		if Financial.InvoiceStatus(invoice.Settleable(), amounts, today) == Financial.StatusDraft {
			return nil, fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Invoice %s is still a draft", invoice.InvoiceNumber))
		}
		remaining := Financial.Balance(invoice.Settleable(), amounts)
		if line.Amount.GreaterThan(remaining) {
			return nil, fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Allocation of %s to invoice %s exceeds its remaining balance %s",
					line.Amount.StringFixed(2), invoice.InvoiceNumber, remaining.StringFixed(2)))
		}

		lines = append(lines, Financial.BillLine{
			DocumentID:   invoice.ID,
			Gross:        line.Amount,
			TaxableValue: invoice.Subtotal,
			Total:        invoice.Total,
		})
	}
	return lines, nil
}
