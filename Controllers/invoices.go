package Controllers

import (
	"strconv"
	"time"

	"Sitebook/Financial"
	"Sitebook/Models"
	"Sitebook/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceController handles invoice-related API endpoints
type InvoiceController struct {
	DB *gorm.DB
}

// NewInvoiceController creates a new InvoiceController
func NewInvoiceController(db *gorm.DB) *InvoiceController {
	return &InvoiceController{DB: db}
}

type InvoiceItemInput struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

type InvoiceInput struct {
	ClientID      uint               `json:"client_id" validate:"required"`
	ProjectID     *uint              `json:"project_id"`
	InvoiceNumber string             `json:"invoice_number" validate:"required"`
	Date          string             `json:"date" validate:"required"`
	DueDate       string             `json:"due_date"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	TaxAmount     decimal.Decimal    `json:"tax_amount"`
	Total         decimal.Decimal    `json:"total"`
	Status        string             `json:"status"`
	Notes         string             `json:"notes"`
	Items         []InvoiceItemInput `json:"items"`
}

// GetInvoices lists the tenant's invoices annotated with paid amount,
// balance and derived settlement status.
func (c *InvoiceController) GetInvoices(ctx *fiber.Ctx) error {
	tenantID := middleware.TenantID(ctx)

	query := c.DB.Where("tenant_id = ?", tenantID)
	if clientID := ctx.Query("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}
	if projectID := ctx.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	var invoices []Models.Invoice
	if err := query.Order("date DESC").Find(&invoices).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve invoices"})
	}

	ids := make([]uint, 0, len(invoices))
	for _, inv := range invoices {
		ids = append(ids, inv.ID)
	}
	grouped, err := allocationsByDocument(c.DB, tenantID, Models.DocumentTypeInvoice, ids)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve allocations"})
	}

	today := time.Now()
	for i := range invoices {
		annotateInvoice(&invoices[i], grouped[invoices[i].ID], today)
	}

	return ctx.JSON(invoices)
}

// GetInvoice retrieves a single invoice with items and settlement state
func (c *InvoiceController) GetInvoice(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid invoice ID"})
	}
	tenantID := middleware.TenantID(ctx)

	var invoice Models.Invoice
	result := c.DB.Where("tenant_id = ?", tenantID).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("item_order ASC") }).
		First(&invoice, id)
	if result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Invoice not found"})
	}

	grouped, err := allocationsByDocument(c.DB, tenantID, Models.DocumentTypeInvoice, []uint{invoice.ID})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve allocations"})
	}
	annotateInvoice(&invoice, grouped[invoice.ID], time.Now())

	return ctx.JSON(invoice)
}

// CreateInvoice creates a new invoice with its items
func (c *InvoiceController) CreateInvoice(ctx *fiber.Ctx) error {
	var input InvoiceInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if input.Total.IsNegative() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invoice total cannot be negative"})
	}

	tenantID := middleware.TenantID(ctx)

	var client Models.Client
	if err := c.DB.Where("tenant_id = ?", tenantID).First(&client, input.ClientID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
	}

	date, err := parseDate(input.Date)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date format. Use YYYY-MM-DD"})
	}
	dueDate, err := parseOptionalDate(input.DueDate)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid due date format. Use YYYY-MM-DD"})
	}

	status := input.Status
	if status == "" {
		status = Models.InvoiceStatusDraft
	}

	invoice := Models.Invoice{
		TenantID:      tenantID,
		ClientID:      input.ClientID,
		ProjectID:     input.ProjectID,
		InvoiceNumber: input.InvoiceNumber,
		Date:          date,
		DueDate:       dueDate,
		Subtotal:      input.Subtotal,
		TaxAmount:     input.TaxAmount,
		Total:         input.Total,
		Status:        status,
		Notes:         input.Notes,
	}

	tx := c.DB.Begin()
	if err := tx.Create(&invoice).Error; err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create invoice"})
	}
	for i, item := range input.Items {
		if item.Description == "" {
			continue
		}
		row := Models.InvoiceItem{
			InvoiceID:   invoice.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			Rate:        item.Rate,
			Amount:      item.Amount,
			ItemOrder:   i + 1,
		}
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create invoice items"})
		}
	}
	if err := tx.Commit().Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to commit transaction"})
	}

	c.DB.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("item_order ASC") }).First(&invoice, invoice.ID)
	return ctx.Status(fiber.StatusCreated).JSON(invoice)
}

// UpdateInvoice updates an invoice and replaces its items
func (c *InvoiceController) UpdateInvoice(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid invoice ID"})
	}
	tenantID := middleware.TenantID(ctx)

	var invoice Models.Invoice
	if result := c.DB.Where("tenant_id = ?", tenantID).First(&invoice, id); result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Invoice not found"})
	}

	var input InvoiceInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	date, err := parseDate(input.Date)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date format. Use YYYY-MM-DD"})
	}
	dueDate, err := parseOptionalDate(input.DueDate)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid due date format. Use YYYY-MM-DD"})
	}

	// Shrinking the total below what is already settled would break the
	// allocation-sum invariant for existing payments.
	grouped, err := allocationsByDocument(c.DB, tenantID, Models.DocumentTypeInvoice, []uint{invoice.ID})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve allocations"})
	}
	paid := Financial.PaidAmount(settlementAmounts(grouped[invoice.ID]))
	if input.Total.LessThan(paid) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invoice total cannot be lower than the amount already settled against it",
		})
	}

	invoice.ClientID = input.ClientID
	invoice.ProjectID = input.ProjectID
	invoice.InvoiceNumber = input.InvoiceNumber
	invoice.Date = date
	invoice.DueDate = dueDate
	invoice.Subtotal = input.Subtotal
	invoice.TaxAmount = input.TaxAmount
	invoice.Total = input.Total
	if input.Status != "" {
		invoice.Status = input.Status
	}
	invoice.Notes = input.Notes

	tx := c.DB.Begin()
	if err := tx.Save(&invoice).Error; err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update invoice"})
	}
	if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&Models.InvoiceItem{}).Error; err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete existing items"})
	}
	for i, item := range input.Items {
		if item.Description == "" {
			continue
		}
		row := Models.InvoiceItem{
			InvoiceID:   invoice.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			Rate:        item.Rate,
			Amount:      item.Amount,
			ItemOrder:   i + 1,
		}
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create invoice items"})
		}
	}
	if err := tx.Commit().Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to commit transaction"})
	}

	c.DB.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("item_order ASC") }).First(&invoice, invoice.ID)
	return ctx.JSON(invoice)
}

// DeleteInvoice deletes an invoice that has no settlements against it
func (c *InvoiceController) DeleteInvoice(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid invoice ID"})
	}
	tenantID := middleware.TenantID(ctx)

	var invoice Models.Invoice
	if result := c.DB.Where("tenant_id = ?", tenantID).First(&invoice, id); result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Invoice not found"})
	}

	var count int64
	c.DB.Model(&Models.Allocation{}).
		Where("tenant_id = ? AND document_type = ? AND document_id = ?", tenantID, Models.DocumentTypeInvoice, invoice.ID).
		Count(&count)
	if count > 0 {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Invoice has recorded payments; delete those transactions first",
		})
	}

	c.DB.Delete(&invoice)
	return ctx.JSON(fiber.Map{"message": "Invoice deleted successfully"})
}

func annotateInvoice(invoice *Models.Invoice, allocations []Models.Allocation, today time.Time) {
	amounts := settlementAmounts(allocations)
	doc := invoice.Settleable()
	invoice.PaidAmount = Financial.PaidAmount(amounts)
	invoice.Balance = Financial.Balance(doc, amounts)
	invoice.DerivedStatus = Financial.InvoiceStatus(doc, amounts, today)
}
