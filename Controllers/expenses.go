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

// ExpenseController handles expense and vendor-bill API endpoints
type ExpenseController struct {
	DB *gorm.DB
}

// NewExpenseController creates a new ExpenseController
func NewExpenseController(db *gorm.DB) *ExpenseController {
	return &ExpenseController{DB: db}
}

type ExpenseInput struct {
	VendorID     uint            `json:"vendor_id" validate:"required"`
	ProjectID    *uint           `json:"project_id"`
	BillNumber   string          `json:"bill_number"`
	Category     string          `json:"category"`
	Date         string          `json:"date" validate:"required"`
	DueDate      string          `json:"due_date"`
	TaxableValue decimal.Decimal `json:"taxable_value"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	Total        decimal.Decimal `json:"total"`
	Notes        string          `json:"notes"`
}

// GetExpenses lists the tenant's expenses annotated with settlement state
func (c *ExpenseController) GetExpenses(ctx *fiber.Ctx) error {
	tenantID := middleware.TenantID(ctx)

	query := c.DB.Where("tenant_id = ?", tenantID)
	if vendorID := ctx.Query("vendor_id"); vendorID != "" {
		query = query.Where("vendor_id = ?", vendorID)
	}
	if projectID := ctx.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	var expenses []Models.Expense
	if err := query.Order("date DESC").Find(&expenses).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve expenses"})
	}

	ids := make([]uint, 0, len(expenses))
	for _, e := range expenses {
		ids = append(ids, e.ID)
	}
	grouped, err := allocationsByDocument(c.DB, tenantID, Models.DocumentTypeExpense, ids)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve allocations"})
	}

	today := time.Now()
	for i := range expenses {
		annotateExpense(&expenses[i], grouped[expenses[i].ID], today)
	}

	return ctx.JSON(expenses)
}

// GetExpense retrieves a single expense with settlement state
func (c *ExpenseController) GetExpense(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid expense ID"})
	}
	tenantID := middleware.TenantID(ctx)

	var expense Models.Expense
	if result := c.DB.Where("tenant_id = ?", tenantID).First(&expense, id); result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Expense not found"})
	}

	grouped, err := allocationsByDocument(c.DB, tenantID, Models.DocumentTypeExpense, []uint{expense.ID})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve allocations"})
	}
	annotateExpense(&expense, grouped[expense.ID], time.Now())

	return ctx.JSON(expense)
}

// CreateExpense records a vendor bill or site expense
func (c *ExpenseController) CreateExpense(ctx *fiber.Ctx) error {
	var input ExpenseInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if input.Total.IsNegative() || input.TaxableValue.IsNegative() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Expense amounts cannot be negative"})
	}

	tenantID := middleware.TenantID(ctx)

	var vendor Models.Vendor
	if err := c.DB.Where("tenant_id = ?", tenantID).First(&vendor, input.VendorID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Vendor not found"})
	}

	date, err := parseDate(input.Date)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date format. Use YYYY-MM-DD"})
	}
	dueDate, err := parseOptionalDate(input.DueDate)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid due date format. Use YYYY-MM-DD"})
	}

	expense := Models.Expense{
		TenantID:     tenantID,
		VendorID:     input.VendorID,
		ProjectID:    input.ProjectID,
		BillNumber:   input.BillNumber,
		Category:     input.Category,
		Date:         date,
		DueDate:      dueDate,
		TaxableValue: input.TaxableValue,
		TaxAmount:    input.TaxAmount,
		Total:        input.Total,
		Notes:        input.Notes,
	}

	if err := c.DB.Create(&expense).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create expense"})
	}

	return ctx.Status(fiber.StatusCreated).JSON(expense)
}

// UpdateExpense updates an existing expense
func (c *ExpenseController) UpdateExpense(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid expense ID"})
	}
	tenantID := middleware.TenantID(ctx)

	var expense Models.Expense
	if result := c.DB.Where("tenant_id = ?", tenantID).First(&expense, id); result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Expense not found"})
	}

	var input ExpenseInput
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

	grouped, err := allocationsByDocument(c.DB, tenantID, Models.DocumentTypeExpense, []uint{expense.ID})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve allocations"})
	}
	paid := Financial.PaidAmount(settlementAmounts(grouped[expense.ID]))
	if input.Total.LessThan(paid) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Expense total cannot be lower than the amount already settled against it",
		})
	}

	expense.VendorID = input.VendorID
	expense.ProjectID = input.ProjectID
	expense.BillNumber = input.BillNumber
	expense.Category = input.Category
	expense.Date = date
	expense.DueDate = dueDate
	expense.TaxableValue = input.TaxableValue
	expense.TaxAmount = input.TaxAmount
	expense.Total = input.Total
	expense.Notes = input.Notes

	if err := c.DB.Save(&expense).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update expense"})
	}

	return ctx.JSON(expense)
}

// DeleteExpense deletes an expense that has no settlements against it
func (c *ExpenseController) DeleteExpense(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid expense ID"})
	}
	tenantID := middleware.TenantID(ctx)

	var expense Models.Expense
	if result := c.DB.Where("tenant_id = ?", tenantID).First(&expense, id); result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Expense not found"})
	}

	var count int64
	c.DB.Model(&Models.Allocation{}).
		Where("tenant_id = ? AND document_type = ? AND document_id = ?", tenantID, Models.DocumentTypeExpense, expense.ID).
		Count(&count)
	if count > 0 {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Expense has recorded payments; delete those transactions first",
		})
	}

	c.DB.Delete(&expense)
	return ctx.JSON(fiber.Map{"message": "Expense deleted successfully"})
}

func annotateExpense(expense *Models.Expense, allocations []Models.Allocation, today time.Time) {
	amounts := settlementAmounts(allocations)
	doc := expense.Settleable()
	expense.PaidAmount = Financial.PaidAmount(amounts)
	expense.Balance = Financial.Balance(doc, amounts)
	expense.DerivedStatus = Financial.ExpenseStatus(doc, amounts, today)
}
