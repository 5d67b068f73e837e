package Controllers

import (
	"strconv"

	"Sitebook/Models"
	"Sitebook/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// TransactionController handles read and delete endpoints for recorded money
// movements. Creation goes through the receipt and payment controllers, which
// own the settlement math.
type TransactionController struct {
	DB *gorm.DB
}

// NewTransactionController creates a new TransactionController
func NewTransactionController(db *gorm.DB) *TransactionController {
	return &TransactionController{DB: db}
}

// GetTransactions lists the tenant's transactions, newest first
func (c *TransactionController) GetTransactions(ctx *fiber.Ctx) error {
	tenantID := middleware.TenantID(ctx)

	query := c.DB.Where("tenant_id = ?", tenantID)
	if direction := ctx.Query("direction"); direction != "" {
		query = query.Where("direction = ?", direction)
	}
	if clientID := ctx.Query("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}
	if vendorID := ctx.Query("vendor_id"); vendorID != "" {
		query = query.Where("vendor_id = ?", vendorID)
	}
	if projectID := ctx.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if from := ctx.Query("from"); from != "" {
		date, err := parseDate(from)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid from date format. Use YYYY-MM-DD"})
		}
		query = query.Where("date >= ?", date)
	}
	if to := ctx.Query("to"); to != "" {
		date, err := parseDate(to)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid to date format. Use YYYY-MM-DD"})
		}
		query = query.Where("date <= ?", date)
	}

	var transactions []Models.Transaction
	if err := query.Preload("Allocations").Order("date DESC, id DESC").Find(&transactions).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve transactions"})
	}
	return ctx.JSON(transactions)
}

// GetTransaction retrieves a single transaction with its allocations
func (c *TransactionController) GetTransaction(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	var transaction Models.Transaction
	result := c.DB.Where("tenant_id = ?", middleware.TenantID(ctx)).
		Preload("Allocations").First(&transaction, id)
	if result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Transaction not found"})
	}
	return ctx.JSON(transaction)
}

// DeleteTransaction removes a transaction and its allocations, releasing the
// settled amounts back onto the documents.
func (c *TransactionController) DeleteTransaction(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}
	tenantID := middleware.TenantID(ctx)

	var transaction Models.Transaction
	result := c.DB.Where("tenant_id = ?", tenantID).First(&transaction, id)
	if result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Transaction not found"})
	}

	txErr := c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transaction_id = ?", transaction.ID).Delete(&Models.Allocation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&transaction).Error
	})
	if txErr != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete transaction"})
	}

	return ctx.JSON(fiber.Map{"message": "Transaction deleted successfully"})
}
