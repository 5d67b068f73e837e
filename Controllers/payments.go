package Controllers

import (
	"encoding/json"
	"fmt"
	"time"

	"Sitebook/Financial"
	"Sitebook/Models"
	"Sitebook/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentController handles vendor payment endpoints. A vendor payment is an
// OUT transaction that settles one or more expense bills, with statutory
// withholding computed against the vendor's fiscal-year running base.
type PaymentController struct {
	DB *gorm.DB
}

// NewPaymentController creates a new PaymentController
func NewPaymentController(db *gorm.DB) *PaymentController {
	return &PaymentController{DB: db}
}

type VendorPaymentLine struct {
	ExpenseID uint            `json:"expense_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
}

type VendorPaymentInput struct {
	VendorID  uint                `json:"vendor_id" validate:"required"`
	ProjectID *uint               `json:"project_id"`
	Date      string              `json:"date" validate:"required"`
	Method    string              `json:"method"`
	Notes     string              `json:"notes"`
	Lines     []VendorPaymentLine `json:"lines" validate:"required,min=1,dive"`
}

// vendorPaymentPlan is a fully computed payment before anything is written.
type vendorPaymentPlan struct {
	Vendor    Models.Vendor       `json:"vendor"`
	YTDBase   decimal.Decimal     `json:"ytd_base"`
	TDS       Financial.TDSResult `json:"tds"`
	Splits    []Financial.Split   `json:"splits"`
	CashTotal decimal.Decimal     `json:"cash_total"`
	TDSTotal  decimal.Decimal     `json:"tds_total"`
}

// CreateVendorPayment records a payment to a vendor against selected bills.
// Validation, YTD read, withholding computation and the writes all happen
// inside one database transaction so a concurrent payment to the same vendor
// cannot read a stale year-to-date base.
func (c *PaymentController) CreateVendorPayment(ctx *fiber.Ctx) error {
	var input VendorPaymentInput
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

	tenantID := middleware.TenantID(ctx)

	var transaction *Models.Transaction
	txErr := c.DB.Transaction(func(tx *gorm.DB) error {
		plan, err := planVendorPayment(tx, tenantID, input, date, 0)
		if err != nil {
			return err
		}
		transaction, err = persistVendorPayment(tx, tenantID, input, date, plan)
		return err
	})
	if txErr != nil {
		return respondPlanError(ctx, txErr)
	}

	c.DB.Preload("Allocations").First(transaction, transaction.ID)
	return ctx.Status(fiber.StatusCreated).JSON(transaction)
}

// PreviewVendorPayment computes the full cash/TDS split without persisting,
// so the client can show the deduction before the user confirms.
func (c *PaymentController) PreviewVendorPayment(ctx *fiber.Ctx) error {
	var input VendorPaymentInput
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

	plan, err := planVendorPayment(c.DB, middleware.TenantID(ctx), input, date, 0)
	if err != nil {
		return respondPlanError(ctx, err)
	}
	return ctx.JSON(plan)
}

// UpdateVendorPayment re-runs the payment computation and replaces all
// allocations of an existing payment (delete-then-recreate).
func (c *PaymentController) UpdateVendorPayment(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}
	tenantID := middleware.TenantID(ctx)

	var existing Models.Transaction
	result := c.DB.Where("tenant_id = ? AND direction = ?", tenantID, Financial.FlowOut).First(&existing, id)
	if result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
	}

	var input VendorPaymentInput
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

	txErr := c.DB.Transaction(func(tx *gorm.DB) error {
		// The payment's own allocations must not count toward either the YTD
		// base or the bills' settled balances while recomputing.
		if err := tx.Where("transaction_id = ?", existing.ID).Delete(&Models.Allocation{}).Error; err != nil {
			return err
		}

		plan, err := planVendorPayment(tx, tenantID, input, date, existing.ID)
		if err != nil {
			return err
		}

		detail, err := json.Marshal(plan.TDS)
		if err != nil {
			return err
		}
		existing.VendorID = &input.VendorID
		existing.ProjectID = input.ProjectID
		existing.Date = date
		existing.Amount = plan.CashTotal
		existing.TDSAmount = plan.TDSTotal
		existing.Method = input.Method
		existing.Notes = input.Notes
		existing.TDSDetail = datatypes.JSON(detail)
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}

		return createAllocations(tx, tenantID, existing.ID, Models.DocumentTypeExpense, plan.Splits)
	})
	if txErr != nil {
		return respondPlanError(ctx, txErr)
	}

	c.DB.Preload("Allocations").First(&existing, existing.ID)
	return ctx.JSON(existing)
}

// planVendorPayment validates the request and computes the cash/TDS split.
// It writes nothing. excludeTransactionID masks an existing payment's own
// rows during a replace-all update; zero means a fresh payment.
func planVendorPayment(db *gorm.DB, tenantID uint, input VendorPaymentInput, date time.Time, excludeTransactionID uint) (*vendorPaymentPlan, error) {
	var vendor Models.Vendor
	if err := db.Where("tenant_id = ?", tenantID).First(&vendor, input.VendorID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("Vendor %d not found", input.VendorID))
	}

	lines := make([]Financial.BillLine, 0, len(input.Lines))
	expenses := make(map[uint]Models.Expense, len(input.Lines))
	seen := make(map[uint]bool, len(input.Lines))
	for _, line := range input.Lines {
		if !line.Amount.GreaterThan(decimal.Zero) {
			return nil, fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Amount for expense %d must be positive", line.ExpenseID))
		}
		if seen[line.ExpenseID] {
			return nil, fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Expense %d appears more than once", line.ExpenseID))
		}
		seen[line.ExpenseID] = true

		var expense Models.Expense
		if err := db.Where("tenant_id = ?", tenantID).First(&expense, line.ExpenseID).Error; err != nil {
			return nil, fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("Expense %d not found", line.ExpenseID))
		}
		if expense.VendorID != input.VendorID {
			return nil, fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Expense %d does not belong to vendor %d", line.ExpenseID, input.VendorID))
		}
		expenses[expense.ID] = expense
		lines = append(lines, Financial.BillLine{
			DocumentID:   expense.ID,
			Gross:        line.Amount,
			TaxableValue: expense.TaxableValue,
			Total:        expense.Total,
		})
	}

	ytd, err := vendorYTDTaxableBase(db, tenantID, input.VendorID, date, excludeTransactionID)
	if err != nil {
		return nil, err
	}

	profile := vendor.TDSProfile()
	rate := Financial.DetermineRatePercent(profile, vendor.HasTransporterDeclaration)

	// First pass assumes no tax is withheld from the stated amounts. If that
	// base stays under the thresholds, retry with the grossed-up base: the
	// payment may only cross a threshold once the withheld tax is counted.
	tdsResult := Financial.CalculateTDS(profile, Financial.TaxableBase(lines), ytd, vendor.HasTransporterDeclaration)
	if !tdsResult.Applicable {
		retry := Financial.CalculateTDS(profile, Financial.GrossUpBase(lines, rate), ytd, vendor.HasTransporterDeclaration)
		if retry.Applicable {
			tdsResult = retry
			lines = Financial.GrossUp(lines, rate)
		}
	}

	var splits []Financial.Split
	if tdsResult.Applicable {
		splits = Financial.ProportionalSplit(lines, tdsResult.TDSAmount, tdsResult.RatePct)
	} else {
		splits = make([]Financial.Split, len(lines))
		for i, line := range lines {
			splits[i] = Financial.Split{DocumentID: line.DocumentID, Cash: line.Gross, TDS: decimal.Zero}
		}
	}

	// Round the persisted amounts once, then re-check the reconciliation so
	// the stored rows still sum to the authoritative totals.
	cashTotal := decimal.Zero
	tdsTotal := decimal.Zero
	for i := range splits {
		splits[i].Cash = Financial.Round2(splits[i].Cash)
		splits[i].TDS = Financial.Round2(splits[i].TDS)
		cashTotal = cashTotal.Add(splits[i].Cash)
		tdsTotal = tdsTotal.Add(splits[i].TDS)
	}

	// Allocation-sum invariant: a bill can never be settled past its total.
	for _, split := range splits {
		expense := expenses[split.DocumentID]
		remaining, err := expenseRemainingBalance(db, tenantID, expense, excludeTransactionID)
		if err != nil {
			return nil, err
		}
		if split.Gross().GreaterThan(remaining) {
			return nil, fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Allocation of %s to expense %d exceeds its remaining balance %s",
					split.Gross().StringFixed(2), expense.ID, remaining.StringFixed(2)))
		}
	}

	return &vendorPaymentPlan{
		Vendor:    vendor,
		YTDBase:   ytd,
		TDS:       tdsResult,
		Splits:    splits,
		CashTotal: cashTotal,
		TDSTotal:  tdsTotal,
	}, nil
}

func persistVendorPayment(tx *gorm.DB, tenantID uint, input VendorPaymentInput, date time.Time, plan *vendorPaymentPlan) (*Models.Transaction, error) {
	detail, err := json.Marshal(plan.TDS)
	if err != nil {
		return nil, err
	}

	transaction := Models.Transaction{
		TenantID:  tenantID,
		Direction: Financial.FlowOut,
		Date:      date,
		Amount:    plan.CashTotal,
		TDSAmount: plan.TDSTotal,
		Method:    input.Method,
		Reference: uuid.NewString(),
		VendorID:  &input.VendorID,
		ProjectID: input.ProjectID,
		Notes:     input.Notes,
		TDSDetail: datatypes.JSON(detail),
	}
	if err := tx.Create(&transaction).Error; err != nil {
		return nil, err
	}
	if err := createAllocations(tx, tenantID, transaction.ID, Models.DocumentTypeExpense, plan.Splits); err != nil {
		return nil, err
	}
	return &transaction, nil
}

func createAllocations(tx *gorm.DB, tenantID, transactionID uint, documentType string, splits []Financial.Split) error {
	for _, split := range splits {
		allocation := Models.Allocation{
			TenantID:      tenantID,
			TransactionID: transactionID,
			DocumentType:  documentType,
			DocumentID:    split.DocumentID,
			CashAmount:    split.Cash,
			TDSAmount:     split.TDS,
			GrossAmount:   split.Cash.Add(split.TDS),
		}
		if err := tx.Create(&allocation).Error; err != nil {
			return err
		}
	}
	return nil
}

// vendorYTDTaxableBase sums the taxable base of every payment already made
// to the vendor in the fiscal year of the payment date. Each allocation's
// gross is scaled by its bill's taxable ratio, in full decimal precision.
func vendorYTDTaxableBase(db *gorm.DB, tenantID, vendorID uint, paymentDate time.Time, excludeTransactionID uint) (decimal.Decimal, error) {
	from := Financial.FiscalYearStart(paymentDate)
	to := Financial.FiscalYearEnd(paymentDate)

	var rows []struct {
		GrossAmount  decimal.Decimal
		TaxableValue decimal.Decimal
		Total        decimal.Decimal
	}
	err := db.Raw(`
		SELECT a.gross_amount, e.taxable_value, e.total
		FROM allocations a
		JOIN transactions t ON t.id = a.transaction_id
		JOIN expenses e ON e.id = a.document_id AND a.document_type = ?
		WHERE t.tenant_id = ? AND t.vendor_id = ? AND t.direction = ?
		AND t.date >= ? AND t.date <= ?
		AND t.id <> ?
		AND a.deleted_at IS NULL AND t.deleted_at IS NULL AND e.deleted_at IS NULL
	`, Models.DocumentTypeExpense, tenantID, vendorID, Financial.FlowOut, from, to, excludeTransactionID).Scan(&rows).Error
	if err != nil {
		return decimal.Zero, err
	}

	base := decimal.Zero
	for _, row := range rows {
		base = base.Add(row.GrossAmount.Mul(Financial.SafeRatio(row.TaxableValue, row.Total)))
	}
	return base, nil
}

func expenseRemainingBalance(db *gorm.DB, tenantID uint, expense Models.Expense, excludeTransactionID uint) (decimal.Decimal, error) {
	var allocations []Models.Allocation
	err := db.Where("tenant_id = ? AND document_type = ? AND document_id = ? AND transaction_id <> ?",
		tenantID, Models.DocumentTypeExpense, expense.ID, excludeTransactionID).
		Find(&allocations).Error
	if err != nil {
		return decimal.Zero, err
	}
	return Financial.Balance(expense.Settleable(), settlementAmounts(allocations)), nil
}

// respondPlanError maps plan errors to their HTTP status; anything else is a
// database failure.
func respondPlanError(ctx *fiber.Ctx, err error) error {
	if e, ok := err.(*fiber.Error); ok {
		return ctx.Status(e.Code).JSON(fiber.Map{"error": e.Message})
	}
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error", "message": err.Error()})
}
