package Controllers

import (
	"fmt"
	"testing"
	"time"

	"Sitebook/Financial"
	"Sitebook/Models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Named shared-cache DSN so every pooled connection sees the same
	// in-memory database.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Models.Migrate(db))
	return db
}

func seedVendor(t *testing.T, db *gorm.DB, tenantID uint) Models.Vendor {
	t.Helper()
	vendor := Models.Vendor{
		TenantID:           tenantID,
		Name:               "Ravi Earthworks",
		PAN:                "ABCDE1234F",
		LegalType:          Financial.LegalTypeIndividual,
		IsSubcontractor:    true,
		TDSThresholdSingle: decimal.NewFromInt(30000),
		TDSThresholdAnnual: decimal.NewFromInt(100000),
	}
	require.NoError(t, db.Create(&vendor).Error)
	return vendor
}

func seedExpense(t *testing.T, db *gorm.DB, tenantID, vendorID uint, taxable, total string) Models.Expense {
	t.Helper()
	expense := Models.Expense{
		TenantID:     tenantID,
		VendorID:     vendorID,
		Date:         time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		TaxableValue: decimal.RequireFromString(taxable),
		TaxAmount:    decimal.RequireFromString(total).Sub(decimal.RequireFromString(taxable)),
		Total:        decimal.RequireFromString(total),
	}
	require.NoError(t, db.Create(&expense).Error)
	return expense
}

func paymentInput(vendorID uint, date string, lines ...VendorPaymentLine) VendorPaymentInput {
	return VendorPaymentInput{
		VendorID: vendorID,
		Date:     date,
		Method:   "NEFT",
		Lines:    lines,
	}
}

func TestPlanVendorPayment_BelowThresholds(t *testing.T) {
	db := testDB(t)
	vendor := seedVendor(t, db, 1)
	expense := seedExpense(t, db, 1, vendor.ID, "20000", "23600")

	input := paymentInput(vendor.ID, "2025-06-10",
		VendorPaymentLine{ExpenseID: expense.ID, Amount: decimal.NewFromInt(10000)})
	date, _ := time.Parse("2006-01-02", input.Date)

	plan, err := planVendorPayment(db, 1, input, date, 0)
	require.NoError(t, err)

	assert.False(t, plan.TDS.Applicable)
	assert.True(t, plan.TDSTotal.IsZero())
	assert.True(t, plan.CashTotal.Equal(decimal.NewFromInt(10000)))
	require.Len(t, plan.Splits, 1)
	assert.True(t, plan.Splits[0].TDS.IsZero())
}

func TestPlanVendorPayment_SingleThresholdDeductsTDS(t *testing.T) {
	db := testDB(t)
	vendor := seedVendor(t, db, 1)
	expense := seedExpense(t, db, 1, vendor.ID, "50000", "50000")

	input := paymentInput(vendor.ID, "2025-06-10",
		VendorPaymentLine{ExpenseID: expense.ID, Amount: decimal.NewFromInt(40000)})
	date, _ := time.Parse("2006-01-02", input.Date)

	plan, err := planVendorPayment(db, 1, input, date, 0)
	require.NoError(t, err)

	assert.True(t, plan.TDS.Applicable)
	assert.Equal(t, Financial.BreachSingle, plan.TDS.ThresholdBreached)
	// Individual with PAN: 1% of 40000
	assert.True(t, plan.TDSTotal.Equal(decimal.RequireFromString("400.00")),
		"got %s", plan.TDSTotal)
	assert.True(t, plan.CashTotal.Equal(decimal.RequireFromString("39600.00")))
}

func TestPlanVendorPayment_YTDAccumulationCrossesAnnual(t *testing.T) {
	db := testDB(t)
	vendor := seedVendor(t, db, 1)
	big := seedExpense(t, db, 1, vendor.ID, "200000", "200000")

	// Four prior payments of 24000 this fiscal year, none crossing a
	// threshold even grossed up, leave the YTD base at 96000.
	for i := 0; i < 4; i++ {
		input := paymentInput(vendor.ID, "2025-05-01",
			VendorPaymentLine{ExpenseID: big.ID, Amount: decimal.NewFromInt(24000)})
		date, _ := time.Parse("2006-01-02", input.Date)
		err := db.Transaction(func(tx *gorm.DB) error {
			plan, err := planVendorPayment(tx, 1, input, date, 0)
			if err != nil {
				return err
			}
			_, err = persistVendorPayment(tx, 1, input, date, plan)
			return err
		})
		require.NoError(t, err)
	}

	ytd, err := vendorYTDTaxableBase(db, 1, vendor.ID, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), 0)
	require.NoError(t, err)
	assert.True(t, ytd.Equal(decimal.NewFromInt(96000)), "got %s", ytd)

	// The next payment tips the aggregate over 100000.
	input := paymentInput(vendor.ID, "2025-07-01",
		VendorPaymentLine{ExpenseID: big.ID, Amount: decimal.NewFromInt(5000)})
	date, _ := time.Parse("2006-01-02", input.Date)
	plan, err := planVendorPayment(db, 1, input, date, 0)
	require.NoError(t, err)

	assert.True(t, plan.TDS.Applicable)
	assert.Equal(t, Financial.BreachAggregate, plan.TDS.ThresholdBreached)
	assert.True(t, plan.TDSTotal.Equal(decimal.RequireFromString("50.00")), "got %s", plan.TDSTotal)
}

func TestPlanVendorPayment_PriorFiscalYearIgnored(t *testing.T) {
	db := testDB(t)
	vendor := seedVendor(t, db, 1)
	big := seedExpense(t, db, 1, vendor.ID, "300000", "300000")

	// A large payment in March 2025 belongs to FY 2024-25.
	input := paymentInput(vendor.ID, "2025-03-15",
		VendorPaymentLine{ExpenseID: big.ID, Amount: decimal.NewFromInt(90000)})
	date, _ := time.Parse("2006-01-02", input.Date)
	err := db.Transaction(func(tx *gorm.DB) error {
		plan, err := planVendorPayment(tx, 1, input, date, 0)
		if err != nil {
			return err
		}
		_, err = persistVendorPayment(tx, 1, input, date, plan)
		return err
	})
	require.NoError(t, err)

	ytd, err := vendorYTDTaxableBase(db, 1, vendor.ID, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), 0)
	require.NoError(t, err)
	assert.True(t, ytd.IsZero(), "FY 2025-26 base should exclude March payment, got %s", ytd)
}

func TestPlanVendorPayment_ProportionalSplitReconciles(t *testing.T) {
	db := testDB(t)
	vendor := seedVendor(t, db, 1)
	// Low thresholds so any payment withholds.
	vendor.TDSThresholdSingle = decimal.NewFromInt(50)
	vendor.TDSThresholdAnnual = decimal.NewFromInt(50)
	require.NoError(t, db.Save(&vendor).Error)

	a := seedExpense(t, db, 1, vendor.ID, "100", "100")
	b := seedExpense(t, db, 1, vendor.ID, "100", "100")
	c := seedExpense(t, db, 1, vendor.ID, "100", "100")

	input := paymentInput(vendor.ID, "2025-06-10",
		VendorPaymentLine{ExpenseID: a.ID, Amount: decimal.RequireFromString("33.33")},
		VendorPaymentLine{ExpenseID: b.ID, Amount: decimal.RequireFromString("33.33")},
		VendorPaymentLine{ExpenseID: c.ID, Amount: decimal.RequireFromString("33.34")})
	date, _ := time.Parse("2006-01-02", input.Date)

	plan, err := planVendorPayment(db, 1, input, date, 0)
	require.NoError(t, err)
	require.True(t, plan.TDS.Applicable)

	sum := decimal.Zero
	for _, split := range plan.Splits {
		sum = sum.Add(split.TDS)
	}
	assert.True(t, sum.Equal(plan.TDS.TDSAmount),
		"row TDS %s must sum to engine total %s", sum, plan.TDS.TDSAmount)
}

func TestPlanVendorPayment_RejectsOverAllocation(t *testing.T) {
	db := testDB(t)
	vendor := seedVendor(t, db, 1)
	expense := seedExpense(t, db, 1, vendor.ID, "10000", "11800")

	input := paymentInput(vendor.ID, "2025-06-10",
		VendorPaymentLine{ExpenseID: expense.ID, Amount: decimal.NewFromInt(12000)})
	date, _ := time.Parse("2006-01-02", input.Date)

	_, err := planVendorPayment(db, 1, input, date, 0)
	require.Error(t, err)
	fe, ok := err.(*fiber.Error)
	require.True(t, ok)
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)
}

func TestPlanVendorPayment_RejectsForeignVendorExpense(t *testing.T) {
	db := testDB(t)
	vendorA := seedVendor(t, db, 1)
	vendorB := Models.Vendor{
		TenantID:           1,
		Name:               "Sharma Cement Supplies",
		LegalType:          Financial.LegalTypeFirm,
		TDSThresholdSingle: decimal.NewFromInt(30000),
		TDSThresholdAnnual: decimal.NewFromInt(100000),
	}
	require.NoError(t, db.Create(&vendorB).Error)
	expense := seedExpense(t, db, 1, vendorB.ID, "5000", "5900")

	input := paymentInput(vendorA.ID, "2025-06-10",
		VendorPaymentLine{ExpenseID: expense.ID, Amount: decimal.NewFromInt(1000)})
	date, _ := time.Parse("2006-01-02", input.Date)

	_, err := planVendorPayment(db, 1, input, date, 0)
	require.Error(t, err)
}

func TestPlanVendorPayment_TenantIsolation(t *testing.T) {
	db := testDB(t)
	vendor := seedVendor(t, db, 1)
	expense := seedExpense(t, db, 1, vendor.ID, "5000", "5900")

	input := paymentInput(vendor.ID, "2025-06-10",
		VendorPaymentLine{ExpenseID: expense.ID, Amount: decimal.NewFromInt(1000)})
	date, _ := time.Parse("2006-01-02", input.Date)

	_, err := planVendorPayment(db, 2, input, date, 0)
	require.Error(t, err)
	fe, ok := err.(*fiber.Error)
	require.True(t, ok)
	assert.Equal(t, fiber.StatusNotFound, fe.Code)
}

func TestPlanVendorPayment_GrossUpRetry(t *testing.T) {
	db := testDB(t)
	vendor := seedVendor(t, db, 1)
	vendor.TDSThresholdSingle = decimal.NewFromInt(29700)
	vendor.TDSThresholdAnnual = decimal.NewFromInt(1000000)
	require.NoError(t, db.Save(&vendor).Error)
	expense := seedExpense(t, db, 1, vendor.ID, "40000", "40000")

	// 29500 cash is under the single threshold raw, but grossed up at 1%
	// (29500/0.99 = 29797.98) it crosses, so tax is withheld after all.
	input := paymentInput(vendor.ID, "2025-06-10",
		VendorPaymentLine{ExpenseID: expense.ID, Amount: decimal.NewFromInt(29500)})
	date, _ := time.Parse("2006-01-02", input.Date)

	plan, err := planVendorPayment(db, 1, input, date, 0)
	require.NoError(t, err)

	require.True(t, plan.TDS.Applicable)
	assert.Equal(t, Financial.BreachSingle, plan.TDS.ThresholdBreached)
	// The settled gross is the grossed-up value, split into cash and TDS.
	require.Len(t, plan.Splits, 1)
	gross := plan.Splits[0].Gross()
	assert.True(t, gross.Sub(decimal.RequireFromString("29797.98")).Abs().LessThan(decimal.RequireFromString("0.02")),
		"got gross %s", gross)
}

func TestUpdateReplacesAllocationsAndYTD(t *testing.T) {
	db := testDB(t)
	vendor := seedVendor(t, db, 1)
	expense := seedExpense(t, db, 1, vendor.ID, "80000", "80000")

	input := paymentInput(vendor.ID, "2025-06-10",
		VendorPaymentLine{ExpenseID: expense.ID, Amount: decimal.NewFromInt(40000)})
	date, _ := time.Parse("2006-01-02", input.Date)

	var created *Models.Transaction
	err := db.Transaction(func(tx *gorm.DB) error {
		plan, err := planVendorPayment(tx, 1, input, date, 0)
		if err != nil {
			return err
		}
		created, err = persistVendorPayment(tx, 1, input, date, plan)
		return err
	})
	require.NoError(t, err)

	// Excluding the payment's own transaction removes it from the base.
	ytd, err := vendorYTDTaxableBase(db, 1, vendor.ID, date, created.ID)
	require.NoError(t, err)
	assert.True(t, ytd.IsZero(), "got %s", ytd)

	ytd, err = vendorYTDTaxableBase(db, 1, vendor.ID, date, 0)
	require.NoError(t, err)
	assert.True(t, ytd.Equal(decimal.NewFromInt(40000)), "got %s", ytd)
}
