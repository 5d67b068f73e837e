package Controllers

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"Sitebook/Financial"
	"Sitebook/Models"
	"Sitebook/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ReportController serves the vendor TDS ledger: every withholding made from
// a vendor's payments in a fiscal year, as JSON or as an Excel download.
type ReportController struct {
	DB *gorm.DB
}

// NewReportController creates a new ReportController
func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db}
}

// TDSLedgerEntry is one payment row in the vendor's withholding ledger.
type TDSLedgerEntry struct {
	TransactionID uint            `json:"transaction_id"`
	Date          time.Time       `json:"date"`
	Reference     string          `json:"reference"`
	Method        string          `json:"method"`
	CashAmount    decimal.Decimal `json:"cash_amount"`
	TDSAmount     decimal.Decimal `json:"tds_amount"`
	GrossAmount   decimal.Decimal `json:"gross_amount"`
}

// TDSLedger is the full fiscal-year withholding statement for one vendor.
type TDSLedger struct {
	Vendor          Models.Vendor    `json:"vendor"`
	FiscalYearStart time.Time        `json:"fiscal_year_start"`
	FiscalYearEnd   time.Time        `json:"fiscal_year_end"`
	Entries         []TDSLedgerEntry `json:"entries"`
	TotalCash       decimal.Decimal  `json:"total_cash"`
	TotalTDS        decimal.Decimal  `json:"total_tds"`
	TotalGross      decimal.Decimal  `json:"total_gross"`
}

// GetVendorTDSLedger returns the vendor's withholding ledger for the fiscal
// year containing the as_of date (today when omitted).
func (c *ReportController) GetVendorTDSLedger(ctx *fiber.Ctx) error {
	ledger, err := c.buildLedger(ctx)
	if err != nil {
		return respondPlanError(ctx, err)
	}
	return ctx.JSON(ledger)
}

// ExportVendorTDSLedger downloads the same ledger as an Excel workbook
func (c *ReportController) ExportVendorTDSLedger(ctx *fiber.Ctx) error {
	ledger, err := c.buildLedger(ctx)
	if err != nil {
		return respondPlanError(ctx, err)
	}

	buf, err := ledgerToExcel(ledger)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to build Excel file: %v", err),
		})
	}

	filename := fmt.Sprintf("tds_ledger_%d_%s.xlsx", ledger.Vendor.ID, ledger.FiscalYearStart.Format("2006"))
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	ctx.Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	return ctx.Send(buf.Bytes())
}

func (c *ReportController) buildLedger(ctx *fiber.Ctx) (*TDSLedger, error) {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid vendor ID")
	}
	tenantID := middleware.TenantID(ctx)

	var vendor Models.Vendor
	if err := c.DB.Where("tenant_id = ?", tenantID).First(&vendor, id).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Vendor not found")
	}

	asOf := time.Now()
	if q := ctx.Query("as_of"); q != "" {
		asOf, err = parseDate(q)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid as_of date format. Use YYYY-MM-DD")
		}
	}
	from := Financial.FiscalYearStart(asOf)
	to := Financial.FiscalYearEnd(asOf)

	var transactions []Models.Transaction
	err = c.DB.Where("tenant_id = ? AND vendor_id = ? AND direction = ? AND date >= ? AND date <= ?",
		tenantID, vendor.ID, Financial.FlowOut, from, to).
		Order("date ASC, id ASC").Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	ledger := &TDSLedger{
		Vendor:          vendor,
		FiscalYearStart: from,
		FiscalYearEnd:   to,
		Entries:         make([]TDSLedgerEntry, 0, len(transactions)),
		TotalCash:       decimal.Zero,
		TotalTDS:        decimal.Zero,
		TotalGross:      decimal.Zero,
	}
	for _, t := range transactions {
		gross := t.Amount.Add(t.TDSAmount)
		ledger.Entries = append(ledger.Entries, TDSLedgerEntry{
			TransactionID: t.ID,
			Date:          t.Date,
			Reference:     t.Reference,
			Method:        t.Method,
			CashAmount:    t.Amount,
			TDSAmount:     t.TDSAmount,
			GrossAmount:   gross,
		})
		ledger.TotalCash = ledger.TotalCash.Add(t.Amount)
		ledger.TotalTDS = ledger.TotalTDS.Add(t.TDSAmount)
		ledger.TotalGross = ledger.TotalGross.Add(gross)
	}
	return ledger, nil
}

func ledgerToExcel(ledger *TDSLedger) (*bytes.Buffer, error) {
	f := excelize.NewFile()

	sheetName := "TDS Ledger"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	f.SetCellValue(sheetName, "A1", "Vendor")
	f.SetCellValue(sheetName, "B1", ledger.Vendor.Name)
	f.SetCellValue(sheetName, "A2", "PAN")
	f.SetCellValue(sheetName, "B2", ledger.Vendor.PAN)
	f.SetCellValue(sheetName, "A3", "Fiscal Year")
	f.SetCellValue(sheetName, "B3", fmt.Sprintf("%s to %s",
		ledger.FiscalYearStart.Format("2006-01-02"), ledger.FiscalYearEnd.Format("2006-01-02")))

	headers := []string{"Date", "Reference", "Method", "Cash Paid", "TDS Deducted", "Gross"}
	headerRow := 5
	for i, header := range headers {
		cell := fmt.Sprintf("%c%d", 'A'+i, headerRow)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6E6FA"},
			Pattern: 1,
		},
	})
	if err == nil {
		f.SetRowStyle(sheetName, headerRow, headerRow, headerStyle)
	}

	for rowIndex, entry := range ledger.Entries {
		row := headerRow + 1 + rowIndex
		values := []interface{}{
			entry.Date.Format("2006-01-02"),
			entry.Reference,
			entry.Method,
			entry.CashAmount.InexactFloat64(),
			entry.TDSAmount.InexactFloat64(),
			entry.GrossAmount.InexactFloat64(),
		}
		for colIndex, value := range values {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	totalRow := headerRow + 1 + len(ledger.Entries)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", totalRow), "Total")
	f.SetCellValue(sheetName, fmt.Sprintf("D%d", totalRow), ledger.TotalCash.InexactFloat64())
	f.SetCellValue(sheetName, fmt.Sprintf("E%d", totalRow), ledger.TotalTDS.InexactFloat64())
	f.SetCellValue(sheetName, fmt.Sprintf("F%d", totalRow), ledger.TotalGross.InexactFloat64())

	for i := 0; i < len(headers); i++ {
		f.SetColWidth(sheetName, string('A'+rune(i)), string('A'+rune(i)), 15)
	}

	if f.GetSheetName(0) != sheetName {
		f.DeleteSheet("Sheet1")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("error writing Excel file to buffer: %v", err)
	}
	return &buf, nil
}
