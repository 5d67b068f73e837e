package Financial

import "github.com/shopspring/decimal"

// Transaction directions
const (
	FlowIn       = "IN"
	FlowOut      = "OUT"
	FlowTransfer = "TRANSFER"
)

// DocumentSettlement pairs a document with the allocations recorded against it.
type DocumentSettlement struct {
	Document    SettleableDocument
	Allocations []SettlementAmount
}

// FlowAmount is one transaction's contribution to a project's cash flow.
type FlowAmount struct {
	Direction string
	Amount    decimal.Decimal
	TDSAmount decimal.Decimal
}

// ProjectSummary is the per-project financial rollup.
type ProjectSummary struct {
	InvoiceTotal   decimal.Decimal `json:"invoice_total"`
	InvoicePaid    decimal.Decimal `json:"invoice_paid"`
	InvoiceBalance decimal.Decimal `json:"invoice_balance"`
	ExpenseTotal   decimal.Decimal `json:"expense_total"`
	ExpensePaid    decimal.Decimal `json:"expense_paid"`
	ExpenseBalance decimal.Decimal `json:"expense_balance"`
	NetCash        decimal.Decimal `json:"net_cash"`
	NetTDS         decimal.Decimal `json:"net_tds"`
}

// SummarizeProject rolls up a project's invoices, expenses and transactions.
// Pure composition of the settlement calculator and plain summation; net cash
// and net TDS are IN minus OUT over the project's transactions.
func SummarizeProject(invoices, expenses []DocumentSettlement, flows []FlowAmount) ProjectSummary {
	s := ProjectSummary{
		InvoiceTotal: decimal.Zero, InvoicePaid: decimal.Zero, InvoiceBalance: decimal.Zero,
		ExpenseTotal: decimal.Zero, ExpensePaid: decimal.Zero, ExpenseBalance: decimal.Zero,
		NetCash: decimal.Zero, NetTDS: decimal.Zero,
	}
	for _, inv := range invoices {
		paid := PaidAmount(inv.Allocations)
		s.InvoiceTotal = s.InvoiceTotal.Add(inv.Document.Total)
		s.InvoicePaid = s.InvoicePaid.Add(paid)
		s.InvoiceBalance = s.InvoiceBalance.Add(inv.Document.Total.Sub(paid))
	}
	for _, exp := range expenses {
		paid := PaidAmount(exp.Allocations)
		s.ExpenseTotal = s.ExpenseTotal.Add(exp.Document.Total)
		s.ExpensePaid = s.ExpensePaid.Add(paid)
		s.ExpenseBalance = s.ExpenseBalance.Add(exp.Document.Total.Sub(paid))
	}
	for _, f := range flows {
		switch f.Direction {
		case FlowIn:
			s.NetCash = s.NetCash.Add(f.Amount)
			s.NetTDS = s.NetTDS.Add(f.TDSAmount)
		case FlowOut:
			s.NetCash = s.NetCash.Sub(f.Amount)
			s.NetTDS = s.NetTDS.Sub(f.TDSAmount)
		}
	}
	return s
}
