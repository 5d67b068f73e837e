package Financial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeProject(t *testing.T) {
	invoices := []DocumentSettlement{
		{
			Document:    SettleableDocument{Total: dec("118000")},
			Allocations: []SettlementAmount{{Cash: dec("47000"), TDS: dec("3000")}},
		},
	}
	expenses := []DocumentSettlement{
		{
			Document:    SettleableDocument{Total: dec("59000")},
			Allocations: []SettlementAmount{{Cash: dec("20000"), TDS: dec("500")}},
		},
	}
	flows := []FlowAmount{
		{Direction: FlowIn, Amount: dec("47000"), TDSAmount: dec("3000")},
		{Direction: FlowOut, Amount: dec("20000"), TDSAmount: dec("500")},
	}

	s := SummarizeProject(invoices, expenses, flows)

	assert.True(t, s.InvoiceTotal.Equal(dec("118000")))
	assert.True(t, s.InvoicePaid.Equal(dec("50000")))
	assert.True(t, s.InvoiceBalance.Equal(dec("68000")))
	assert.True(t, s.ExpenseTotal.Equal(dec("59000")))
	assert.True(t, s.ExpensePaid.Equal(dec("20500")))
	assert.True(t, s.ExpenseBalance.Equal(dec("38500")))
	assert.True(t, s.NetCash.Equal(dec("27000")), "got %s", s.NetCash)
	assert.True(t, s.NetTDS.Equal(dec("2500")))
}

func TestSummarizeProject_IgnoresTransfers(t *testing.T) {
	flows := []FlowAmount{
		{Direction: FlowIn, Amount: dec("1000")},
		{Direction: FlowTransfer, Amount: dec("99999")},
	}
	s := SummarizeProject(nil, nil, flows)
	assert.True(t, s.NetCash.Equal(dec("1000")))
	assert.True(t, s.NetTDS.IsZero())
}

func TestSummarizeProject_Empty(t *testing.T) {
	s := SummarizeProject(nil, nil, nil)
	assert.True(t, s.InvoiceTotal.IsZero())
	assert.True(t, s.NetCash.IsZero())
}
