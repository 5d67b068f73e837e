package Financial

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequentialSplit_OrderSensitive(t *testing.T) {
	lines := []BillLine{
		{DocumentID: 1, Gross: dec("2000")},
		{DocumentID: 2, Gross: dec("5000")},
		{DocumentID: 3, Gross: dec("1000")},
	}

	splits := SequentialSplit(lines, dec("3000"))
	require.Len(t, splits, 3)

	// first row absorbs its full gross as TDS, second takes the remainder
	assert.True(t, splits[0].TDS.Equal(dec("2000")))
	assert.True(t, splits[0].Cash.IsZero())
	assert.True(t, splits[1].TDS.Equal(dec("1000")))
	assert.True(t, splits[1].Cash.Equal(dec("4000")))
	assert.True(t, splits[2].TDS.IsZero())
	assert.True(t, splits[2].Cash.Equal(dec("1000")))

	// swapping the rows moves the TDS with the order
	reordered := SequentialSplit([]BillLine{lines[1], lines[0], lines[2]}, dec("3000"))
	assert.True(t, reordered[0].TDS.Equal(dec("3000")))
	assert.True(t, reordered[1].TDS.IsZero())
}

func TestSequentialSplit_NoTDS(t *testing.T) {
	splits := SequentialSplit([]BillLine{{DocumentID: 1, Gross: dec("750")}}, decimal.Zero)
	require.Len(t, splits, 1)
	assert.True(t, splits[0].Cash.Equal(dec("750")))
	assert.True(t, splits[0].TDS.IsZero())
}

func TestProportionalSplit_RoundingClosure(t *testing.T) {
	p := subcontractorProfile()

	// three equal thirds at 1% round down individually and lose a paisa
	lines := []BillLine{
		{DocumentID: 1, Gross: dec("33.33"), TaxableValue: dec("33.33"), Total: dec("33.33")},
		{DocumentID: 2, Gross: dec("33.33"), TaxableValue: dec("33.33"), Total: dec("33.33")},
		{DocumentID: 3, Gross: dec("33.34"), TaxableValue: dec("33.34"), Total: dec("33.34")},
	}

	p.ThresholdSingle = dec("50")
	result := CalculateTDS(p, TaxableBase(lines), decimal.Zero, false)
	require.True(t, result.Applicable)
	require.True(t, result.TDSAmount.Equal(dec("1.00")), "authoritative total %s", result.TDSAmount)

	splits := ProportionalSplit(lines, result.TDSAmount, result.RatePct)
	require.Len(t, splits, 3)

	assert.True(t, splits[0].TDS.Equal(dec("0.33")))
	assert.True(t, splits[1].TDS.Equal(dec("0.33")))
	// last row carries the reconciliation paisa
	assert.True(t, splits[2].TDS.Equal(dec("0.34")), "got %s", splits[2].TDS)

	sum := decimal.Zero
	grossSum := decimal.Zero
	for i, s := range splits {
		sum = sum.Add(s.TDS)
		grossSum = grossSum.Add(s.Gross())
		assert.True(t, s.Cash.Add(s.TDS).Equal(lines[i].Gross))
	}
	assert.True(t, sum.Equal(result.TDSAmount), "row TDS must sum to the authoritative total")
	assert.True(t, grossSum.Equal(dec("100.00")))
}

func TestProportionalSplit_TaxableRatio(t *testing.T) {
	// a GST bill only withholds on its taxable value, not the tax component
	lines := []BillLine{
		{DocumentID: 7, Gross: dec("11800"), TaxableValue: dec("10000"), Total: dec("11800")},
	}
	total := Round2(TaxableBase(lines).Mul(dec("2")).Div(hundred))
	splits := ProportionalSplit(lines, total, dec("2"))

	require.Len(t, splits, 1)
	assert.True(t, splits[0].TDS.Equal(dec("200.00")), "got %s", splits[0].TDS)
	assert.True(t, splits[0].Cash.Equal(dec("11600.00")))
}

func TestSafeRatio_ZeroTotalDocument(t *testing.T) {
	// a bill with a zero total short-circuits to ratio 1: the whole amount is base
	assert.True(t, SafeRatio(dec("0"), dec("0")).Equal(dec("1")))
	assert.True(t, SafeRatio(dec("500"), dec("-1")).Equal(dec("1")))

	lines := []BillLine{{DocumentID: 1, Gross: dec("1000"), TaxableValue: decimal.Zero, Total: decimal.Zero}}
	assert.True(t, TaxableBase(lines).Equal(dec("1000")))
}

func TestGrossUpBase(t *testing.T) {
	t.Run("solves for the pre-tax base", func(t *testing.T) {
		lines := []BillLine{{DocumentID: 1, Gross: dec("29500"), TaxableValue: dec("100"), Total: dec("100")}}
		base := GrossUpBase(lines, dec("1"))
		// 29500 / 0.99
		assert.True(t, Round2(base).Equal(dec("29797.98")), "got %s", base)
	})

	t.Run("non-positive denominator falls back to the raw base", func(t *testing.T) {
		lines := []BillLine{{DocumentID: 1, Gross: dec("1000"), TaxableValue: dec("100"), Total: dec("100")}}
		base := GrossUpBase(lines, dec("100"))
		assert.True(t, base.Equal(dec("1000")))
	})
}

func TestGrossUp_ScalesLines(t *testing.T) {
	lines := []BillLine{
		{DocumentID: 1, Gross: dec("990"), TaxableValue: dec("100"), Total: dec("100")},
		{DocumentID: 2, Gross: dec("500"), TaxableValue: decimal.Zero, Total: decimal.Zero},
	}
	scaled := GrossUp(lines, dec("1"))
	assert.True(t, Round2(scaled[0].Gross).Equal(dec("1000.00")), "got %s", scaled[0].Gross)
	assert.True(t, Round2(scaled[1].Gross).Equal(dec("505.05")))
	// inputs stay untouched
	assert.True(t, lines[0].Gross.Equal(dec("990")))
}
