package Financial

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func subcontractorProfile() TDSProfile {
	return TDSProfile{
		LegalType:       LegalTypeIndividual,
		PAN:             "ABCPD1234E",
		IsSubcontractor: true,
		ThresholdSingle: dec("30000"),
		ThresholdAnnual: dec("100000"),
	}
}

func TestDetermineRatePercent_Precedence(t *testing.T) {
	t.Run("override beats missing PAN", func(t *testing.T) {
		p := subcontractorProfile()
		p.PAN = ""
		override := dec("5")
		p.OverrideRate = &override
		assert.True(t, DetermineRatePercent(p, false).Equal(dec("5")))
	})

	t.Run("missing PAN beats individual rate", func(t *testing.T) {
		p := subcontractorProfile()
		p.PAN = ""
		assert.True(t, DetermineRatePercent(p, false).Equal(dec("20")))
	})

	t.Run("individual and HUF pay 1 percent", func(t *testing.T) {
		p := subcontractorProfile()
		assert.True(t, DetermineRatePercent(p, false).Equal(dec("1")))
		p.LegalType = LegalTypeHUF
		assert.True(t, DetermineRatePercent(p, false).Equal(dec("1")))
	})

	t.Run("companies and firms pay 2 percent", func(t *testing.T) {
		p := subcontractorProfile()
		p.LegalType = LegalTypeCompany
		assert.True(t, DetermineRatePercent(p, false).Equal(dec("2")))
		p.LegalType = LegalTypeFirm
		assert.True(t, DetermineRatePercent(p, false).Equal(dec("2")))
	})

	t.Run("small transporter with declaration is exempt", func(t *testing.T) {
		p := subcontractorProfile()
		p.IsTransporter = true
		vehicles := 8
		p.TransporterVehicleCount = &vehicles
		assert.True(t, DetermineRatePercent(p, true).IsZero())
		// no declaration, no exemption
		assert.True(t, DetermineRatePercent(p, false).Equal(dec("1")))
		// fleet too large, no exemption
		vehicles = 11
		assert.True(t, DetermineRatePercent(p, true).Equal(dec("1")))
	})
}

func TestCalculateTDS_ThresholdLadder(t *testing.T) {
	p := subcontractorProfile()

	t.Run("single payment over per-bill threshold", func(t *testing.T) {
		r := CalculateTDS(p, dec("35000"), decimal.Zero, false)
		assert.True(t, r.Applicable)
		assert.Equal(t, BreachSingle, r.ThresholdBreached)
		assert.True(t, r.TDSAmount.Equal(dec("350")), "got %s", r.TDSAmount)
	})

	t.Run("small payment tipping the annual aggregate", func(t *testing.T) {
		r := CalculateTDS(p, dec("5000"), dec("96000"), false)
		assert.True(t, r.Applicable)
		assert.Equal(t, BreachAggregate, r.ThresholdBreached)
		assert.True(t, r.TDSAmount.Equal(dec("50")))
	})

	t.Run("below both thresholds", func(t *testing.T) {
		r := CalculateTDS(p, dec("5000"), decimal.Zero, false)
		assert.False(t, r.Applicable)
		assert.Equal(t, BreachNone, r.ThresholdBreached)
		assert.True(t, r.TDSAmount.IsZero())
		assert.Contains(t, r.Reason, "Below 194C thresholds")
	})

	t.Run("both thresholds at once", func(t *testing.T) {
		r := CalculateTDS(p, dec("120000"), decimal.Zero, false)
		assert.True(t, r.Applicable)
		assert.Equal(t, BreachBoth, r.ThresholdBreached)
	})
}

func TestCalculateTDS_Reasons(t *testing.T) {
	t.Run("206AA penalty rate", func(t *testing.T) {
		p := subcontractorProfile()
		p.PAN = ""
		r := CalculateTDS(p, dec("50000"), decimal.Zero, false)
		require.True(t, r.Applicable)
		assert.True(t, r.RatePct.Equal(dec("20")))
		assert.True(t, r.TDSAmount.Equal(dec("10000")))
		assert.Contains(t, r.Reason, "206AA")
	})

	t.Run("transporter exemption over threshold", func(t *testing.T) {
		p := subcontractorProfile()
		p.IsTransporter = true
		vehicles := 10
		p.TransporterVehicleCount = &vehicles
		r := CalculateTDS(p, dec("50000"), decimal.Zero, true)
		assert.False(t, r.Applicable)
		assert.Equal(t, BreachSingle, r.ThresholdBreached)
		assert.Contains(t, r.Reason, "194C(6)")
	})

	t.Run("standard 194C deduction", func(t *testing.T) {
		p := subcontractorProfile()
		p.LegalType = LegalTypeFirm
		r := CalculateTDS(p, dec("40000"), decimal.Zero, false)
		require.True(t, r.Applicable)
		assert.Contains(t, r.Reason, "194C")
		assert.Contains(t, r.Reason, BreachSingle)
	})
}

func TestCalculateTDS_GrossUpRetryAtCallSite(t *testing.T) {
	// The engine stays a single deterministic function; the caller retries
	// with the grossed-up candidate base when the raw base stays under the
	// threshold only because tax was withheld from the same payment.
	p := subcontractorProfile()
	p.ThresholdSingle = dec("29700")

	lines := []BillLine{{DocumentID: 1, Gross: dec("29500"), TaxableValue: dec("1000"), Total: dec("1000")}}
	rate := DetermineRatePercent(p, false)

	first := CalculateTDS(p, TaxableBase(lines), decimal.Zero, false)
	require.False(t, first.Applicable)

	second := CalculateTDS(p, GrossUpBase(lines, rate), decimal.Zero, false)
	assert.True(t, second.Applicable)
	assert.Equal(t, BreachSingle, second.ThresholdBreached)
}

func TestFiscalYearWindow(t *testing.T) {
	march := timeDate(2026, 3, 31)
	april := timeDate(2026, 4, 1)

	assert.Equal(t, timeDate(2025, 4, 1), FiscalYearStart(march))
	assert.Equal(t, timeDate(2026, 4, 1), FiscalYearStart(april))
	assert.Equal(t, timeDate(2027, 3, 31), FiscalYearEnd(april))
}
