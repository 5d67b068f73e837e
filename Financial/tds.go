package Financial

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Vendor legal types recognised for TDS rate determination
const (
	LegalTypeIndividual = "INDIVIDUAL"
	LegalTypeHUF        = "HUF"
	LegalTypeCompany    = "COMPANY"
	LegalTypeFirm       = "FIRM"
	LegalTypeAOP        = "AOP"
	LegalTypeTrust      = "TRUST"
)

// Threshold breach outcomes for a candidate payment
const (
	BreachNone      = "NONE"
	BreachSingle    = "SINGLE"
	BreachAggregate = "AGGREGATE"
	BreachBoth      = "BOTH"
)

// TDSProfile is a read-only snapshot of the vendor fields that drive rate
// determination. It does not change during a payment computation.
type TDSProfile struct {
	LegalType               string
	PAN                     string
	IsSubcontractor         bool
	IsTransporter           bool
	TransporterVehicleCount *int
	OverrideRate            *decimal.Decimal
	ThresholdSingle         decimal.Decimal
	ThresholdAnnual         decimal.Decimal
}

// TDSResult is the outcome of a single withholding computation.
type TDSResult struct {
	Applicable        bool            `json:"applicable"`
	RatePct           decimal.Decimal `json:"rate_pct"`
	TDSAmount         decimal.Decimal `json:"tds_amount"`
	ThresholdBreached string          `json:"threshold_breached"`
	Reason            string          `json:"reason"`
}

// DetermineRatePercent resolves the withholding rate for a vendor.
// First match wins:
//  1. manual override rate
//  2. transporter with a declaration and at most 10 vehicles: 0% (194C(6))
//  3. no PAN on file: 20% (206AA)
//  4. individual / HUF: 1%
//  5. everyone else (company, firm, ...): 2%
func DetermineRatePercent(p TDSProfile, hasDeclaration bool) decimal.Decimal {
	if p.OverrideRate != nil {
		return *p.OverrideRate
	}
	if transporterExempt(p, hasDeclaration) {
		return decimal.Zero
	}
	if p.PAN == "" {
		return decimal.NewFromInt(20)
	}
	if p.LegalType == LegalTypeIndividual || p.LegalType == LegalTypeHUF {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(2)
}

func transporterExempt(p TDSProfile, hasDeclaration bool) bool {
	return p.IsTransporter && hasDeclaration &&
		p.TransporterVehicleCount != nil && *p.TransporterVehicleCount <= 10
}

// CalculateTDS computes withholding for one candidate payment base against
// the vendor's rolling fiscal-year thresholds. current is the taxable base of
// this payment, ytd the aggregate taxable base already paid this fiscal year.
//
// Even a vendor that requires withholding is only actually withheld once one
// of the two 194C thresholds is crossed. Callers that cannot know the base in
// advance (because withholding itself changes it) call this twice with
// different candidates; the retry policy lives at the call site, not here.
func CalculateTDS(p TDSProfile, current, ytd decimal.Decimal, hasDeclaration bool) TDSResult {
	afterThisPayment := ytd.Add(current)
	singleExceeds := current.GreaterThan(p.ThresholdSingle)
	annualExceeds := afterThisPayment.GreaterThan(p.ThresholdAnnual)

	breach := BreachNone
	switch {
	case singleExceeds && annualExceeds:
		breach = BreachBoth
	case singleExceeds:
		breach = BreachSingle
	case annualExceeds:
		breach = BreachAggregate
	}

	rate := DetermineRatePercent(p, hasDeclaration)
	applicable := rate.GreaterThan(decimal.Zero) && (singleExceeds || annualExceeds)

	result := TDSResult{
		Applicable:        applicable,
		RatePct:           rate,
		TDSAmount:         decimal.Zero,
		ThresholdBreached: breach,
	}
	if applicable {
		result.TDSAmount = Round2(current.Mul(rate).Div(hundred))
	}
	result.Reason = tdsReason(p, result, hasDeclaration)
	return result
}

// tdsReason builds the audit string recorded with the payment.
func tdsReason(p TDSProfile, r TDSResult, hasDeclaration bool) string {
	if p.OverrideRate == nil && transporterExempt(p, hasDeclaration) {
		return "Transporter with declaration and at most 10 vehicles, exempt under 194C(6)"
	}
	if !r.Applicable {
		if r.RatePct.IsZero() {
			return "Zero withholding rate, no TDS deducted"
		}
		return "Below 194C thresholds for the fiscal year, no TDS deducted"
	}
	if p.OverrideRate != nil {
		return fmt.Sprintf("Manual override rate %s%%, thresholds crossed: %s", r.RatePct.String(), r.ThresholdBreached)
	}
	if p.PAN == "" {
		return fmt.Sprintf("PAN not furnished, 20%% under 206AA, thresholds crossed: %s", r.ThresholdBreached)
	}
	return fmt.Sprintf("%s%% under 194C, thresholds crossed: %s", r.RatePct.String(), r.ThresholdBreached)
}
