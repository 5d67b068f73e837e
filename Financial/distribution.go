package Financial

import "github.com/shopspring/decimal"

// BillLine describes one bill selected for settlement by a single payment.
// Gross is the portion of the payment applied to this bill; TaxableValue and
// Total come from the bill itself and fix its TDS-base ratio.
type BillLine struct {
	DocumentID   uint
	Gross        decimal.Decimal
	TaxableValue decimal.Decimal
	Total        decimal.Decimal
}

// Split is the computed cash/TDS portion of one allocation row.
type Split struct {
	DocumentID uint
	Cash       decimal.Decimal
	TDS        decimal.Decimal
}

// Gross returns the full settled value of the row.
func (s Split) Gross() decimal.Decimal {
	return s.Cash.Add(s.TDS)
}

// SequentialSplit distributes a receipt's withheld tax across invoices in
// input order: each row absorbs min(remaining TDS, its gross) and the rest is
// cash. The order of the rows decides which invoice absorbs TDS first; that
// order sensitivity is part of the recorded numbers and must not be changed
// to a proportional split.
func SequentialSplit(lines []BillLine, totalTDS decimal.Decimal) []Split {
	remaining := totalTDS
	splits := make([]Split, 0, len(lines))
	for _, line := range lines {
		tds := decimal.Min(remaining, line.Gross)
		if tds.IsNegative() {
			tds = decimal.Zero
		}
		remaining = remaining.Sub(tds)
		splits = append(splits, Split{
			DocumentID: line.DocumentID,
			Cash:       line.Gross.Sub(tds),
			TDS:        tds,
		})
	}
	return splits
}

// ProportionalSplit distributes an authoritative total TDS across bills by
// each bill's taxable-value ratio. Every row is rounded independently and the
// aggregate rounding drift is reconciled into the last row, so the row TDS
// amounts always sum to totalTDS exactly. totalTDS comes from a single engine
// computation over the aggregate base, which generally differs by a cent or
// two from the sum of independently rounded rows.
func ProportionalSplit(lines []BillLine, totalTDS, ratePct decimal.Decimal) []Split {
	splits := make([]Split, len(lines))
	rounded := decimal.Zero
	for i, line := range lines {
		ratio := SafeRatio(line.TaxableValue, line.Total)
		tds := Round2(line.Gross.Mul(ratio).Mul(ratePct).Div(hundred))
		splits[i] = Split{DocumentID: line.DocumentID, TDS: tds}
		rounded = rounded.Add(tds)
	}
	if len(splits) > 0 {
		// Reconcile roundoff against the authoritative total. Anchored to the
		// last row, not the largest one; recorded payments depend on it.
		last := &splits[len(splits)-1]
		last.TDS = last.TDS.Add(totalTDS.Sub(rounded))
	}
	for i := range splits {
		splits[i].Cash = lines[i].Gross.Sub(splits[i].TDS)
	}
	return splits
}

// TaxableBase is the current-period taxable base assuming no tax is withheld
// from the stated amounts: each line's gross scaled by its bill's ratio.
func TaxableBase(lines []BillLine) decimal.Decimal {
	base := decimal.Zero
	for _, line := range lines {
		base = base.Add(line.Gross.Mul(SafeRatio(line.TaxableValue, line.Total)))
	}
	return base
}

// GrossUpBase is the alternate candidate base assuming tax was in fact
// withheld from the stated cash amounts: it solves for the pre-tax value per
// line, cash*ratio / (1 - ratio*rate/100). A non-positive denominator falls
// back to the raw ratio-scaled amount for that line.
func GrossUpBase(lines []BillLine, ratePct decimal.Decimal) decimal.Decimal {
	base := decimal.Zero
	for _, line := range lines {
		ratio := SafeRatio(line.TaxableValue, line.Total)
		scaled := line.Gross.Mul(ratio)
		den := decimal.NewFromInt(1).Sub(ratio.Mul(ratePct).Div(hundred))
		if den.LessThanOrEqual(decimal.Zero) {
			base = base.Add(scaled)
			continue
		}
		base = base.Add(scaled.Div(den))
	}
	return base
}

// GrossUp scales each line's stated cash amount up to the gross value it
// settles when tax is withheld from the same payment, using the same
// denominator guard as GrossUpBase. Used by the payment flow once the engine
// accepts the grossed-up candidate base.
func GrossUp(lines []BillLine, ratePct decimal.Decimal) []BillLine {
	out := make([]BillLine, len(lines))
	for i, line := range lines {
		out[i] = line
		ratio := SafeRatio(line.TaxableValue, line.Total)
		den := decimal.NewFromInt(1).Sub(ratio.Mul(ratePct).Div(hundred))
		if den.GreaterThan(decimal.Zero) {
			out[i].Gross = line.Gross.Div(den)
		}
	}
	return out
}
