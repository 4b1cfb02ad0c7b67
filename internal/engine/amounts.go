package engine

// amounts.go computes monetary amounts: quantity times unit price for items,
// bottom-up sums for containers.
//
// Recomputation is always whole-tree. There is no incremental path: callers
// who change one item resubmit the full row set and every container amount
// is rebuilt from scratch, which rules out stale-propagation bugs at a cost
// of O(items x containers) work. Budgets run to low thousands of rows, so
// that trade is fine.

import (
	"strings"

	"github.com/shopspring/decimal"
)

// amountScale is the number of fractional digits amounts are rounded to.
// Rounding is half away from zero (decimal.Decimal.Round semantics).
const amountScale = 2

// Tolerance is the allowance for rounding drift when comparing a stored
// container amount against its recomputed sum: 0.01 currency units.
var Tolerance = decimal.New(1, -2)

var hundred = decimal.NewFromInt(100)

// ItemAmount computes a single item's amount: quantity times unit price,
// rounded to two decimals. Negative inputs clamp to a zero amount. The
// validator rejects negatives upstream, but the engine must never produce a
// negative total even when called on its own.
func ItemAmount(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	if quantity.IsNegative() || unitPrice.IsNegative() {
		return decimal.Zero
	}
	return quantity.Mul(unitPrice).Round(amountScale)
}

// ComputeAmounts returns a copy of rows with every amount filled in: items
// from their own pricing, containers from the sum of their item-level
// descendants. Sums are rounded once after summation, not per addend.
// Running ComputeAmounts on its own output yields identical amounts.
func ComputeAmounts(rows []LineRow) []LineRow {
	out := make([]LineRow, len(rows))
	copy(out, rows)

	for i := range out {
		if out[i].IsItem() {
			if out[i].Item != nil {
				out[i].Amount = ItemAmount(out[i].Item.Quantity, out[i].Item.UnitPrice)
			} else {
				out[i].Amount = decimal.Zero
			}
		}
	}

	for i := range out {
		if !out[i].Level.IsContainer() {
			continue
		}
		out[i].Amount = ContainerAmount(out[i], out)
	}

	return out
}

// ContainerAmount recomputes one container's amount from the item-level
// descendants found in rows. Containers without a parsed code (and so
// without locatable descendants) get zero.
func ContainerAmount(container LineRow, rows []LineRow) decimal.Decimal {
	if container.Code == nil {
		return decimal.Zero
	}

	sum := decimal.Zero
	for _, row := range rows {
		if !row.IsItem() || row.Code == nil {
			continue
		}
		if row.Code.IsDescendantOf(container.Code) {
			sum = sum.Add(row.Amount)
		}
	}
	return sum.Round(amountScale)
}

// ParseDecimal parses a decimal accepting either dot or comma as the
// separator, the way budgets exported from either locale spell numbers.
// A single comma is treated as the decimal separator ("150,00"); commas
// alongside a dot, or several commas, are treated as thousands separators
// ("1,234.56", "1,234,567").
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if n := strings.Count(s, ","); n > 0 {
		if n > 1 || strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	}
	return decimal.NewFromString(s)
}
