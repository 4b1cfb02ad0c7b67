package engine

// metrics.go derives read-only diagnostics over a fully-amounted, validated
// row set: aggregate statistics, container consistency checks, and grouping
// views for reporting UIs. Nothing here blocks downstream use of a result.

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Stats holds aggregate statistics over a row set.
type Stats struct {
	// Levels counts rows per level name.
	Levels map[string]int `json:"levels"`

	// TotalAmount is the sum of all item amounts.
	TotalAmount decimal.Decimal `json:"total_amount"`

	// AverageItemAmount is TotalAmount divided by the item count, zero when
	// there are no items.
	AverageItemAmount decimal.Decimal `json:"average_item_amount"`

	// ZeroAmountItems counts items whose computed amount is zero.
	ZeroAmountItems int `json:"zero_amount_items"`

	// MaxDepth is the deepest parsed code in the set.
	MaxDepth int `json:"max_depth"`
}

// ComputeStats derives aggregate statistics from an amounted row set.
func ComputeStats(rows []LineRow) Stats {
	stats := Stats{
		Levels:            make(map[string]int),
		TotalAmount:       decimal.Zero,
		AverageItemAmount: decimal.Zero,
	}

	items := 0
	for _, row := range rows {
		stats.Levels[row.Level.String()]++
		if row.Code != nil && row.Code.Depth() > stats.MaxDepth {
			stats.MaxDepth = row.Code.Depth()
		}
		if !row.IsItem() {
			continue
		}
		items++
		stats.TotalAmount = stats.TotalAmount.Add(row.Amount)
		if row.Amount.IsZero() {
			stats.ZeroAmountItems++
		}
	}

	if items > 0 {
		stats.AverageItemAmount = stats.TotalAmount.Div(decimal.NewFromInt(int64(items))).Round(amountScale)
	}
	return stats
}

// Inconsistency flags a container whose stored amount disagrees with the
// recomputed sum of its item descendants beyond [Tolerance]. This is a
// diagnostic, not a ValidationError, and does not block downstream use.
type Inconsistency struct {
	ID         string          `json:"id"`
	Stored     decimal.Decimal `json:"stored"`
	Recomputed decimal.Decimal `json:"recomputed"`
	Diff       decimal.Decimal `json:"diff"`
}

// CheckConsistency recomputes every container's amount via the propagation
// rule and reports those that drift beyond the tolerance. On rows freshly
// produced by [ComputeAmounts] the result is always empty; the check exists
// for row sets that carry stored amounts from elsewhere.
func CheckConsistency(rows []LineRow) []Inconsistency {
	var out []Inconsistency
	for _, row := range rows {
		if !row.Level.IsContainer() {
			continue
		}
		recomputed := ContainerAmount(row, rows)
		diff := row.Amount.Sub(recomputed).Abs()
		if diff.GreaterThan(Tolerance) {
			out = append(out, Inconsistency{
				ID:         row.ID,
				Stored:     row.Amount,
				Recomputed: recomputed,
				Diff:       diff,
			})
		}
	}
	return out
}

// PriceBucket classifies items by amount for reporting views.
type PriceBucket string

const (
	BucketLow     PriceBucket = "low"
	BucketMedium  PriceBucket = "medium"
	BucketHigh    PriceBucket = "high"
	BucketPremium PriceBucket = "premium"
)

// Bucket thresholds: low < 100, medium < 1000, high < 10000, premium above.
var (
	bucketMediumMin  = decimal.NewFromInt(100)
	bucketHighMin    = decimal.NewFromInt(1000)
	bucketPremiumMin = decimal.NewFromInt(10000)
)

// BucketFor returns the price bucket for an amount.
func BucketFor(amount decimal.Decimal) PriceBucket {
	switch {
	case amount.GreaterThanOrEqual(bucketPremiumMin):
		return BucketPremium
	case amount.GreaterThanOrEqual(bucketHighMin):
		return BucketHigh
	case amount.GreaterThanOrEqual(bucketMediumMin):
		return BucketMedium
	default:
		return BucketLow
	}
}

// GroupByBucket counts item rows per price bucket.
func GroupByBucket(rows []LineRow) map[PriceBucket]int {
	out := make(map[PriceBucket]int)
	for _, row := range rows {
		if row.IsItem() {
			out[BucketFor(row.Amount)]++
		}
	}
	return out
}

// ItemShare is one item's percentage of the budget total.
type ItemShare struct {
	ID      string          `json:"id"`
	Percent decimal.Decimal `json:"percent"`
}

// PercentOfTotal returns each item's share of the total item amount,
// rounded to two decimals, ordered by descending share then by code for
// determinism. An all-zero budget yields zero shares.
func PercentOfTotal(rows []LineRow) []ItemShare {
	total := decimal.Zero
	for _, row := range rows {
		if row.IsItem() {
			total = total.Add(row.Amount)
		}
	}

	var shares []ItemShare
	for _, row := range rows {
		if !row.IsItem() {
			continue
		}
		pct := decimal.Zero
		if !total.IsZero() {
			pct = row.Amount.Mul(hundred).Div(total).Round(amountScale)
		}
		shares = append(shares, ItemShare{ID: row.ID, Percent: pct})
	}

	sort.SliceStable(shares, func(i, j int) bool {
		if !shares[i].Percent.Equal(shares[j].Percent) {
			return shares[i].Percent.GreaterThan(shares[j].Percent)
		}
		return shares[i].ID < shares[j].ID
	})
	return shares
}
