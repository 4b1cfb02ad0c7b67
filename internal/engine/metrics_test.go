package engine

import (
	"testing"
)

func TestComputeStats(t *testing.T) {
	rows := amountedRows(t)

	stats := ComputeStats(rows)
	wantLevels := map[string]int{"chapter": 2, "subchapter": 2, "section": 2, "item": 3}
	for level, want := range wantLevels {
		if got := stats.Levels[level]; got != want {
			t.Errorf("Levels[%s] = %d, want %d", level, got, want)
		}
	}
	if got := stats.TotalAmount.String(); got != "430.29" {
		t.Errorf("TotalAmount = %s, want 430.29", got)
	}
	// 430.29 / 3 = 143.43
	if got := stats.AverageItemAmount.String(); got != "143.43" {
		t.Errorf("AverageItemAmount = %s, want 143.43", got)
	}
	if stats.ZeroAmountItems != 0 {
		t.Errorf("ZeroAmountItems = %d, want 0", stats.ZeroAmountItems)
	}
	if stats.MaxDepth != 4 {
		t.Errorf("MaxDepth = %d, want 4", stats.MaxDepth)
	}
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil)
	if !stats.TotalAmount.IsZero() || !stats.AverageItemAmount.IsZero() {
		t.Errorf("empty stats not zero: total=%s avg=%s", stats.TotalAmount, stats.AverageItemAmount)
	}
	if len(stats.Levels) != 0 {
		t.Errorf("Levels = %v, want empty", stats.Levels)
	}
}

func TestCheckConsistency(t *testing.T) {
	rows := amountedRows(t)

	// Fresh ComputeAmounts output is always consistent.
	if incs := CheckConsistency(rows); len(incs) != 0 {
		t.Fatalf("CheckConsistency on fresh rows = %v, want none", incs)
	}

	// Drift a stored container amount beyond tolerance.
	rows[0].Amount = rows[0].Amount.Add(d(t, "0.02"))
	incs := CheckConsistency(rows)
	if len(incs) != 1 {
		t.Fatalf("got %d inconsistencies, want 1: %v", len(incs), incs)
	}
	inc := incs[0]
	if inc.ID != "1" {
		t.Errorf("inconsistency ID = %s, want 1", inc.ID)
	}
	if inc.Diff.String() != "0.02" {
		t.Errorf("Diff = %s, want 0.02", inc.Diff)
	}

	// Drift within tolerance is not reported.
	rows[0].Amount = inc.Recomputed.Add(d(t, "0.01"))
	if incs := CheckConsistency(rows); len(incs) != 0 {
		t.Errorf("drift of 0.01 reported as %v, want none (within tolerance)", incs)
	}
}

func TestBucketFor(t *testing.T) {
	tests := []struct {
		amount string
		want   PriceBucket
	}{
		{"0", BucketLow},
		{"99.99", BucketLow},
		{"100", BucketMedium},
		{"999.99", BucketMedium},
		{"1000", BucketHigh},
		{"9999.99", BucketHigh},
		{"10000", BucketPremium},
	}

	for _, tt := range tests {
		if got := BucketFor(d(t, tt.amount)); got != tt.want {
			t.Errorf("BucketFor(%s) = %s, want %s", tt.amount, got, tt.want)
		}
	}
}

func TestGroupByBucket(t *testing.T) {
	rows := amountedRows(t)

	got := GroupByBucket(rows)
	// Items: 300, 99.99, 30.30.
	if got[BucketMedium] != 1 || got[BucketLow] != 2 {
		t.Errorf("GroupByBucket = %v, want 1 medium and 2 low", got)
	}
}

func TestPercentOfTotal(t *testing.T) {
	rows := amountedRows(t)

	shares := PercentOfTotal(rows)
	if len(shares) != 3 {
		t.Fatalf("got %d shares, want 3", len(shares))
	}
	// Descending share order: 300 (69.72%), 99.99 (23.24%), 30.30 (7.04%).
	if shares[0].ID != "1.1.1.1" {
		t.Errorf("largest share = %s, want 1.1.1.1", shares[0].ID)
	}
	if got := shares[0].Percent.String(); got != "69.72" {
		t.Errorf("Percent = %s, want 69.72", got)
	}
}

func TestPercentOfTotal_EqualSharesOrderedByCode(t *testing.T) {
	item := func(id, amount string) LineRow {
		return LineRow{ID: id, Level: LevelItem, Amount: d(t, amount)}
	}
	rows := []LineRow{
		item("1.1.1.2", "100"),
		item("1.1.1.3", "50"),
		item("1.1.1.1", "100"),
	}

	shares := PercentOfTotal(rows)
	if len(shares) != 3 {
		t.Fatalf("got %d shares, want 3", len(shares))
	}
	wantOrder := []string{"1.1.1.1", "1.1.1.2", "1.1.1.3"}
	for i, want := range wantOrder {
		if shares[i].ID != want {
			t.Errorf("shares[%d].ID = %s, want %s", i, shares[i].ID, want)
		}
	}
	if !shares[0].Percent.Equal(shares[1].Percent) {
		t.Errorf("tied shares differ: %s vs %s", shares[0].Percent, shares[1].Percent)
	}
}
