package engine

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return v
}

func TestItemAmount(t *testing.T) {
	tests := []struct {
		name      string
		quantity  string
		unitPrice string
		want      string
	}{
		{name: "whole numbers", quantity: "2", unitPrice: "150", want: "300"},
		{name: "two decimals", quantity: "2", unitPrice: "150.00", want: "300"},
		{name: "rounding half away from zero", quantity: "3", unitPrice: "0.115", want: "0.35"},
		{name: "rounds down", quantity: "1", unitPrice: "10.004", want: "10"},
		{name: "zero quantity", quantity: "0", unitPrice: "99.99", want: "0"},
		{name: "negative quantity clamps", quantity: "-2", unitPrice: "150", want: "0"},
		{name: "negative price clamps", quantity: "2", unitPrice: "-150", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ItemAmount(d(t, tt.quantity), d(t, tt.unitPrice))
			if got.String() != tt.want {
				t.Errorf("ItemAmount(%s, %s) = %s, want %s", tt.quantity, tt.unitPrice, got, tt.want)
			}
		})
	}
}

// amountedRows builds a budget with two items under one chapter and one
// under another, runs ComputeAmounts, and returns the result.
func amountedRows(t *testing.T) []LineRow {
	t.Helper()
	build := func(id string, qty, price, tax string) LineRow {
		code, err := ParseCode(id)
		if err != nil {
			t.Fatalf("ParseCode(%q): %v", id, err)
		}
		level, _ := LevelForDepth(code.Depth())
		row := LineRow{ID: id, Code: code, Level: level}
		if level == LevelItem {
			row.Item = &ItemFields{
				Quantity:      d(t, qty),
				UnitPrice:     d(t, price),
				TaxPercentage: d(t, tax),
			}
		}
		return row
	}

	rows := []LineRow{
		build("1", "", "", ""),
		build("1.1", "", "", ""),
		build("1.1.1", "", "", ""),
		build("1.1.1.1", "2", "150.00", "21"),
		build("1.1.1.2", "1", "99.99", "21"),
		build("2", "", "", ""),
		build("2.1", "", "", ""),
		build("2.1.1", "", "", ""),
		build("2.1.1.1", "3", "10.10", "10"),
	}
	return ComputeAmounts(rows)
}

func TestComputeAmounts_Propagation(t *testing.T) {
	rows := amountedRows(t)

	wantAmounts := map[string]string{
		"1":       "399.99",
		"1.1":     "399.99",
		"1.1.1":   "399.99",
		"1.1.1.1": "300",
		"1.1.1.2": "99.99",
		"2":       "30.3",
		"2.1":     "30.3",
		"2.1.1":   "30.3",
		"2.1.1.1": "30.3",
	}
	for _, row := range rows {
		want := wantAmounts[row.ID]
		if row.Amount.String() != want {
			t.Errorf("amount[%s] = %s, want %s", row.ID, row.Amount, want)
		}
	}
}

func TestComputeAmounts_Idempotent(t *testing.T) {
	once := amountedRows(t)
	twice := ComputeAmounts(once)

	for i := range once {
		if !once[i].Amount.Equal(twice[i].Amount) {
			t.Errorf("amount[%s] changed on second pass: %s -> %s",
				once[i].ID, once[i].Amount, twice[i].Amount)
		}
	}
}

func TestComputeAmounts_DoesNotMutateInput(t *testing.T) {
	code, _ := ParseCode("1")
	itemCode, _ := ParseCode("1.1.1.1")
	rows := []LineRow{
		{ID: "1", Code: code, Level: LevelChapter},
		{ID: "1.1.1.1", Code: itemCode, Level: LevelItem,
			Item: &ItemFields{Quantity: d(t, "2"), UnitPrice: d(t, "5")}},
	}

	ComputeAmounts(rows)
	if !rows[0].Amount.IsZero() {
		t.Errorf("input container amount mutated to %s", rows[0].Amount)
	}
}

func TestContainerAmount_SumThenRound(t *testing.T) {
	// Three items at 0.333 each: per-addend rounding would give 0.99,
	// summing first gives 1.00.
	build := func(id, amount string) LineRow {
		code, _ := ParseCode(id)
		level, _ := LevelForDepth(code.Depth())
		row := LineRow{ID: id, Code: code, Level: level, Amount: d(t, amount)}
		if level == LevelItem {
			row.Item = &ItemFields{}
		}
		return row
	}
	rows := []LineRow{
		build("1", "0"),
		build("1.1", "0"),
		build("1.1.1", "0"),
		build("1.1.1.1", "0.333"),
		build("1.1.1.2", "0.333"),
		build("1.1.1.3", "0.333"),
	}

	got := ContainerAmount(rows[0], rows)
	if got.String() != "1" {
		t.Errorf("ContainerAmount = %s, want 1 (round after summation)", got)
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "dot separator", input: "150.00", want: "150"},
		{name: "comma separator", input: "150,00", want: "150"},
		{name: "integer", input: "21", want: "21"},
		{name: "whitespace", input: " 3.5 ", want: "3.5"},
		{name: "comma thousands with dot decimal", input: "1,234.56", want: "1234.56"},
		{name: "repeated comma thousands", input: "1,234,567", want: "1234567"},
		{name: "negative", input: "-5", want: "-5"},
		{name: "not a number", input: "abc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimal(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDecimal(%q) = %s, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimal(%q) error = %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseDecimal(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}
