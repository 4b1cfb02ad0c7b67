package engine

// totals.go groups item rows by tax rate and derives the document totals.
// Formatting is a separate, purely presentational step: formatted strings
// never feed back into the numeric values used for computation.

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// TaxGroup aggregates the item rows sharing one tax percentage.
type TaxGroup struct {
	Percentage decimal.Decimal `json:"percentage"`
	Base       decimal.Decimal `json:"base"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
}

// Totals is the tax summary over a fully-amounted row set.
type Totals struct {
	Base       decimal.Decimal `json:"base"`
	Groups     []TaxGroup      `json:"groups"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// ComputeTotals groups item rows by their exact normalized tax percentage
// and derives per-rate taxes and the grand total:
//
//	group base  = sum of the group's item amounts
//	group tax   = round(base * percentage / 100, 2)
//	grand total = base over all items + sum of group taxes
//
// Groups are ordered by ascending percentage for determinism. An empty item
// set yields zero base, an empty group list, and zero total; that is not an
// error.
func ComputeTotals(rows []LineRow) Totals {
	byRate := make(map[string]*TaxGroup)
	var keys []string

	base := decimal.Zero
	for _, row := range rows {
		if !row.IsItem() || row.Item == nil {
			continue
		}
		base = base.Add(row.Amount)

		key := row.Item.TaxPercentage.String()
		g, ok := byRate[key]
		if !ok {
			g = &TaxGroup{Percentage: row.Item.TaxPercentage}
			byRate[key] = g
			keys = append(keys, key)
		}
		g.Base = g.Base.Add(row.Amount)
	}

	groups := make([]TaxGroup, 0, len(keys))
	for _, key := range keys {
		g := byRate[key]
		g.TaxAmount = g.Base.Mul(g.Percentage).Div(hundred).Round(amountScale)
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Percentage.LessThan(groups[j].Percentage)
	})

	total := base
	for _, g := range groups {
		total = total.Add(g.TaxAmount)
	}

	return Totals{
		Base:       base.Round(amountScale),
		Groups:     groups,
		GrandTotal: total.Round(amountScale),
	}
}

// FormattedTaxGroup is the display form of a TaxGroup.
type FormattedTaxGroup struct {
	Percentage string `json:"percentage"`
	Base       string `json:"base"`
	TaxAmount  string `json:"tax_amount"`
}

// FormattedTotals is the display form of Totals.
type FormattedTotals struct {
	Base       string              `json:"base"`
	Groups     []FormattedTaxGroup `json:"groups"`
	GrandTotal string              `json:"grand_total"`
}

// Format renders the totals with the configured decimal places, separator
// style, and currency symbol.
func (t Totals) Format(cfg Config) FormattedTotals {
	out := FormattedTotals{
		Base:       FormatAmount(t.Base, cfg),
		Groups:     make([]FormattedTaxGroup, len(t.Groups)),
		GrandTotal: FormatAmount(t.GrandTotal, cfg),
	}
	for i, g := range t.Groups {
		out.Groups[i] = FormattedTaxGroup{
			Percentage: g.Percentage.String(),
			Base:       FormatAmount(g.Base, cfg),
			TaxAmount:  FormatAmount(g.TaxAmount, cfg),
		}
	}
	return out
}

// FormatAmount renders one amount for display. The currency symbol, when
// configured, is prefixed; the numeric representation itself stays
// symbol-free.
func FormatAmount(d decimal.Decimal, cfg Config) string {
	decimals := cfg.Decimals
	if decimals < 0 {
		decimals = 2
	}
	s := d.StringFixed(int32(decimals))
	if cfg.DecimalSeparator == SeparatorComma {
		s = strings.Replace(s, ".", ",", 1)
	}
	if cfg.CurrencySymbol != "" {
		s = cfg.CurrencySymbol + s
	}
	return s
}
