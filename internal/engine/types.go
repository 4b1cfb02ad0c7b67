package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Level is the rank of a budget row in the four-level hierarchy.
// The numeric value equals the depth of the row's code.
type Level int

const (
	LevelChapter    Level = 1
	LevelSubchapter Level = 2
	LevelSection    Level = 3
	LevelItem       Level = 4
)

// String returns the canonical English name for the level.
func (l Level) String() string {
	switch l {
	case LevelChapter:
		return "chapter"
	case LevelSubchapter:
		return "subchapter"
	case LevelSection:
		return "section"
	case LevelItem:
		return "item"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so levels serialize as names.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, the inverse of
// MarshalText, so the JSON contract round-trips.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, ok := ParseLevelName(string(text))
	if !ok {
		return fmt.Errorf("unknown level name %q", string(text))
	}
	*l = parsed
	return nil
}

// IsContainer reports whether rows of this level derive their amount from
// descendants rather than carrying directly-entered pricing.
func (l Level) IsContainer() bool {
	return l == LevelChapter || l == LevelSubchapter || l == LevelSection
}

// LevelForDepth returns the level implied by a code depth (1-4).
func LevelForDepth(depth int) (Level, bool) {
	if depth < 1 || depth > 4 {
		return 0, false
	}
	return Level(depth), true
}

// ItemFields holds the pricing fields that are only meaningful at item level.
// Container rows have a nil ItemFields, which makes "item-only fields" an
// invariant the type system enforces instead of a convention.
type ItemFields struct {
	Unit          string          `json:"unit,omitempty"`
	TaxPercentage decimal.Decimal `json:"tax_percentage"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
}

// LineRow is the atomic unit of a budget: one row of the cost breakdown.
//
// Amount is derived, never parsed: for items it is quantity times unit price,
// for containers it is the sum of descendant item amounts. Both are filled in
// by [ComputeAmounts].
type LineRow struct {
	// Line is the 1-based line number in the source input, kept for error
	// reporting. Zero for rows constructed programmatically.
	Line int `json:"line,omitempty"`

	Level       Level  `json:"level"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Amount decimal.Decimal `json:"amount"`

	// Item holds pricing fields; nil for container rows.
	Item *ItemFields `json:"item,omitempty"`

	// Code is the parsed form of ID. Nil when ID did not parse; structural
	// checks skip rows without a code.
	Code Code `json:"-"`
}

// IsItem reports whether the row carries directly-entered pricing.
func (r LineRow) IsItem() bool {
	return r.Level == LevelItem
}

// Node is a LineRow plus its ordered children, built by [BuildTree] for
// consumers that need tree traversal (rendering, export). The tree is owned
// and acyclic; it is rebuilt from the flat list on each request rather than
// mutated in place.
type Node struct {
	LineRow
	Children []*Node `json:"children,omitempty"`
}

// Separator selects the decimal separator used when formatting amounts.
type Separator string

const (
	SeparatorDot   Separator = "dot"
	SeparatorComma Separator = "comma"
)

// Config controls formatting and validation policy for one invocation.
// The zero value is not useful; start from [DefaultConfig].
type Config struct {
	// Decimals is the number of fractional digits in formatted output.
	Decimals int

	// CurrencySymbol is prefixed to formatted amounts. Empty by default;
	// display-only, never part of the numeric representation.
	CurrencySymbol string

	// DecimalSeparator selects dot or comma formatting.
	DecimalSeparator Separator

	// ValidateNegative controls whether negative numeric fields are
	// reported as range errors.
	ValidateNegative bool
}

// DefaultConfig returns the engine defaults: 2 decimals, dot separator,
// no currency symbol, negative values rejected.
func DefaultConfig() Config {
	return Config{
		Decimals:         2,
		DecimalSeparator: SeparatorDot,
		ValidateNegative: true,
	}
}

// Result is the complete output of one engine invocation.
type Result struct {
	// Rows contains every parsed row, including invalid ones, in input
	// order, with amounts computed.
	Rows []LineRow `json:"rows"`

	// Errors is the ordered error list. Ordering is part of the contract:
	// parse errors first, then duplicates, missing ancestors, level
	// mismatches, numeric errors, and sequence warnings, each in row order.
	Errors []ValidationError `json:"errors"`

	// Totals holds the tax-grouped totals over the item rows.
	Totals Totals `json:"totals"`

	// Stats and Inconsistencies are read-only diagnostics; they never block
	// downstream use of the result.
	Stats           Stats           `json:"stats"`
	Inconsistencies []Inconsistency `json:"inconsistencies,omitempty"`
}

// HasBlocking reports whether the result contains any fatal or
// error-severity entries. Callers typically refuse to persist a budget when
// this is true and allow saving with warnings only.
func (r Result) HasBlocking() bool {
	for _, e := range r.Errors {
		if e.Severity == SeverityFatal || e.Severity == SeverityError {
			return true
		}
	}
	return false
}
