package engine

// validate.go checks the normalized row set for structural integrity and
// produces the typed rows plus the ordered error list.
//
// Checks run in a fixed order, and errors are appended in the order the
// checks run, each check visiting rows in input order:
//
//	typed parsing (level, code) -> duplicates -> missing ancestors ->
//	level/depth agreement -> numeric fields -> sibling sequence
//
// This ordering is part of the observable contract so callers and tests can
// assert exact error sequences. The validator never drops rows: invalid rows
// stay in the output with their distrusted numeric fields zeroed, so a UI
// can render them for correction.

import (
	"fmt"
	"sort"
	"strings"
)

// parsedRow pairs a typed row with its raw source for error echoes.
type parsedRow struct {
	row           LineRow
	raw           RawRow
	levelDeclared bool
}

// Validate turns normalized rows into typed rows and runs all structural
// checks. The returned error list follows the documented check order.
func Validate(n *NormalizedRows, cfg Config) ([]LineRow, []ValidationError) {
	parsed, errs := parseRows(n)

	errs = append(errs, checkDuplicates(parsed)...)
	errs = append(errs, checkAncestors(parsed)...)
	errs = append(errs, checkLevelAgreement(parsed)...)
	errs = append(errs, parseNumericFields(parsed, cfg)...)
	errs = append(errs, checkSequence(parsed)...)

	rows := make([]LineRow, len(parsed))
	for i, p := range parsed {
		rows[i] = p.row
	}
	zeroDistrusted(rows, errs)
	return rows, errs
}

// zeroDistrusted clears the numeric fields of every item row that drew an
// error-severity finding, whatever the check. A duplicated or orphaned item
// must contribute nothing to downstream sums, exactly like one with a
// malformed price. Warnings leave rows untouched.
func zeroDistrusted(rows []LineRow, errs []ValidationError) {
	distrusted := make(map[int]bool, len(errs))
	for _, e := range errs {
		if e.Severity == SeverityError && e.Line > 0 {
			distrusted[e.Line] = true
		}
	}
	for i := range rows {
		if rows[i].Item != nil && distrusted[rows[i].Line] {
			*rows[i].Item = ItemFields{Unit: rows[i].Item.Unit}
		}
	}
}

// parseRows converts raw rows to typed rows, reporting malformed codes and
// unrecognized level names. Rows whose code fails to parse keep a nil Code
// and are skipped by the structural checks; rows without a usable level
// declaration fall back to the level implied by their code depth.
func parseRows(n *NormalizedRows) ([]parsedRow, []ValidationError) {
	var errs []ValidationError
	parsed := make([]parsedRow, 0, len(n.Rows))

	_, hasLevelColumn := n.Header[FieldLevel]

	for _, raw := range n.Rows {
		row := LineRow{
			Line:        raw.Line,
			ID:          strings.TrimSpace(raw.Field(FieldID)),
			Name:        raw.Field(FieldName),
			Description: raw.Field(FieldDescription),
		}

		code, err := ParseCode(raw.Field(FieldID))
		if err != nil {
			errs = append(errs, IDFormatError(raw.Line, raw.Field(FieldID), raw.Raw))
		} else {
			row.Code = code
			row.ID = code.String()
			if code.Depth() > int(LevelItem) {
				errs = append(errs, DepthError(raw.Line, row.ID, code.Depth(), raw.Raw))
			}
		}

		declared := false
		if hasLevelColumn && raw.Field(FieldLevel) != "" {
			if level, ok := ParseLevelName(raw.Field(FieldLevel)); ok {
				row.Level = level
				declared = true
			} else {
				errs = append(errs, FieldError(raw.Line, string(FieldLevel), raw.Raw,
					fmt.Sprintf("unrecognized level name %q", raw.Field(FieldLevel))))
			}
		}
		if !declared && row.Code != nil {
			if level, ok := LevelForDepth(row.Code.Depth()); ok {
				row.Level = level
			} else {
				row.Level = LevelItem
			}
		}

		parsed = append(parsed, parsedRow{row: row, raw: raw, levelDeclared: declared})
	}

	return parsed, errs
}

// checkDuplicates reports one duplicate error per extra occurrence of a
// code, referencing the later occurrence. Rows without a parsed code are
// skipped (already reported as malformed).
func checkDuplicates(parsed []parsedRow) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(parsed))
	for _, p := range parsed {
		if p.row.Code == nil {
			continue
		}
		if seen[p.row.ID] {
			errs = append(errs, DuplicateIDError(p.row.Line, p.row.ID, p.raw.Raw))
			continue
		}
		seen[p.row.ID] = true
	}
	return errs
}

// checkAncestors verifies that every item row has its full chain of
// containers present, emitting one targeted hierarchy error per missing
// ancestor in chapter, subchapter, section order.
func checkAncestors(parsed []parsedRow) []ValidationError {
	present := make(map[string]bool, len(parsed))
	for _, p := range parsed {
		if p.row.Code != nil {
			present[p.row.ID] = true
		}
	}

	var errs []ValidationError
	for _, p := range parsed {
		if p.row.Code == nil || p.row.Code.Depth() != int(LevelItem) {
			continue
		}
		for _, ancestor := range RequiredAncestors(p.row.ID) {
			if !present[ancestor.ID] {
				errs = append(errs, HierarchyError(p.row.Line, p.row.ID, ancestor.ID, ancestor.Level))
			}
		}
	}
	return errs
}

// checkLevelAgreement reports rows whose declared level disagrees with the
// level implied by their code depth. Rows that derived their level from the
// depth cannot disagree and are skipped, as are codes beyond item depth
// (already reported by parseRows).
func checkLevelAgreement(parsed []parsedRow) []ValidationError {
	var errs []ValidationError
	for _, p := range parsed {
		if !p.levelDeclared || p.row.Code == nil {
			continue
		}
		implied, ok := LevelForDepth(p.row.Code.Depth())
		if !ok {
			continue
		}
		if p.row.Level != implied {
			errs = append(errs, StructureError(p.row.Line, p.row.ID, p.row.Level, implied))
		}
	}
	return errs
}

// itemNumericFields are validated in this order for every item row.
var itemNumericFields = []Field{FieldQuantity, FieldUnitPrice, FieldTax}

// parseNumericFields parses quantity, unit price, and tax percentage for
// item rows, accepting either dot or comma as the decimal separator.
// Invalid or out-of-range values are reported and zeroed so downstream
// sums treat the row as contributing nothing. Empty fields are zero without
// an error. Values are normalized to two fractional digits.
func parseNumericFields(parsed []parsedRow, cfg Config) []ValidationError {
	var errs []ValidationError
	for i := range parsed {
		p := &parsed[i]
		if p.row.Level != LevelItem {
			continue
		}

		item := &ItemFields{Unit: p.raw.Field(FieldUnit)}
		p.row.Item = item

		for _, field := range itemNumericFields {
			value := p.raw.Field(field)
			if value == "" {
				continue
			}

			d, err := ParseDecimal(value)
			if err != nil {
				errs = append(errs, NumericFormatError(p.row.Line, string(field), value, p.raw.Raw))
				continue
			}
			if d.IsNegative() && cfg.ValidateNegative {
				errs = append(errs, NumericRangeError(p.row.Line, string(field), value, p.raw.Raw,
					"must not be negative"))
				continue
			}
			if field == FieldTax && d.GreaterThan(hundred) {
				errs = append(errs, NumericRangeError(p.row.Line, string(field), value, p.raw.Raw,
					"tax percentage must be between 0 and 100"))
				continue
			}

			d = d.Round(amountScale)
			switch field {
			case FieldQuantity:
				item.Quantity = d
			case FieldUnitPrice:
				item.UnitPrice = d
			case FieldTax:
				item.TaxPercentage = d
			}
		}
	}
	return errs
}

// checkSequence verifies that sibling codes under each parent are numbered
// contiguously from 1. Gaps and offsets yield one sequence warning per
// deviation; processing continues normally. Groups are visited in first-
// appearance order for determinism.
func checkSequence(parsed []parsedRow) []ValidationError {
	type group struct {
		parent string
		seen   map[int]bool
		nums   []int
	}

	var order []string
	groups := make(map[string]*group)
	for _, p := range parsed {
		if p.row.Code == nil {
			continue
		}
		parent := ""
		if pc := p.row.Code.Parent(); pc != nil {
			parent = pc.String()
		}
		g, ok := groups[parent]
		if !ok {
			g = &group{parent: parent, seen: make(map[int]bool)}
			groups[parent] = g
			order = append(order, parent)
		}
		last := p.row.Code.Last()
		if !g.seen[last] {
			g.seen[last] = true
			g.nums = append(g.nums, last)
		}
	}

	var errs []ValidationError
	for _, parent := range order {
		g := groups[parent]
		sort.Ints(g.nums)
		expected := 1
		for _, got := range g.nums {
			if got != expected {
				errs = append(errs, SequenceError(g.parent, expected, got))
			}
			expected = got + 1
		}
	}
	return errs
}
