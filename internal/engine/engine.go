package engine

// engine.go wires the pipeline stages together. Each stage is an explicit,
// independently testable transformation:
//
//	Normalize -> Validate -> ComputeAmounts -> ComputeTotals (+ diagnostics)
//
// Process is the single entry point collaborators call. It is synchronous
// and stateless: one call takes one complete row set and returns one
// complete result. There is no cancellation at this layer; the engine never
// performs I/O beyond draining the reader and always terminates (depth is
// capped at 4 and the row count is the only scaling factor).

import (
	"io"
	"strings"
)

// Process runs the full pipeline over raw delimited text.
//
// On a fatal parse problem (empty input, no header, no data rows) the result
// carries the single fatal error, no rows, and zero totals; no further
// stages run. Otherwise every row survives into the result alongside the
// ordered error list and whatever could still be computed, so a UI can show
// a consolidated error list next to a best-effort total.
func Process(r io.Reader, cfg Config) Result {
	normalized, fatal := Normalize(r)
	if fatal != nil {
		return Result{
			Rows:   []LineRow{},
			Errors: []ValidationError{*fatal},
			Totals: ComputeTotals(nil),
			Stats:  ComputeStats(nil),
		}
	}

	rows, errs := Validate(normalized, cfg)
	if errs == nil {
		errs = []ValidationError{}
	}
	rows = ComputeAmounts(rows)

	return Result{
		Rows:            rows,
		Errors:          errs,
		Totals:          ComputeTotals(rows),
		Stats:           ComputeStats(rows),
		Inconsistencies: CheckConsistency(rows),
	}
}

// ProcessString is a convenience wrapper over [Process] for callers that
// already hold the input in memory.
func ProcessString(input string, cfg Config) Result {
	return Process(strings.NewReader(input), cfg)
}
