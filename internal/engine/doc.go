// Package engine turns flat budget rows into a validated, calculated budget.
//
// This package is the heart of the budget importer, containing all domain
// logic independent of any UI or transport layer. It can be used by web
// handlers, CLI tools, or tests without modification.
//
// # Pipeline
//
// A budget arrives as delimited text describing a four-level cost breakdown
// (chapter, subchapter, section, item) keyed by dot-separated codes such as
// "1.2.3". Processing is a chain of pure transformations:
//
//  1. Normalize: strip BOM, sanitize UTF-8, detect the delimiter, and map
//     bilingual column headers onto the canonical field set.
//  2. Validate: check for duplicate codes, missing ancestors, level/depth
//     mismatches, bad numeric fields, and sibling sequence gaps. Problems
//     are collected as [ValidationError] values, never panics.
//  3. Compute: derive each item's amount from quantity and unit price, then
//     propagate sums bottom-up into containers.
//  4. Total: group items by tax percentage and produce per-rate taxes and a
//     grand total.
//
// [Process] runs the full chain and returns a [Result] with the rows (all of
// them, including invalid ones, so callers can render them for correction),
// the ordered error list, and the totals.
//
// # Error Severities
//
// Every [ValidationError] carries a severity:
//
//   - fatal: the input cannot be processed at all; processing halts and only
//     the fatal error is returned.
//   - error: a specific row or field is invalid; the row stays in the output
//     but its numeric fields are treated as zero downstream.
//   - warning: the data is usable but suspicious (for example a sequence
//     gap); computation proceeds normally.
//
// Policy on warnings versus errors (for example refusing to save a budget
// that has any error-severity entries) belongs to the caller.
//
// # Concurrency
//
// The engine keeps no state between invocations. Every exported function is
// pure over its inputs, so concurrent calls are safe by construction.
package engine
