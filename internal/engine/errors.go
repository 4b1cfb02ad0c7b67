package engine

// errors.go defines the closed error taxonomy shared by every pipeline stage.
//
// All components report problems through the constructors below rather than
// free-form strings, so callers can filter and count by code and severity
// reliably. Construction never fails and has no side effects; errors are
// collected into one ordered list per invocation and the caller owns them.

import "fmt"

// Severity classifies how a validation error affects processing.
type Severity string

const (
	// SeverityFatal means the input cannot be processed at all. Processing
	// halts immediately and no partial result is returned.
	SeverityFatal Severity = "fatal"

	// SeverityError means a specific row or field is invalid. The row stays
	// in the output so it can be rendered for correction, but its numeric
	// fields are treated as zero downstream.
	SeverityError Severity = "error"

	// SeverityWarning means the data is usable but suspicious. Computation
	// proceeds normally.
	SeverityWarning Severity = "warning"
)

// ErrorCode identifies the kind of validation problem.
type ErrorCode string

const (
	CodeParse      ErrorCode = "parse"
	CodeStructure  ErrorCode = "structure"
	CodeValidation ErrorCode = "validation"
	CodeHierarchy  ErrorCode = "hierarchy"
	CodeDuplicate  ErrorCode = "duplicate"
	CodeSequence   ErrorCode = "sequence"
	CodeRange      ErrorCode = "range"
)

// ValidationError describes one problem found during a validation pass.
type ValidationError struct {
	Code     ErrorCode `json:"code"`
	Severity Severity  `json:"severity"`

	// Line is the 1-based source line of the offending row, 0 if the error
	// is not tied to a single row.
	Line int `json:"line,omitempty"`

	// Field names the offending canonical field, if any.
	Field string `json:"field,omitempty"`

	// Row echoes the original raw fields for user-facing display.
	Row []string `json:"row,omitempty"`

	Message string `json:"message"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ParseError reports input that cannot be processed at all (empty file,
// missing header). Always fatal.
func ParseError(message string) ValidationError {
	return ValidationError{
		Code:     CodeParse,
		Severity: SeverityFatal,
		Message:  message,
	}
}

// FieldError reports an invalid value in a named field of a row.
func FieldError(line int, field string, row []string, message string) ValidationError {
	return ValidationError{
		Code:     CodeValidation,
		Severity: SeverityError,
		Line:     line,
		Field:    field,
		Row:      row,
		Message:  fmt.Sprintf("invalid %s: %s", field, message),
	}
}

// StructureError reports a row whose declared level disagrees with the depth
// implied by its code.
func StructureError(line int, id string, declared Level, implied Level) ValidationError {
	return ValidationError{
		Code:     CodeStructure,
		Severity: SeverityError,
		Line:     line,
		Field:    string(FieldLevel),
		Message:  fmt.Sprintf("code %q implies level %s but row declares %s", id, implied, declared),
	}
}

// IDFormatError reports a code that is not a dot-separated sequence of
// positive integers.
func IDFormatError(line int, id string, row []string) ValidationError {
	return ValidationError{
		Code:     CodeStructure,
		Severity: SeverityError,
		Line:     line,
		Field:    string(FieldID),
		Row:      row,
		Message:  fmt.Sprintf("malformed code %q: want dot-separated positive integers like 1.2.3", id),
	}
}

// DepthError reports a code nested deeper than the four-level hierarchy
// allows.
func DepthError(line int, id string, depth int, row []string) ValidationError {
	return ValidationError{
		Code:     CodeStructure,
		Severity: SeverityError,
		Line:     line,
		Field:    string(FieldID),
		Row:      row,
		Message:  fmt.Sprintf("code %q has depth %d; the hierarchy ends at item level (depth 4)", id, depth),
	}
}

// HierarchyError reports a missing ancestor for an item row.
func HierarchyError(line int, itemID string, missingID string, missingLevel Level) ValidationError {
	return ValidationError{
		Code:     CodeHierarchy,
		Severity: SeverityError,
		Line:     line,
		Message:  fmt.Sprintf("item %s is missing its %s %s", itemID, missingLevel, missingID),
	}
}

// DuplicateIDError reports an extra occurrence of an already-seen code.
func DuplicateIDError(line int, id string, row []string) ValidationError {
	return ValidationError{
		Code:     CodeDuplicate,
		Severity: SeverityError,
		Line:     line,
		Field:    string(FieldID),
		Row:      row,
		Message:  fmt.Sprintf("duplicate code %s", id),
	}
}

// SequenceError reports a gap or mismatch in sibling numbering under a
// parent. Non-fatal: a malformed-but-parseable sequence must not block the
// rest of the pipeline.
func SequenceError(parentID string, expected int, got int) ValidationError {
	where := "at top level"
	if parentID != "" {
		where = fmt.Sprintf("under %s", parentID)
	}
	return ValidationError{
		Code:     CodeSequence,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf("sibling numbering %s: expected %d, found %d", where, expected, got),
	}
}

// NumericFormatError reports a field that does not parse as a decimal.
func NumericFormatError(line int, field string, value string, row []string) ValidationError {
	return ValidationError{
		Code:     CodeValidation,
		Severity: SeverityError,
		Line:     line,
		Field:    field,
		Row:      row,
		Message:  fmt.Sprintf("%s %q is not a valid number", field, value),
	}
}

// NumericRangeError reports a numeric field outside its allowed range.
func NumericRangeError(line int, field string, value string, row []string, reason string) ValidationError {
	return ValidationError{
		Code:     CodeRange,
		Severity: SeverityError,
		Line:     line,
		Field:    field,
		Row:      row,
		Message:  fmt.Sprintf("%s %q out of range: %s", field, value, reason),
	}
}
