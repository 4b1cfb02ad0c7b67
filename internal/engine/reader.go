package engine

// reader.go is the row normalizer: it turns raw delimited text into rows of
// canonical fields ready for typed parsing.
//
// It absorbs the usual artifacts of exported spreadsheets without failing:
//   - UTF-8 BOM added by Windows programs
//   - invalid UTF-8 sequences (replaced, not rejected)
//   - comma, semicolon, tab, or pipe delimiters (auto-detected)
//   - Excel formula prefixes (="value") and stray surrounding quotes
//   - fully blank rows (dropped silently)
//
// The only failures here are fatal: input with no header line or zero data
// rows cannot be processed, and the pipeline halts with a single parse error.

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// bomUTF8 is the UTF-8 byte-order mark (0xEF 0xBB 0xBF).
var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// delimiterCandidates are tried in order during detection; on a tie the
// earliest wins, which makes comma the default.
var delimiterCandidates = []rune{',', ';', '\t', '|'}

// RawRow is one content-bearing input row with its fields resolved to the
// canonical schema. Raw preserves the original cells for error echoes.
type RawRow struct {
	// Line is the 1-based line number in the source input, counting blank
	// lines, so it matches what the user sees in their file.
	Line   int
	Fields map[Field]string
	Raw    []string
}

// Field returns the cleaned value of a canonical field, empty if the column
// was absent from the input.
func (r RawRow) Field(f Field) string {
	return r.Fields[f]
}

// NormalizedRows is the output of Normalize: the resolved header mapping
// plus all content-bearing data rows in input order.
type NormalizedRows struct {
	Header headerIndex
	Rows   []RawRow
}

// Normalize reads delimited text and produces canonical rows. It returns a
// fatal parse error (and no rows) when the input is empty, has no
// recognizable header, or contains zero data rows.
func Normalize(r io.Reader) (*NormalizedRows, *ValidationError) {
	data, err := io.ReadAll(r)
	if err != nil {
		e := ParseError(fmt.Sprintf("failed to read input: %v", err))
		return nil, &e
	}

	data = sanitizeInput(data)
	if len(bytes.TrimSpace(data)) == 0 {
		e := ParseError("input is empty: expected a header line and at least one data row")
		return nil, &e
	}

	delim := DetectDelimiter(firstLine(data))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	// Track each record's true source line via FieldPos: encoding/csv
	// silently skips blank lines, so counting records would misnumber every
	// row after one, and Line is what error messages show the user.
	type sourceRecord struct {
		line   int
		fields []string
	}
	var records []sourceRecord
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			e := ParseError(fmt.Sprintf("malformed input: %v", err))
			return nil, &e
		}
		line, _ := reader.FieldPos(0)
		records = append(records, sourceRecord{line: line, fields: record})
	}
	if len(records) == 0 {
		e := ParseError("input is empty: expected a header line and at least one data row")
		return nil, &e
	}

	header := mapHeader(records[0].fields)
	if len(header) == 0 {
		e := ParseError("no recognizable header line: expected columns like level, id, name (or nivel, codigo, nombre)")
		return nil, &e
	}

	rows := make([]RawRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isRowEmpty(rec.fields) {
			continue
		}

		fields := make(map[Field]string, len(header))
		for f, pos := range header {
			if pos < len(rec.fields) {
				fields[f] = CleanCell(rec.fields[pos])
			} else {
				fields[f] = ""
			}
		}

		rows = append(rows, RawRow{
			Line:   rec.line,
			Fields: fields,
			Raw:    rec.fields,
		})
	}

	if len(rows) == 0 {
		e := ParseError("no data rows found after the header")
		return nil, &e
	}

	return &NormalizedRows{Header: header, Rows: rows}, nil
}

// sanitizeInput strips a leading UTF-8 BOM and replaces invalid UTF-8
// sequences so downstream parsing never chokes on encoding artifacts.
func sanitizeInput(data []byte) []byte {
	data = bytes.TrimPrefix(data, bomUTF8)
	return bytes.ToValidUTF8(data, []byte("?"))
}

// firstLine returns the text up to the first line break.
func firstLine(data []byte) string {
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return string(data[:i])
	}
	return string(data)
}

// DetectDelimiter counts candidate delimiters in the first line and picks
// the most frequent one. Ties and zero matches fall back to comma.
func DetectDelimiter(line string) rune {
	best := ','
	bestCount := 0
	for _, cand := range delimiterCandidates {
		if n := strings.Count(line, string(cand)); n > bestCount {
			best = cand
			bestCount = n
		}
	}
	return best
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// surrounding whitespace, an Excel formula prefix (="..."), and stray
// surrounding quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

// isRowEmpty reports whether a row contains only empty cells. A row is
// content-bearing if at least one field is non-empty.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
