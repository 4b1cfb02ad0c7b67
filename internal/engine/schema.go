package engine

// schema.go maps the messy reality of exported budget headers onto the
// canonical field set. Source files arrive with either English or Spanish
// headers, in varying capitalization, with or without accents, and with
// decorations like "% IVA" or "Precio Unitario". Matching is done on a
// folded key: lower-cased, diacritics stripped, non-alphanumerics removed.

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Field is a canonical column of the budget schema.
type Field string

const (
	FieldLevel       Field = "level"
	FieldID          Field = "id"
	FieldName        Field = "name"
	FieldDescription Field = "description"
	FieldUnit        Field = "unit"
	FieldTax         Field = "tax_percentage"
	FieldQuantity    Field = "quantity"
	FieldUnitPrice   Field = "unit_price"
)

// CanonicalFields lists every canonical column in schema order.
var CanonicalFields = []Field{
	FieldLevel, FieldID, FieldName, FieldDescription,
	FieldUnit, FieldTax, FieldQuantity, FieldUnitPrice,
}

// headerAliases maps folded header keys to canonical fields. Both supported
// vocabularies (English and Spanish) are listed; folding makes accents and
// punctuation irrelevant, so "Descripción" and "descripcion" both match.
var headerAliases = map[string]Field{
	// English
	"level":         FieldLevel,
	"id":            FieldID,
	"code":          FieldID,
	"name":          FieldName,
	"description":   FieldDescription,
	"unit":          FieldUnit,
	"tax":           FieldTax,
	"taxpercentage": FieldTax,
	"vat":           FieldTax,
	"quantity":      FieldQuantity,
	"qty":           FieldQuantity,
	"unitprice":     FieldUnitPrice,
	"price":         FieldUnitPrice,

	// Spanish
	"nivel":          FieldLevel,
	"codigo":         FieldID,
	"nombre":         FieldName,
	"resumen":        FieldName,
	"descripcion":    FieldDescription,
	"unidad":         FieldUnit,
	"ud":             FieldUnit,
	"iva":            FieldTax,
	"porcentajeiva":  FieldTax,
	"cantidad":       FieldQuantity,
	"medicion":       FieldQuantity,
	"precio":         FieldUnitPrice,
	"preciounitario": FieldUnitPrice,
}

// levelAliases maps folded level-cell values to levels, again covering both
// vocabularies.
var levelAliases = map[string]Level{
	"chapter":     LevelChapter,
	"capitulo":    LevelChapter,
	"subchapter":  LevelSubchapter,
	"subcapitulo": LevelSubchapter,
	"section":     LevelSection,
	"seccion":     LevelSection,
	"apartado":    LevelSection,
	"item":        LevelItem,
	"partida":     LevelItem,
	"lineitem":    LevelItem,
}

// foldTransformer strips combining marks: NFD decomposition, removal of
// nonspacing marks, NFC recomposition.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldKey normalizes a header or level cell for vocabulary matching:
// diacritics stripped, lower-cased, everything but letters and digits
// removed.
func foldKey(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MatchHeader resolves a raw header cell to its canonical field.
func MatchHeader(raw string) (Field, bool) {
	f, ok := headerAliases[foldKey(raw)]
	return f, ok
}

// ParseLevelName resolves a raw level cell to a Level.
func ParseLevelName(raw string) (Level, bool) {
	l, ok := levelAliases[foldKey(raw)]
	return l, ok
}

// headerIndex maps canonical fields to their column position in the input.
type headerIndex map[Field]int

// mapHeader builds a headerIndex from the raw header row. Columns that match
// no vocabulary entry are ignored; when two columns map to the same field the
// first wins.
func mapHeader(cells []string) headerIndex {
	idx := make(headerIndex)
	for i, cell := range cells {
		if f, ok := MatchHeader(cell); ok {
			if _, seen := idx[f]; !seen {
				idx[f] = i
			}
		}
	}
	return idx
}
