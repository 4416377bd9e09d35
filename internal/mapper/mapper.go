package mapper

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/statement-workbench/statement-workbench/internal/ingest"
	"github.com/statement-workbench/statement-workbench/internal/platform/httpx"
)

// normalizeColumn lowercases a column name and removes all whitespace so that
// alias comparison is case- and whitespace-insensitive.
func normalizeColumn(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// AutoMap proposes a mapping for the given source columns. For each canonical
// field the ordered alias list is scanned and the first alias matching a
// source column wins; fields with no matching alias stay unmapped.
func AutoMap(columns []string) Mapping {
	bySource := make(map[string]string, len(columns))
	for _, col := range columns {
		key := normalizeColumn(col)
		if key == "" {
			continue
		}
		if _, ok := bySource[key]; !ok {
			bySource[key] = col
		}
	}
	mapping := make(Mapping, len(Fields))
	for _, field := range Fields {
		mapping[field] = ""
		for _, alias := range fieldAliases[field] {
			if source, ok := bySource[normalizeColumn(alias)]; ok {
				mapping[field] = source
				break
			}
		}
	}
	return mapping
}

// Override assigns a source column to a field, or clears it when column is
// empty. Unknown fields and columns are rejected.
func (m Mapping) Override(field Field, column string, available []string) error {
	if _, ok := fieldAliases[field]; !ok {
		return fmt.Errorf("%w: unknown field %q", httpx.ErrValidation, field)
	}
	if column == "" {
		m[field] = ""
		return nil
	}
	for _, col := range available {
		if col == column {
			m[field] = column
			return nil
		}
	}
	return fmt.Errorf("%w: column %q not present in upload", httpx.ErrValidation, column)
}

// Validate checks that every mandatory field is mapped.
func (m Mapping) Validate() error {
	var missing []string
	for _, field := range requiredFields {
		if strings.TrimSpace(m[field]) == "" {
			missing = append(missing, string(field))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: required fields unmapped: %s", httpx.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// CleanAmount coerces a raw cell value to a number. Every rune that is not a
// digit, decimal point or minus sign is stripped before parsing; anything
// that still fails to parse yields zero.
func CleanAmount(v any) float64 {
	switch val := v.(type) {
	case nil:
		return 0
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case string:
		var b strings.Builder
		for _, r := range val {
			if (r >= '0' && r <= '9') || r == '.' || r == '-' {
				b.WriteRune(r)
			}
		}
		d, err := decimal.NewFromString(b.String())
		if err != nil {
			return 0
		}
		f, _ := d.Float64()
		return f
	default:
		return 0
	}
}

// Normalize applies a confirmed mapping to the parsed sheet and returns one
// canonical record per raw row. Amounts land under the synthesized period
// keys; skipped descriptive fields come through as empty strings.
func Normalize(mapping Mapping, period PeriodSpec, sheet ingest.Sheet) ([]MappedRow, error) {
	if err := mapping.Validate(); err != nil {
		return nil, err
	}
	if !period.Type.Valid() {
		return nil, fmt.Errorf("%w: invalid period type %q", httpx.ErrValidation, period.Type)
	}
	if period.Date.IsZero() {
		return nil, fmt.Errorf("%w: period date required", httpx.ErrValidation)
	}
	currentKey := period.CurrentKey()
	previousKey := period.PreviousKey()

	pick := func(rec ingest.Record, field Field) string {
		col := mapping[field]
		if col == "" {
			return ""
		}
		return rec[col]
	}

	rows := make([]MappedRow, 0, len(sheet.Rows))
	for _, rec := range sheet.Rows {
		row := MappedRow{
			GLAccount:      pick(rec, FieldGLAccount),
			GLDescription:  pick(rec, FieldGLDescription),
			AccountType:    pick(rec, FieldAccountType),
			Level1:         pick(rec, FieldLevel1),
			Level2:         pick(rec, FieldLevel2),
			FunctionalArea: pick(rec, FieldFunctionalArea),
			Amounts: map[string]float64{
				currentKey:  CleanAmount(pick(rec, FieldAmountCurrent)),
				previousKey: 0,
			},
		}
		if mapping[FieldAmountPrevious] != "" {
			row.Amounts[previousKey] = CleanAmount(pick(rec, FieldAmountPrevious))
		}
		rows = append(rows, row)
	}
	return rows, nil
}
