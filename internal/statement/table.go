package statement

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/statement-workbench/statement-workbench/internal/platform/httpx"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders an amount with grouped thousands, matching the comma
// separators the edit parser strips back out.
func FormatAmount(v float64) string {
	return amountPrinter.Sprintf("%.2f", v)
}

// PackCell joins a current and previous period value into the two-line cell
// encoding, with the previous half wrapped in parentheses.
func PackCell(current, previous string) string {
	return fmt.Sprintf("%s\n(%s)", current, previous)
}

// PackAmounts formats and packs a numeric current/previous pair.
func PackAmounts(current, previous float64) string {
	return PackCell(FormatAmount(current), FormatAmount(previous))
}

// ParseDisplayValue recovers one half of a packed cell for display. The
// parenthesis wrapping of the previous half is stripped but the sign is kept.
// A missing previous half displays as the "( )" placeholder.
func ParseDisplayValue(cell string, isPrevious bool) string {
	current, previous, packed := splitPacked(cell)
	if !isPrevious {
		return current
	}
	if !packed || previous == "" {
		return "( )"
	}
	return previous
}

// ParseEditValue recovers one half of a packed cell for editing: parentheses
// and comma separators are stripped, a leading minus sign survives, and an
// absent half yields the empty string.
func ParseEditValue(cell string, isPrevious bool) string {
	current, previous, _ := splitPacked(cell)
	half := current
	if isPrevious {
		half = previous
	}
	half = strings.ReplaceAll(half, ",", "")
	half = strings.TrimSpace(half)
	return half
}

// ApplyPackedEdit rewrites a packed cell after one half changed, preserving
// the other half's last displayed value. A cell that was never in packed form
// contributes an empty other half rather than a guessed value.
func ApplyPackedEdit(cell string, isPrevious bool, value string) string {
	current, previous, _ := splitPacked(cell)
	if isPrevious {
		previous = value
	} else {
		current = value
	}
	return PackCell(current, previous)
}

// splitPacked splits a two-line cell into its halves. The previous half comes
// back without its parenthesis wrapping; packed reports whether the cell
// actually carried a second line.
func splitPacked(cell string) (current, previous string, packed bool) {
	if cell == "" {
		return "", "", false
	}
	parts := strings.SplitN(cell, "\n", 2)
	current = strings.TrimSpace(parts[0])
	if len(parts) < 2 {
		return current, "", false
	}
	previous = strings.TrimSpace(parts[1])
	previous = strings.TrimPrefix(previous, "(")
	previous = strings.TrimSuffix(previous, ")")
	previous = strings.TrimSpace(previous)
	return current, previous, true
}

// CellEdit targets one table cell inside a note block.
type CellEdit struct {
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Value string `json:"value"`
	// TwoLine selects the packed encoding; Previous picks which half changes.
	TwoLine  bool `json:"twoLine,omitempty"`
	Previous bool `json:"previous,omitempty"`
}

// isTotalRow locks rows whose label contains "total", case-insensitively.
func isTotalRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	return strings.Contains(strings.ToLower(row[0]), "total")
}

// ApplyCellEdit returns a copy of the table with one cell rewritten. The
// first column is the row label and never editable; total rows are locked.
func ApplyCellEdit(t Table, edit CellEdit) (Table, error) {
	if !t.Editable {
		return Table{}, fmt.Errorf("%w: table is not editable", httpx.ErrValidation)
	}
	if edit.Row < 0 || edit.Row >= len(t.Rows) {
		return Table{}, fmt.Errorf("%w: row %d out of range", httpx.ErrValidation, edit.Row)
	}
	row := t.Rows[edit.Row]
	if edit.Col <= 0 || edit.Col >= len(row) {
		return Table{}, fmt.Errorf("%w: column %d is not editable", httpx.ErrValidation, edit.Col)
	}
	if isTotalRow(row) {
		return Table{}, fmt.Errorf("%w: total rows are not editable", httpx.ErrValidation)
	}
	out := t.Clone()
	if edit.TwoLine {
		out.Rows[edit.Row][edit.Col] = ApplyPackedEdit(row[edit.Col], edit.Previous, edit.Value)
	} else {
		out.Rows[edit.Row][edit.Col] = edit.Value
	}
	return out, nil
}
