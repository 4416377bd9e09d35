package ingest

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	csv := strings.Join([]string{
		"GL Account,Level 1 grouping,Amount",
		"1000,Current Assets,\"1,234.50\"",
		",,",
		"2000,Liabilities,-300",
	}, "\n")

	sheet, err := Parse("tb.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(sheet.Columns) != 3 || sheet.Columns[0] != "GL Account" {
		t.Fatalf("columns = %v", sheet.Columns)
	}
	// the all-blank row is dropped
	if len(sheet.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(sheet.Rows))
	}
	if sheet.Rows[0]["Amount"] != "1,234.50" {
		t.Fatalf("amount = %q", sheet.Rows[0]["Amount"])
	}
	if sheet.Rows[1]["Level 1 grouping"] != "Liabilities" {
		t.Fatalf("grouping = %q", sheet.Rows[1]["Level 1 grouping"])
	}
}

func TestParseCSVShortRowsArePadded(t *testing.T) {
	sheet, err := Parse("tb.csv", strings.NewReader("A,B,C\n1,2"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := sheet.Rows[0]["C"]; got != "" {
		t.Fatalf("missing cell = %q, want empty", got)
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheetName := f.GetSheetName(0)
	cells := map[string]any{
		"A1": "GL Account", "B1": "Level 1 grouping", "C1": "Amount",
		"A2": "1000", "B2": "Current Assets", "C2": 1234.5,
	}
	for ref, val := range cells {
		if err := f.SetCellValue(sheetName, ref, val); err != nil {
			t.Fatalf("set cell %s: %v", ref, err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	sheet, err := Parse("tb.xlsx", &buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(sheet.Rows) != 1 {
		t.Fatalf("rows = %d", len(sheet.Rows))
	}
	if sheet.Rows[0]["GL Account"] != "1000" {
		t.Fatalf("account = %q", sheet.Rows[0]["GL Account"])
	}
	if sheet.Rows[0]["Amount"] != "1234.5" {
		t.Fatalf("amount = %q", sheet.Rows[0]["Amount"])
	}
}

func TestParseHeadersAreTrimmed(t *testing.T) {
	sheet, err := Parse("tb.csv", strings.NewReader("  GL Account ,Amount\n1000,5"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sheet.Columns[0] != "GL Account" {
		t.Fatalf("column = %q", sheet.Columns[0])
	}
	if sheet.Rows[0]["GL Account"] != "1000" {
		t.Fatalf("value keyed under %v", sheet.Rows[0])
	}
}

func TestParseUnsupportedExtension(t *testing.T) {
	_, err := Parse("tb.pdf", strings.NewReader("data"))
	if !errors.Is(err, ErrUnsupportedFile) {
		t.Fatalf("err = %v, want ErrUnsupportedFile", err)
	}
}

func TestParseEmptySheet(t *testing.T) {
	if _, err := Parse("tb.csv", strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty sheet")
	}
}
