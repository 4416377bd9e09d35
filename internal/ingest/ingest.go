// Package ingest parses uploaded trial balance spreadsheets into header-keyed records.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFile is returned for file extensions other than xlsx, xls and csv.
var ErrUnsupportedFile = errors.New("unsupported file type")

// Sheet is the parsed first worksheet of an upload.
type Sheet struct {
	Columns []string
	Rows    []Record
}

// Record is one data row keyed by header cell. Blank cells are empty strings.
type Record map[string]string

// Parse reads the named upload and returns its first sheet. Only the first
// worksheet is considered; every record carries all header keys.
func Parse(filename string, r io.Reader) (Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Sheet{}, fmt.Errorf("read upload: %w", err)
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return parseXLSX(data)
	case ".xls":
		return parseXLS(data)
	case ".csv":
		return parseCSV(data)
	default:
		return Sheet{}, ErrUnsupportedFile
	}
}

func parseXLSX(data []byte) (Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Sheet{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return Sheet{}, errors.New("xlsx has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return Sheet{}, fmt.Errorf("read xlsx rows: %w", err)
	}
	return fromGrid(rows)
}

func parseXLS(data []byte) (Sheet, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return Sheet{}, fmt.Errorf("open xls: %w", err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return Sheet{}, errors.New("xls has no sheets")
	}
	var grid [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		var cells []string
		for j := 0; j < row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		grid = append(grid, cells)
	}
	return fromGrid(grid)
}

func parseCSV(data []byte) (Sheet, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	grid, err := reader.ReadAll()
	if err != nil {
		return Sheet{}, fmt.Errorf("read csv: %w", err)
	}
	return fromGrid(grid)
}

// fromGrid keys each data row by the header row. Rows that are entirely blank
// are dropped; short rows are padded with empty strings.
func fromGrid(grid [][]string) (Sheet, error) {
	if len(grid) == 0 {
		return Sheet{}, errors.New("sheet is empty")
	}
	var columns []string
	for _, h := range grid[0] {
		columns = append(columns, strings.TrimSpace(h))
	}
	sheet := Sheet{Columns: columns}
	for _, raw := range grid[1:] {
		rec := make(Record, len(columns))
		blank := true
		for i, col := range columns {
			if col == "" {
				continue
			}
			val := ""
			if i < len(raw) {
				val = strings.TrimSpace(raw[i])
			}
			if val != "" {
				blank = false
			}
			rec[col] = val
		}
		if blank {
			continue
		}
		sheet.Rows = append(sheet.Rows, rec)
	}
	return sheet, nil
}
