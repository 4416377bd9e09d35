// Package journal composes period-keyed debit/credit adjustments and posts
// them to the backend as a single batch.
package journal

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/statement-workbench/statement-workbench/internal/backend"
)

// Side is the transaction type of an adjustment row.
type Side string

const (
	SideDebit  Side = "Debit"
	SideCredit Side = "Credit"
)

// Valid reports whether the side is Debit or Credit.
func (s Side) Valid() bool {
	return s == SideDebit || s == SideCredit
}

// Row is one adjustment entry under composition. Amounts map period labels to
// raw input values; blanks are allowed and skipped at posting time.
type Row struct {
	ID        string            `json:"id"`
	GLAccount *string           `json:"selectedGlAccount"`
	Side      Side              `json:"transactionType"`
	Amounts   map[string]string `json:"amounts"`
}

// NewRow returns an empty debit row with a client-generated identifier.
func NewRow() Row {
	return Row{
		ID:      uuid.NewString(),
		Side:    SideDebit,
		Amounts: make(map[string]string),
	}
}

// Clone returns a deep copy of the row. Responses must not share the stored
// Amounts map with the workspace.
func (r Row) Clone() Row {
	out := r
	if r.GLAccount != nil {
		account := *r.GLAccount
		out.GLAccount = &account
	}
	if r.Amounts != nil {
		out.Amounts = make(map[string]string, len(r.Amounts))
		for k, v := range r.Amounts {
			out.Amounts[k] = v
		}
	}
	return out
}

// CloneRows deep-copies a row slice.
func CloneRows(rows []Row) []Row {
	if rows == nil {
		return nil
	}
	out := make([]Row, len(rows))
	for i, row := range rows {
		out[i] = row.Clone()
	}
	return out
}

// Status tracks where the journal page is in its posting lifecycle.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusPosting Status = "posting"
)

// AddPeriod prepends a chosen period to the selection. The selection stays an
// ordered, de-duplicated subset of the fetched periods; the newest choice
// lands on the left.
func AddPeriod(selected []string, chosen string, fetched []string) []string {
	valid := false
	for _, p := range fetched {
		if p == chosen {
			valid = true
			break
		}
	}
	if !valid {
		return selected
	}
	for _, p := range selected {
		if p == chosen {
			return selected
		}
	}
	return append([]string{chosen}, selected...)
}

// BuildBatch converts every row/period combination carrying a numeric amount
// into a signed entry. Rows without a selected GL account are silently
// skipped; Credit rows negate the magnitude, Debit rows keep the value as
// entered. Order is deterministic: row order crossed with period order.
func BuildBatch(rows []Row, periods []string) []backend.BatchEntry {
	var batch []backend.BatchEntry
	for _, row := range rows {
		if row.GLAccount == nil || strings.TrimSpace(*row.GLAccount) == "" {
			continue
		}
		for _, period := range periods {
			raw, ok := row.Amounts[period]
			if !ok {
				continue
			}
			value, ok := parseAmount(raw)
			if !ok {
				continue
			}
			if row.Side == SideCredit {
				value, _ = decimal.NewFromFloat(value).Abs().Neg().Float64()
			}
			batch = append(batch, backend.BatchEntry{
				GLAccount: *row.GLAccount,
				Period:    period,
				Value:     value,
			})
		}
	}
	return batch
}

// parseAmount accepts only finite numeric input; blanks and garbage are
// skipped rather than rejected.
func parseAmount(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
