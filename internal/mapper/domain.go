// Package mapper maps uploaded trial balance columns onto the canonical schema
// and normalizes raw rows into period-keyed records.
package mapper

import (
	"time"
)

// Field identifies one canonical trial balance column.
type Field string

const (
	FieldGLAccount      Field = "GL Account"
	FieldGLDescription  Field = "GL Description"
	FieldAccountType    Field = "Account Type"
	FieldLevel1         Field = "Level 1 Desc"
	FieldLevel2         Field = "Level 2 Desc"
	FieldFunctionalArea Field = "Functional Area"
	FieldAmountCurrent  Field = "Amount Current"
	FieldAmountPrevious Field = "Amount Previous"
)

// Fields lists the canonical columns in display order.
var Fields = []Field{
	FieldGLAccount,
	FieldGLDescription,
	FieldAccountType,
	FieldLevel1,
	FieldLevel2,
	FieldFunctionalArea,
	FieldAmountCurrent,
	FieldAmountPrevious,
}

// requiredFields must be mapped before confirmation.
var requiredFields = []Field{FieldLevel1, FieldLevel2, FieldAmountCurrent}

// fieldAliases holds, per field, the ordered acceptable source column names.
// The first alias of each field is the canonical name itself, which makes
// auto-mapping idempotent over its own output. Earlier aliases win ties.
var fieldAliases = map[Field][]string{
	FieldGLAccount: {
		"GL Account", "Account Code", "GL Code", "Account Number", "Account No", "Account",
	},
	FieldGLDescription: {
		"GL Description", "GL Name", "Account Name", "Account Description", "Name", "Description",
	},
	FieldAccountType: {
		"Account Type", "Nature", "Type", "Account Nature",
	},
	FieldLevel1: {
		"Level 1 Desc", "Level 1 Grouping", "Level 1", "Grouping Level 1", "Group 1",
	},
	FieldLevel2: {
		"Level 2 Desc", "Level 2 Grouping", "Level 2", "Grouping Level 2", "Group 2",
	},
	FieldFunctionalArea: {
		"Functional Area", "Target Grouping", "Function", "Functional Grouping",
	},
	FieldAmountCurrent: {
		"Amount Current", "Current Amount", "Current Year", "Amount", "Balance", "Closing Balance",
	},
	FieldAmountPrevious: {
		"Amount Previous", "Previous Amount", "Previous Year", "Prior Year", "Amount", "Balance",
	},
}

// PeriodType enumerates the reporting period kinds a mapped amount can carry.
type PeriodType string

const (
	PeriodFinancialYear   PeriodType = "Financial Year Ended (FYE)"
	PeriodFinancialPeriod PeriodType = "Financial Period Ended (FPE)"
	PeriodQuarter         PeriodType = "Quarter Ended (QE)"
	PeriodMonth           PeriodType = "Month Ended (ME)"
)

// PeriodTypes lists the selectable period kinds.
var PeriodTypes = []PeriodType{
	PeriodFinancialYear,
	PeriodFinancialPeriod,
	PeriodQuarter,
	PeriodMonth,
}

// Valid reports whether the period type is one of the enumerated values.
func (p PeriodType) Valid() bool {
	switch p {
	case PeriodFinancialYear, PeriodFinancialPeriod, PeriodQuarter, PeriodMonth:
		return true
	}
	return false
}

// PeriodSpec pairs a period type with its end date for amount key synthesis.
type PeriodSpec struct {
	Type PeriodType `json:"periodType"`
	Date time.Time  `json:"date"`
}

// CurrentKey synthesizes the amount key for the uploaded period.
func (p PeriodSpec) CurrentKey() string {
	return string(p.Type) + " " + p.Date.Format("2006-01-02")
}

// PreviousKey synthesizes the amount key one year before the uploaded period.
func (p PeriodSpec) PreviousKey() string {
	return string(p.Type) + " " + p.Date.AddDate(-1, 0, 0).Format("2006-01-02")
}

// Mapping assigns a source column to each canonical field. An empty value
// means the field is skipped.
type Mapping map[Field]string

// MappedRow is one normalized trial balance row. Amounts are keyed by the
// synthesized period labels rather than dynamic struct fields.
type MappedRow struct {
	GLAccount      string             `json:"glAccount"`
	GLDescription  string             `json:"glName"`
	AccountType    string             `json:"accountType"`
	Level1         string             `json:"level1Desc"`
	Level2         string             `json:"level2Desc"`
	FunctionalArea string             `json:"functionalArea"`
	Amounts        map[string]float64 `json:"amounts"`
}
