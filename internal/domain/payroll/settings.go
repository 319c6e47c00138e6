package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Setting is the stored, string-valued form. Values are interpreted per name through SettingSpecs.
type Setting struct {
	Name        string
	Value       string
	Description *string
	UpdatedAt   time.Time
}

type SettingKind string

const (
	KindNumber  SettingKind = "number"
	KindBool    SettingKind = "bool"
	KindSlabs   SettingKind = "slabs"
	KindAmounts SettingKind = "amounts"
	KindString  SettingKind = "string"
)

const (
	SettingProrate         = "payroll.prorate"
	SettingPFRate          = "pf.rate"
	SettingPFWageCeiling   = "pf.wage_ceiling"
	SettingESIRate         = "esi.rate"
	SettingESIGrossCeiling = "esi.gross_ceiling"
	SettingPTSlabs         = "pt.slabs"
	SettingTDSAmount       = "tds.amount"
	SettingLoanAmount      = "loan.amount"
	SettingFixedDeductions = "deductions.fixed"
)

type SettingSpec struct {
	Kind        SettingKind
	Required    bool
	Description string
}

// SettingSpecs declares every setting the calculator reads. Names not listed are stored as strings.
var SettingSpecs = map[string]SettingSpec{
	SettingProrate:         {Kind: KindBool, Description: "Scale earnings by paid days over working days. Enabled when absent."},
	SettingPFRate:          {Kind: KindNumber, Required: true, Description: "Provident fund rate as a fraction of earned basic, e.g. 0.12"},
	SettingPFWageCeiling:   {Kind: KindNumber, Required: true, Description: "Earned basic above this amount does not attract provident fund"},
	SettingESIRate:         {Kind: KindNumber, Required: true, Description: "State insurance rate as a fraction of gross, e.g. 0.0075"},
	SettingESIGrossCeiling: {Kind: KindNumber, Required: true, Description: "Gross above this amount is not eligible for state insurance"},
	SettingPTSlabs:         {Kind: KindSlabs, Required: true, Description: `Professional tax slabs on gross: [{"upto": 15000, "amount": 0}, {"upto": null, "amount": 200}]`},
	SettingTDSAmount:       {Kind: KindNumber, Description: "Overrides every employee's tax-at-source input when set"},
	SettingLoanAmount:      {Kind: KindNumber, Description: "Overrides every employee's loan deduction input when set"},
	SettingFixedDeductions: {Kind: KindAmounts, Description: `Company-wide deductions added to every payslip: {"Canteen": 300}`},
}

// PTSlab applies Amount to gross up to and including UpTo. A nil UpTo is the open top slab.
type PTSlab struct {
	UpTo   *decimal.Decimal `json:"upto"`
	Amount decimal.Decimal  `json:"amount"`
}

// SettingValue is a setting parsed against its declared kind.
type SettingValue struct {
	Kind    SettingKind
	Number  decimal.Decimal
	Bool    bool
	Slabs   []PTSlab
	Amounts map[string]decimal.Decimal
	Text    string
}

// Settings is the typed view the calculator works from.
type Settings struct {
	Prorate         bool
	PFRate          decimal.Decimal
	PFWageCeiling   decimal.Decimal
	ESIRate         decimal.Decimal
	ESIGrossCeiling decimal.Decimal
	PTSlabs         []PTSlab
	TDSOverride     *decimal.Decimal
	LoanOverride    *decimal.Decimal
	FixedDeductions map[string]decimal.Decimal
}
