package payroll

import (
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// Calculate produces a payslip from a salary structure, a month summary and typed settings.
// Every intermediate amount keeps full precision; amounts are rounded to two places only
// when the payslip is finalized, and net pay comes from the unrounded totals.
func Calculate(structure payroll.SalaryStructure, summary attendance.MonthlySummary, settings payroll.Settings, inputs payroll.PeriodInputs) (payroll.Payslip, error) {
	slip := payroll.Payslip{
		EmployeeID:        structure.EmployeeID,
		Month:             int(summary.Month),
		Year:              summary.Year,
		SalaryStructureID: structure.ID,
		TotalWorkingDays:  summary.TotalWorkingDays,
		PaidDays:          summary.PaidDays,
		UnpaidDays:        summary.UnpaidDays,
		Prorated:          settings.Prorate,
		FullGross:         structure.Gross(),
	}

	scale := func(amount decimal.Decimal) decimal.Decimal { return amount }
	if settings.Prorate {
		if summary.TotalWorkingDays <= 0 {
			scale = func(decimal.Decimal) decimal.Decimal { return decimal.Zero }
		} else {
			working := decimal.NewFromInt(int64(summary.TotalWorkingDays))
			scale = func(amount decimal.Decimal) decimal.Decimal {
				return amount.Mul(summary.PaidDays).Div(working)
			}
		}
	}

	e := payroll.Earnings{
		Basic:      scale(structure.Basic),
		HRA:        scale(structure.HRA),
		Conveyance: scale(structure.Conveyance),
		Medical:    scale(structure.Medical),
		Special:    scale(structure.Special),
		LTA:        scale(structure.LTA),
		Other:      make(map[string]decimal.Decimal, len(structure.OtherEarnings)),
	}
	e.Total = e.Basic.Add(e.HRA).Add(e.Conveyance).Add(e.Medical).Add(e.Special).Add(e.LTA)
	for label, amount := range structure.OtherEarnings {
		scaled := scale(amount)
		e.Other[label] = scaled
		e.Total = e.Total.Add(scaled)
	}

	d := payroll.Deductions{
		PF:    providentFund(e.Basic, settings),
		ESI:   stateInsurance(e.Total, settings),
		PT:    professionalTax(e.Total, settings.PTSlabs),
		TDS:   inputs.TDS,
		Loan:  inputs.Loan,
		Other: make(map[string]decimal.Decimal),
	}
	if settings.TDSOverride != nil {
		d.TDS = *settings.TDSOverride
	}
	if settings.LoanOverride != nil {
		d.Loan = *settings.LoanOverride
	}
	for label, amount := range settings.FixedDeductions {
		d.Other[label] = amount
	}
	for label, amount := range inputs.OtherDeductions {
		d.Other[label] = d.Other[label].Add(amount)
	}
	d.Total = d.PF.Add(d.ESI).Add(d.PT).Add(d.TDS).Add(d.Loan)
	for _, amount := range d.Other {
		d.Total = d.Total.Add(amount)
	}

	net := e.Total.Sub(d.Total)
	if net.IsNegative() {
		return payroll.Payslip{}, &payroll.NegativeNetPayError{
			EmployeeID: structure.EmployeeID,
			Month:      int(summary.Month),
			Year:       summary.Year,
			NetPay:     net,
		}
	}

	// NetPay rounds the exact difference, not the difference of the rounded totals.
	slip.Earnings = roundEarnings(e)
	slip.Deductions = roundDeductions(d)
	slip.FullGross = slip.FullGross.Round(2)
	slip.NetPay = net.Round(2)
	return slip, nil
}

// providentFund is rate x min(earned basic, wage ceiling).
func providentFund(earnedBasic decimal.Decimal, s payroll.Settings) decimal.Decimal {
	return s.PFRate.Mul(decimal.Min(earnedBasic, s.PFWageCeiling))
}

// stateInsurance applies only while gross stays within the eligibility ceiling.
func stateInsurance(gross decimal.Decimal, s payroll.Settings) decimal.Decimal {
	if gross.GreaterThan(s.ESIGrossCeiling) {
		return decimal.Zero
	}
	return s.ESIRate.Mul(gross)
}

// professionalTax returns the amount of the first slab whose bound covers gross.
func professionalTax(gross decimal.Decimal, slabs []payroll.PTSlab) decimal.Decimal {
	for _, slab := range slabs {
		if slab.UpTo == nil || gross.LessThanOrEqual(*slab.UpTo) {
			return slab.Amount
		}
	}
	return decimal.Zero
}

func roundEarnings(e payroll.Earnings) payroll.Earnings {
	other := make(map[string]decimal.Decimal, len(e.Other))
	for k, v := range e.Other {
		other[k] = v.Round(2)
	}
	return payroll.Earnings{
		Basic:      e.Basic.Round(2),
		HRA:        e.HRA.Round(2),
		Conveyance: e.Conveyance.Round(2),
		Medical:    e.Medical.Round(2),
		Special:    e.Special.Round(2),
		LTA:        e.LTA.Round(2),
		Other:      other,
		Total:      e.Total.Round(2),
	}
}

func roundDeductions(d payroll.Deductions) payroll.Deductions {
	other := make(map[string]decimal.Decimal, len(d.Other))
	for k, v := range d.Other {
		other[k] = v.Round(2)
	}
	return payroll.Deductions{
		PF:    d.PF.Round(2),
		ESI:   d.ESI.Round(2),
		PT:    d.PT.Round(2),
		TDS:   d.TDS.Round(2),
		Loan:  d.Loan.Round(2),
		Other: other,
		Total: d.Total.Round(2),
	}
}
