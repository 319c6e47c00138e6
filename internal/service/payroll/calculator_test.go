package payroll

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	v := dec(s)
	return &v
}

func testSettings() payroll.Settings {
	return payroll.Settings{
		Prorate:         true,
		PFRate:          dec("0.12"),
		PFWageCeiling:   dec("15000"),
		ESIRate:         dec("0.0075"),
		ESIGrossCeiling: dec("21000"),
		PTSlabs: []payroll.PTSlab{
			{UpTo: decPtr("15000"), Amount: dec("0")},
			{UpTo: decPtr("20000"), Amount: dec("150")},
			{UpTo: nil, Amount: dec("200")},
		},
	}
}

func testSummary(working int, paid string) attendance.MonthlySummary {
	return attendance.MonthlySummary{
		EmployeeID:       "emp-1",
		Month:            time.March,
		Year:             2025,
		TotalWorkingDays: working,
		PaidDays:         dec(paid),
		UnpaidDays:       decimal.NewFromInt(int64(working)).Sub(dec(paid)),
	}
}

func TestCalculate_ProratesAndRoundsAtTheEnd(t *testing.T) {
	// Setup
	structure := payroll.SalaryStructure{
		ID:         "ss-1",
		EmployeeID: "emp-1",
		Basic:      dec("28000"),
		HRA:        dec("11200"),
		Special:    dec("8800"),
	}
	inputs := payroll.PeriodInputs{TDS: dec("1000")}

	// Act
	slip, err := Calculate(structure, testSummary(22, "20"), testSettings(), inputs)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "25454.55", slip.Earnings.Basic.StringFixed(2))
	assert.Equal(t, "10181.82", slip.Earnings.HRA.StringFixed(2))
	assert.Equal(t, "8000.00", slip.Earnings.Special.StringFixed(2))
	// Total comes from unrounded components, not from the rounded lines above.
	assert.Equal(t, "43636.36", slip.Earnings.Total.StringFixed(2))
	assert.Equal(t, "1800.00", slip.Deductions.PF.StringFixed(2))
	assert.True(t, slip.Deductions.ESI.IsZero())
	assert.Equal(t, "200.00", slip.Deductions.PT.StringFixed(2))
	assert.Equal(t, "3000.00", slip.Deductions.Total.StringFixed(2))
	assert.Equal(t, "40636.36", slip.NetPay.StringFixed(2))
	assert.Equal(t, "48000.00", slip.FullGross.StringFixed(2))
	assert.True(t, slip.Prorated)
	assert.Equal(t, "ss-1", slip.SalaryStructureID)
}

func TestCalculate_StateInsuranceBelowCeiling(t *testing.T) {
	structure := payroll.SalaryStructure{EmployeeID: "emp-1", Basic: dec("12000"), HRA: dec("4000")}

	slip, err := Calculate(structure, testSummary(22, "22"), testSettings(), payroll.PeriodInputs{})

	require.NoError(t, err)
	assert.Equal(t, "16000.00", slip.Earnings.Total.StringFixed(2))
	assert.Equal(t, "1440.00", slip.Deductions.PF.StringFixed(2))
	assert.Equal(t, "120.00", slip.Deductions.ESI.StringFixed(2))
	assert.Equal(t, "150.00", slip.Deductions.PT.StringFixed(2))
	assert.Equal(t, "14290.00", slip.NetPay.StringFixed(2))
}

func TestCalculate_ProfessionalTaxSlabBoundaryIsInclusive(t *testing.T) {
	structure := payroll.SalaryStructure{EmployeeID: "emp-1", Basic: dec("15000")}

	slip, err := Calculate(structure, testSummary(20, "20"), testSettings(), payroll.PeriodInputs{})

	require.NoError(t, err)
	assert.True(t, slip.Deductions.PT.IsZero())
}

func TestCalculate_ProrationDisabled(t *testing.T) {
	settings := testSettings()
	settings.Prorate = false
	structure := payroll.SalaryStructure{EmployeeID: "emp-1", Basic: dec("30000"), OtherEarnings: map[string]decimal.Decimal{"Night shift": dec("1500")}}

	slip, err := Calculate(structure, testSummary(22, "11"), settings, payroll.PeriodInputs{})

	require.NoError(t, err)
	assert.False(t, slip.Prorated)
	assert.Equal(t, "30000.00", slip.Earnings.Basic.StringFixed(2))
	assert.Equal(t, "1500.00", slip.Earnings.Other["Night shift"].StringFixed(2))
	assert.Equal(t, "31500.00", slip.Earnings.Total.StringFixed(2))
}

func TestCalculate_NetPayRoundsExactDifference(t *testing.T) {
	// Setup
	settings := testSettings()
	settings.Prorate = false
	settings.PFRate = decimal.Zero
	settings.ESIRate = decimal.Zero
	structure := payroll.SalaryStructure{EmployeeID: "emp-1", Basic: dec("10000.005")}
	inputs := payroll.PeriodInputs{TDS: dec("0.004")}

	// Act
	slip, err := Calculate(structure, testSummary(22, "22"), settings, inputs)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "10000.01", slip.Earnings.Total.StringFixed(2))
	assert.Equal(t, "0.00", slip.Deductions.Total.StringFixed(2))
	assert.Equal(t, "10000.00", slip.NetPay.StringFixed(2))
}

func TestCalculate_NoWorkingDaysEarnsNothing(t *testing.T) {
	structure := payroll.SalaryStructure{EmployeeID: "emp-1", Basic: dec("30000")}

	slip, err := Calculate(structure, testSummary(0, "0"), testSettings(), payroll.PeriodInputs{})

	require.NoError(t, err)
	assert.True(t, slip.Earnings.Total.IsZero())
	assert.True(t, slip.NetPay.IsZero())
}

func TestCalculate_OverridesAndFixedDeductions(t *testing.T) {
	// Setup
	settings := testSettings()
	settings.TDSOverride = decPtr("500")
	settings.LoanOverride = decPtr("250")
	settings.FixedDeductions = map[string]decimal.Decimal{"Canteen": dec("300")}
	inputs := payroll.PeriodInputs{
		TDS:             dec("1000"),
		Loan:            dec("2000"),
		OtherDeductions: map[string]decimal.Decimal{"Canteen": dec("100"), "Advance": dec("1000")},
	}
	structure := payroll.SalaryStructure{EmployeeID: "emp-1", Basic: dec("40000")}

	// Act
	slip, err := Calculate(structure, testSummary(20, "20"), settings, inputs)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "500.00", slip.Deductions.TDS.StringFixed(2))
	assert.Equal(t, "250.00", slip.Deductions.Loan.StringFixed(2))
	assert.Equal(t, "400.00", slip.Deductions.Other["Canteen"].StringFixed(2))
	assert.Equal(t, "1000.00", slip.Deductions.Other["Advance"].StringFixed(2))
	// PF 1800 + PT 200 + TDS 500 + Loan 250 + other 1400
	assert.Equal(t, "4150.00", slip.Deductions.Total.StringFixed(2))
	assert.Equal(t, "35850.00", slip.NetPay.StringFixed(2))
}

func TestCalculate_NegativeNetPayIsReported(t *testing.T) {
	structure := payroll.SalaryStructure{EmployeeID: "emp-1", Basic: dec("10000")}
	inputs := payroll.PeriodInputs{Loan: dec("5000")}

	_, err := Calculate(structure, testSummary(22, "2"), testSettings(), inputs)

	var negErr *payroll.NegativeNetPayError
	require.ErrorAs(t, err, &negErr)
	assert.Equal(t, "emp-1", negErr.EmployeeID)
	assert.Equal(t, 3, negErr.Month)
	assert.Equal(t, 2025, negErr.Year)
	assert.True(t, negErr.NetPay.IsNegative())
}

func TestCalculate_ZeroNetPayIsAllowed(t *testing.T) {
	settings := testSettings()
	settings.PFRate = decimal.Zero
	settings.ESIRate = decimal.Zero
	structure := payroll.SalaryStructure{EmployeeID: "emp-1", Basic: dec("1000")}

	slip, err := Calculate(structure, testSummary(20, "20"), settings, payroll.PeriodInputs{Loan: dec("1000")})

	require.NoError(t, err)
	assert.True(t, slip.NetPay.IsZero())
}
