package payroll

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

type pdfLine struct {
	label  string
	amount decimal.Decimal
}

// RenderPayslip draws a one-page A4 payslip in memory.
func RenderPayslip(slip payroll.Payslip, currency string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Payslip %04d-%02d", slip.Year, slip.Month), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	employeeLine := slip.EmployeeID
	if slip.EmployeeName != nil {
		employeeLine = *slip.EmployeeName
		if slip.EmployeeCode != nil {
			employeeLine = fmt.Sprintf("%s (%s)", *slip.EmployeeName, *slip.EmployeeCode)
		}
	}
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s", employeeLine))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s %d", time.Month(slip.Month).String(), slip.Year))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Working days: %d  Paid days: %s  Unpaid days: %s",
		slip.TotalWorkingDays, slip.PaidDays.String(), slip.UnpaidDays.String()))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Full gross: %s %s", slip.FullGross.StringFixed(2), currency))
	pdf.Ln(10)

	earnings := []pdfLine{
		{"Basic", slip.Earnings.Basic},
		{"HRA", slip.Earnings.HRA},
		{"Conveyance", slip.Earnings.Conveyance},
		{"Medical", slip.Earnings.Medical},
		{"Special allowance", slip.Earnings.Special},
		{"LTA", slip.Earnings.LTA},
	}
	earnings = append(earnings, sortedLines(slip.Earnings.Other)...)

	deductions := []pdfLine{
		{"Provident fund", slip.Deductions.PF},
		{"State insurance", slip.Deductions.ESI},
		{"Professional tax", slip.Deductions.PT},
		{"Tax at source", slip.Deductions.TDS},
		{"Loan", slip.Deductions.Loan},
	}
	deductions = append(deductions, sortedLines(slip.Deductions.Other)...)

	drawSection(pdf, "Earnings", earnings, slip.Earnings.Total, currency)
	pdf.Ln(4)
	drawSection(pdf, "Deductions", deductions, slip.Deductions.Total, currency)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(120, 8, "Net pay", "T", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, fmt.Sprintf("%s %s", slip.NetPay.StringFixed(2), currency), "T", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "I", 8)
	pdf.Ln(4)
	pdf.Cell(0, 5, fmt.Sprintf("Generated %s", slip.GeneratedAt.UTC().Format(time.RFC3339)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render payslip: %w", err)
	}
	return buf.Bytes(), nil
}

func drawSection(pdf *gofpdf.Fpdf, title string, lines []pdfLine, total decimal.Decimal, currency string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(180, 8, title, "B", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, l := range lines {
		pdf.CellFormat(120, 7, l.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, l.amount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(120, 7, "Total "+title, "T", 0, "L", false, 0, "")
	pdf.CellFormat(60, 7, fmt.Sprintf("%s %s", total.StringFixed(2), currency), "T", 1, "R", false, 0, "")
}

func sortedLines(m map[string]decimal.Decimal) []pdfLine {
	labels := make([]string, 0, len(m))
	for k := range m {
		labels = append(labels, k)
	}
	sort.Strings(labels)

	lines := make([]pdfLine, 0, len(labels))
	for _, k := range labels {
		lines = append(lines, pdfLine{label: k, amount: m[k]})
	}
	return lines
}
