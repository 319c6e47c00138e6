package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ========== SALARY STRUCTURES ==========

type salaryStructureRepositoryImpl struct {
	db *database.DB
}

func NewSalaryStructureRepository(db *database.DB) payroll.SalaryStructureRepository {
	return &salaryStructureRepositoryImpl{db: db}
}

const salaryStructureColumns = `id, employee_id, effective_date, basic, hra, conveyance, medical, special, lta, other_earnings, created_at`

func scanSalaryStructure(row pgx.Row) (payroll.SalaryStructure, error) {
	var s payroll.SalaryStructure
	var otherBytes []byte
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.EffectiveDate,
		&s.Basic, &s.HRA, &s.Conveyance, &s.Medical, &s.Special, &s.LTA,
		&otherBytes, &s.CreatedAt,
	)
	if err != nil {
		return payroll.SalaryStructure{}, err
	}
	if err := unmarshalAmounts(otherBytes, &s.OtherEarnings); err != nil {
		return payroll.SalaryStructure{}, fmt.Errorf("decode other_earnings: %w", err)
	}
	return s, nil
}

func (r *salaryStructureRepositoryImpl) Create(ctx context.Context, s payroll.SalaryStructure) (payroll.SalaryStructure, error) {
	q := GetQuerier(ctx, r.db)

	otherJSON, err := marshalAmounts(s.OtherEarnings)
	if err != nil {
		return payroll.SalaryStructure{}, err
	}

	query := `
		INSERT INTO salary_structures (
			id, employee_id, effective_date, basic, hra, conveyance, medical, special, lta, other_earnings, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + salaryStructureColumns

	created, err := scanSalaryStructure(q.QueryRow(ctx, query,
		s.ID, s.EmployeeID, s.EffectiveDate, s.Basic, s.HRA, s.Conveyance, s.Medical, s.Special, s.LTA,
		otherJSON, s.CreatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return payroll.SalaryStructure{}, payroll.ErrSalaryStructureExists
		}
		if isForeignKeyViolation(err) {
			return payroll.SalaryStructure{}, payroll.ErrEmployeeNotFound
		}
		return payroll.SalaryStructure{}, fmt.Errorf("failed to insert salary structure: %w", err)
	}
	return created, nil
}

func (r *salaryStructureRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string) ([]payroll.SalaryStructure, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + salaryStructureColumns + `
		FROM salary_structures
		WHERE employee_id = $1
		ORDER BY effective_date DESC
	`
	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		if isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list salary structures: %w", err)
	}
	defer rows.Close()

	var structures []payroll.SalaryStructure
	for rows.Next() {
		s, err := scanSalaryStructure(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary structure: %w", err)
		}
		structures = append(structures, s)
	}
	return structures, rows.Err()
}

func (r *salaryStructureRepositoryImpl) GetEffective(ctx context.Context, employeeID string, asOf time.Time) (payroll.SalaryStructure, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + salaryStructureColumns + `
		FROM salary_structures
		WHERE employee_id = $1 AND effective_date <= $2
		ORDER BY effective_date DESC
		LIMIT 1
	`
	s, err := scanSalaryStructure(q.QueryRow(ctx, query, employeeID, asOf))
	if err != nil {
		if isNotFound(err) {
			return payroll.SalaryStructure{}, payroll.ErrSalaryStructureNotFound
		}
		return payroll.SalaryStructure{}, fmt.Errorf("failed to get effective salary structure: %w", err)
	}
	return s, nil
}

// ========== SETTINGS ==========

type settingRepositoryImpl struct {
	db *database.DB
}

func NewSettingRepository(db *database.DB) payroll.SettingRepository {
	return &settingRepositoryImpl{db: db}
}

func (r *settingRepositoryImpl) List(ctx context.Context) ([]payroll.Setting, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT name, value, description, updated_at FROM payroll_settings ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll settings: %w", err)
	}
	defer rows.Close()

	var settings []payroll.Setting
	for rows.Next() {
		var s payroll.Setting
		if err := rows.Scan(&s.Name, &s.Value, &s.Description, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payroll setting: %w", err)
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

func (r *settingRepositoryImpl) Upsert(ctx context.Context, s payroll.Setting) (payroll.Setting, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_settings (name, value, description, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (name) DO UPDATE SET
			value = EXCLUDED.value,
			description = COALESCE(EXCLUDED.description, payroll_settings.description),
			updated_at = NOW()
		RETURNING name, value, description, updated_at
	`
	var saved payroll.Setting
	err := q.QueryRow(ctx, query, s.Name, s.Value, s.Description).Scan(&saved.Name, &saved.Value, &saved.Description, &saved.UpdatedAt)
	if err != nil {
		return payroll.Setting{}, fmt.Errorf("failed to upsert payroll setting: %w", err)
	}
	return saved, nil
}

// ========== PERIOD INPUTS ==========

type periodInputRepositoryImpl struct {
	db *database.DB
}

func NewPeriodInputRepository(db *database.DB) payroll.PeriodInputRepository {
	return &periodInputRepositoryImpl{db: db}
}

func (r *periodInputRepositoryImpl) Upsert(ctx context.Context, in payroll.PeriodInputs) (payroll.PeriodInputs, error) {
	q := GetQuerier(ctx, r.db)

	otherJSON, err := marshalAmounts(in.OtherDeductions)
	if err != nil {
		return payroll.PeriodInputs{}, err
	}

	query := `
		INSERT INTO payroll_inputs (employee_id, month, year, tds, loan, other_deductions, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (employee_id, month, year) DO UPDATE SET
			tds = EXCLUDED.tds,
			loan = EXCLUDED.loan,
			other_deductions = EXCLUDED.other_deductions,
			updated_at = NOW()
		RETURNING updated_at
	`
	if err := q.QueryRow(ctx, query, in.EmployeeID, in.Month, in.Year, in.TDS, in.Loan, otherJSON).Scan(&in.UpdatedAt); err != nil {
		if isForeignKeyViolation(err) {
			return payroll.PeriodInputs{}, payroll.ErrEmployeeNotFound
		}
		return payroll.PeriodInputs{}, fmt.Errorf("failed to upsert payroll inputs: %w", err)
	}
	return in, nil
}

func (r *periodInputRepositoryImpl) Get(ctx context.Context, employeeID string, month, year int) (payroll.PeriodInputs, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, month, year, tds, loan, other_deductions, updated_at
		FROM payroll_inputs
		WHERE employee_id = $1 AND month = $2 AND year = $3
	`
	var in payroll.PeriodInputs
	var otherBytes []byte
	err := q.QueryRow(ctx, query, employeeID, month, year).Scan(
		&in.EmployeeID, &in.Month, &in.Year, &in.TDS, &in.Loan, &otherBytes, &in.UpdatedAt,
	)
	if err != nil {
		if isNotFound(err) {
			return payroll.PeriodInputs{}, payroll.ErrPeriodInputsNotFound
		}
		return payroll.PeriodInputs{}, fmt.Errorf("failed to get payroll inputs: %w", err)
	}
	if err := unmarshalAmounts(otherBytes, &in.OtherDeductions); err != nil {
		return payroll.PeriodInputs{}, fmt.Errorf("decode other_deductions: %w", err)
	}
	return in, nil
}

// ========== PAYSLIPS ==========

type payslipRepositoryImpl struct {
	db *database.DB
}

func NewPayslipRepository(db *database.DB) payroll.PayslipRepository {
	return &payslipRepositoryImpl{db: db}
}

type earningsDoc struct {
	Basic      decimal.Decimal            `json:"basic"`
	HRA        decimal.Decimal            `json:"hra"`
	Conveyance decimal.Decimal            `json:"conveyance"`
	Medical    decimal.Decimal            `json:"medical"`
	Special    decimal.Decimal            `json:"special"`
	LTA        decimal.Decimal            `json:"lta"`
	Other      map[string]decimal.Decimal `json:"other"`
}

type deductionsDoc struct {
	PF    decimal.Decimal            `json:"pf"`
	ESI   decimal.Decimal            `json:"esi"`
	PT    decimal.Decimal            `json:"pt"`
	TDS   decimal.Decimal            `json:"tds"`
	Loan  decimal.Decimal            `json:"loan"`
	Other map[string]decimal.Decimal `json:"other"`
}

const payslipColumns = `
	p.id, p.employee_id, p.month, p.year, p.salary_structure_id,
	p.total_working_days, p.paid_days, p.unpaid_days, p.prorated, p.full_gross,
	p.earnings, p.deductions, p.gross_earnings, p.total_deductions, p.net_pay,
	p.generated_at, p.created_at, p.updated_at,
	e.full_name, e.employee_code`

func scanPayslip(row pgx.Row) (payroll.Payslip, error) {
	var p payroll.Payslip
	var earningsBytes, deductionsBytes []byte
	err := row.Scan(
		&p.ID, &p.EmployeeID, &p.Month, &p.Year, &p.SalaryStructureID,
		&p.TotalWorkingDays, &p.PaidDays, &p.UnpaidDays, &p.Prorated, &p.FullGross,
		&earningsBytes, &deductionsBytes, &p.Earnings.Total, &p.Deductions.Total, &p.NetPay,
		&p.GeneratedAt, &p.CreatedAt, &p.UpdatedAt,
		&p.EmployeeName, &p.EmployeeCode,
	)
	if err != nil {
		return payroll.Payslip{}, err
	}

	var e earningsDoc
	if err := json.Unmarshal(earningsBytes, &e); err != nil {
		return payroll.Payslip{}, fmt.Errorf("decode earnings: %w", err)
	}
	var d deductionsDoc
	if err := json.Unmarshal(deductionsBytes, &d); err != nil {
		return payroll.Payslip{}, fmt.Errorf("decode deductions: %w", err)
	}

	p.Earnings = payroll.Earnings{
		Basic: e.Basic, HRA: e.HRA, Conveyance: e.Conveyance, Medical: e.Medical,
		Special: e.Special, LTA: e.LTA, Other: e.Other, Total: p.Earnings.Total,
	}
	p.Deductions = payroll.Deductions{
		PF: d.PF, ESI: d.ESI, PT: d.PT, TDS: d.TDS, Loan: d.Loan, Other: d.Other, Total: p.Deductions.Total,
	}
	return p, nil
}

func payslipDocs(p payroll.Payslip) ([]byte, []byte, error) {
	earningsJSON, err := json.Marshal(earningsDoc{
		Basic: p.Earnings.Basic, HRA: p.Earnings.HRA, Conveyance: p.Earnings.Conveyance,
		Medical: p.Earnings.Medical, Special: p.Earnings.Special, LTA: p.Earnings.LTA,
		Other: p.Earnings.Other,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("encode earnings: %w", err)
	}
	deductionsJSON, err := json.Marshal(deductionsDoc{
		PF: p.Deductions.PF, ESI: p.Deductions.ESI, PT: p.Deductions.PT,
		TDS: p.Deductions.TDS, Loan: p.Deductions.Loan, Other: p.Deductions.Other,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("encode deductions: %w", err)
	}
	return earningsJSON, deductionsJSON, nil
}

func (r *payslipRepositoryImpl) Create(ctx context.Context, p payroll.Payslip) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	earningsJSON, deductionsJSON, err := payslipDocs(p)
	if err != nil {
		return payroll.Payslip{}, err
	}

	query := `
		INSERT INTO payslips (
			id, employee_id, month, year, salary_structure_id,
			total_working_days, paid_days, unpaid_days, prorated, full_gross,
			earnings, deductions, gross_earnings, total_deductions, net_pay,
			generated_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
	`
	_, err = q.Exec(ctx, query,
		p.ID, p.EmployeeID, p.Month, p.Year, p.SalaryStructureID,
		p.TotalWorkingDays, p.PaidDays, p.UnpaidDays, p.Prorated, p.FullGross,
		earningsJSON, deductionsJSON, p.Earnings.Total, p.Deductions.Total, p.NetPay,
		p.GeneratedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return payroll.Payslip{}, payroll.ErrPayslipAlreadyExists
		}
		return payroll.Payslip{}, fmt.Errorf("failed to insert payslip: %w", err)
	}
	return r.GetByID(ctx, p.ID)
}

func (r *payslipRepositoryImpl) Replace(ctx context.Context, p payroll.Payslip) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	earningsJSON, deductionsJSON, err := payslipDocs(p)
	if err != nil {
		return payroll.Payslip{}, err
	}

	query := `
		UPDATE payslips SET
			salary_structure_id = $1, total_working_days = $2, paid_days = $3, unpaid_days = $4,
			prorated = $5, full_gross = $6, earnings = $7, deductions = $8,
			gross_earnings = $9, total_deductions = $10, net_pay = $11,
			generated_at = $12, updated_at = NOW()
		WHERE id = $13 AND employee_id = $14 AND month = $15 AND year = $16
	`
	tag, err := q.Exec(ctx, query,
		p.SalaryStructureID, p.TotalWorkingDays, p.PaidDays, p.UnpaidDays,
		p.Prorated, p.FullGross, earningsJSON, deductionsJSON,
		p.Earnings.Total, p.Deductions.Total, p.NetPay,
		p.GeneratedAt, p.ID, p.EmployeeID, p.Month, p.Year,
	)
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to replace payslip: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	return r.GetByID(ctx, p.ID)
}

func (r *payslipRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payslipColumns + `
		FROM payslips p
		JOIN employees e ON e.id = p.employee_id
		WHERE p.id = $1
	`
	p, err := scanPayslip(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip %s: %w", id, err)
	}
	return p, nil
}

func (r *payslipRepositoryImpl) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payslipColumns + `
		FROM payslips p
		JOIN employees e ON e.id = p.employee_id
		WHERE p.employee_id = $1 AND p.month = $2 AND p.year = $3
		FOR UPDATE OF p
	`
	p, err := scanPayslip(q.QueryRow(ctx, query, employeeID, month, year))
	if err != nil {
		if isNotFound(err) {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}
	return p, nil
}

func (r *payslipRepositoryImpl) List(ctx context.Context, filter payroll.PayslipFilter) ([]payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.Month != nil {
		whereClause += fmt.Sprintf(" AND p.month = $%d", argIndex)
		args = append(args, *filter.Month)
		argIndex++
	}
	if filter.Year != nil {
		whereClause += fmt.Sprintf(" AND p.year = $%d", argIndex)
		args = append(args, *filter.Year)
		argIndex++
	}
	if filter.EmployeeID != nil {
		whereClause += fmt.Sprintf(" AND p.employee_id = $%d", argIndex)
		args = append(args, *filter.EmployeeID)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM payslips p
		JOIN employees e ON e.id = p.employee_id
		%s
		ORDER BY p.year DESC, p.month DESC, e.employee_code
	`, payslipColumns, whereClause)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		if isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	var payslips []payroll.Payslip
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payslip: %w", err)
		}
		payslips = append(payslips, p)
	}
	return payslips, rows.Err()
}

// IsPeriodFinalized implements attendance.FinalizationChecker.
func (r *payslipRepositoryImpl) IsPeriodFinalized(ctx context.Context, employeeID string, month, year int) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM payslips WHERE employee_id = $1 AND month = $2 AND year = $3)`
	if err := q.QueryRow(ctx, query, employeeID, month, year).Scan(&exists); err != nil {
		if isInvalidText(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check payslip existence: %w", err)
	}
	return exists, nil
}

func marshalAmounts(m map[string]decimal.Decimal) ([]byte, error) {
	if m == nil {
		m = map[string]decimal.Decimal{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode amounts: %w", err)
	}
	return b, nil
}

func unmarshalAmounts(b []byte, dst *map[string]decimal.Decimal) error {
	if len(b) == 0 {
		*dst = map[string]decimal.Decimal{}
		return nil
	}
	return json.Unmarshal(b, dst)
}
