package payroll

import (
	"context"
	"database/sql"
	"time"

	"github.com/RushikJoshi/GT-HRMS-sub007/internal/shared/connection"
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RunEmployee is the narrow employee projection a run calculates over. The
// designation and department names are resolved at read time and frozen into
// the payslip snapshot.
type RunEmployee struct {
	ID           uuid.UUID
	EmployeeCode string
	FullName     string
	JoinDate     *time.Time
	Designation  string
	Department   string
}

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	CreateRun(ctx context.Context, run *PayrollRun) error
	FindRunByIDAndCompany(ctx context.Context, companyID, id string) (*PayrollRun, error)
	FindRunByPeriod(ctx context.Context, companyID string, year, month int) (*PayrollRun, error)
	FindAllRunsByCompany(ctx context.Context, companyID string) ([]PayrollRun, error)
	UpdateRun(ctx context.Context, run *PayrollRun) error

	CreatePayslip(ctx context.Context, payslip *Payslip) error
	FindPayslipsByRun(ctx context.Context, companyID, runID string) ([]Payslip, error)
	FindPayslipByID(ctx context.Context, companyID, id string) (*Payslip, error)
	DeletePayslipsByRun(ctx context.Context, companyID, runID string) error

	ListEmployeesForRun(ctx context.Context, companyID string) ([]RunEmployee, error)
	FindEmployeeForRun(ctx context.Context, companyID, employeeID string) (*RunEmployee, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx returns a repository whose statements run on the given transaction,
// so payslip inserts and run updates share one commit with the outbox and
// the adjustment consumption.
func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: connection.GormTx(r.db, tx)}
}

func (r *repository) CreateRun(ctx context.Context, run *PayrollRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *repository) FindRunByIDAndCompany(ctx context.Context, companyID, id string) (*PayrollRun, error) {
	var run PayrollRun
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&run, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *repository) FindRunByPeriod(ctx context.Context, companyID string, year, month int) (*PayrollRun, error) {
	var run PayrollRun
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("period_year = ? AND period_month = ?", year, month).
		Where("status <> ?", StatusCancelled).
		First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *repository) FindAllRunsByCompany(ctx context.Context, companyID string) ([]PayrollRun, error) {
	var runs []PayrollRun
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("period_year DESC, period_month DESC").
		Find(&runs).Error
	return runs, err
}

func (r *repository) UpdateRun(ctx context.Context, run *PayrollRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

// CreatePayslip is insert-only. There is no update counterpart: a payslip
// that needs to change is deleted with its run reset and regenerated.
func (r *repository) CreatePayslip(ctx context.Context, payslip *Payslip) error {
	return r.db.WithContext(ctx).Create(payslip).Error
}

func (r *repository) FindPayslipsByRun(ctx context.Context, companyID, runID string) ([]Payslip, error) {
	var payslips []Payslip
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("run_id = ?", runID).
		Order("employee_name ASC").
		Find(&payslips).Error
	return payslips, err
}

func (r *repository) FindPayslipByID(ctx context.Context, companyID, id string) (*Payslip, error) {
	var payslip Payslip
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&payslip, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &payslip, nil
}

func (r *repository) DeletePayslipsByRun(ctx context.Context, companyID, runID string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&Payslip{}, "run_id = ?", runID).Error
}

func (r *repository) ListEmployeesForRun(ctx context.Context, companyID string) ([]RunEmployee, error) {
	var employees []RunEmployee
	err := r.db.WithContext(ctx).Raw(`
SELECT
	e.id,
	COALESCE(e.employee_code, '') AS employee_code,
	e.full_name,
	e.join_date,
	COALESCE(p.name, '') AS designation,
	COALESCE(d.name, '') AS department
FROM employees e
LEFT JOIN positions p ON p.id = e.position_id
LEFT JOIN departments d ON d.id = e.department_id
WHERE e.company_id = ?
ORDER BY e.full_name ASC
`, companyID).Scan(&employees).Error
	return employees, err
}

func (r *repository) FindEmployeeForRun(ctx context.Context, companyID, employeeID string) (*RunEmployee, error) {
	var employees []RunEmployee
	err := r.db.WithContext(ctx).Raw(`
SELECT
	e.id,
	COALESCE(e.employee_code, '') AS employee_code,
	e.full_name,
	e.join_date,
	COALESCE(p.name, '') AS designation,
	COALESCE(d.name, '') AS department
FROM employees e
LEFT JOIN positions p ON p.id = e.position_id
LEFT JOIN departments d ON d.id = e.department_id
WHERE e.company_id = ? AND e.id = ?
`, companyID, employeeID).Scan(&employees).Error
	if err != nil {
		return nil, err
	}
	if len(employees) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &employees[0], nil
}
