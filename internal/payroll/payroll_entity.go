package payroll

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/RushikJoshi/GT-HRMS-sub007/internal/attendance"

	"github.com/google/uuid"
)

const (
	StatusInitiated  = "INITIATED"
	StatusCalculated = "CALCULATED"
	StatusApproved   = "APPROVED"
	StatusPaid       = "PAID"
	StatusCancelled  = "CANCELLED"
)

// PayrollRun is the batch aggregate for one company and one period. Totals
// and the error list are written once, by the calculating goroutine, after
// all employee work has finished.
type PayrollRun struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index:idx_run_company_period,unique"`
	PeriodYear  int       `gorm:"not null;index:idx_run_company_period,unique"`
	PeriodMonth int       `gorm:"not null;index:idx_run_company_period,unique"`

	Status string `gorm:"type:varchar(20);not null;default:'INITIATED';index"`

	TotalGross      float64 `gorm:"not null;default:0"`
	TotalDeductions float64 `gorm:"not null;default:0"`
	TotalNet        float64 `gorm:"not null;default:0"`
	EmployeeCount   int     `gorm:"not null;default:0"`
	ProcessedCount  int     `gorm:"not null;default:0"`

	Errors RunErrorList `gorm:"type:jsonb"`

	CreatedBy  uuid.UUID  `gorm:"type:uuid;not null"`
	ApprovedBy *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt *time.Time
	PaidAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PayrollRun) TableName() string {
	return "payroll_runs"
}

// RunError records one employee's failure without failing the batch.
type RunError struct {
	EmployeeID string `json:"employee_id"`
	Message    string `json:"message"`
}

type RunErrorList []RunError

func (l RunErrorList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *RunErrorList) Scan(value any) error {
	return scanJSON(value, l)
}

// Payslip is the immutable per-employee output of a calculated run. Rows are
// insert-only; a run reset deletes and regenerates them wholesale.
type Payslip struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RunID      uuid.UUID `gorm:"type:uuid;not null;index:idx_payslip_run_employee,unique"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_payslip_run_employee,unique"`

	PeriodYear  int `gorm:"not null"`
	PeriodMonth int `gorm:"not null"`

	// Identity snapshot as of calculation time. Later profile edits must not
	// rewrite payroll history.
	EmployeeName string     `gorm:"type:varchar(160);not null"`
	EmployeeCode string     `gorm:"type:varchar(40)"`
	Designation  string     `gorm:"type:varchar(120)"`
	Department   string     `gorm:"type:varchar(120)"`
	JoinDate     *time.Time `gorm:"type:date"`

	CompensationSource string             `gorm:"type:varchar(30);not null"`
	Attendance         attendance.Summary `gorm:"type:jsonb;serializer:json"`

	Lines       LineList       `gorm:"type:jsonb"`
	Adjustments AdjustmentList `gorm:"type:jsonb"`

	GrossEarnings   float64 `gorm:"not null;default:0"`
	TaxableGross    float64 `gorm:"not null;default:0"`
	BasicPaid       float64 `gorm:"not null;default:0"`
	PFAmount        float64 `gorm:"not null;default:0"`
	ESIAmount       float64 `gorm:"not null;default:0"`
	PreTaxTotal     float64 `gorm:"not null;default:0"`
	TaxableIncome   float64 `gorm:"not null;default:0"`
	IncomeTax       float64 `gorm:"not null;default:0"`
	PostTaxTotal    float64 `gorm:"not null;default:0"`
	TotalDeductions float64 `gorm:"not null;default:0"`
	AdjustmentTotal float64 `gorm:"not null;default:0"`
	NetPay          float64 `gorm:"not null;default:0"`

	// Degradation flags. Every silent fallback taken during calculation must
	// be visible here.
	TaxDegraded         bool `gorm:"not null;default:false"`
	BasicFallback       bool `gorm:"not null;default:false"`
	NetClamped          bool `gorm:"not null;default:false"`
	AttendanceDefaulted bool `gorm:"not null;default:false"`
	GrossDerived        bool `gorm:"not null;default:false"`

	AuditHash string `gorm:"type:char(64);not null"`

	CreatedAt time.Time
}

func (Payslip) TableName() string {
	return "payslips"
}

// Line is one earning or deduction row on the payslip. Paid is the amount
// after pro-rata; Monthly is the configured full-month amount.
type Line struct {
	Name     string  `json:"name"`
	Code     string  `json:"code,omitempty"`
	Kind     string  `json:"kind"`
	Monthly  float64 `json:"monthly"`
	Paid     float64 `json:"paid"`
	ProRated bool    `json:"pro_rated"`
	Taxable  bool    `json:"taxable"`
}

type LineList []Line

func (l LineList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *LineList) Scan(value any) error {
	return scanJSON(value, l)
}

// ConsumedAdjustment links a payslip back to the ledger rows it consumed.
type ConsumedAdjustment struct {
	ID     uuid.UUID `json:"id"`
	Amount float64   `json:"amount"`
	Reason string    `json:"reason"`
}

type AdjustmentList []ConsumedAdjustment

func (l AdjustmentList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *AdjustmentList) Scan(value any) error {
	return scanJSON(value, l)
}

func scanJSON(value any, dest any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return errors.New("unsupported jsonb source type")
	}
}
