package adjustment

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusDraft           = "DRAFT"
	StatusPendingApproval = "PENDING_APPROVAL"
	StatusApproved        = "APPROVED"
	StatusRejected        = "REJECTED"
	StatusApplied         = "APPLIED"
	StatusCancelled       = "CANCELLED"
)

// Adjustment is an approved one-off pay correction for a specific month.
// Once a payslip consumes it the status flips to APPLIED and the row is
// permanently tied to that payslip; it can never be consumed again.
type Adjustment struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID        uuid.UUID  `gorm:"column:company_id;type:uuid;not null;index:idx_adjustment_lookup"`
	EmployeeID       uuid.UUID  `gorm:"column:employee_id;type:uuid;not null;index:idx_adjustment_lookup"`
	AdjustmentMonth  string     `gorm:"column:adjustment_month;type:varchar(7);not null;index:idx_adjustment_lookup"`
	Amount           float64    `gorm:"column:amount;type:numeric(14,2);not null"`
	Reason           string     `gorm:"column:reason;type:text"`
	Status           string     `gorm:"column:status;type:varchar(20);not null;default:'DRAFT'"`
	CreatedBy        uuid.UUID  `gorm:"column:created_by;type:uuid;not null"`
	ApprovedBy       *uuid.UUID `gorm:"column:approved_by;type:uuid"`
	AppliedPayslipID *uuid.UUID `gorm:"column:applied_payslip_id;type:uuid;index"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (Adjustment) TableName() string {
	return "payroll_adjustments"
}
