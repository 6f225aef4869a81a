package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee is the payroll-facing slice of the employee master. Profile
// management (onboarding, documents, org moves) is owned by another service;
// payroll reads identity and the join date, and snapshots both onto payslips.
type Employee struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	DepartmentID *uuid.UUID `gorm:"type:uuid"`
	PositionID   *uuid.UUID `gorm:"type:uuid"`

	EmployeeCode string     `gorm:"type:varchar(40);index"`
	FullName     string     `gorm:"type:varchar(160);not null"`
	Email        string     `gorm:"type:varchar(160);uniqueIndex"`
	JoinDate     *time.Time `gorm:"type:date"`

	CompensationSnapshot []byte `gorm:"column:compensation_snapshot;type:jsonb"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Employee) TableName() string {
	return "employees"
}
