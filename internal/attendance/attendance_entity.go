package attendance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Day statuses as delivered by the capture feed. Capture itself (biometric,
// face recognition, mobile clock-in) lives outside this service; we only read
// what it wrote.
const (
	StatusPresent      = "present"
	StatusHalfDay      = "half_day"
	StatusWorkFromHome = "work_from_home"
	StatusOnDuty       = "on_duty"
	StatusLeave        = "leave"
	StatusAbsent       = "absent"
)

type Attendance struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID      uuid.UUID      `gorm:"column:company_id;type:uuid;not null;index"`
	EmployeeID     uuid.UUID      `gorm:"column:employee_id;type:uuid;not null;index"`
	AttendanceDate time.Time      `gorm:"column:attendance_date;type:date;not null;index"`
	Status         string         `gorm:"column:status;type:varchar(20);not null;default:present"`
	LeaveType      *string        `gorm:"column:leave_type;type:varchar(60)"`
	LOPDays        float64        `gorm:"column:lop_days;type:numeric(4,2);not null;default:0"`
	Source         string         `gorm:"column:source;type:varchar(30);not null;default:MANUAL"`
	ExternalRef    *string        `gorm:"column:external_ref;type:varchar(100)"`
	Notes          *string        `gorm:"column:notes;type:text"`
	CreatedAt      time.Time      `gorm:"column:created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Attendance) TableName() string {
	return "attendances"
}

type Holiday struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID `gorm:"column:company_id;type:uuid;not null;index"`
	HolidayDate time.Time `gorm:"column:holiday_date;type:date;not null;index"`
	Name        string    `gorm:"column:name;type:varchar(120)"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (Holiday) TableName() string {
	return "holidays"
}

// PeriodLock freezes a month's attendance once a payroll run reaches
// CALCULATED, so retroactive edits cannot silently invalidate paid history.
type PeriodLock struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID `gorm:"column:company_id;type:uuid;not null;uniqueIndex:idx_company_period_lock"`
	PeriodYear  int       `gorm:"column:period_year;not null;uniqueIndex:idx_company_period_lock"`
	PeriodMonth int       `gorm:"column:period_month;not null;uniqueIndex:idx_company_period_lock"`
	RunID       uuid.UUID `gorm:"column:run_id;type:uuid;not null"`
	LockedAt    time.Time `gorm:"column:locked_at"`
}

func (PeriodLock) TableName() string {
	return "attendance_period_locks"
}
