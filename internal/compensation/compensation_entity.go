package compensation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const StructureStatusActive = "ACTIVE"

// SalaryStructure is the structured compensation record, the highest-ranked
// source in the resolution ladder.
type SalaryStructure struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"column:company_id;type:uuid;not null;index"`
	EmployeeID uuid.UUID `gorm:"column:employee_id;type:uuid;not null;index"`
	Status     string    `gorm:"column:status;type:varchar(20);not null;default:'ACTIVE'"`
	TotalCTC   float64   `gorm:"column:total_ctc;type:numeric(14,2);not null;default:0"`
	GrossA     float64   `gorm:"column:gross_a;type:numeric(14,2);not null;default:0"`
	GrossB     float64   `gorm:"column:gross_b;type:numeric(14,2);not null;default:0"`
	GrossC     float64   `gorm:"column:gross_c;type:numeric(14,2);not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at;index"`

	Components []SalaryStructureComponent `gorm:"foreignKey:StructureID"`
}

func (SalaryStructure) TableName() string {
	return "salary_structures"
}

type SalaryStructureComponent struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	StructureID   uuid.UUID `gorm:"column:structure_id;type:uuid;not null;index"`
	Name          string    `gorm:"column:name;type:varchar(120);not null"`
	Code          string    `gorm:"column:code;type:varchar(40)"`
	MonthlyAmount float64   `gorm:"column:monthly_amount;type:numeric(14,2);not null;default:0"`
	AnnualAmount  float64   `gorm:"column:annual_amount;type:numeric(14,2);not null;default:0"`
	ComponentType string    `gorm:"column:component_type;type:varchar(20);not null;default:'EARNING'"`
	IsTaxable     *bool     `gorm:"column:is_taxable"`
	IsProRata     *bool     `gorm:"column:is_pro_rata"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (SalaryStructureComponent) TableName() string {
	return "salary_structure_components"
}

// Applicant links recruiting data into payroll. Older tenants never migrated
// applicants to structured records, so the resolver can fall back to the
// snapshot the offer was made with, or to the legacy embedded JSON field.
type Applicant struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	CompanyID      uuid.UUID  `gorm:"column:company_id;type:uuid;not null;index"`
	CandidateID    *uuid.UUID `gorm:"column:candidate_id;type:uuid;index"`
	EmployeeID     *uuid.UUID `gorm:"column:employee_id;type:uuid;index"`
	FullName       string     `gorm:"column:full_name;type:varchar(160)"`
	SnapshotID     *uuid.UUID `gorm:"column:snapshot_id;type:uuid"`
	LegacySnapshot []byte     `gorm:"column:legacy_snapshot;type:jsonb"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (Applicant) TableName() string {
	return "applicants"
}

// CompensationSnapshot stores a frozen offer/assignment payload as JSON.
type CompensationSnapshot struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Payload   []byte    `gorm:"column:payload;type:jsonb;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (CompensationSnapshot) TableName() string {
	return "compensation_snapshots"
}

// GlobalSalaryStructure is the one deliberately cross-tenant table: salary
// templates keyed by candidate id, shared across companies.
type GlobalSalaryStructure struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CandidateID uuid.UUID `gorm:"column:candidate_id;type:uuid;not null;index"`
	TotalCTC    float64   `gorm:"column:total_ctc;type:numeric(14,2);not null;default:0"`
	Components  []byte    `gorm:"column:components;type:jsonb"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (GlobalSalaryStructure) TableName() string {
	return "global_salary_structures"
}

// employeeCompRef is a narrow projection of the employees table; only the
// columns the resolver needs.
type employeeCompRef struct {
	ID                   uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CompanyID            uuid.UUID `gorm:"column:company_id;type:uuid"`
	CompensationSnapshot []byte    `gorm:"column:compensation_snapshot;type:jsonb"`
}

func (employeeCompRef) TableName() string {
	return "employees"
}
