package compensation

import (
	"context"

	"github.com/RushikJoshi/GT-HRMS-sub007/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=compensation_repo.go -destination=mock/compensation_repo_mock.go -package=mock
type Repository interface {
	FindActiveStructure(ctx context.Context, companyID, employeeID string) (*SalaryStructure, error)
	FindEmployeeSnapshot(ctx context.Context, companyID, employeeID string) ([]byte, error)
	FindApplicantByEmployee(ctx context.Context, companyID, employeeID string) (*Applicant, error)
	FindApplicantByName(ctx context.Context, companyID, fullName string) (*Applicant, error)
	FindSnapshotPayload(ctx context.Context, snapshotID string) ([]byte, error)
	FindGlobalStructureByCandidate(ctx context.Context, candidateID string) (*GlobalSalaryStructure, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindActiveStructure(ctx context.Context, companyID, employeeID string) (*SalaryStructure, error) {
	var structure SalaryStructure
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Components").
		Where("employee_id = ? AND status = ?", employeeID, StructureStatusActive).
		Order("created_at DESC").
		First(&structure).Error
	if err != nil {
		return nil, err
	}
	return &structure, nil
}

func (r *repository) FindEmployeeSnapshot(ctx context.Context, companyID, employeeID string) ([]byte, error) {
	var ref employeeCompRef
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Select("id", "company_id", "compensation_snapshot").
		First(&ref, "id = ?", employeeID).Error
	if err != nil {
		return nil, err
	}
	return ref.CompensationSnapshot, nil
}

func (r *repository) FindApplicantByEmployee(ctx context.Context, companyID, employeeID string) (*Applicant, error) {
	var applicant Applicant
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&applicant, "employee_id = ?", employeeID).Error
	if err != nil {
		return nil, err
	}
	return &applicant, nil
}

func (r *repository) FindApplicantByName(ctx context.Context, companyID, fullName string) (*Applicant, error) {
	var applicant Applicant
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("LOWER(full_name) = LOWER(?)", fullName).
		First(&applicant).Error
	if err != nil {
		return nil, err
	}
	return &applicant, nil
}

func (r *repository) FindSnapshotPayload(ctx context.Context, snapshotID string) ([]byte, error) {
	var snap CompensationSnapshot
	err := r.db.WithContext(ctx).
		First(&snap, "id = ?", snapshotID).Error
	if err != nil {
		return nil, err
	}
	return snap.Payload, nil
}

// Global structures are intentionally unscoped: they are shared templates
// keyed by candidate id across all tenants.
func (r *repository) FindGlobalStructureByCandidate(ctx context.Context, candidateID string) (*GlobalSalaryStructure, error) {
	var structure GlobalSalaryStructure
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("updated_at DESC").
		First(&structure).Error
	if err != nil {
		return nil, err
	}
	return &structure, nil
}
