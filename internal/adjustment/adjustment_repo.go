package adjustment

import (
	"context"
	"database/sql"

	"github.com/RushikJoshi/GT-HRMS-sub007/internal/shared/connection"
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=adjustment_repo.go -destination=mock/adjustment_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, adj *Adjustment) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Adjustment, error)
	FindAllByCompany(ctx context.Context, companyID string, filter QueryFilter) ([]Adjustment, int64, error)
	FindApprovedForMonth(ctx context.Context, companyID, employeeID, month string) ([]Adjustment, error)
	Update(ctx context.Context, adj *Adjustment) error
	MarkApplied(ctx context.Context, companyID string, ids []uuid.UUID, payslipID uuid.UUID) (int64, error)
}

type QueryFilter struct {
	EmployeeID *string
	Month      *string
	Status     *string
	Page       int
	Limit      int
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx returns a repository whose statements run on the given transaction.
func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: connection.GormTx(r.db, tx)}
}

func (r *repository) Create(ctx context.Context, adj *Adjustment) error {
	return r.db.WithContext(ctx).Create(adj).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Adjustment, error) {
	var adj Adjustment
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&adj, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &adj, nil
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string, filter QueryFilter) ([]Adjustment, int64, error) {
	db := r.db.WithContext(ctx).Scopes(tenant.Scope(companyID))

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		db = db.Where("employee_id = ?", *filter.EmployeeID)
	}
	if filter.Month != nil && *filter.Month != "" {
		db = db.Where("adjustment_month = ?", *filter.Month)
	}
	if filter.Status != nil && *filter.Status != "" {
		db = db.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := db.Model(&Adjustment{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.Limit > 0 {
		db = db.Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit)
	}

	var adjustments []Adjustment
	err := db.Order("created_at DESC").Find(&adjustments).Error
	return adjustments, total, err
}

// FindApprovedForMonth returns only APPROVED items for the exact target
// month; DRAFT, PENDING_APPROVAL, and already-APPLIED rows are never
// eligible for consumption.
func (r *repository) FindApprovedForMonth(ctx context.Context, companyID, employeeID, month string) ([]Adjustment, error) {
	var adjustments []Adjustment
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ? AND adjustment_month = ? AND status = ?", employeeID, month, StatusApproved).
		Order("created_at ASC").
		Find(&adjustments).Error
	return adjustments, err
}

func (r *repository) Update(ctx context.Context, adj *Adjustment) error {
	return r.db.WithContext(ctx).Save(adj).Error
}

// MarkApplied is the conditional consumption step: rows flip to APPLIED only
// while still APPROVED, so two concurrent runs can never both consume the
// same adjustment. Callers compare the affected count against len(ids).
func (r *repository) MarkApplied(ctx context.Context, companyID string, ids []uuid.UUID, payslipID uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).
		Model(&Adjustment{}).
		Scopes(tenant.Scope(companyID)).
		Where("id IN ? AND status = ?", ids, StatusApproved).
		Updates(map[string]any{
			"status":             StatusApplied,
			"applied_payslip_id": payslipID,
		})
	return res.RowsAffected, res.Error
}
