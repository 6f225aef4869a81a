package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/RushikJoshi/GT-HRMS-sub007/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	FindRowsForPeriod(ctx context.Context, companyID, employeeID string, periodStart, periodEnd time.Time) ([]Attendance, error)
	FindHolidaySet(ctx context.Context, companyID string, periodStart, periodEnd time.Time) (map[string]struct{}, error)
	LockPeriod(ctx context.Context, companyID string, year, month int, runID uuid.UUID) error
	IsPeriodLocked(ctx context.Context, companyID string, year, month int) (bool, error)
	SaveRow(ctx context.Context, row *Attendance) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindRowsForPeriod(
	ctx context.Context,
	companyID, employeeID string,
	periodStart, periodEnd time.Time,
) ([]Attendance, error) {
	var rows []Attendance
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("attendance_date BETWEEN ? AND ?", periodStart, periodEnd).
		Order("attendance_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindHolidaySet(
	ctx context.Context,
	companyID string,
	periodStart, periodEnd time.Time,
) (map[string]struct{}, error) {
	var holidays []Holiday
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("holiday_date BETWEEN ? AND ?", periodStart, periodEnd).
		Find(&holidays).Error
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		set[h.HolidayDate.Format(dateLayout)] = struct{}{}
	}
	return set, nil
}

func (r *repository) LockPeriod(ctx context.Context, companyID string, year, month int, runID uuid.UUID) error {
	lock := PeriodLock{
		ID:          uuid.New(),
		CompanyID:   uuid.MustParse(companyID),
		PeriodYear:  year,
		PeriodMonth: month,
		RunID:       runID,
		LockedAt:    time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Create(&lock).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		// Already locked by an earlier run for the same period.
		return nil
	}
	return err
}

func (r *repository) IsPeriodLocked(ctx context.Context, companyID string, year, month int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&PeriodLock{}).
		Scopes(tenant.Scope(companyID)).
		Where("period_year = ? AND period_month = ?", year, month).
		Count(&count).Error
	return count > 0, err
}

// SaveRow writes an attendance row unless its period has been locked by a
// payroll run.
func (r *repository) SaveRow(ctx context.Context, row *Attendance) error {
	locked, err := r.IsPeriodLocked(
		ctx,
		row.CompanyID.String(),
		row.AttendanceDate.Year(),
		int(row.AttendanceDate.Month()),
	)
	if err != nil {
		return err
	}
	if locked {
		return ErrPeriodLocked
	}
	return r.db.WithContext(ctx).Save(row).Error
}
