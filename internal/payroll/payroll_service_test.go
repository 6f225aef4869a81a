package payroll

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/RushikJoshi/GT-HRMS-sub007/internal/adjustment"
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/attendance"
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/compensation"
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/messaging/kafka"
	payrollerrors "github.com/RushikJoshi/GT-HRMS-sub007/internal/payroll/errors"
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/tax"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakePayrollRepository struct {
	CreateRunFn             func(ctx context.Context, run *PayrollRun) error
	FindRunByIDAndCompanyFn func(ctx context.Context, companyID, id string) (*PayrollRun, error)
	FindRunByPeriodFn       func(ctx context.Context, companyID string, year, month int) (*PayrollRun, error)
	FindAllRunsByCompanyFn  func(ctx context.Context, companyID string) ([]PayrollRun, error)
	UpdateRunFn             func(ctx context.Context, run *PayrollRun) error
	CreatePayslipFn         func(ctx context.Context, payslip *Payslip) error
	FindPayslipsByRunFn     func(ctx context.Context, companyID, runID string) ([]Payslip, error)
	FindPayslipByIDFn       func(ctx context.Context, companyID, id string) (*Payslip, error)
	DeletePayslipsByRunFn   func(ctx context.Context, companyID, runID string) error
	ListEmployeesForRunFn   func(ctx context.Context, companyID string) ([]RunEmployee, error)
	FindEmployeeForRunFn    func(ctx context.Context, companyID, employeeID string) (*RunEmployee, error)
}

func (f *fakePayrollRepository) WithTx(tx *sql.Tx) Repository { return f }

func (f *fakePayrollRepository) CreateRun(ctx context.Context, run *PayrollRun) error {
	if f.CreateRunFn != nil {
		return f.CreateRunFn(ctx, run)
	}
	return nil
}

func (f *fakePayrollRepository) FindRunByIDAndCompany(ctx context.Context, companyID, id string) (*PayrollRun, error) {
	if f.FindRunByIDAndCompanyFn != nil {
		return f.FindRunByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayrollRepository) FindRunByPeriod(ctx context.Context, companyID string, year, month int) (*PayrollRun, error) {
	if f.FindRunByPeriodFn != nil {
		return f.FindRunByPeriodFn(ctx, companyID, year, month)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayrollRepository) FindAllRunsByCompany(ctx context.Context, companyID string) ([]PayrollRun, error) {
	if f.FindAllRunsByCompanyFn != nil {
		return f.FindAllRunsByCompanyFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakePayrollRepository) UpdateRun(ctx context.Context, run *PayrollRun) error {
	if f.UpdateRunFn != nil {
		return f.UpdateRunFn(ctx, run)
	}
	return nil
}

func (f *fakePayrollRepository) CreatePayslip(ctx context.Context, payslip *Payslip) error {
	if f.CreatePayslipFn != nil {
		return f.CreatePayslipFn(ctx, payslip)
	}
	return nil
}

func (f *fakePayrollRepository) FindPayslipsByRun(ctx context.Context, companyID, runID string) ([]Payslip, error) {
	if f.FindPayslipsByRunFn != nil {
		return f.FindPayslipsByRunFn(ctx, companyID, runID)
	}
	return nil, nil
}

func (f *fakePayrollRepository) FindPayslipByID(ctx context.Context, companyID, id string) (*Payslip, error) {
	if f.FindPayslipByIDFn != nil {
		return f.FindPayslipByIDFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayrollRepository) DeletePayslipsByRun(ctx context.Context, companyID, runID string) error {
	if f.DeletePayslipsByRunFn != nil {
		return f.DeletePayslipsByRunFn(ctx, companyID, runID)
	}
	return nil
}

func (f *fakePayrollRepository) ListEmployeesForRun(ctx context.Context, companyID string) ([]RunEmployee, error) {
	if f.ListEmployeesForRunFn != nil {
		return f.ListEmployeesForRunFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakePayrollRepository) FindEmployeeForRun(ctx context.Context, companyID, employeeID string) (*RunEmployee, error) {
	if f.FindEmployeeForRunFn != nil {
		return f.FindEmployeeForRunFn(ctx, companyID, employeeID)
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeOutboxRepository struct {
	events []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type fakeResolver struct {
	ResolveFn func(ctx context.Context, companyID string, target compensation.ResolveTarget) compensation.ResolvedCompensation
}

func (f *fakeResolver) Resolve(ctx context.Context, companyID string, target compensation.ResolveTarget) compensation.ResolvedCompensation {
	if f.ResolveFn != nil {
		return f.ResolveFn(ctx, companyID, target)
	}
	return compensation.ZeroFallback()
}

type fakeAttendanceRepository struct {
	FindRowsForPeriodFn func(ctx context.Context, companyID, employeeID string, periodStart, periodEnd time.Time) ([]attendance.Attendance, error)
	FindHolidaySetFn    func(ctx context.Context, companyID string, periodStart, periodEnd time.Time) (map[string]struct{}, error)
	LockPeriodFn        func(ctx context.Context, companyID string, year, month int, runID uuid.UUID) error
	lockedPeriods       int
}

func (f *fakeAttendanceRepository) FindRowsForPeriod(ctx context.Context, companyID, employeeID string, periodStart, periodEnd time.Time) ([]attendance.Attendance, error) {
	if f.FindRowsForPeriodFn != nil {
		return f.FindRowsForPeriodFn(ctx, companyID, employeeID, periodStart, periodEnd)
	}
	return nil, nil
}

func (f *fakeAttendanceRepository) FindHolidaySet(ctx context.Context, companyID string, periodStart, periodEnd time.Time) (map[string]struct{}, error) {
	if f.FindHolidaySetFn != nil {
		return f.FindHolidaySetFn(ctx, companyID, periodStart, periodEnd)
	}
	return map[string]struct{}{}, nil
}

func (f *fakeAttendanceRepository) LockPeriod(ctx context.Context, companyID string, year, month int, runID uuid.UUID) error {
	f.lockedPeriods++
	if f.LockPeriodFn != nil {
		return f.LockPeriodFn(ctx, companyID, year, month, runID)
	}
	return nil
}

func (f *fakeAttendanceRepository) IsPeriodLocked(ctx context.Context, companyID string, year, month int) (bool, error) {
	return false, nil
}

func (f *fakeAttendanceRepository) SaveRow(ctx context.Context, row *attendance.Attendance) error {
	return nil
}

type fakeLedger struct {
	FetchApprovedFn   func(ctx context.Context, companyID, employeeID, month string) ([]adjustment.Adjustment, error)
	ConsumeApprovedFn func(ctx context.Context, companyID string, ids []uuid.UUID, payslipID uuid.UUID) error
	consumeCalls      int
	boundTx           *sql.Tx
}

func (f *fakeLedger) WithTx(tx *sql.Tx) adjustment.Ledger {
	f.boundTx = tx
	return f
}

func (f *fakeLedger) FetchApproved(ctx context.Context, companyID, employeeID, month string) ([]adjustment.Adjustment, error) {
	if f.FetchApprovedFn != nil {
		return f.FetchApprovedFn(ctx, companyID, employeeID, month)
	}
	return nil, nil
}

func (f *fakeLedger) ConsumeApproved(ctx context.Context, companyID string, ids []uuid.UUID, payslipID uuid.UUID) error {
	f.consumeCalls++
	if f.ConsumeApprovedFn != nil {
		return f.ConsumeApprovedFn(ctx, companyID, ids, payslipID)
	}
	return nil
}

type serviceFixture struct {
	svc        Service
	repo       *fakePayrollRepository
	outbox     *fakeOutboxRepository
	attendance *fakeAttendanceRepository
	ledger     *fakeLedger
	mock       sqlmock.Sqlmock
}

func newServiceFixture(t *testing.T, cfg Config, resolver compensation.Resolver) *serviceFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &serviceFixture{
		repo:       &fakePayrollRepository{},
		outbox:     &fakeOutboxRepository{},
		attendance: &fakeAttendanceRepository{},
		ledger:     &fakeLedger{},
		mock:       mock,
	}
	if resolver == nil {
		resolver = &fakeResolver{}
	}

	engine := NewDeductionEngine(tax.ZeroCalculator{}, time.Second, zap.NewNop())
	preview := NewPreviewCache(nil, time.Minute, zap.NewNop())

	f.svc = NewService(db, f.repo, f.outbox, resolver, f.attendance, f.ledger, engine, preview, cfg, zap.NewNop())
	return f
}

var (
	testCompanyID  = "6d5e0b46-99a1-4a53-9f6e-04a1b8c5d001"
	testActorID    = "6d5e0b46-99a1-4a53-9f6e-04a1b8c5d002"
	testEmployeeID = uuid.MustParse("6d5e0b46-99a1-4a53-9f6e-04a1b8c5d003")
)

func basicOnlyResolver(monthly float64) *fakeResolver {
	return &fakeResolver{
		ResolveFn: func(ctx context.Context, companyID string, target compensation.ResolveTarget) compensation.ResolvedCompensation {
			return compensation.ResolvedCompensation{
				Components: []compensation.Component{
					{Name: "Basic Salary", Code: "BASIC", MonthlyAmount: monthly, Kind: compensation.KindEarning},
				},
				Source: compensation.SourceStructured,
			}
		},
	}
}

func juneRun(status string) *PayrollRun {
	return &PayrollRun{
		ID:          uuid.New(),
		CompanyID:   uuid.MustParse(testCompanyID),
		PeriodYear:  2026,
		PeriodMonth: 6,
		Status:      status,
		CreatedBy:   uuid.MustParse(testActorID),
	}
}

// juneAttendance builds one row per day of June 2026: the first present days
// are present, the rest absent.
func juneAttendance(present int) []attendance.Attendance {
	rows := make([]attendance.Attendance, 0, 30)
	for day := 1; day <= 30; day++ {
		status := attendance.StatusPresent
		if day > present {
			status = attendance.StatusAbsent
		}
		rows = append(rows, attendance.Attendance{
			EmployeeID:     testEmployeeID,
			AttendanceDate: time.Date(2026, 6, day, 0, 0, 0, 0, time.UTC),
			Status:         status,
		})
	}
	return rows
}

func TestCalculate_ProRatesBasicAcrossTheRun(t *testing.T) {
	f := newServiceFixture(t, Config{AllowZeroNet: true}, basicOnlyResolver(30000))

	run := juneRun(StatusInitiated)
	var savedRun *PayrollRun
	var savedPayslip *Payslip

	f.repo.FindRunByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*PayrollRun, error) {
		return run, nil
	}
	f.repo.ListEmployeesForRunFn = func(ctx context.Context, companyID string) ([]RunEmployee, error) {
		return []RunEmployee{{ID: testEmployeeID, FullName: "Asha Nair"}}, nil
	}
	f.repo.CreatePayslipFn = func(ctx context.Context, payslip *Payslip) error {
		savedPayslip = payslip
		return nil
	}
	f.repo.UpdateRunFn = func(ctx context.Context, run *PayrollRun) error {
		savedRun = run
		return nil
	}
	f.attendance.FindRowsForPeriodFn = func(ctx context.Context, companyID, employeeID string, periodStart, periodEnd time.Time) ([]attendance.Attendance, error) {
		return juneAttendance(25), nil
	}

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.svc.Calculate(context.Background(), testCompanyID, testActorID, run.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, StatusCalculated, resp.Status)
	assert.Equal(t, 1, resp.ProcessedCount)
	assert.Empty(t, resp.Errors)

	assert.NotNil(t, savedPayslip)
	assert.Equal(t, 25000.0, savedPayslip.BasicPaid)
	assert.Equal(t, 25000.0, savedPayslip.GrossEarnings)
	// no deductions enrolled and a zero tax bracket: net equals gross
	assert.Equal(t, 0.0, savedPayslip.TotalDeductions)
	assert.Equal(t, 25000.0, savedPayslip.NetPay)
	assert.Equal(t, 25.0, savedPayslip.Attendance.PresentDays)
	assert.False(t, savedPayslip.AttendanceDefaulted)
	assert.True(t, VerifyAuditHash(*savedPayslip))

	assert.NotNil(t, savedRun)
	assert.Equal(t, 25000.0, savedRun.TotalGross)
	assert.Equal(t, 25000.0, savedRun.TotalNet)
	assert.Equal(t, 1, f.attendance.lockedPeriods)
	assert.Len(t, f.outbox.events, 1)
	assert.Equal(t, "hr.payroll.payslip.generated.v1", f.outbox.events[0].Topic)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCalculate_MissingAttendanceDefaultsToFullMonth(t *testing.T) {
	f := newServiceFixture(t, Config{AllowZeroNet: true}, basicOnlyResolver(30000))

	run := juneRun(StatusInitiated)
	var savedPayslip *Payslip

	f.repo.FindRunByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*PayrollRun, error) {
		return run, nil
	}
	f.repo.ListEmployeesForRunFn = func(ctx context.Context, companyID string) ([]RunEmployee, error) {
		return []RunEmployee{{ID: testEmployeeID, FullName: "Asha Nair"}}, nil
	}
	f.repo.CreatePayslipFn = func(ctx context.Context, payslip *Payslip) error {
		savedPayslip = payslip
		return nil
	}

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	_, err := f.svc.Calculate(context.Background(), testCompanyID, testActorID, run.ID.String())

	assert.NoError(t, err)
	assert.NotNil(t, savedPayslip)
	assert.Equal(t, 30000.0, savedPayslip.GrossEarnings)
	assert.True(t, savedPayslip.AttendanceDefaulted)
}

func TestCalculate_ConsumesApprovedAdjustmentsExactlyOnce(t *testing.T) {
	f := newServiceFixture(t, Config{AllowZeroNet: true}, basicOnlyResolver(30000))

	run := juneRun(StatusInitiated)
	bonus := adjustment.Adjustment{ID: uuid.New(), Amount: 2000, Reason: "referral bonus"}
	recovery := adjustment.Adjustment{ID: uuid.New(), Amount: -500, Reason: "canteen recovery"}

	var savedPayslip *Payslip
	var consumedIDs []uuid.UUID
	var consumedPayslipID uuid.UUID

	f.repo.FindRunByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*PayrollRun, error) {
		return run, nil
	}
	f.repo.ListEmployeesForRunFn = func(ctx context.Context, companyID string) ([]RunEmployee, error) {
		return []RunEmployee{{ID: testEmployeeID, FullName: "Asha Nair"}}, nil
	}
	f.repo.CreatePayslipFn = func(ctx context.Context, payslip *Payslip) error {
		savedPayslip = payslip
		return nil
	}
	f.ledger.FetchApprovedFn = func(ctx context.Context, companyID, employeeID, month string) ([]adjustment.Adjustment, error) {
		assert.Equal(t, "2026-06", month)
		return []adjustment.Adjustment{bonus, recovery}, nil
	}
	f.ledger.ConsumeApprovedFn = func(ctx context.Context, companyID string, ids []uuid.UUID, payslipID uuid.UUID) error {
		consumedIDs = ids
		consumedPayslipID = payslipID
		return nil
	}

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	_, err := f.svc.Calculate(context.Background(), testCompanyID, testActorID, run.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, 1, f.ledger.consumeCalls)
	assert.ElementsMatch(t, []uuid.UUID{bonus.ID, recovery.ID}, consumedIDs)
	assert.NotNil(t, savedPayslip)
	assert.Equal(t, savedPayslip.ID, consumedPayslipID)
	assert.Equal(t, 1500.0, savedPayslip.AdjustmentTotal)
}

func TestCalculate_PayslipInsertFailureRollsBackConsumption(t *testing.T) {
	f := newServiceFixture(t, Config{AllowZeroNet: true}, basicOnlyResolver(30000))

	run := juneRun(StatusInitiated)
	bonus := adjustment.Adjustment{ID: uuid.New(), Amount: 2000, Reason: "referral bonus"}

	f.repo.FindRunByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*PayrollRun, error) {
		return run, nil
	}
	f.repo.ListEmployeesForRunFn = func(ctx context.Context, companyID string) ([]RunEmployee, error) {
		return []RunEmployee{{ID: testEmployeeID, FullName: "Asha Nair"}}, nil
	}
	f.ledger.FetchApprovedFn = func(ctx context.Context, companyID, employeeID, month string) ([]adjustment.Adjustment, error) {
		return []adjustment.Adjustment{bonus}, nil
	}
	f.repo.CreatePayslipFn = func(ctx context.Context, payslip *Payslip) error {
		return errors.New("duplicate key value violates unique constraint")
	}

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.Calculate(context.Background(), testCompanyID, testActorID, run.ID.String())

	assert.Error(t, err)
	// consumption ran inside the same transaction as the failed insert, so
	// the rollback covers the APPLIED flip
	assert.Equal(t, 1, f.ledger.consumeCalls)
	assert.NotNil(t, f.ledger.boundTx)
	assert.Equal(t, StatusInitiated, run.Status)
	assert.Equal(t, 0, f.attendance.lockedPeriods)
	assert.Empty(t, f.outbox.events)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCalculate_EmployeeFailureDoesNotAbortBatch(t *testing.T) {
	f := newServiceFixture(t, Config{AllowZeroNet: true}, basicOnlyResolver(30000))

	run := juneRun(StatusInitiated)
	brokenEmployee := uuid.New()
	var savedPayslips []Payslip

	f.repo.FindRunByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*PayrollRun, error) {
		return run, nil
	}
	f.repo.ListEmployeesForRunFn = func(ctx context.Context, companyID string) ([]RunEmployee, error) {
		return []RunEmployee{
			{ID: testEmployeeID, FullName: "Asha Nair"},
			{ID: brokenEmployee, FullName: "Vikram Rao"},
		}, nil
	}
	f.repo.CreatePayslipFn = func(ctx context.Context, payslip *Payslip) error {
		savedPayslips = append(savedPayslips, *payslip)
		return nil
	}
	f.attendance.FindRowsForPeriodFn = func(ctx context.Context, companyID, employeeID string, periodStart, periodEnd time.Time) ([]attendance.Attendance, error) {
		if employeeID == brokenEmployee.String() {
			return nil, errors.New("attendance store timeout")
		}
		return juneAttendance(30), nil
	}

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.svc.Calculate(context.Background(), testCompanyID, testActorID, run.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, StatusCalculated, resp.Status)
	assert.Equal(t, 2, resp.EmployeeCount)
	assert.Equal(t, 1, resp.ProcessedCount)
	assert.Len(t, resp.Errors, 1)
	assert.Equal(t, brokenEmployee.String(), resp.Errors[0].EmployeeID)
	assert.Len(t, savedPayslips, 1)
}

func TestCalculate_ZeroNetBlockedWhenPolicyForbids(t *testing.T) {
	f := newServiceFixture(t, Config{AllowZeroNet: false}, &fakeResolver{})

	run := juneRun(StatusInitiated)
	created := false

	f.repo.FindRunByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*PayrollRun, error) {
		return run, nil
	}
	f.repo.ListEmployeesForRunFn = func(ctx context.Context, companyID string) ([]RunEmployee, error) {
		return []RunEmployee{{ID: testEmployeeID, FullName: "Asha Nair"}}, nil
	}
	f.repo.CreatePayslipFn = func(ctx context.Context, payslip *Payslip) error {
		created = true
		return nil
	}

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.svc.Calculate(context.Background(), testCompanyID, testActorID, run.ID.String())

	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 0, resp.ProcessedCount)
	assert.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Message, "zero net pay")
	assert.Equal(t, 0, f.ledger.consumeCalls)
}

func TestCalculate_RejectsAlreadyCalculatedRun(t *testing.T) {
	for _, status := range []string{StatusCalculated, StatusApproved, StatusPaid} {
		f := newServiceFixture(t, Config{AllowZeroNet: true}, nil)
		run := juneRun(status)
		f.repo.FindRunByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*PayrollRun, error) {
			return run, nil
		}

		_, err := f.svc.Calculate(context.Background(), testCompanyID, testActorID, run.ID.String())
		assert.ErrorIs(t, err, payrollerrors.ErrRunNotRecalculable, "status %s", status)
	}
}

func TestCreateRun_RejectsDuplicatePeriod(t *testing.T) {
	f := newServiceFixture(t, Config{AllowZeroNet: true}, nil)

	existing := juneRun(StatusInitiated)
	f.repo.FindRunByPeriodFn = func(ctx context.Context, companyID string, year, month int) (*PayrollRun, error) {
		return existing, nil
	}

	_, err := f.svc.CreateRun(context.Background(), testCompanyID, testActorID, CreateRunRequest{
		PeriodYear:  2026,
		PeriodMonth: 6,
	})
	assert.ErrorIs(t, err, payrollerrors.ErrRunAlreadyExists)
}

func TestApprove_RequiresCalculatedAndQueuesEvent(t *testing.T) {
	f := newServiceFixture(t, Config{AllowZeroNet: true}, nil)

	run := juneRun(StatusCalculated)
	f.repo.FindRunByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*PayrollRun, error) {
		return run, nil
	}

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.svc.Approve(context.Background(), testCompanyID, testActorID, run.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, StatusApproved, resp.Status)
	assert.NotNil(t, resp.ApprovedBy)
	assert.Len(t, f.outbox.events, 1)
	assert.Equal(t, "hr.payroll.run.approved.v1", f.outbox.events[0].Topic)
}

func TestApprove_RejectsUncalculatedRun(t *testing.T) {
	f := newServiceFixture(t, Config{AllowZeroNet: true}, nil)

	run := juneRun(StatusInitiated)
	f.repo.FindRunByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*PayrollRun, error) {
		return run, nil
	}

	_, err := f.svc.Approve(context.Background(), testCompanyID, testActorID, run.ID.String())
	assert.ErrorIs(t, err, payrollerrors.ErrInvalidStatusTransition)
}

func TestMarkPaid_RequiresApproved(t *testing.T) {
	f := newServiceFixture(t, Config{AllowZeroNet: true}, nil)

	run := juneRun(StatusCalculated)
	f.repo.FindRunByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*PayrollRun, error) {
		return run, nil
	}

	_, err := f.svc.MarkPaid(context.Background(), testCompanyID, testActorID, run.ID.String())
	assert.ErrorIs(t, err, payrollerrors.ErrInvalidStatusTransition)
}

func TestCancel_PaidRunIsImmutable(t *testing.T) {
	f := newServiceFixture(t, Config{AllowZeroNet: true}, nil)

	run := juneRun(StatusPaid)
	f.repo.FindRunByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*PayrollRun, error) {
		return run, nil
	}

	_, err := f.svc.Cancel(context.Background(), testCompanyID, testActorID, run.ID.String())
	assert.ErrorIs(t, err, payrollerrors.ErrRunFinalized)
}

func TestCancel_DeletesPayslipsOfCalculatedRun(t *testing.T) {
	f := newServiceFixture(t, Config{AllowZeroNet: true}, nil)

	run := juneRun(StatusCalculated)
	deleted := false
	f.repo.FindRunByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*PayrollRun, error) {
		return run, nil
	}
	f.repo.DeletePayslipsByRunFn = func(ctx context.Context, companyID, runID string) error {
		deleted = true
		return nil
	}

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.svc.Cancel(context.Background(), testCompanyID, testActorID, run.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, StatusCancelled, resp.Status)
	assert.True(t, deleted)
}

func TestReset_PurgesPayslipsAndClearsAggregates(t *testing.T) {
	f := newServiceFixture(t, Config{AllowZeroNet: true}, nil)

	run := juneRun(StatusCalculated)
	run.TotalGross = 100000
	run.ProcessedCount = 4
	approver := uuid.MustParse(testActorID)
	run.ApprovedBy = &approver

	deleted := false
	f.repo.FindRunByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*PayrollRun, error) {
		return run, nil
	}
	f.repo.DeletePayslipsByRunFn = func(ctx context.Context, companyID, runID string) error {
		deleted = true
		return nil
	}

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.svc.Reset(context.Background(), testCompanyID, testActorID, run.ID.String())

	assert.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, StatusInitiated, resp.Status)
	assert.Equal(t, 0.0, resp.TotalGross)
	assert.Equal(t, 0, resp.ProcessedCount)
	assert.Nil(t, resp.ApprovedBy)
}

func TestPreview_HasNoSideEffects(t *testing.T) {
	f := newServiceFixture(t, Config{AllowZeroNet: true}, basicOnlyResolver(30000))

	created := false
	bonus := adjustment.Adjustment{ID: uuid.New(), Amount: 2000, Reason: "referral bonus"}
	f.repo.FindEmployeeForRunFn = func(ctx context.Context, companyID, employeeID string) (*RunEmployee, error) {
		return &RunEmployee{ID: testEmployeeID, FullName: "Asha Nair"}, nil
	}
	f.repo.CreatePayslipFn = func(ctx context.Context, payslip *Payslip) error {
		created = true
		return nil
	}
	f.ledger.FetchApprovedFn = func(ctx context.Context, companyID, employeeID, month string) ([]adjustment.Adjustment, error) {
		return []adjustment.Adjustment{bonus}, nil
	}
	f.attendance.FindRowsForPeriodFn = func(ctx context.Context, companyID, employeeID string, periodStart, periodEnd time.Time) ([]attendance.Attendance, error) {
		return juneAttendance(25), nil
	}

	req := PreviewRequest{EmployeeID: testEmployeeID.String(), PeriodYear: 2026, PeriodMonth: 6}
	resp, err := f.svc.Preview(context.Background(), testCompanyID, req)

	assert.NoError(t, err)
	assert.Equal(t, 25000.0, resp.GrossEarnings)
	assert.Equal(t, 2000.0, resp.AdjustmentTotal)
	assert.False(t, created)
	assert.Equal(t, 0, f.ledger.consumeCalls)

	// identical financial input previews to the identical audit hash
	again, err := f.svc.Preview(context.Background(), testCompanyID, req)
	assert.NoError(t, err)
	assert.Equal(t, resp.AuditHash, again.AuditHash)
}
