package payroll

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RushikJoshi/GT-HRMS-sub007/internal/adjustment"
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/attendance"
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/compensation"
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/events"
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/messaging/kafka"
	payrollerrors "github.com/RushikJoshi/GT-HRMS-sub007/internal/payroll/errors"
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/shared/contextutil"
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/tax"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const defaultParallelism = 4

// Config tunes the run orchestrator. AllowZeroNet gates whether a fully
// deducted employee still gets a zero payslip or is parked in the error list.
type Config struct {
	Parallelism  int
	AllowZeroNet bool
}

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	CreateRun(ctx context.Context, companyID, actorID string, req CreateRunRequest) (RunResponse, error)
	GetAllRuns(ctx context.Context, companyID string) ([]RunResponse, error)
	GetRun(ctx context.Context, companyID, id string) (RunResponse, error)
	Calculate(ctx context.Context, companyID, actorID, runID string) (RunResponse, error)
	Approve(ctx context.Context, companyID, actorID, runID string) (RunResponse, error)
	MarkPaid(ctx context.Context, companyID, actorID, runID string) (RunResponse, error)
	Cancel(ctx context.Context, companyID, actorID, runID string) (RunResponse, error)
	Reset(ctx context.Context, companyID, actorID, runID string) (RunResponse, error)
	GetPayslips(ctx context.Context, companyID, runID string) ([]PayslipResponse, error)
	GetPayslip(ctx context.Context, companyID, id string) (PayslipResponse, error)
	Preview(ctx context.Context, companyID string, req PreviewRequest) (PayslipResponse, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	outbox     kafka.OutboxRepository
	resolver   compensation.Resolver
	attendance attendance.Repository
	ledger     adjustment.Ledger
	deductions *DeductionEngine
	preview    *PreviewCache
	cfg        Config
	logger     *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	outbox kafka.OutboxRepository,
	resolver compensation.Resolver,
	attendanceRepo attendance.Repository,
	ledger adjustment.Ledger,
	deductions *DeductionEngine,
	preview *PreviewCache,
	cfg Config,
	logger *zap.Logger,
) Service {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = defaultParallelism
	}
	if logger == nil {
		logger = zap.L()
	}
	return &service{
		db:         db,
		repo:       repo,
		outbox:     outbox,
		resolver:   resolver,
		attendance: attendanceRepo,
		ledger:     ledger,
		deductions: deductions,
		preview:    preview,
		cfg:        cfg,
		logger:     logger.Named("payroll.run"),
	}
}

func (s *service) CreateRun(
	ctx context.Context,
	companyID, actorID string,
	req CreateRunRequest,
) (RunResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return RunResponse{}, payrollerrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return RunResponse{}, payrollerrors.ErrInvalidActorID
	}
	if req.PeriodYear < 2000 || req.PeriodMonth < 1 || req.PeriodMonth > 12 {
		return RunResponse{}, payrollerrors.ErrInvalidPeriod
	}

	existing, err := s.repo.FindRunByPeriod(ctx, companyID, req.PeriodYear, req.PeriodMonth)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return RunResponse{}, err
	}
	if existing != nil {
		return RunResponse{}, payrollerrors.ErrRunAlreadyExists
	}

	run := &PayrollRun{
		ID:          uuid.New(),
		CompanyID:   companyUUID,
		PeriodYear:  req.PeriodYear,
		PeriodMonth: req.PeriodMonth,
		Status:      StatusInitiated,
		Errors:      RunErrorList{},
		CreatedBy:   actorUUID,
	}
	if err := s.repo.CreateRun(ctx, run); err != nil {
		return RunResponse{}, err
	}

	return mapRunToResponse(*run), nil
}

func (s *service) GetAllRuns(ctx context.Context, companyID string) ([]RunResponse, error) {
	runs, err := s.repo.FindAllRunsByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	resp := make([]RunResponse, len(runs))
	for i, run := range runs {
		resp[i] = mapRunToResponse(run)
	}
	return resp, nil
}

func (s *service) GetRun(ctx context.Context, companyID, id string) (RunResponse, error) {
	run, err := s.findRun(ctx, companyID, id)
	if err != nil {
		return RunResponse{}, err
	}
	return mapRunToResponse(*run), nil
}

// employeeResult is the per-goroutine accumulation unit. Each worker fills
// exactly one slot; aggregation happens afterwards on a single goroutine.
type employeeResult struct {
	employee      RunEmployee
	payslip       Payslip
	adjustmentIDs []uuid.UUID
	err           error
}

// Calculate runs the full pipeline for every employee of the company and
// moves the run INITIATED -> CALCULATED. One employee failing is recorded in
// the run's error list and never aborts the batch. A run that has already
// been calculated is rejected; recalculation goes through Reset first.
func (s *service) Calculate(ctx context.Context, companyID, actorID, runID string) (RunResponse, error) {
	if _, err := uuid.Parse(actorID); err != nil {
		return RunResponse{}, payrollerrors.ErrInvalidActorID
	}

	run, err := s.findRun(ctx, companyID, runID)
	if err != nil {
		return RunResponse{}, err
	}
	switch run.Status {
	case StatusInitiated:
	case StatusCalculated, StatusApproved, StatusPaid:
		return RunResponse{}, payrollerrors.ErrRunNotRecalculable
	default:
		return RunResponse{}, payrollerrors.ErrInvalidStatusTransition
	}

	employees, err := s.repo.ListEmployeesForRun(ctx, companyID)
	if err != nil {
		return RunResponse{}, err
	}
	if len(employees) == 0 {
		return RunResponse{}, payrollerrors.ErrNoEmployees
	}

	periodStart, periodEnd := periodBounds(run.PeriodYear, run.PeriodMonth)
	holidays, err := s.attendance.FindHolidaySet(ctx, companyID, periodStart, periodEnd)
	if err != nil {
		return RunResponse{}, err
	}

	log := contextutil.GetLogger(ctx, s.logger).With(
		zap.String("run_id", runID),
		zap.String("company_id", companyID),
		zap.Int("employees", len(employees)),
	)
	log.Info("payroll calculation started")

	results := make([]employeeResult, len(employees))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Parallelism)
	for i := range employees {
		i := i
		g.Go(func() error {
			results[i] = s.computeEmployee(gctx, companyID, run, employees[i], holidays, periodStart, periodEnd)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RunResponse{}, err
	}

	// Single-writer commit: all aggregation and persistence below happens on
	// this goroutine only.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RunResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	outboxTx := s.outbox.WithTx(tx)
	ledgerTx := s.ledger.WithTx(tx)

	run.EmployeeCount = len(employees)
	run.ProcessedCount = 0
	run.TotalGross, run.TotalDeductions, run.TotalNet = 0, 0, 0
	run.Errors = RunErrorList{}

	for _, res := range results {
		if res.err != nil {
			run.Errors = append(run.Errors, RunError{
				EmployeeID: res.employee.ID.String(),
				Message:    res.err.Error(),
			})
			continue
		}
		if res.payslip.NetPay == 0 && !s.cfg.AllowZeroNet {
			run.Errors = append(run.Errors, RunError{
				EmployeeID: res.employee.ID.String(),
				Message:    "zero net pay blocked by policy",
			})
			continue
		}

		if err := ledgerTx.ConsumeApproved(ctx, companyID, res.adjustmentIDs, res.payslip.ID); err != nil {
			run.Errors = append(run.Errors, RunError{
				EmployeeID: res.employee.ID.String(),
				Message:    err.Error(),
			})
			continue
		}
		if err := qtx.CreatePayslip(ctx, &res.payslip); err != nil {
			return RunResponse{}, err
		}
		if err := s.queuePayslipEvent(ctx, outboxTx, res.payslip); err != nil {
			return RunResponse{}, err
		}

		run.ProcessedCount++
		run.TotalGross = round2(run.TotalGross + res.payslip.GrossEarnings)
		run.TotalDeductions = round2(run.TotalDeductions + res.payslip.TotalDeductions)
		run.TotalNet = round2(run.TotalNet + res.payslip.NetPay)
	}

	run.Status = StatusCalculated
	if err := qtx.UpdateRun(ctx, run); err != nil {
		return RunResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return RunResponse{}, err
	}

	if err := s.attendance.LockPeriod(ctx, companyID, run.PeriodYear, run.PeriodMonth, run.ID); err != nil {
		log.Error("attendance period lock failed", zap.Error(err))
	}

	log.Info("payroll calculation finished",
		zap.Int("processed", run.ProcessedCount),
		zap.Int("failed", len(run.Errors)),
		zap.Float64("total_net", run.TotalNet),
	)
	return mapRunToResponse(*run), nil
}

// computeEmployee is the per-employee pipeline: resolve compensation,
// summarize attendance, price earnings, run deductions, fetch the approved
// ledger rows, and assemble the payslip. It performs no writes.
func (s *service) computeEmployee(
	ctx context.Context,
	companyID string,
	run *PayrollRun,
	emp RunEmployee,
	holidays map[string]struct{},
	periodStart, periodEnd time.Time,
) employeeResult {
	res := employeeResult{employee: emp}

	comp := s.resolver.Resolve(ctx, companyID, compensation.ResolveTarget{
		EmployeeID: emp.ID.String(),
		FullName:   emp.FullName,
	})

	rows, err := s.attendance.FindRowsForPeriod(ctx, companyID, emp.ID.String(), periodStart, periodEnd)
	if err != nil {
		res.err = fmt.Errorf("attendance lookup: %w", err)
		return res
	}
	summary := attendance.Summarize(rows, holidays, emp.JoinDate, periodStart, periodEnd)

	gross := ComputeGross(comp, summary, s.logger)
	deductions := s.deductions.Compute(ctx, gross, comp,
		tax.Profile{EmployeeID: emp.ID.String()},
		tax.Period{Year: run.PeriodYear, Month: run.PeriodMonth},
	)

	month := fmt.Sprintf("%04d-%02d", run.PeriodYear, run.PeriodMonth)
	approved, err := s.ledger.FetchApproved(ctx, companyID, emp.ID.String(), month)
	if err != nil {
		res.err = fmt.Errorf("adjustment lookup: %w", err)
		return res
	}

	consumed := make([]ConsumedAdjustment, 0, len(approved))
	res.adjustmentIDs = make([]uuid.UUID, 0, len(approved))
	for _, adj := range approved {
		consumed = append(consumed, ConsumedAdjustment{ID: adj.ID, Amount: adj.Amount, Reason: adj.Reason})
		res.adjustmentIDs = append(res.adjustmentIDs, adj.ID)
	}

	res.payslip = BuildPayslip(BuildInput{
		RunID:        run.ID,
		CompanyID:    run.CompanyID,
		PeriodYear:   run.PeriodYear,
		PeriodMonth:  run.PeriodMonth,
		Employee:     emp,
		Compensation: comp,
		Attendance:   summary,
		Gross:        gross,
		Deductions:   deductions,
		Adjustments:  consumed,
	})
	return res
}

func (s *service) Approve(ctx context.Context, companyID, actorID, runID string) (RunResponse, error) {
	approverUUID, err := uuid.Parse(actorID)
	if err != nil {
		return RunResponse{}, payrollerrors.ErrInvalidActorID
	}

	run, err := s.findRun(ctx, companyID, runID)
	if err != nil {
		return RunResponse{}, err
	}
	if run.Status != StatusCalculated {
		return RunResponse{}, payrollerrors.ErrInvalidStatusTransition
	}

	now := time.Now().UTC()
	run.Status = StatusApproved
	run.ApprovedBy = &approverUUID
	run.ApprovedAt = &now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RunResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	outboxTx := s.outbox.WithTx(tx)

	if err := qtx.UpdateRun(ctx, run); err != nil {
		return RunResponse{}, err
	}
	if err := s.queueRunApprovedEvent(ctx, outboxTx, *run); err != nil {
		return RunResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return RunResponse{}, err
	}

	return mapRunToResponse(*run), nil
}

func (s *service) MarkPaid(ctx context.Context, companyID, actorID, runID string) (RunResponse, error) {
	if _, err := uuid.Parse(actorID); err != nil {
		return RunResponse{}, payrollerrors.ErrInvalidActorID
	}

	run, err := s.findRun(ctx, companyID, runID)
	if err != nil {
		return RunResponse{}, err
	}
	if run.Status != StatusApproved {
		return RunResponse{}, payrollerrors.ErrInvalidStatusTransition
	}

	now := time.Now().UTC()
	run.Status = StatusPaid
	run.PaidAt = &now
	if err := s.repo.UpdateRun(ctx, run); err != nil {
		return RunResponse{}, err
	}
	return mapRunToResponse(*run), nil
}

// Cancel is allowed from any state except PAID. Payslips generated by a
// cancelled run are deleted; money already paid out can only be corrected
// through next period's adjustments.
func (s *service) Cancel(ctx context.Context, companyID, actorID, runID string) (RunResponse, error) {
	if _, err := uuid.Parse(actorID); err != nil {
		return RunResponse{}, payrollerrors.ErrInvalidActorID
	}

	run, err := s.findRun(ctx, companyID, runID)
	if err != nil {
		return RunResponse{}, err
	}
	if run.Status == StatusPaid {
		return RunResponse{}, payrollerrors.ErrRunFinalized
	}
	if run.Status == StatusCancelled {
		return RunResponse{}, payrollerrors.ErrInvalidStatusTransition
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RunResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if run.Status == StatusCalculated || run.Status == StatusApproved {
		if err := qtx.DeletePayslipsByRun(ctx, companyID, runID); err != nil {
			return RunResponse{}, err
		}
	}

	run.Status = StatusCancelled
	if err := qtx.UpdateRun(ctx, run); err != nil {
		return RunResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return RunResponse{}, err
	}

	return mapRunToResponse(*run), nil
}

// Reset moves a CALCULATED or APPROVED run back to INITIATED, purging its
// payslips so the next Calculate starts clean.
func (s *service) Reset(ctx context.Context, companyID, actorID, runID string) (RunResponse, error) {
	if _, err := uuid.Parse(actorID); err != nil {
		return RunResponse{}, payrollerrors.ErrInvalidActorID
	}

	run, err := s.findRun(ctx, companyID, runID)
	if err != nil {
		return RunResponse{}, err
	}
	if run.Status != StatusCalculated && run.Status != StatusApproved {
		return RunResponse{}, payrollerrors.ErrInvalidStatusTransition
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RunResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.DeletePayslipsByRun(ctx, companyID, runID); err != nil {
		return RunResponse{}, err
	}

	run.Status = StatusInitiated
	run.TotalGross, run.TotalDeductions, run.TotalNet = 0, 0, 0
	run.ProcessedCount = 0
	run.Errors = RunErrorList{}
	run.ApprovedBy = nil
	run.ApprovedAt = nil
	if err := qtx.UpdateRun(ctx, run); err != nil {
		return RunResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return RunResponse{}, err
	}

	return mapRunToResponse(*run), nil
}

func (s *service) GetPayslips(ctx context.Context, companyID, runID string) ([]PayslipResponse, error) {
	if _, err := s.findRun(ctx, companyID, runID); err != nil {
		return nil, err
	}
	payslips, err := s.repo.FindPayslipsByRun(ctx, companyID, runID)
	if err != nil {
		return nil, err
	}
	resp := make([]PayslipResponse, len(payslips))
	for i, p := range payslips {
		resp[i] = mapPayslipToResponse(p)
	}
	return resp, nil
}

func (s *service) GetPayslip(ctx context.Context, companyID, id string) (PayslipResponse, error) {
	payslip, err := s.repo.FindPayslipByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PayslipResponse{}, payrollerrors.ErrPayslipNotFound
		}
		return PayslipResponse{}, err
	}
	return mapPayslipToResponse(*payslip), nil
}

// Preview runs the identical calculation for one employee with zero side
// effects: nothing is persisted and approved adjustments are read but never
// consumed.
func (s *service) Preview(ctx context.Context, companyID string, req PreviewRequest) (PayslipResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return PayslipResponse{}, payrollerrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(req.EmployeeID); err != nil {
		return PayslipResponse{}, payrollerrors.ErrInvalidEmployeeID
	}
	if req.PeriodYear < 2000 || req.PeriodMonth < 1 || req.PeriodMonth > 12 {
		return PayslipResponse{}, payrollerrors.ErrInvalidPeriod
	}

	key := previewKey(companyID, req.EmployeeID, req.PeriodYear, req.PeriodMonth)
	return s.preview.GetOrCompute(ctx, key, func() (PayslipResponse, error) {
		return s.computePreview(ctx, companyID, req)
	})
}

func (s *service) computePreview(ctx context.Context, companyID string, req PreviewRequest) (PayslipResponse, error) {
	emp, err := s.repo.FindEmployeeForRun(ctx, companyID, req.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PayslipResponse{}, payrollerrors.ErrInvalidEmployeeID
		}
		return PayslipResponse{}, err
	}

	periodStart, periodEnd := periodBounds(req.PeriodYear, req.PeriodMonth)
	holidays, err := s.attendance.FindHolidaySet(ctx, companyID, periodStart, periodEnd)
	if err != nil {
		return PayslipResponse{}, err
	}

	companyUUID := uuid.MustParse(companyID)
	phantom := PayrollRun{
		ID:          uuid.Nil,
		CompanyID:   companyUUID,
		PeriodYear:  req.PeriodYear,
		PeriodMonth: req.PeriodMonth,
	}
	res := s.computeEmployee(ctx, companyID, &phantom, *emp, holidays, periodStart, periodEnd)
	if res.err != nil {
		return PayslipResponse{}, res.err
	}
	return mapPayslipToResponse(res.payslip), nil
}

func (s *service) findRun(ctx context.Context, companyID, id string) (*PayrollRun, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, payrollerrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, payrollerrors.ErrInvalidRunID
	}

	run, err := s.repo.FindRunByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payrollerrors.ErrRunNotFound
		}
		return nil, err
	}
	return run, nil
}

func (s *service) queueRunApprovedEvent(ctx context.Context, outbox kafka.OutboxRepository, run PayrollRun) error {
	event := events.PayrollRunApprovedEvent{
		EventType:   "payroll.run.approved",
		RunID:       run.ID.String(),
		CompanyID:   run.CompanyID.String(),
		PeriodYear:  run.PeriodYear,
		PeriodMonth: run.PeriodMonth,
		TotalNet:    run.TotalNet,
		OccurredAt:  time.Now().UTC(),
	}
	if run.ApprovedBy != nil {
		event.ApprovedBy = run.ApprovedBy.String()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "payroll_run",
		AggregateID:   run.ID.String(),
		EventType:     event.EventType,
		Topic:         events.PayrollRunApprovedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) queuePayslipEvent(ctx context.Context, outbox kafka.OutboxRepository, p Payslip) error {
	event := events.PayrollPayslipGeneratedEvent{
		EventType:   "payroll.payslip.generated",
		PayslipID:   p.ID.String(),
		RunID:       p.RunID.String(),
		CompanyID:   p.CompanyID.String(),
		EmployeeID:  p.EmployeeID.String(),
		PeriodYear:  p.PeriodYear,
		PeriodMonth: p.PeriodMonth,
		NetPay:      p.NetPay,
		AuditHash:   p.AuditHash,
		OccurredAt:  time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "payslip",
		AggregateID:   p.ID.String(),
		EventType:     event.EventType,
		Topic:         events.PayrollPayslipGeneratedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func periodBounds(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}
