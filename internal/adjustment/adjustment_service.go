package adjustment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	adjustmenterrors "github.com/RushikJoshi/GT-HRMS-sub007/internal/adjustment/errors"
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/employee"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ledger is the narrow view the payroll pipeline consumes: fetch what is
// eligible, and consume it exactly once. WithTx binds consumption to the
// caller's transaction so the APPLIED flip commits together with the payslip
// that consumed it.
type Ledger interface {
	WithTx(tx *sql.Tx) Ledger
	FetchApproved(ctx context.Context, companyID, employeeID, month string) ([]Adjustment, error)
	ConsumeApproved(ctx context.Context, companyID string, ids []uuid.UUID, payslipID uuid.UUID) error
}

//go:generate mockgen -source=adjustment_service.go -destination=mock/adjustment_service_mock.go -package=mock
type Service interface {
	Ledger
	Create(ctx context.Context, companyID, actorID string, req CreateAdjustmentRequest) (AdjustmentResponse, error)
	GetAll(ctx context.Context, companyID string, req GetAdjustmentsFilterRequest) ([]AdjustmentResponse, int64, error)
	GetByID(ctx context.Context, companyID, id string) (AdjustmentResponse, error)
	Submit(ctx context.Context, companyID, actorID, id string) (AdjustmentResponse, error)
	Approve(ctx context.Context, companyID, approverID, id string) (AdjustmentResponse, error)
	Reject(ctx context.Context, companyID, approverID, id string) (AdjustmentResponse, error)
	Cancel(ctx context.Context, companyID, actorID, id string) (AdjustmentResponse, error)
}

type service struct {
	repo      Repository
	employees employee.Repository
}

func NewService(repo Repository, employees employee.Repository) Service {
	return &service{repo: repo, employees: employees}
}

func (s *service) WithTx(tx *sql.Tx) Ledger {
	return &service{repo: s.repo.WithTx(tx), employees: s.employees}
}

func (s *service) Create(
	ctx context.Context,
	companyID, actorID string,
	req CreateAdjustmentRequest,
) (AdjustmentResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return AdjustmentResponse{}, adjustmenterrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return AdjustmentResponse{}, adjustmenterrors.ErrInvalidActorID
	}
	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return AdjustmentResponse{}, adjustmenterrors.ErrInvalidEmployeeID
	}
	if _, err := time.Parse("2006-01", req.AdjustmentMonth); err != nil {
		return AdjustmentResponse{}, adjustmenterrors.ErrInvalidMonthFormat
	}
	if req.Amount == 0 {
		return AdjustmentResponse{}, adjustmenterrors.ErrZeroAmount
	}

	if _, err := s.employees.FindByIDAndCompany(ctx, companyID, req.EmployeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AdjustmentResponse{}, adjustmenterrors.ErrEmployeeNotFound
		}
		return AdjustmentResponse{}, err
	}

	adj := &Adjustment{
		ID:              uuid.New(),
		CompanyID:       companyUUID,
		EmployeeID:      employeeUUID,
		AdjustmentMonth: req.AdjustmentMonth,
		Amount:          req.Amount,
		Reason:          req.Reason,
		Status:          StatusDraft,
		CreatedBy:       actorUUID,
	}

	if err := s.repo.Create(ctx, adj); err != nil {
		return AdjustmentResponse{}, err
	}

	return mapToResponse(*adj), nil
}

func (s *service) GetAll(
	ctx context.Context,
	companyID string,
	req GetAdjustmentsFilterRequest,
) ([]AdjustmentResponse, int64, error) {
	filter := QueryFilter{
		Page:  req.Page,
		Limit: req.Limit,
	}
	if req.EmployeeID != "" {
		filter.EmployeeID = &req.EmployeeID
	}
	if req.Month != "" {
		filter.Month = &req.Month
	}
	if req.Status != "" {
		filter.Status = &req.Status
	}

	adjustments, total, err := s.repo.FindAllByCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AdjustmentResponse, len(adjustments))
	for i, adj := range adjustments {
		res[i] = mapToResponse(adj)
	}
	return res, total, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (AdjustmentResponse, error) {
	adj, err := s.findOne(ctx, companyID, id)
	if err != nil {
		return AdjustmentResponse{}, err
	}
	return mapToResponse(*adj), nil
}

func (s *service) Submit(ctx context.Context, companyID, actorID, id string) (AdjustmentResponse, error) {
	adj, err := s.findOne(ctx, companyID, id)
	if err != nil {
		return AdjustmentResponse{}, err
	}
	if adj.Status != StatusDraft {
		return AdjustmentResponse{}, adjustmenterrors.ErrInvalidStatusTransition
	}

	adj.Status = StatusPendingApproval
	if err := s.repo.Update(ctx, adj); err != nil {
		return AdjustmentResponse{}, err
	}
	return mapToResponse(*adj), nil
}

// Approve enforces maker-checker: the creator of an adjustment can never be
// the one who approves it.
func (s *service) Approve(ctx context.Context, companyID, approverID, id string) (AdjustmentResponse, error) {
	return s.review(ctx, companyID, approverID, id, StatusApproved)
}

// Reject is held to the same maker-checker rule as Approve: rejecting your
// own adjustment would let a maker silently retire evidence of an attempt.
func (s *service) Reject(ctx context.Context, companyID, approverID, id string) (AdjustmentResponse, error) {
	return s.review(ctx, companyID, approverID, id, StatusRejected)
}

func (s *service) review(ctx context.Context, companyID, approverID, id, target string) (AdjustmentResponse, error) {
	approverUUID, err := uuid.Parse(approverID)
	if err != nil {
		return AdjustmentResponse{}, adjustmenterrors.ErrInvalidActorID
	}

	adj, err := s.findOne(ctx, companyID, id)
	if err != nil {
		return AdjustmentResponse{}, err
	}
	if adj.Status != StatusPendingApproval {
		return AdjustmentResponse{}, adjustmenterrors.ErrInvalidStatusTransition
	}
	if adj.CreatedBy == approverUUID {
		return AdjustmentResponse{}, adjustmenterrors.ErrMakerChecker
	}

	adj.Status = target
	adj.ApprovedBy = &approverUUID
	if err := s.repo.Update(ctx, adj); err != nil {
		return AdjustmentResponse{}, err
	}
	return mapToResponse(*adj), nil
}

func (s *service) Cancel(ctx context.Context, companyID, actorID, id string) (AdjustmentResponse, error) {
	adj, err := s.findOne(ctx, companyID, id)
	if err != nil {
		return AdjustmentResponse{}, err
	}

	switch adj.Status {
	case StatusDraft, StatusPendingApproval, StatusApproved:
		adj.Status = StatusCancelled
	default:
		return AdjustmentResponse{}, adjustmenterrors.ErrInvalidStatusTransition
	}

	if err := s.repo.Update(ctx, adj); err != nil {
		return AdjustmentResponse{}, err
	}
	return mapToResponse(*adj), nil
}

func (s *service) FetchApproved(ctx context.Context, companyID, employeeID, month string) ([]Adjustment, error) {
	return s.repo.FindApprovedForMonth(ctx, companyID, employeeID, month)
}

// ConsumeApproved transitions the given adjustments APPROVED -> APPLIED,
// stamping the consuming payslip. The update is conditional on the current
// status, so a row consumed by a concurrent run surfaces as a count
// mismatch instead of a silent double-spend.
func (s *service) ConsumeApproved(ctx context.Context, companyID string, ids []uuid.UUID, payslipID uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	affected, err := s.repo.MarkApplied(ctx, companyID, ids, payslipID)
	if err != nil {
		return err
	}
	if affected != int64(len(ids)) {
		return adjustmenterrors.ErrAlreadyConsumed
	}
	return nil
}

func (s *service) findOne(ctx context.Context, companyID, id string) (*Adjustment, error) {
	adj, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, adjustmenterrors.ErrAdjustmentNotFound
		}
		return nil, err
	}
	return adj, nil
}

func mapToResponse(adj Adjustment) AdjustmentResponse {
	resp := AdjustmentResponse{
		ID:              adj.ID.String(),
		CompanyID:       adj.CompanyID.String(),
		EmployeeID:      adj.EmployeeID.String(),
		AdjustmentMonth: adj.AdjustmentMonth,
		Amount:          adj.Amount,
		Reason:          adj.Reason,
		Status:          adj.Status,
		CreatedBy:       adj.CreatedBy.String(),
	}
	if adj.ApprovedBy != nil {
		v := adj.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if adj.AppliedPayslipID != nil {
		v := adj.AppliedPayslipID.String()
		resp.AppliedPayslipID = &v
	}
	return resp
}
