package payrollerrors

import (
	"net/http"

	"github.com/RushikJoshi/GT-HRMS-sub007/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidRunID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid payroll run id",
		http.StatusBadRequest,
	)
	ErrInvalidPeriod = apperror.New(
		apperror.CodeInvalidInput,
		"invalid payroll period, expected year >= 2000 and month 1-12",
		http.StatusBadRequest,
	)
	ErrRunNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll run not found",
		http.StatusNotFound,
	)
	ErrRunAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"a payroll run already exists for this period",
		http.StatusConflict,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid payroll run status transition",
		http.StatusBadRequest,
	)
	ErrRunNotRecalculable = apperror.New(
		apperror.CodeInvalidState,
		"payroll run has already been calculated and cannot be recalculated",
		http.StatusConflict,
	)
	ErrRunFinalized = apperror.New(
		apperror.CodeInvalidState,
		"payroll run is finalized and its payslips are immutable",
		http.StatusConflict,
	)
	ErrPayslipNotFound = apperror.New(
		apperror.CodeNotFound,
		"payslip not found",
		http.StatusNotFound,
	)
	ErrNoEmployees = apperror.New(
		apperror.CodeInvalidState,
		"company has no active employees to calculate",
		http.StatusBadRequest,
	)
)
