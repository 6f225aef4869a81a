package adjustmenterrors

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
	ErrInvalidMonthFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid adjustment month, expected YYYY-MM",
		http.StatusBadRequest,
	)
	ErrZeroAmount = apperror.New(
		apperror.CodeInvalidInput,
		"adjustment amount cannot be zero",
		http.StatusBadRequest,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeInvalidInput,
		"employee does not belong to this company",
		http.StatusBadRequest,
	)
	ErrAdjustmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"adjustment not found",
		http.StatusNotFound,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid adjustment status transition",
		http.StatusBadRequest,
	)
	ErrMakerChecker = apperror.New(
		apperror.CodeForbidden,
		"an adjustment cannot be approved or rejected by its creator",
		http.StatusForbidden,
	)
	ErrAlreadyConsumed = apperror.New(
		apperror.CodeConflict,
		"adjustment was already consumed by another payslip",
		http.StatusConflict,
	)
)
