package attendance

import (
	"net/http"

	"github.com/RushikJoshi/GT-HRMS-sub007/internal/shared/apperror"
)

var (
	ErrPeriodLocked = apperror.New(
		apperror.CodeInvalidState,
		"attendance period is locked by a payroll run",
		http.StatusConflict,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"period_start must be before or equal period_end",
		http.StatusBadRequest,
	)
)
