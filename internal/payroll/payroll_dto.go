package payroll

import (
	"time"

	"github.com/RushikJoshi/GT-HRMS-sub007/internal/attendance"
)

type CreateRunRequest struct {
	PeriodYear  int `json:"period_year" binding:"required,min=2000,max=2100"`
	PeriodMonth int `json:"period_month" binding:"required,min=1,max=12"`
}

type PreviewRequest struct {
	EmployeeID  string `form:"employee_id" binding:"required,uuid"`
	PeriodYear  int    `form:"period_year" binding:"required,min=2000,max=2100"`
	PeriodMonth int    `form:"period_month" binding:"required,min=1,max=12"`
}

type RunResponse struct {
	ID          string `json:"id"`
	CompanyID   string `json:"company_id"`
	PeriodYear  int    `json:"period_year"`
	PeriodMonth int    `json:"period_month"`
	Status      string `json:"status"`

	TotalGross      float64 `json:"total_gross"`
	TotalDeductions float64 `json:"total_deductions"`
	TotalNet        float64 `json:"total_net"`
	EmployeeCount   int     `json:"employee_count"`
	ProcessedCount  int     `json:"processed_count"`

	Errors []RunError `json:"errors"`

	CreatedBy  string  `json:"created_by"`
	ApprovedBy *string `json:"approved_by,omitempty"`
	ApprovedAt *string `json:"approved_at,omitempty"`
	PaidAt     *string `json:"paid_at,omitempty"`
}

type PayslipResponse struct {
	ID          string `json:"id"`
	RunID       string `json:"run_id"`
	CompanyID   string `json:"company_id"`
	EmployeeID  string `json:"employee_id"`
	PeriodYear  int    `json:"period_year"`
	PeriodMonth int    `json:"period_month"`

	EmployeeName string  `json:"employee_name"`
	EmployeeCode string  `json:"employee_code,omitempty"`
	Designation  string  `json:"designation,omitempty"`
	Department   string  `json:"department,omitempty"`
	JoinDate     *string `json:"join_date,omitempty"`

	CompensationSource string               `json:"compensation_source"`
	Attendance         attendance.Summary   `json:"attendance"`
	Lines              []Line               `json:"lines"`
	Adjustments        []ConsumedAdjustment `json:"adjustments"`

	GrossEarnings   float64 `json:"gross_earnings"`
	TaxableGross    float64 `json:"taxable_gross"`
	BasicPaid       float64 `json:"basic_paid"`
	PFAmount        float64 `json:"pf_amount"`
	ESIAmount       float64 `json:"esi_amount"`
	PreTaxTotal     float64 `json:"pre_tax_total"`
	TaxableIncome   float64 `json:"taxable_income"`
	IncomeTax       float64 `json:"income_tax"`
	PostTaxTotal    float64 `json:"post_tax_total"`
	TotalDeductions float64 `json:"total_deductions"`
	AdjustmentTotal float64 `json:"adjustment_total"`
	NetPay          float64 `json:"net_pay"`

	TaxDegraded         bool `json:"tax_degraded"`
	BasicFallback       bool `json:"basic_fallback"`
	NetClamped          bool `json:"net_clamped"`
	AttendanceDefaulted bool `json:"attendance_defaulted"`
	GrossDerived        bool `json:"gross_derived"`

	AuditHash string `json:"audit_hash"`
}

func mapRunToResponse(run PayrollRun) RunResponse {
	resp := RunResponse{
		ID:              run.ID.String(),
		CompanyID:       run.CompanyID.String(),
		PeriodYear:      run.PeriodYear,
		PeriodMonth:     run.PeriodMonth,
		Status:          run.Status,
		TotalGross:      run.TotalGross,
		TotalDeductions: run.TotalDeductions,
		TotalNet:        run.TotalNet,
		EmployeeCount:   run.EmployeeCount,
		ProcessedCount:  run.ProcessedCount,
		Errors:          run.Errors,
		CreatedBy:       run.CreatedBy.String(),
	}
	if resp.Errors == nil {
		resp.Errors = []RunError{}
	}
	if run.ApprovedBy != nil {
		v := run.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if run.ApprovedAt != nil {
		v := run.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	if run.PaidAt != nil {
		v := run.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &v
	}
	return resp
}

func mapPayslipToResponse(p Payslip) PayslipResponse {
	resp := PayslipResponse{
		ID:          p.ID.String(),
		RunID:       p.RunID.String(),
		CompanyID:   p.CompanyID.String(),
		EmployeeID:  p.EmployeeID.String(),
		PeriodYear:  p.PeriodYear,
		PeriodMonth: p.PeriodMonth,

		EmployeeName: p.EmployeeName,
		EmployeeCode: p.EmployeeCode,
		Designation:  p.Designation,
		Department:   p.Department,

		CompensationSource: p.CompensationSource,
		Attendance:         p.Attendance,
		Lines:              p.Lines,
		Adjustments:        p.Adjustments,

		GrossEarnings:   p.GrossEarnings,
		TaxableGross:    p.TaxableGross,
		BasicPaid:       p.BasicPaid,
		PFAmount:        p.PFAmount,
		ESIAmount:       p.ESIAmount,
		PreTaxTotal:     p.PreTaxTotal,
		TaxableIncome:   p.TaxableIncome,
		IncomeTax:       p.IncomeTax,
		PostTaxTotal:    p.PostTaxTotal,
		TotalDeductions: p.TotalDeductions,
		AdjustmentTotal: p.AdjustmentTotal,
		NetPay:          p.NetPay,

		TaxDegraded:         p.TaxDegraded,
		BasicFallback:       p.BasicFallback,
		NetClamped:          p.NetClamped,
		AttendanceDefaulted: p.AttendanceDefaulted,
		GrossDerived:        p.GrossDerived,

		AuditHash: p.AuditHash,
	}
	if resp.Lines == nil {
		resp.Lines = []Line{}
	}
	if resp.Adjustments == nil {
		resp.Adjustments = []ConsumedAdjustment{}
	}
	if p.JoinDate != nil {
		v := p.JoinDate.Format("2006-01-02")
		resp.JoinDate = &v
	}
	return resp
}
