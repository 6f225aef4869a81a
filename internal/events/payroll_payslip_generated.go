package events

import "time"

const PayrollPayslipGeneratedTopic = "hr.payroll.payslip.generated.v1"

type PayrollPayslipGeneratedEvent struct {
	EventType   string    `json:"event_type"`
	PayslipID   string    `json:"payslip_id"`
	RunID       string    `json:"run_id"`
	CompanyID   string    `json:"company_id"`
	EmployeeID  string    `json:"employee_id"`
	PeriodYear  int       `json:"period_year"`
	PeriodMonth int       `json:"period_month"`
	NetPay      float64   `json:"net_pay"`
	AuditHash   string    `json:"audit_hash"`
	OccurredAt  time.Time `json:"occurred_at"`
}
