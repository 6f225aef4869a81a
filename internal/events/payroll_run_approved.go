package events

import "time"

const PayrollRunApprovedTopic = "hr.payroll.run.approved.v1"

type PayrollRunApprovedEvent struct {
	EventType   string    `json:"event_type"`
	RunID       string    `json:"run_id"`
	CompanyID   string    `json:"company_id"`
	PeriodYear  int       `json:"period_year"`
	PeriodMonth int       `json:"period_month"`
	TotalNet    float64   `json:"total_net"`
	ApprovedBy  string    `json:"approved_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}
