package adjustment

type CreateAdjustmentRequest struct {
	EmployeeID      string  `json:"employee_id" binding:"required,uuid"`
	AdjustmentMonth string  `json:"adjustment_month" binding:"required"`
	Amount          float64 `json:"amount" binding:"required"`
	Reason          string  `json:"reason" binding:"required"`
}

type GetAdjustmentsFilterRequest struct {
	EmployeeID string `form:"employee_id"`
	Month      string `form:"month"`
	Status     string `form:"status"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

type AdjustmentResponse struct {
	ID               string  `json:"id"`
	CompanyID        string  `json:"company_id"`
	EmployeeID       string  `json:"employee_id"`
	AdjustmentMonth  string  `json:"adjustment_month"`
	Amount           float64 `json:"amount"`
	Reason           string  `json:"reason"`
	Status           string  `json:"status"`
	CreatedBy        string  `json:"created_by"`
	ApprovedBy       *string `json:"approved_by,omitempty"`
	AppliedPayslipID *string `json:"applied_payslip_id,omitempty"`
}
