package tax

import "context"

// Profile carries the employee facts the withholding service prices on.
type Profile struct {
	EmployeeID string `json:"employee_id"`
	Regime     string `json:"regime,omitempty"`
	Age        int    `json:"age,omitempty"`
}

// Period identifies the payroll period the withholding applies to.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type Input struct {
	TaxableMonthlyIncome float64 `json:"taxable_monthly_income"`
	Profile              Profile `json:"profile"`
	Period               Period  `json:"period"`
}

type Result struct {
	Monthly float64 `json:"monthly"`
	Annual  float64 `json:"annual"`
	Regime  string  `json:"regime"`
}

// Calculator is the external withholding collaborator. It may fail; callers
// are expected to catch the error, degrade the tax to zero and flag the
// payslip rather than abort the employee.
//
//go:generate mockgen -source=calculator.go -destination=mock/calculator_mock.go -package=mock
type Calculator interface {
	Calculate(ctx context.Context, in Input) (Result, error)
}

// ZeroCalculator is used when no withholding service is configured (zero
// bracket tenants, test environments). Always returns zero tax.
type ZeroCalculator struct{}

func (ZeroCalculator) Calculate(_ context.Context, _ Input) (Result, error) {
	return Result{}, nil
}
