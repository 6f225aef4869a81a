package payroll

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/RushikJoshi/GT-HRMS-sub007/internal/compensation"
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/tax"

	"go.uber.org/zap"
)

// Statutory parameters. PF contributions are capped at the wage ceiling; ESI
// applies only while gross stays under the eligibility ceiling.
const (
	pfRate          = 0.12
	pfWageCeiling   = 15000.0
	esiRate         = 0.0075
	esiGrossCeiling = 21000.0

	defaultTaxTimeout = 3 * time.Second
)

// statutoryKeys are deduction components the engine computes itself. A row
// carrying one of these keys enrolls the employee in that scheme; its
// configured amount is ignored rather than double-charged.
var statutoryKeys = map[string]struct{}{
	"pf":  {},
	"esi": {},
	"tds": {},
}

// lopKeys are never honored as deduction components: loss of pay is already
// encoded in the pro-rated earnings and deducting it again would charge the
// employee twice.
var lopKeys = map[string]struct{}{
	"lop":         {},
	"loss_of_pay": {},
}

// postTaxKeys identifies configured deductions that apply after tax.
var postTaxKeys = map[string]struct{}{
	"loan":           {},
	"loan_recovery":  {},
	"advance":        {},
	"salary_advance": {},
}

// DeductionResult is the deductions side of a payslip.
type DeductionResult struct {
	Lines           []Line
	PF              float64
	ESI             float64
	PreTaxTotal     float64
	TaxableIncome   float64
	IncomeTax       float64
	TaxDegraded     bool
	PostTaxTotal    float64
	TotalDeductions float64
}

// DeductionEngine computes statutory and configured deductions and delegates
// income tax to the external withholding collaborator.
type DeductionEngine struct {
	taxCalc    tax.Calculator
	taxTimeout time.Duration
	logger     *zap.Logger
}

func NewDeductionEngine(taxCalc tax.Calculator, taxTimeout time.Duration, logger *zap.Logger) *DeductionEngine {
	if taxCalc == nil {
		taxCalc = tax.ZeroCalculator{}
	}
	if taxTimeout <= 0 {
		taxTimeout = defaultTaxTimeout
	}
	if logger == nil {
		logger = zap.L()
	}
	return &DeductionEngine{
		taxCalc:    taxCalc,
		taxTimeout: taxTimeout,
		logger:     logger.Named("payroll.deductions"),
	}
}

// Compute runs the full deduction pipeline: PF and ESI for enrolled
// employees, configured pre-tax items, income tax via the collaborator,
// then configured post-tax items.
// The collaborator failing degrades tax to zero and flags the result; it
// never fails the employee.
func (e *DeductionEngine) Compute(
	ctx context.Context,
	gross GrossResult,
	comp compensation.ResolvedCompensation,
	profile tax.Profile,
	period tax.Period,
) DeductionResult {
	var res DeductionResult

	pfEnrolled, esiEnrolled := statutoryEnrollment(comp)
	if pfEnrolled {
		res.PF = round2(pfRate * math.Min(gross.Basic, pfWageCeiling))
	}
	if esiEnrolled && gross.TotalGross > 0 && gross.TotalGross <= esiGrossCeiling {
		res.ESI = round2(esiRate * gross.TotalGross)
	}

	if res.PF > 0 {
		res.Lines = append(res.Lines,
			Line{Name: "Provident Fund", Code: "PF", Kind: compensation.KindDeduction, Monthly: res.PF, Paid: res.PF},
		)
	}
	if res.ESI > 0 {
		res.Lines = append(res.Lines,
			Line{Name: "Employee State Insurance", Code: "ESI", Kind: compensation.KindDeduction, Monthly: res.ESI, Paid: res.ESI},
		)
	}

	preTax, postTax := e.configuredDeductions(gross, comp)
	for _, line := range preTax {
		res.Lines = append(res.Lines, line)
		res.PreTaxTotal = round2(res.PreTaxTotal + line.Paid)
	}
	res.PreTaxTotal = round2(res.PreTaxTotal + res.PF + res.ESI)

	res.TaxableIncome = round2(math.Max(0, gross.TaxableGross-res.PreTaxTotal))
	res.IncomeTax, res.TaxDegraded = e.withhold(ctx, res.TaxableIncome, profile, period)
	if res.IncomeTax > 0 {
		res.Lines = append(res.Lines,
			Line{Name: "Income Tax", Code: "TDS", Kind: compensation.KindDeduction, Monthly: res.IncomeTax, Paid: res.IncomeTax},
		)
	}

	for _, line := range postTax {
		res.Lines = append(res.Lines, line)
		res.PostTaxTotal = round2(res.PostTaxTotal + line.Paid)
	}

	res.TotalDeductions = round2(res.PreTaxTotal + res.IncomeTax + res.PostTaxTotal)
	return res
}

// statutoryEnrollment reports whether the resolved compensation carries PF
// and ESI deduction rows. The rows act as enrollment markers only; the
// engine computes the actual figures itself. An employee whose compensation
// is a bare earning list owes no statutory contributions.
func statutoryEnrollment(comp compensation.ResolvedCompensation) (pf, esi bool) {
	for _, c := range comp.Components {
		if c.Kind != compensation.KindDeduction {
			continue
		}
		switch c.CanonicalKey() {
		case "pf":
			pf = true
		case "esi":
			esi = true
		}
	}
	return pf, esi
}

// configuredDeductions prices the deduction components carried on the
// resolved compensation. Amounts under 1 are treated as a fraction of the
// component's base (gross unless the code says basic); anything else is a
// fixed monthly amount.
func (e *DeductionEngine) configuredDeductions(
	gross GrossResult,
	comp compensation.ResolvedCompensation,
) (preTax, postTax []Line) {
	for _, c := range comp.Components {
		if c.Kind != compensation.KindDeduction {
			continue
		}
		key := c.CanonicalKey()
		if _, ok := statutoryKeys[key]; ok {
			continue
		}
		if _, ok := lopKeys[key]; ok {
			e.logger.Debug("ignoring loss-of-pay deduction component, already priced into pro-rata",
				zap.String("component", c.Name))
			continue
		}

		amount := sanitize(c.MonthlyAmount, c.Name, e.logger)
		if amount <= 0 {
			continue
		}
		if amount < 1 {
			base := gross.TotalGross
			if strings.Contains(key, "basic") {
				base = gross.Basic
			}
			amount = round2(amount * base)
		}

		line := Line{
			Name:    c.Name,
			Code:    c.Code,
			Kind:    compensation.KindDeduction,
			Monthly: amount,
			Paid:    amount,
		}
		if _, ok := postTaxKeys[key]; ok {
			postTax = append(postTax, line)
		} else {
			preTax = append(preTax, line)
		}
	}
	return preTax, postTax
}

func (e *DeductionEngine) withhold(
	ctx context.Context,
	taxableIncome float64,
	profile tax.Profile,
	period tax.Period,
) (amount float64, degraded bool) {
	if taxableIncome <= 0 {
		return 0, false
	}

	taxCtx, cancel := context.WithTimeout(ctx, e.taxTimeout)
	defer cancel()

	result, err := e.taxCalc.Calculate(taxCtx, tax.Input{
		TaxableMonthlyIncome: taxableIncome,
		Profile:              profile,
		Period:               period,
	})
	if err != nil {
		e.logger.Warn("tax collaborator failed, degrading income tax to zero",
			zap.String("employee_id", profile.EmployeeID),
			zap.Error(err),
		)
		return 0, true
	}

	monthly := result.Monthly
	if math.IsNaN(monthly) || math.IsInf(monthly, 0) || monthly < 0 {
		e.logger.Warn("tax collaborator returned unusable amount, degrading to zero",
			zap.String("employee_id", profile.EmployeeID),
			zap.Float64("monthly", monthly),
		)
		return 0, true
	}

	return round2(monthly), false
}
