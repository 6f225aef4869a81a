package payroll

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/RushikJoshi/GT-HRMS-sub007/internal/compensation"
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/tax"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeTaxCalculator struct {
	CalculateFn func(ctx context.Context, in tax.Input) (tax.Result, error)
}

func (f *fakeTaxCalculator) Calculate(ctx context.Context, in tax.Input) (tax.Result, error) {
	if f.CalculateFn != nil {
		return f.CalculateFn(ctx, in)
	}
	return tax.Result{}, nil
}

func testProfile() tax.Profile {
	return tax.Profile{EmployeeID: "11111111-1111-1111-1111-111111111111"}
}

func testPeriod() tax.Period {
	return tax.Period{Year: 2026, Month: 6}
}

// statutoryComp enrolls the employee in PF and ESI and appends any extra
// deduction components.
func statutoryComp(extra ...compensation.Component) compensation.ResolvedCompensation {
	components := []compensation.Component{
		{Name: "Provident Fund", Code: "PF", Kind: compensation.KindDeduction},
		{Name: "ESI", Code: "ESI", Kind: compensation.KindDeduction},
	}
	return compensation.ResolvedCompensation{Components: append(components, extra...)}
}

func TestDeductionEngine_PFCappedAtWageCeiling(t *testing.T) {
	engine := NewDeductionEngine(tax.ZeroCalculator{}, time.Second, zap.NewNop())

	t.Run("basic below ceiling", func(t *testing.T) {
		res := engine.Compute(context.Background(),
			GrossResult{Basic: 10000, TotalGross: 12000, TaxableGross: 12000},
			statutoryComp(), testProfile(), testPeriod())
		assert.Equal(t, 1200.0, res.PF)
	})

	t.Run("basic above ceiling", func(t *testing.T) {
		res := engine.Compute(context.Background(),
			GrossResult{Basic: 50000, TotalGross: 80000, TaxableGross: 80000},
			statutoryComp(), testProfile(), testPeriod())
		assert.Equal(t, 1800.0, res.PF)
	})
}

func TestDeductionEngine_ESIOnlyUnderGrossCeiling(t *testing.T) {
	engine := NewDeductionEngine(tax.ZeroCalculator{}, time.Second, zap.NewNop())

	t.Run("eligible", func(t *testing.T) {
		res := engine.Compute(context.Background(),
			GrossResult{Basic: 12000, TotalGross: 20000, TaxableGross: 20000},
			statutoryComp(), testProfile(), testPeriod())
		assert.Equal(t, 150.0, res.ESI)
	})

	t.Run("over the ceiling", func(t *testing.T) {
		res := engine.Compute(context.Background(),
			GrossResult{Basic: 15000, TotalGross: 25000, TaxableGross: 25000},
			statutoryComp(), testProfile(), testPeriod())
		assert.Equal(t, 0.0, res.ESI)
	})
}

func TestDeductionEngine_TaxableIncomeFlooredAtZero(t *testing.T) {
	engine := NewDeductionEngine(tax.ZeroCalculator{}, time.Second, zap.NewNop())

	comp := compensation.ResolvedCompensation{
		Components: []compensation.Component{
			{Name: "Voluntary PF", MonthlyAmount: 9000, Kind: compensation.KindDeduction},
		},
	}
	res := engine.Compute(context.Background(),
		GrossResult{Basic: 8000, TotalGross: 8000, TaxableGross: 8000},
		comp, testProfile(), testPeriod())

	// pre-tax deductions exceed taxable gross
	assert.Greater(t, res.PreTaxTotal, 8000.0)
	assert.Equal(t, 0.0, res.TaxableIncome)
	assert.Equal(t, 0.0, res.IncomeTax)
}

func TestDeductionEngine_TaxFailureDegradesToZero(t *testing.T) {
	calc := &fakeTaxCalculator{
		CalculateFn: func(ctx context.Context, in tax.Input) (tax.Result, error) {
			return tax.Result{}, errors.New("withholding service unreachable")
		},
	}
	engine := NewDeductionEngine(calc, time.Second, zap.NewNop())

	res := engine.Compute(context.Background(),
		GrossResult{Basic: 30000, TotalGross: 60000, TaxableGross: 60000},
		compensation.ResolvedCompensation{}, testProfile(), testPeriod())

	assert.Equal(t, 0.0, res.IncomeTax)
	assert.True(t, res.TaxDegraded)
}

func TestDeductionEngine_NonFiniteTaxDegrades(t *testing.T) {
	calc := &fakeTaxCalculator{
		CalculateFn: func(ctx context.Context, in tax.Input) (tax.Result, error) {
			return tax.Result{Monthly: math.Inf(1)}, nil
		},
	}
	engine := NewDeductionEngine(calc, time.Second, zap.NewNop())

	res := engine.Compute(context.Background(),
		GrossResult{Basic: 30000, TotalGross: 60000, TaxableGross: 60000},
		compensation.ResolvedCompensation{}, testProfile(), testPeriod())

	assert.Equal(t, 0.0, res.IncomeTax)
	assert.True(t, res.TaxDegraded)
}

func TestDeductionEngine_TaxAppliedWhenCollaboratorHealthy(t *testing.T) {
	calc := &fakeTaxCalculator{
		CalculateFn: func(ctx context.Context, in tax.Input) (tax.Result, error) {
			assert.Equal(t, 2026, in.Period.Year)
			return tax.Result{Monthly: 4500, Annual: 54000, Regime: "new"}, nil
		},
	}
	engine := NewDeductionEngine(calc, time.Second, zap.NewNop())

	res := engine.Compute(context.Background(),
		GrossResult{Basic: 30000, TotalGross: 60000, TaxableGross: 60000},
		compensation.ResolvedCompensation{}, testProfile(), testPeriod())

	assert.Equal(t, 4500.0, res.IncomeTax)
	assert.False(t, res.TaxDegraded)
}

func TestDeductionEngine_LossOfPayComponentNeverDeducted(t *testing.T) {
	engine := NewDeductionEngine(tax.ZeroCalculator{}, time.Second, zap.NewNop())

	comp := statutoryComp(
		compensation.Component{Name: "Loss of Pay", Code: "LOP", MonthlyAmount: 5000, Kind: compensation.KindDeduction},
	)
	res := engine.Compute(context.Background(),
		GrossResult{Basic: 15000, TotalGross: 25000, TaxableGross: 25000},
		comp, testProfile(), testPeriod())

	// only statutory PF; LOP is already priced into pro-rated earnings
	assert.Equal(t, res.PF, res.PreTaxTotal)
	for _, line := range res.Lines {
		assert.NotEqual(t, "Loss of Pay", line.Name)
	}
}

func TestDeductionEngine_PostTaxDeductionsAfterTax(t *testing.T) {
	engine := NewDeductionEngine(tax.ZeroCalculator{}, time.Second, zap.NewNop())

	comp := statutoryComp(
		compensation.Component{Name: "Salary Advance", MonthlyAmount: 3000, Kind: compensation.KindDeduction},
		compensation.Component{Name: "Professional Tax", Code: "PT", MonthlyAmount: 200, Kind: compensation.KindDeduction},
	)
	res := engine.Compute(context.Background(),
		GrossResult{Basic: 20000, TotalGross: 40000, TaxableGross: 40000},
		comp, testProfile(), testPeriod())

	assert.Equal(t, 3000.0, res.PostTaxTotal)
	// PF 1800 + professional tax 200
	assert.Equal(t, 2000.0, res.PreTaxTotal)
	assert.Equal(t, 38000.0, res.TaxableIncome)
}

func TestDeductionEngine_FractionalAmountIsPercentage(t *testing.T) {
	engine := NewDeductionEngine(tax.ZeroCalculator{}, time.Second, zap.NewNop())

	comp := compensation.ResolvedCompensation{
		Components: []compensation.Component{
			{Name: "Welfare Fund", MonthlyAmount: 0.01, Kind: compensation.KindDeduction},
		},
	}
	res := engine.Compute(context.Background(),
		GrossResult{Basic: 20000, TotalGross: 40000, TaxableGross: 40000},
		comp, testProfile(), testPeriod())

	// 1% of gross
	assert.Equal(t, 400.0, res.PreTaxTotal-res.PF)
}

func TestDeductionEngine_NoStatutoryWithoutEnrollment(t *testing.T) {
	engine := NewDeductionEngine(tax.ZeroCalculator{}, time.Second, zap.NewNop())

	// bare basic earning, no deduction components: nothing may be withheld
	comp := compensation.ResolvedCompensation{
		Components: []compensation.Component{
			{Name: "Basic Salary", Code: "BASIC", MonthlyAmount: 30000, Kind: compensation.KindEarning},
		},
	}
	res := engine.Compute(context.Background(),
		GrossResult{Basic: 25000, TotalGross: 25000, TaxableGross: 25000},
		comp, testProfile(), testPeriod())

	assert.Equal(t, 0.0, res.PF)
	assert.Equal(t, 0.0, res.ESI)
	assert.Equal(t, 0.0, res.TotalDeductions)
	assert.Empty(t, res.Lines)
	assert.Equal(t, 25000.0, res.TaxableIncome)
}

func TestDeductionEngine_ConfiguredStatutoryAmountsIgnored(t *testing.T) {
	engine := NewDeductionEngine(tax.ZeroCalculator{}, time.Second, zap.NewNop())

	comp := compensation.ResolvedCompensation{
		Components: []compensation.Component{
			{Name: "Provident Fund", Code: "PF", MonthlyAmount: 9999, Kind: compensation.KindDeduction},
			{Name: "ESI", Code: "ESI", MonthlyAmount: 9999, Kind: compensation.KindDeduction},
		},
	}
	res := engine.Compute(context.Background(),
		GrossResult{Basic: 10000, TotalGross: 15000, TaxableGross: 15000},
		comp, testProfile(), testPeriod())

	// engine-computed values win over the configured rows
	assert.Equal(t, 1200.0, res.PF)
	assert.Equal(t, 112.5, res.ESI)
	assert.Equal(t, round2(1200+112.5), res.PreTaxTotal)
}
