package payroll

import (
	"math"

	"github.com/RushikJoshi/GT-HRMS-sub007/internal/attendance"
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/compensation"

	"go.uber.org/zap"
)

// GrossResult is the earnings side of a payslip before any deduction.
type GrossResult struct {
	Lines         []Line
	TotalGross    float64
	TaxableGross  float64
	Basic         float64
	BasicFallback bool
}

// ComputeGross prices every earning component against the attendance summary.
// A component is pro-rated when its flag explicitly says so, or when the flag
// is unset and the component is the basic salary. Everything else is paid in
// full for the month.
func ComputeGross(
	comp compensation.ResolvedCompensation,
	att attendance.Summary,
	logger *zap.Logger,
) GrossResult {
	if logger == nil {
		logger = zap.L()
	}

	var res GrossResult
	earnings := comp.Earnings()
	res.Lines = make([]Line, 0, len(earnings))

	for _, c := range earnings {
		monthly := sanitize(c.MonthlyAmount, c.Name, logger)
		paid := monthly
		proRated := false

		if shouldProRate(c) {
			paid = proRate(monthly, att.TotalDays, att.PresentDays)
			paid = sanitize(paid, c.Name, logger)
			proRated = true
		}

		res.Lines = append(res.Lines, Line{
			Name:     c.Name,
			Code:     c.Code,
			Kind:     compensation.KindEarning,
			Monthly:  monthly,
			Paid:     paid,
			ProRated: proRated,
			Taxable:  c.Taxable(),
		})

		res.TotalGross = round2(res.TotalGross + paid)
		if c.Taxable() {
			res.TaxableGross = round2(res.TaxableGross + paid)
		}
		if c.CanonicalKey() == "basic" {
			res.Basic = round2(res.Basic + paid)
		}
	}

	// Statutory deductions need a base even when the source carries no basic
	// line. The first earning stands in, and the payslip is flagged.
	if res.Basic == 0 && len(res.Lines) > 0 {
		first := res.Lines[0]
		if first.Paid > 0 {
			res.Basic = first.Paid
			res.BasicFallback = true
			logger.Warn("no basic component found, using first earning as deduction base",
				zap.String("component", first.Name),
				zap.Float64("amount", first.Paid),
			)
		}
	}

	res.TotalGross = sanitize(res.TotalGross, "total_gross", logger)
	res.TaxableGross = sanitize(res.TaxableGross, "taxable_gross", logger)
	res.Basic = sanitize(res.Basic, "basic", logger)

	return res
}

func shouldProRate(c compensation.Component) bool {
	if c.IsProRata != nil {
		return *c.IsProRata
	}
	return c.CanonicalKey() == "basic"
}

func proRate(monthly, totalDays, presentDays float64) float64 {
	if totalDays <= 0 {
		return 0
	}
	return round2(monthly / totalDays * presentDays)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// sanitize clamps NaN and Inf to zero. A poisoned float must never reach a
// stored payslip.
func sanitize(v float64, field string, logger *zap.Logger) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		logger.Warn("non-finite amount clamped to zero", zap.String("field", field))
		return 0
	}
	return v
}
