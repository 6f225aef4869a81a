package payroll

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/RushikJoshi/GT-HRMS-sub007/internal/attendance"
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/compensation"

	"github.com/google/uuid"
)

// BuildInput carries everything a finished payslip is assembled from.
type BuildInput struct {
	RunID       uuid.UUID
	CompanyID   uuid.UUID
	PeriodYear  int
	PeriodMonth int

	Employee     RunEmployee
	Compensation compensation.ResolvedCompensation
	Attendance   attendance.Summary
	Gross        GrossResult
	Deductions   DeductionResult
	Adjustments  []ConsumedAdjustment
}

// BuildPayslip computes the net and assembles the immutable payslip record.
// NetPay = TaxableIncome - IncomeTax - PostTaxTotal + AdjustmentTotal,
// floored at zero with the clamp flagged.
func BuildPayslip(in BuildInput) Payslip {
	var adjustmentTotal float64
	for _, adj := range in.Adjustments {
		adjustmentTotal = round2(adjustmentTotal + adj.Amount)
	}

	net := round2(in.Deductions.TaxableIncome - in.Deductions.IncomeTax - in.Deductions.PostTaxTotal + adjustmentTotal)
	clamped := false
	if net < 0 || math.IsNaN(net) || math.IsInf(net, 0) {
		net = 0
		clamped = true
	}

	lines := make(LineList, 0, len(in.Gross.Lines)+len(in.Deductions.Lines))
	lines = append(lines, in.Gross.Lines...)
	lines = append(lines, in.Deductions.Lines...)

	p := Payslip{
		ID:          uuid.New(),
		RunID:       in.RunID,
		CompanyID:   in.CompanyID,
		EmployeeID:  in.Employee.ID,
		PeriodYear:  in.PeriodYear,
		PeriodMonth: in.PeriodMonth,

		EmployeeName: in.Employee.FullName,
		EmployeeCode: in.Employee.EmployeeCode,
		Designation:  in.Employee.Designation,
		Department:   in.Employee.Department,
		JoinDate:     in.Employee.JoinDate,

		CompensationSource: in.Compensation.Source,
		Attendance:         in.Attendance,
		Lines:              lines,
		Adjustments:        AdjustmentList(in.Adjustments),

		GrossEarnings:   in.Gross.TotalGross,
		TaxableGross:    in.Gross.TaxableGross,
		BasicPaid:       in.Gross.Basic,
		PFAmount:        in.Deductions.PF,
		ESIAmount:       in.Deductions.ESI,
		PreTaxTotal:     in.Deductions.PreTaxTotal,
		TaxableIncome:   in.Deductions.TaxableIncome,
		IncomeTax:       in.Deductions.IncomeTax,
		PostTaxTotal:    in.Deductions.PostTaxTotal,
		TotalDeductions: in.Deductions.TotalDeductions,
		AdjustmentTotal: adjustmentTotal,
		NetPay:          net,

		TaxDegraded:         in.Deductions.TaxDegraded,
		BasicFallback:       in.Gross.BasicFallback,
		NetClamped:          clamped,
		AttendanceDefaulted: in.Attendance.Defaulted,
		GrossDerived:        in.Compensation.GrossDerived,

		CreatedAt: time.Now().UTC(),
	}
	p.AuditHash = ComputeAuditHash(p)
	return p
}

// ComputeAuditHash produces a deterministic SHA-256 over the financial fields
// of the payslip. Field order is fixed and amounts are rendered with two
// decimals, so equal financial content always hashes equally regardless of
// when or where it was computed.
func ComputeAuditHash(p Payslip) string {
	var b strings.Builder

	writeField := func(key, value string) {
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(value)
		b.WriteByte(';')
	}
	writeAmount := func(key string, v float64) {
		writeField(key, fmt.Sprintf("%.2f", v))
	}

	writeField("company", p.CompanyID.String())
	writeField("employee", p.EmployeeID.String())
	writeField("period", fmt.Sprintf("%04d-%02d", p.PeriodYear, p.PeriodMonth))
	writeField("source", p.CompensationSource)

	writeAmount("gross", p.GrossEarnings)
	writeAmount("taxable_gross", p.TaxableGross)
	writeAmount("basic", p.BasicPaid)
	writeAmount("pf", p.PFAmount)
	writeAmount("esi", p.ESIAmount)
	writeAmount("pre_tax", p.PreTaxTotal)
	writeAmount("taxable_income", p.TaxableIncome)
	writeAmount("income_tax", p.IncomeTax)
	writeAmount("post_tax", p.PostTaxTotal)
	writeAmount("deductions", p.TotalDeductions)
	writeAmount("adjustment", p.AdjustmentTotal)
	writeAmount("net", p.NetPay)

	writeAmount("total_days", p.Attendance.TotalDays)
	writeAmount("present_days", p.Attendance.PresentDays)
	writeAmount("lop_days", p.Attendance.LOPDays)

	ids := make([]string, 0, len(p.Adjustments))
	for _, adj := range p.Adjustments {
		ids = append(ids, fmt.Sprintf("%s:%.2f", adj.ID, adj.Amount))
	}
	sort.Strings(ids)
	writeField("adjustments", strings.Join(ids, ","))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// VerifyAuditHash recomputes the hash from the stored financial fields and
// compares it with the stored value. A mismatch means the row was altered
// after generation.
func VerifyAuditHash(p Payslip) bool {
	return p.AuditHash == ComputeAuditHash(p)
}
