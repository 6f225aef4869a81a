package payroll

import (
	"testing"

	"github.com/RushikJoshi/GT-HRMS-sub007/internal/attendance"
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/compensation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func builderInput() BuildInput {
	return BuildInput{
		RunID:       uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"),
		CompanyID:   uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"),
		PeriodYear:  2026,
		PeriodMonth: 6,
		Employee: RunEmployee{
			ID:       uuid.MustParse("cccccccc-cccc-cccc-cccc-cccccccccccc"),
			FullName: "Asha Nair",
		},
		Compensation: compensation.ResolvedCompensation{Source: compensation.SourceStructured},
		Attendance:   attendance.Summary{TotalDays: 30, PresentDays: 25, LOPDays: 5},
		Gross:        GrossResult{TotalGross: 25000, TaxableGross: 25000, Basic: 25000},
		Deductions: DeductionResult{
			PF:              1800,
			PreTaxTotal:     1800,
			TaxableIncome:   23200,
			IncomeTax:       1200,
			PostTaxTotal:    500,
			TotalDeductions: 3500,
		},
	}
}

func TestBuildPayslip_NetFormulaWithAdjustments(t *testing.T) {
	in := builderInput()
	in.Adjustments = []ConsumedAdjustment{
		{ID: uuid.New(), Amount: 2000, Reason: "referral bonus"},
		{ID: uuid.New(), Amount: -500, Reason: "canteen recovery"},
	}

	p := BuildPayslip(in)

	assert.Equal(t, 1500.0, p.AdjustmentTotal)
	// 23200 - 1200 - 500 + 1500
	assert.Equal(t, 23000.0, p.NetPay)
	assert.False(t, p.NetClamped)
	assert.Len(t, p.Adjustments, 2)
}

func TestBuildPayslip_NegativeNetClampsToZero(t *testing.T) {
	in := builderInput()
	in.Adjustments = []ConsumedAdjustment{
		{ID: uuid.New(), Amount: -50000, Reason: "final settlement recovery"},
	}

	p := BuildPayslip(in)

	assert.Equal(t, 0.0, p.NetPay)
	assert.True(t, p.NetClamped)
}

func TestBuildPayslip_SnapshotsIdentityAndSource(t *testing.T) {
	in := builderInput()
	in.Employee.EmployeeCode = "EMP-042"
	in.Employee.Designation = "Senior Engineer"
	in.Employee.Department = "Platform"

	p := BuildPayslip(in)

	assert.Equal(t, "Asha Nair", p.EmployeeName)
	assert.Equal(t, "EMP-042", p.EmployeeCode)
	assert.Equal(t, compensation.SourceStructured, p.CompensationSource)
	assert.Equal(t, 25.0, p.Attendance.PresentDays)
	assert.NotEmpty(t, p.AuditHash)
}

func TestAuditHash_DeterministicForEqualContent(t *testing.T) {
	a := BuildPayslip(builderInput())
	b := BuildPayslip(builderInput())

	// different row ids and timestamps, same financial content
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.AuditHash, b.AuditHash)
}

func TestAuditHash_AdjustmentOrderDoesNotMatter(t *testing.T) {
	first := uuid.New()
	second := uuid.New()

	inA := builderInput()
	inA.Adjustments = []ConsumedAdjustment{{ID: first, Amount: 2000}, {ID: second, Amount: -500}}
	inB := builderInput()
	inB.Adjustments = []ConsumedAdjustment{{ID: second, Amount: -500}, {ID: first, Amount: 2000}}

	assert.Equal(t, BuildPayslip(inA).AuditHash, BuildPayslip(inB).AuditHash)
}

func TestVerifyAuditHash_DetectsTampering(t *testing.T) {
	p := BuildPayslip(builderInput())
	assert.True(t, VerifyAuditHash(p))

	p.NetPay += 0.01
	assert.False(t, VerifyAuditHash(p))
}
