package attendance

import (
	"strings"
	"time"
)

// Summary is the per-period attendance rollup payroll consumes. Categories
// are mutually exclusive per day. Defaulted records that the safety fallback
// fired (no rows, or nothing counted present), so a broken feed is visible on
// the payslip instead of silently zeroing salary.
type Summary struct {
	TotalDays   float64 `json:"total_days"`
	PresentDays float64 `json:"present_days"`
	LeaveDays   float64 `json:"leave_days"`
	LOPDays     float64 `json:"lop_days"`
	HolidayDays float64 `json:"holiday_days"`
	Defaulted   bool    `json:"defaulted"`
}

// Summarize converts raw daily rows plus the holiday calendar into a Summary.
// Per-day priority: holiday set membership wins; then presence statuses
// (half_day weighs 0.5); leave splits into paid leave vs loss-of-pay; absent
// or unrecognized counts as loss-of-pay. A row carrying an explicit lop_days
// value contributes exactly that value, never an additional derived day.
func Summarize(
	rows []Attendance,
	holidays map[string]struct{},
	joinDate *time.Time,
	periodStart, periodEnd time.Time,
) Summary {
	var s Summary

	s.TotalDays = float64(daysInclusive(periodStart, periodEnd))
	if joinDate != nil && joinDate.After(periodStart) {
		// Mid-period joiner: only days since joining are payable.
		s.TotalDays = float64(daysInclusive(*joinDate, periodEnd))
		if s.TotalDays < 0 {
			s.TotalDays = 0
		}
	}

	for _, row := range rows {
		if _, ok := holidays[row.AttendanceDate.Format(dateLayout)]; ok {
			s.HolidayDays++
			continue
		}

		switch strings.ToLower(row.Status) {
		case StatusPresent, StatusWorkFromHome, StatusOnDuty:
			s.PresentDays++
		case StatusHalfDay:
			s.PresentDays += 0.5
		case StatusLeave:
			switch {
			case row.LOPDays > 0:
				s.LOPDays += row.LOPDays
			case isLossOfPayLeave(row.LeaveType):
				s.LOPDays++
			default:
				s.LeaveDays++
			}
		default:
			// absent or unrecognized
			if row.LOPDays > 0 {
				s.LOPDays += row.LOPDays
			} else {
				s.LOPDays++
			}
		}
	}

	// Safety rule: an unintegrated or broken attendance feed must never zero
	// a salary. Full-period presence is assumed and the summary is flagged.
	if len(rows) == 0 || s.PresentDays == 0 {
		s.PresentDays = s.TotalDays
		s.Defaulted = true
	}

	return s
}

func daysInclusive(from, to time.Time) int {
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	to = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	if from.After(to) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}

func isLossOfPayLeave(leaveType *string) bool {
	if leaveType == nil {
		return false
	}
	lt := strings.ToLower(*leaveType)
	return strings.Contains(lt, "lop") ||
		strings.Contains(lt, "loss of pay") ||
		strings.Contains(lt, "without pay") ||
		strings.Contains(lt, "unpaid")
}
