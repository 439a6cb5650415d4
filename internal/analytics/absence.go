package analytics

import (
	"cmp"
	"maps"
	"slices"

	"github.com/locvowork/bi_dashboard/internal/domain"
)

const (
	// AnnualLeaveEntitlement is the yearly leave days per employee.
	AnnualLeaveEntitlement = 22.0
	// HighAbsenceDays is the yearly leave above which an employee is flagged.
	HighAbsenceDays = 20.0

	topAbsentees = 10
	unknown      = "Unknown"
)

// LeaveByType is the days booked under one leave type.
type LeaveByType struct {
	Type string  `json:"type"`
	Days float64 `json:"days"`
}

// Absentee is one employee's leave total.
type Absentee struct {
	EmployeeID string  `json:"employeeId"`
	Alias      string  `json:"alias"`
	Department string  `json:"department"`
	LeaveDays  float64 `json:"leaveDays"`
}

// DepartmentAbsence is the leave taken in one department.
type DepartmentAbsence struct {
	Department     string  `json:"department"`
	Employees      int     `json:"employees"`
	TotalLeaveDays float64 `json:"totalLeaveDays"`
	AvgLeaveDays   float64 `json:"avgLeaveDays"`
}

// MonthDays is the leave days booked in one "YYYY-MM" month.
type MonthDays struct {
	Month string  `json:"month"`
	Days  float64 `json:"days"`
}

// AbsenceSummary backs the absence tab.
type AbsenceSummary struct {
	Year             int                 `json:"year"`
	TotalDays        float64             `json:"totalDays"`
	Entitlement      float64             `json:"entitlement"`
	UtilizationRate  float64             `json:"utilizationRate"`
	HighAbsenceCount int                 `json:"highAbsenceCount"`
	ByType           []LeaveByType       `json:"byType"`
	ByMonth          []MonthDays         `json:"byMonth"`
	ByDepartment     []DepartmentAbsence `json:"byDepartment"`
	TopAbsentees     []Absentee          `json:"topAbsentees"`
}

// SummarizeAbsence computes leave utilisation for year against a 22 day
// entitlement per employee. Leave outside year is ignored.
func SummarizeAbsence(leave []domain.LeaveRecord, employees []domain.Employee, year int) AbsenceSummary {
	s := AbsenceSummary{
		Year:        year,
		Entitlement: AnnualLeaveEntitlement * float64(len(employees)),
	}

	perEmployee := make(map[string]float64)
	perType := make(map[string]float64)
	perMonth := make(map[string]float64)
	for _, l := range leave {
		idx, ok := parseMonth(l.Date)
		if !ok || idx/12 != year {
			continue
		}
		s.TotalDays += l.Days
		perEmployee[l.EmployeeID] += l.Days
		perType[l.Type] += l.Days
		perMonth[FormatMonth(idx)] += l.Days
	}
	s.UtilizationRate = round1(ratio(s.TotalDays, s.Entitlement) * 100)

	for _, days := range perEmployee {
		if days > HighAbsenceDays {
			s.HighAbsenceCount++
		}
	}
	for _, t := range slices.Sorted(maps.Keys(perType)) {
		s.ByType = append(s.ByType, LeaveByType{Type: t, Days: perType[t]})
	}
	for _, m := range slices.Sorted(maps.Keys(perMonth)) {
		s.ByMonth = append(s.ByMonth, MonthDays{Month: m, Days: perMonth[m]})
	}

	byID := make(map[string]domain.Employee, len(employees))
	for _, e := range employees {
		byID[e.EmployeeID] = e
	}
	groups, depts := groupBy(employees, func(e domain.Employee) string { return e.Department })
	for _, d := range depts {
		da := DepartmentAbsence{Department: d, Employees: len(groups[d])}
		for _, e := range groups[d] {
			da.TotalLeaveDays += perEmployee[e.EmployeeID]
		}
		da.AvgLeaveDays = round1(ratio(da.TotalLeaveDays, float64(da.Employees)))
		s.ByDepartment = append(s.ByDepartment, da)
	}

	for id, days := range perEmployee {
		a := Absentee{EmployeeID: id, Alias: unknown, Department: unknown, LeaveDays: days}
		if e, ok := byID[id]; ok {
			a.Alias, a.Department = e.Alias, e.Department
		}
		s.TopAbsentees = append(s.TopAbsentees, a)
	}
	slices.SortFunc(s.TopAbsentees, func(a, b Absentee) int {
		if c := cmp.Compare(b.LeaveDays, a.LeaveDays); c != 0 {
			return c
		}
		return cmp.Compare(a.EmployeeID, b.EmployeeID)
	})
	if len(s.TopAbsentees) > topAbsentees {
		s.TopAbsentees = s.TopAbsentees[:topAbsentees]
	}
	return s
}
