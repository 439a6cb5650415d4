package analytics

import (
	"cmp"
	"slices"
	"strings"

	"github.com/locvowork/bi_dashboard/internal/domain"
)

// SortOrder is the direction of a table sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder maps anything other than "desc" to ascending.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(s, string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

// Comparator orders two records: negative, zero or positive.
type Comparator[T any] func(a, b T) int

// SortRecords returns a stably sorted copy of records. When key has no
// comparator the copy keeps the input order.
func SortRecords[T any, K comparable](records []T, cmps map[K]Comparator[T], key K, order SortOrder) []T {
	out := slices.Clone(records)
	c, ok := cmps[key]
	if !ok {
		return out
	}
	slices.SortStableFunc(out, func(a, b T) int {
		if order == SortDesc {
			return c(b, a)
		}
		return c(a, b)
	})
	return out
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// ARAPSortKey names a sortable AR/AP column.
type ARAPSortKey string

const (
	ARAPByCounterparty    ARAPSortKey = "customerSupplier"
	ARAPByAmount          ARAPSortKey = "amount"
	ARAPByDaysOutstanding ARAPSortKey = "daysOutstanding"
	ARAPByStatus          ARAPSortKey = "status"
	ARAPByDueDate         ARAPSortKey = "dueDate"
)

var arapComparators = map[ARAPSortKey]Comparator[domain.ARAPRecord]{
	ARAPByCounterparty: func(a, b domain.ARAPRecord) int { return compareFold(a.CustomerSupplier, b.CustomerSupplier) },
	ARAPByAmount:       func(a, b domain.ARAPRecord) int { return cmp.Compare(a.Amount, b.Amount) },
	ARAPByDaysOutstanding: func(a, b domain.ARAPRecord) int {
		return cmp.Compare(a.DaysOutstanding, b.DaysOutstanding)
	},
	ARAPByStatus:  func(a, b domain.ARAPRecord) int { return compareFold(a.Status, b.Status) },
	ARAPByDueDate: func(a, b domain.ARAPRecord) int { return compareFold(a.DueDate, b.DueDate) },
}

// SortARAP sorts AR/AP rows by key.
func SortARAP(records []domain.ARAPRecord, key ARAPSortKey, order SortOrder) []domain.ARAPRecord {
	return SortRecords(records, arapComparators, key, order)
}

// RiskSortKey names a sortable attrition risk column.
type RiskSortKey string

const (
	RiskByScore       RiskSortKey = "risk_score"
	RiskByTenure      RiskSortKey = "tenure_years"
	RiskByPerformance RiskSortKey = "performance_rating"
	RiskByEngagement  RiskSortKey = "engagement_score"
	RiskByEmployeeID  RiskSortKey = "employee_id"
	RiskByDepartment  RiskSortKey = "department"
)

var riskComparators = map[RiskSortKey]Comparator[AttritionRiskEmployee]{
	RiskByScore:       func(a, b AttritionRiskEmployee) int { return cmp.Compare(a.RiskScore, b.RiskScore) },
	RiskByTenure:      func(a, b AttritionRiskEmployee) int { return cmp.Compare(a.TenureYears, b.TenureYears) },
	RiskByPerformance: func(a, b AttritionRiskEmployee) int { return cmp.Compare(a.PerformanceRating, b.PerformanceRating) },
	RiskByEngagement:  func(a, b AttritionRiskEmployee) int { return cmp.Compare(a.EngagementScore, b.EngagementScore) },
	RiskByEmployeeID:  func(a, b AttritionRiskEmployee) int { return compareFold(a.EmployeeID, b.EmployeeID) },
	RiskByDepartment:  func(a, b AttritionRiskEmployee) int { return compareFold(a.Department, b.Department) },
}

// SortRisk sorts attrition risk rows by key.
func SortRisk(rows []AttritionRiskEmployee, key RiskSortKey, order SortOrder) []AttritionRiskEmployee {
	return SortRecords(rows, riskComparators, key, order)
}

// EmployeeSortKey names a sortable employee column.
type EmployeeSortKey string

const (
	EmployeeBySalary      EmployeeSortKey = "salary_aed"
	EmployeeByHireDate    EmployeeSortKey = "hire_date"
	EmployeeByID          EmployeeSortKey = "employee_id"
	EmployeeByDepartment  EmployeeSortKey = "department"
	EmployeeByGrade       EmployeeSortKey = "grade"
	EmployeeByPerformance EmployeeSortKey = "performance_rating"
)

var employeeComparators = map[EmployeeSortKey]Comparator[domain.Employee]{
	EmployeeBySalary:      func(a, b domain.Employee) int { return cmp.Compare(a.SalaryAED, b.SalaryAED) },
	EmployeeByHireDate:    func(a, b domain.Employee) int { return strings.Compare(a.HireDate, b.HireDate) },
	EmployeeByID:          func(a, b domain.Employee) int { return compareFold(a.EmployeeID, b.EmployeeID) },
	EmployeeByDepartment:  func(a, b domain.Employee) int { return compareFold(a.Department, b.Department) },
	EmployeeByGrade:       func(a, b domain.Employee) int { return compareFold(a.Grade, b.Grade) },
	EmployeeByPerformance: func(a, b domain.Employee) int { return cmp.Compare(a.PerformanceRating, b.PerformanceRating) },
}

// SortEmployees sorts employees by key.
func SortEmployees(employees []domain.Employee, key EmployeeSortKey, order SortOrder) []domain.Employee {
	return SortRecords(employees, employeeComparators, key, order)
}

// ParseARAPSortKey reports whether s names an AR/AP column.
func ParseARAPSortKey(s string) (ARAPSortKey, bool) {
	k := ARAPSortKey(s)
	_, ok := arapComparators[k]
	return k, ok
}

// ParseRiskSortKey reports whether s names an attrition risk column.
func ParseRiskSortKey(s string) (RiskSortKey, bool) {
	k := RiskSortKey(s)
	_, ok := riskComparators[k]
	return k, ok
}

// ParseEmployeeSortKey reports whether s names an employee column.
func ParseEmployeeSortKey(s string) (EmployeeSortKey, bool) {
	k := EmployeeSortKey(s)
	_, ok := employeeComparators[k]
	return k, ok
}
