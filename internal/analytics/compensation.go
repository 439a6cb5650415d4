package analytics

import (
	"math"
	"slices"

	"github.com/locvowork/bi_dashboard/internal/domain"
)

// GradeSalary is the salary spread of one grade.
type GradeSalary struct {
	Grade  string  `json:"grade"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

func salaries(employees []domain.Employee) []float64 {
	out := make([]float64, len(employees))
	for i, e := range employees {
		out[i] = e.SalaryAED
	}
	return out
}

func salaryOf(e domain.Employee) float64 { return e.SalaryAED }

// SalaryByGrade summarises salaries per grade, ordered by grade.
func SalaryByGrade(employees []domain.Employee) []GradeSalary {
	groups, grades := groupBy(employees, func(e domain.Employee) string { return e.Grade })
	out := make([]GradeSalary, 0, len(grades))
	for _, g := range grades {
		s := salaries(groups[g])
		out = append(out, GradeSalary{
			Grade:  g,
			Count:  len(s),
			Min:    slices.Min(s),
			Max:    slices.Max(s),
			Mean:   math.Round(mean(groups[g], salaryOf)),
			Median: upperMedian(s),
		})
	}
	return out
}

// DepartmentPay compares average pay by gender in one department.
type DepartmentPay struct {
	Department      string  `json:"department"`
	Headcount       int     `json:"headcount"`
	AvgSalary       float64 `json:"avgSalary"`
	AvgMaleSalary   float64 `json:"avgMaleSalary"`
	AvgFemaleSalary float64 `json:"avgFemaleSalary"`
	PayGap          float64 `json:"payGap"`
}

// payGap is the male-female average salary difference as a percentage of the
// male average. It is 0 unless both groups are present.
func payGap(employees []domain.Employee) (male, female, gap float64) {
	men := keep(employees, func(e domain.Employee) bool { return e.Gender == genderMale })
	women := keep(employees, func(e domain.Employee) bool { return e.Gender == genderFemale })
	male, female = mean(men, salaryOf), mean(women, salaryOf)
	if len(men) == 0 || len(women) == 0 {
		return male, female, 0
	}
	return male, female, ratio(male-female, male) * 100
}

// GenderPayGap breaks the pay gap down by department, ordered by department.
func GenderPayGap(employees []domain.Employee) []DepartmentPay {
	groups, depts := groupBy(employees, func(e domain.Employee) string { return e.Department })
	out := make([]DepartmentPay, 0, len(depts))
	for _, d := range depts {
		members := groups[d]
		male, female, gap := payGap(members)
		out = append(out, DepartmentPay{
			Department:      d,
			Headcount:       len(members),
			AvgSalary:       math.Round(mean(members, salaryOf)),
			AvgMaleSalary:   math.Round(male),
			AvgFemaleSalary: math.Round(female),
			PayGap:          math.Round(gap),
		})
	}
	return out
}

// Quartiles are the salary cut points at 25, 50 and 75 percent.
type Quartiles struct {
	Q1 float64 `json:"q1"`
	Q2 float64 `json:"q2"`
	Q3 float64 `json:"q3"`
}

// SalaryQuartiles picks the salaries at floor(n*p) of the sorted list.
func SalaryQuartiles(employees []domain.Employee) Quartiles {
	s := salaries(employees)
	if len(s) == 0 {
		return Quartiles{}
	}
	slices.Sort(s)
	at := func(p float64) float64 { return s[int(float64(len(s))*p)] }
	return Quartiles{Q1: at(0.25), Q2: at(0.5), Q3: at(0.75)}
}

// CompensationSummary backs the compensation tab.
type CompensationSummary struct {
	TotalPayroll    float64         `json:"totalPayroll"`
	AvgSalary       float64         `json:"avgSalary"`
	MedianSalary    float64         `json:"medianSalary"`
	AvgMaleSalary   float64         `json:"avgMaleSalary"`
	AvgFemaleSalary float64         `json:"avgFemaleSalary"`
	PayGap          float64         `json:"payGap"`
	Quartiles       Quartiles       `json:"quartiles"`
	ByGrade         []GradeSalary   `json:"byGrade"`
	ByDepartment    []DepartmentPay `json:"byDepartment"`
}

// SummarizeCompensation computes the compensation tab over employees.
func SummarizeCompensation(employees []domain.Employee) CompensationSummary {
	male, female, gap := payGap(employees)
	s := CompensationSummary{
		AvgSalary:       math.Round(mean(employees, salaryOf)),
		MedianSalary:    upperMedian(salaries(employees)),
		AvgMaleSalary:   math.Round(male),
		AvgFemaleSalary: math.Round(female),
		PayGap:          round1(gap),
		Quartiles:       SalaryQuartiles(employees),
		ByGrade:         SalaryByGrade(employees),
		ByDepartment:    GenderPayGap(employees),
	}
	for _, e := range employees {
		s.TotalPayroll += e.SalaryAED
	}
	return s
}
