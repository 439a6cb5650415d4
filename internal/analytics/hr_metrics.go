package analytics

import (
	"maps"
	"slices"
	"time"

	"github.com/locvowork/bi_dashboard/internal/domain"
)

const (
	genderFemale = "Female"
	genderMale   = "Male"

	hiringBuckets = 12
)

// HRMetrics are the headline cards of the HR dashboard.
type HRMetrics struct {
	Headcount        int     `json:"headcount"`
	Hires30d         int     `json:"hires_30d"`
	Terms30d         int     `json:"terms_30d"`
	AttritionRate    float64 `json:"attrition_rate"`
	AvgTenure        float64 `json:"avg_tenure"`
	TotalPayroll     float64 `json:"total_payroll"`
	FemalePercentage float64 `json:"female_percentage"`
}

// within reports whether date parses and falls in [from, to].
func within(date string, from, to time.Time) bool {
	t, ok := parseDay(date, to)
	return ok && !t.Before(from) && !t.After(to)
}

func activeOnly(employees []domain.Employee) []domain.Employee {
	return keep(employees, domain.Employee.IsActive)
}

// tenureYears is zero for unparseable hire dates.
func tenureYears(e domain.Employee, now time.Time) float64 {
	hired, ok := parseDay(e.HireDate, now)
	if !ok {
		return 0
	}
	return yearsBetween(hired, now)
}

func femaleShare(employees []domain.Employee) float64 {
	var female int
	for _, e := range employees {
		if e.Gender == genderFemale {
			female++
		}
	}
	return ratio(float64(female), float64(len(employees))) * 100
}

// CalculateHRMetrics computes the HR cards. Hires and terminations count over
// all employees, the rest over active ones. The attrition rate annualises the
// last 90 days of terminations against a half-adjusted headcount.
func CalculateHRMetrics(employees []domain.Employee, now time.Time) HRMetrics {
	active := activeOnly(employees)
	since30 := now.AddDate(0, 0, -30)
	since90 := now.AddDate(0, 0, -90)

	var m HRMetrics
	var terms90 int
	for _, e := range employees {
		if within(e.HireDate, since30, now) {
			m.Hires30d++
		}
		if e.TermDate == "" {
			continue
		}
		if within(e.TermDate, since30, now) {
			m.Terms30d++
		}
		if within(e.TermDate, since90, now) {
			terms90++
		}
	}

	avgHeadcount := max(1, float64(len(employees))-float64(terms90)/2)
	m.AttritionRate = round1(float64(terms90) / avgHeadcount * (365.0 / 90.0) * 100)

	m.Headcount = len(active)
	m.AvgTenure = round1(mean(active, func(e domain.Employee) float64 { return tenureYears(e, now) }))
	m.FemalePercentage = round1(femaleShare(active))
	for _, e := range active {
		m.TotalPayroll += e.SalaryAED
	}
	return m
}

// DepartmentStats is one department row of the diversity view.
type DepartmentStats struct {
	Department string  `json:"department"`
	Headcount  int     `json:"headcount"`
	FemalePct  float64 `json:"female_pct"`
	AvgTenure  float64 `json:"avg_tenure"`
}

// groupBy buckets records by key and returns the keys sorted.
func groupBy[T any](records []T, key func(T) string) (map[string][]T, []string) {
	groups := make(map[string][]T)
	for _, r := range records {
		k := key(r)
		groups[k] = append(groups[k], r)
	}
	return groups, slices.Sorted(maps.Keys(groups))
}

// DepartmentDiversity summarises active employees per department, ordered by
// department name.
func DepartmentDiversity(employees []domain.Employee, now time.Time) []DepartmentStats {
	groups, depts := groupBy(activeOnly(employees), func(e domain.Employee) string { return e.Department })
	out := make([]DepartmentStats, 0, len(depts))
	for _, d := range depts {
		members := groups[d]
		out = append(out, DepartmentStats{
			Department: d,
			Headcount:  len(members),
			FemalePct:  round1(femaleShare(members)),
			AvgTenure:  round1(mean(members, func(e domain.Employee) float64 { return tenureYears(e, now) })),
		})
	}
	return out
}

// HiringMonth is the hires and terminations of one "YYYY-MM" month.
type HiringMonth struct {
	Month string `json:"month"`
	Hires int    `json:"hires"`
	Terms int    `json:"terms"`
}

// MonthlyHiring counts hires and terminations per month and returns the latest
// twelve months that have any movement, oldest first.
func MonthlyHiring(employees []domain.Employee) []HiringMonth {
	byMonth := make(map[string]*HiringMonth)
	bump := func(date string) *HiringMonth {
		idx, ok := parseMonth(date)
		if !ok {
			return nil
		}
		key := FormatMonth(idx)
		if byMonth[key] == nil {
			byMonth[key] = &HiringMonth{Month: key}
		}
		return byMonth[key]
	}
	for _, e := range employees {
		if h := bump(e.HireDate); h != nil {
			h.Hires++
		}
		if e.TermDate == "" {
			continue
		}
		if h := bump(e.TermDate); h != nil {
			h.Terms++
		}
	}

	months := slices.Sorted(maps.Keys(byMonth))
	if len(months) > hiringBuckets {
		months = months[len(months)-hiringBuckets:]
	}
	out := make([]HiringMonth, 0, len(months))
	for _, m := range months {
		out = append(out, *byMonth[m])
	}
	return out
}
