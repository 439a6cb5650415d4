package analytics

import (
	"time"

	"github.com/locvowork/bi_dashboard/internal/domain"
)

var (
	testAnchor = time.Date(2024, time.September, 30, 0, 0, 0, 0, time.UTC)
	testNow    = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
)

// monthlyRecords returns n consecutive monthly records starting at year-month.
func monthlyRecords(year int, month time.Month, n int) []domain.FinancialRecord {
	out := make([]domain.FinancialRecord, 0, n)
	start := monthIndex(year, month)
	for i := 0; i < n; i++ {
		out = append(out, domain.FinancialRecord{
			Date:        FormatMonth(start + i),
			Revenue:     float64(100 + i),
			GrossMargin: 30,
		})
	}
	return out
}

// steadyEmployee triggers no risk factor when scored at testNow against a
// grade median equal to its salary.
func steadyEmployee(id string) domain.Employee {
	return domain.Employee{
		EmployeeID:        id,
		Alias:             "alias-" + id,
		Gender:            "Male",
		Department:        "Finance",
		Location:          "Dubai",
		Grade:             "G5",
		HireDate:          "2020-01-01",
		Status:            domain.EmployeeActive,
		SalaryAED:         20000,
		PerformanceRating: 5,
		EngagementScore:   4.5,
		OvertimeHoursM:    0,
		LastPromotionDate: "2023-06-01",
	}
}

func dates(records []domain.FinancialRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Date
	}
	return out
}
