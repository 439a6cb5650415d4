package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/bi_dashboard/internal/domain"
)

func TestScoreEmployee_Maximum(t *testing.T) {
	e := steadyEmployee("E1")
	e.PerformanceRating = 1
	e.EngagementScore = 2.5
	e.HireDate = "2024-02-26" // about 0.3 years before testNow
	e.LastPromotionDate = "2020-01-01"
	e.OvertimeHoursM = 30
	e.SalaryAED = 8500

	a := ScoreEmployee(e, 10000, testNow)
	assert.Equal(t, 100, a.Score)
	assert.Equal(t, "Low performance, Low engagement, New hire risk, >3y since promotion, High overtime, Below grade median pay", a.Reasons)
	assert.InDelta(t, 0.85, a.CompaRatio, 1e-9)
	assert.Equal(t, 0.3, a.TenureYears)
}

func TestScoreEmployee_NoFactors(t *testing.T) {
	a := ScoreEmployee(steadyEmployee("E1"), 20000, testNow)
	assert.Equal(t, 0, a.Score)
	assert.Equal(t, NoRiskReasons, a.Reasons)
}

func TestScoreEmployee_SecondTier(t *testing.T) {
	e := steadyEmployee("E1")
	e.PerformanceRating = 3
	e.EngagementScore = 3.2
	e.HireDate = "2023-09-15"
	e.LastPromotionDate = ""
	e.OvertimeHoursM = 22
	e.SalaryAED = 18400

	a := ScoreEmployee(e, 20000, testNow)
	assert.Equal(t, 10+15+8+5+5, a.Score)
	assert.Equal(t, "Average performance, Moderate engagement, Early tenure, Elevated overtime, Slightly below grade median pay", a.Reasons)
}

func TestScoreEmployee_PromotionFallsBackToTenure(t *testing.T) {
	e := steadyEmployee("E1")
	e.LastPromotionDate = ""
	e.HireDate = "2019-01-01"

	a := ScoreEmployee(e, e.SalaryAED, testNow)
	assert.Equal(t, 15, a.Score)
	assert.Equal(t, ">3y since promotion", a.Reasons)
}

func TestScoreEmployee_UnknownHireDate(t *testing.T) {
	e := steadyEmployee("E1")
	e.HireDate = "n/a"
	e.LastPromotionDate = ""

	a := ScoreEmployee(e, e.SalaryAED, testNow)
	assert.Equal(t, 0, a.Score)
	assert.Equal(t, 0.0, a.TenureYears)
}

func TestScoreEmployee_MissingMedian(t *testing.T) {
	assert.Equal(t, 1.0, CompaRatio(5000, 0))
	a := ScoreEmployee(steadyEmployee("E1"), 0, testNow)
	assert.Equal(t, 0, a.Score)
}

func TestScoreEmployee_Monotonic(t *testing.T) {
	score := func(mut func(*domain.Employee)) int {
		e := steadyEmployee("E1")
		mut(&e)
		return ScoreEmployee(e, 20000, testNow).Score
	}

	prev := -1
	for rating := 5; rating >= 1; rating-- {
		s := score(func(e *domain.Employee) { e.PerformanceRating = rating })
		assert.GreaterOrEqual(t, s, prev, "rating=%d", rating)
		prev = s
	}

	prev = -1
	for _, eng := range []float64{5, 4, 3.5, 3.49, 3.0, 2.99, 1} {
		s := score(func(e *domain.Employee) { e.EngagementScore = eng })
		assert.GreaterOrEqual(t, s, prev, "engagement=%v", eng)
		prev = s
	}

	prev = -1
	for _, ot := range []float64{0, 20, 20.5, 25, 25.5, 60} {
		s := score(func(e *domain.Employee) { e.OvertimeHoursM = ot })
		assert.GreaterOrEqual(t, s, prev, "overtime=%v", ot)
		prev = s
	}

	prev = -1
	for _, salary := range []float64{20000, 19000, 18900, 18000, 17900, 1000} {
		s := score(func(e *domain.Employee) { e.SalaryAED = salary })
		assert.GreaterOrEqual(t, s, prev, "salary=%v", salary)
		prev = s
	}
}

func TestScoreEmployee_Bounds(t *testing.T) {
	for rating := 1; rating <= 5; rating++ {
		for _, eng := range []float64{1, 3.2, 5} {
			for _, ot := range []float64{0, 22, 40} {
				e := steadyEmployee("E")
				e.PerformanceRating = rating
				e.EngagementScore = eng
				e.OvertimeHoursM = ot
				e.HireDate = "2024-05-01"
				e.LastPromotionDate = ""
				s := ScoreEmployee(e, 40000, testNow).Score
				assert.GreaterOrEqual(t, s, 0)
				assert.LessOrEqual(t, s, MaxRiskScore)
			}
		}
	}
}

func TestGradeMedians(t *testing.T) {
	mk := func(grade string, salary float64, status string) domain.Employee {
		e := steadyEmployee("E")
		e.Grade, e.SalaryAED, e.Status = grade, salary, status
		return e
	}
	medians := GradeMedians([]domain.Employee{
		mk("G1", 40, domain.EmployeeActive),
		mk("G1", 10, domain.EmployeeActive),
		mk("G1", 30, domain.EmployeeActive),
		mk("G1", 20, domain.EmployeeActive),
		mk("G1", 1000, domain.EmployeeTerminated),
		mk("G2", 7, domain.EmployeeActive),
	})
	assert.Equal(t, map[string]float64{"G1": 30, "G2": 7}, medians)
	assert.Empty(t, GradeMedians(nil))
}

func TestCalculateAttritionRisk_MedianScope(t *testing.T) {
	mk := func(id string, salary float64) domain.Employee {
		e := steadyEmployee(id)
		e.SalaryAED = salary
		return e
	}
	population := []domain.Employee{mk("E1", 10000), mk("E2", 20000), mk("E3", 30000)}
	subset := population[:1]

	filtered := CalculateAttritionRisk(subset, RiskOptions{Scope: ScopeFiltered, Population: population, Now: testNow})
	require.Len(t, filtered, 1)
	assert.Equal(t, 0, filtered[0].RiskScore)
	assert.Equal(t, 1.0, filtered[0].CompaRatio)

	global := CalculateAttritionRisk(subset, RiskOptions{Scope: ScopeGlobal, Population: population, Now: testNow})
	require.Len(t, global, 1)
	assert.Equal(t, 10, global[0].RiskScore)
	assert.Equal(t, 0.5, global[0].CompaRatio)
	assert.Equal(t, "Below grade median pay", global[0].Reasons)
}

func TestCalculateAttritionRisk_Ranking(t *testing.T) {
	low := steadyEmployee("LOW")
	tieA := steadyEmployee("TIE-A")
	tieA.OvertimeHoursM = 30
	tieB := steadyEmployee("TIE-B")
	tieB.OvertimeHoursM = 30
	high := steadyEmployee("HIGH")
	high.PerformanceRating = 1
	gone := steadyEmployee("GONE")
	gone.Status = domain.EmployeeTerminated
	gone.PerformanceRating = 1

	rows := CalculateAttritionRisk([]domain.Employee{low, tieA, gone, tieB, high}, RiskOptions{Now: testNow})
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.EmployeeID
	}
	assert.Equal(t, []string{"HIGH", "TIE-A", "TIE-B", "LOW"}, ids)
	assert.Equal(t, "alias-HIGH", rows[0].Alias)

	assert.Empty(t, CalculateAttritionRisk(nil, RiskOptions{Now: testNow}))
}

func TestParseMedianScope(t *testing.T) {
	assert.Equal(t, ScopeGlobal, ParseMedianScope("GLOBAL"))
	assert.Equal(t, ScopeFiltered, ParseMedianScope("filtered"))
	assert.Equal(t, ScopeFiltered, ParseMedianScope(""))
}
