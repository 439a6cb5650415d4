package analytics

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/locvowork/bi_dashboard/internal/domain"
)

// MaxRiskScore caps the attrition risk total.
const MaxRiskScore = 100

// NoRiskReasons is shown when no factor triggers.
const NoRiskReasons = "—"

// MedianScope selects the population grade medians are computed over.
type MedianScope string

const (
	// ScopeFiltered benchmarks pay against the employees being scored.
	ScopeFiltered MedianScope = "filtered"
	// ScopeGlobal benchmarks pay against RiskOptions.Population.
	ScopeGlobal MedianScope = "global"
)

// ParseMedianScope maps anything other than "global" to ScopeFiltered.
func ParseMedianScope(s string) MedianScope {
	if strings.EqualFold(s, string(ScopeGlobal)) {
		return ScopeGlobal
	}
	return ScopeFiltered
}

// riskTier is one threshold of a factor: when hit it adds points and a label.
type riskTier struct {
	points int
	label  string
}

// riskInputs are the per-employee values the factors look at.
type riskInputs struct {
	performance  int
	engagement   float64
	tenure       float64
	sincePromo   float64
	overtime     float64
	compaRatio   float64
	tenureKnown  bool
	sincePromoOK bool
}

// riskFactor returns the tier hit by in, or nil.
type riskFactor func(in riskInputs) *riskTier

var (
	lowPerformance     = &riskTier{25, "Low performance"}
	averagePerformance = &riskTier{10, "Average performance"}
	lowEngagement      = &riskTier{25, "Low engagement"}
	moderateEngagement = &riskTier{15, "Moderate engagement"}
	newHire            = &riskTier{15, "New hire risk"}
	earlyTenure        = &riskTier{8, "Early tenure"}
	stalledPromotion   = &riskTier{15, ">3y since promotion"}
	slowPromotion      = &riskTier{8, ">2y since promotion"}
	highOvertime       = &riskTier{10, "High overtime"}
	elevatedOvertime   = &riskTier{5, "Elevated overtime"}
	belowMedianPay     = &riskTier{10, "Below grade median pay"}
	slightlyBelowPay   = &riskTier{5, "Slightly below grade median pay"}
)

// riskFactors are evaluated in this order, which is also the order of reasons.
var riskFactors = []riskFactor{
	func(in riskInputs) *riskTier {
		switch {
		case in.performance <= 2:
			return lowPerformance
		case in.performance == 3:
			return averagePerformance
		}
		return nil
	},
	func(in riskInputs) *riskTier {
		switch {
		case in.engagement < 3.0:
			return lowEngagement
		case in.engagement < 3.5:
			return moderateEngagement
		}
		return nil
	},
	func(in riskInputs) *riskTier {
		switch {
		case !in.tenureKnown:
			return nil
		case in.tenure < 0.5:
			return newHire
		case in.tenure < 1:
			return earlyTenure
		}
		return nil
	},
	func(in riskInputs) *riskTier {
		switch {
		case !in.sincePromoOK:
			return nil
		case in.sincePromo > 3:
			return stalledPromotion
		case in.sincePromo > 2:
			return slowPromotion
		}
		return nil
	},
	func(in riskInputs) *riskTier {
		switch {
		case in.overtime > 25:
			return highOvertime
		case in.overtime > 20:
			return elevatedOvertime
		}
		return nil
	},
	func(in riskInputs) *riskTier {
		switch {
		case in.compaRatio < 0.90:
			return belowMedianPay
		case in.compaRatio < 0.95:
			return slightlyBelowPay
		}
		return nil
	},
}

// RiskAssessment is the score of one employee.
type RiskAssessment struct {
	Score       int
	Reasons     string
	TenureYears float64
	CompaRatio  float64
}

// CompaRatio is salary over the grade median. A missing or non-positive median
// gives 1.
func CompaRatio(salary, gradeMedian float64) float64 {
	if gradeMedian <= 0 {
		return 1
	}
	return salary / gradeMedian
}

// ScoreEmployee applies the six risk factors to emp. Without a promotion date
// the time since promotion is the tenure. An unparseable hire date scores no
// tenure or promotion points.
func ScoreEmployee(emp domain.Employee, gradeMedian float64, now time.Time) RiskAssessment {
	in := riskInputs{
		performance: emp.PerformanceRating,
		engagement:  emp.EngagementScore,
		overtime:    emp.OvertimeHoursM,
		compaRatio:  CompaRatio(emp.SalaryAED, gradeMedian),
	}
	if hired, ok := parseDay(emp.HireDate, now); ok {
		in.tenure = yearsBetween(hired, now)
		in.tenureKnown = true
		in.sincePromo, in.sincePromoOK = in.tenure, true
	}
	if emp.LastPromotionDate != "" {
		promoted, ok := parseDay(emp.LastPromotionDate, now)
		in.sincePromoOK = ok
		if ok {
			in.sincePromo = yearsBetween(promoted, now)
		}
	}

	var score int
	var reasons []string
	for _, factor := range riskFactors {
		if tier := factor(in); tier != nil {
			score += tier.points
			reasons = append(reasons, tier.label)
		}
	}

	a := RiskAssessment{
		Score:       min(score, MaxRiskScore),
		Reasons:     NoRiskReasons,
		TenureYears: round1(in.tenure),
		CompaRatio:  in.compaRatio,
	}
	if len(reasons) > 0 {
		a.Reasons = strings.Join(reasons, ", ")
	}
	return a
}

// GradeMedians returns the median salary per grade over active employees. The
// upper median is used for even counts.
func GradeMedians(employees []domain.Employee) map[string]float64 {
	byGrade := make(map[string][]float64)
	for _, e := range employees {
		if e.IsActive() {
			byGrade[e.Grade] = append(byGrade[e.Grade], e.SalaryAED)
		}
	}
	medians := make(map[string]float64, len(byGrade))
	for grade, salaries := range byGrade {
		medians[grade] = upperMedian(salaries)
	}
	return medians
}

func upperMedian(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return sorted[len(sorted)/2]
}

// AttritionRiskEmployee is one row of the attrition risk table.
type AttritionRiskEmployee struct {
	EmployeeID        string  `json:"employee_id"`
	Alias             string  `json:"alias"`
	Department        string  `json:"department"`
	Location          string  `json:"location"`
	Grade             string  `json:"grade"`
	TenureYears       float64 `json:"tenure_years"`
	PerformanceRating int     `json:"performance_rating"`
	EngagementScore   float64 `json:"engagement_score"`
	CompaRatio        float64 `json:"compa_ratio"`
	RiskScore         int     `json:"risk_score"`
	Reasons           string  `json:"reasons"`
}

// RiskOptions control CalculateAttritionRisk.
type RiskOptions struct {
	Scope MedianScope
	// Population is the benchmark for ScopeGlobal, usually the unfiltered
	// employee set.
	Population []domain.Employee
	Now        time.Time
}

// CalculateAttritionRisk scores the active employees and ranks them by score,
// highest first. Ties keep input order.
func CalculateAttritionRisk(employees []domain.Employee, opts RiskOptions) []AttritionRiskEmployee {
	benchmark := employees
	if opts.Scope == ScopeGlobal && opts.Population != nil {
		benchmark = opts.Population
	}
	medians := GradeMedians(benchmark)

	out := make([]AttritionRiskEmployee, 0, len(employees))
	for _, e := range employees {
		if !e.IsActive() {
			continue
		}
		a := ScoreEmployee(e, medians[e.Grade], opts.Now)
		out = append(out, AttritionRiskEmployee{
			EmployeeID:        e.EmployeeID,
			Alias:             e.Alias,
			Department:        e.Department,
			Location:          e.Location,
			Grade:             e.Grade,
			TenureYears:       a.TenureYears,
			PerformanceRating: e.PerformanceRating,
			EngagementScore:   e.EngagementScore,
			CompaRatio:        round2(a.CompaRatio),
			RiskScore:         a.Score,
			Reasons:           a.Reasons,
		})
	}
	return SortRisk(out, RiskByScore, SortDesc)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
