package analytics

import (
	"maps"
	"slices"

	"github.com/locvowork/bi_dashboard/internal/domain"
)

var ratingLabels = []string{"1 - Poor", "2 - Below Avg", "3 - Average", "4 - Good", "5 - Excellent"}

// RatingCount is the headcount at one performance rating.
type RatingCount struct {
	Rating int    `json:"rating"`
	Label  string `json:"label"`
	Count  int    `json:"count"`
}

// PerformanceDistribution counts employees per rating. All five ratings are
// returned; out of range ratings are ignored.
func PerformanceDistribution(employees []domain.Employee) []RatingCount {
	out := make([]RatingCount, len(ratingLabels))
	for i, l := range ratingLabels {
		out[i] = RatingCount{Rating: i + 1, Label: l}
	}
	for _, e := range employees {
		if e.PerformanceRating >= 1 && e.PerformanceRating <= len(out) {
			out[e.PerformanceRating-1].Count++
		}
	}
	return out
}

// LevelCount is the headcount in one engagement band.
type LevelCount struct {
	Level string `json:"level"`
	Count int    `json:"count"`
}

// EngagementLevels bands engagement scores into low (<= 3.0), medium
// (<= 3.8) and high.
func EngagementLevels(employees []domain.Employee) []LevelCount {
	out := []LevelCount{{Level: "Low"}, {Level: "Medium"}, {Level: "High"}}
	for _, e := range employees {
		switch {
		case e.EngagementScore <= 3.0:
			out[0].Count++
		case e.EngagementScore <= 3.8:
			out[1].Count++
		default:
			out[2].Count++
		}
	}
	return out
}

// DepartmentPerformance is the average rating and engagement of a department.
type DepartmentPerformance struct {
	Department    string  `json:"department"`
	AvgRating     float64 `json:"avgRating"`
	AvgEngagement float64 `json:"avgEngagement"`
	Headcount     int     `json:"headcount"`
}

// PerformanceSummary backs the engagement and performance tab.
type PerformanceSummary struct {
	AvgPerformance float64                 `json:"avgPerformance"`
	AvgEngagement  float64                 `json:"avgEngagement"`
	HighPerformers int                     `json:"highPerformers"`
	LowPerformers  int                     `json:"lowPerformers"`
	Distribution   []RatingCount           `json:"distribution"`
	Engagement     []LevelCount            `json:"engagementLevels"`
	ByDepartment   []DepartmentPerformance `json:"byDepartment"`
}

func ratingOf(e domain.Employee) float64     { return float64(e.PerformanceRating) }
func engagementOf(e domain.Employee) float64 { return e.EngagementScore }

// SummarizePerformance computes the performance tab over employees. High
// performers are rated 4 or more, low performers 2 or less.
func SummarizePerformance(employees []domain.Employee) PerformanceSummary {
	s := PerformanceSummary{
		AvgPerformance: round1(mean(employees, ratingOf)),
		AvgEngagement:  round1(mean(employees, engagementOf)),
		Distribution:   PerformanceDistribution(employees),
		Engagement:     EngagementLevels(employees),
	}
	for _, e := range employees {
		switch {
		case e.PerformanceRating >= 4:
			s.HighPerformers++
		case e.PerformanceRating <= 2:
			s.LowPerformers++
		}
	}
	groups, depts := groupBy(employees, func(e domain.Employee) string { return e.Department })
	for _, d := range depts {
		s.ByDepartment = append(s.ByDepartment, DepartmentPerformance{
			Department:    d,
			AvgRating:     round1(mean(groups[d], ratingOf)),
			AvgEngagement: round1(mean(groups[d], engagementOf)),
			Headcount:     len(groups[d]),
		})
	}
	return s
}

// EngagementTrend returns the latest twelve monthly survey averages, oldest
// first. Several rows for the same month are averaged weighted by responses.
func EngagementTrend(scores []domain.EngagementScore) []domain.EngagementScore {
	type acc struct {
		weighted  float64
		responses int
		rows      int
		sum       float64
	}
	byMonth := make(map[string]*acc)
	for _, s := range scores {
		idx, ok := parseMonth(s.Month)
		if !ok {
			continue
		}
		key := FormatMonth(idx)
		a := byMonth[key]
		if a == nil {
			a = &acc{}
			byMonth[key] = a
		}
		a.weighted += s.EngagementScore * float64(s.Responses)
		a.responses += s.Responses
		a.sum += s.EngagementScore
		a.rows++
	}

	months := slices.Sorted(maps.Keys(byMonth))
	if len(months) > hiringBuckets {
		months = months[len(months)-hiringBuckets:]
	}
	out := make([]domain.EngagementScore, 0, len(months))
	for _, m := range months {
		a := byMonth[m]
		score := ratio(a.sum, float64(a.rows))
		if a.responses > 0 {
			score = a.weighted / float64(a.responses)
		}
		out = append(out, domain.EngagementScore{
			Month:           m,
			EngagementScore: round2(score),
			Responses:       a.responses,
		})
	}
	return out
}
