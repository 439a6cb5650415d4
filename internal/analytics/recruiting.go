package analytics

import (
	"maps"
	"math"
	"slices"
	"time"

	"github.com/locvowork/bi_dashboard/internal/domain"
)

// Requisition statuses and candidate stages used by the recruiting view.
const (
	RequisitionOpen   = "Open"
	RequisitionClosed = "Closed"

	StageOffer = "Offer"
	StageHired = "Hired"

	submissionMonths = 6
)

// StageCount is one step of the candidate funnel.
type StageCount struct {
	Stage      string  `json:"stage"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// StageFunnel counts candidates per stage in funnel order. Stages with no
// candidates are left out. Percentage is the share of all candidates.
func StageFunnel(candidates []domain.Candidate) []StageCount {
	counts := make(map[string]int, len(domain.CandidateStages))
	for _, c := range candidates {
		counts[c.Stage]++
	}
	out := make([]StageCount, 0, len(domain.CandidateStages))
	for _, stage := range domain.CandidateStages {
		n := counts[stage]
		if n == 0 {
			continue
		}
		out = append(out, StageCount{
			Stage:      stage,
			Count:      n,
			Percentage: round1(ratio(float64(n), float64(len(candidates))) * 100),
		})
	}
	return out
}

// DepartmentOpenings is the requisition count of a department.
type DepartmentOpenings struct {
	Department string `json:"department"`
	Openings   int    `json:"openings"`
}

// MonthCount is a count for one "YYYY-MM" month.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// RecruitingSummary backs the recruiting pipeline tab.
type RecruitingSummary struct {
	TotalRequisitions   int                  `json:"totalRequisitions"`
	OpenRequisitions    int                  `json:"openRequisitions"`
	ClosedRequisitions  int                  `json:"closedRequisitions"`
	AvgDaysOpen         float64              `json:"avgDaysOpen"`
	TotalHires          int                  `json:"totalHires"`
	OfferAcceptanceRate float64              `json:"offerAcceptanceRate"`
	Funnel              []StageCount         `json:"funnel"`
	ByDepartment        []DepartmentOpenings `json:"byDepartment"`
	Submissions         []MonthCount         `json:"submissions"`
}

// SummarizeRecruiting computes the recruiting tab. Days open run from the
// requisition open date to now. Offer acceptance is hires over candidates that
// reached an offer.
func SummarizeRecruiting(reqs []domain.Requisition, candidates []domain.Candidate, now time.Time) RecruitingSummary {
	s := RecruitingSummary{
		TotalRequisitions: len(reqs),
		Funnel:            StageFunnel(candidates),
	}

	var daysOpen []float64
	for _, r := range reqs {
		switch r.Status {
		case RequisitionOpen:
			s.OpenRequisitions++
		case RequisitionClosed:
			s.ClosedRequisitions++
		}
		if opened, ok := parseDay(r.OpenDate, now); ok {
			daysOpen = append(daysOpen, math.Floor(now.Sub(opened).Hours()/24))
		}
	}
	s.AvgDaysOpen = math.Round(mean(daysOpen, func(d float64) float64 { return d }))

	var offers int
	for _, c := range candidates {
		switch c.Stage {
		case StageHired:
			s.TotalHires++
		case StageOffer:
			offers++
		}
	}
	s.OfferAcceptanceRate = round1(ratio(float64(s.TotalHires), float64(offers+s.TotalHires)) * 100)

	groups, depts := groupBy(reqs, func(r domain.Requisition) string { return r.Department })
	for _, d := range depts {
		s.ByDepartment = append(s.ByDepartment, DepartmentOpenings{Department: d, Openings: len(groups[d])})
	}

	perMonth := make(map[string]int)
	for _, c := range candidates {
		if idx, ok := parseMonth(c.SubmittedDate); ok {
			perMonth[FormatMonth(idx)]++
		}
	}
	months := slices.Sorted(maps.Keys(perMonth))
	if len(months) > submissionMonths {
		months = months[len(months)-submissionMonths:]
	}
	for _, m := range months {
		s.Submissions = append(s.Submissions, MonthCount{Month: m, Count: perMonth[m]})
	}
	return s
}
