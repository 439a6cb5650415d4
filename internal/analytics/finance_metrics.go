package analytics

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/locvowork/bi_dashboard/internal/domain"
)

// Trend is the direction arrow shown next to a KPI.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// KPI targets of the finance cockpit.
const (
	RevenueGrowthTarget = 12.0
	GrossMarginTarget   = 28.0
	DSOTarget           = 45.0
	CurrentRatioTarget  = 2.0
	CCCTarget           = 50.0

	// currentRatio is not derived from the record sets.
	currentRatio           = 2.1
	currentRatioAttainment = 105.0

	// CCCOffsetDays approximates DIO - DPO in the cockpit cash conversion
	// cycle. The standard formula is in CalculateWorkingCapitalMetrics.
	CCCOffsetDays = 10.0

	cogsRatio     = 0.7
	daysPerYear   = 365.0
	bridgeDefault = "AED"
)

// KPI is one card of the finance cockpit.
type KPI struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Target     float64 `json:"target"`
	Unit       string  `json:"unit"`
	Trend      Trend   `json:"trend"`
	Percentage float64 `json:"percentage"`
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ratio divides and returns 0 instead of NaN or Inf.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	r := num / den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

func mean[T any](items []T, value func(T) float64) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum float64
	for _, it := range items {
		sum += value(it)
	}
	return sum / float64(len(items))
}

// RevenueGrowth is the percent change from the earliest to the latest record.
// Fewer than two records, or a zero starting revenue, give 0.
func RevenueGrowth(records []domain.FinancialRecord) float64 {
	if len(records) < 2 {
		return 0
	}
	ordered := slices.Clone(records)
	slices.SortStableFunc(ordered, func(a, b domain.FinancialRecord) int {
		return strings.Compare(a.Date, b.Date)
	})
	first, last := ordered[0], ordered[len(ordered)-1]
	return ratio(last.Revenue-first.Revenue, first.Revenue) * 100
}

// AverageGrossMargin is the mean per-record gross margin.
func AverageGrossMargin(records []domain.FinancialRecord) float64 {
	return mean(records, func(r domain.FinancialRecord) float64 { return r.GrossMargin })
}

// AverageDSO is the mean days outstanding of the receivables.
func AverageDSO(receivables []domain.ARAPRecord) float64 {
	return mean(receivables, func(r domain.ARAPRecord) float64 { return float64(r.DaysOutstanding) })
}

// CashConversionCycle is the cockpit approximation DSO + CCCOffsetDays.
func CashConversionCycle(avgDSO float64) float64 {
	return avgDSO + CCCOffsetDays
}

func trendIf(up bool) Trend {
	if up {
		return TrendUp
	}
	return TrendDown
}

// CalculateFilteredKPIs builds the cockpit cards. Without financial records
// there is nothing to show and the result is empty.
func CalculateFilteredKPIs(financial []domain.FinancialRecord, workingCapital []domain.WorkingCapitalRecord, receivables []domain.ARAPRecord) []KPI {
	if len(financial) == 0 {
		return []KPI{}
	}
	growth := RevenueGrowth(financial)
	margin := AverageGrossMargin(financial)
	dso := AverageDSO(receivables)
	ccc := CashConversionCycle(dso)

	dsoAttainment := 100.0
	if dso > 0 {
		dsoAttainment = DSOTarget / dso * 100
	}

	return []KPI{
		{
			Name:       "Revenue Growth",
			Value:      round1(growth),
			Target:     RevenueGrowthTarget,
			Unit:       "%",
			Trend:      trendIf(growth > 0),
			Percentage: round1((growth + RevenueGrowthTarget) / RevenueGrowthTarget * 100),
		},
		{
			Name:       "Gross Margin",
			Value:      round1(margin),
			Target:     GrossMarginTarget,
			Unit:       "%",
			Trend:      trendIf(margin > GrossMarginTarget),
			Percentage: round1(margin / GrossMarginTarget * 100),
		},
		{
			Name:       "Days Sales Outstanding",
			Value:      math.Round(dso),
			Target:     DSOTarget,
			Unit:       "days",
			Trend:      trendIf(dso >= DSOTarget),
			Percentage: round1(dsoAttainment),
		},
		{
			Name:       "Current Ratio",
			Value:      currentRatio,
			Target:     CurrentRatioTarget,
			Unit:       "x",
			Trend:      TrendUp,
			Percentage: currentRatioAttainment,
		},
		{
			Name:       "Cash Conversion Cycle",
			Value:      math.Round(ccc),
			Target:     CCCTarget,
			Unit:       "days",
			Trend:      trendIf(ccc >= CCCTarget),
			Percentage: round1(ratio(CCCTarget, ccc) * 100),
		},
	}
}

// FinanceSummary holds the headline P&L totals.
type FinanceSummary struct {
	TotalRevenue  float64 `json:"total_revenue"`
	TotalExpenses float64 `json:"total_expenses"`
	NetProfit     float64 `json:"net_profit"`
	ProfitMargin  float64 `json:"profit_margin"`
	Months        int     `json:"months"`
}

// SummarizeFinancials totals the filtered P&L records.
func SummarizeFinancials(records []domain.FinancialRecord) FinanceSummary {
	var s FinanceSummary
	for _, r := range records {
		s.TotalRevenue += r.Revenue
		s.TotalExpenses += r.Expenses
	}
	s.NetProfit = s.TotalRevenue - s.TotalExpenses
	s.ProfitMargin = round1(ratio(s.NetProfit, s.TotalRevenue) * 100)
	s.Months = len(records)
	return s
}

// WorkingCapitalMetrics are the timing metrics of the working capital tab.
type WorkingCapitalMetrics struct {
	DSO                float64 `json:"dso"`
	DPO                float64 `json:"dpo"`
	DIO                float64 `json:"dio"`
	CCC                float64 `json:"ccc"`
	NetWorkingCapital  float64 `json:"netWorkingCapital"`
	AccountsReceivable float64 `json:"accountsReceivable"`
	Inventory          float64 `json:"inventory"`
	AccountsPayable    float64 `json:"accountsPayable"`
}

// dailyBase spreads an annual amount over the year; zero bases are floored to
// one unit per day.
func dailyBase(annual float64) float64 {
	if annual <= 0 {
		return 1
	}
	return annual / daysPerYear
}

// CalculateWorkingCapitalMetrics derives DSO, DPO, DIO and the standard cash
// conversion cycle DSO + DIO - DPO. Purchases and COGS are taken as 70 % of
// sales.
func CalculateWorkingCapitalMetrics(b domain.WorkingCapitalBalances) WorkingCapitalMetrics {
	dso := round1(b.AccountsReceivable / dailyBase(b.AnnualSales))
	dpo := round1(b.AccountsPayable / dailyBase(b.AnnualSales*cogsRatio))
	dio := round1(b.Inventory / dailyBase(b.AnnualSales*cogsRatio))
	return WorkingCapitalMetrics{
		DSO:                dso,
		DPO:                dpo,
		DIO:                dio,
		CCC:                round1(dso + dio - dpo),
		NetWorkingCapital:  b.AccountsReceivable + b.Inventory - b.AccountsPayable,
		AccountsReceivable: b.AccountsReceivable,
		Inventory:          b.Inventory,
		AccountsPayable:    b.AccountsPayable,
	}
}

// AgingBucket is the open amount and invoice count of one aging bucket.
type AgingBucket struct {
	Name   string  `json:"name"`
	Bucket string  `json:"bucket"`
	Amount float64 `json:"open_amount"`
	Count  int     `json:"invoice_count"`
}

// AgingBuckets groups records by days outstanding. Every bucket is present,
// in display order, even when empty.
func AgingBuckets(records []domain.ARAPRecord) []AgingBucket {
	out := make([]AgingBucket, len(AgingBucketTags))
	for i, tag := range AgingBucketTags {
		out[i] = AgingBucket{Name: tag + " days", Bucket: tag}
	}
	for _, r := range records {
		for i, tag := range AgingBucketTags {
			if InBucket(tag, r.DaysOutstanding) {
				out[i].Amount += r.Amount
				out[i].Count++
				break
			}
		}
	}
	return out
}

// Bridge decomposes the month-over-month revenue change.
type Bridge struct {
	StartValue   float64 `json:"startValue"`
	PriceEffect  float64 `json:"priceEffect"`
	VolumeEffect float64 `json:"volumeEffect"`
	MixEffect    float64 `json:"mixEffect"`
	EndValue     float64 `json:"endValue"`
	Currency     string  `json:"currency"`
}

// CalculateBridge splits end - start into price, volume and mix effects. If
// either period has no lines the whole change is reported as mix.
func CalculateBridge(prev, curr []domain.SalesLine) Bridge {
	sum := func(lines []domain.SalesLine, v func(domain.SalesLine) float64) float64 {
		var s float64
		for _, l := range lines {
			s += v(l)
		}
		return s
	}
	ext := func(l domain.SalesLine) float64 { return l.ExtendedPrice }
	qty := func(l domain.SalesLine) float64 { return l.Quantity }
	price := func(l domain.SalesLine) float64 { return l.UnitPrice }

	b := Bridge{
		StartValue: sum(prev, ext),
		EndValue:   sum(curr, ext),
		Currency:   bridgeDefault,
	}
	if len(prev) == 0 || len(curr) == 0 {
		b.MixEffect = b.EndValue - b.StartValue
		return b
	}
	prevAvg, currAvg := mean(prev, price), mean(curr, price)
	prevQty, currQty := sum(prev, qty), sum(curr, qty)

	b.PriceEffect = math.Round((currAvg - prevAvg) * currQty)
	b.VolumeEffect = math.Round((currQty - prevQty) * prevAvg)
	b.MixEffect = b.EndValue - b.StartValue - b.PriceEffect - b.VolumeEffect
	return b
}

// SplitBridgePeriods separates lines into the anchor month and the month
// before it. Other lines are dropped.
func SplitBridgePeriods(lines []domain.SalesLine, anchor time.Time) (prev, curr []domain.SalesLine) {
	a := monthIndex(anchor.Year(), anchor.Month())
	for _, l := range lines {
		switch monthIndex(l.OrderDate.Year(), l.OrderDate.Month()) {
		case a:
			curr = append(curr, l)
		case a - 1:
			prev = append(prev, l)
		}
	}
	return prev, curr
}
