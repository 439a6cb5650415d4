package handler

import (
	"time"

	"github.com/locvowork/bi_dashboard/internal/analytics"
)

// FinanceFilterRequest is the finance filter panel. Countries, channels and
// statuses are repeated query parameters.
type FinanceFilterRequest struct {
	DateRange string   `query:"date_range"`
	DateStart string   `query:"date_start" validate:"omitempty,month"`
	DateEnd   string   `query:"date_end" validate:"omitempty,month"`
	Countries []string `query:"countries"`
	Channels  []string `query:"channels"`
	Statuses  []string `query:"statuses"`
	// Anchor overrides the configured finance anchor month.
	Anchor string `query:"anchor" validate:"omitempty,month"`
}

// unknownTag is a recognised parameter carrying a value that matches no tag.
// The request still succeeds and the parameter has no effect.
type unknownTag struct {
	Param string
	Value string
}

// tagChecker is implemented by requests with free-form tag parameters.
type tagChecker interface {
	unknownTags() []unknownTag
}

func checkTag(out []unknownTag, param, value string, known bool) []unknownTag {
	if value == "" || known {
		return out
	}
	return append(out, unknownTag{Param: param, Value: value})
}

func (r FinanceFilterRequest) unknownTags() []unknownTag {
	_, ok := analytics.ParseDateRange(r.DateRange)
	return checkTag(nil, "date_range", r.DateRange, ok)
}

func (r FinanceFilterRequest) filterState() analytics.FilterState {
	return analytics.FilterState{
		DateRange: analytics.DateRange(r.DateRange),
		DateStart: r.DateStart,
		DateEnd:   r.DateEnd,
		Countries: r.Countries,
		Channels:  r.Channels,
		Statuses:  r.Statuses,
	}
}

// InvoiceTableRequest adds the AR/AP table toolbar to the finance filters.
type InvoiceTableRequest struct {
	FinanceFilterRequest
	Search          string `query:"search"`
	Status          string `query:"status" validate:"omitempty,oneof=all current overdue critical"`
	DaysOutstanding string `query:"days_outstanding"`
	SortBy          string `query:"sort_by"`
	SortOrder       string `query:"sort_order" validate:"omitempty,oneof=asc desc"`
}

func (r InvoiceTableRequest) unknownTags() []unknownTag {
	out := r.FinanceFilterRequest.unknownTags()
	out = checkTag(out, "days_outstanding", r.DaysOutstanding, analytics.IsDaysOutstandingBucket(r.DaysOutstanding))
	_, ok := analytics.ParseARAPSortKey(r.SortBy)
	return checkTag(out, "sort_by", r.SortBy, ok)
}

func (r InvoiceTableRequest) tableOptions() analytics.TableFilterOptions {
	return analytics.TableFilterOptions{
		Search:          r.Search,
		Status:          r.Status,
		DaysOutstanding: r.DaysOutstanding,
		SortBy:          analytics.ARAPSortKey(r.SortBy),
		SortOrder:       analytics.ParseSortOrder(r.SortOrder),
	}
}

type AgingRequest struct {
	Ledger string `query:"ledger" validate:"omitempty,oneof=ar ap"`
}

// HRFilterRequest is the HR filter panel plus the compa-ratio benchmark scope.
type HRFilterRequest struct {
	DateRange   string   `query:"date_range"`
	Departments []string `query:"departments"`
	Locations   []string `query:"locations"`
	Grades      []string `query:"grades"`
	Scope       string   `query:"scope" validate:"omitempty,oneof=global filtered"`
}

func (r HRFilterRequest) unknownTags() []unknownTag {
	_, ok := analytics.ParseDateRange(r.DateRange)
	return checkTag(nil, "date_range", r.DateRange, ok)
}

func (r HRFilterRequest) filters() analytics.HRFilters {
	return analytics.HRFilters{
		DateRange:   analytics.DateRange(r.DateRange),
		Departments: r.Departments,
		Locations:   r.Locations,
		Grades:      r.Grades,
	}
}

type AttritionRiskRequest struct {
	HRFilterRequest
	SortBy    string `query:"sort_by"`
	SortOrder string `query:"sort_order" validate:"omitempty,oneof=asc desc"`
}

func (r AttritionRiskRequest) unknownTags() []unknownTag {
	_, ok := analytics.ParseRiskSortKey(r.SortBy)
	return checkTag(r.HRFilterRequest.unknownTags(), "sort_by", r.SortBy, ok)
}

type AbsenceRequest struct {
	HRFilterRequest
	Year int `query:"year" validate:"omitempty,min=1900,max=2999"`
}

type EngagementRequest struct {
	Department string `query:"department"`
}

type EmployeeSearchRequest struct {
	Query string `query:"q" validate:"required"`
	Size  int    `query:"size" validate:"omitempty,min=1,max=100"`
}

// SessionConfig holds the server-side defaults every request session starts
// from.
type SessionConfig struct {
	Anchor time.Time
	Scope  analytics.MedianScope
	Now    func() time.Time
}

func (sc SessionConfig) now() time.Time {
	if sc.Now == nil {
		return time.Now()
	}
	return sc.Now()
}

// financeSession builds the session for a finance request.
func (sc SessionConfig) financeSession(tab analytics.Tab, req FinanceFilterRequest) analytics.Session {
	s := analytics.Session{
		Tab:     tab,
		Finance: req.filterState(),
		Scope:   sc.Scope,
		Anchor:  sc.Anchor,
		Now:     sc.now(),
	}
	if t, ok := parseMonthParam(req.Anchor); ok {
		s.Anchor = t
	}
	return s
}

// hrSession builds the session for an HR request.
func (sc SessionConfig) hrSession(tab analytics.Tab, req HRFilterRequest) analytics.Session {
	s := analytics.Session{
		Tab:    tab,
		HR:     req.filters(),
		Scope:  sc.Scope,
		Anchor: sc.Anchor,
		Now:    sc.now(),
	}
	if req.Scope != "" {
		s.Scope = analytics.ParseMedianScope(req.Scope)
	}
	return s
}

// parseMonthParam accepts "YYYY-MM" and "YYYY-MM-DD".
func parseMonthParam(v string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", "2006-01"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
