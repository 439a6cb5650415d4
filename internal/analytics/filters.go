package analytics

import (
	"slices"
	"strings"
	"time"

	"github.com/locvowork/bi_dashboard/internal/domain"
)

// FilterState is the finance filter panel selection.
type FilterState struct {
	DateRange DateRange `json:"dateRange" query:"date_range"`
	Countries []string  `json:"countries" query:"countries"`
	Channels  []string  `json:"channels" query:"channels"`
	Statuses  []string  `json:"statuses" query:"statuses"`
	// DateStart and DateEnd are explicit "YYYY-MM" or "YYYY-MM-DD" bounds.
	// Either one replaces DateRange.
	DateStart string `json:"dateStart,omitempty" query:"date_start"`
	DateEnd   string `json:"dateEnd,omitempty" query:"date_end"`
}

// IsEmpty reports whether the state applies no constraint at all.
func (f FilterState) IsEmpty() bool {
	_, dated := f.window(time.Time{})
	return !dated && len(f.Countries) == 0 && len(f.Channels) == 0 && len(f.Statuses) == 0
}

// HRFilters is the HR filter panel selection.
type HRFilters struct {
	DateRange   DateRange `json:"dateRange" query:"date_range"`
	Departments []string  `json:"departments" query:"departments"`
	Locations   []string  `json:"locations" query:"locations"`
	Grades      []string  `json:"grades" query:"grades"`
}

// Days-outstanding buckets.
const (
	BucketAll     = "all"
	Bucket0To30   = "0-30"
	Bucket31To60  = "31-60"
	Bucket61To90  = "61-90"
	Bucket90Plus  = "90+"
	StatusAnyARAP = "all"
)

// AgingBucketTags lists the buckets in display order.
var AgingBucketTags = []string{Bucket0To30, Bucket31To60, Bucket61To90, Bucket90Plus}

// IsDaysOutstandingBucket reports whether s is "all" or one of AgingBucketTags.
func IsDaysOutstandingBucket(s string) bool {
	return s == BucketAll || slices.Contains(AgingBucketTags, s)
}

// TableFilterOptions is the AR/AP table toolbar selection.
type TableFilterOptions struct {
	Search          string      `json:"search" query:"search"`
	Status          string      `json:"status" query:"status"`
	DaysOutstanding string      `json:"daysOutstanding" query:"days_outstanding"`
	SortBy          ARAPSortKey `json:"sortBy" query:"sort_by"`
	SortOrder       SortOrder   `json:"sortOrder" query:"sort_order"`
}

// keep returns the records matching pred, in input order, in a new slice.
func keep[T any](records []T, pred func(T) bool) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// inSelection: an empty selection admits everything.
func inSelection(selected []string, value string) bool {
	return len(selected) == 0 || slices.Contains(selected, value)
}

// InOptionalSelection is the finance facet check: an empty selection admits
// everything and a record without the facet value is never excluded.
func InOptionalSelection(selected []string, value string) bool {
	return value == "" || inSelection(selected, value)
}

// FilterFinancialData applies the date range and facet selection to monthly
// P&L records. Finance ranges are resolved against anchor, not the clock.
func FilterFinancialData(records []domain.FinancialRecord, f FilterState, anchor time.Time) []domain.FinancialRecord {
	window, dated := f.window(anchor)
	return keep(records, func(r domain.FinancialRecord) bool {
		if dated {
			idx, ok := parseMonth(r.Date)
			if !ok || !window.contains(idx) {
				return false
			}
		}
		return InOptionalSelection(f.Countries, r.Country) &&
			InOptionalSelection(f.Channels, r.Channel) &&
			InOptionalSelection(f.Statuses, r.Status)
	})
}

// FilterWorkingCapitalData applies only the date range; month labels are
// placed in the anchor year.
func FilterWorkingCapitalData(records []domain.WorkingCapitalRecord, f FilterState, anchor time.Time) []domain.WorkingCapitalRecord {
	window, dated := f.window(anchor)
	return keep(records, func(r domain.WorkingCapitalRecord) bool {
		return !dated || labelInWindow(r.Month, window, anchor.Year())
	})
}

// FilterCashFlowData applies only the date range.
func FilterCashFlowData(records []domain.CashFlowRecord, f FilterState, anchor time.Time) []domain.CashFlowRecord {
	window, dated := f.window(anchor)
	return keep(records, func(r domain.CashFlowRecord) bool {
		return !dated || labelInWindow(r.Month, window, anchor.Year())
	})
}

func labelInWindow(label string, w monthWindow, year int) bool {
	idx, ok := labelMonth(label, year)
	return ok && w.contains(idx)
}

// InBucket reports whether days falls in the bucket. Unknown tags match
// everything.
func InBucket(bucket string, days int) bool {
	switch bucket {
	case Bucket0To30:
		return days <= 30
	case Bucket31To60:
		return days > 30 && days <= 60
	case Bucket61To90:
		return days > 60 && days <= 90
	case Bucket90Plus:
		return days > 90
	default:
		return true
	}
}

// FilterARAPData applies search, status and bucket filters then sorts by the
// requested column.
func FilterARAPData(records []domain.ARAPRecord, opts TableFilterOptions) []domain.ARAPRecord {
	search := strings.ToLower(strings.TrimSpace(opts.Search))
	filtered := keep(records, func(r domain.ARAPRecord) bool {
		if search != "" && !strings.Contains(strings.ToLower(r.CustomerSupplier), search) {
			return false
		}
		if opts.Status != "" && opts.Status != StatusAnyARAP && r.Status != opts.Status {
			return false
		}
		return InBucket(opts.DaysOutstanding, r.DaysOutstanding)
	})
	return SortARAP(filtered, opts.SortBy, opts.SortOrder)
}

// FilterEmployees applies facet and hire date filters. HR ranges are relative
// to now.
func FilterEmployees(employees []domain.Employee, f HRFilters, now time.Time) []domain.Employee {
	start, dated := hrRangeStart(f.DateRange, now)
	return keep(employees, func(e domain.Employee) bool {
		if !inSelection(f.Departments, e.Department) ||
			!inSelection(f.Locations, e.Location) ||
			!inSelection(f.Grades, e.Grade) {
			return false
		}
		if dated {
			// unparseable hire dates are not excluded
			if hired, ok := parseDay(e.HireDate, now); ok && hired.Before(start) {
				return false
			}
		}
		return true
	})
}

// FilterRequisitions keeps requisitions of the selected departments.
func FilterRequisitions(reqs []domain.Requisition, f HRFilters) []domain.Requisition {
	return keep(reqs, func(r domain.Requisition) bool {
		return inSelection(f.Departments, r.Department)
	})
}

// FilterCandidates keeps candidates attached to one of reqs.
func FilterCandidates(candidates []domain.Candidate, reqs []domain.Requisition) []domain.Candidate {
	ids := make(map[string]struct{}, len(reqs))
	for _, r := range reqs {
		ids[r.ReqID] = struct{}{}
	}
	return keep(candidates, func(c domain.Candidate) bool {
		_, ok := ids[c.ReqID]
		return ok
	})
}

// FilterLeave keeps leave booked by one of employees.
func FilterLeave(leave []domain.LeaveRecord, employees []domain.Employee) []domain.LeaveRecord {
	ids := make(map[string]struct{}, len(employees))
	for _, e := range employees {
		ids[e.EmployeeID] = struct{}{}
	}
	return keep(leave, func(l domain.LeaveRecord) bool {
		_, ok := ids[l.EmployeeID]
		return ok
	})
}
