// Package financeapi is a typed client for the dashboard's finance HTTP API.
package financeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/locvowork/bi_dashboard/internal/analytics"
	"github.com/locvowork/bi_dashboard/internal/domain"
	"github.com/locvowork/bi_dashboard/internal/service"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds every request. Requests are never retried.
const DefaultTimeout = 10 * time.Second

const unexpectedError = "An unexpected error occurred"

// APIError is a non-2xx answer, or a 2xx answer with success=false.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("finance api: status %d: %s", e.Status, e.Message)
}

// ErrorMessage renders err for display: the server's error text when there is
// one, otherwise the transport error.
func ErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return unexpectedError
}

// Filters is the finance filter selection sent with each request.
type Filters struct {
	DateRange string
	DateStart string
	DateEnd   string
	Anchor    string
	Countries []string
	Channels  []string
	Statuses  []string
}

func (f Filters) values() url.Values {
	v := url.Values{}
	for _, c := range f.Countries {
		v.Add("countries", c)
	}
	for _, c := range f.Channels {
		v.Add("channels", c)
	}
	for _, s := range f.Statuses {
		v.Add("statuses", s)
	}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("date_range", f.DateRange)
	set("date_start", f.DateStart)
	set("date_end", f.DateEnd)
	set("anchor", f.Anchor)
	return v
}

// TableOptions is the AR/AP table toolbar.
type TableOptions struct {
	Search          string
	Status          string
	DaysOutstanding string
	SortBy          string
	SortOrder       string
}

func (t TableOptions) apply(v url.Values) url.Values {
	for key, val := range map[string]string{
		"search":           t.Search,
		"status":           t.Status,
		"days_outstanding": t.DaysOutstanding,
		"sort_by":          t.SortBy,
		"sort_order":       t.SortOrder,
	} {
		if val != "" {
			v.Set(key, val)
		}
	}
	return v
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the API at baseURL. A zero timeout means
// DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// get fetches path and decodes the envelope's data into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(body, &env)
	if resp.StatusCode >= http.StatusBadRequest || (decodeErr == nil && !env.Success) {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to parse response: %w", decodeErr)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", path, err)
	}
	return nil
}

func (c *Client) Dashboard(ctx context.Context, f Filters) (*service.FinanceDashboard, error) {
	var out service.FinanceDashboard
	if err := c.get(ctx, "/api/finance/dashboard", f.values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Monthly(ctx context.Context, f Filters) ([]domain.FinancialRecord, error) {
	var out []domain.FinancialRecord
	if err := c.get(ctx, "/api/finance/data/monthly", f.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CashFlow(ctx context.Context, f Filters) ([]domain.CashFlowRecord, error) {
	var out []domain.CashFlowRecord
	if err := c.get(ctx, "/api/finance/data/cashflow", f.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) WorkingCapital(ctx context.Context, f Filters) ([]domain.WorkingCapitalRecord, error) {
	var out []domain.WorkingCapitalRecord
	if err := c.get(ctx, "/api/finance/data/working-capital", f.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Aging buckets one ledger, domain.LedgerReceivable or domain.LedgerPayable.
func (c *Client) Aging(ctx context.Context, ledger string) ([]analytics.AgingBucket, error) {
	var out []analytics.AgingBucket
	if err := c.get(ctx, "/api/finance/data/aging", url.Values{"ledger": {ledger}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Bridge(ctx context.Context, f Filters) (analytics.Bridge, error) {
	var out analytics.Bridge
	if err := c.get(ctx, "/api/finance/data/bridge", f.values(), &out); err != nil {
		return analytics.Bridge{}, err
	}
	return out, nil
}

// Invoices lists one ledger with the table options applied server side.
func (c *Client) Invoices(ctx context.Context, ledger string, f Filters, t TableOptions) ([]domain.ARAPRecord, error) {
	var out []domain.ARAPRecord
	if err := c.get(ctx, "/api/finance/invoices/"+ledger, t.apply(f.values()), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) WorkingCapitalMetrics(ctx context.Context, f Filters) (analytics.WorkingCapitalMetrics, error) {
	var out analytics.WorkingCapitalMetrics
	if err := c.get(ctx, "/api/finance/metrics/working-capital", f.values(), &out); err != nil {
		return analytics.WorkingCapitalMetrics{}, err
	}
	return out, nil
}

func (c *Client) FilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	var out domain.FilterOptions
	if err := c.get(ctx, "/api/finance/filters", nil, &out); err != nil {
		return domain.FilterOptions{}, err
	}
	return out, nil
}

// Cockpit is everything the finance cockpit view renders.
type Cockpit struct {
	Dashboard   *service.FinanceDashboard
	Options     domain.FilterOptions
	Receivables []domain.ARAPRecord
	Payables    []domain.ARAPRecord
}

// FetchCockpit loads the cockpit endpoints concurrently. Any failure fails
// the whole fetch.
func (c *Client) FetchCockpit(ctx context.Context, f Filters) (*Cockpit, error) {
	var out Cockpit
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.Dashboard, err = c.Dashboard(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		out.Options, err = c.FilterOptions(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Receivables, err = c.Invoices(gctx, domain.LedgerReceivable, f, TableOptions{})
		return err
	})
	g.Go(func() (err error) {
		out.Payables, err = c.Invoices(gctx, domain.LedgerPayable, f, TableOptions{})
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
