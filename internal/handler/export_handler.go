package handler

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/bi_dashboard/internal/analytics"
	"github.com/locvowork/bi_dashboard/internal/domain"
	"github.com/locvowork/bi_dashboard/internal/service"
	"github.com/locvowork/bi_dashboard/internal/service/serviceutils"
	"github.com/locvowork/bi_dashboard/pkg/simpleexcel"
)

const (
	ReportAttritionRisk = "attrition_risk"
	ReportReceivables   = "receivables"
)

//go:embed templates/*.yaml
var defaultTemplates embed.FS

// LoadReportTemplates returns the YAML layout of every report. A file named
// <report>.yaml in dir replaces the built-in layout; dir may be empty.
func LoadReportTemplates(dir string) (map[string]string, error) {
	out := make(map[string]string)
	for _, name := range []string{ReportAttritionRisk, ReportReceivables} {
		if dir != "" {
			raw, err := os.ReadFile(filepath.Join(dir, name+".yaml"))
			if err == nil {
				out[name] = string(raw)
				continue
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read report template %s: %w", name, err)
			}
		}
		raw, err := defaultTemplates.ReadFile("templates/" + name + ".yaml")
		if err != nil {
			return nil, err
		}
		out[name] = string(raw)
	}
	return out, nil
}

type ExportHandler struct {
	finance   *service.FinanceService
	hr        *service.HRService
	sessions  SessionConfig
	templates map[string]string
}

func NewExportHandler(finance *service.FinanceService, hr *service.HRService, sessions SessionConfig, templates map[string]string) *ExportHandler {
	return &ExportHandler{finance: finance, hr: hr, sessions: sessions, templates: templates}
}

// reportField is one label/value line of a report's parameter block.
type reportField struct {
	Label string
	Value interface{}
}

var reportFieldColumns = []simpleexcel.ColumnConfig{
	{FieldName: "Label", Header: "Parameter", Width: 18},
	{FieldName: "Value", Header: "Value", Width: 24},
}

func (h *ExportHandler) exporter(report string) (*simpleexcel.DataExporter, error) {
	e, err := simpleexcel.NewDataExporterFromYamlConfig(h.templates[report])
	if err != nil {
		return nil, err
	}
	e.RegisterFormatter("decimal", roundTo(2))
	e.RegisterFormatter("amount", roundTo(2))
	return e, nil
}

func roundTo(places int) simpleexcel.FormatterFunc {
	scale := math.Pow10(places)
	return func(v interface{}) interface{} {
		if f, ok := v.(float64); ok {
			return math.Round(f*scale) / scale
		}
		return v
	}
}

// send writes the workbook unless the response was already started.
func send(c echo.Context, e *simpleexcel.DataExporter, filename string) error {
	err := e.StreamToResponse(c.Response(), filename)
	if err != nil && !c.Response().Committed {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to generate excel file", err)
	}
	return err
}

func (h *ExportHandler) AttritionRiskExportHandler(c echo.Context) error {
	var req AttritionRiskRequest
	if err := bind(c, &req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid query parameters", err)
	}
	s := h.sessions.hrSession(analytics.TabAttritionRisk, req.HRFilterRequest)

	rows, err := h.hr.AttritionRisk(c.Request().Context(), s, analytics.RiskSortKey(req.SortBy), analytics.ParseSortOrder(req.SortOrder))
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to score attrition risk", err)
	}

	e, err := h.exporter(ReportAttritionRisk)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to load report template", err)
	}
	e.BindSectionData("risk_rows", rows)
	if sheet := e.GetSheet("Attrition Risk"); sheet != nil {
		sheet.AddSection(&simpleexcel.SectionConfig{
			Title:      "Parameters",
			ShowHeader: true,
			Columns:    reportFieldColumns,
			Data: []reportField{
				{"Generated", s.Now.Format("2006-01-02 15:04")},
				{"Benchmark scope", string(s.Scope)},
				{"Employees scored", len(rows)},
			},
		})
	}

	return send(c, e, fmt.Sprintf("attrition_risk_%s.xlsx", s.Now.Format("20060102")))
}

func (h *ExportHandler) ReceivablesExportHandler(c echo.Context) error {
	var req InvoiceTableRequest
	if err := bind(c, &req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid query parameters", err)
	}
	s := h.sessions.financeSession(analytics.TabReceivables, req.FinanceFilterRequest)
	s.Table = req.tableOptions()

	ctx := c.Request().Context()
	invoices, err := h.finance.Invoices(ctx, s, domain.LedgerReceivable)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to load invoices", err)
	}
	aging, err := h.finance.Aging(ctx, domain.LedgerReceivable)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to load aging data", err)
	}

	e, err := h.exporter(ReportReceivables)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to load report template", err)
	}
	e.BindSectionData("aging", aging).
		BindSectionData("invoices", invoices)

	return send(c, e, fmt.Sprintf("receivables_%s.xlsx", s.Anchor.Format("200601")))
}
