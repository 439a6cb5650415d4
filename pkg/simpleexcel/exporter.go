package simpleexcel

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"reflect"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

const (
	SectionDirectionHorizontal = "horizontal"
	SectionDirectionVertical   = "vertical"
)

// ContentType is the MIME type of an xlsx workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FormatterFunc converts a cell value before it is written.
type FormatterFunc func(v interface{}) interface{}

// DataExporter builds a workbook from a YAML template, programmatic sheets,
// or both.
type DataExporter struct {
	template   *ReportTemplate
	data       map[string]interface{}
	sheets     []*SheetBuilder
	formatters map[string]FormatterFunc
}

// ReportTemplate represents the YAML structure.
type ReportTemplate struct {
	Sheets []SheetTemplate `yaml:"sheets"`
}

// SheetTemplate represents a sheet in the YAML.
type SheetTemplate struct {
	Name     string          `yaml:"name"`
	Sections []SectionConfig `yaml:"sections"`
}

// SectionConfig defines a block of rows in a sheet.
type SectionConfig struct {
	ID          string         `yaml:"id"`
	Title       string         `yaml:"title"`
	Data        interface{}    `yaml:"-"`
	Locked      bool           `yaml:"locked"`
	ShowHeader  bool           `yaml:"show_header"`
	Direction   string         `yaml:"direction"`
	Position    string         `yaml:"position"`
	TitleStyle  *StyleTemplate `yaml:"title_style"`
	HeaderStyle *StyleTemplate `yaml:"header_style"`
	Columns     []ColumnConfig `yaml:"columns"`
}

// ColumnConfig defines a column in a section. FieldName matches a struct
// field name, a json tag or a map key.
type ColumnConfig struct {
	FieldName string  `yaml:"field_name"`
	Header    string  `yaml:"header"`
	Width     float64 `yaml:"width"`
	Formatter string  `yaml:"formatter"`
}

// StyleTemplate defines basic styling.
type StyleTemplate struct {
	Font   *FontTemplate `yaml:"font"`
	Fill   *FillTemplate `yaml:"fill"`
	Locked *bool         `yaml:"locked"`
}

type FontTemplate struct {
	Bold  bool   `yaml:"bold"`
	Color string `yaml:"color"`
}

type FillTemplate struct {
	Color string `yaml:"color"`
}

func NewDataExporter() *DataExporter {
	return &DataExporter{
		data:       make(map[string]interface{}),
		formatters: make(map[string]FormatterFunc),
	}
}

// NewDataExporterFromYamlConfig parses a template from a YAML string.
func NewDataExporterFromYamlConfig(config string) (*DataExporter, error) {
	var tmpl ReportTemplate
	if err := yaml.Unmarshal([]byte(config), &tmpl); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	e := NewDataExporter()
	e.template = &tmpl
	return e, nil
}

// NewDataExporterFromYamlFile parses a template file.
func NewDataExporterFromYamlFile(path string) (*DataExporter, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open yaml file: %w", err)
	}
	return NewDataExporterFromYamlConfig(string(raw))
}

// AddSheet starts a new programmatic sheet.
func (e *DataExporter) AddSheet(name string) *SheetBuilder {
	sb := &SheetBuilder{exporter: e, name: name}
	e.sheets = append(e.sheets, sb)
	return sb
}

// GetSheet returns a builder that appends to the named template or
// programmatic sheet, or nil when no sheet has that name.
func (e *DataExporter) GetSheet(name string) *SheetBuilder {
	for _, sb := range e.sheets {
		if sb.name == name {
			return sb
		}
	}
	if e.template != nil {
		for i := range e.template.Sheets {
			if e.template.Sheets[i].Name == name {
				return &SheetBuilder{exporter: e, name: name, tmpl: &e.template.Sheets[i]}
			}
		}
	}
	return nil
}

// BindSectionData binds data to a template section ID.
func (e *DataExporter) BindSectionData(id string, data interface{}) *DataExporter {
	e.data[id] = data
	return e
}

// RegisterFormatter makes fn available to columns by name.
func (e *DataExporter) RegisterFormatter(name string, fn FormatterFunc) *DataExporter {
	e.formatters[name] = fn
	return e
}

// BuildExcel renders every sheet into a new workbook. The caller closes it.
func (e *DataExporter) BuildExcel() (*excelize.File, error) {
	f := excelize.NewFile()
	first := true
	open := func(name string) error {
		if first {
			first = false
			return f.SetSheetName("Sheet1", name)
		}
		if idx, _ := f.GetSheetIndex(name); idx == -1 {
			_, err := f.NewSheet(name)
			return err
		}
		return nil
	}

	if e.template != nil {
		for _, st := range e.template.Sheets {
			if err := open(st.Name); err != nil {
				f.Close()
				return nil, err
			}
			sections := make([]*SectionConfig, len(st.Sections))
			for j := range st.Sections {
				sec := st.Sections[j]
				if data, ok := e.data[sec.ID]; ok {
					sec.Data = data
				}
				sections[j] = &sec
			}
			if err := e.renderSections(f, st.Name, sections); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	for _, sb := range e.sheets {
		if err := open(sb.name); err != nil {
			f.Close()
			return nil, err
		}
		if err := e.renderSections(f, sb.name, sb.sections); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// ToBytes exports the workbook to an in-memory byte slice.
func (e *DataExporter) ToBytes() ([]byte, error) {
	f, err := e.BuildExcel()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := new(bytes.Buffer)
	if _, err := f.WriteTo(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// StreamToResponse writes the workbook as a file download.
func (e *DataExporter) StreamToResponse(w http.ResponseWriter, filename string) error {
	data, err := e.ToBytes()
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	_, err = w.Write(data)
	return err
}

// SheetBuilder appends sections to one sheet.
type SheetBuilder struct {
	exporter *DataExporter
	name     string
	sections []*SectionConfig
	// tmpl is set when the builder extends a template sheet.
	tmpl *SheetTemplate
}

func (sb *SheetBuilder) AddSection(config *SectionConfig) *SheetBuilder {
	if sb.tmpl != nil {
		if config.ID == "" {
			config.ID = fmt.Sprintf("%s#%d", sb.name, len(sb.tmpl.Sections))
		}
		if config.Data != nil {
			sb.exporter.data[config.ID] = config.Data
		}
		sb.tmpl.Sections = append(sb.tmpl.Sections, *config)
		return sb
	}
	sb.sections = append(sb.sections, config)
	return sb
}

func (sb *SheetBuilder) Build() *DataExporter {
	return sb.exporter
}

func (e *DataExporter) renderSections(f *excelize.File, sheet string, sections []*SectionConfig) error {
	nextRow := 1
	nextCol := 1
	protect := false

	for _, sec := range sections {
		protect = protect || sec.Locked

		startCol, startRow := 1, nextRow
		switch {
		case sec.Position != "":
			if c, r, err := excelize.CellNameToCoordinates(sec.Position); err == nil {
				startCol, startRow = c, r
			}
		case sec.Direction == SectionDirectionHorizontal:
			startCol, startRow = nextCol, 1
		}
		row := startRow

		plain, err := createStyle(f, sec.Locked, nil)
		if err != nil {
			return err
		}

		if sec.Title != "" {
			cell, _ := excelize.CoordinatesToCellName(startCol, row)
			if err := f.SetCellValue(sheet, cell, sec.Title); err != nil {
				return err
			}
			styleID, err := createStyle(f, sec.Locked, sec.TitleStyle)
			if err != nil {
				return err
			}
			end := cell
			if len(sec.Columns) > 1 {
				end, _ = excelize.CoordinatesToCellName(startCol+len(sec.Columns)-1, row)
				if err := f.MergeCell(sheet, cell, end); err != nil {
					return err
				}
			}
			if err := f.SetCellStyle(sheet, cell, end, styleID); err != nil {
				return err
			}
			row++
		}

		if sec.ShowHeader {
			styleID, err := createStyle(f, sec.Locked, sec.HeaderStyle)
			if err != nil {
				return err
			}
			for i, col := range sec.Columns {
				cell, _ := excelize.CoordinatesToCellName(startCol+i, row)
				if err := f.SetCellValue(sheet, cell, col.Header); err != nil {
					return err
				}
				if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
					return err
				}
				if col.Width > 0 {
					name, _ := excelize.ColumnNumberToName(startCol + i)
					if err := f.SetColWidth(sheet, name, name, col.Width); err != nil {
						return err
					}
				}
			}
			row++
		}

		items := reflect.ValueOf(sec.Data)
		if items.Kind() == reflect.Slice {
			for i := 0; i < items.Len(); i++ {
				for j, col := range sec.Columns {
					val := extractValue(items.Index(i), col.FieldName)
					if fn, ok := e.formatters[col.Formatter]; ok {
						val = fn(val)
					}
					cell, _ := excelize.CoordinatesToCellName(startCol+j, row)
					if err := f.SetCellValue(sheet, cell, val); err != nil {
						return err
					}
					if err := f.SetCellStyle(sheet, cell, cell, plain); err != nil {
						return err
					}
				}
				row++
			}
		}

		// one blank row between stacked sections
		nextRow = max(nextRow, row+1)
		nextCol = startCol + len(sec.Columns) + 1
	}

	if protect {
		return f.ProtectSheet(sheet, &excelize.SheetProtectionOptions{
			SelectLockedCells:   true,
			SelectUnlockedCells: true,
		})
	}
	return nil
}

// extractValue reads a struct field by name or json tag, or a map key.
func extractValue(item reflect.Value, fieldName string) interface{} {
	for item.Kind() == reflect.Ptr || item.Kind() == reflect.Interface {
		if item.IsNil() {
			return ""
		}
		item = item.Elem()
	}

	switch item.Kind() {
	case reflect.Struct:
		if f := item.FieldByName(fieldName); f.IsValid() {
			return f.Interface()
		}
		t := item.Type()
		for i := 0; i < t.NumField(); i++ {
			tag, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
			if tag == fieldName && t.Field(i).IsExported() {
				return item.Field(i).Interface()
			}
		}
	case reflect.Map:
		if item.Type().Key().Kind() == reflect.String {
			if v := item.MapIndex(reflect.ValueOf(fieldName)); v.IsValid() {
				return v.Interface()
			}
		}
	}
	return ""
}

func createStyle(f *excelize.File, locked bool, tmpl *StyleTemplate) (int, error) {
	style := &excelize.Style{Protection: &excelize.Protection{Locked: locked}}
	if tmpl == nil {
		return f.NewStyle(style)
	}
	if tmpl.Font != nil {
		style.Font = &excelize.Font{
			Bold:  tmpl.Font.Bold,
			Color: strings.TrimPrefix(tmpl.Font.Color, "#"),
		}
	}
	if tmpl.Fill != nil {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Color:   []string{strings.TrimPrefix(tmpl.Fill.Color, "#")},
			Pattern: 1,
		}
	}
	if tmpl.Locked != nil {
		style.Protection.Locked = *tmpl.Locked
	}
	return f.NewStyle(style)
}
