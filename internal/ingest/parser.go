// Package ingest turns uploaded spreadsheet workbooks into typed estimate
// records. Sheet and column discovery runs through an ordered list of
// strategies so that each fallback rule stays independently testable, and
// per-row item failures are accumulated instead of aborting the batch.
package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Required metadata columns. A workbook missing any of these fails before
// anything is written.
var requiredMetadataFields = []string{
	"project_name",
	"project_type",
	"location",
	"total_area",
	"base_cost_per_sqm",
}

var (
	defaultLocationMultiplier    = decimal.NewFromInt(1)
	defaultContingencyPercentage = decimal.NewFromFloat(10.0)
)

// Metadata is the normalized estimate header record parsed from a workbook.
// ProjectType and Location keep their raw cell text; resolution against
// reference data happens in the service layer.
type Metadata struct {
	ProjectName           string
	ProjectDescription    string
	ProjectType           string
	Location              string
	TotalArea             decimal.Decimal
	BaseCostPerSqm        decimal.Decimal
	LocationMultiplier    decimal.Decimal
	ContingencyPercentage decimal.Decimal
}

// Item is a normalized, validated item row.
type Item struct {
	Row         int
	Category    string
	Name        string
	Description string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
	Notes       string
}

// Document is the result of parsing a workbook: one metadata record, the
// valid item rows, and the row errors for the rest.
type Document struct {
	Metadata  Metadata
	Items     []Item
	RowErrors []RowError
}

// table is one sheet reduced to a normalized header plus data rows.
// rowOffset maps a data row index back to its 1-based spreadsheet row.
type table struct {
	name      string
	columns   map[string]int
	rows      [][]string
	rowOffset int
}

func (t *table) cell(row []string, column string) (string, bool) {
	idx, ok := t.columns[column]
	if !ok || idx >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[idx]), true
}

// section is a located metadata record plus any leftover rows on the same
// sheet that become item candidates.
type section struct {
	table    *table
	metadata []string
	leftover [][]string
	// leftoverStart is the spreadsheet row of the first leftover row.
	leftoverStart int
}

// metadataStrategy locates the metadata record in a workbook. Strategies
// are tried in order; the first match wins.
type metadataStrategy func(sheets []*table) *section

var metadataStrategies = []metadataStrategy{
	metadataFromEstimateSheet,
	metadataFromFirstSheet,
}

// itemStrategy locates the item rows given the already-located metadata
// section. Returning ok=false passes to the next strategy.
type itemStrategy func(sheets []*table, meta *section) (*table, [][]string, int, bool)

var itemStrategies = []itemStrategy{
	itemsFromItemsSheet,
	itemsFromLeftoverRows,
	itemsFromSecondSheet,
}

// Parse reads an xlsx workbook and produces a normalized Document. It fails
// with UnrecognizedFormatError or MissingFieldsError for metadata problems;
// item-row problems are collected into Document.RowErrors.
func Parse(r io.Reader) (*Document, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &UnrecognizedFormatError{Detail: err.Error()}
	}
	defer wb.Close()

	sheets, err := loadSheets(wb)
	if err != nil {
		return nil, err
	}

	var meta *section
	for _, strategy := range metadataStrategies {
		if meta = strategy(sheets); meta != nil {
			break
		}
	}
	if meta == nil {
		return nil, &UnrecognizedFormatError{Detail: "no sheet carries an estimate metadata record"}
	}

	metadata, err := normalizeMetadata(meta)
	if err != nil {
		return nil, err
	}

	doc := &Document{Metadata: *metadata}
	for _, strategy := range itemStrategies {
		tbl, rows, start, ok := strategy(sheets, meta)
		if !ok {
			continue
		}
		doc.Items, doc.RowErrors = normalizeItems(tbl, rows, start)
		break
	}
	return doc, nil
}

func loadSheets(wb *excelize.File) ([]*table, error) {
	var sheets []*table
	for _, name := range wb.GetSheetList() {
		rows, err := wb.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q: %w", name, err)
		}
		if len(rows) == 0 {
			continue
		}
		columns := make(map[string]int, len(rows[0]))
		for i, header := range rows[0] {
			key := normalizeColumn(header)
			if key == "" {
				continue
			}
			if _, exists := columns[key]; !exists {
				columns[key] = i
			}
		}
		sheets = append(sheets, &table{
			name:      name,
			columns:   columns,
			rows:      rows[1:],
			rowOffset: 2,
		})
	}
	return sheets, nil
}

// normalizeColumn lowercases a header cell and collapses spaces so that
// "Project Name" and "project_name" address the same column.
func normalizeColumn(header string) string {
	key := strings.ToLower(strings.TrimSpace(header))
	return strings.ReplaceAll(key, " ", "_")
}

func metadataFromEstimateSheet(sheets []*table) *section {
	for _, sheet := range sheets {
		if !strings.EqualFold(sheet.name, "Estimate") {
			continue
		}
		if len(sheet.rows) == 0 {
			return nil
		}
		return &section{table: sheet, metadata: sheet.rows[0]}
	}
	return nil
}

func metadataFromFirstSheet(sheets []*table) *section {
	if len(sheets) == 0 {
		return nil
	}
	first := sheets[0]
	if _, ok := first.columns["project_name"]; !ok {
		return nil
	}
	if len(first.rows) == 0 {
		return nil
	}
	return &section{
		table:         first,
		metadata:      first.rows[0],
		leftover:      first.rows[1:],
		leftoverStart: first.rowOffset + 1,
	}
}

func itemsFromItemsSheet(sheets []*table, _ *section) (*table, [][]string, int, bool) {
	for _, sheet := range sheets {
		if strings.EqualFold(sheet.name, "Items") {
			return sheet, sheet.rows, sheet.rowOffset, true
		}
	}
	return nil, nil, 0, false
}

func itemsFromLeftoverRows(_ []*table, meta *section) (*table, [][]string, int, bool) {
	if len(meta.leftover) == 0 {
		return nil, nil, 0, false
	}
	return meta.table, meta.leftover, meta.leftoverStart, true
}

func itemsFromSecondSheet(sheets []*table, _ *section) (*table, [][]string, int, bool) {
	if len(sheets) < 2 {
		return nil, nil, 0, false
	}
	second := sheets[1]
	if _, ok := second.columns["name"]; !ok {
		return nil, nil, 0, false
	}
	return second, second.rows, second.rowOffset, true
}

func normalizeMetadata(meta *section) (*Metadata, error) {
	missing := make(map[string]string)
	values := make(map[string]string, len(requiredMetadataFields))
	for _, field := range requiredMetadataFields {
		value, ok := meta.table.cell(meta.metadata, field)
		if !ok || value == "" {
			missing[field] = "missing or empty"
			continue
		}
		values[field] = value
	}

	out := &Metadata{
		ProjectName:           values["project_name"],
		ProjectType:           values["project_type"],
		Location:              values["location"],
		LocationMultiplier:    defaultLocationMultiplier,
		ContingencyPercentage: defaultContingencyPercentage,
	}

	if raw, ok := values["total_area"]; ok {
		area, err := decimal.NewFromString(raw)
		if err != nil {
			missing["total_area"] = "not a number"
		} else {
			out.TotalArea = area
		}
	}
	if raw, ok := values["base_cost_per_sqm"]; ok {
		base, err := decimal.NewFromString(raw)
		if err != nil {
			missing["base_cost_per_sqm"] = "not a number"
		} else {
			out.BaseCostPerSqm = base
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	if raw, ok := meta.table.cell(meta.metadata, "project_description"); ok {
		out.ProjectDescription = raw
	}
	if raw, ok := meta.table.cell(meta.metadata, "location_multiplier"); ok && raw != "" {
		if mult, err := decimal.NewFromString(raw); err == nil && mult.IsPositive() {
			out.LocationMultiplier = mult
		}
	}
	if raw, ok := meta.table.cell(meta.metadata, "contingency_percentage"); ok && raw != "" {
		if pct, err := decimal.NewFromString(raw); err == nil && !pct.IsNegative() {
			out.ContingencyPercentage = pct
		}
	}
	return out, nil
}

func normalizeItems(tbl *table, rows [][]string, startRow int) ([]Item, []RowError) {
	var items []Item
	var rowErrors []RowError
	for i, row := range rows {
		rowNum := startRow + i
		if blankRow(row) {
			continue
		}

		name, _ := tbl.cell(row, "name")
		if name == "" {
			rowErrors = append(rowErrors, RowError{Row: rowNum, Message: "item name is required"})
			continue
		}

		quantity, err := parseAmount(tbl, row, "quantity")
		if err != nil {
			rowErrors = append(rowErrors, RowError{Row: rowNum, Message: "quantity is not a number"})
			continue
		}
		unitPrice, err := parseAmount(tbl, row, "unit_price")
		if err != nil {
			rowErrors = append(rowErrors, RowError{Row: rowNum, Message: "unit_price is not a number"})
			continue
		}
		if quantity.IsNegative() {
			rowErrors = append(rowErrors, RowError{Row: rowNum, Message: "quantity must not be negative"})
			continue
		}
		if unitPrice.IsNegative() {
			rowErrors = append(rowErrors, RowError{Row: rowNum, Message: "unit_price must not be negative"})
			continue
		}

		item := Item{
			Row:       rowNum,
			Name:      name,
			Category:  normalizeCategory(tbl, row),
			Quantity:  quantity,
			UnitPrice: unitPrice,
		}
		item.Description, _ = tbl.cell(row, "description")
		item.Unit, _ = tbl.cell(row, "unit")
		item.Notes, _ = tbl.cell(row, "notes")
		items = append(items, item)
	}
	return items, rowErrors
}

// parseAmount treats an absent or empty cell as zero; non-numeric text is
// an error.
func parseAmount(tbl *table, row []string, column string) (decimal.Decimal, error) {
	raw, ok := tbl.cell(row, column)
	if !ok || raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

func normalizeCategory(tbl *table, row []string) string {
	raw, _ := tbl.cell(row, "category")
	switch strings.ToLower(raw) {
	case "material", "materials":
		return "material"
	case "labor", "labour":
		return "labor"
	case "equipment":
		return "equipment"
	case "overhead":
		return "overhead"
	default:
		return "other"
	}
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
