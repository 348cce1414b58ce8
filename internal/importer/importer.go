// Package importer reads target silhouettes from CSV, Excel and DXF files.
// CSV import supports automatic delimiter detection, flexible column mapping,
// and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/piwi3910/SomaCube/internal/model"
	"github.com/xuri/excelize/v2"
)

// MaxExtent bounds every imported coordinate, so a stray value cannot size
// a huge grid.
const MaxExtent = 64

// ImportResult holds the results of an import operation. Grid is nil when
// no usable cell was found.
type ImportResult struct {
	Grid     *model.GridModel
	Cells    int
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	X      int
	Y      int
	Z      int
	Marker int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"x":      {"x", "col", "column"},
	"y":      {"y", "row"},
	"z":      {"z", "layer", "level"},
	"marker": {"marker", "kind", "type", "cell"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// mapping x, y, z, marker and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{X: -1, Y: -1, Z: -1, Marker: -1}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch role {
				case "x":
					if mapping.X == -1 {
						mapping.X = i
					}
				case "y":
					if mapping.Y == -1 {
						mapping.Y = i
					}
				case "z":
					if mapping.Z == -1 {
						mapping.Z = i
					}
				case "marker":
					if mapping.Marker == -1 {
						mapping.Marker = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{X: 0, Y: 1, Z: 2, Marker: 3}, false
	}
	return mapping, true
}

// parseMarker maps a marker cell to '*' or 'o'. An empty cell is '*'.
func parseMarker(s string) (byte, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "*", "x", "1", "yes", "target":
		return model.MarkerDontCare, true
	case "o", "alt", "alternate":
		return model.MarkerAlternate, true
	default:
		return model.MarkerDontCare, false
	}
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseCoord(row []string, idx int, name, rowLabel string) (int, string) {
	s := getCell(row, idx)
	if s == "" {
		return 0, fmt.Sprintf("%s: Missing %s value", rowLabel, name)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, name, s)
	}
	if v < 0 {
		return 0, fmt.Sprintf("%s: %s must not be negative", rowLabel, name)
	}
	if v >= MaxExtent {
		return 0, fmt.Sprintf("%s: %s must be below %d", rowLabel, name, MaxExtent)
	}
	return v, ""
}

// parseRow extracts one cell and its marker from a row.
// Returns the cell, marker, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (model.Vec3, byte, string, string) {
	var c model.Vec3
	var errMsg string
	if c.X, errMsg = parseCoord(row, mapping.X, "x", rowLabel); errMsg != "" {
		return c, 0, errMsg, ""
	}
	if c.Y, errMsg = parseCoord(row, mapping.Y, "y", rowLabel); errMsg != "" {
		return c, 0, errMsg, ""
	}
	if c.Z, errMsg = parseCoord(row, mapping.Z, "z", rowLabel); errMsg != "" {
		return c, 0, errMsg, ""
	}

	var warning string
	raw := getCell(row, mapping.Marker)
	marker, ok := parseMarker(raw)
	if !ok {
		warning = fmt.Sprintf("%s: Unknown marker '%s', defaulting to '*'", rowLabel, raw)
	}
	return c, marker, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports a silhouette from a CSV file of x, y, z[, marker] rows.
// It automatically detects the delimiter and maps columns by header names.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	records, err := readCSV(bytes.NewReader(data), delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}
	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports a silhouette from a CSV reader with a known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	records, err := readCSV(reader, delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}
	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

func readCSV(r io.Reader, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.Comment = '#'
	return reader.ReadAll()
}

// importFromRows detects headers, maps columns, and collects the cells.
// The grid is sized to the largest coordinate on each axis.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{Warnings: initialWarnings}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		var missing []string
		if mapping.X == -1 {
			missing = append(missing, "X")
		}
		if mapping.Y == -1 {
			missing = append(missing, "Y")
		}
		if mapping.Z == -1 {
			missing = append(missing, "Z")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if _, err := strconv.Atoi(getCell(rows[0], 0)); err != nil {
		// Unrecognized header: skip it and keep positional mapping
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")
	}

	cells := newCellSet()
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		c, marker, errMsg, warning := parseRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		if !cells.add(c, marker) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: Duplicate cell %s ignored", rowLabel, c))
		}
	}

	cells.finish(&result)
	return result
}

// placementsSheet is the non-layer sheet of an exported workbook.
const placementsSheet = "Placements"

// ImportExcel imports a silhouette from an Excel workbook. Each sheet is one
// z layer in sheet order; row n is y = n-1 and column A is x = 0. A cell
// holding '*', 'x' or '1' is a target, 'o' is an alternate target, and an
// empty or '.' cell is outside the figure. Any other value is a target with
// a warning. A sheet named Placements is skipped.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	cells := newCellSet()
	z := -1
	for _, sheet := range sheets {
		if sheet == placementsSheet {
			continue
		}
		z++
		if z >= MaxExtent {
			result.Errors = append(result.Errors, fmt.Sprintf("More than %d layer sheets", MaxExtent))
			return result
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Cannot read sheet %q: %v", sheet, err))
			return result
		}
		for y, row := range rows {
			for x, raw := range row {
				v := strings.TrimSpace(raw)
				if v == "" || v == string(model.MarkerEmpty) {
					continue
				}
				cellName, _ := excelize.CoordinatesToCellName(x+1, y+1)
				if x >= MaxExtent || y >= MaxExtent {
					result.Errors = append(result.Errors,
						fmt.Sprintf("Sheet %s %s: outside the first %d rows and columns", sheet, cellName, MaxExtent))
					continue
				}
				marker, ok := parseMarker(v)
				if !ok {
					result.Warnings = append(result.Warnings,
						fmt.Sprintf("Sheet %s %s: Unknown marker '%s', defaulting to '*'", sheet, cellName, v))
				}
				cells.add(model.Vec3{X: x, Y: y, Z: z}, marker)
			}
		}
		// Empty sheets still count as layers
		cells.extend(model.Vec3{Z: z})
	}

	cells.finish(&result)
	return result
}

// cellSet accumulates marked cells and the extent of the box holding them.
type cellSet struct {
	markers map[model.Vec3]byte
	order   []model.Vec3
	max     model.Vec3
	seen    bool
}

func newCellSet() *cellSet {
	return &cellSet{markers: make(map[model.Vec3]byte)}
}

// add records c and reports whether it was new.
func (s *cellSet) add(c model.Vec3, marker byte) bool {
	if _, dup := s.markers[c]; dup {
		return false
	}
	s.markers[c] = marker
	s.order = append(s.order, c)
	s.extend(c)
	return true
}

func (s *cellSet) extend(c model.Vec3) {
	if !s.seen {
		s.max, s.seen = c, true
		return
	}
	s.max.X = max(s.max.X, c.X)
	s.max.Y = max(s.max.Y, c.Y)
	s.max.Z = max(s.max.Z, c.Z)
}

// finish builds the grid into result, or records an error when no cell was found.
func (s *cellSet) finish(result *ImportResult) {
	if len(s.markers) == 0 {
		result.Errors = append(result.Errors, "No target cells found")
		return
	}
	grid, err := s.grid()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot build grid: %v", err))
		return
	}
	result.Grid = grid
	result.Cells = len(s.markers)
}

// grid sizes the box to the extent of the cells and writes the marker text
// the silhouette reads its per-cell markers from.
func (s *cellSet) grid() (*model.GridModel, error) {
	d := model.Dimensions{Width: s.max.X + 1, Height: s.max.Y + 1, Depth: s.max.Z + 1}
	g, err := model.NewGridModel(d.Width, d.Height, d.Depth)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	for z := 0; z < d.Depth; z++ {
		for y := 0; y < d.Height; y++ {
			for x := 0; x < d.Width; x++ {
				m, ok := s.markers[model.Vec3{X: x, Y: y, Z: z}]
				if !ok {
					m = model.MarkerEmpty
				}
				b.WriteByte(m)
			}
			b.WriteByte('\n')
		}
		if z < d.Depth-1 {
			b.WriteByte('\n')
		}
	}
	g.SetSilhouette(s.order, b.String())
	return g, nil
}
