package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/SomaCube/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter_Comma(t *testing.T) {
	data := []byte("x,y,z\n0,0,0\n1,0,0\n")
	if got := DetectCSVDelimiter(data); got != ',' {
		t.Errorf("expected comma delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Semicolon(t *testing.T) {
	data := []byte("x;y;z\n0;0;0\n1;0;0\n")
	if got := DetectCSVDelimiter(data); got != ';' {
		t.Errorf("expected semicolon delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Tab(t *testing.T) {
	data := []byte("x\ty\tz\n0\t0\t0\n1\t0\t0\n")
	if got := DetectCSVDelimiter(data); got != '\t' {
		t.Errorf("expected tab delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Pipe(t *testing.T) {
	data := []byte("x|y|z\n0|0|0\n1|0|0\n")
	if got := DetectCSVDelimiter(data); got != '|' {
		t.Errorf("expected pipe delimiter, got %q", got)
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"X", "Y", "Z", "Marker"})

	assert.True(t, isHeader)
	assert.Equal(t, ColumnMapping{X: 0, Y: 1, Z: 2, Marker: 3}, mapping)
}

func TestDetectColumns_AlternativeNamesReordered(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{" Layer ", "Row", "Column"})

	assert.True(t, isHeader)
	assert.Equal(t, ColumnMapping{X: 2, Y: 1, Z: 0, Marker: -1}, mapping)
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"0", "1", "2"})

	assert.False(t, isHeader)
	assert.Equal(t, ColumnMapping{X: 0, Y: 1, Z: 2, Marker: 3}, mapping)
}

// ─── CSV Import Tests ──────────────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	data := "x,y,z,marker\n0,0,0,*\n1,0,0,o\n1,1,0\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	require.Empty(t, result.Errors)
	require.NotNil(t, result.Grid)
	assert.Equal(t, 3, result.Cells)
	assert.Equal(t, model.Dimensions{Width: 2, Height: 2, Depth: 1}, result.Grid.Dimensions())
	assert.True(t, result.Grid.IsTargetCell(model.Vec3{X: 1, Y: 1}))
	assert.False(t, result.Grid.IsTargetCell(model.Vec3{X: 0, Y: 1}))
	assert.Equal(t, byte('o'), result.Grid.MarkerAt(model.Vec3{X: 1}))
	assert.Equal(t, byte('*'), result.Grid.MarkerAt(model.Vec3{}))
	assert.Equal(t, "*o\n.*\n", result.Grid.OriginalShape())
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("0,0,0\n0,0,1\n"), ',')

	require.Empty(t, result.Errors)
	require.NotNil(t, result.Grid)
	assert.Equal(t, model.Dimensions{Width: 1, Height: 1, Depth: 2}, result.Grid.Dimensions())
	assert.Empty(t, result.Warnings)
}

func TestImportCSVFromReader_UnrecognizedHeaderSkipped(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("a,b,c\n0,0,0\n"), ',')

	require.Empty(t, result.Errors)
	assert.Equal(t, 1, result.Cells)
	assert.Contains(t, result.Warnings, "Detected header row, skipping")
}

func TestImportCSVFromReader_ReorderedColumns(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("z,x,y\n2,1,0\n"), ',')

	require.Empty(t, result.Errors)
	assert.Equal(t, model.Dimensions{Width: 2, Height: 1, Depth: 3}, result.Grid.Dimensions())
	assert.Equal(t, []model.Vec3{{X: 1, Y: 0, Z: 2}}, result.Grid.TargetCells())
}

func TestImportCSVFromReader_EmptyFile(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader(""), ',')

	assert.Nil(t, result.Grid)
	assert.NotEmpty(t, result.Errors)
}

func TestImportCSVFromReader_InvalidCoordinates(t *testing.T) {
	data := "x,y,z\n0,0,zero\n-1,0,0\n0,,0\n1,1,1\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	require.Len(t, result.Errors, 3)
	assert.Equal(t, "Line 2: Invalid z 'zero'", result.Errors[0])
	assert.Equal(t, "Line 3: x must not be negative", result.Errors[1])
	assert.Equal(t, "Line 4: Missing y value", result.Errors[2])
	assert.Equal(t, 1, result.Cells)
}

func TestImportCSVFromReader_CoordinateLimit(t *testing.T) {
	data := "x,y,z\n1000000000,0,0\n0,64,0\n0,0,63\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	require.Len(t, result.Errors, 2)
	assert.Equal(t, "Line 2: x must be below 64", result.Errors[0])
	assert.Equal(t, "Line 3: y must be below 64", result.Errors[1])
	require.NotNil(t, result.Grid)
	assert.Equal(t, model.Dimensions{Width: 1, Height: 1, Depth: MaxExtent}, result.Grid.Dimensions())
}

func TestImportCSVFromReader_MissingRequiredColumnInHeader(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("x,y,marker\n0,0,*\n"), ',')

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Z")
	assert.Nil(t, result.Grid)
}

func TestImportCSVFromReader_DuplicatesAndUnknownMarkers(t *testing.T) {
	data := "x,y,z,marker\n0,0,0,?\n0,0,0,*\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	require.Empty(t, result.Errors)
	assert.Equal(t, 1, result.Cells)
	assert.Contains(t, result.Warnings, "Line 2: Unknown marker '?', defaulting to '*'")
	assert.Contains(t, result.Warnings, "Line 3: Duplicate cell (0,0,0) ignored")
}

func TestImportCSVFromReader_CommentsAndEmptyRows(t *testing.T) {
	data := "# pyramid base\n0,0,0\n\n1,0,0\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	require.Empty(t, result.Errors)
	assert.Equal(t, 2, result.Cells)
}

func TestImportCSV_SemicolonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shape.csv")
	require.NoError(t, os.WriteFile(path, []byte("x;y;z\n0;0;0\n2;0;0\n"), 0644))

	result := ImportCSV(path)

	require.Empty(t, result.Errors)
	assert.Contains(t, result.Warnings, "Detected semicolon delimiter")
	assert.Equal(t, model.Dimensions{Width: 3, Height: 1, Depth: 1}, result.Grid.Dimensions())
	assert.False(t, result.Grid.IsTargetCell(model.Vec3{X: 1}))
}

func TestImportCSV_FileNotFound(t *testing.T) {
	result := ImportCSV("/nonexistent/path/file.csv")
	if len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

func TestImportCSV_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0644))

	result := ImportCSV(path)
	if len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
}

// ─── Excel Import Tests ────────────────────────────────────

// createTestExcel writes one sheet per layer.
func createTestExcel(t *testing.T, layers ...[][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shape.xlsx")

	f := excelize.NewFile()
	for z, rows := range layers {
		sheet := f.GetSheetName(0)
		if z > 0 {
			sheet = "Layer " + string(rune('1'+z))
			_, err := f.NewSheet(sheet)
			require.NoError(t, err)
		}
		for i, row := range rows {
			for j, cell := range row {
				cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(sheet, cellRef, cell))
			}
		}
	}

	require.NoError(t, f.SaveAs(path))
	return path
}

func TestImportExcel_Layers(t *testing.T) {
	path := createTestExcel(t,
		[][]interface{}{
			{"*", "*"},
			{"*", "o"},
		},
		[][]interface{}{
			{"x", "."},
		},
	)

	result := ImportExcel(path)

	require.Empty(t, result.Errors)
	require.NotNil(t, result.Grid)
	assert.Equal(t, model.Dimensions{Width: 2, Height: 2, Depth: 2}, result.Grid.Dimensions())
	assert.Equal(t, 5, result.Cells)
	assert.Equal(t, byte('o'), result.Grid.MarkerAt(model.Vec3{X: 1, Y: 1}))
	assert.True(t, result.Grid.IsTargetCell(model.Vec3{Z: 1}))
	assert.False(t, result.Grid.IsTargetCell(model.Vec3{X: 1, Z: 1}))
	assert.False(t, result.Grid.IsTargetCell(model.Vec3{Y: 1, Z: 1}))
}

func TestImportExcel_NumericTargetsAndWarnings(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{1, "", "?"},
	})

	result := ImportExcel(path)

	require.Empty(t, result.Errors)
	assert.Equal(t, 2, result.Cells)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "C1")
}

func TestImportExcel_CellOutsideLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wide.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "*"))
	require.NoError(t, f.SetCellValue(sheet, "ZZ1", "*"))
	require.NoError(t, f.SaveAs(path))

	result := ImportExcel(path)

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "ZZ1")
	require.NotNil(t, result.Grid)
	assert.Equal(t, model.Dimensions{Width: 1, Height: 1, Depth: 1}, result.Grid.Dimensions())
}

func TestImportExcel_EmptyWorkbook(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{})

	result := ImportExcel(path)

	assert.Nil(t, result.Grid)
	assert.Contains(t, result.Errors, "No target cells found")
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := ImportExcel("/nonexistent/path/file.xlsx")
	if len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

func TestParseMarker(t *testing.T) {
	tests := []struct {
		input string
		want  byte
		ok    bool
	}{
		{"", '*', true},
		{"*", '*', true},
		{"X", '*', true},
		{"1", '*', true},
		{"o", 'o', true},
		{"Alternate", 'o', true},
		{"?", '*', false},
	}
	for _, tt := range tests {
		got, ok := parseMarker(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseMarker(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}
