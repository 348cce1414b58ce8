package export

import (
	"path/filepath"
	"testing"

	"github.com/piwi3910/SomaCube/internal/importer"
	"github.com/piwi3910/SomaCube/internal/model"
	"github.com/piwi3910/SomaCube/internal/yass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportExcel_Layers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.xlsx")
	require.NoError(t, ExportExcel(path, buildTestBoard(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Layer 1", "Layer 2", "Layer 3", PlacementsSheet}, f.GetSheetList())

	v, err := f.GetCellValue("Layer 1", "B2")
	require.NoError(t, err)
	assert.Equal(t, "3", v)
	v, err = f.GetCellValue("Layer 1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "*", v)
	v, err = f.GetCellValue("Layer 3", "B2")
	require.NoError(t, err)
	assert.Equal(t, "c", v)

	rows, err := f.GetRows(PlacementsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"3", "V", "1", "1", "0", "0", "0", "90", "(1,1,0) (1,2,0) (0,1,0)"}, rows[1])
}

func TestExportExcel_ImportsBackAsSilhouette(t *testing.T) {
	g, err := yass.Parse(".*\n**\n\n..\no.\n")
	require.NoError(t, err)
	grid, err := g.GridModel()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "figure.xlsx")
	require.NoError(t, ExportExcel(path, Board{Grid: grid, Pieces: model.SomaSet()}))

	result := importer.ImportExcel(path)
	require.Empty(t, result.Errors)
	require.NotNil(t, result.Grid)
	assert.Equal(t, grid.Dimensions(), result.Grid.Dimensions())
	assert.Equal(t, grid.TargetCells(), result.Grid.TargetCells())
	assert.Equal(t, byte('o'), result.Grid.MarkerAt(model.Vec3{X: 0, Y: 1, Z: 1}))
}

func TestExportExcel_NoGrid(t *testing.T) {
	err := ExportExcel(filepath.Join(t.TempDir(), "none.xlsx"), Board{})
	assert.ErrorIs(t, err, ErrEmptyBoard)
}
