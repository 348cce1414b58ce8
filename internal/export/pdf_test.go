package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/SomaCube/internal/engine"
	"github.com/piwi3910/SomaCube/internal/model"
	"github.com/piwi3910/SomaCube/internal/yass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTestBoard places a rotated V on the bottom layer and the corner
// piece above it in an open 3x3x3 grid.
func buildTestBoard(t *testing.T) Board {
	t.Helper()
	grid, err := model.NewGridModel(3, 3, 3)
	require.NoError(t, err)
	s := engine.NewSession(grid, model.SomaSet())
	require.NoError(t, s.SelectOrPlace("3"))
	require.NoError(t, s.Rotate(model.AxisZ))
	require.NoError(t, s.Move(model.AxisZ, -1))
	require.NoError(t, s.SelectOrPlace("c"))
	require.True(t, s.IsValid())
	return NewBoard("cube", s)
}

func TestNewBoard(t *testing.T) {
	board := buildTestBoard(t)

	assert.Equal(t, "cube", board.ShapeID)
	assert.Len(t, board.Placements, 2)
	assert.Len(t, board.Occupancy, 7)
	assert.Equal(t, "3", board.Occupancy[model.Vec3{X: 0, Y: 1, Z: 0}])
	assert.Equal(t, yass.Encode(board.Grid, board.Occupancy), board.Text())
}

func TestExportPDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.pdf")

	err := ExportPDF(path, buildTestBoard(t))
	if err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	// Three layer pages plus the summary with its QR image
	if info.Size() < 1000 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportPDF_SilhouetteWithoutPieces(t *testing.T) {
	g, err := yass.Parse(".*o\n***\n")
	require.NoError(t, err)
	grid, err := g.GridModel()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "empty.pdf")
	require.NoError(t, ExportPDF(path, Board{Grid: grid, Pieces: model.SomaSet()}))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestExportPDF_NoGrid(t *testing.T) {
	err := ExportPDF(filepath.Join(t.TempDir(), "none.pdf"), Board{})
	assert.ErrorIs(t, err, ErrEmptyBoard)
}

func TestExportPDF_InvalidPath(t *testing.T) {
	err := ExportPDF("/nonexistent/dir/out.pdf", buildTestBoard(t))
	assert.Error(t, err)
}

func TestLayerStats(t *testing.T) {
	board := buildTestBoard(t)

	targets, filled := layerStats(board, 0)
	assert.Equal(t, 9, targets)
	assert.Equal(t, 3, filled)

	targets, filled = layerStats(board, 2)
	assert.Equal(t, 9, targets)
	assert.Equal(t, 1, filled)
}

func TestPieceColor(t *testing.T) {
	r, g, b := pieceColor(model.SomaSet(), "c")
	assert.Equal(t, [3]int{255, 165, 0}, [3]int{r, g, b})

	r, g, b = pieceColor(model.SomaSet(), "gen1")
	assert.Equal(t, [3]int{128, 128, 128}, [3]int{r, g, b})
}
