package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/SomaCube/internal/client"
	"github.com/piwi3910/SomaCube/internal/model"
	"github.com/piwi3910/SomaCube/internal/yass"
)

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(t, nil)
	c.install("vee", veeGrid(t))
	placeVee(t, c)

	path := filepath.Join(t.TempDir(), "board.soma.json")
	require.NoError(t, c.SaveSession(path))
	firstID := c.sessionID
	require.NotEmpty(t, firstID)
	require.NoError(t, c.SaveSession(path))
	assert.Equal(t, firstID, c.sessionID, "repeated saves keep the id")

	other, _ := newTestController(t, nil)
	require.NoError(t, other.LoadSession(ctx, path))
	assert.Equal(t, "vee", other.ShapeID())
	assert.Equal(t, "33\n3.\n", other.Render())
	assert.Equal(t, "Session loaded", other.LastMessage().Text)
}

func TestLoadSessionMissingFile(t *testing.T) {
	c, _ := newTestController(t, nil)
	err := c.LoadSession(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
	assert.Contains(t, c.LastMessage().Text, "Failed to load session")
}

func TestBackupRestore(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(t, nil)
	c.cfg.HistoryDepth = 7
	c.install("vee", veeGrid(t))
	placeVee(t, c)

	path := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, c.Backup(path))

	other, _ := newTestController(t, nil)
	require.NoError(t, other.RestoreBackup(ctx, path))
	assert.Equal(t, 7, other.Config().HistoryDepth)
	assert.Equal(t, "vee", other.ShapeID())
	assert.Equal(t, "33\n3.\n", other.Render())
	assert.Equal(t, "Backup restored", other.LastMessage().Text)
}

func TestRestoreBackupBadSessionKeepsConfig(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "backup.json")
	backup := `{
  "version": "1.0.0",
  "config": {"server_url": "http://elsewhere.test", "history_depth": 3},
  "session": {
    "version": "1.0.0",
    "id": "broken",
    "puzzle": {"dimensions": {"width": 0, "height": 3, "depth": 3}, "occupied_cells": []},
    "placements": []
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(backup), 0644))

	c, _ := newTestController(t, nil)
	c.install("vee", veeGrid(t))
	before := c.Config()

	err := c.RestoreBackup(ctx, path)
	require.ErrorIs(t, err, model.ErrInvalidDimensions)
	assert.Equal(t, before, c.Config())
	assert.Equal(t, "vee", c.ShapeID())
	assert.Contains(t, c.LastMessage().Text, "Restore failed:")
}

func TestLoadSessionBadRotationKeepsBoard(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(t, nil)
	c.install("vee", veeGrid(t))
	placeVee(t, c)
	path := filepath.Join(t.TempDir(), "tilted.soma.json")
	require.NoError(t, c.SaveSession(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data = []byte(strings.Replace(string(data), `"z": 0`, `"z": 45`, 1))
	require.NoError(t, os.WriteFile(path, data, 0644))

	require.ErrorIs(t, c.LoadSession(ctx, path), model.ErrInvalidRotation)
	assert.Equal(t, "33\n3.\n", c.Render())
}

func TestImportCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "steps.csv")
	require.NoError(t, os.WriteFile(path, []byte("x,y,z\n0,0,0\n1,0,0\n0,1,0\n"), 0644))

	c, _ := newTestController(t, nil)
	require.True(t, c.SelectPiece("l"))
	assert.True(t, c.Import(path))
	assert.Equal(t, "steps", c.ShapeID())
	assert.Empty(t, c.Session().Placements())
	assert.Equal(t, "**\n*.\n", c.Render())
	assert.Equal(t, "Imported 3 cells (2×2×1)", c.LastMessage().Text)
}

func TestImportErrors(t *testing.T) {
	dir := t.TempDir()
	c, _ := newTestController(t, nil)

	assert.False(t, c.Import(filepath.Join(dir, "figure.obj")))
	assert.Equal(t, `Unsupported import format ".obj"`, c.LastMessage().Text)

	assert.False(t, c.Import(filepath.Join(dir, "missing.csv")))
	assert.Contains(t, c.LastMessage().Text, "Import failed:")
	assert.Empty(t, c.ShapeID())
}

func TestExportFormats(t *testing.T) {
	dir := t.TempDir()
	c, _ := newTestController(t, nil)
	c.install("vee", veeGrid(t))
	placeVee(t, c)

	for _, name := range []string{"board.pdf", "board.xlsx"} {
		path := filepath.Join(dir, name)
		require.NoError(t, c.Export(path), name)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}

	assert.Error(t, c.Export(filepath.Join(dir, "board.png")))
	assert.Contains(t, c.LastMessage().Text, "Export failed")

	require.NoError(t, c.ExportLabels(filepath.Join(dir, "labels.pdf")))
	assert.FileExists(t, filepath.Join(dir, "labels.pdf"))
}

func TestExportedWorkbookImportsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vee.xlsx")
	c, _ := newTestController(t, nil)
	c.install("vee", veeGrid(t))
	require.NoError(t, c.Export(path))

	other, _ := newTestController(t, nil)
	require.True(t, other.Import(path))
	assert.Equal(t, "**\n*.\n", other.Render())
}

func TestSaveFigure(t *testing.T) {
	c, _ := newTestController(t, nil)
	c.install("vee", veeGrid(t))
	require.NoError(t, c.SaveFigure("steps"))
	assert.Contains(t, c.ListShapes(context.Background()), "steps")

	c.figureDir = ""
	assert.Error(t, c.SaveFigure("steps"))
}

// TestControllerAgainstService drives a full load and check cycle through
// the HTTP client.
func TestControllerAgainstService(t *testing.T) {
	puzzle, err := yass.EncodePuzzle(veeGrid(t))
	require.NoError(t, err)

	solutions := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/soma/vee.soma", func(w http.ResponseWriter, r *http.Request) {
		w.Write(puzzle)
	})
	mux.HandleFunc("/api/check-solution", func(w http.ResponseWriter, r *http.Request) {
		solutions++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"valid": true, "message": "New solution found!"}`))
	})
	mux.HandleFunc("/api/solutions/vee", func(w http.ResponseWriter, r *http.Request) {
		if solutions == 0 {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`[{"grid": "33\n3.\n"}]`))
	})
	mux.HandleFunc("/api/total-solutions/vee", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total_solutions": "1"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, _ := newTestController(t, client.New(srv.URL, nil))
	ctx := context.Background()

	require.True(t, c.LoadShape(ctx, "vee"))
	assert.Equal(t, Counts{Total: 1}, c.Counts())
	assert.Equal(t, MsgFigureLoaded, c.LastMessage().Text)

	placeVee(t, c)
	assert.True(t, c.CheckSolution(ctx))
	assert.Equal(t, Counts{Current: 1, Total: 1}, c.Counts())
	assert.Equal(t, model.PersistentMessage(MsgAllSolutions), c.LastMessage())
}

// TestLoadShapeServiceNotFound checks that a 404 with no local figure fails
// the load after a single request.
func TestLoadShapeServiceNotFound(t *testing.T) {
	mock := client.NewMockHTTPClient().AddResponse(http.StatusNotFound, `{"error": "no such shape"}`)
	c, _ := newTestController(t, client.New("http://puzzle.test", mock))

	assert.False(t, c.LoadShape(context.Background(), "vee"))
	assert.Equal(t, 1, mock.RequestCount())
	assert.Equal(t, MsgLoadFailed, c.LastMessage().Text)
}
